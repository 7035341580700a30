package extract

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
)

const ocrTimeout = 3 * time.Minute

// OCRConfig locates a Document AI OCR processor.
type OCRConfig struct {
	ProjectID   string
	Location    string
	ProcessorID string
}

func (c OCRConfig) complete() bool {
	return c.ProjectID != "" && c.ProcessorID != ""
}

// OCR runs scanned PDFs through a Document AI processor.
type OCR struct {
	client *documentai.DocumentProcessorClient
	name   string
}

// NewOCR connects to Document AI. It returns (nil, nil) when cfg is
// incomplete, leaving OCR disabled.
func NewOCR(ctx context.Context, cfg OCRConfig) (*OCR, error) {
	if !cfg.complete() {
		return nil, nil
	}
	location := strings.TrimSpace(cfg.Location)
	if location == "" {
		location = "us"
	}
	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", location)

	opts := append([]option.ClientOption{option.WithEndpoint(endpoint)}, credentialOptions()...)
	c, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("documentai client: %w", err)
	}
	return &OCR{
		client: c,
		name:   fmt.Sprintf("projects/%s/locations/%s/processors/%s", cfg.ProjectID, location, cfg.ProcessorID),
	}, nil
}

func (o *OCR) Name() string { return "ocr" }

func (o *OCR) Extract(ctx context.Context, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, ocrTimeout)
	defer cancel()

	resp, err := o.client.ProcessDocument(ctx, &documentaipb.ProcessRequest{
		Name: o.name,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  data,
				MimeType: "application/pdf",
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("documentai ProcessDocument: %w", err)
	}
	if resp == nil || resp.Document == nil {
		return "", nil
	}
	return resp.Document.Text, nil
}

func (o *OCR) Close() error {
	if o == nil || o.client == nil {
		return nil
	}
	return o.client.Close()
}

// credentialOptions honours inline JSON or a file path in the usual Google
// credentials variables; otherwise application default credentials apply.
func credentialOptions() []option.ClientOption {
	creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}
