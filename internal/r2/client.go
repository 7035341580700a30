// Package r2 archives uploaded source files to a Cloudflare R2 bucket through
// its S3-compatible API.
package r2

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"studyquiz/internal/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// Config holds the bucket settings. Endpoint overrides the account endpoint,
// for S3-compatible stores other than R2.
type Config struct {
	AccountID       string
	BucketName      string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string
	Endpoint        string
}

func (c Config) complete() bool {
	return (c.AccountID != "" || c.Endpoint != "") && c.BucketName != "" &&
		c.AccessKeyID != "" && c.SecretAccessKey != "" && c.PublicURL != ""
}

// Client holds the necessary configuration for interacting with Cloudflare R2.
type Client struct {
	s3Client   *s3.Client
	bucketName string
	publicURL  *url.URL
	log        *logger.Logger
}

// NewClient returns (nil, nil) when cfg is incomplete, leaving archiving
// disabled.
func NewClient(ctx context.Context, cfg Config, log *logger.Logger) (*Client, error) {
	log = logger.OrNop(log).With("component", "r2.Client")
	if !cfg.complete() {
		log.Warn("R2 not fully configured, upload archiving disabled")
		return nil, nil
	}
	publicURL, err := url.Parse(cfg.PublicURL)
	if err != nil || publicURL.Scheme == "" || publicURL.Host == "" {
		return nil, fmt.Errorf("invalid R2 public base URL %q", cfg.PublicURL)
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config for R2: %w", err)
	}
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = cfg.Endpoint != ""
	})

	log.Info("R2 client initialized", "bucket", cfg.BucketName)
	return &Client{
		s3Client:   s3Client,
		bucketName: cfg.BucketName,
		publicURL:  publicURL,
		log:        log,
	}, nil
}

// ObjectKey is the archive location of an uploaded file.
func ObjectKey(documentID uuid.UUID, filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	return fmt.Sprintf("uploads/%s/%s", documentID, name)
}

// UploadFile stores content under ObjectKey and returns its public URL.
func (c *Client) UploadFile(ctx context.Context, documentID uuid.UUID, filename string, content io.Reader) (string, error) {
	if c == nil || c.s3Client == nil {
		return "", fmt.Errorf("R2 client not initialized, skipping upload")
	}
	objectKey := ObjectKey(documentID, filename)

	contentType := mime.TypeByExtension(filepath.Ext(objectKey))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucketName),
		Key:         aws.String(objectKey),
		Body:        content,
		ACL:         types.ObjectCannedACLPublicRead,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to R2 (key: %s): %w", objectKey, err)
	}

	publicFileURL := c.PublicURL(objectKey)
	c.log.Info("uploaded file to R2", "url", publicFileURL)
	return publicFileURL, nil
}

// PublicURL joins key onto the bucket's public base URL.
func (c *Client) PublicURL(key string) string {
	u := *c.publicURL
	u.Path = path.Join(u.Path, key)
	return u.String()
}
