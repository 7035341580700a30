package r2

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestObjectKey(t *testing.T) {
	id := uuid.MustParse("0b8f0c7e-3f57-4a55-9a6c-6f8f3f7d2a10")
	tests := []struct {
		filename string
		want     string
	}{
		{"notes.pdf", "uploads/0b8f0c7e-3f57-4a55-9a6c-6f8f3f7d2a10/notes.pdf"},
		{"../../etc/passwd", "uploads/0b8f0c7e-3f57-4a55-9a6c-6f8f3f7d2a10/passwd"},
		{`C:\Users\me\lecture.pdf`, "uploads/0b8f0c7e-3f57-4a55-9a6c-6f8f3f7d2a10/lecture.pdf"},
		{"", "uploads/0b8f0c7e-3f57-4a55-9a6c-6f8f3f7d2a10/upload"},
	}
	for _, tt := range tests {
		if got := ObjectKey(id, tt.filename); got != tt.want {
			t.Fatalf("ObjectKey(%q): want=%q got=%q", tt.filename, tt.want, got)
		}
	}
}

func TestPublicURL(t *testing.T) {
	base, _ := url.Parse("https://pub-123.r2.dev/files/")
	c := &Client{publicURL: base}
	got := c.PublicURL("uploads/abc/notes.pdf")
	if got != "https://pub-123.r2.dev/files/uploads/abc/notes.pdf" {
		t.Fatalf("PublicURL: got=%q", got)
	}
	if base.Path != "/files/" {
		t.Fatalf("base URL mutated: %q", base.Path)
	}
}

func TestNewClientDisabledWhenIncomplete(t *testing.T) {
	c, err := NewClient(context.Background(), Config{AccountID: "acct", BucketName: "b"}, nil)
	if err != nil || c != nil {
		t.Fatalf("want nil,nil got=%v,%v", c, err)
	}
	var nilClient *Client
	if _, err := nilClient.UploadFile(context.Background(), uuid.New(), "a.pdf", strings.NewReader("x")); err == nil {
		t.Fatalf("expected error from nil client")
	}
}

func TestNewClientRejectsBadPublicURL(t *testing.T) {
	_, err := NewClient(context.Background(), Config{
		AccountID: "acct", BucketName: "b", AccessKeyID: "k", SecretAccessKey: "s", PublicURL: "not a url",
	}, nil)
	if err == nil {
		t.Fatalf("expected error for invalid public URL")
	}
}
