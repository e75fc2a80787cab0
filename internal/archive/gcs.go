package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
)

// GCSConfig captures the parameters required to archive into GCS.
type GCSConfig struct {
	Bucket string
}

// GCS writes raw page snapshots to a Google Cloud Storage bucket.
type GCS struct {
	client *storage.Client
	bucket string
}

// NewGCS creates a GCS-backed archive.
func NewGCS(client *storage.Client, cfg GCSConfig) (*GCS, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	return &GCS{client: client, bucket: cfg.Bucket}, nil
}

// Put uploads data under path and returns the gs:// URI.
func (a *GCS) Put(ctx context.Context, path string, data []byte) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("path is required")
	}
	writer := a.client.Bucket(a.bucket).Object(path).NewWriter(ctx)
	writer.ContentType = "text/html; charset=utf-8"
	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		closeErr := writer.Close()
		if closeErr != nil {
			return "", fmt.Errorf("copy object: %w (close writer: %v)", err, closeErr)
		}
		return "", fmt.Errorf("copy object: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close writer: %w", err)
	}
	return fmt.Sprintf("gs://%s/%s", a.bucket, path), nil
}
