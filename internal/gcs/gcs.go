// Package gcs mirrors evaluation datasets held in Google Cloud Storage to the
// local filesystem and publishes result files back. Curated datasets live
// under a bucket prefix as document/ground-truth pairs; the runner only ever
// sees a local directory.
package gcs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// StorageService provides an interface for cloud storage operations.
// This interface enables mocking and testing of storage functionality.
type StorageService interface {
	// DownloadDataset mirrors every object under a gs:// prefix into destDir
	// and returns the number of files written.
	DownloadDataset(ctx context.Context, datasetURI, destDir string) (int, error)

	// UploadFile uploads a local file to the given gs:// URI.
	UploadFile(ctx context.Context, destURI, filePath string) error
}

// Client implements StorageService against Google Cloud Storage. It assumes
// Application Default Credentials are configured (gcloud auth
// application-default login).
type Client struct {
	client *storage.Client
}

// NewClient creates a storage-backed client.
func NewClient(ctx context.Context) (*Client, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs.NewClient: %w", err)
	}
	return &Client{client: client}, nil
}

// Close releases the underlying storage client.
func (c *Client) Close() error {
	return c.client.Close()
}

// ParseURI splits a gs://bucket/path URI into bucket and object path.
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	bucket = parts[0]
	if bucket == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no bucket): %s", uri)
	}
	if len(parts) == 2 {
		object = parts[1]
	}
	return bucket, object, nil
}

// IsURI reports whether a dataset location refers to cloud storage rather
// than a local directory.
func IsURI(location string) bool {
	return strings.HasPrefix(location, "gs://")
}

// DownloadDataset implements the StorageService interface. Objects are
// written flat into destDir under their base names, which matches how
// datasets are laid out in the bucket.
func (c *Client) DownloadDataset(ctx context.Context, datasetURI, destDir string) (int, error) {
	bucket, prefix, err := ParseURI(datasetURI)
	if err != nil {
		return 0, fmt.Errorf("DownloadDataset: %w", err)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return 0, fmt.Errorf("DownloadDataset: %w", err)
	}

	count := 0
	it := c.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return count, fmt.Errorf("DownloadDataset: list %s: %w", datasetURI, err)
		}
		if strings.HasSuffix(attrs.Name, "/") {
			continue
		}

		dest := filepath.Join(destDir, path.Base(attrs.Name))
		if err := c.downloadObject(ctx, bucket, attrs.Name, dest); err != nil {
			return count, fmt.Errorf("DownloadDataset: %w", err)
		}
		count++
	}

	return count, nil
}

func (c *Client) downloadObject(ctx context.Context, bucket, object, dest string) error {
	r, err := c.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("open %s/%s: %w", bucket, object, err)
	}
	defer r.Close()

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("download %s/%s: %w", bucket, object, err)
	}
	return f.Close()
}

// UploadFile implements the StorageService interface.
func (c *Client) UploadFile(ctx context.Context, destURI, filePath string) error {
	bucket, object, err := ParseURI(destURI)
	if err != nil {
		return fmt.Errorf("UploadFile: %w", err)
	}
	if object == "" {
		object = path.Base(filePath)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("UploadFile: open %q: %w", filePath, err)
	}
	defer f.Close()

	w := c.client.Bucket(bucket).Object(object).NewWriter(ctx)
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return fmt.Errorf("UploadFile: copy to %s: %w", destURI, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("UploadFile: finalize %s: %w", destURI, err)
	}
	return nil
}

var _ StorageService = (*Client)(nil)
