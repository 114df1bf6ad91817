package objectclient

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"knowledgescout/internal/core"
)

// LocalClient stores objects on the local filesystem under a base directory.
// It serves dev setups without AWS credentials and the test suite. The bucket
// argument maps to a subdirectory so the interface stays symmetric with S3.
type LocalClient struct {
	baseDir string
}

func NewLocalClient(baseDir string) (*LocalClient, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("upload directory not set")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalClient{baseDir: baseDir}, nil
}

func (c *LocalClient) UploadFile(_ context.Context, bucket, key string, data []byte, _ string) (string, error) {
	p := c.path(bucket, key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("create object dir: %w", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}
	return key, nil
}

func (c *LocalClient) GetFile(_ context.Context, bucket, key string) ([]byte, error) {
	data, err := os.ReadFile(c.path(bucket, key))
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	return data, nil
}

func (c *LocalClient) DeleteFile(_ context.Context, bucket, key string) error {
	err := os.Remove(c.path(bucket, key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (c *LocalClient) FileExists(_ context.Context, bucket, key string) (bool, error) {
	_, err := os.Stat(c.path(bucket, key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *LocalClient) path(bucket, key string) string {
	return filepath.Join(c.baseDir, bucket, filepath.FromSlash(key))
}

var _ core.ObjectClient = (*LocalClient)(nil)
