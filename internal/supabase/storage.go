package supabase

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	storage "github.com/supabase-community/storage-go"
)

// StorageClient implements services.BlobStore on Supabase Storage. The
// storage-go client has no context support, so ctx is only checked before
// each call.
type StorageClient struct {
	client  *storage.Client
	baseURL string
}

func NewStorageClient(supabaseURL, serviceRoleKey string) (*StorageClient, error) {
	baseURL := strings.TrimSuffix(supabaseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("supabase url is required")
	}
	client := storage.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil)

	return &StorageClient{
		client:  client,
		baseURL: baseURL,
	}, nil
}

func (s *StorageClient) Upload(ctx context.Context, bucket, objectPath string, data []byte, contentType string, upsert bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.client.UploadFile(bucket, objectPath, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return fmt.Errorf("failed to upload file %s/%s: %w", bucket, objectPath, err)
	}
	return nil
}

func (s *StorageClient) Download(ctx context.Context, bucket, objectPath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.client.DownloadFile(bucket, objectPath)
	if err != nil {
		return nil, fmt.Errorf("failed to download file %s/%s: %w", bucket, objectPath, err)
	}
	return data, nil
}

func (s *StorageClient) SignedURL(ctx context.Context, bucket, objectPath string, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	resp, err := s.client.CreateSignedUrl(bucket, objectPath, int(ttl.Seconds()))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s/%s: %w", bucket, objectPath, err)
	}
	if resp.SignedURL == "" {
		return "", fmt.Errorf("failed to sign %s/%s: empty signed url", bucket, objectPath)
	}
	return s.absoluteURL(resp.SignedURL), nil
}

// List returns the full object paths directly under prefix.
func (s *StorageClient) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix = strings.TrimSuffix(prefix, "/")
	files, err := s.client.ListFiles(bucket, prefix, storage.FileSearchOptions{
		Limit: 1000,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	paths := make([]string, 0, len(files))
	for _, file := range files {
		if file.Name == "" {
			continue
		}
		paths = append(paths, path.Join(prefix, file.Name))
	}
	return paths, nil
}

// absoluteURL handles both absolute signed URLs and the "/object/sign/..."
// form some storage API versions return.
func (s *StorageClient) absoluteURL(signed string) string {
	if strings.HasPrefix(signed, "http://") || strings.HasPrefix(signed, "https://") {
		return signed
	}
	if !strings.HasPrefix(signed, "/") {
		signed = "/" + signed
	}
	if strings.HasPrefix(signed, "/storage/v1/") {
		return s.baseURL + signed
	}
	return s.baseURL + "/storage/v1" + signed
}
