// Package awss3 stores order assets in a single S3 bucket. Logical buckets
// ("Uploads", "Outputs") become the first key segment.
package awss3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type presignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type Store struct {
	bucket    string
	client    objectAPI
	presigner presignAPI
}

// NewStore loads the default AWS credential chain for region.
func NewStore(ctx context.Context, region, bucket string) (*Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return NewStoreWithClients(bucket, client, s3.NewPresignClient(client)), nil
}

func NewStoreWithClients(bucket string, client objectAPI, presigner presignAPI) *Store {
	return &Store{bucket: bucket, client: client, presigner: presigner}
}

// Key maps a logical bucket and path onto an object key.
func Key(bucket, path string) string {
	return strings.Trim(bucket, "/") + "/" + strings.TrimPrefix(path, "/")
}

func (s *Store) Upload(ctx context.Context, bucket, path string, data []byte, contentType string, upsert bool) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(Key(bucket, path)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}
	if !upsert {
		input.IfNoneMatch = aws.String("*")
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload %s: %w", Key(bucket, path), err)
	}
	return nil
}

func (s *Store) Download(ctx context.Context, bucket, path string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(Key(bucket, path)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", Key(bucket, path), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", Key(bucket, path), err)
	}
	return data, nil
}

func (s *Store) SignedURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(Key(bucket, path)),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", Key(bucket, path), err)
	}
	return req.URL, nil
}

// List returns logical paths (without the bucket segment) under prefix.
func (s *Store) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	keyPrefix := Key(bucket, strings.TrimSuffix(prefix, "/")+"/")
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(keyPrefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", keyPrefix, err)
	}

	bucketPrefix := strings.Trim(bucket, "/") + "/"
	paths := make([]string, 0, len(out.Contents))
	for _, obj := range out.Contents {
		paths = append(paths, strings.TrimPrefix(aws.ToString(obj.Key), bucketPrefix))
	}
	return paths, nil
}
