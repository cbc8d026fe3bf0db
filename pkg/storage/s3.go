package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStorage is the storage boundary used by the upload pipeline and the
// bot recording processor.
type ObjectStorage interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	PutRemote(ctx context.Context, sourceURL, key string) (string, error)
	Delete(ctx context.Context, key string) error
	SignedDownloadURL(ctx context.Context, key string) (string, error)
}

type S3Storage struct {
	client  *s3.Client
	presign *s3.PresignClient
	httpc   *http.Client
	bucket  string
	region  string
}

func NewS3Storage(ctx context.Context, bucket, region, accessKey, secretKey string) (*S3Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &S3Storage{
		client:  client,
		presign: s3.NewPresignClient(client),
		httpc:   &http.Client{Timeout: 5 * time.Minute},
		bucket:  bucket,
		region:  region,
	}, nil
}

// GenerateKey builds the canonical object key for an uploaded transcript file.
func GenerateKey(userId, projectId, fileName string) string {
	sanitized := strings.ReplaceAll(fileName, " ", "-")
	return fmt.Sprintf("upload-data/users/%s/%s/transcripts/%d-%s",
		userId, projectId, time.Now().UnixMilli(), sanitized)
}

// KeyFromURL extracts the object key from a bucket URL. Returns "" when the
// URL does not look like an S3 object URL.
func KeyFromURL(url string) string {
	parts := strings.SplitN(url, ".com/", 2)
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}

func (s *S3Storage) objectURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

func (s *S3Storage) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        body,
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}
	return s.objectURL(key), nil
}

// PutRemote downloads the object at sourceURL and stores it under key.
// Used for pulling bot recordings out of the vendor's short-lived URLs.
func (s *S3Storage) PutRemote(ctx context.Context, sourceURL, key string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch recording: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("recording fetch returned status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "video/mp4"
	}
	return s.Put(ctx, key, resp.Body, contentType)
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// SignedDownloadURL returns a presigned GET URL valid for one hour.
func (s *S3Storage) SignedDownloadURL(ctx context.Context, key string) (string, error) {
	out, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	}, s3.WithPresignExpires(time.Hour))
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s: %w", key, err)
	}
	return out.URL, nil
}
