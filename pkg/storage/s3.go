// Package storage wraps the private S3-compatible bucket that holds note
// attachments, cover images, and avatars. Direct path access is never public;
// every read goes through a signed URL.
package storage

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// SignedURLValidity is the validity window the backend stamps on signed GET
// URLs. The resolver caches URLs for slightly less than this (see resolver.go)
// so a cached URL is never served right before it expires.
const SignedURLValidity = time.Hour

type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// ObjectStorage is the surface the services depend on. *S3Storage implements
// it; tests substitute fakes.
type ObjectStorage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
	Delete(ctx context.Context, path string) error
	SignedGetURL(ctx context.Context, path string) (string, error)
}

type S3Storage struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

func NewS3Storage(ctx context.Context, cfg Config) (*S3Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true // MinIO
	})

	return &S3Storage{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
	}, nil
}

func (s *S3Storage) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        body,
		ContentType: &contentType,
	})
	return err
}

// Delete removes one object. External URLs and empty paths are skipped
// silently: only server-assigned storage paths live in the bucket.
func (s *S3Storage) Delete(ctx context.Context, path string) error {
	if path == "" || IsExternal(path) {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &path,
	})
	return err
}

// SignedGetURL issues a time-limited URL for a private object.
func (s *S3Storage) SignedGetURL(ctx context.Context, path string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &path,
	}, s3.WithPresignExpires(SignedURLValidity))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// IsExternal reports whether a path is already a fetchable URL (OAuth avatars,
// blob previews, inline data) rather than a storage key.
func IsExternal(path string) bool {
	return strings.HasPrefix(path, "http") ||
		strings.HasPrefix(path, "blob:") ||
		strings.HasPrefix(path, "data:")
}
