package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// Config describes the single bucket every tenant shares. Objects are
// isolated by tenant-keyed prefixes, not by bucket.
type Config struct {
	Bucket      string `env:"BLOB_BUCKET,required"`
	Region      string `env:"BLOB_REGION" envDefault:"auto"`
	AccountID   string `env:"BLOB_ACCOUNT_ID"`
	AccessKeyID string `env:"BLOB_ACCESS_KEY_ID,required"`
	SecretKey   string `env:"BLOB_SECRET_ACCESS_KEY,required"`
	Endpoint    string `env:"BLOB_ENDPOINT"`
	BaseURL     string `env:"BLOB_PUBLIC_BASE_URL"`
}

// S3Client is the subset of the S3 API the storage uses. Narrowed for
// test doubles.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Storage uploads and deletes objects in the shared bucket.
// Safe for concurrent use.
type Storage struct {
	client  S3Client
	bucket  string
	baseURL string
}

// Option configures Storage construction.
type Option func(*options)

type options struct {
	client S3Client
}

// WithClient injects a pre-configured S3 client. Used in tests.
func WithClient(client S3Client) Option {
	return func(o *options) { o.client = client }
}

// New creates the storage, building an S3 client from config unless one
// was injected.
func New(ctx context.Context, cfg Config, opts ...Option) (*Storage, error) {
	if cfg.Bucket == "" {
		return nil, ErrInvalidConfig
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	client := o.client
	if client == nil {
		if cfg.AccessKeyID == "" || cfg.SecretKey == "" {
			return nil, ErrInvalidConfig
		}

		awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID, cfg.SecretKey, "")),
		)
		if err != nil {
			return nil, errors.Join(ErrFailedToLoadConfig, err)
		}

		endpoint := cfg.Endpoint
		if endpoint == "" && cfg.AccountID != "" {
			// Cloudflare R2 style endpoint derived from the account id.
			endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
		}

		client = s3.NewFromConfig(awsCfg, func(opt *s3.Options) {
			if endpoint != "" {
				opt.BaseEndpoint = aws.String(endpoint)
			}
		})
	}

	baseURL := cfg.BaseURL
	if baseURL == "" && cfg.Endpoint != "" {
		baseURL = strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	baseURL = strings.TrimSuffix(baseURL, "/") + "/"

	return &Storage{client: client, bucket: cfg.Bucket, baseURL: baseURL}, nil
}

// Save uploads data under path and returns the public URL.
func (s *Storage) Save(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	path, err := cleanPath(path)
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(path),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", classify(err, "upload")
	}
	return s.URL(path), nil
}

// Delete removes the object at path. Deleting a missing object is not an
// error: S3 delete is idempotent and so is the image-remove envelope.
func (s *Storage) Delete(ctx context.Context, path string) error {
	path, err := cleanPath(path)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return classify(err, "delete")
	}
	return nil
}

// URL returns the public URL for an object path.
func (s *Storage) URL(path string) string {
	return s.baseURL + strings.TrimPrefix(path, "/")
}

func cleanPath(path string) (string, error) {
	path = strings.TrimPrefix(path, "/")
	if path == "" || strings.Contains(path, "..") {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}
	return path, nil
}

// classify converts S3 errors to package errors.
func classify(err error, operation string) error {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return fmt.Errorf("%w: %s", ErrNotFound, operation)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey":
			return fmt.Errorf("%w: %s", ErrNotFound, operation)
		case "AccessDenied":
			return fmt.Errorf("%w: %s", ErrAccessDenied, operation)
		case "SlowDown", "ServiceUnavailable":
			return fmt.Errorf("%w: %s", ErrUnavailable, operation)
		}
	}
	return fmt.Errorf("blob: %s failed: %w", operation, err)
}
