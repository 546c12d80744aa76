// Package s3 хранит фотографии в S3-совместимом хранилище (AWS S3, MinIO).
package s3

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Haleralex/storehub/internal/application/ports"
	"github.com/Haleralex/storehub/internal/infrastructure/storage"
)

// Config - параметры подключения.
type Config struct {
	Bucket          string
	Region          string
	Endpoint        string // optional, e.g. MinIO
	AccessKeyID     string // optional, default credential chain otherwise
	SecretAccessKey string
	PathStyle       bool
	PublicURL       string // base for photo URLs; defaults to endpoint/bucket
}

// ObjectAPI - подмножество *s3.Client, используемое Storage.
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Storage implements ports.FileStorage on an S3 bucket.
type Storage struct {
	client  ObjectAPI
	bucket  string
	baseURL string
	logger  *slog.Logger
}

var _ ports.FileStorage = (*Storage)(nil)

// New loads AWS configuration and creates the client.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 storage: bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3 storage: load config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return NewWithClient(client, cfg, logger), nil
}

// NewWithClient wraps an existing client (tests, custom transports).
func NewWithClient(client ObjectAPI, cfg Config, logger *slog.Logger) *Storage {
	if logger == nil {
		logger = slog.Default()
	}
	base := cfg.PublicURL
	if base == "" {
		if cfg.Endpoint != "" {
			base = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			base = fmt.Sprintf("https://%s.s3.amazonaws.com", cfg.Bucket)
		}
	}
	return &Storage{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(base, "/"),
		logger:  logger,
	}
}

// Store uploads the body under a generated key.
func (s *Storage) Store(ctx context.Context, in ports.StoredFileInput) (ports.StoredFile, error) {
	filename, ext := storage.NewFilename(in.ContentType, in.OriginalName)
	key := storage.ObjectName(filename, ext)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   in.Body,
	}
	if in.ContentType != "" {
		input.ContentType = aws.String(in.ContentType)
	}
	if in.Size > 0 {
		input.ContentLength = aws.Int64(in.Size)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return ports.StoredFile{}, fmt.Errorf("s3 storage: put %s: %w", key, err)
	}

	s.logger.DebugContext(ctx, "object stored", slog.String("bucket", s.bucket), slog.String("key", key))
	return ports.StoredFile{
		Filename:    filename,
		Type:        ext,
		URL:         s.baseURL + "/" + key,
		Destination: s.bucket,
		Size:        in.Size,
	}, nil
}

// Delete removes the object. S3 DeleteObject is idempotent.
func (s *Storage) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return fmt.Errorf("s3 storage: delete %s: %w", name, err)
	}
	return nil
}
