package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/JayaSurya08-dev/Nimbus/internal/service"
)

const defaultSignedURLTTL = time.Hour

type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	// PublicURL is the base that public object URLs are built from, e.g. "https://cdn.example.com".
	PublicURL string
}

// S3Store talks to any S3 compatible provider (AWS, MinIO, Supabase storage).
type S3Store struct {
	client     *s3.Client
	presign    *s3.PresignClient
	bucket     string
	publicBase string
	log        *slog.Logger
}

var _ service.ObjectStore = (*S3Store)(nil)

func NewS3(ctx context.Context, cfg Config, l *slog.Logger, optFns ...func(*s3.Options)) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage: bucket is empty")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	opts := append([]func(*s3.Options){func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	}}, optFns...)
	client := s3.NewFromConfig(awsCfg, opts...)

	return &S3Store{
		client:     client,
		presign:    s3.NewPresignClient(client),
		bucket:     cfg.Bucket,
		publicBase: cfg.PublicURL,
		log:        l.With("component", "storage", "bucket", cfg.Bucket),
	}, nil
}

func (s *S3Store) Put(ctx context.Context, obj service.Object) (*service.Receipt, error) {
	out, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(obj.Path),
		Body:          obj.Body,
		ContentLength: aws.Int64(obj.Size),
		ContentType:   aws.String(obj.ContentType),
	})
	if err != nil {
		return nil, fmt.Errorf("put object %q: %w", obj.Path, err)
	}
	return receiptFromPut(obj.Path, out), nil
}

// PublicURL returns "" when no usable public base is configured.
func (s *S3Store) PublicURL(path string) string {
	return publicURL(s.publicBase, s.bucket, path)
}

func (s *S3Store) SignedURL(ctx context.Context, path string, ttl time.Duration) string {
	if ttl <= 0 {
		ttl = defaultSignedURLTTL
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		s.log.Error("presign_failed", "path", path, "error", err)
		return ""
	}
	return signedURL(req)
}

func (s *S3Store) Delete(ctx context.Context, path string) bool {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		s.log.Warn("delete_failed", "path", path, "error", err)
		return false
	}
	return true
}

func publicURL(base, bucket, path string) string {
	if base == "" {
		return ""
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.JoinPath(bucket, path).String()
}
