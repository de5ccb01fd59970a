// Package storage provides presigned S3 uploads for user-submitted photos.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"farmshops/internal/config"
)

// UploadExpiry is how long a presigned upload URL stays valid.
const UploadExpiry = 5 * time.Minute

// Uploader issues presigned PUT URLs for direct browser uploads to S3.
type Uploader struct {
	presign    *s3.PresignClient
	bucket     string
	region     string
	publicBase string
}

// NewUploader creates an uploader from the application config. Static
// credentials are used when configured; otherwise the default AWS chain.
func NewUploader(ctx context.Context, cfg *config.Config) (*Uploader, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Uploader{
		presign:    s3.NewPresignClient(client),
		bucket:     cfg.S3Bucket,
		region:     cfg.AWSRegion,
		publicBase: cfg.S3PublicBase,
	}, nil
}

// PresignUpload generates a presigned PUT URL for the given object key.
func (u *Uploader) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	request, err := u.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = UploadExpiry
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return request.URL, nil
}

// PublicURL returns the URL the object will be served from after upload.
func (u *Uploader) PublicURL(key string) string {
	if u.publicBase != "" {
		return strings.TrimSuffix(u.publicBase, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key)
}
