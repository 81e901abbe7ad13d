// Package storage talks to the external image host. Avatars are kept in a
// Cloudflare R2 bucket and served through Cloudflare's image transform
// endpoint so every stored URL is already the 250x250 cropped rendition.
package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/daria-hk/contacts-api/internal/apperrors"
	"github.com/daria-hk/contacts-api/internal/config"
)

// AvatarStore uploads raw image bytes under a stable key and returns the
// public URL of the transformed image.
type AvatarStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

type R2Store struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// NewR2Store initializes the R2 client using static credentials and the
// account-scoped custom endpoint.
func NewR2Store(cfg config.R2Config) *R2Store {
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)

	awsCfg := aws.Config{
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Region:      cfg.Region,
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &R2Store{
		client:        client,
		bucket:        cfg.BucketName,
		publicBaseURL: cfg.PublicBaseURL,
	}
}

// Upload puts the object and returns the deterministic 250x250 crop URL. A
// failed upload surfaces as an upstream error so the caller's request fails.
func (s *R2Store) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%w: avatar upload: %v", apperrors.ErrUpstream, err)
	}
	return s.publicURL(key), nil
}

func (s *R2Store) publicURL(key string) string {
	return fmt.Sprintf("%s/cdn-cgi/image/width=250,height=250,fit=cover/%s", s.publicBaseURL, key)
}
