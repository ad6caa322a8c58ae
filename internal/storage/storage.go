// Package storage persists scan images in S3-compatible object storage and
// issues time-limited signed URLs for reads.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stylorenlabs/styloren/internal/clock"
	"github.com/stylorenlabs/styloren/internal/config"
)

// Store is the object storage surface the scan history service needs.
type Store interface {
	// PutImage stores image bytes under a fresh per-user key and returns
	// the key.
	PutImage(ctx context.Context, userID snowflake.ID, mimeType string, data []byte) (string, error)

	// SignedURL returns a presigned GET URL for the key.
	SignedURL(ctx context.Context, key string) (string, error)

	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

type store struct {
	client  *s3.Client
	presign *s3.PresignClient
	log     *zap.Logger
	clock   clock.Clock
	bucket  string
	urlTTL  time.Duration
}

func New(cfg *config.Config, clk clock.Clock, log *zap.Logger) (Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Storage.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.Storage.AccessKeyID,
			cfg.Storage.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.EndpointURL)
			// MinIO and B2 need path-style addressing.
			o.UsePathStyle = true
		}
	})

	return &store{
		client:  client,
		presign: s3.NewPresignClient(client),
		log:     log.Named("storage"),
		clock:   clk,
		bucket:  cfg.Storage.Bucket,
		urlTTL:  cfg.Storage.SignedURLTTL,
	}, nil
}

func (s *store) PutImage(ctx context.Context, userID snowflake.ID, mimeType string, data []byte) (string, error) {
	key := fmt.Sprintf("%s/%d-%s.%s",
		userID.String(),
		s.clock.Now(ctx).UnixMilli(),
		uuid.NewString(),
		extensionFor(mimeType),
	)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String("image/" + mimeType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	s.log.Debug("image stored", zap.String("key", key), zap.Int("bytes", len(data)))
	return key, nil
}

func (s *store) SignedURL(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.urlTTL))
	if err != nil {
		return "", fmt.Errorf("presign object: %w", err)
	}
	return req.URL, nil
}

func (s *store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "jpeg":
		return "jpg"
	case "png", "webp", "heic", "heif":
		return mimeType
	}
	return "bin"
}
