package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/duckbook/duckbook/duckbook/database/repositories"
)

// PhotoService stores duck photos in a Spaces bucket and records the
// object key on the duck.
type PhotoService struct {
	client    *s3.Client
	bucket    string
	region    string
	photoRoot string
	ducks     repositories.DuckRepository
}

func NewPhotoService(spacesKey, spacesSecret, region, bucket, photoRoot string, ducks repositories.DuckRepository) (*PhotoService, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(spacesKey, spacesSecret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load Spaces config: %w", err)
	}

	return &PhotoService{
		client:    s3.NewFromConfig(cfg),
		bucket:    bucket,
		region:    region,
		photoRoot: strings.TrimPrefix(photoRoot, "/"),
		ducks:     ducks,
	}, nil
}

// Upload stores a photo for the duck and records its key. Any previous
// photo object stays in the bucket under its own key.
func (s *PhotoService) Upload(ctx context.Context, duckID int64, data []byte, contentType string) (string, error) {
	if _, err := s.ducks.GetByID(ctx, duckID); err != nil {
		return "", err
	}

	key := s.photoKey(duckID)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload duck photo: %w", err)
	}

	if err := s.ducks.SetPhotoKey(ctx, duckID, key); err != nil {
		return "", err
	}

	slog.Info("Duck photo uploaded",
		slog.String("type", "sys"),
		slog.Int64("duck_id", duckID),
		slog.String("key", key))
	return key, nil
}

// Delete removes the duck's photo object and clears the recorded key.
func (s *PhotoService) Delete(ctx context.Context, duckID int64) error {
	duck, err := s.ducks.GetByID(ctx, duckID)
	if err != nil {
		return err
	}
	if duck.PhotoKey == "" {
		return nil
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(duck.PhotoKey),
	})
	if err != nil {
		return fmt.Errorf("failed to delete duck photo: %w", err)
	}
	return s.ducks.SetPhotoKey(ctx, duckID, "")
}

// URL returns the public URL for a stored photo key.
func (s *PhotoService) URL(key string) string {
	if key == "" {
		return ""
	}
	return fmt.Sprintf("https://%s.%s.digitaloceanspaces.com/%s", s.bucket, s.region, key)
}

func (s *PhotoService) photoKey(duckID int64) string {
	if s.photoRoot == "" {
		return fmt.Sprintf("ducks/%d.jpg", duckID)
	}
	return fmt.Sprintf("%s/ducks/%d.jpg", s.photoRoot, duckID)
}
