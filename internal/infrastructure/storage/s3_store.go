package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"labelflow/internal/config"
	apperrors "labelflow/internal/errors"
)

// S3Store keeps uploaded files in an S3-compatible bucket.
type S3Store struct {
	client *s3.Client
	bucket string
	urls   URLMapper
}

func NewS3Store(ctx context.Context, cfg config.StorageConfig) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("loading s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	return &S3Store{
		client: client,
		bucket: cfg.Bucket,
		urls:   NewURLMapper(cfg.PublicURL),
	}, nil
}

// Put uploads data under key and returns its public URL.
func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", apperrors.NewStorageError("uploading "+key, err)
	}

	return s.urls.URLFor(key), nil
}

// Get downloads the object behind a managed URL.
func (s *S3Store) Get(ctx context.Context, rawURL string) ([]byte, error) {
	key, ok := s.urls.KeyFor(rawURL)
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("%s is not a managed storage URL", rawURL))
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, apperrors.NewStorageError("downloading "+key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, apperrors.NewStorageError("reading "+key, err)
	}

	return data, nil
}

// Delete removes the object behind a managed URL. Deleting an absent object
// succeeds.
func (s *S3Store) Delete(ctx context.Context, rawURL string) error {
	key, ok := s.urls.KeyFor(rawURL)
	if !ok {
		return apperrors.NewValidationError(fmt.Sprintf("%s is not a managed storage URL", rawURL))
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return apperrors.NewStorageError("deleting "+key, err)
	}

	return nil
}

func (s *S3Store) IsManaged(rawURL string) bool {
	return s.urls.IsManaged(rawURL)
}
