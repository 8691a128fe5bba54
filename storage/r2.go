package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// R2Config carries the Cloudflare R2 settings. Values come from the app
// config, not ambient environment reads.
type R2Config struct {
	Bucket          string
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
}

// R2Store is an ImageStore backed by a Cloudflare R2 bucket via the S3 API.
// Returned paths are object keys under profile-images/, served from the
// bucket's public base URL.
type R2Store struct {
	client *s3.Client
	bucket string
}

func NewR2Store(cfg R2Config) (*R2Store, error) {
	if cfg.Bucket == "" || cfg.AccountID == "" || cfg.PublicBaseURL == "" {
		return nil, fmt.Errorf("missing required R2 configuration")
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)

	customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL:           endpoint,
			SigningRegion: "auto",
		}, nil
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion("auto"), // Important for R2
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
		awsconfig.WithEndpointResolverWithOptions(customResolver),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %v", err)
	}

	return &R2Store{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Bucket,
	}, nil
}

func (s *R2Store) Save(filename string, src io.Reader) (string, error) {
	if src == nil || filename == "" {
		return "", nil
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtension(ext) {
		return "", ErrInvalidFormat
	}

	key := path.Join(profileImagesFolder, uuid.NewString()+ext)
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        src,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to R2: %v", err)
	}

	return key, nil
}

// Delete is idempotent: S3 DeleteObject succeeds for missing keys.
func (s *R2Store) Delete(relPath string) error {
	if relPath == "" {
		return nil
	}

	_, err := s.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(relPath),
	})
	return err
}
