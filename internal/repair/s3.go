package repair

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config points the backup uploader at an S3-compatible store (MinIO in
// development, S3 proper otherwise).
type S3Config struct {
	Region    string
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string

	// Prefix is prepended to every uploaded key.
	Prefix string
}

// S3Uploader implements Uploader against an S3-compatible endpoint.
type S3Uploader struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Uploader builds a client with static credentials and an explicit base
// endpoint.
func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "",
		)))
	if err != nil {
		return nil, fmt.Errorf("loading s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Uploader{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Upload stores body under prefix/key in the configured bucket.
func (u *S3Uploader) Upload(ctx context.Context, key string, body []byte) error {
	fullKey := path.Join(u.prefix, key)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(fullKey),
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return fmt.Errorf("putting backup object %s: %w", fullKey, err)
	}
	return nil
}
