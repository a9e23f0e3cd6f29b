package reliability

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
)

// S3Config holds connection settings for an S3-compatible object store.
type S3Config struct {
	Endpoint  string // empty for AWS S3; set for R2/MinIO-style endpoints
	Region    string
	Bucket    string
	Prefix    string // key prefix for uploaded archives
	AccessKey string
	SecretKey string
}

// S3Client wraps an S3-compatible object store used for off-site backup
// replication.
type S3Client struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
	log      zerolog.Logger
}

// NewS3Client creates a client for the configured S3-compatible endpoint.
func NewS3Client(cfg S3Config, log zerolog.Logger) (*S3Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("s3 credentials are required")
	}

	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Client{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   cfg.Bucket,
		prefix:   cfg.Prefix,
		log:      log.With().Str("service", "s3").Logger(),
	}, nil
}

// Bucket returns the configured bucket name.
func (c *S3Client) Bucket() string {
	return c.bucket
}

// Upload streams an object to the bucket under the configured prefix.
func (c *S3Client) Upload(ctx context.Context, key string, body io.Reader) error {
	fullKey := c.prefix + key

	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(fullKey),
		Body:   body,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", fullKey, err)
	}

	c.log.Debug().Str("key", fullKey).Msg("Uploaded object")
	return nil
}

// List returns objects whose keys start with the configured prefix plus
// keyPrefix.
func (c *S3Client) List(ctx context.Context, keyPrefix string) ([]types.Object, error) {
	fullPrefix := c.prefix + keyPrefix

	var objects []types.Object
	paginator := s3.NewListObjectsV2Paginator(c.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(fullPrefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %w", fullPrefix, err)
		}
		objects = append(objects, page.Contents...)
	}

	return objects, nil
}

// Delete removes an object from the bucket.
func (c *S3Client) Delete(ctx context.Context, key string) error {
	fullKey := c.prefix + key

	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(fullKey),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", fullKey, err)
	}

	return nil
}

// stripPrefix removes the configured key prefix from an object key so
// callers work with bare archive filenames.
func (c *S3Client) stripPrefix(key string) string {
	if len(key) >= len(c.prefix) && key[:len(c.prefix)] == c.prefix {
		return key[len(c.prefix):]
	}
	return key
}
