package archive

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config carries the optional static-credential override; when Region
// and the key pair are all empty, Open falls back to the SDK's default
// credential chain (env vars, shared config, instance role).
type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// S3 uploads archived objects to an S3-compatible bucket using the
// transfer manager's multipart-aware uploader.
type S3 struct {
	bucket   string
	prefix   string
	uploader *manager.Uploader
}

// NewS3 builds an S3 backend for bucket, prefixing every key with prefix.
func NewS3(bucket, prefix string, cfg S3Config) (*S3, error) {
	ctx := context.Background()
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("archive: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3{bucket: bucket, prefix: prefix, uploader: manager.NewUploader(client)}, nil
}

func (s *S3) Put(ctx context.Context, key string, r io.Reader) (string, error) {
	fullKey := key
	if s.prefix != "" {
		fullKey = path.Join(s.prefix, key)
	}

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fullKey),
		Body:   r,
	})
	if err != nil {
		return "", fmt.Errorf("archive: s3 upload: %w", err)
	}

	return fmt.Sprintf("s3://%s/%s", s.bucket, fullKey), nil
}
