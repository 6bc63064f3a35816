// utils/r2.go
package utils

import (
	"bytes"
	"context"
	"fmt"

	"sql-career-engine/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter is the slice of the S3 client the exporter uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// R2Exporter uploads JSON documents to a Cloudflare R2 bucket through the S3 API.
type R2Exporter struct {
	client     ObjectPutter
	bucket     string
	cdnBaseURL string
}

func NewR2Exporter(ctx context.Context, cfg config.R2Config) (*R2Exporter, error) {
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.AccessKeySecret, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
	return NewR2ExporterWithClient(client, cfg.Bucket, cfg.CDNBaseURL, endpoint), nil
}

// NewR2ExporterWithClient falls back to the bucket endpoint when cdnBaseURL is empty.
func NewR2ExporterWithClient(client ObjectPutter, bucket, cdnBaseURL, endpoint string) *R2Exporter {
	if cdnBaseURL == "" {
		cdnBaseURL = endpoint
	}
	return &R2Exporter{client: client, bucket: bucket, cdnBaseURL: cdnBaseURL}
}

// UploadJSON stores body under key and returns the public URL.
func (e *R2Exporter) UploadJSON(ctx context.Context, key string, body []byte) (string, error) {
	_, err := e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(e.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String("application/json"),
		CacheControl: aws.String("no-cache"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to R2: %w", err)
	}
	return fmt.Sprintf("%s/%s", e.cdnBaseURL, key), nil
}
