package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ignite/catalog-sync/internal/pkg/logger"
)

// s3API is the slice of the S3 client the uploader needs.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader copies the finished run artifacts to S3, keyed by run ID, so
// reports outlive the host the sync ran on.
type Uploader struct {
	client s3API
	bucket string
}

// NewUploader builds an S3 uploader. Static credentials are used when
// both keys are set; otherwise the default AWS credential chain applies.
func NewUploader(ctx context.Context, bucket, region, accessKey, secretKey string) (*Uploader, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return &Uploader{client: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

// NewUploaderWithClient builds an uploader around an existing client
// (useful for testing).
func NewUploaderWithClient(client s3API, bucket string) *Uploader {
	return &Uploader{client: client, bucket: bucket}
}

// UploadRunArtifacts pushes every file in dir to runs/<runID>/<name>.
// Individual upload failures are logged and do not stop the rest.
func (u *Uploader) UploadRunArtifacts(ctx context.Context, runID, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read report dir: %w", err)
	}

	var firstErr error
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		f, err := os.Open(path)
		if err != nil {
			logger.Warn("skip report upload", "file", entry.Name(), "error", err.Error())
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		key := fmt.Sprintf("runs/%s/%s", runID, entry.Name())
		_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(u.bucket),
			Key:    aws.String(key),
			Body:   f,
		})
		f.Close()
		if err != nil {
			logger.Warn("report upload failed", "key", key, "error", err.Error())
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		logger.Info("report uploaded", "bucket", u.bucket, "key", key)
	}
	return firstErr
}
