// Where: cli/internal/infra/repository/s3.go
// What: S3 object access for s3:// repositories.
// Why: Keep the SDK behind a one-method port so tests can use an in-memory bucket.
package repository

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3API is the subset of S3 used to read repository objects.
type S3API interface {
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

type awsS3Client struct {
	client *s3.Client
}

func (c awsS3Client) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	if c.client == nil {
		return nil, fmt.Errorf("s3 client is nil")
	}
	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return out.Body, nil
}

func isS3NotFound(err error) bool {
	var noSuchKey *s3types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return true
		}
	}
	return false
}
