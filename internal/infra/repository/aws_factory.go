// Where: cli/internal/infra/repository/aws_factory.go
// What: AWS client factory for S3-backed repositories.
// Why: Encapsulate SDK configuration for custom endpoints and static credentials.
package repository

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/poruru/f3asm/cli/internal/infra/envutil"
)

const defaultAWSRegion = "us-east-1"

// ClientFactory creates S3 clients for s3:// repositories.
type ClientFactory interface {
	S3(ctx context.Context, endpoint string) (S3API, error)
}

// AWSClientFactory returns the SDK-backed factory.
func AWSClientFactory() ClientFactory {
	return awsClientFactory{}
}

type awsClientFactory struct{}

func (awsClientFactory) S3(ctx context.Context, endpoint string) (S3API, error) {
	cfg, err := loadAWSConfig(ctx, s3AccessKey(), s3SecretKey())
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg, func(options *s3.Options) {
		if endpoint != "" {
			options.BaseEndpoint = aws.String(endpoint)
			options.UsePathStyle = true
		}
	})
	return awsS3Client{client: client}, nil
}

// loadAWSConfig uses static credentials when both keys are set and the
// default credential chain otherwise.
func loadAWSConfig(ctx context.Context, accessKey, secretKey string) (aws.Config, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = defaultAWSRegion
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if accessKey != "" && secretKey != "" {
		creds := credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")
		opts = append(opts, config.WithCredentialsProvider(creds))
	}
	return config.LoadDefaultConfig(ctx, opts...)
}

func s3AccessKey() string {
	return envutil.GetHostEnv(envutil.S3AccessKey)
}

func s3SecretKey() string {
	return envutil.GetHostEnv(envutil.S3SecretKey)
}
