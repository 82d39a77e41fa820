// Package awsutil loads the shared AWS SDK configuration.
package awsutil

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
)

// Load resolves the SDK configuration for the given region. When
// AWS_ENDPOINT_URL is set (localstack), every service client is pointed at
// it; the endpoint is returned so callers can enable path-style addressing
// where needed.
func Load(ctx context.Context, region string) (aws.Config, string, error) {
	opts := []func(*awsCfg.LoadOptions) error{awsCfg.WithRegion(region)}

	endpoint := os.Getenv("AWS_ENDPOINT_URL")
	if endpoint != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(string, string, ...any) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               endpoint,
				HostnameImmutable: true,
				PartitionID:       "aws",
			}, nil
		})
		opts = append(opts, awsCfg.WithEndpointResolverWithOptions(resolver))
	}

	cfg, err := awsCfg.LoadDefaultConfig(ctx, opts...)
	return cfg, endpoint, err
}
