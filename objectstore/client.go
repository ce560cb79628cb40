// Package objectstore wraps the AWS S3 SDK v2 client used by the
// object-store extractor's Select and Download phases. Anonymous
// (unauthenticated) and credentialed access are both supported: a source
// either carries both access key and secret, or neither.
package objectstore

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Client is the subset of S3 operations the extractor uses: list under a
// prefix, and fetch an object's body, plus HeadObject, which nothing in this
// system currently calls. Upload and bucket-management methods are left out,
// so a mock can stand in for tests.
type Client interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Options configures a new Client.
type Options struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// NewClient builds an S3 client against a (possibly S3-compatible, non-AWS)
// endpoint. When AccessKeyID/SecretAccessKey are both empty the client is
// built for anonymous access (spec §6 explicitly permits this). The
// concrete *s3.Client is returned (rather than the narrower Client
// interface) so callers can also hand it to NewDownloadManager; it still
// satisfies Client for code that only needs the narrow surface.
func NewClient(ctx context.Context, opts Options) (*s3.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	} else {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(aws.AnonymousCredentials{}))
	}
	if opts.Endpoint != "" {
		loadOpts = append(loadOpts, awsconfig.WithEndpointResolverWithOptions(
			aws.EndpointResolverWithOptionsFunc(func(service, region string, args ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{URL: opts.Endpoint, SigningRegion: opts.Region, HostnameImmutable: true}, nil
			}),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("objectstore: loading aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = opts.UsePathStyle
	})
	return client, nil
}

// NewDownloadManager wraps a client in a manager.Downloader. The Download
// helper does not use it; it fetches each object with GetObject.
func NewDownloadManager(client *s3.Client) *manager.Downloader {
	return manager.NewDownloader(client)
}
