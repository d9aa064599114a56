package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// s3API narrows *s3.Client down to the handful of calls Remote needs, the
// same interface-narrowing trick the wider corpus uses to keep AWS-backed
// storage testable without real credentials (see e.g. trillian-tessera's
// objStore interface over its S3 client).
type s3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// RemoteConfig configures the S3-compatible backend. Region and Endpoint
// may be left empty to fall back to the AWS SDK's default resolution
// chain; AccessKeyID/SecretAccessKey are optional overrides for
// S3-compatible stores (e.g. MinIO) that don't use the ambient AWS
// credential chain. This mirrors launix-de-memcp's storage.S3Factory.
type RemoteConfig struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string // custom endpoint for S3-compatible APIs
	AccessKeyID     string
	SecretAccessKey string
	ForcePathStyle  bool // required by MinIO and similar
}

// Remote stores each node as an S3 object, one object per node id, under a
// configurable key prefix.
type Remote struct {
	client s3API
	bucket string
	prefix string
}

// NewRemote builds a Remote backend from cfg, loading AWS credentials via
// the standard SDK chain unless static credentials are supplied.
func NewRemote(ctx context.Context, cfg RemoteConfig) (*Remote, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("oram/backend: remote config requires a bucket")
	}

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("oram/backend: load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) { o.BaseEndpoint = aws.String(cfg.Endpoint) })
	}
	if cfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) { o.UsePathStyle = true })
	}

	return &Remote{
		client: s3.NewFromConfig(awsCfg, s3Opts...),
		bucket: cfg.Bucket,
		prefix: strings.TrimSuffix(cfg.Prefix, "/"),
	}, nil
}

// newRemoteWithClient is used by tests to inject a fake s3API.
func newRemoteWithClient(client s3API, bucket, prefix string) *Remote {
	return &Remote{client: client, bucket: bucket, prefix: strings.TrimSuffix(prefix, "/")}
}

func (r *Remote) key(name string) string {
	if r.prefix == "" {
		return name
	}
	return r.prefix + "/" + name
}

func (r *Remote) Read(ctx context.Context, name string) ([]byte, Log, error) {
	resp, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key(name)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, notFoundLog(name), nil
		}
		return nil, errLog(name, err.Error()), err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errLog(name, err.Error()), err
	}
	return data, getLog(name), nil
}

func (r *Remote) Write(ctx context.Context, name string, data []byte) (Log, error) {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key(name)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return errLog(name, err.Error()), err
	}
	return putLog(name), nil
}

func (r *Remote) ReadMultiple(ctx context.Context, names []string) ([]ReadResult, error) {
	return readMultipleSequentialOrParallel(ctx, r, names)
}

func (r *Remote) WriteMultiple(ctx context.Context, writes map[string][]byte) ([]Log, error) {
	return writeMultipleSequentialOrParallel(ctx, r, writes)
}

func (r *Remote) ListNames(ctx context.Context) ([]string, error) {
	var names []string
	paginator := s3.NewListObjectsV2Paginator(r.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(r.bucket),
		Prefix: aws.String(r.key("")),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), r.key(""))
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
