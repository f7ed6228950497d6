package metadata

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// objectAPI is the part of *s3.Client the repository uses.
type objectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Repository stores each key as one object under prefix, which lets a
// profile roam between machines sharing a bucket.
type S3Repository struct {
	api    objectAPI
	bucket string
	prefix string
}

var _ Repository = (*S3Repository)(nil)

// S3Options describes how to reach the bucket. Endpoint is optional and is
// meant for S3-compatible servers such as MinIO.
type S3Options struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// NewS3Client builds an S3 client. Static credentials are used when given,
// otherwise the default AWS chain applies.
func NewS3Client(ctx context.Context, o S3Options) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(o.Region)}
	if o.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
			so.UsePathStyle = true
		}
	}), nil
}

func NewS3Repository(api objectAPI, bucket, prefix string) *S3Repository {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Repository{api: api, bucket: bucket, prefix: prefix}
}

func (r *S3Repository) objectKey(key string) string {
	return r.prefix + key
}

func (r *S3Repository) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := r.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.objectKey(key)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata[%s]: %w", key, err)
	}
	return data, nil
}

func (r *S3Repository) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.objectKey(key)),
		Body:   bytes.NewReader(value),
	})
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *S3Repository) Delete(ctx context.Context, key string) error {
	_, err := r.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *S3Repository) keys(ctx context.Context) ([]string, error) {
	var out []string
	var token *string
	for {
		page, err := r.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(r.bucket),
			Prefix:            aws.String(r.prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			out = append(out, strings.TrimPrefix(aws.ToString(obj.Key), r.prefix))
		}
		if !aws.ToBool(page.IsTruncated) {
			return out, nil
		}
		token = page.NextContinuationToken
	}
}

func (r *S3Repository) List(ctx context.Context) (map[string][]byte, error) {
	keys, err := r.keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata: %w", err)
	}
	result := make(map[string][]byte, len(keys))
	for _, k := range keys {
		v, err := r.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		if v != nil {
			result[k] = v
		}
	}
	return result, nil
}

func (r *S3Repository) Clear(ctx context.Context) error {
	keys, err := r.keys(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}
	for _, k := range keys {
		if err := r.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}
