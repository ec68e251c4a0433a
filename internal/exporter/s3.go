package exporter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const s3Scheme = "s3://"

var ErrBadS3URL = errors.New("exporter: s3 destination must look like s3://bucket/key")

// S3Config holds connection settings for an S3-compatible store (AWS, MinIO).
// Empty credentials fall back to the default AWS credential chain.
type S3Config struct {
	// Bucket is used for a bare "s3://" destination.
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

// PutObjectAPI is the subset of *s3.Client used by S3Sink.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) PutObjectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// NewS3Client builds an S3 client from c.
func NewS3Client(ctx context.Context, c S3Config) (PutObjectAPI, error) {
	var opts []func(*config.LoadOptions) error
	if c.Region != "" {
		opts = append(opts, config.WithRegion(c.Region))
	}
	if c.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if c.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(c.BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// ParseS3URL splits s3://bucket/key. The key may be empty.
func ParseS3URL(u string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(u, s3Scheme)
	if !ok {
		return "", "", ErrBadS3URL
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", ErrBadS3URL
	}
	return bucket, key, nil
}

// S3Sink uploads documents as objects in Bucket.
type S3Sink struct {
	Client PutObjectAPI
	Bucket string
}

func (s *S3Sink) Write(ctx context.Context, name string, data []byte) (string, error) {
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.Bucket),
		Key:           aws.String(name),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("upload to s3://%s/%s: %w", s.Bucket, name, err)
	}
	return s3Scheme + s.Bucket + "/" + name, nil
}
