package exporter

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	bucket, key, contentType string
	body                     []byte
	err                      error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.bucket = aws.ToString(in.Bucket)
	f.key = aws.ToString(in.Key)
	f.contentType = aws.ToString(in.ContentType)
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = b
	return &s3.PutObjectOutput{}, nil
}

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		in      string
		bucket  string
		key     string
		wantErr bool
	}{
		{"s3://b/k.json", "b", "k.json", false},
		{"s3://b/dir/k.json", "b", "dir/k.json", false},
		{"s3://b", "b", "", false},
		{"s3://b/", "b", "", false},
		{"s3://", "", "", true},
		{"file:///x", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			b, k, err := ParseS3URL(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrBadS3URL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.bucket, b)
			assert.Equal(t, tt.key, k)
		})
	}
}

func TestS3Sink_Write(t *testing.T) {
	fc := &fakeS3{}
	sink := &S3Sink{Client: fc, Bucket: "backups"}

	loc, err := sink.Write(context.Background(), "vault/x.json", []byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, "s3://backups/vault/x.json", loc)
	assert.Equal(t, "backups", fc.bucket)
	assert.Equal(t, "vault/x.json", fc.key)
	assert.Equal(t, "application/json", fc.contentType)
	assert.Equal(t, []byte("{}"), fc.body)
}

func TestS3Sink_WriteError(t *testing.T) {
	sink := &S3Sink{Client: &fakeS3{err: errors.New("denied")}, Bucket: "b"}

	_, err := sink.Write(context.Background(), "k", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
}

func withFakeAWS(t *testing.T, fc *fakeS3, loadErr error) *s3.Options {
	t.Helper()
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig, newS3ClientFromConfig = origLoad, origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		if loadErr != nil {
			return aws.Config{}, loadErr
		}
		var lo config.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		return aws.Config{Region: lo.Region, Credentials: lo.Credentials}, nil
	}

	got := &s3.Options{}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) PutObjectAPI {
		got.Region = cfg.Region
		for _, fn := range optFns {
			fn(got)
		}
		return fc
	}
	return got
}

func TestNewS3Client_BaseEndpoint(t *testing.T) {
	got := withFakeAWS(t, &fakeS3{}, nil)

	_, err := NewS3Client(context.Background(), S3Config{
		Region:       "us-east-1",
		BaseEndpoint: "http://localhost:9000",
		AccessKey:    "minio",
		SecretKey:    "minio123",
	})
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", got.Region)
	assert.Equal(t, "http://localhost:9000", aws.ToString(got.BaseEndpoint))
	assert.True(t, got.UsePathStyle)
}

func TestNewS3Client_LoadError(t *testing.T) {
	withFakeAWS(t, &fakeS3{}, errors.New("no config"))

	_, err := NewS3Client(context.Background(), S3Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load aws config")
}

func TestOpen_S3(t *testing.T) {
	fc := &fakeS3{}
	withFakeAWS(t, fc, nil)

	sink, name, err := Open(context.Background(), "s3://bk/daily/", "d.json", Options{})
	require.NoError(t, err)
	assert.Equal(t, "daily/d.json", name)

	loc, err := sink.Write(context.Background(), name, []byte("1"))
	require.NoError(t, err)
	assert.Equal(t, "s3://bk/daily/d.json", loc)
	assert.Equal(t, "bk", fc.bucket)
}

func TestOpen_S3DefaultBucket(t *testing.T) {
	withFakeAWS(t, &fakeS3{}, nil)

	sink, name, err := Open(context.Background(), "s3://", "d.json", Options{S3: S3Config{Bucket: "cfg-bucket"}})
	require.NoError(t, err)
	assert.Equal(t, "d.json", name)
	assert.Equal(t, "cfg-bucket", sink.(*S3Sink).Bucket)

	_, _, err = Open(context.Background(), "s3://", "d.json", Options{})
	require.ErrorIs(t, err, ErrBadS3URL)
}
