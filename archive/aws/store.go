package aws

import (
	"bytes"
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/pkg/errors"

	"github.com/purechat/purechat-server/archive"
)

// Config holds the connection settings for an S3 compatible backend.
type Config struct {
	// Custom endpoint for backends like MinIO or LocalStack. Leave empty
	// for AWS itself.
	Endpoint string
	Region   string
	Bucket   string

	// Static credentials. When empty the SDK default chain applies.
	AccessKey string
	SecretKey string
}

type store struct {
	client *awss3.Client
	bucket string
}

// NewInS3 returns an archive store backed by an S3 bucket.
func NewInS3(config Config) archive.Store {
	client := awss3.NewFromConfig(aws.Config{Region: config.Region}, func(o *awss3.Options) {
		if config.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = true
		}
		if config.AccessKey != "" {
			o.Credentials = credentials.NewStaticCredentialsProvider(config.AccessKey, config.SecretKey, "")
		}
	})

	return &store{
		client: client,
		bucket: config.Bucket,
	}
}

func (s *store) Put(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}

	input := &awss3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return errors.Wrap(err, "failed to upload object")
	}
	return nil
}

func (s *store) Get(ctx context.Context, key string) ([]byte, error) {
	input := &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}

	output, err := s.client.GetObject(ctx, input)
	if err != nil {
		var notFound *types.NoSuchKey
		if errors.As(err, &notFound) {
			return nil, archive.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to download object")
	}
	defer output.Body.Close()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read object data")
	}
	return data, nil
}
