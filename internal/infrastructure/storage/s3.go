package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jhoicas/homecare-fulfillment/internal/application/ports"
	"github.com/jhoicas/homecare-fulfillment/pkg/config"
)

var _ ports.ObjectStorage = (*S3Storage)(nil)

// S3Storage sube objetos con AWS SDK v2. Sirve para AWS S3, MinIO, R2 y otros compatibles.
type S3Storage struct {
	client    *s3.Client
	bucket    string
	urlPrefix string
}

// NewS3Storage crea el cliente. Sin access key usa la cadena de credenciales por defecto (IAM role, env).
func NewS3Storage(ctx context.Context, cfg config.StorageConfig) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage: bucket requerido")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: configuración AWS: %w", err)
	}

	endpoint := cfg.Endpoint
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return &S3Storage{client: client, bucket: cfg.Bucket, urlPrefix: cfg.PublicURLPrefix}, nil
}

// Upload sube el objeto con PutObject.
func (s *S3Storage) Upload(ctx context.Context, key string, data []byte, contentType string) (ports.StoredObject, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return ports.StoredObject{}, fmt.Errorf("storage: subir %s a s3: %w", key, err)
	}
	return ports.StoredObject{
		Key: key,
		URL: publicURL(s.urlPrefix, key, fmt.Sprintf("s3://%s/%s", s.bucket, key)),
	}, nil
}
