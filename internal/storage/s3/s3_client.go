// Package s3 stores shipment documents in S3 or an S3-compatible endpoint.
package s3

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"packslip/internal/config"
	"packslip/internal/domain"
	"packslip/internal/port"
)

// DocumentKey returns the object key a shipment document is stored under.
func DocumentKey(docID uuid.UUID, fileName string) string {
	return path.Join("documents", docID.String(), path.Base(fileName))
}

// ContentDisposition builds an attachment header value for a download name.
func ContentDisposition(fileName string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": path.Base(fileName)})
}

type documentStore struct {
	client    *s3.Client
	presigner *s3.PresignClient
	uploader  *manager.Uploader
}

// NewS3Client creates a new S3-backed ObjectStorage implementation. A custom
// endpoint (MinIO, LocalStack) switches to path-style addressing.
func NewS3Client(cfg *config.S3Config) (port.ObjectStorage, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &documentStore{
		client:    client,
		presigner: s3.NewPresignClient(client),
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			u.Concurrency = 2
		}),
	}, nil
}

func (c *documentStore) Put(ctx context.Context, input port.PutObjectInput) error {
	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(input.Ref.Bucket),
		Key:         aws.String(input.Ref.Key),
		Body:        input.Body,
		ContentType: aws.String(input.ContentType),
		Metadata:    input.Metadata,
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", input.Ref.Key, err)
	}
	return nil
}

func (c *documentStore) Get(ctx context.Context, ref port.ObjectRef, maxBytes int64) ([]byte, error) {
	result, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(ref.Bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get %s: %w", ref.Key, err)
	}
	defer result.Body.Close()

	if maxBytes > 0 && result.ContentLength != nil && *result.ContentLength > maxBytes {
		return nil, fmt.Errorf("s3 get %s: %d bytes: %w", ref.Key, *result.ContentLength, domain.ErrFileTooLarge)
	}
	return readBounded(result.Body, maxBytes)
}

// readBounded reads r fully, failing once more than maxBytes arrive.
func readBounded(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("s3 read: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, domain.ErrFileTooLarge
	}
	return data, nil
}

func (c *documentStore) Delete(ctx context.Context, ref port.ObjectRef) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(ref.Bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", ref.Key, err)
	}
	return nil
}

func (c *documentStore) PresignGet(ctx context.Context, ref port.ObjectRef, expiry time.Duration, fileName string) (string, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(ref.Bucket),
		Key:    aws.String(ref.Key),
	}
	if fileName != "" {
		input.ResponseContentDisposition = aws.String(ContentDisposition(fileName))
	}
	result, err := c.presigner.PresignGetObject(ctx, input, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("s3 presign %s: %w", ref.Key, err)
	}
	return result.URL, nil
}
