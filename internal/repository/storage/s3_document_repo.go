package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	cfg "github.com/dafibh/homebudget/homebudget-backend/internal/config"
	"github.com/dafibh/homebudget/homebudget-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// ObjectAPI is the subset of the S3 client the document repository uses
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3DocumentRepository implements domain.DocumentRepository with one S3 object per document
type S3DocumentRepository struct {
	client ObjectAPI
	bucket string
	key    string
}

// NewS3DocumentRepository creates a new S3 document repository
func NewS3DocumentRepository(ctx context.Context, s3cfg cfg.S3Config, documentKey string) (*S3DocumentRepository, error) {
	client, err := newClient(ctx, s3cfg)
	if err != nil {
		return nil, err
	}

	if err := ensureBucket(ctx, client, s3cfg.Bucket); err != nil {
		return nil, err
	}

	return NewS3DocumentRepositoryWithClient(client, s3cfg.Bucket, documentKey), nil
}

// NewS3DocumentRepositoryWithClient wraps an existing client
func NewS3DocumentRepositoryWithClient(client ObjectAPI, bucket, documentKey string) *S3DocumentRepository {
	return &S3DocumentRepository{
		client: client,
		bucket: bucket,
		key:    objectKey(documentKey),
	}
}

func objectKey(documentKey string) string {
	return fmt.Sprintf("documents/%s.json", documentKey)
}

func newClient(ctx context.Context, s3cfg cfg.S3Config) (*s3.Client, error) {
	// Build AWS config options
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(s3cfg.Region),
	}

	// Add credentials if provided
	if s3cfg.AccessKeyID != "" && s3cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				s3cfg.AccessKeyID,
				s3cfg.SecretAccessKey,
				"",
			),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Optional endpoint override for MinIO/LocalStack
	if s3cfg.Endpoint != "" {
		return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(s3cfg.Endpoint)
			o.UsePathStyle = true // Required for MinIO
		}), nil
	}
	return s3.NewFromConfig(awsCfg), nil
}

// ensureBucket creates the bucket if it doesn't exist (private, no policy)
func ensureBucket(ctx context.Context, client *s3.Client, bucket string) error {
	_, err := client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket (may be permission denied): %w", err)
	}

	_, err = client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Load downloads and decodes the document. A missing object is an empty document.
func (r *S3DocumentRepository) Load(ctx context.Context) (*domain.Document, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key),
	})
	if err != nil {
		if isMissingObject(err) {
			return domain.NewDocument(), nil
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	doc, warnings, err := domain.DecodeDocument(data)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		log.Warn().Str("key", r.key).Str("section", w.Section).Str("category", w.Category).Err(w.Err).Msg("Reset malformed document section")
	}
	return doc, nil
}

// Save uploads the document, replacing the previous object
func (r *S3DocumentRepository) Save(ctx context.Context, doc *domain.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(r.key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("failed to upload document: %w", err)
	}
	return nil
}

func isMissingObject(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	// Some S3-compatible stores answer a plain NotFound code
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "NoSuchKey" || apiErr.ErrorCode() == "NotFound"
	}
	return false
}
