// Package storage provides the S3-backed evidence store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/opsdesk/backend/internal/domain/treasury"
	infraconfig "github.com/opsdesk/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

var _ treasury.EvidenceStore = (*S3EvidenceStore)(nil)

const defaultPresignExpiration = 15 * time.Minute

// S3EvidenceStore keeps evidence blobs (withdrawal receipts, deposit
// slips) in an S3-compatible bucket. Works against AWS S3, MinIO and the
// like. The reference it returns is the object key.
type S3EvidenceStore struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	logger        *zap.Logger
}

// S3EvidenceStoreOption is a functional option for configuring S3EvidenceStore
type S3EvidenceStoreOption func(*S3EvidenceStore)

// WithLogger sets a custom logger for S3EvidenceStore
func WithLogger(logger *zap.Logger) S3EvidenceStoreOption {
	return func(s *S3EvidenceStore) {
		s.logger = logger
	}
}

// NewS3EvidenceStore creates a new S3EvidenceStore from configuration
func NewS3EvidenceStore(cfg *infraconfig.StorageConfig, opts ...S3EvidenceStoreOption) (*S3EvidenceStore, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:9000"
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if cfg.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid storage endpoint: %w", err)
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(endpoint)
	})

	store := &S3EvidenceStore{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
// Call this during application startup.
func (s *S3EvidenceStore) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating evidence bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		// Concurrent startup may have created it first
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Put stores a blob for the owning entity and returns its object key.
// Keys are namespaced by kind and owner so an entity's evidence is
// enumerable with a prefix listing.
func (s *S3EvidenceStore) Put(ctx context.Context, kind string, ownerID uuid.UUID, blob []byte, contentType string) (string, error) {
	if kind == "" {
		return "", errors.New("evidence kind is required")
	}
	if len(blob) == 0 {
		return "", errors.New("evidence blob is empty")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("%s/%s/%s", kind, ownerID, uuid.New())
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(string(blob)),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store evidence: %w", err)
	}

	s.logger.Debug("evidence stored",
		zap.String("key", key),
		zap.Int("size", len(blob)),
	)
	return key, nil
}

// Delete removes a previously stored blob
func (s *S3EvidenceStore) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return errors.New("evidence reference is required")
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	})
	if err != nil {
		return fmt.Errorf("failed to delete evidence: %w", err)
	}
	return nil
}

// DownloadURL generates a presigned GET URL for an evidence blob so the
// HTTP layer can hand out time-limited links without proxying the bytes
func (s *S3EvidenceStore) DownloadURL(ctx context.Context, ref string, expiresIn time.Duration) (string, time.Time, error) {
	if ref == "" {
		return "", time.Time{}, errors.New("evidence reference is required")
	}
	if expiresIn <= 0 {
		expiresIn = defaultPresignExpiration
	}

	presignReq, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	}, s3.WithPresignExpires(expiresIn))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate download URL: %w", err)
	}

	return presignReq.URL, time.Now().Add(expiresIn), nil
}

// GetBucket returns the bucket name
func (s *S3EvidenceStore) GetBucket() string {
	return s.bucket
}
