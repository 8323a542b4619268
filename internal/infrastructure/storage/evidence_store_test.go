package storage

import (
	"testing"

	"github.com/opsdesk/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewS3EvidenceStore_Validation(t *testing.T) {
	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3EvidenceStore(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		cfg := &config.StorageConfig{
			AccessKey: "test-key",
			SecretKey: "test-secret",
		}
		_, err := NewS3EvidenceStore(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("missing access key returns error", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:    "evidence",
			SecretKey: "test-secret",
		}
		_, err := NewS3EvidenceStore(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access key is required")
	})

	t.Run("missing secret key returns error", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:    "evidence",
			AccessKey: "test-key",
		}
		_, err := NewS3EvidenceStore(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret key is required")
	})

	t.Run("valid config creates store", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:       "evidence",
			AccessKey:    "test-key",
			SecretKey:    "test-secret",
			Region:       "us-east-1",
			Endpoint:     "http://localhost:9000",
			UsePathStyle: true,
		}
		store, err := NewS3EvidenceStore(cfg, WithLogger(zap.NewNop()))
		require.NoError(t, err)
		require.NotNil(t, store)
		assert.Equal(t, "evidence", store.GetBucket())
	})

	t.Run("endpoint gains scheme from the SSL flag", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:    "evidence",
			AccessKey: "test-key",
			SecretKey: "test-secret",
			Endpoint:  "minio.internal:9000",
			UseSSL:    true,
		}
		store, err := NewS3EvidenceStore(cfg)
		require.NoError(t, err)
		require.NotNil(t, store)
	})
}
