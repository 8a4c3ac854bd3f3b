package s3

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/segbench/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_S3Store(t *testing.T) {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		t.Skip("Skipping S3 integration test: S3_BUCKET not set")
	}

	ctx := context.Background()
	cfg, err := config.LoadDefaultConfig(ctx)
	require.NoError(t, err)

	// Create a unique prefix for this test run
	prefix := fmt.Sprintf("test-segbench-%d/", time.Now().UnixNano())
	store := NewStore(s3.NewFromConfig(cfg), bucket, prefix)

	t.Run("Put and Read", func(t *testing.T) {
		name := "test.blob"
		data := make([]byte, 1024*1024) // 1MB
		_, _ = rand.Read(data)

		require.NoError(t, store.Put(ctx, name, data, blobstore.PutOptions{ContentType: "application/octet-stream"}))

		blobs, err := store.List(ctx, "")
		require.NoError(t, err)
		assert.Contains(t, blobs, name)

		got, err := blobstore.ReadAll(ctx, store, name)
		require.NoError(t, err)
		assert.Equal(t, data, got)

		require.NoError(t, store.Delete(ctx, name))
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := store.Open(ctx, "nonexistent")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})
}
