package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	apperrors "github.com/acadease/backend/errors"
	"github.com/acadease/backend/pkg/config"
)

const stagingPrefix = "staging/"

// MediaStore stages uploaded audio and image payloads in object storage
// before they are handed to the transcription provider. Staged objects are
// transient; the sweeper removes anything older than the configured TTL.
type MediaStore struct {
	client *minio.Client
	bucket string
}

// NewMediaStore creates a media store and ensures the bucket exists
func NewMediaStore(cfg *config.StorageConfig) (*MediaStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	ms := &MediaStore{
		client: client,
		bucket: cfg.BucketName,
	}

	if err := ms.ensureBucket(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}

	return ms, nil
}

func (ms *MediaStore) ensureBucket(ctx context.Context) error {
	exists, err := ms.client.BucketExists(ctx, ms.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := ms.client.MakeBucket(ctx, ms.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

// StageMedia stores a media payload under a fresh staging key and returns
// the key
func (ms *MediaStore) StageMedia(ctx context.Context, data []byte, contentType string) (string, error) {
	key := stagingPrefix + uuid.New().String()

	_, err := ms.client.PutObject(ctx, ms.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", apperrors.ErrStorageFailed("stage media", err)
	}

	return key, nil
}

// Remove deletes a staged object. Called once the pipeline no longer needs
// the payload.
func (ms *MediaStore) Remove(ctx context.Context, key string) error {
	if err := ms.client.RemoveObject(ctx, ms.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return apperrors.ErrStorageFailed("remove staged media", err)
	}
	return nil
}

// SweepExpired removes staged objects older than ttl and returns how many
// were deleted
func (ms *MediaStore) SweepExpired(ctx context.Context, ttl time.Duration) (int, error) {
	cutoff := time.Now().Add(-ttl)
	removed := 0

	objectCh := ms.client.ListObjects(ctx, ms.bucket, minio.ListObjectsOptions{
		Prefix:    stagingPrefix,
		Recursive: true,
	})

	for object := range objectCh {
		if object.Err != nil {
			return removed, apperrors.ErrStorageFailed("list staged media", object.Err)
		}
		if object.LastModified.After(cutoff) {
			continue
		}
		if err := ms.client.RemoveObject(ctx, ms.bucket, object.Key, minio.RemoveObjectOptions{}); err != nil {
			return removed, apperrors.ErrStorageFailed("sweep "+path.Base(object.Key), err)
		}
		removed++
	}

	return removed, nil
}
