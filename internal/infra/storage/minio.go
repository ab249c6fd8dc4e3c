package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore keeps listing images in a MinIO (S3-compatible) bucket.
type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func NewMinioStore(endpoint, accessKey, secretKey, bucket string, useSSL bool, publicURL string) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", endpoint, err)
	}

	ctx := context.Background()
	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		exists, existsErr := client.BucketExists(ctx, bucket)
		if existsErr != nil || !exists {
			return nil, fmt.Errorf("failed to make/verify bucket %s: %w", bucket, err)
		}
	}

	if publicURL == "" {
		publicURL = client.EndpointURL().String()
	}

	return &MinioStore{client: client, bucket: bucket, publicURL: publicURL}, nil
}

func (s *MinioStore) objectKey(folder, publicID string) string {
	return folder + "/" + publicID
}

func (s *MinioStore) Upload(ctx context.Context, data []byte, contentType, folder, publicID string) (UploadResult, error) {
	key := s.objectKey(folder, publicID)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return UploadResult{}, err
	}
	return UploadResult{
		URL:      fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, key),
		PublicID: publicID,
	}, nil
}

func (s *MinioStore) DestroyOne(ctx context.Context, folder, publicID string) error {
	return s.client.RemoveObject(ctx, s.bucket, s.objectKey(folder, publicID), minio.RemoveObjectOptions{})
}

func (s *MinioStore) DestroyMany(ctx context.Context, folder string, publicIDs []string) error {
	var firstErr error
	for _, id := range publicIDs {
		if err := s.DestroyOne(ctx, folder, id); err != nil {
			log.Printf("storage: failed to remove object %s/%s: %v", folder, id, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
