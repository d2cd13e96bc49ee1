package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
)

// ObjectStore is the narrow view of object storage the media lifecycle
// needs: upload, directory listing, delete, server-side move and public URL
// derivation. The MinIO client satisfies it in production; tests use an
// in-memory fake.
type ObjectStore interface {
	Upload(ctx context.Context, objectPath string, r io.Reader, size int64, contentType string) error
	List(ctx context.Context, prefix string) ([]string, error)
	Remove(ctx context.Context, objectPath string) error
	Move(ctx context.Context, src, dst string) error
	PublicURL(objectPath string) string
}

// MinioStore implements ObjectStore on top of a MinIO bucket.
type MinioStore struct {
	client     *minio.Client
	bucketName string
	publicBase string
}

// NewMinioStore wraps the shared MinIO client for the given bucket.
// publicBase is prefixed onto object paths to form public URLs.
func NewMinioStore(client *minio.Client, bucketName, publicBase string) *MinioStore {
	return &MinioStore{
		client:     client,
		bucketName: bucketName,
		publicBase: strings.TrimSuffix(publicBase, "/"),
	}
}

func (s *MinioStore) Upload(ctx context.Context, objectPath string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucketName, objectPath, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", objectPath, err)
	}
	return nil
}

func (s *MinioStore) List(ctx context.Context, prefix string) ([]string, error) {
	objectCh := s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	var keys []string
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", prefix, object.Err)
		}
		keys = append(keys, object.Key)
	}
	return keys, nil
}

func (s *MinioStore) Remove(ctx context.Context, objectPath string) error {
	if err := s.client.RemoveObject(ctx, s.bucketName, objectPath, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove %s: %w", objectPath, err)
	}
	return nil
}

// Move is a server-side copy followed by a delete of the source; MinIO has
// no native rename.
func (s *MinioStore) Move(ctx context.Context, src, dst string) error {
	_, err := s.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: s.bucketName, Object: dst},
		minio.CopySrcOptions{Bucket: s.bucketName, Object: src},
	)
	if err != nil {
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	if err := s.client.RemoveObject(ctx, s.bucketName, src, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove %s after copy: %w", src, err)
	}
	return nil
}

func (s *MinioStore) PublicURL(objectPath string) string {
	return s.publicBase + "/" + objectPath
}
