package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"backline/logger"

	"github.com/minio/minio-go/v7"
)

// BucketStats summarizes bucket contents.
type BucketStats struct {
	TotalObjects int64
	TotalSize    int64
	LastModified time.Time
}

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	ContentType  string
}

// Bucket bundles the maintenance operations used by the CLI.
type Bucket struct {
	client     *minio.Client
	bucketName string
}

// NewBucket wraps the shared client for maintenance use.
func NewBucket(client *minio.Client, bucketName string) *Bucket {
	return &Bucket{client: client, bucketName: bucketName}
}

// ListObjects returns all objects under prefix together with bucket stats.
func (b *Bucket) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, *BucketStats, error) {
	stats := &BucketStats{}
	var objects []ObjectInfo

	objectCh := b.client.ListObjects(ctx, b.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	for object := range objectCh {
		if object.Err != nil {
			return nil, nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}

		stats.TotalObjects++
		stats.TotalSize += object.Size
		if object.LastModified.After(stats.LastModified) {
			stats.LastModified = object.LastModified
		}

		objects = append(objects, ObjectInfo{
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
			ContentType:  object.ContentType,
		})
	}

	return objects, stats, nil
}

// PrintStatus logs a bucket status report for the given prefix.
func (b *Bucket) PrintStatus(ctx context.Context, prefix string) error {
	objects, stats, err := b.ListObjects(ctx, prefix)
	if err != nil {
		return err
	}

	logger.Info("Bucket status",
		logger.String("bucket", b.bucketName),
		logger.String("prefix", prefix),
		logger.Int64("objects", stats.TotalObjects),
		logger.String("totalSize", formatSize(stats.TotalSize)),
		logger.String("lastModified", stats.LastModified.Format(time.RFC3339)))

	for _, obj := range objects {
		logger.Info("Object",
			logger.String("key", obj.Key),
			logger.String("size", formatSize(obj.Size)),
			logger.String("modified", obj.LastModified.Format(time.RFC3339)))
	}

	return nil
}

// DeleteDirectory removes every object under prefix.
func (b *Bucket) DeleteDirectory(ctx context.Context, prefix string) (int, error) {
	objects, _, err := b.ListObjects(ctx, prefix)
	if err != nil {
		return 0, err
	}
	if len(objects) == 0 {
		return 0, fmt.Errorf("directory %s is empty or does not exist", prefix)
	}

	objectsCh := make(chan minio.ObjectInfo, len(objects))
	go func() {
		defer close(objectsCh)
		for _, obj := range objects {
			objectsCh <- minio.ObjectInfo{Key: obj.Key}
		}
	}()

	errorsCh := b.client.RemoveObjects(ctx, b.bucketName, objectsCh, minio.RemoveObjectsOptions{})
	for err := range errorsCh {
		if err.Err != nil {
			return 0, fmt.Errorf("failed to delete object %s: %w", err.ObjectName, err.Err)
		}
	}

	return len(objects), nil
}

// PruneTempObjects removes orphaned temporary upload objects older than
// maxAge. Temp objects are the "tmp-" named leftovers of replace sequences
// that failed between upload and rename.
func (b *Bucket) PruneTempObjects(ctx context.Context, maxAge time.Duration) (int, error) {
	objects, _, err := b.ListObjects(ctx, "")
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	pruned := 0
	for _, obj := range objects {
		base := obj.Key
		if idx := strings.LastIndex(base, "/"); idx >= 0 {
			base = base[idx+1:]
		}
		if !strings.HasPrefix(base, "tmp-") || obj.LastModified.After(cutoff) {
			continue
		}
		if err := b.client.RemoveObject(ctx, b.bucketName, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return pruned, fmt.Errorf("failed to prune %s: %w", obj.Key, err)
		}
		logger.Info("Pruned temp object", logger.String("key", obj.Key))
		pruned++
	}

	return pruned, nil
}

// formatSize renders a byte count for humans.
func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
