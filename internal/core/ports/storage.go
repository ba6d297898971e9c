package ports

import (
	"context"
	"time"
)

// ObjectStorage is the object-store boundary: upload bytes under a
// bucket+key, issue time-limited presigned read URLs, fetch object bytes,
// and check existence.
type ObjectStorage interface {
	Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error
	PresignedURL(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
	Fetch(ctx context.Context, bucket, key string) ([]byte, error)
	Exists(ctx context.Context, bucket, key string) (bool, error)
}

// ThumbnailCache stores encoded thumbnail bytes under deterministic keys.
type ThumbnailCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
}

// TaskQueue runs best-effort background work. Tasks sharing a key are
// executed in submission order.
type TaskQueue interface {
	Submit(key string, task func(ctx context.Context) error)
}
