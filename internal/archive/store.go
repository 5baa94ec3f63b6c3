package archive

import "context"

// Bucket is a handle to one archive location, ready to receive files.
type Bucket interface {
	// Place stores the file in the bucket and returns a retrievable link.
	Place(ctx context.Context, fileName string, content []byte) (string, error)
}

// Store creates archive buckets. EnsureBucket is idempotent: asking for the
// same key twice must yield the same location, never a duplicate.
type Store interface {
	EnsureBucket(ctx context.Context, key string) (Bucket, error)
}
