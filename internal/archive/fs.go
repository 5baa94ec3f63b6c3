package archive

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FSStore archives files under a base directory on the local filesystem,
// one subdirectory per bucket key.
type FSStore struct {
	basePath string
	logger   *slog.Logger
}

func NewFSStore(basePath string, logger *slog.Logger) (*FSStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}
	return &FSStore{basePath: basePath, logger: logger}, nil
}

// EnsureBucket creates the bucket directory if absent. MkdirAll makes the
// operation naturally idempotent.
func (s *FSStore) EnsureBucket(_ context.Context, key string) (Bucket, error) {
	dir := s.basePath
	if key != RootBucket {
		dir = filepath.Join(s.basePath, key)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure bucket %q: %w", key, err)
	}
	return &fsBucket{dir: dir, logger: s.logger}, nil
}

type fsBucket struct {
	dir    string
	logger *slog.Logger
}

func (b *fsBucket) Place(_ context.Context, fileName string, content []byte) (string, error) {
	// Base only: attachment names must not escape the bucket.
	path := filepath.Join(b.dir, filepath.Base(fileName))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("archive %s: %w", fileName, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	link := "file://" + filepath.ToSlash(abs)
	b.logger.Debug("archive.place.ok", "file", fileName, "link", link)
	return link, nil
}
