package archive

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketKey(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{date: "15/03/2025", want: "202503"},
		{date: "05/01/2025", want: "202501"},
		{date: "20/01/2025", want: "202501"},
		{date: "31/12/2024", want: "202412"},
		// No calendar validation: digits are taken verbatim.
		{date: "99/99/9999", want: "999999"},
		{date: "", want: RootBucket},
		{date: "2025-03-15", want: RootBucket},
		{date: "15/03/25", want: RootBucket},
		{date: "not a date", want: RootBucket},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BucketKey(tt.date), "date %q", tt.date)
	}
}

func TestFSStorePlacesFileInBucket(t *testing.T) {
	base := t.TempDir()
	s, err := NewFSStore(base, nil)
	require.NoError(t, err)

	ctx := context.Background()
	bucket, err := s.EnsureBucket(ctx, "202503")
	require.NoError(t, err)

	link, err := bucket.Place(ctx, "facture.pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "file://"), "link %q", link)

	got, err := os.ReadFile(filepath.Join(base, "202503", "facture.pdf"))
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), got)
}

func TestFSStoreEnsureBucketIdempotent(t *testing.T) {
	base := t.TempDir()
	s, err := NewFSStore(base, nil)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = s.EnsureBucket(ctx, "202501")
	require.NoError(t, err)
	_, err = s.EnsureBucket(ctx, "202501")
	require.NoError(t, err)

	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFSStoreRootBucket(t *testing.T) {
	base := t.TempDir()
	s, err := NewFSStore(base, nil)
	require.NoError(t, err)

	ctx := context.Background()
	bucket, err := s.EnsureBucket(ctx, RootBucket)
	require.NoError(t, err)

	_, err = bucket.Place(ctx, "undated.pdf", []byte("%PDF"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(base, "undated.pdf"))
	require.NoError(t, err)
}

func TestFSBucketStripsPathComponents(t *testing.T) {
	base := t.TempDir()
	s, err := NewFSStore(base, nil)
	require.NoError(t, err)

	ctx := context.Background()
	bucket, err := s.EnsureBucket(ctx, "202501")
	require.NoError(t, err)

	_, err = bucket.Place(ctx, "../../evil.pdf", []byte("%PDF"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(base, "202501", "evil.pdf"))
	require.NoError(t, err)
}
