// Package fs provides file-based storage for shard files.
package fs

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fwojciec/symdex"
)

// DefaultExtension is the file extension of generated shard files.
const DefaultExtension = ".js"

// Ensure ShardSource implements symdex.ShardSource at compile time.
var _ symdex.ShardSource = (*ShardSource)(nil)

// ShardSource reads shard files from <dir>/<bucket><ext>.
type ShardSource struct {
	dir string
	ext string
}

// NewShardSource creates a ShardSource reading from dir. An empty ext
// means DefaultExtension.
func NewShardSource(dir, ext string) *ShardSource {
	if ext == "" {
		ext = DefaultExtension
	}
	return &ShardSource{dir: dir, ext: ext}
}

// FetchShard implements symdex.ShardSource. A missing file returns
// ENOTFOUND.
func (s *ShardSource) FetchShard(ctx context.Context, id symdex.BucketID) ([]byte, error) {
	name, err := fileName(id, s.ext)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, symdex.Errorf(symdex.ENOTFOUND, "no shard file %s in %s", name, s.dir)
	}
	return data, err
}

// Buckets lists the buckets that have a shard file, sorted by ID.
func (s *ShardSource) Buckets() ([]symdex.BucketID, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var ids []symdex.BucketID
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), s.ext) {
			continue
		}
		ids = append(ids, symdex.BucketID(strings.TrimSuffix(e.Name(), s.ext)))
	}
	slices.Sort(ids)
	return ids, nil
}

// fileName returns the file name for a bucket, rejecting IDs that would
// leave the directory.
func fileName(id symdex.BucketID, ext string) (string, error) {
	s := string(id)
	if s == "" || s == "." || s == ".." || strings.ContainsAny(s, `/\`) {
		return "", symdex.Errorf(symdex.EINVALID, "invalid bucket id %q: path traversal", s)
	}
	return s + ext, nil
}
