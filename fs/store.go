package fs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fwojciec/symdex"
)

// Ensure MirrorStore implements symdex.ShardWriter at compile time.
var _ symdex.ShardWriter = (*MirrorStore)(nil)

// MirrorStore writes shard files with atomic update semantics.
// Files are saved to a temporary directory, then moved atomically on Commit.
type MirrorStore struct {
	baseDir string
	name    string
	ext     string
}

// NewMirrorStore creates a new MirrorStore.
// baseDir is the parent directory, name is the output directory name.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewMirrorStore(baseDir, name, ext string) *MirrorStore {
	if ext == "" {
		ext = DefaultExtension
	}
	return &MirrorStore{
		baseDir: baseDir,
		name:    name,
		ext:     ext,
	}
}

func (s *MirrorStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

// Dir returns the directory shard files end up in after Commit.
func (s *MirrorStore) Dir() string {
	return filepath.Join(s.baseDir, s.name)
}

// SaveShard implements symdex.ShardWriter.
func (s *MirrorStore) SaveShard(ctx context.Context, id symdex.BucketID, data []byte) error {
	name, err := fileName(id, s.ext)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.tempDir(), 0755); err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(s.tempDir(), name), data, 0644)
}

// Commit replaces the output directory with the saved files.
func (s *MirrorStore) Commit() error {
	// A commit with nothing saved produces an empty mirror.
	if err := os.MkdirAll(s.tempDir(), 0755); err != nil {
		return err
	}

	if err := os.RemoveAll(s.Dir()); err != nil {
		return err
	}

	return os.Rename(s.tempDir(), s.Dir())
}

// Abort discards the saved files.
func (s *MirrorStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}
