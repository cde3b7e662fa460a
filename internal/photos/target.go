package photos

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// Target stores transformed photo bytes under a deterministic key and returns
// the resulting target reference. Storing the same key twice must overwrite,
// never duplicate, so reprocessing a photo is harmless.
type Target interface {
	Store(ctx context.Context, key string, data []byte) (string, error)
}

// Key derives the deterministic target key for a ledger row. It depends only
// on the row identity and its immutable source ref, so every attempt on the
// same photo lands on the same key.
func Key(id int64, sourceRef string) string {
	sum := sha256.Sum256([]byte(sourceRef))
	return fmt.Sprintf("%d-%s.jpg", id, hex.EncodeToString(sum[:8]))
}

// DirTarget stores photos as files under a single directory.
type DirTarget struct {
	dir string
}

// NewDirTarget builds a filesystem target store rooted at dir.
func NewDirTarget(dir string) *DirTarget {
	return &DirTarget{dir: dir}
}

// Store writes data to dir/key via a temp file and rename, so a crashed write
// never leaves a truncated photo behind and a rerun simply replaces the file.
func (t *DirTarget) Store(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return "", fmt.Errorf("create target directory: %w", err)
	}

	finalPath := filepath.Join(t.dir, key)
	tmp, err := os.CreateTemp(t.dir, "."+key+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write photo data: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("sync photo data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("rename into place: %w", err)
	}
	return finalPath, nil
}
