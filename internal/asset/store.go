// Package asset provides durable storage for uploaded video files.
package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
)

// Store errors.
var (
	ErrAssetNotFound = errors.New("asset not found")
	ErrInvalidRef    = errors.New("invalid asset reference")
)

// Store keeps video files in a flat directory, one file per reference.
// References are ULIDs plus the original extension: the time component
// keeps them ordered, the random component keeps them collision-free.
type Store struct {
	dir string
}

// NewStore opens the asset directory, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create asset dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Store persists the bytes from r and returns the generated reference.
// The file is fully written before the reference is handed out; a failed
// write removes the partial file.
func (s *Store) Store(ctx context.Context, r io.Reader, originalName string) (string, error) {
	ref := ulid.Make().String() + sanitizeExt(originalName)
	path := filepath.Join(s.dir, ref)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create asset: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write asset: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close asset: %w", err)
	}

	return ref, nil
}

// Resolve opens the stored bytes for a reference. It is read-only and has
// no side effects.
func (s *Store) Resolve(ref string) (io.ReadSeekCloser, error) {
	if !validRef(ref) {
		return nil, ErrInvalidRef
	}

	f, err := os.Open(filepath.Join(s.dir, ref))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrAssetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open asset: %w", err)
	}
	return f, nil
}

// Ping checks that the asset directory is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := os.Stat(s.dir); err != nil {
		return fmt.Errorf("asset dir: %w", err)
	}
	return nil
}

// sanitizeExt keeps the original extension when it is a plain
// alphanumeric token, and drops anything that could smuggle path syntax.
func sanitizeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if len(ext) < 2 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

// validRef rejects references that escape the asset directory.
func validRef(ref string) bool {
	return ref != "" && ref != "." && ref != ".." &&
		!strings.ContainsAny(ref, "/\\") && filepath.Base(ref) == ref
}
