package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kellemar/text-analyzer/internal/core/domain"
)

// Storage keeps uploaded originals on the local filesystem under a single
// bucket directory. Keys are flat file names; path traversal is rejected.
type Storage struct {
	bucketPath string
}

func New(bucketPath string) (*Storage, error) {
	if bucketPath == "" {
		return nil, errors.New("localfs: bucket path is required")
	}
	if err := os.MkdirAll(bucketPath, 0o755); err != nil {
		return nil, fmt.Errorf("localfs: create bucket dir: %w", err)
	}
	return &Storage{bucketPath: bucketPath}, nil
}

func (s *Storage) Save(ctx context.Context, key string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	f, err := os.CreateTemp(s.bucketPath, ".upload-*")
	if err != nil {
		return fmt.Errorf("localfs: create temp file: %w", err)
	}
	tmp := f.Name()
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("localfs: write %q: %w", key, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("localfs: close %q: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("localfs: rename %q: %w", key, err)
	}
	return nil
}

func (s *Storage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.WrapError(domain.ErrNotFound, "open stored object", errors.New(key))
		}
		return nil, fmt.Errorf("localfs: open %q: %w", key, err)
	}
	return f, nil
}

func (s *Storage) resolve(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", domain.WrapError(domain.ErrInvalidInput, "resolve object key", errors.New("invalid key"))
	}
	return filepath.Join(s.bucketPath, key), nil
}
