package credential

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hongyanca/coding-plan-quota-query/internal/errs"
)

// Store loads and saves the account file at a fixed path.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

// Load reads and parses the account file. A missing file wraps
// errs.ErrNotFound; malformed content wraps errs.ErrParse.
func (s *Store) Load() (*Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", errs.ErrNotFound, s.path)
		}
		return nil, fmt.Errorf("reading account file: %w", err)
	}
	return Parse(data)
}

// Save replaces the account file with r. The content goes to a uniquely
// named sibling temp file first and is renamed into place, so concurrent
// writers never share a temp file and the last rename wins.
func (s *Store) Save(r *Record) error {
	content, err := r.Encode()
	if err != nil {
		return fmt.Errorf("encoding account file: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("writing account file: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".account-*")
	if err != nil {
		return fmt.Errorf("writing account file: %w", err)
	}
	if err := writeAndRename(tmp, content, s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing account file: %w", err)
	}
	return nil
}

func writeAndRename(tmp *os.File, content []byte, path string) error {
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
