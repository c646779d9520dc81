// Package file stores client state as one file per key under a directory,
// the on-disk counterpart of browser local storage.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PabloGalante/studybuddy/internal/domain"
)

type StateStore struct {
	root string
}

// NewStateStore creates the directory if needed.
func NewStateStore(root string) (*StateStore, error) {
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("file state store: %w", err)
	}
	return &StateStore{root: root}, nil
}

func (s *StateStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("file state store: invalid key %q", key)
	}
	return filepath.Join(s.root, key+".json"), nil
}

func (s *StateStore) Get(_ context.Context, key string) (string, error) {
	path, err := s.path(key)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", domain.ErrKeyNotFound
		}
		return "", fmt.Errorf("file state store: read %s: %w", key, err)
	}
	return string(data), nil
}

// Set writes through a temp file and rename so a crash never leaves half a value.
func (s *StateStore) Set(_ context.Context, key, value string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.root, "."+key+"-*")
	if err != nil {
		return fmt.Errorf("file state store: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return fmt.Errorf("file state store: write %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("file state store: sync %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file state store: close %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("file state store: rename %s: %w", key, err)
	}
	return nil
}

func (s *StateStore) Delete(_ context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("file state store: delete %s: %w", key, err)
	}
	return nil
}

// Keys lists stored keys, skipping temp files.
func (s *StateStore) Keys(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("file state store: list: %w", err)
	}

	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(keys)
	return keys, nil
}
