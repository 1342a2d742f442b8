// Package preferences persists the last committed game and mod directories.
package preferences

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"localization-editor/internal/mod"
)

const fileName = "preferences.yaml"

// Store reads and writes the preference file.
type Store struct {
	path string
}

// NewStore uses the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultStore keeps preferences under the user's config directory.
func DefaultStore() (*Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("locate config directory: %w", err)
	}
	return NewStore(filepath.Join(dir, "localization-editor", fileName)), nil
}

func (s *Store) Path() string { return s.path }

// Load returns the saved location. ok is false when nothing complete has been saved.
func (s *Store) Load() (loc mod.Location, ok bool, err error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return mod.Location{}, false, nil
		}
		return mod.Location{}, false, fmt.Errorf("read preferences: %w", err)
	}

	if err := yaml.Unmarshal(raw, &loc); err != nil {
		return mod.Location{}, false, fmt.Errorf("decode preferences: %w", err)
	}
	if loc.GameRoot == "" || loc.ModRoot == "" {
		return mod.Location{}, false, nil
	}
	return loc, true, nil
}

// Save writes loc, replacing the previous file atomically.
func (s *Store) Save(loc mod.Location) error {
	raw, err := yaml.Marshal(loc)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create preferences directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write preferences: %w", err)
	}
	return nil
}
