// Package settings persists the two auto-remove switches.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	appDirName     = "emojiscrub"
	configFileName = "config.json"
)

// Settings holds the persisted configuration.
type Settings struct {
	AutoRemoveOnCreate bool `json:"autoRemoveOnCreate"`
	AutoRemoveOnRename bool `json:"autoRemoveOnRename"`
}

// Defaults returns the settings used for keys missing from the store.
func Defaults() Settings {
	return Settings{
		AutoRemoveOnCreate: false,
		AutoRemoveOnRename: false,
	}
}

// Store loads and saves Settings.
type Store interface {
	Load() (Settings, error)
	Save(Settings) error
}

// FileStore keeps Settings as JSON in a single file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path. An empty path selects
// DefaultPath.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &FileStore{path: path}, nil
}

// DefaultPath returns ~/.config/emojiscrub/config.json.
func DefaultPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// ConfigDir returns ~/.config/emojiscrub without creating it.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home dir: %w", err)
	}
	return filepath.Join(home, ".config", appDirName), nil
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

// Load reads the file and merges it over Defaults. A missing file is not an
// error.
func (s *FileStore) Load() (Settings, error) {
	out := Defaults()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return out, fmt.Errorf("failed to read settings: %w", err)
	}

	// Unmarshal only overwrites the keys present in the file.
	if err := json.Unmarshal(data, &out); err != nil {
		return Defaults(), fmt.Errorf("failed to parse settings %s: %w", s.path, err)
	}
	return out, nil
}

// Save writes settings, replacing the file atomically.
func (s *FileStore) Save(st Settings) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
