package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "none", "config.json"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != Defaults() {
		t.Errorf("Load() = %+v, want defaults", got)
	}
}

func TestLoadMergesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"autoRemoveOnRename": true, "unknown": 1}`), 0644); err != nil {
		t.Fatal(err)
	}
	s, _ := NewFileStore(path)
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Settings{AutoRemoveOnCreate: false, AutoRemoveOnRename: true}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{not json`), 0644); err != nil {
		t.Fatal(err)
	}
	s, _ := NewFileStore(path)
	got, err := s.Load()
	if err == nil {
		t.Fatal("Load of malformed file succeeded")
	}
	if got != Defaults() {
		t.Errorf("Load() on error = %+v, want defaults", got)
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	s, _ := NewFileStore(path)
	want := Settings{AutoRemoveOnCreate: true}
	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("config dir holds %d entries, want only config.json", len(entries))
	}
}

func TestNewFileStoreDefaultPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	s, err := NewFileStore("")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if filepath.Base(s.Path()) != "config.json" || filepath.Base(filepath.Dir(s.Path())) != "emojiscrub" {
		t.Errorf("default path = %q", s.Path())
	}
}
