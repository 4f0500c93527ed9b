// Package history keeps a journal of the renames emojiscrub performed.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

const (
	historyFileName = "history.json"
	archiveFileName = "history-archive.jsonl.zst"

	DefaultLimit = 100
)

// writeFile is swapped in tests to simulate a failing disk.
var writeFile = os.WriteFile

// Entry records one performed rename.
type Entry struct {
	ID        string `json:"id"`
	Vault     string `json:"vault,omitempty"`
	OldPath   string `json:"old_path"`
	NewPath   string `json:"new_path"`
	Timestamp string `json:"timestamp"`
}

// Journal holds the newest entries in history.json and moves older ones into a
// zstd-compressed JSON Lines archive, one frame per trim.
type Journal struct {
	mu      sync.Mutex
	dir     string
	limit   int
	entries []Entry
}

// Open loads the journal kept in dir. limit <= 0 selects DefaultLimit.
func Open(dir string, limit int) (*Journal, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	j := &Journal{dir: dir, limit: limit}

	data, err := os.ReadFile(filepath.Join(dir, historyFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return j, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	if err := json.Unmarshal(data, &j.entries); err != nil {
		return nil, fmt.Errorf("failed to parse history: %w", err)
	}
	return j, nil
}

// Record prepends e, filling ID and Timestamp when empty.
func (j *Journal) Record(e Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := time.Now()
	if e.ID == "" {
		e.ID = fmt.Sprintf("%d", now.UnixNano())
	}
	if e.Timestamp == "" {
		e.Timestamp = now.Format(time.RFC3339)
	}

	entries := append([]Entry{e}, j.entries...)
	var overflow []Entry
	if len(entries) > j.limit {
		overflow = entries[j.limit:]
		entries = entries[:j.limit:j.limit]
	}
	// history.json goes first: an entry must never be both current and
	// archived.
	if err := j.save(entries); err != nil {
		return err
	}
	j.entries = entries
	if len(overflow) > 0 {
		return j.archive(overflow)
	}
	return nil
}

// List returns the kept entries, newest first.
func (j *Journal) List() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]Entry(nil), j.entries...)
}

// Archived returns the entries moved out of the journal, oldest trim first.
func (j *Journal) Archived() ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.Open(filepath.Join(j.dir, archiveFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open history archive: %w", err)
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	var out []Entry
	dec := json.NewDecoder(zr)
	for {
		var e Entry
		if err := dec.Decode(&e); err == io.EOF {
			return out, nil
		} else if err != nil {
			return out, fmt.Errorf("failed to decode history archive: %w", err)
		}
		out = append(out, e)
	}
}

func (j *Journal) archive(entries []Entry) error {
	if err := os.MkdirAll(j.dir, 0755); err != nil {
		return fmt.Errorf("failed to create history dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(j.dir, archiveFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open history archive: %w", err)
	}
	defer f.Close()

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	enc := json.NewEncoder(zw)
	// Oldest first, so the archive reads chronologically.
	for i := len(entries) - 1; i >= 0; i-- {
		if err := enc.Encode(entries[i]); err != nil {
			zw.Close()
			return fmt.Errorf("failed to archive history: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to archive history: %w", err)
	}
	return f.Close()
}

func (j *Journal) save(entries []Entry) error {
	if err := os.MkdirAll(j.dir, 0755); err != nil {
		return fmt.Errorf("failed to create history dir: %w", err)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	if err := writeFile(filepath.Join(j.dir, historyFileName), data, 0644); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}
