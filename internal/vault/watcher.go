package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/zeebo/blake3"
)

const (
	DefaultInterval    = 2 * time.Second
	DefaultDebounce    = 100 * time.Millisecond
	DefaultMaxHashSize = 64 << 20
)

// WatchOptions configures Watch.
type WatchOptions struct {
	// Poll skips filesystem notifications and only takes periodic snapshots.
	Poll bool
	// Interval between two snapshots when polling.
	Interval time.Duration
	// Debounce groups a burst of notifications into one snapshot.
	Debounce time.Duration
	// MaxHashSize bounds the files whose content digest is kept for rename
	// detection. Larger files are only matched by OS identity.
	MaxHashSize int64
	// OnError receives scan failures and handler errors. Watching continues.
	OnError func(error)
}

type snapshotEntry struct {
	info   fs.FileInfo
	digest [32]byte
	hashed bool
}

type snapshot map[string]snapshotEntry

type watcher struct {
	v       *Vault
	opts    WatchOptions
	prev    snapshot
	watched map[string]bool
}

// Watch follows the tree until ctx is done and emits Created and Renamed
// events.
//
// Filesystem notifications (fsnotify) trigger a new snapshot of the tree; when
// they are unavailable, or opts.Poll is set, a snapshot is taken every
// opts.Interval instead. Entries that appear between two snapshots are paired
// with entries that vanished: the same OS file identity, or for files the same
// blake3 digest of their content, makes a rename; anything else is a creation.
// Events are dispatched one at a time on the calling goroutine.
func (v *Vault) Watch(ctx context.Context, opts WatchOptions) error {
	w := newWatcher(v, opts)
	if err := w.prime(); err != nil {
		return err
	}
	if w.opts.Poll {
		return w.pollLoop(ctx)
	}

	fw, err := w.notifier()
	if err != nil {
		w.report(fmt.Errorf("filesystem notifications unavailable, polling every %s: %w", w.opts.Interval, err))
		return w.pollLoop(ctx)
	}
	defer fw.Close()
	return w.notifyLoop(ctx, fw)
}

// notifier watches the root and every directory of the primed snapshot.
func (w *watcher) notifier() (*fsnotify.Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(w.v.root); err != nil {
		fw.Close()
		return nil, err
	}
	if err := w.watchDirs(fw); err != nil {
		fw.Close()
		return nil, err
	}
	return fw, nil
}

// watchDirs adds every directory of the last snapshot that is not watched yet.
// Watches of removed directories are dropped by fsnotify itself.
func (w *watcher) watchDirs(fw *fsnotify.Watcher) error {
	for rel, e := range w.prev {
		if !e.info.IsDir() || w.watched[rel] {
			continue
		}
		if err := fw.Add(filepath.Join(w.v.root, filepath.FromSlash(rel))); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to watch %s: %w", rel, err)
		}
		w.watched[rel] = true
	}
	for rel := range w.watched {
		if _, ok := w.prev[rel]; !ok {
			delete(w.watched, rel)
		}
	}
	return nil
}

func (w *watcher) notifyLoop(ctx context.Context, fw *fsnotify.Watcher) error {
	timer := time.NewTimer(w.opts.Debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			rel, relevant := w.relevant(ev)
			if !relevant {
				continue
			}
			if ev.Has(fsnotify.Create) {
				// Watch a new directory right away so entries created in it
				// before the next snapshot still notify.
				if info, err := os.Lstat(ev.Name); err == nil && info.IsDir() && !w.watched[rel] {
					if err := fw.Add(ev.Name); err == nil {
						w.watched[rel] = true
					}
				}
			}
			timer.Reset(w.opts.Debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.report(fmt.Errorf("watch error: %w", err))
		case <-timer.C:
			if err := w.poll(ctx); err != nil {
				w.report(err)
			}
			if err := w.watchDirs(fw); err != nil {
				w.report(err)
			}
		}
	}
}

// relevant reports whether ev can change the set of names in the vault and
// returns the vault-relative path it is about.
func (w *watcher) relevant(ev fsnotify.Event) (string, bool) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return "", false
	}
	rel, err := filepath.Rel(w.v.root, ev.Name)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	for _, part := range strings.Split(rel, "/") {
		if isHidden(part) {
			return "", false
		}
	}
	return rel, true
}

func (w *watcher) pollLoop(ctx context.Context) error {
	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.poll(ctx); err != nil {
				w.report(err)
			}
		}
	}
}

func newWatcher(v *Vault, opts WatchOptions) *watcher {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.MaxHashSize <= 0 {
		opts.MaxHashSize = DefaultMaxHashSize
	}
	return &watcher{v: v, opts: opts, watched: make(map[string]bool)}
}

func (w *watcher) report(err error) {
	if w.opts.OnError != nil && err != nil {
		w.opts.OnError(err)
	}
}

func (w *watcher) prime() error {
	snap, err := w.scan()
	if err != nil {
		return fmt.Errorf("failed to scan vault: %w", err)
	}
	w.prev = snap
	return nil
}

type pendingEvent struct {
	event Event
	file  FileRef
}

func (w *watcher) poll(ctx context.Context) error {
	next, err := w.scan()
	if err != nil {
		return fmt.Errorf("failed to scan vault: %w", err)
	}
	events := diff(w.prev, next)
	w.prev = next

	for _, e := range events {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if err := w.v.Emit(ctx, e.event, e.file); err != nil {
			w.report(err)
		}
	}
	return nil
}

func diff(prev, next snapshot) []pendingEvent {
	var added, removed []string
	for p := range next {
		if _, ok := prev[p]; !ok {
			added = append(added, p)
		}
	}
	for p := range prev {
		if _, ok := next[p]; !ok {
			removed = append(removed, p)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)

	used := make([]bool, len(removed))
	events := make([]pendingEvent, 0, len(added))
	for _, p := range added {
		cur := next[p]
		ev := Created
		for i, old := range removed {
			if used[i] || !sameEntry(prev[old], cur) {
				continue
			}
			used[i] = true
			ev = Renamed
			break
		}
		events = append(events, pendingEvent{event: ev, file: NewFileRef(p, cur.info.IsDir())})
	}
	return events
}

func sameEntry(old, cur snapshotEntry) bool {
	if old.info.IsDir() != cur.info.IsDir() {
		return false
	}
	if os.SameFile(old.info, cur.info) {
		return true
	}
	return old.hashed && cur.hashed && old.info.Size() > 0 &&
		old.info.Size() == cur.info.Size() && old.digest == cur.digest
}

func (w *watcher) scan() (snapshot, error) {
	snap := make(snapshot, len(w.prev))
	err := w.v.walk(func(rel string, d fs.DirEntry) error {
		info, err := d.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			return nil
		}
		entry := snapshotEntry{info: info}
		if info.Mode().IsRegular() && info.Size() <= w.opts.MaxHashSize {
			if old, ok := w.prev[rel]; ok && old.hashed && old.info.Size() == info.Size() && old.info.ModTime().Equal(info.ModTime()) {
				entry.digest, entry.hashed = old.digest, true
			} else if digest, err := w.digest(rel); err == nil {
				entry.digest, entry.hashed = digest, true
			}
		}
		snap[rel] = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (w *watcher) digest(rel string) ([32]byte, error) {
	var sum [32]byte
	abs, err := w.v.abs(rel)
	if err != nil {
		return sum, err
	}
	f, err := os.Open(abs)
	if err != nil {
		return sum, err
	}
	defer f.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return sum, err
	}
	copy(sum[:], hasher.Sum(nil))
	return sum, nil
}
