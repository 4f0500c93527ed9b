package gui

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/example/emojiscrub/internal/history"
	"github.com/example/emojiscrub/internal/settings"
)

type events struct {
	mu  sync.Mutex
	got map[string][]string
}

func (e *events) emit(event string, data ...interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.got == nil {
		e.got = make(map[string][]string)
	}
	for _, d := range data {
		e.got[event] = append(e.got[event], d.(string))
	}
}

func newTestApp(t *testing.T, files ...string) (*App, *events, string, *settings.FileStore) {
	t.Helper()
	dir := t.TempDir()
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f), []byte(f), 0644); err != nil {
			t.Fatal(err)
		}
	}
	store, err := settings.NewFileStore(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	journal, err := history.Open(t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}

	ev := &events{}
	a := NewApp("")
	a.emit = ev.emit
	if err := a.init(store, journal); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() { a.Shutdown(context.Background()) })
	return a, ev, dir, store
}

func TestRemoveAllWithoutVault(t *testing.T) {
	a, _, _, _ := newTestApp(t)
	if _, err := a.RemoveAll(); err == nil {
		t.Fatal("RemoveAll without a vault succeeded")
	}
}

func TestRemoveAllEmitsNotices(t *testing.T) {
	a, ev, dir, _ := newTestApp(t, "Trip \U0001F1EF\U0001F1F5.md", "todo.md")
	if err := a.OpenVault(dir); err != nil {
		t.Fatalf("OpenVault: %v", err)
	}
	if a.GetVault() == "" {
		t.Error("GetVault() is empty after OpenVault")
	}

	sum, err := a.RemoveAll()
	if err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	if diff := cmp.Diff(Summary{Renamed: 1, Total: 2, Errors: []string{}}, sum); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}

	ev.mu.Lock()
	notices := append([]string(nil), ev.got["notice"]...)
	ev.mu.Unlock()
	sort.Strings(notices)
	if diff := cmp.Diff([]string{"Trip \U0001F1EF\U0001F1F5 is renamed to Trip "}, notices); diff != "" {
		t.Errorf("notices mismatch (-want +got):\n%s", diff)
	}
	if h := a.GetHistory(); len(h) != 1 || h[0].NewPath != "Trip .md" {
		t.Errorf("history = %+v", h)
	}
}

func TestSettersPersistAndToggle(t *testing.T) {
	a, _, dir, store := newTestApp(t)
	if err := a.OpenVault(dir); err != nil {
		t.Fatalf("OpenVault: %v", err)
	}

	if err := a.SetAutoRemoveOnCreate(true); err != nil {
		t.Fatalf("SetAutoRemoveOnCreate: %v", err)
	}
	if err := a.SetAutoRemoveOnRename(true); err != nil {
		t.Fatalf("SetAutoRemoveOnRename: %v", err)
	}
	if err := a.SetAutoRemoveOnRename(false); err != nil {
		t.Fatalf("SetAutoRemoveOnRename: %v", err)
	}

	want := settings.Settings{AutoRemoveOnCreate: true}
	if got := a.GetSettings(); got != want {
		t.Errorf("GetSettings() = %+v, want %+v", got, want)
	}
	if saved, _ := store.Load(); saved != want {
		t.Errorf("saved settings = %+v, want %+v", saved, want)
	}
	if !a.ctrl.AutoRenameOnCreate() || a.ctrl.AutoRenameOnRename() {
		t.Error("controller subscriptions do not follow the settings")
	}
}

func TestMalformedConfigFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	store, err := settings.NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}

	a := NewApp("")
	a.emit = (&events{}).emit
	if err := a.init(store, nil); err == nil {
		t.Fatal("init with malformed config succeeded")
	}
	if diff := cmp.Diff(settings.Defaults(), a.GetSettings()); diff != "" {
		t.Errorf("settings after malformed config (-want +got):\n%s", diff)
	}

	if err := a.SetAutoRemoveOnCreate(true); err != nil {
		t.Fatalf("SetAutoRemoveOnCreate: %v", err)
	}
	saved, err := store.Load()
	if err != nil {
		t.Fatalf("Load after save: %v", err)
	}
	if !saved.AutoRemoveOnCreate {
		t.Error("toggle was not written over the malformed config")
	}
}

func TestSetterWithoutStoreFails(t *testing.T) {
	a := NewApp("")
	if err := a.SetAutoRemoveOnRename(true); err == nil {
		t.Fatal("SetAutoRemoveOnRename without a store succeeded")
	}
}

func TestShutdownWaitsForWatcher(t *testing.T) {
	a, _, dir, _ := newTestApp(t)
	if err := a.OpenVault(dir); err != nil {
		t.Fatalf("OpenVault: %v", err)
	}
	a.mu.Lock()
	done := a.watchDone
	a.mu.Unlock()

	a.Shutdown(context.Background())
	select {
	case <-done:
	default:
		t.Fatal("watcher goroutine still running after Shutdown")
	}
	if a.GetVault() != "" {
		t.Error("vault still open after Shutdown")
	}
}
