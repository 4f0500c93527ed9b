package gui

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/example/emojiscrub/internal/history"
	"github.com/example/emojiscrub/internal/settings"
	"github.com/example/emojiscrub/internal/vault"
	"github.com/example/emojiscrub/internal/watch"
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// App struct is the main GUI application
type App struct {
	ctx  context.Context
	emit func(event string, data ...interface{})

	store   settings.Store
	journal *history.Journal

	mu          sync.Mutex
	settings    settings.Settings
	vault       *vault.Vault
	ctrl        *watch.Controller
	watchCancel context.CancelFunc
	watchDone   chan struct{}
	vaultPath   string
}

// NewApp creates a new App instance for the vault at vaultPath, which may be
// empty until the user picks one.
func NewApp(vaultPath string) *App {
	return &App{vaultPath: vaultPath}
}

// Startup is called when the Wails app starts
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
	a.emit = func(event string, data ...interface{}) {
		wailsRuntime.EventsEmit(a.ctx, event, data...)
	}

	if err := a.init(nil, nil); err != nil {
		a.emit("notice:error", err.Error())
	}
	if a.vaultPath != "" {
		if err := a.OpenVault(a.vaultPath); err != nil {
			a.emit("notice:error", err.Error())
		}
	}
}

// Shutdown stops the background watcher.
func (a *App) Shutdown(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closeVault()
}

// init wires the store and journal; nil selects the files under
// ~/.config/emojiscrub. Settings that cannot be loaded fall back to the
// defaults, and the store stays usable so the next change rewrites them.
func (a *App) init(store settings.Store, journal *history.Journal) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.settings = settings.Defaults()

	if store == nil {
		fs, err := settings.NewFileStore("")
		if err != nil {
			return err
		}
		store = fs
		if journal == nil {
			j, err := history.Open(filepath.Dir(fs.Path()), history.DefaultLimit)
			if err != nil {
				a.store = store
				return fmt.Errorf("failed to open rename history: %w", err)
			}
			journal = j
		}
	}
	a.store = store
	a.journal = journal

	s, err := store.Load()
	if err != nil {
		return fmt.Errorf("using default settings: %w", err)
	}
	a.settings = s
	return nil
}

// Notify implements watch.Notifier by emitting a "notice" event.
func (a *App) Notify(message string) {
	if a.emit != nil {
		a.emit("notice", message)
	}
}

// SelectVault opens a folder picker dialog and switches to the chosen vault
func (a *App) SelectVault() (string, error) {
	dir, err := wailsRuntime.OpenDirectoryDialog(a.ctx, wailsRuntime.OpenDialogOptions{
		Title: "Select Vault",
	})
	if err != nil || dir == "" {
		return "", err
	}
	return dir, a.OpenVault(dir)
}

// GetVault returns the current vault root, or "" when none is open.
func (a *App) GetVault() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.vault == nil {
		return ""
	}
	return a.vault.Root()
}

// OpenVault switches to the vault at dir and starts watching it with the
// saved settings.
func (a *App) OpenVault(dir string) error {
	v, err := vault.Open(dir)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.closeVault()

	ctrl := watch.New(v, watch.Options{
		Notifier: a,
		Journal:  a.journalOrNil(),
		Vault:    v.Root(),
	})
	ctrl.Apply(a.settings)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		err := v.Watch(ctx, vault.WatchOptions{
			OnError: func(err error) {
				if a.emit != nil {
					a.emit("notice:error", err.Error())
				}
			},
		})
		if err != nil && a.emit != nil {
			a.emit("notice:error", err.Error())
		}
	}()

	a.vault = v
	a.ctrl = ctrl
	a.watchCancel = cancel
	a.watchDone = done
	a.vaultPath = v.Root()
	return nil
}

// closeVault stops the watcher and waits for its goroutine, so no handler of
// the old controller runs afterwards.
func (a *App) closeVault() {
	if a.watchCancel != nil {
		a.watchCancel()
		<-a.watchDone
		a.watchCancel = nil
		a.watchDone = nil
	}
	if a.ctrl != nil {
		a.ctrl.Close()
		a.ctrl = nil
	}
	a.vault = nil
}

// journalOrNil keeps a nil *history.Journal from becoming a non-nil
// watch.Journal.
func (a *App) journalOrNil() watch.Journal {
	if a.journal == nil {
		return nil
	}
	return a.journal
}

// Summary is the outcome of RemoveAll
type Summary struct {
	Renamed int      `json:"renamed"`
	Total   int      `json:"total"`
	Errors  []string `json:"errors"`
}

// RemoveAll removes emojis from every file name in the vault
func (a *App) RemoveAll() (Summary, error) {
	a.mu.Lock()
	ctrl := a.ctrl
	a.mu.Unlock()
	if ctrl == nil {
		return Summary{}, fmt.Errorf("no vault selected")
	}

	results, _ := ctrl.ProcessAll(context.Background())
	sum := Summary{Total: len(results), Errors: []string{}}
	for _, r := range results {
		if r.Renamed {
			sum.Renamed++
		}
		if r.Err != nil {
			sum.Errors = append(sum.Errors, r.Err.Error())
		}
	}
	return sum, nil
}

// GetSettings returns current settings
func (a *App) GetSettings() settings.Settings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settings
}

// SetAutoRemoveOnCreate saves the setting and switches the created subscription
func (a *App) SetAutoRemoveOnCreate(enabled bool) error {
	return a.update(func(s *settings.Settings) { s.AutoRemoveOnCreate = enabled }, func(c *watch.Controller) {
		c.SetAutoRenameOnCreate(enabled)
	})
}

// SetAutoRemoveOnRename saves the setting and switches the renamed subscription
func (a *App) SetAutoRemoveOnRename(enabled bool) error {
	return a.update(func(s *settings.Settings) { s.AutoRemoveOnRename = enabled }, func(c *watch.Controller) {
		c.SetAutoRenameOnRename(enabled)
	})
}

func (a *App) update(change func(*settings.Settings), apply func(*watch.Controller)) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.store == nil {
		return fmt.Errorf("settings store is not available")
	}
	next := a.settings
	change(&next)
	if err := a.store.Save(next); err != nil {
		return err
	}
	a.settings = next
	if a.ctrl != nil {
		apply(a.ctrl)
	}
	return nil
}

// GetHistory returns the recorded renames, newest first
func (a *App) GetHistory() []history.Entry {
	if a.journal == nil {
		return nil
	}
	return a.journal.List()
}
