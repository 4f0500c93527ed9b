// Package watch applies the emoji sanitizer to a file collection, either to
// every file at once or automatically on created/renamed events.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/example/emojiscrub/internal/history"
	"github.com/example/emojiscrub/internal/sanitize"
	"github.com/example/emojiscrub/internal/settings"
	"github.com/example/emojiscrub/internal/vault"
	"github.com/example/emojiscrub/pkg/utils"
)

const DefaultConcurrency = 8

// Collection is the file collection the controller works on.
type Collection interface {
	ListFiles() ([]vault.FileRef, error)
	Rename(ctx context.Context, file vault.FileRef, newPath string) error
	On(event vault.Event, handler vault.Handler) vault.SubscriptionID
	Off(event vault.Event, id vault.SubscriptionID)
}

// Notifier shows a message to the user. It must be safe for concurrent use.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

// Journal records performed renames.
type Journal interface {
	Record(history.Entry) error
}

// Options configures a Controller.
type Options struct {
	Notifier Notifier
	Journal  Journal
	// Vault labels journal entries.
	Vault string
	// Concurrency bounds the renames ProcessAll runs at once.
	Concurrency int
	// OnProgress is called after each file of ProcessAll, from the worker
	// goroutines.
	OnProgress func(done, total int)
}

// Result is the outcome for one file.
type Result struct {
	File    vault.FileRef
	NewPath string
	Renamed bool
	Err     error
}

// Message returns the notification text for a performed rename.
func (r Result) Message() string {
	newBase := path.Base(r.NewPath)
	if r.File.Extension != "" {
		newBase = strings.TrimSuffix(newBase, "."+r.File.Extension)
	}
	return fmt.Sprintf("%s is renamed to %s", r.File.Basename, newBase)
}

// Controller owns the event subscriptions of one collection.
type Controller struct {
	coll Collection
	opts Options

	mu   sync.Mutex
	subs map[vault.Event]vault.SubscriptionID
}

// New returns a Controller with no active subscriptions.
func New(coll Collection, opts Options) *Controller {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Controller{
		coll: coll,
		opts: opts,
		subs: make(map[vault.Event]vault.SubscriptionID),
	}
}

// RenameIfNeeded renames file when its basename contains emoji and notifies
// "<old> is renamed to <new>". Directories and clean names are left alone.
// A rejected rename is returned as is and nothing is notified.
func (c *Controller) RenameIfNeeded(ctx context.Context, file vault.FileRef) error {
	return c.rename(ctx, file).Err
}

// ProcessAll runs RenameIfNeeded on every file of the collection concurrently
// and returns once all of them settled. A failing file never stops the
// others; the returned error joins every per-file failure.
func (c *Controller) ProcessAll(ctx context.Context) ([]Result, error) {
	files, err := c.coll.ListFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	results := make([]Result, len(files))
	var done atomic.Int64

	var g errgroup.Group
	g.SetLimit(c.opts.Concurrency)
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{File: f, Err: err}
			} else {
				results[i] = c.rename(ctx, f)
			}
			if c.opts.OnProgress != nil {
				c.opts.OnProgress(int(done.Add(1)), len(files))
			}
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return results, errors.Join(errs...)
}

// Plan lists the renames ProcessAll would perform without performing them.
// Placeholder names are drawn again on the real run.
func (c *Controller) Plan(ctx context.Context) ([]Result, error) {
	files, err := c.coll.ListFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	var planned []Result
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return planned, err
		}
		if newBase, ok := sanitizedBase(f); ok {
			planned = append(planned, Result{File: f, NewPath: TargetPath(f, newBase)})
		}
	}
	return planned, nil
}

// SetAutoRenameOnCreate subscribes or unsubscribes RenameIfNeeded to created
// events. Repeated calls never leave more than one subscription.
func (c *Controller) SetAutoRenameOnCreate(enabled bool) {
	c.setAuto(vault.Created, enabled)
}

// SetAutoRenameOnRename does the same for renamed events.
func (c *Controller) SetAutoRenameOnRename(enabled bool) {
	c.setAuto(vault.Renamed, enabled)
}

// AutoRenameOnCreate reports whether the created subscription is active.
func (c *Controller) AutoRenameOnCreate() bool { return c.subscribed(vault.Created) }

// AutoRenameOnRename reports whether the renamed subscription is active.
func (c *Controller) AutoRenameOnRename() bool { return c.subscribed(vault.Renamed) }

// Apply sets both subscriptions from s.
func (c *Controller) Apply(s settings.Settings) {
	c.SetAutoRenameOnCreate(s.AutoRemoveOnCreate)
	c.SetAutoRenameOnRename(s.AutoRemoveOnRename)
}

// Close drops every subscription.
func (c *Controller) Close() {
	c.SetAutoRenameOnCreate(false)
	c.SetAutoRenameOnRename(false)
}

// TargetPath returns the slash path file gets with basename newBase: same
// directory, same extension.
func TargetPath(file vault.FileRef, newBase string) string {
	return path.Join(file.ParentPath, utils.JoinName(newBase, file.Extension))
}

func (c *Controller) setAuto(event vault.Event, enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := c.subs[event]; ok {
		c.coll.Off(event, id)
		delete(c.subs, event)
	}
	if enabled {
		c.subs[event] = c.coll.On(event, c.RenameIfNeeded)
	}
}

func (c *Controller) subscribed(event vault.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.subs[event]
	return ok
}

func (c *Controller) rename(ctx context.Context, file vault.FileRef) Result {
	res := Result{File: file}
	newBase, ok := sanitizedBase(file)
	if !ok {
		return res
	}
	res.NewPath = TargetPath(file, newBase)

	if err := c.coll.Rename(ctx, file, res.NewPath); err != nil {
		res.Err = err
		return res
	}
	res.Renamed = true

	if c.opts.Notifier != nil {
		c.opts.Notifier.Notify(res.Message())
	}
	if c.opts.Journal != nil {
		err := c.opts.Journal.Record(history.Entry{
			Vault:   c.opts.Vault,
			OldPath: file.Path,
			NewPath: res.NewPath,
		})
		if err != nil {
			res.Err = fmt.Errorf("renamed %q but failed to record it: %w", file.Path, err)
		}
	}
	return res
}

// sanitizedBase returns the new basename of file and whether it differs.
func sanitizedBase(file vault.FileRef) (string, bool) {
	if file.IsDir {
		return "", false
	}
	newBase := sanitize.Sanitize(file.Basename, file.Extension)
	if newBase == file.Basename {
		return "", false
	}
	// ".🔥" would otherwise become the directory entry ".".
	if name := utils.JoinName(newBase, file.Extension); name == "." || name == ".." {
		newBase = sanitize.Placeholder()
	}
	return newBase, true
}
