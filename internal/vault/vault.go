// Package vault exposes a directory tree of documents as a file collection:
// listing, renaming, and created/renamed events for subscribers.
package vault

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/example/emojiscrub/pkg/utils"
)

// FileRef identifies one entry of the collection. Path is slash-separated and
// relative to the vault root; it is the identity used for renames.
type FileRef struct {
	Path       string `json:"path"`
	Basename   string `json:"basename"`
	Extension  string `json:"extension"`
	ParentPath string `json:"parent_path"`
	IsDir      bool   `json:"is_dir"`
}

// Name returns the file name with its extension.
func (f FileRef) Name() string {
	if f.IsDir {
		return f.Basename
	}
	return utils.JoinName(f.Basename, f.Extension)
}

// NewFileRef builds a FileRef from a slash path relative to the root.
func NewFileRef(rel string, isDir bool) FileRef {
	rel = path.Clean(filepath.ToSlash(rel))
	parent := path.Dir(rel)
	if parent == "." {
		parent = ""
	}
	name := path.Base(rel)
	f := FileRef{Path: rel, ParentPath: parent, IsDir: isDir}
	if isDir {
		f.Basename = name
	} else {
		f.Basename, f.Extension = utils.SplitName(name)
	}
	return f
}

// Vault is a collection rooted at a local directory.
type Vault struct {
	root string

	// renameMu makes the exists check and the rename one step for renames
	// issued through this Vault.
	renameMu sync.Mutex

	mu       sync.Mutex
	nextID   SubscriptionID
	handlers map[Event][]subscriber
}

// Open returns a Vault for root, which must be an existing directory.
func Open(root string) (*Vault, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve vault path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to open vault: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault %q is not a directory", root)
	}
	return &Vault{
		root:     abs,
		handlers: make(map[Event][]subscriber),
	}, nil
}

// Root returns the absolute root directory.
func (v *Vault) Root() string { return v.root }

// ListFiles returns every regular file in the vault, sorted by path. Hidden
// files and directories (".obsidian", ".git", ...) are skipped.
func (v *Vault) ListFiles() ([]FileRef, error) {
	files := make([]FileRef, 0, 128)
	err := v.walk(func(rel string, d fs.DirEntry) error {
		if d.Type().IsRegular() {
			files = append(files, NewFileRef(rel, false))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list vault: %w", err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Stat returns the FileRef for a slash path relative to the root.
func (v *Vault) Stat(rel string) (FileRef, error) {
	abs, err := v.abs(rel)
	if err != nil {
		return FileRef{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return FileRef{}, err
	}
	return NewFileRef(rel, info.IsDir()), nil
}

// walk visits every non-hidden entry below the root, the root excluded.
func (v *Vault) walk(fn func(rel string, d fs.DirEntry) error) error {
	return filepath.WalkDir(v.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p == v.root {
			return nil
		}
		if isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(v.root, p)
		if err != nil {
			return err
		}
		return fn(filepath.ToSlash(rel), d)
	})
}

func (v *Vault) abs(rel string) (string, error) {
	local := filepath.FromSlash(rel)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("path %q escapes the vault", rel)
	}
	return filepath.Join(v.root, local), nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
