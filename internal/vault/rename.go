package vault

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// renameFunc is replaced in tests to simulate filesystem failures.
var renameFunc = os.Rename

// ErrTargetExists is returned when a rename would overwrite another entry.
var ErrTargetExists = errors.New("target already exists")

// RenameError describes a rejected rename.
type RenameError struct {
	OldPath string
	NewPath string
	Err     error
}

func (e *RenameError) Error() string {
	return fmt.Sprintf("rename %q -> %q: %v", e.OldPath, e.NewPath, e.Err)
}

func (e *RenameError) Unwrap() error { return e.Err }

// Rename moves file to newPath (slash path relative to the root). It never
// overwrites: an existing target fails with ErrTargetExists, except when the
// target is the source itself under a different case. Parent directories are
// not created.
func (v *Vault) Rename(ctx context.Context, file FileRef, newPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if file.Path == newPath {
		return nil
	}

	src, err := v.abs(file.Path)
	if err != nil {
		return &RenameError{OldPath: file.Path, NewPath: newPath, Err: err}
	}
	dst, err := v.abs(newPath)
	if err != nil {
		return &RenameError{OldPath: file.Path, NewPath: newPath, Err: err}
	}

	v.renameMu.Lock()
	defer v.renameMu.Unlock()

	srcInfo, err := os.Lstat(src)
	if err != nil {
		return &RenameError{OldPath: file.Path, NewPath: newPath, Err: err}
	}
	if dstInfo, err := os.Lstat(dst); err == nil {
		if !os.SameFile(srcInfo, dstInfo) {
			return &RenameError{OldPath: file.Path, NewPath: newPath, Err: ErrTargetExists}
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return &RenameError{OldPath: file.Path, NewPath: newPath, Err: err}
	}

	if err := renameFunc(src, dst); err != nil {
		return &RenameError{OldPath: file.Path, NewPath: newPath, Err: err}
	}
	return nil
}
