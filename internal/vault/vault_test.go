package vault

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func openVault(t *testing.T) (*Vault, string) {
	t.Helper()
	root := t.TempDir()
	v, err := Open(root)
	if err != nil {
		t.Fatalf("Open(%q): %v", root, err)
	}
	return v, root
}

func TestOpenRejectsFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "file.md", "x")
	if _, err := Open(filepath.Join(root, "file.md")); err == nil {
		t.Fatal("Open(file) succeeded, want error")
	}
	if _, err := Open(filepath.Join(root, "missing")); err == nil {
		t.Fatal("Open(missing) succeeded, want error")
	}
}

func TestNewFileRef(t *testing.T) {
	got := NewFileRef("Projects/Meeting Notes \U0001F389.md", false)
	want := FileRef{
		Path:       "Projects/Meeting Notes \U0001F389.md",
		Basename:   "Meeting Notes \U0001F389",
		Extension:  "md",
		ParentPath: "Projects",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NewFileRef mismatch (-want +got):\n%s", diff)
	}

	root := NewFileRef("todo.txt", false)
	if root.ParentPath != "" || root.Name() != "todo.txt" {
		t.Errorf("root file ref = %+v", root)
	}
	dir := NewFileRef("Daily.notes", true)
	if dir.Basename != "Daily.notes" || dir.Extension != "" {
		t.Errorf("dir ref = %+v", dir)
	}
}

func TestListFiles(t *testing.T) {
	v, root := openVault(t)
	writeFile(t, root, "b.md", "b")
	writeFile(t, root, "a \U0001F525.md", "a")
	writeFile(t, root, "sub/c.pdf", "c")
	writeFile(t, root, ".obsidian/workspace.json", "{}")
	writeFile(t, root, ".hidden.md", "h")

	files, err := v.ListFiles()
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	var got []string
	for _, f := range files {
		got = append(got, f.Path)
	}
	want := []string{"a \U0001F525.md", "b.md", "sub/c.pdf"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListFiles mismatch (-want +got):\n%s", diff)
	}
}

func TestRename(t *testing.T) {
	v, root := openVault(t)
	writeFile(t, root, "notes/\U0001F389 party.md", "x")

	f, err := v.Stat("notes/\U0001F389 party.md")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if err := v.Rename(context.Background(), f, "notes/ party.md"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "notes", " party.md")); err != nil {
		t.Errorf("renamed file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "notes", "\U0001F389 party.md")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("old file still present: %v", err)
	}
}

func TestRenameRefusesOverwrite(t *testing.T) {
	v, root := openVault(t)
	writeFile(t, root, "a\U0001F525.md", "emoji")
	writeFile(t, root, "a.md", "existing")

	err := v.Rename(context.Background(), NewFileRef("a\U0001F525.md", false), "a.md")
	if !errors.Is(err, ErrTargetExists) {
		t.Fatalf("Rename onto existing file: got %v, want ErrTargetExists", err)
	}
	var re *RenameError
	if !errors.As(err, &re) || re.OldPath != "a\U0001F525.md" || re.NewPath != "a.md" {
		t.Errorf("error %v is not a RenameError with paths", err)
	}
	b, _ := os.ReadFile(filepath.Join(root, "a.md"))
	if string(b) != "existing" {
		t.Errorf("target was overwritten: %q", b)
	}
}

func TestRenameErrors(t *testing.T) {
	v, root := openVault(t)
	writeFile(t, root, "x\U0001F525.md", "x")

	if err := v.Rename(context.Background(), NewFileRef("missing.md", false), "m.md"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing source: got %v", err)
	}
	if err := v.Rename(context.Background(), NewFileRef("x\U0001F525.md", false), "../x.md"); err == nil {
		t.Error("rename outside the vault succeeded")
	}

	old := renameFunc
	renameFunc = func(string, string) error { return fs.ErrPermission }
	t.Cleanup(func() { renameFunc = old })
	if err := v.Rename(context.Background(), NewFileRef("x\U0001F525.md", false), "x.md"); !errors.Is(err, fs.ErrPermission) {
		t.Errorf("failing rename: got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := v.Rename(ctx, NewFileRef("x\U0001F525.md", false), "x.md"); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled rename: got %v", err)
	}
}

func TestOnOffEmit(t *testing.T) {
	v, _ := openVault(t)
	var calls []string
	first := v.On(Created, func(_ context.Context, f FileRef) error {
		calls = append(calls, "first:"+f.Path)
		return nil
	})
	v.On(Created, func(_ context.Context, f FileRef) error {
		calls = append(calls, "second:"+f.Path)
		return errors.New("boom")
	})
	if n := v.Subscribers(Created); n != 2 {
		t.Fatalf("Subscribers(created) = %d, want 2", n)
	}

	err := v.Emit(context.Background(), Created, NewFileRef("a.md", false))
	if err == nil || err.Error() != "boom" {
		t.Errorf("Emit error = %v, want boom", err)
	}

	v.Off(Created, first)
	v.Off(Created, first)
	v.Off(Renamed, 999)
	if n := v.Subscribers(Created); n != 1 {
		t.Fatalf("Subscribers(created) after Off = %d, want 1", n)
	}
	_ = v.Emit(context.Background(), Created, NewFileRef("b.md", false))
	_ = v.Emit(context.Background(), Renamed, NewFileRef("c.md", false))

	want := []string{"first:a.md", "second:a.md", "second:b.md"}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Errorf("handler calls mismatch (-want +got):\n%s", diff)
	}
}
