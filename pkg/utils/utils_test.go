package utils

import "testing"

func TestSplitName(t *testing.T) {
	tests := []struct {
		name, base, ext string
	}{
		{"notes.md", "notes", "md"},
		{"archive.tar.gz", "archive.tar", "gz"},
		{"Meeting Notes \U0001F389.md", "Meeting Notes \U0001F389", "md"},
		{"README", "README", ""},
		{".gitignore", ".gitignore", ""},
		{"trailing.", "trailing.", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		base, ext := SplitName(tt.name)
		if base != tt.base || ext != tt.ext {
			t.Errorf("SplitName(%q) = (%q, %q), want (%q, %q)", tt.name, base, ext, tt.base, tt.ext)
		}
		if got := JoinName(base, ext); got != tt.name {
			t.Errorf("JoinName(SplitName(%q)) = %q", tt.name, got)
		}
	}
}
