// Package sanitize strips emoji sequences from file basenames.
package sanitize

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/rivo/uniseg"
)

// PlaceholderPrefix starts every name substituted for a basename that
// consisted only of emoji.
const PlaceholderPrefix = "emoji-only-name-"

// randIntn is swapped in tests to make placeholders deterministic.
var randIntn = rand.IntN

var placeholderPattern = regexp.MustCompile(`^` + regexp.QuoteMeta(PlaceholderPrefix) + `[1-9]\d{3}$`)

// Sanitize returns basename with every emoji sequence removed. The extension
// is accepted alongside the basename but never changed or inspected.
//
// When removing emoji leaves nothing, a placeholder of the form
// emoji-only-name-NNNN (NNNN uniform in [1000, 9999]) is returned instead, so
// the result is never empty. Names without emoji are returned unchanged.
func Sanitize(basename, _ string) string {
	stripped, removed := strip(basename)
	if removed == 0 {
		return basename
	}
	if stripped == "" {
		return Placeholder()
	}
	return stripped
}

// Strip removes emoji sequences from s without the empty-name fallback.
func Strip(s string) string {
	stripped, _ := strip(s)
	return stripped
}

// ContainsEmoji reports whether s holds at least one emoji sequence.
func ContainsEmoji(s string) bool {
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		if isEmojiCluster(g.Runes()) {
			return true
		}
	}
	return false
}

// Placeholder returns a fresh emoji-only-name-NNNN name.
func Placeholder() string {
	return fmt.Sprintf("%s%d", PlaceholderPrefix, 1000+randIntn(9000))
}

// IsPlaceholder reports whether name has the shape produced by Placeholder.
func IsPlaceholder(name string) bool {
	return placeholderPattern.MatchString(name)
}

func strip(s string) (string, int) {
	var b strings.Builder
	b.Grow(len(s))

	removed := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		runes := g.Runes()
		if isEmojiCluster(runes) {
			removed++
			continue
		}
		// A modifier can also trail a non-emoji base ("a🏻"); only the
		// modifier goes.
		kept := true
		for _, r := range runes {
			if isModifier(r) {
				kept = false
				break
			}
		}
		if kept {
			b.WriteString(g.Str())
			continue
		}
		for _, r := range runes {
			if isModifier(r) {
				removed++
				continue
			}
			b.WriteRune(r)
		}
	}
	if removed == 0 {
		return s, 0
	}
	return b.String(), removed
}
