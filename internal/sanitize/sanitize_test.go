package sanitize

import (
	"strconv"
	"strings"
	"testing"
)

func stubRand(t *testing.T, n int) {
	t.Helper()
	old := randIntn
	randIntn = func(int) int { return n }
	t.Cleanup(func() { randIntn = old })
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		basename string
		want     string
	}{
		{"plain ascii", "report-final", "report-final"},
		{"accents and cjk", "Café 日本 notes", "Café 日本 notes"},
		{"digits are not keycaps", "Chapter 1 #2 *draft*", "Chapter 1 #2 *draft*"},
		{"trailing emoji keep trailing space", "Meeting Notes \U0001F389\U0001F4C5", "Meeting Notes "},
		{"leading emoji", "\U0001F525 hot take", " hot take"},
		{"emoji between words", "a\U0001F600b", "ab"},
		{"zwj family", "\U0001F468\u200d\U0001F469\u200d\U0001F467 Family", " Family"},
		{"flag pair", "Trip \U0001F1EF\U0001F1F5", "Trip "},
		{"keycap", "Step 1\ufe0f\u20e3", "Step "},
		{"skin tone", "\U0001F44D\U0001F3FD ok", " ok"},
		{"variation selector", "\u2764\ufe0f love", " love"},
		{"text presentation pictograph", "Copyright © 2024", "Copyright  2024"},
		{"tag sequence", "\U0001F3F4\U000E0067\U000E0062\U000E0065\U000E006E\U000E0067\U000E007Fx", "x"},
		{"modifier after letter", "a\U0001F3FB", "a"},
		{"black star", "\u2605 Favorites", "\u2605 Favorites"},
		{"chess king", "Chess \u2654 openings", "Chess \u2654 openings"},
		{"check mark", "Done \u2713", "Done \u2713"},
		{"thunderstorm symbol", "Weather \u2607", "Weather \u2607"},
		{"mahjong east wind", "Mahjong \U0001F000", "Mahjong \U0001F000"},
		{"playing card", "Cards \U0001F0A1", "Cards \U0001F0A1"},
		{"mahjong red dragon", "Mahjong \U0001F004", "Mahjong "},
		{"heavy check mark", "Done \u2714\ufe0f", "Done "},
		{"trade mark", "Brand\u2122", "Brand"},
		{"trade mark with selector", "Brand\u2122\ufe0f", "Brand"},
		{"star emoji", "Starred \u2b50", "Starred "},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.basename, "md"); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.basename, got, tt.want)
			}
		})
	}
}

func TestSanitizeSymbolOnlyNameIsKept(t *testing.T) {
	for _, name := range []string{"\u2605", "\u2654", "\U0001F0A1"} {
		if got := Sanitize(name, "md"); got != name {
			t.Errorf("Sanitize(%q) = %q, want it unchanged", name, got)
		}
		if ContainsEmoji(name) {
			t.Errorf("ContainsEmoji(%q) = true", name)
		}
	}
}

func TestSanitizeEmojiOnlyUsesPlaceholder(t *testing.T) {
	stubRand(t, 234)
	if got := Sanitize("\U0001F525", "txt"); got != "emoji-only-name-1234" {
		t.Fatalf("Sanitize(fire) = %q, want emoji-only-name-1234", got)
	}
}

func TestPlaceholderRange(t *testing.T) {
	for _, input := range []string{"\U0001F525", "\U0001F389\U0001F4C5", "\U0001F1FA\U0001F1F8", "\u2764\ufe0f\U0001F44D\U0001F3FD"} {
		for i := 0; i < 50; i++ {
			got := Sanitize(input, "md")
			if !IsPlaceholder(got) {
				t.Fatalf("Sanitize(%q) = %q, want placeholder", input, got)
			}
			n, err := strconv.Atoi(strings.TrimPrefix(got, PlaceholderPrefix))
			if err != nil {
				t.Fatalf("placeholder suffix of %q: %v", got, err)
			}
			if n < 1000 || n > 9999 {
				t.Fatalf("placeholder number %d out of [1000, 9999]", n)
			}
		}
	}
}

func TestPlaceholderBounds(t *testing.T) {
	stubRand(t, 0)
	if got := Placeholder(); got != "emoji-only-name-1000" {
		t.Errorf("lowest placeholder = %q", got)
	}
	stubRand(t, 8999)
	if got := Placeholder(); got != "emoji-only-name-9999" {
		t.Errorf("highest placeholder = %q", got)
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"report-final",
		"Meeting Notes \U0001F389\U0001F4C5",
		"\U0001F468\u200d\U0001F469\u200d\U0001F467 Family",
		"mixed \u2764\ufe0f and \U0001F1EF\U0001F1F5 and text",
	}
	for _, in := range inputs {
		once := Sanitize(in, "md")
		if twice := Sanitize(once, "md"); twice != once {
			t.Errorf("Sanitize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestSanitizeNeverTouchesExtension(t *testing.T) {
	// The extension argument carries emoji here on purpose; only the
	// basename is ever transformed.
	if got := Sanitize("notes", "\U0001F389"); got != "notes" {
		t.Errorf("Sanitize with emoji extension = %q, want notes", got)
	}
}

func TestContainsEmoji(t *testing.T) {
	if ContainsEmoji("plain name") {
		t.Error("ContainsEmoji(plain name) = true")
	}
	if !ContainsEmoji("x\U0001F680") {
		t.Error("ContainsEmoji(rocket) = false")
	}
	if got := Strip("\U0001F680"); got != "" {
		t.Errorf("Strip(rocket) = %q, want empty", got)
	}
}

func TestIsPlaceholder(t *testing.T) {
	for name, want := range map[string]bool{
		"emoji-only-name-1000":  true,
		"emoji-only-name-9999":  true,
		"emoji-only-name-0999":  false,
		"emoji-only-name-12345": false,
		"emoji-only-name-":      false,
		"notes":                 false,
	} {
		if got := IsPlaceholder(name); got != want {
			t.Errorf("IsPlaceholder(%q) = %v, want %v", name, got, want)
		}
	}
}
