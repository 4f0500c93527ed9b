package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	// Colors
	primaryColor = lipgloss.Color("205") // Pinkish
	infoColor    = lipgloss.Color("39")  // Blue
	successColor = lipgloss.Color("42")  // Green
	warnColor    = lipgloss.Color("214") // Orange
	errorColor   = lipgloss.Color("160") // Red
	subtleColor  = lipgloss.Color("241") // Grey

	// Styles
	bannerStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2)

	infoBadge    = badge(infoColor, "INFO")
	successBadge = badge(successColor, "RENAMED")
	warnBadge    = badge(warnColor, "WARN")
	errorBadge   = badge(errorColor, "ERROR")

	textStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	// SubtleStyle renders secondary text such as descriptions.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(subtleColor)

	// TitleStyle renders section titles.
	TitleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	outMu sync.Mutex
	out   io.Writer = os.Stdout
)

func badge(bg lipgloss.Color, label string) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("230")).
		Background(bg).
		Padding(0, 1).
		Bold(true).
		SetString(label)
}

// SetOutput redirects every printer of this package. nil restores stdout.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	outMu.Lock()
	defer outMu.Unlock()
	out = w
}

// SetColor forces colors off (false) or back to terminal detection (true).
func SetColor(enabled bool) {
	if enabled {
		lipgloss.SetColorProfile(termenv.EnvColorProfile())
		return
	}
	lipgloss.SetColorProfile(termenv.Ascii)
}

// PrintBanner prints the emojiscrub banner
func PrintBanner() {
	banner := `
 ___ _ __ ___   ___  (_)(_)___  ___ _ __ _   _| |__
/ _ \ '_ ' _ \ / _ \ | || / __|/ __| '__| | | | '_ \
|  __/ | | | | | (_) || || \__ \ (__| |  | |_| | |_) |
\___|_| |_| |_|\___// ||_|___/\___|_|   \__,_|_.__/
                  |__/
`
	writeLine(bannerStyle.Render(strings.Trim(banner, "\n")))
	writeLine("")
}

// Info prints an info message
func Info(format string, a ...interface{}) {
	printBadge(infoBadge, format, a...)
}

// Success prints a success message
func Success(format string, a ...interface{}) {
	printBadge(successBadge, format, a...)
}

// Warn prints a warning
func Warn(format string, a ...interface{}) {
	printBadge(warnBadge, format, a...)
}

// Error prints an error message
func Error(format string, a ...interface{}) {
	printBadge(errorBadge, format, a...)
}

// Render returns a generic string using the text style
func Render(s string) string {
	return textStyle.Render(s)
}

func printBadge(b lipgloss.Style, format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	writeLine(fmt.Sprintf("%s %s", b.String(), textStyle.Render(msg)))
}

func writeLine(s string) {
	outMu.Lock()
	defer outMu.Unlock()
	fmt.Fprintln(out, s)
}

// Notifier prints each notification as a success line. It is safe for
// concurrent use.
type Notifier struct{}

// Notify implements watch.Notifier.
func (Notifier) Notify(message string) {
	Success("%s", message)
}
