// Package printer is the single place CLI output goes through, so command
// code never formats colors or error layouts itself.
package printer

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

func init() {
	// Force color output even when not connected to a TTY.
	// Users can disable with the NO_COLOR environment variable.
	if os.Getenv("NO_COLOR") == "" {
		color.NoColor = false
	}
}

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

// Success prints a success message in green with a checkmark prefix.
func Success(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if strings.HasPrefix(msg, "✓") {
		green.Print(msg)
		return
	}
	green.Printf("✓ %s", msg)
}

// Info prints an informational message in the default color.
func Info(format string, a ...any) {
	fmt.Printf(format, a...)
}

// Warning prints a warning message in yellow.
func Warning(format string, a ...any) {
	yellow.Printf("⚠ %s", fmt.Sprintf(format, a...))
}

// Step prints one phase of a multi-step operation, e.g. the packaging and
// transferring milestones of a sync transfer.
func Step(format string, a ...any) {
	cyan.Printf("→ %s", fmt.Sprintf(format, a...))
}

// Error prints a formatted error to stderr and returns a plain error
// carrying only the title, for Cobra to propagate without re-printing
// (commands run with SilenceErrors).
func Error(title string, explanation string, suggestions []string) error {
	red.Fprintf(os.Stderr, "%s\n\n", title)
	if explanation != "" {
		fmt.Fprintf(os.Stderr, "%s\n", explanation)
	}

	switch len(suggestions) {
	case 0:
	case 1:
		fmt.Fprintf(os.Stderr, "\n%s\n", suggestions[0])
	default:
		fmt.Fprintf(os.Stderr, "\nEither:\n")
		for i, s := range suggestions {
			fmt.Fprintf(os.Stderr, "  %d. %s\n", i+1, s)
		}
	}

	return fmt.Errorf("%s", title)
}

// Println prints a plain message.
func Println(a ...any) {
	fmt.Println(a...)
}

// Printf prints a plain formatted message.
func Printf(format string, a ...any) {
	fmt.Printf(format, a...)
}
