package logging

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/vvka-141/dwload/pkg/dwload"
	"golang.org/x/term"
)

var (
	colorError   = lipgloss.Color("196") // Red
	colorWarning = lipgloss.Color("214") // Orange
	colorMuted   = lipgloss.Color("240") // Dark gray

	failedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorError)

	rolledBackStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWarning)

	causeStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginLeft(2)
)

// UseColor reports whether output to f should be styled.
//
// Returns false if:
//   - NO_COLOR is set (accessibility/automation indicator)
//   - CI is set (common CI/CD convention)
//   - f is not a terminal (redirected to a file or pipe)
func UseColor(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("CI") != "" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// WriteFailureBanner prints the outcome headline for err followed by its message.
// A rolled back domain load says ROLLED BACK so operators know nothing was
// committed; anything else says FAILED. With verbose set every wrapped cause
// is listed on its own line.
func WriteFailureBanner(w io.Writer, err error, color, verbose bool) {
	if err == nil {
		return
	}

	headline := "FAILED"
	style := failedStyle
	var rb *dwload.RollbackError
	if errors.As(err, &rb) {
		headline = fmt.Sprintf("ROLLED BACK: %s (during %s)", rb.Domain, rb.State)
		style = rolledBackStyle
	}
	headline = fmt.Sprintf("%s [exit %d]", headline, dwload.ExitCodeForError(err))

	if color {
		headline = style.Render(headline)
	}
	fmt.Fprintln(w, headline)
	fmt.Fprintln(w, "  "+err.Error())

	if !verbose {
		return
	}
	for i, cause := range causeChain(err) {
		line := fmt.Sprintf("  %d: %s", i+1, cause)
		if color {
			line = causeStyle.Render(line)
		}
		fmt.Fprintln(w, line)
	}
}

func causeChain(err error) []string {
	var chain []string
	queue := []error{err}
	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]
		switch x := e.(type) {
		case interface{ Unwrap() []error }:
			queue = append(queue, x.Unwrap()...)
		case interface{ Unwrap() error }:
			if next := x.Unwrap(); next != nil {
				queue = append(queue, next)
			}
		}
		if e != err {
			chain = append(chain, e.Error())
		}
	}
	return chain
}
