// ABOUTME: lipgloss styles for the function-call trace printed beside model output
// ABOUTME: Plain mode strips styling so piped output stays greppable

package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Styles formats trace lines.
type Styles struct {
	Call    lipgloss.Style
	Result  lipgloss.Style
	Failure lipgloss.Style
	Notice  lipgloss.Style
	Muted   lipgloss.Style
}

// DefaultStyles returns the colored styles used on a terminal.
func DefaultStyles() Styles {
	return Styles{
		Call:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		Result:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Failure: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		Notice:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// PlainStyles returns styles that render text unchanged.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{Call: plain, Result: plain, Failure: plain, Notice: plain, Muted: plain}
}

const maxTraceValue = 120

func (s Styles) call(name string, args string) string {
	return s.Call.Render("→ "+name) + s.Muted.Render("("+clip(args)+")")
}

func (s Styles) result(name, value string, d time.Duration, failed bool) string {
	mark, style := "✓", s.Result
	if failed {
		mark, style = "✗", s.Failure
	}
	return style.Render(fmt.Sprintf("%s %s", mark, name)) +
		s.Muted.Render(fmt.Sprintf(" %s (%s)", clip(value), d.Round(time.Millisecond)))
}

func (s Styles) notice(msg string) string {
	return s.Notice.Render("! " + msg)
}

// clip shortens v to one line at most maxTraceValue cells wide.
func clip(v string) string {
	v = strings.Join(strings.Fields(v), " ")
	return runewidth.Truncate(v, maxTraceValue, "…")
}
