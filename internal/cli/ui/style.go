// Package ui provides shared terminal styling for the snapsort commands.
package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette (256-color).
var (
	ClrBrand  = lipgloss.Color("75")  // blue
	ClrMuted  = lipgloss.Color("245") // gray
	ClrSubtle = lipgloss.Color("242") // darker gray
	ClrGreen  = lipgloss.Color("114") // green
	ClrRed    = lipgloss.Color("203") // red/error
	ClrYellow = lipgloss.Color("220") // yellow
)

// Reusable styles. When color is disabled they degrade to plain text.
var (
	Bold   = styled(lipgloss.NewStyle().Bold(true))
	Brand  = styled(lipgloss.NewStyle().Foreground(ClrBrand).Bold(true))
	Muted  = styled(lipgloss.NewStyle().Foreground(ClrMuted))
	Subtle = styled(lipgloss.NewStyle().Foreground(ClrSubtle))
	Green  = styled(lipgloss.NewStyle().Foreground(ClrGreen))
	Red    = styled(lipgloss.NewStyle().Foreground(ClrRed))
	Yellow = styled(lipgloss.NewStyle().Foreground(ClrYellow))
)

func styled(s lipgloss.Style) lipgloss.Style {
	if !Enabled() {
		return lipgloss.NewStyle()
	}
	return s
}

// Prompt renders the chat prompt for a mode, like "remote> ".
func Prompt(mode string) string {
	return Brand.Render(mode+">") + " "
}

// Error formats an error message.
func Error(msg string) string {
	return Red.Render("error: " + msg)
}

// Errorf formats an error with printf-style formatting.
func Errorf(format string, a ...any) string {
	return Error(fmt.Sprintf(format, a...))
}

// Info formats an informational label with details.
func Info(label, detail string) string {
	return Brand.Render(label) + " " + Muted.Render(detail)
}

// OK formats a success line.
func OK(msg string) string {
	return Green.Render(msg)
}

// Dim renders dimmed/muted text.
func Dim(text string) string {
	return Subtle.Render(text)
}

// Enabled reports whether color output is enabled.
func Enabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return strings.ToLower(strings.TrimSpace(os.Getenv("TERM"))) != "dumb"
}
