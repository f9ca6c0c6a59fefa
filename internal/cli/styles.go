// Package cli holds the console styling shared by the commands.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	primaryColor = lipgloss.Color("#2E86AB")
	errorColor   = lipgloss.Color("#C0392B")
	mutedColor   = lipgloss.Color("#888888")
	textColor    = lipgloss.Color("#FFFFFF")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(errorColor)

	KeyStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)
)

// PrintVersion prints the program name and version.
func PrintVersion(name, version string) {
	fmt.Println(TitleStyle.Render(name))
	fmt.Printf("%s %s\n", KeyStyle.Render("Version:"), ValueStyle.Render(version))
}

// PrintError prints an error message to stderr.
func PrintError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("Error:"), message)
}

// KV renders one key and value pair.
func KV(key string, value any) string {
	return KeyStyle.Render(key+":") + " " + ValueStyle.Render(fmt.Sprint(value))
}

// PrintSection writes a boxed section with a title and its lines.
func PrintSection(w io.Writer, title string, lines ...string) {
	body := lipgloss.JoinVertical(lipgloss.Left, lines...)
	fmt.Fprintln(w, BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, TitleStyle.Render(title), body)))
}
