package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarrative = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleTempEvent = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	styleTask = lipgloss.NewStyle().
			Foreground(lipgloss.Color("117"))

	styleDelta = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleEnding = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarrative lineKind = iota
	kindTempEvent
	kindTask
	kindDelta
	kindEnding
	kindSystem
	kindError
)

// classifyLine determines what kind of output line this is, based on the
// prefixes the CLI formatter emits.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "! "):
		return kindTempEvent
	case strings.HasPrefix(line, "* "):
		return kindTask
	case strings.HasPrefix(line, "=== "):
		return kindEnding
	case strings.HasPrefix(line, "    "):
		return kindDelta
	case strings.HasPrefix(line, "Conditions not met"),
		strings.HasPrefix(line, "Event not found"),
		strings.HasPrefix(line, "Not in correct location"),
		strings.HasPrefix(line, "Game is over"):
		return kindError
	default:
		return kindNarrative
	}
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindTempEvent:
		return styleTempEvent.Render(line)
	case kindTask:
		return styleTask.Render(line)
	case kindDelta:
		return styleDelta.Render(line)
	case kindEnding:
		return styleEnding.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	default:
		return styleNarrative.Render(line)
	}
}
