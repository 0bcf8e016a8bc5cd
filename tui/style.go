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

	styleMessage = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleCombat = lipgloss.NewStyle().
			Foreground(lipgloss.Color("209"))

	styleSpell = lipgloss.NewStyle().
			Foreground(lipgloss.Color("141"))

	styleQuestion = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228")).
			Bold(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// Map styles.
var (
	styleMapBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))

	styleWall    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleFloor   = lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
	stylePlayer  = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	styleMonster = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	styleItem    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	styleEffect  = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))

	styleSidebar = lipgloss.NewStyle().PaddingLeft(2)
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindMessage lineKind = iota
	kindCombat
	kindSpell
	kindQuestion
	kindSystem
	kindError
	kindTrace
)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "I don't understand"),
		strings.HasPrefix(line, "Not enough"),
		strings.HasPrefix(line, "You are not"),
		strings.HasPrefix(line, "You have no"),
		strings.HasSuffix(line, " is gone."):
		return kindError
	case strings.HasPrefix(line, "You intone"),
		strings.Contains(line, " casts "):
		return kindSpell
	case strings.Contains(line, "miss"),
		strings.Contains(line, " damage"),
		strings.Contains(line, " you for "),
		strings.Contains(line, " dies"):
		return kindCombat
	case strings.HasSuffix(line, "?"):
		return kindQuestion
	default:
		return kindMessage
	}
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindCombat:
		return styleCombat.Render(line)
	case kindSpell:
		return styleSpell.Render(line)
	case kindQuestion:
		return styleQuestion.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleMessage.Render(line)
	}
}

// glyphStyle picks the map style of one rendered cell.
func glyphStyle(ch byte, player byte) lipgloss.Style {
	switch {
	case ch == '#':
		return styleWall
	case ch == '.':
		return styleFloor
	case ch == '~':
		return styleEffect
	case ch == player:
		return stylePlayer
	case strings.IndexByte(`)}|*"?`, ch) >= 0:
		return styleItem
	default:
		return styleMonster
	}
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
