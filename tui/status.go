package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/runecore/engine/human"
)

// renderStatusBar produces a full-width inverted status line showing the
// game, the player's health and mana, and the tick.
func (m Model) renderStatusBar() string {
	e := m.sess.Engine
	left := " " + m.sess.Defs.Game.Title
	if b, ok := m.sess.Player(); ok {
		attrs := b.Attributes()
		left += fmt.Sprintf(" | HP %d/%d | Mana %d/%d", b.HP, attrs.MaxHP, b.Mana, attrs.MaxMana)
		for _, st := range b.Statuses {
			left += fmt.Sprintf(" | %s", st.Kind)
		}
	} else {
		left += " | dead"
	}
	right := fmt.Sprintf("T:%d ", e.Now())

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}

// sidebarLines lists what the player carries and what they have pending.
func (m Model) sidebarLines() []string {
	b, ok := m.sess.Player()
	if !ok {
		return []string{"You are dead."}
	}
	e := m.sess.Engine

	lines := []string{b.Name}
	if b.Busy > 0 {
		lines = append(lines, fmt.Sprintf("busy %d", b.Busy))
	}
	for _, st := range b.Statuses {
		lines = append(lines, fmt.Sprintf("%s (%d)", st.Kind, st.Ticks))
	}

	lines = append(lines, "", "Carrying:")
	if len(b.Inventory) == 0 {
		lines = append(lines, "  nothing")
	}
	for _, id := range b.Inventory {
		if it, ok := e.Item(id); ok {
			lines = append(lines, "  "+human.Describe(b, it))
		}
	}

	if pending := e.PendingDelayed(b.ID); len(pending) > 0 {
		lines = append(lines, "", "Pending:")
		for _, d := range pending {
			lines = append(lines, fmt.Sprintf("  %s in %d", d.Name, d.Remaining))
		}
	}
	return lines
}
