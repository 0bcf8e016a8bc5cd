package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/runecore/engine/human"
	"github.com/nathoo/runecore/session"
	"github.com/nathoo/runecore/types"
)

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed player input
	isSystem bool // true for system messages
}

// Model is the Bubble Tea model for the runecore TUI.
type Model struct {
	sess *session.Session

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine // accumulated log lines (unstyled, for re-wrapping)
	trace    *tracer

	width    int
	height   int
	ready    bool
	over     bool
	quitting bool
}

// tracer collects event lines between redraws. It is shared by every copy
// of the model.
type tracer struct {
	on    bool
	lines []string
}

// startMsg asks the model to show the intro and run the world up to the
// first prompt.
type startMsg struct{}

// gameOutputMsg carries output into the Update loop.
type gameOutputMsg struct {
	input    string   // echoed player input (empty for intro)
	lines    []string // output lines
	isSystem bool     // true for meta-command output
}

// New creates a TUI model wired to the given session.
func New(s *session.Session) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	m := Model{
		sess:    s,
		input:   ti,
		history: NewHistory(100),
		trace:   &tracer{},
	}
	s.Watch(m.trace.record(s))
	return m
}

// Run starts the Bubble Tea program.
func Run(s *session.Session, trace bool) error {
	m := New(s)
	m.trace.on = trace
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

func (t *tracer) record(s *session.Session) func(types.Event) {
	return func(ev types.Event) {
		if !t.on {
			return
		}
		line := fmt.Sprintf("[trace] %d %s", ev.Tick, ev.Type)
		if b, ok := s.Engine.Being(ev.Being); ok {
			line += " " + b.Name
		}
		keys := make([]string, 0, len(ev.Data))
		for k := range ev.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			line += fmt.Sprintf(" %s=%v", k, ev.Data[k])
		}
		t.lines = append(t.lines, line)
	}
}

// Init starts the cursor blinking and the game.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, func() tea.Msg { return startMsg{} })
}

// Update handles messages (key presses, window resize, game output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		if !m.ready {
			m.viewport = viewport.New(m.width, m.logHeight())
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = m.logHeight()
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case startMsg:
		game := m.sess.Defs.Game
		lines := []string{fmt.Sprintf("%s v%s by %s", game.Title, game.Version, game.Author), ""}
		if game.Intro != "" {
			lines = append(lines, game.Intro, "")
		}
		m = m.appendOutput(gameOutputMsg{lines: lines})
		m = m.advance("")

	case gameOutputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// advance runs the world until the player is asked something and shows
// what happened meanwhile. echo is the line that led here, if any.
func (m Model) advance(echo string, extra ...string) Model {
	asked := m.sess.Advance()
	lines := append(extra, m.sess.Human.Drain()...)
	lines = append(lines, m.trace.lines...)
	m.trace.lines = nil

	m.over = !asked
	if m.over {
		if m.sess.Over() {
			lines = append(lines, "You have died. /load to try again, /quit to leave.")
		} else {
			lines = append(lines, "Nothing is happening. /quit to leave.")
		}
	} else if p, _ := m.sess.Human.Pending(); p.Kind != human.Command {
		lines = append(lines, p.Text)
	}
	m.input.Placeholder = m.placeholder()
	return m.appendOutput(gameOutputMsg{input: echo, lines: lines})
}

func (m Model) placeholder() string {
	if m.over {
		return ""
	}
	p, ok := m.sess.Human.Pending()
	if !ok || p.Kind == human.Command {
		return "type help for commands"
	}
	return "answer, or cancel"
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	p, asking := m.sess.Human.Pending()
	command := asking && p.Kind == human.Command
	if input == "" && (command || !asking) {
		return m, nil
	}

	// Meta-commands.
	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendOutput(gameOutputMsg{input: input, lines: output, isSystem: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		if strings.HasPrefix(input, "/load") {
			m = m.advance("")
		}
		return m, nil
	}

	if !asking {
		m = m.appendOutput(gameOutputMsg{input: input, lines: []string{"Nobody is asking you anything."}, isSystem: true})
		return m, nil
	}

	// "again" / "g" repeats the last command.
	echo := input
	if command {
		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			last, ok := m.history.Last()
			if !ok {
				m = m.appendOutput(gameOutputMsg{
					input: input, lines: []string{"Nothing to repeat."}, isSystem: true,
				})
				return m, nil
			}
			input = last
		}
		m.history.Push(input)
	}
	m.history.ResetCursor()

	err := m.sess.Human.Answer(input)
	if errors.Is(err, human.ErrQuit) {
		m.quitting = true
		return m, tea.Quit
	}
	var extra []string
	if err != nil {
		extra = append(extra, err.Error())
	}
	return m.advance(echo, extra...), nil
}

// appendOutput adds lines to the log and refreshes the viewport.
func (m Model) appendOutput(msg gameOutputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{
			text: "> " + msg.input, isInput: true,
		})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	m.refreshViewport()

	return m
}

// mapHeight is the height of the map panel including its border.
func (m Model) mapHeight() int {
	return m.sess.Engine.Grid.Height + 2
}

// logHeight is what is left for the message log: the map, the status bar
// and the input line take the rest.
func (m Model) logHeight() int {
	return max(m.height-m.mapHeight()-2, 3)
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// renderMap draws the grid inside a border with the sidebar beside it.
func (m Model) renderMap() string {
	var player byte = '@'
	if b, ok := m.sess.Player(); ok && b.Glyph != "" {
		player = b.Glyph[0]
	}

	rows := m.sess.Map()
	var sb strings.Builder
	for y, row := range rows {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for i := 0; i < len(row); i++ {
			sb.WriteString(glyphStyle(row[i], player).Render(string(row[i])))
		}
	}
	grid := styleMapBorder.Render(sb.String())
	side := styleSidebar.Render(strings.Join(m.sidebarLines(), "\n"))
	return lipgloss.JoinHorizontal(lipgloss.Top, grid, side)
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wLen := len(word)

		if i == 0 {
			result.WriteString(word)
			lineLen = wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// View renders the full TUI layout: map + log + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.renderMap() + "\n" + m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	arg := strings.TrimSpace(strings.TrimPrefix(input, cmd))

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/save":
		return m.cmdSave(arg), false

	case "/load":
		return m.cmdLoad(arg), false

	case "/saves":
		return m.cmdSaves(), false

	case "/help":
		return m.cmdHelp(), false

	case "/trace":
		m.trace.on = !m.trace.on
		if m.trace.on {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) cmdSave(name string) []string {
	slot, err := m.sess.Save(context.Background(), name)
	if err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	return []string{fmt.Sprintf("Game saved to %s (tick %d).", slot.Name, slot.Tick)}
}

func (m *Model) cmdLoad(ref string) []string {
	slot, err := m.sess.Load(context.Background(), ref)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	return []string{fmt.Sprintf("Game loaded from %s (tick %d).", slot.Name, slot.Tick)}
}

func (m *Model) cmdSaves() []string {
	slots, err := m.sess.Saves(context.Background())
	if err != nil {
		return []string{fmt.Sprintf("Listing saves failed: %v", err)}
	}
	if len(slots) == 0 {
		return []string{"No saves yet."}
	}
	out := make([]string, 0, len(slots))
	for _, sl := range slots {
		out = append(out, fmt.Sprintf("%s  tick %d  %s", sl.Name, sl.Tick, sl.SavedAt.Local().Format("2006-01-02 15:04")))
	}
	return out
}

func (m *Model) cmdHelp() []string {
	return []string{
		"System:",
		"  /save [name]     Save game (default: quicksave)",
		"  /load [name|id]  Load a save (default: the newest)",
		"  /saves           List saves of this game",
		"  /quit            Exit game",
		"  /help            Show this help",
		"  /trace           Toggle debug trace output",
		"",
		"Type help at the prompt for game commands; again (g) repeats the last one.",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
	}
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
