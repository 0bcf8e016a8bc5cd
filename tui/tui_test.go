package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/runecore/engine/enginetest"
	"github.com/nathoo/runecore/engine/human"
	"github.com/nathoo/runecore/engine/save"
	"github.com/nathoo/runecore/session"
	"github.com/nathoo/runecore/types"
)

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		line string
		want lineKind
	}{
		{"You miss the goblin. Roll: 1d20+4 → [3] vs 10", kindCombat},
		{"The goblin hits you for 2.", kindCombat},
		{`You intone "zap". (10 ticks)`, kindSpell},
		{"[Game saved to test.]", kindSystem},
		{"[trace] 3 moved hero", kindTrace},
		{`I don't understand "xyzzy"`, kindError},
		{"Not enough mana: 2 short.", kindError},
		{"You are not carrying that.", kindError},
		{"Your bow is gone.", kindError},
		{"Which way?", kindQuestion},
		{"You are carrying nothing.", kindMessage},
		{"", kindMessage},
	}
	for _, tt := range tests {
		got := classifyLine(tt.line)
		if got != tt.want {
			t.Errorf("classifyLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestGlyphStyle(t *testing.T) {
	tests := []struct {
		ch   byte
		want lipgloss.Style
	}{
		{'#', styleWall},
		{'.', styleFloor},
		{'~', styleEffect},
		{'@', stylePlayer},
		{'}', styleItem},
		{'*', styleItem},
		{'g', styleMonster},
	}
	for _, tt := range tests {
		got := glyphStyle(tt.ch, '@')
		if got.GetForeground() != tt.want.GetForeground() {
			t.Errorf("glyphStyle(%q) foreground = %v, want %v", tt.ch, got.GetForeground(), tt.want.GetForeground())
		}
	}
}

func TestWordWrap(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"short", 80, "short"},
		{"hello world", 5, "hello\nworld"},
		{"The goblin hits you for 2 with its rusty club.", 20,
			"The goblin hits you\nfor 2 with its rusty\nclub."},
		{"", 80, ""},
		{"one", 80, "one"},
		{"a b c d e", 3, "a b\nc d\ne"},
	}
	for _, tt := range tests {
		got := wordWrap(tt.text, tt.width)
		if got != tt.want {
			t.Errorf("wordWrap(%q, %d) =\n  %q\nwant:\n  %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func TestHistory_PushAndPrev(t *testing.T) {
	h := NewHistory(5)
	h.Push("look")
	h.Push("walk north")
	h.Push("shoot")

	prev, ok := h.Prev()
	if !ok || prev != "shoot" {
		t.Errorf("expected 'shoot', got %q (ok=%v)", prev, ok)
	}

	prev, ok = h.Prev()
	if !ok || prev != "walk north" {
		t.Errorf("expected 'walk north', got %q (ok=%v)", prev, ok)
	}

	prev, ok = h.Prev()
	if !ok || prev != "look" {
		t.Errorf("expected 'look', got %q (ok=%v)", prev, ok)
	}

	// At oldest, stays there.
	prev, ok = h.Prev()
	if !ok || prev != "look" {
		t.Errorf("expected 'look' at boundary, got %q (ok=%v)", prev, ok)
	}
}

func TestHistory_Next(t *testing.T) {
	h := NewHistory(5)
	h.Push("look")
	h.Push("walk north")

	h.Prev() // "walk north"
	h.Prev() // "look"

	next, ok := h.Next()
	if !ok || next != "walk north" {
		t.Errorf("expected 'walk north', got %q (ok=%v)", next, ok)
	}

	_, ok = h.Next()
	if ok {
		t.Error("expected false when past newest entry")
	}
}

func TestHistory_Last(t *testing.T) {
	h := NewHistory(5)
	if _, ok := h.Last(); ok {
		t.Error("expected no last entry on empty history")
	}
	h.Push("walk north")
	h.Push("shoot")
	h.Prev()
	h.Prev()
	if last, _ := h.Last(); last != "shoot" {
		t.Errorf("Last() = %q, want shoot regardless of the cursor", last)
	}
}

func TestHistory_Empty(t *testing.T) {
	h := NewHistory(5)
	_, ok := h.Prev()
	if ok {
		t.Error("expected false on empty history")
	}
	_, ok = h.Next()
	if ok {
		t.Error("expected false on empty history")
	}
}

func TestHistory_MaxSize(t *testing.T) {
	h := NewHistory(2)
	h.Push("a")
	h.Push("b")
	h.Push("c") // "a" evicted

	prev, _ := h.Prev()
	if prev != "c" {
		t.Errorf("expected 'c', got %q", prev)
	}
	prev, _ = h.Prev()
	if prev != "b" {
		t.Errorf("expected 'b', got %q", prev)
	}
	// "a" is gone.
	prev, _ = h.Prev()
	if prev != "b" {
		t.Errorf("expected 'b' at boundary, got %q", prev)
	}
}

func TestHistory_NoDuplicates(t *testing.T) {
	h := NewHistory(5)
	h.Push("look")
	h.Push("look") // skipped
	h.Push("look") // skipped

	if len(h.entries) != 1 {
		t.Errorf("expected 1 entry, got %d", len(h.entries))
	}
}

func TestHistory_ResetCursor(t *testing.T) {
	h := NewHistory(5)
	h.Push("look")
	h.Push("walk north")

	h.Prev() // "walk north"
	h.ResetCursor()

	// After reset, Prev starts from the end again.
	prev, ok := h.Prev()
	if !ok || prev != "walk north" {
		t.Errorf("expected 'walk north' after reset, got %q", prev)
	}
}


func testSession(t *testing.T, opts session.Options) *session.Session {
	t.Helper()
	defs := enginetest.Defs()
	defs.Game.Version = "1.0"
	defs.Game.Author = "Test"
	defs.Game.Intro = "Welcome to the test."
	defs.Spawns = []types.SpawnDef{
		{Being: "hero", At: types.Coord{X: 1, Y: 1}},
		{Being: "goblin", At: types.Coord{X: 10, Y: 6}},
	}
	s, err := session.New(defs, opts)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	return s
}

// started returns a sized model that has shown the intro and reached the
// first prompt.
func started(t *testing.T, opts session.Options) Model {
	t.Helper()
	m := New(testSession(t, opts))
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	next, _ = next.(Model).Update(startMsg{})
	return next.(Model)
}

// submit types line into the prompt and presses enter.
func submit(t *testing.T, m Model, line string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(line)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

func logText(m Model) string {
	var lines []string
	for _, rl := range m.rawLines {
		lines = append(lines, rl.text)
	}
	return strings.Join(lines, "\n")
}

func heroPos(t *testing.T, m Model) types.Coord {
	t.Helper()
	b, ok := m.sess.Player()
	if !ok {
		t.Fatal("hero is gone")
	}
	return b.Pos
}

func TestStart_ShowsIntroAndPrompts(t *testing.T) {
	m := started(t, session.Options{})

	text := logText(m)
	if !strings.Contains(text, "Test Arena v1.0 by Test") {
		t.Errorf("expected the title line, got:\n%s", text)
	}
	if !strings.Contains(text, "Welcome to the test.") {
		t.Error("expected intro text")
	}
	p, ok := m.sess.Human.Pending()
	if !ok || p.Kind != human.Command {
		t.Fatal("expected a command prompt")
	}
}

func TestEnter_Walk(t *testing.T) {
	m := started(t, session.Options{})
	m, _ = submit(t, m, "e")

	if got := heroPos(t, m); got != (types.Coord{X: 2, Y: 1}) {
		t.Errorf("hero at %v, want 2,1", got)
	}
	if !strings.Contains(logText(m), "> e") {
		t.Error("expected the command echoed")
	}
}

func TestEnter_QueryShowsQuestion(t *testing.T) {
	m := started(t, session.Options{})
	m, _ = submit(t, m, "walk")

	p, ok := m.sess.Human.Pending()
	if !ok || p.Kind != human.Direction {
		t.Fatalf("expected a direction prompt, got %+v", p)
	}
	if !strings.Contains(logText(m), p.Text) {
		t.Errorf("expected %q in the log", p.Text)
	}

	m, _ = submit(t, m, "south")
	if got := heroPos(t, m); got != (types.Coord{X: 1, Y: 2}) {
		t.Errorf("hero at %v, want 1,2", got)
	}
}

func TestEnter_Again(t *testing.T) {
	m := started(t, session.Options{})
	m, _ = submit(t, m, "g")
	if !strings.Contains(logText(m), "Nothing to repeat.") {
		t.Error("expected 'Nothing to repeat.'")
	}

	m, _ = submit(t, m, "e")
	m, _ = submit(t, m, "g")
	if got := heroPos(t, m); got != (types.Coord{X: 3, Y: 1}) {
		t.Errorf("hero at %v, want 3,1", got)
	}
}

func TestEnter_UnknownCommand(t *testing.T) {
	m := started(t, session.Options{})
	m, _ = submit(t, m, "xyzzy")

	if !strings.Contains(logText(m), `I don't understand "xyzzy"`) {
		t.Errorf("expected an error line, got:\n%s", logText(m))
	}
}

func TestEnter_QuitCommand(t *testing.T) {
	m := started(t, session.Options{})
	m, cmd := submit(t, m, "quit")

	if !m.quitting || cmd == nil {
		t.Error("expected quit")
	}
	if m.View() != "" {
		t.Error("expected an empty view after quitting")
	}
}

func TestView_DrawsMapAndStatus(t *testing.T) {
	m := started(t, session.Options{})
	view := m.View()

	for _, want := range []string{"@", "g", "Test Arena", "HP 20/20", "T:0", "Carrying:"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in the view", want)
		}
	}
}

func TestView_BeforeResize(t *testing.T) {
	m := New(testSession(t, session.Options{}))
	if m.View() != "Loading..." {
		t.Errorf("View() = %q, want Loading...", m.View())
	}
}

func TestHandleMeta_Quit(t *testing.T) {
	m := New(testSession(t, session.Options{}))

	_, quit := m.handleMeta("/quit")
	if !quit {
		t.Error("expected quit=true for /quit")
	}

	_, quit = m.handleMeta("/exit")
	if !quit {
		t.Error("expected quit=true for /exit")
	}
}

func TestHandleMeta_SaveAndLoad(t *testing.T) {
	store, err := save.OpenStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	m := started(t, session.Options{Store: store})
	m, _ = submit(t, m, "/save test")
	if !strings.Contains(logText(m), "Game saved to test (tick 0).") {
		t.Errorf("expected save confirmation, got:\n%s", logText(m))
	}

	m, _ = submit(t, m, "e")
	m, _ = submit(t, m, "/load test")
	if !strings.Contains(logText(m), "Game loaded from test (tick 0).") {
		t.Errorf("expected load confirmation, got:\n%s", logText(m))
	}
	if got := heroPos(t, m); got != (types.Coord{X: 1, Y: 1}) {
		t.Errorf("hero at %v after load, want 1,1", got)
	}
	if _, ok := m.sess.Human.Pending(); !ok {
		t.Error("expected a prompt after loading")
	}
}

func TestHandleMeta_LoadNonexistent(t *testing.T) {
	store, err := save.OpenStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	m := New(testSession(t, session.Options{Store: store}))

	output, quit := m.handleMeta("/load nonexistent")
	if quit {
		t.Error("load should not quit")
	}
	if len(output) == 0 || !strings.Contains(output[0], "Load failed") {
		t.Errorf("expected load failure, got %v", output)
	}
}

func TestHandleMeta_Help(t *testing.T) {
	m := New(testSession(t, session.Options{}))

	output, quit := m.handleMeta("/help")
	if quit {
		t.Error("help should not quit")
	}

	joined := strings.Join(output, "\n")
	for _, expected := range []string{"/save", "/load", "/saves", "/quit", "again"} {
		if !strings.Contains(joined, expected) {
			t.Errorf("expected %q in help output", expected)
		}
	}
}

func TestHandleMeta_Trace(t *testing.T) {
	m := started(t, session.Options{})

	output, _ := m.handleMeta("/trace")
	if !m.trace.on {
		t.Error("expected trace to be enabled")
	}
	if len(output) == 0 || !strings.Contains(output[0], "enabled") {
		t.Errorf("expected enabled message, got %v", output)
	}

	m, _ = submit(t, m, "e")
	if !strings.Contains(logText(m), "[trace]") {
		t.Error("expected trace lines after a move")
	}

	output, _ = m.handleMeta("/trace")
	if m.trace.on {
		t.Error("expected trace to be disabled")
	}
	if len(output) == 0 || !strings.Contains(output[0], "disabled") {
		t.Errorf("expected disabled message, got %v", output)
	}
}

func TestHandleMeta_Unknown(t *testing.T) {
	m := New(testSession(t, session.Options{}))

	output, quit := m.handleMeta("/bogus")
	if quit {
		t.Error("unknown command should not quit")
	}
	if len(output) == 0 || !strings.Contains(output[0], "Unknown command") {
		t.Errorf("expected unknown command message, got %v", output)
	}
}
