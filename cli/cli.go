// Package cli provides plain terminal I/O, output formatting, and
// meta-command dispatch for the runecore engine.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/nathoo/runecore/engine/human"
	"github.com/nathoo/runecore/session"
	"github.com/nathoo/runecore/types"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Session   *session.Session
	In        io.Reader
	Out       io.Writer
	Trace     bool
	ShowMap   bool   // draw the map before every command prompt
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
	trace     []string
}

// New creates a CLI wired to the given session.
func New(s *session.Session) *CLI {
	c := &CLI{
		Session: s,
		In:      os.Stdin,
		Out:     os.Stdout,
		ShowMap: true,
	}
	s.Watch(c.record)
	return c
}

// Run starts the game loop. It shows the intro, then loops: advance the
// world until the player is asked something → prompt → input → answer.
func (c *CLI) Run() {
	game := c.Session.Defs.Game
	if game.Intro != "" {
		c.printLine(game.Intro)
		c.printLine("")
	}

	scanner := bufio.NewScanner(c.In)
	for {
		asked := c.Session.Advance()
		c.flush()
		if !asked {
			if c.Session.Over() {
				c.printLine("You have died.")
			} else {
				c.printSystem("Nothing is happening.")
			}
			return
		}

		p, _ := c.Session.Human.Pending()
		if p.Kind == human.Command && c.ShowMap {
			c.drawMap()
		}
		if p.Kind != human.Command {
			c.printLine(p.Text)
		}
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}
		if input == "" && p.Kind == human.Command {
			continue
		}

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		// "again" / "g" repeats the last game command.
		if p.Kind == human.Command {
			lower := strings.ToLower(input)
			if lower == "again" || lower == "g" {
				if c.lastCmd == "" {
					c.printLine("Nothing to repeat.")
					continue
				}
				input = c.lastCmd
			} else {
				c.lastCmd = input
			}
		}

		err := c.Session.Human.Answer(input)
		if errors.Is(err, human.ErrQuit) {
			c.printSystem("Goodbye.")
			return
		}
		if err != nil {
			c.printLine(err.Error())
		}
	}
}

// handleMeta dispatches meta-commands. Returns true if the game should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	arg := strings.TrimSpace(strings.TrimPrefix(input, cmd))

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/save":
		c.cmdSave(arg)

	case "/load":
		c.cmdLoad(arg)

	case "/saves":
		c.cmdSaves()

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState()

	case "/map":
		c.drawMap()

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdSave(name string) {
	slot, err := c.Session.Save(context.Background(), name)
	if err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Game saved to %s (tick %d).", slot.Name, slot.Tick))
}

func (c *CLI) cmdLoad(ref string) {
	slot, err := c.Session.Load(context.Background(), ref)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	c.lastCmd = ""
	c.printSystem(fmt.Sprintf("Game loaded from %s (tick %d).", slot.Name, slot.Tick))
}

func (c *CLI) cmdSaves() {
	slots, err := c.Session.Saves(context.Background())
	if err != nil {
		c.printSystem(fmt.Sprintf("Listing saves failed: %v", err))
		return
	}
	if len(slots) == 0 {
		c.printSystem("No saves yet.")
		return
	}
	for _, sl := range slots {
		c.printLine(fmt.Sprintf("  %-12s tick %-6d %s  %s", sl.Name, sl.Tick,
			sl.SavedAt.Local().Format("2006-01-02 15:04"), sl.ID))
	}
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save [name]     Save game (default: quicksave)",
		"  /load [name|id]  Load a save (default: the newest)",
		"  /saves           List saves of this game",
		"  /map             Draw the map",
		"  /quit            Exit game",
		"  /help            Show this help",
		"  /state           Debug: dump current state",
		"  /trace           Toggle debug trace output",
		"",
		"Type 'help' at the command prompt for game commands.",
		"  again (g)        Repeat your last command",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	e := c.Session.Engine
	c.printSystem(fmt.Sprintf("Tick: %d", e.Now()))
	b, ok := c.Session.Player()
	if !ok {
		c.printSystem("Player: dead")
		return
	}
	c.printSystem(fmt.Sprintf("Player: %s at %d,%d busy %d", b.Name, b.Pos.X, b.Pos.Y, b.Busy))
	c.printSystem(fmt.Sprintf("Inventory: %d item(s), %d worn", len(b.Inventory), len(b.Equipped())))
	for _, d := range e.PendingDelayed(b.ID) {
		c.printSystem(fmt.Sprintf("Delayed: %s in %d", d.Name, d.Remaining))
	}
	c.printSystem(fmt.Sprintf("Beings: %d  Items: %d", len(e.Beings()), len(e.Items())))
}

func (c *CLI) drawMap() {
	for _, row := range c.Session.Map() {
		c.printLine(row)
	}
	c.printLine(c.Session.Status())
}

// record keeps a trace line per event while tracing is on.
func (c *CLI) record(ev types.Event) {
	if !c.Trace {
		return
	}
	line := fmt.Sprintf("[trace] %d %s", ev.Tick, ev.Type)
	if b, ok := c.Session.Engine.Being(ev.Being); ok {
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
	c.trace = append(c.trace, line)
}

// flush prints the player's queued log lines, then any trace lines.
func (c *CLI) flush() {
	for _, line := range c.Session.Human.Drain() {
		c.printLine(line)
	}
	for _, line := range c.trace {
		c.printLine(line)
	}
	c.trace = nil
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
