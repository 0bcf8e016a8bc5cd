// Package human is the agent for the player. Every decision and query
// parks its continuation as the single pending prompt; a front-end renders
// the prompt, reads a line and hands it to Answer, which resumes the
// continuation exactly once.
package human

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nathoo/runecore/engine"
	"github.com/nathoo/runecore/engine/kont"
	"github.com/nathoo/runecore/engine/parser"
	"github.com/nathoo/runecore/engine/query"
	"github.com/nathoo/runecore/engine/resolve"
	"github.com/nathoo/runecore/types"
)

var (
	// ErrNoPrompt is returned by Answer when nothing is being asked.
	ErrNoPrompt = errors.New("nothing is being asked")
	// ErrQuit is returned by Answer when the player asks to quit.
	ErrQuit = errors.New("quit")
)

// Kind is the shape of answer a prompt expects.
type Kind int

const (
	Command Kind = iota + 1
	Being
	Item
	Direction
	Magnitude
	Tile
	Count
	Vector
)

// Prompt is what the player is being asked. Query is nil for Command.
type Prompt struct {
	Kind  Kind
	Text  string
	Query query.Query
}

type pending struct {
	prompt Prompt
	answer func(line string) error
}

// Agent is the human player's agent.
type Agent struct {
	e       *engine.Engine
	pending *pending
	log     []string
}

var _ engine.Agent = (*Agent)(nil)

// New returns a human agent playing in e.
func New(e *engine.Engine) *Agent {
	return &Agent{e: e}
}

// Pending returns the prompt waiting for an answer.
func (h *Agent) Pending() (Prompt, bool) {
	if h.pending == nil {
		return Prompt{}, false
	}
	return h.pending.prompt, true
}

// Answer hands line to the pending prompt. A line that does not parse
// leaves the prompt pending and returns the reason. Answering a query with
// cancel, esc or q cancels it.
func (h *Agent) Answer(line string) error {
	if h.pending == nil {
		return ErrNoPrompt
	}
	return h.pending.answer(line)
}

// Drain returns the log lines queued since the last call.
func (h *Agent) Drain() []string {
	out := h.log
	h.log = nil
	return out
}

// Logf queues a log line.
func (h *Agent) Logf(format string, args ...any) {
	h.log = append(h.log, fmt.Sprintf(format, args...))
}

// Drive advances the world until the player is asked something, the player
// is gone, or limit ticks have passed. It reports whether a prompt is
// waiting.
func (h *Agent) Drive(limit int) bool {
	start := h.e.Now()
	for h.e.Now()-start < limit {
		if h.pending != nil {
			return true
		}
		if _, alive := h.e.Being(h.e.Player()); !alive {
			return false
		}
		if !h.e.Update() {
			break
		}
	}
	return h.pending != nil
}

// park installs a query prompt resumed with whatever parse makes of the
// player's line.
func park[T any](h *Agent, p Prompt, k *kont.Cont[query.Answer[T]], parse func(string) (T, error)) kont.Done {
	h.pending = &pending{
		prompt: p,
		answer: func(line string) error {
			if parser.IsCancel(line) {
				h.pending = nil
				k.Resume(query.None[T]())
				return nil
			}
			v, err := parse(strings.TrimSpace(line))
			if err != nil {
				return err
			}
			h.pending = nil
			k.Resume(query.Some(v))
			return nil
		},
	}
	return kont.Park(k)
}

func (h *Agent) Act(_ *engine.Engine, self types.BeingID, k *kont.Cont[engine.Action]) kont.Done {
	h.pending = &pending{
		prompt: Prompt{Kind: Command, Text: "What now?"},
		answer: func(line string) error {
			a, err := h.command(self, line)
			if err != nil || a == nil {
				return err
			}
			h.pending = nil
			k.Resume(a)
			return nil
		},
	}
	return kont.Park(k)
}

func (h *Agent) QueryBeing(q query.Being, k *kont.Cont[query.Answer[types.BeingID]]) kont.Done {
	return park(h, Prompt{Kind: Being, Text: q.Prompt, Query: q}, k, func(line string) (types.BeingID, error) {
		id, err := resolve.Being(h.e, q.Asker, line, q.Range)
		if err != nil {
			return id, err
		}
		if q.Filter != nil && !q.Filter(id) {
			return id, fmt.Errorf("not a valid target")
		}
		return id, nil
	})
}

func (h *Agent) QueryItem(q query.Item, k *kont.Cont[query.Answer[types.ItemID]]) kont.Done {
	return park(h, Prompt{Kind: Item, Text: q.Prompt, Query: q}, k, func(line string) (types.ItemID, error) {
		return resolve.Item(h.e, q.Asker, line, q.Filter)
	})
}

func (h *Agent) QueryDirection(q query.Direction, k *kont.Cont[query.Answer[types.Direction]]) kont.Done {
	return park(h, Prompt{Kind: Direction, Text: q.Prompt, Query: q}, k, func(line string) (types.Direction, error) {
		dir, ok := parser.ParseDirection(line)
		if !ok {
			return dir, fmt.Errorf("which way? (n, ne, e, se, s, sw, w, nw)")
		}
		return dir, nil
	})
}

func (h *Agent) QueryMagnitude(q query.Magnitude, k *kont.Cont[query.Answer[int]]) kont.Done {
	text := fmt.Sprintf("%s [%d-%d, default %d]", q.Prompt, q.Min, q.Max, q.Default)
	return park(h, Prompt{Kind: Magnitude, Text: text, Query: q}, k, func(line string) (int, error) {
		if line == "" {
			return q.Clamp(q.Default), nil
		}
		n, err := strconv.Atoi(line)
		if err != nil {
			return 0, fmt.Errorf("enter a number")
		}
		if n < q.Min || (q.Max >= q.Min && n > q.Max) {
			return 0, fmt.Errorf("enter a number from %d to %d", q.Min, q.Max)
		}
		return n, nil
	})
}

func (h *Agent) QueryTile(q query.Tile, k *kont.Cont[query.Answer[types.Coord]]) kont.Done {
	return park(h, Prompt{Kind: Tile, Text: q.Prompt, Query: q}, k, func(line string) (types.Coord, error) {
		c, err := h.tile(q.Asker, line)
		if err != nil {
			return c, err
		}
		if !q.Accepts(c) {
			return c, fmt.Errorf("%d,%d is out of range", c.X, c.Y)
		}
		return c, nil
	})
}

// tile reads "x y", "x,y" or the name of a being.
func (h *Agent) tile(asker types.BeingID, line string) (types.Coord, error) {
	if x, y, ok := pair(line); ok {
		return types.Coord{X: x, Y: y}, nil
	}
	id, err := resolve.Being(h.e, asker, line, 0)
	if err != nil {
		return types.Coord{}, err
	}
	b, _ := h.e.Being(id)
	return b.Pos, nil
}

func (h *Agent) QueryCount(q query.Count, k *kont.Cont[query.Answer[int]]) kont.Done {
	text := fmt.Sprintf("%s [1-%d]", q.Prompt, q.Max)
	return park(h, Prompt{Kind: Count, Text: text, Query: q}, k, func(line string) (int, error) {
		if line == "" || line == "all" {
			return q.Max, nil
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > q.Max {
			return 0, fmt.Errorf("enter a number from 1 to %d", q.Max)
		}
		return n, nil
	})
}

func (h *Agent) QueryVector(q query.Vector, k *kont.Cont[query.Answer[types.Vector]]) kont.Done {
	return park(h, Prompt{Kind: Vector, Text: q.Prompt, Query: q}, k, func(line string) (types.Vector, error) {
		v, err := vector(line)
		if err != nil {
			return v, err
		}
		if !q.Accepts(v) {
			return v, fmt.Errorf("that is further than %d tiles", q.MaxLength)
		}
		return v, nil
	})
}

// vector reads "dx dy" or "<direction> [distance]".
func vector(line string) (types.Vector, error) {
	if dx, dy, ok := pair(line); ok {
		return types.Vector{DX: dx, DY: dy}, nil
	}
	fields := strings.Fields(line)
	if len(fields) == 0 || len(fields) > 2 {
		return types.Vector{}, fmt.Errorf("enter dx dy, or a direction and a distance")
	}
	dir, ok := parser.ParseDirection(fields[0])
	if !ok {
		return types.Vector{}, fmt.Errorf("enter dx dy, or a direction and a distance")
	}
	n := 1
	if len(fields) == 2 {
		var err error
		if n, err = strconv.Atoi(fields[1]); err != nil || n < 1 {
			return types.Vector{}, fmt.Errorf("distance must be a positive number")
		}
	}
	d := types.DirectionDeltas[dir]
	return types.Vector{DX: d.DX * n, DY: d.DY * n}, nil
}

func pair(line string) (int, int, bool) {
	fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
	if len(fields) != 2 {
		return 0, 0, false
	}
	a, err1 := strconv.Atoi(fields[0])
	b, err2 := strconv.Atoi(fields[1])
	return a, b, err1 == nil && err2 == nil
}

// SendMessage queues m as a log line and carries on.
func (h *Agent) SendMessage(m query.Message, k *kont.Cont[kont.Unit]) kont.Done {
	if m.Text != "" {
		h.log = append(h.log, m.Text)
	}
	return k.Resume(kont.Unit{})
}

func (h *Agent) Incant(inc query.Incantation, k *kont.Cont[kont.Unit]) kont.Done {
	h.Logf("You intone %q. (%d ticks)", inc.Words, inc.Ticks)
	return k.Resume(kont.Unit{})
}
