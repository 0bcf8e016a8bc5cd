// Package session ties one loaded game to a live engine and the player's
// agent, and gives the front-ends save, load and rendering on top of it.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/nathoo/runecore/engine"
	"github.com/nathoo/runecore/engine/ai"
	"github.com/nathoo/runecore/engine/human"
	"github.com/nathoo/runecore/engine/save"
	"github.com/nathoo/runecore/engine/state"
	"github.com/nathoo/runecore/types"
)

// DriveLimit bounds how many ticks one Advance may run without the player
// being asked anything.
const DriveLimit = 10000

// ErrNoStore is returned by Save and Load when the session has no store.
var ErrNoStore = errors.New("saving is not available")

// Options configure a session. Services are copied into every engine the
// session builds; RNG and Events are always fresh.
type Options struct {
	Services engine.Services
	Seed     int64 // overrides the game's seed when non-zero
	Store    *save.Store
	Journal  *save.Journal
}

// Session is one game being played.
type Session struct {
	Defs   *state.Defs
	Engine *engine.Engine
	Human  *human.Agent

	opts     Options
	ai       *ai.Agent
	taken    bool
	watchers []func(types.Event)
}

// New builds the world described by defs and hands the player's being to
// a human agent. Every other being is played by the AI.
func New(defs *state.Defs, opts Options) (*Session, error) {
	s := &Session{Defs: defs, opts: opts}
	s.build()
	if err := s.Engine.Populate(s.agentForDef); err != nil {
		return nil, err
	}
	if _, ok := s.Engine.Being(s.Engine.Player()); !ok {
		return nil, fmt.Errorf("game %q never spawns its player %q", defs.Game.Title, defs.Game.Player)
	}
	return s, nil
}

func (s *Session) build() {
	svc := s.opts.Services
	seed := s.Defs.Game.Seed
	if s.opts.Seed != 0 {
		seed = s.opts.Seed
	}
	svc.RNG = engine.NewRNG(seed)
	svc.Events = nil
	s.Engine = engine.New(s.Defs, svc)
	s.Human = human.New(s.Engine)
	s.ai = ai.New(s.Engine)
	s.taken = false
	if s.opts.Journal != nil {
		s.opts.Journal.Attach(s.Engine)
	}
	for _, fn := range s.watchers {
		s.Engine.Subscribe("", fn)
	}
}

// Watch subscribes fn to every event of this and any later loaded world.
func (s *Session) Watch(fn func(types.Event)) {
	s.watchers = append(s.watchers, fn)
	s.Engine.Subscribe("", fn)
}

// agentForDef gives the human the first being spawned from the player
// template.
func (s *Session) agentForDef(def types.BeingDef) engine.Agent {
	if def.ID == s.Defs.Game.Player && !s.taken {
		s.taken = true
		return s.Human
	}
	return s.ai
}

// Logger returns the engine's logger.
func (s *Session) Logger() *log.Logger { return s.Engine.Log }

// Advance runs the world until the player is asked something. It reports
// false when the player is dead or nothing was asked within DriveLimit
// ticks.
func (s *Session) Advance() bool {
	return s.Human.Drive(DriveLimit)
}

// Over reports whether the player's being is gone.
func (s *Session) Over() bool {
	_, ok := s.Engine.Being(s.Engine.Player())
	return !ok
}

// Player returns the player's being.
func (s *Session) Player() (*engine.Being, bool) {
	return s.Engine.Being(s.Engine.Player())
}

// Save stores the world in a new slot.
func (s *Session) Save(ctx context.Context, name string) (save.Slot, error) {
	if s.opts.Store == nil {
		return save.Slot{}, ErrNoStore
	}
	if name == "" {
		name = "quicksave"
	}
	return s.opts.Store.Save(ctx, name, s.Engine)
}

// Saves lists this game's slots, newest first.
func (s *Session) Saves(ctx context.Context) ([]save.Slot, error) {
	if s.opts.Store == nil {
		return nil, ErrNoStore
	}
	return s.opts.Store.Index.List(ctx, s.Defs.Game.Title)
}

// Load replaces the world with the one saved in slot ref: a slot ID, a
// slot name, or "" for the newest save of this game. Whatever the player
// was being asked is dropped.
func (s *Session) Load(ctx context.Context, ref string) (save.Slot, error) {
	if s.opts.Store == nil {
		return save.Slot{}, ErrNoStore
	}
	slot, err := s.findSlot(ctx, ref)
	if err != nil {
		return save.Slot{}, err
	}
	f, err := s.opts.Store.Load(ctx, slot.ID)
	if err != nil {
		return save.Slot{}, err
	}

	old := s.Engine
	oldHuman, oldAI := s.Human, s.ai
	s.build()
	player := f.World.Player
	err = save.Apply(s.Engine, f, func(b *engine.Being) engine.Agent {
		if b.ID == player {
			return s.Human
		}
		return s.ai
	})
	if err != nil {
		s.Engine, s.Human, s.ai = old, oldHuman, oldAI
		return save.Slot{}, err
	}
	return slot, nil
}

func (s *Session) findSlot(ctx context.Context, ref string) (save.Slot, error) {
	if ref == "" {
		return s.opts.Store.Latest(ctx, s.Defs.Game.Title)
	}
	if id, err := uuid.Parse(ref); err == nil {
		return s.opts.Store.Index.Get(ctx, id)
	}
	slots, err := s.Saves(ctx)
	if err != nil {
		return save.Slot{}, err
	}
	for _, sl := range slots {
		if sl.Name == ref {
			return sl, nil
		}
	}
	return save.Slot{}, fmt.Errorf("%w: %q", save.ErrNoSlot, ref)
}

// Item glyphs by kind.
var itemGlyph = map[string]byte{
	"weapon":    ')',
	"bow":       '}',
	"quiver":    '|',
	"gatestone": '*',
	"trinket":   '"',
}

// Map renders the grid one string per row: beings over effects over items
// over the floor.
func (s *Session) Map() []string {
	g := s.Engine.Grid
	rows := make([][]byte, g.Height)
	for y := range rows {
		rows[y] = make([]byte, g.Width)
		for x := range rows[y] {
			c := types.Coord{X: x, Y: y}
			switch {
			case g.Wall(c):
				rows[y][x] = '#'
			default:
				rows[y][x] = '.'
			}
			if ids := g.ItemsAt(c); len(ids) > 0 {
				rows[y][x] = '?'
				if it, ok := s.Engine.Item(ids[len(ids)-1]); ok {
					if ch, ok := itemGlyph[it.Body.Kind()]; ok {
						rows[y][x] = ch
					}
				}
			}
		}
	}
	for _, fx := range g.Effects() {
		for _, c := range fx.Path {
			if g.InBounds(c) {
				rows[c.Y][c.X] = '~'
			}
		}
	}
	for _, id := range s.Engine.Beings() {
		b, ok := s.Engine.Being(id)
		if !ok || !g.InBounds(b.Pos) {
			continue
		}
		ch := byte('?')
		if b.Glyph != "" {
			ch = b.Glyph[0]
		}
		rows[b.Pos.Y][b.Pos.X] = ch
	}

	out := make([]string, len(rows))
	for y, r := range rows {
		out[y] = string(r)
	}
	return out
}

// Status is a one-line summary of the player.
func (s *Session) Status() string {
	b, ok := s.Player()
	if !ok {
		return fmt.Sprintf("Tick %d  (dead)", s.Engine.Now())
	}
	attrs := b.Attributes()
	parts := []string{
		fmt.Sprintf("%s  HP %d/%d  Mana %d/%d  Tick %d", b.Name, b.HP, attrs.MaxHP, b.Mana, attrs.MaxMana, s.Engine.Now()),
	}
	for _, st := range b.Statuses {
		parts = append(parts, fmt.Sprintf("%s(%d)", st.Kind, st.Ticks))
	}
	return strings.Join(parts, "  ")
}
