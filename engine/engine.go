// Package engine is the turn scheduler: beings choose actions through their
// agents, actions run as resumable step machines over continuations, and
// the world advances tick by tick whenever nobody is ready to act.
package engine

import (
	"fmt"
	"io"
	"log"

	"github.com/nathoo/runecore/config"
	"github.com/nathoo/runecore/engine/events"
	"github.com/nathoo/runecore/engine/state"
	"github.com/nathoo/runecore/types"
)

// Formula computes how long an incantation takes.
type Formula interface {
	IncantTicks(base, speech, power int) (int, error)
}

// Services are the engine-wide collaborators. Zero fields get defaults in
// New.
type Services struct {
	RNG     *RNG
	Log     *log.Logger
	Tuning  config.Tuning
	Formula Formula
	Events  *events.Bus
}

// Engine holds the game definitions and the live world.
type Engine struct {
	Defs *state.Defs
	Services
	Grid *Grid

	beings *state.Arena[Being]
	items  *state.Arena[Item]
	now    int
	active *turn
	player types.BeingID
}

// New creates an engine with an empty world shaped by defs.
func New(defs *state.Defs, svc Services) *Engine {
	if svc.RNG == nil {
		svc.RNG = NewRNG(defs.Game.Seed)
	}
	if svc.Log == nil {
		svc.Log = log.New(io.Discard, "[engine] ", log.LstdFlags|log.Lmicroseconds)
	}
	if svc.Tuning.TurnTicks == 0 {
		svc.Tuning = config.DefaultTuning()
	}
	if svc.Events == nil {
		svc.Events = events.NewBus()
	}

	w, h := defs.Game.Width, defs.Game.Height
	if w <= 0 {
		w = 40
	}
	if h <= 0 {
		h = 20
	}
	e := &Engine{
		Defs:     defs,
		Services: svc,
		Grid:     NewGrid(w, h),
		beings:   state.NewArena[Being](),
		items:    state.NewArena[Item](),
	}
	for _, c := range defs.Walls {
		e.Grid.SetWall(c, true)
	}
	return e
}

// Populate spawns every being listed in the definitions, asking agentFor
// for each one's agent. The first spawn of the game's player template
// becomes the player.
func (e *Engine) Populate(agentFor func(def types.BeingDef) Agent) error {
	for _, sp := range e.Defs.Spawns {
		def, ok := e.Defs.Being(sp.Being)
		if !ok {
			return fmt.Errorf("spawn at %v: unknown being %q", sp.At, sp.Being)
		}
		id, err := e.Spawn(sp.Being, sp.At, agentFor(def))
		if err != nil {
			return err
		}
		if sp.Being == e.Defs.Game.Player && e.player == (types.BeingID{}) {
			e.player = id
		}
	}
	return nil
}

// Spawn creates a being from template on tile at. Its starting items are
// created and given to it, and those with an equip slot are worn where the
// body has room.
func (e *Engine) Spawn(template string, at types.Coord, agent Agent) (types.BeingID, error) {
	def, ok := e.Defs.Being(template)
	if !ok {
		return types.BeingID{}, fmt.Errorf("unknown being template %q", template)
	}
	if !e.Grid.Passable(at) {
		return types.BeingID{}, fmt.Errorf("spawn %q at %v: tile is blocked", template, at)
	}

	name := def.Name
	if name == "" {
		name = def.ID
	}
	b := &Being{
		Template: def.ID,
		Name:     name,
		Glyph:    def.Glyph,
		Faction:  def.Faction,
		Base:     def.Stats,
		HP:       def.Stats.MaxHP,
		Mana:     def.Stats.MaxMana,
		Pos:      at,
		Agent:    agent,
		Body:     BuildBody(def.Body),
		Spells:   append([]string(nil), def.Spells...),
		Behavior: append([]types.BehaviorEntry(nil), def.Behavior...),
	}
	b.ID = types.BeingID(e.beings.Insert(b))
	e.Grid.place(b.ID, at)

	for _, tmpl := range def.Items {
		itemID, err := e.CreateItem(tmpl)
		if err != nil {
			return b.ID, fmt.Errorf("spawn %q: %w", template, err)
		}
		e.GiveItem(b.ID, itemID)
		if it, _ := e.Item(itemID); it.Slot != "" {
			if p := b.FreePart(it.Slot); p != nil {
				p.Item = itemID
			}
		}
	}
	return b.ID, nil
}

// Kill removes id from the world. Its delayed actions are cancelled, its
// tile freed and its inventory dropped where it stood. Handles to it go
// stale, so continuations still waiting on its behalf find nobody when they
// resume.
func (e *Engine) Kill(id types.BeingID) {
	b, ok := e.beings.Remove(state.Handle(id))
	if !ok {
		return
	}
	e.Grid.vacate(b.Pos)

	for _, itemID := range b.Inventory {
		if it, ok := e.Item(itemID); ok {
			it.Holder = types.BeingID{}
			it.Pos = b.Pos
			e.Grid.dropItem(itemID, b.Pos)
		}
	}
	b.Inventory = nil

	recs := b.delayed
	b.delayed = nil
	e.cancelDelayed(id, recs, "owner died")

	if e.active != nil && e.active.being == id {
		e.active = nil
	}
	e.Publish(types.Event{Type: events.Died, Being: id, Data: map[string]any{
		"name": b.Name,
		"x":    b.Pos.X,
		"y":    b.Pos.Y,
	}})
}

// Being resolves id.
func (e *Engine) Being(id types.BeingID) (*Being, bool) {
	return e.beings.Get(state.Handle(id))
}

// Beings returns every living being in slot order.
func (e *Engine) Beings() []types.BeingID {
	hs := e.beings.Handles()
	out := make([]types.BeingID, len(hs))
	for i, h := range hs {
		out[i] = types.BeingID(h)
	}
	return out
}

// Items returns every existing item in slot order.
func (e *Engine) Items() []types.ItemID {
	hs := e.items.Handles()
	out := make([]types.ItemID, len(hs))
	for i, h := range hs {
		out[i] = types.ItemID(h)
	}
	return out
}

// Player returns the being controlled by the human, if one was spawned.
func (e *Engine) Player() types.BeingID { return e.player }

// SetPlayer marks id as the human-controlled being.
func (e *Engine) SetPlayer(id types.BeingID) { e.player = id }

// Now returns the number of ticks elapsed.
func (e *Engine) Now() int { return e.now }

// IncantTicks returns how long caster needs to incant spell: the spell's
// base time scaled by the caster's speech through the tuning formula.
func (e *Engine) IncantTicks(caster types.BeingID, spell types.SpellDef) int {
	base := max(spell.Incant, 1)
	speech := 0
	if b, ok := e.Being(caster); ok {
		speech = b.Attributes().Speech
	}
	floor := max(e.Tuning.MinIncantTicks, 1)
	if e.Formula == nil {
		return max(base*10/max(10+speech, 1), floor)
	}
	n, err := e.Formula.IncantTicks(base, speech, spell.Power)
	if err != nil {
		e.Log.Printf("incant formula for %s: %v", spell.ID, err)
		return max(base, floor)
	}
	return max(n, floor)
}

// TurnTicks returns the busy-time actor pays for a.
func (e *Engine) TurnTicks(actor types.BeingID, a Action) int {
	if t, ok := a.(Timed); ok {
		return max(t.Ticks(e, actor), 1)
	}
	speed := 0
	if b, ok := e.Being(actor); ok {
		speed = b.Attributes().Speed
	}
	return max(e.Tuning.TurnTicks-speed, 1)
}

// Subscribe registers h for events of eventType, or for every event when
// eventType is empty.
func (e *Engine) Subscribe(eventType string, h events.Handler) {
	if eventType == "" {
		e.Events.SubscribeAll(h)
		return
	}
	e.Events.Subscribe(eventType, h)
}

// Publish stamps ev with the current tick and hands it to the event bus.
func (e *Engine) Publish(ev types.Event) {
	ev.Tick = e.now
	e.Events.Publish(ev)
}
