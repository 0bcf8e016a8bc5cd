package engine

import (
	"errors"
	"fmt"
	"slices"

	"github.com/nathoo/runecore/engine/state"
	"github.com/nathoo/runecore/types"
)

// ErrTurnInFlight is returned when the world is asked for a snapshot while
// an action is part way through.
var ErrTurnInFlight = errors.New("a turn is in flight")

// Snapshot is the persistent part of a world between turns. Delayed
// actions hold continuations and are not part of it.
type Snapshot struct {
	Now    int           `json:"now"`
	Player types.BeingID `json:"player"`
	Seed   int64         `json:"seed"`
	RNGPos int64         `json:"rng_pos"`
	Beings []BeingState  `json:"beings"`
	Items  []ItemState   `json:"items"`
}

// BeingState is a saved being.
type BeingState struct {
	ID        types.BeingID           `json:"id"`
	Template  string                  `json:"template"`
	Name      string                  `json:"name"`
	Glyph     string                  `json:"glyph"`
	Faction   string                  `json:"faction"`
	Base      types.Attributes        `json:"base"`
	HP        int                     `json:"hp"`
	Mana      int                     `json:"mana"`
	Busy      int                     `json:"busy"`
	Pos       types.Coord             `json:"pos"`
	Spells    []string                `json:"spells,omitempty"`
	Behavior  []types.BehaviorEntry   `json:"behavior,omitempty"`
	Inventory []types.ItemID          `json:"inventory,omitempty"`
	Statuses  []Status                `json:"statuses,omitempty"`
	Worn      map[string]types.ItemID `json:"worn,omitempty"` // body part name -> item
}

// ItemState is a saved item.
type ItemState struct {
	ID         types.ItemID  `json:"id"`
	Template   string        `json:"template"`
	Name       string        `json:"name"`
	Slot       string        `json:"slot,omitempty"`
	Kind       string        `json:"kind"`
	Damage     int           `json:"damage,omitempty"`
	Windup     int           `json:"windup,omitempty"`
	Range      int           `json:"range,omitempty"`
	Arrows     int           `json:"arrows,omitempty"`
	Charge     int           `json:"charge,omitempty"`
	Capacity   int           `json:"capacity,omitempty"`
	Autocharge bool          `json:"autocharge,omitempty"`
	Holder     types.BeingID `json:"holder"`
	Pos        types.Coord   `json:"pos"`
}

// Snapshot captures the world. A turn still waiting for its agent to pick
// an action is left out, and that being is offered its turn again after a
// restore. It fails with ErrTurnInFlight once an action has started.
func (e *Engine) Snapshot() (*Snapshot, error) {
	if e.InFlight() {
		return nil, ErrTurnInFlight
	}
	s := &Snapshot{
		Now:    e.now,
		Player: e.player,
		Seed:   e.RNG.Seed(),
		RNGPos: e.RNG.Position(),
	}
	for _, id := range e.Beings() {
		b, _ := e.Being(id)
		bs := BeingState{
			ID:        b.ID,
			Template:  b.Template,
			Name:      b.Name,
			Glyph:     b.Glyph,
			Faction:   b.Faction,
			Base:      b.Base,
			HP:        b.HP,
			Mana:      b.Mana,
			Busy:      b.Busy,
			Pos:       b.Pos,
			Spells:    slices.Clone(b.Spells),
			Behavior:  slices.Clone(b.Behavior),
			Inventory: slices.Clone(b.Inventory),
			Statuses:  slices.Clone(b.Statuses),
		}
		if b.Body != nil {
			b.Body.Walk(func(p *BodyPart) bool {
				if p.Item != (types.ItemID{}) {
					if bs.Worn == nil {
						bs.Worn = map[string]types.ItemID{}
					}
					bs.Worn[p.Name] = p.Item
				}
				return true
			})
		}
		s.Beings = append(s.Beings, bs)
	}
	for _, id := range e.Items() {
		it, _ := e.Item(id)
		is := ItemState{
			ID:       it.ID,
			Template: it.Template,
			Name:     it.Name,
			Slot:     it.Slot,
			Kind:     it.Body.Kind(),
			Holder:   it.Holder,
			Pos:      it.Pos,
		}
		switch body := it.Body.(type) {
		case *Weapon:
			is.Damage, is.Windup = body.Damage, body.Windup
		case *Bow:
			is.Damage, is.Range = body.Damage, body.Range
		case *Quiver:
			is.Arrows = body.Arrows
		case *Gatestone:
			is.Charge, is.Capacity, is.Autocharge = body.Charge, body.Capacity, body.Autocharge
		}
		s.Items = append(s.Items, is)
	}
	return s, nil
}

// Restore rebuilds a saved world into e, which must be empty. Every saved
// handle resolves to the same being or item it named before. agentFor
// picks the agent of each restored being.
func (e *Engine) Restore(s *Snapshot, agentFor func(b *Being) Agent) error {
	if e.beings.Len() > 0 || e.items.Len() > 0 {
		return errors.New("restore: world is not empty")
	}

	for _, is := range s.Items {
		body, err := NewItemBody(types.ItemDef{
			ID:         is.Template,
			Kind:       is.Kind,
			Damage:     is.Damage,
			Windup:     is.Windup,
			Range:      is.Range,
			Arrows:     is.Arrows,
			Charge:     is.Charge,
			Capacity:   is.Capacity,
			Autocharge: is.Autocharge,
		})
		if err != nil {
			return fmt.Errorf("restore item %v: %w", is.ID, err)
		}
		it := &Item{
			ID:       is.ID,
			Template: is.Template,
			Name:     is.Name,
			Slot:     is.Slot,
			Body:     body,
			Holder:   is.Holder,
			Pos:      is.Pos,
		}
		if err := e.items.Put(state.Handle(is.ID), it); err != nil {
			return fmt.Errorf("restore item %s: %w", is.Name, err)
		}
		if it.OnGround() {
			e.Grid.dropItem(it.ID, it.Pos)
		}
	}

	for _, bs := range s.Beings {
		def, _ := e.Defs.Being(bs.Template)
		b := &Being{
			ID:        bs.ID,
			Template:  bs.Template,
			Name:      bs.Name,
			Glyph:     bs.Glyph,
			Faction:   bs.Faction,
			Base:      bs.Base,
			HP:        bs.HP,
			Mana:      bs.Mana,
			Busy:      bs.Busy,
			Pos:       bs.Pos,
			Body:      BuildBody(def.Body),
			Spells:    bs.Spells,
			Behavior:  bs.Behavior,
			Inventory: bs.Inventory,
			Statuses:  bs.Statuses,
		}
		for part, item := range bs.Worn {
			b.Body.Walk(func(p *BodyPart) bool {
				if p.Name == part {
					p.Item = item
					return false
				}
				return true
			})
		}
		if agentFor != nil {
			b.Agent = agentFor(b)
		}
		if err := e.beings.Put(state.Handle(bs.ID), b); err != nil {
			return fmt.Errorf("restore being %s: %w", bs.Name, err)
		}
		e.Grid.place(b.ID, b.Pos)
	}

	e.now = s.Now
	e.player = s.Player
	e.RNG = RestoreRNG(s.Seed, s.RNGPos)
	e.Log.Printf("restored %d beings and %d items at tick %d", len(s.Beings), len(s.Items), s.Now)
	return nil
}
