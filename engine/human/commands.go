package human

import (
	"fmt"
	"strings"

	"github.com/nathoo/runecore/engine"
	"github.com/nathoo/runecore/engine/actions"
	"github.com/nathoo/runecore/engine/parser"
	"github.com/nathoo/runecore/engine/resolve"
	"github.com/nathoo/runecore/types"
)

const helpText = `Commands:
  n, ne, e, se, s, sw, w, nw   walk (walking into a foe attacks it)
  wait (z)                     let a turn pass
  jab [dir], strike [dir]      quick or wound-up melee blow
  shoot                        fire your bow at a tile
  cast <spell> [with <stone>]  incant a spell, optionally from a gatestone
  charge <stone>               move mana into a gatestone
  autocharge <stone>           toggle a gatestone's autocharge
  equip/unequip <item>         wear or take off an item
  take, drop, toss <item>      handle items
  inventory (i), look (x)      look around
  quit (q)`

// command turns a command line into an action. Commands that only show
// information queue log lines and return a nil action.
func (h *Agent) command(self types.BeingID, line string) (engine.Action, error) {
	intent := parser.Parse(line)
	e := h.e

	switch intent.Verb {
	case "":
		return nil, nil

	case "walk":
		if intent.Object == "" {
			return actions.Walk{}, nil
		}
		dir, ok := parser.ParseDirection(intent.Object)
		if !ok {
			return nil, fmt.Errorf("which way is %q?", intent.Object)
		}
		return actions.Walk{Dir: dir}, nil

	case "wait":
		return actions.Wait{}, nil

	case "jab", "strike":
		var dir types.Direction
		if intent.Object != "" {
			d, ok := parser.ParseDirection(intent.Object)
			if !ok {
				return nil, fmt.Errorf("which way is %q?", intent.Object)
			}
			dir = d
		}
		weapon := h.wielded(self)
		if intent.Verb == "jab" {
			return actions.Jab{Weapon: weapon, Dir: dir}, nil
		}
		return actions.Strike{Weapon: weapon, Dir: dir}, nil

	case "shoot":
		bow, _, ok := engine.FirstCarried[*engine.Bow](e, self, nil)
		if !ok {
			return nil, fmt.Errorf("you have no bow")
		}
		return actions.Shoot{Bow: bow}, nil

	case "incant":
		if intent.Object == "" {
			return nil, fmt.Errorf("cast what? you know: %s", h.knownSpells(self))
		}
		spell, err := resolve.Spell(e, self, intent.Object)
		if err != nil {
			return nil, err
		}
		var stone types.ItemID
		if intent.Target != "" {
			if stone, err = resolve.Item(e, self, intent.Target, h.stones(self)); err != nil {
				return nil, err
			}
		}
		return actions.Incant{Spell: spell, Stone: stone}, nil

	case "charge", "autocharge":
		stone, err := h.stone(self, intent.Object)
		if err != nil {
			return nil, err
		}
		if intent.Verb == "charge" {
			return actions.Charge{Stone: stone}, nil
		}
		return actions.ToggleAutocharge{Stone: stone}, nil

	case "equip", "unequip", "drop", "toss", "take":
		var item types.ItemID
		if intent.Object != "" {
			var err error
			if item, err = resolve.Item(e, self, intent.Object, nil); err != nil {
				return nil, err
			}
		}
		switch intent.Verb {
		case "equip":
			return actions.Equip{Item: item}, nil
		case "unequip":
			return actions.Unequip{Item: item}, nil
		case "drop":
			return engine.Drop{Item: item}, nil
		case "toss":
			return engine.Toss{Item: item}, nil
		}
		return actions.PickUp{Item: item}, nil

	case "inventory":
		h.inventory(self)
		return nil, nil

	case "look":
		h.look(self)
		return nil, nil

	case "help":
		h.log = append(h.log, strings.Split(helpText, "\n")...)
		return nil, nil

	case "quit":
		return nil, ErrQuit
	}
	return nil, fmt.Errorf("I don't understand %q", line)
}

func (h *Agent) wielded(self types.BeingID) types.ItemID {
	b, ok := h.e.Being(self)
	if !ok {
		return types.ItemID{}
	}
	for _, id := range b.Equipped() {
		if it, ok := h.e.Item(id); ok {
			if _, ok := engine.BodyAs[*engine.Weapon](it); ok {
				return id
			}
		}
	}
	return types.ItemID{}
}

func (h *Agent) stones(holder types.BeingID) func(types.ItemID) bool {
	return func(id types.ItemID) bool {
		it, ok := h.e.Held(holder, id)
		if !ok {
			return false
		}
		_, ok = engine.BodyAs[*engine.Gatestone](it)
		return ok
	}
}

// stone resolves name to a carried gatestone, or picks the first one when
// name is empty.
func (h *Agent) stone(holder types.BeingID, name string) (types.ItemID, error) {
	if name != "" {
		return resolve.Item(h.e, holder, name, h.stones(holder))
	}
	id, _, ok := engine.FirstCarried[*engine.Gatestone](h.e, holder, nil)
	if !ok {
		return id, fmt.Errorf("you have no gatestone")
	}
	return id, nil
}

func (h *Agent) knownSpells(self types.BeingID) string {
	b, ok := h.e.Being(self)
	if !ok || len(b.Spells) == 0 {
		return "nothing"
	}
	names := make([]string, 0, len(b.Spells))
	for _, id := range b.Spells {
		if def, ok := h.e.Defs.Spell(id); ok && def.Name != "" {
			names = append(names, def.Name)
			continue
		}
		names = append(names, id)
	}
	return strings.Join(names, ", ")
}

func (h *Agent) inventory(self types.BeingID) {
	b, ok := h.e.Being(self)
	if !ok {
		return
	}
	if len(b.Inventory) == 0 {
		h.Logf("You are carrying nothing.")
		return
	}
	h.Logf("You are carrying:")
	for _, id := range b.Inventory {
		it, ok := h.e.Item(id)
		if !ok {
			continue
		}
		h.Logf("  %s", Describe(b, it))
	}
}

// Describe renders an item with its state as seen by its holder.
func Describe(holder *engine.Being, it *engine.Item) string {
	s := it.Name
	switch body := it.Body.(type) {
	case *engine.Quiver:
		s += fmt.Sprintf(" (%d arrows)", body.Arrows)
	case *engine.Gatestone:
		s += fmt.Sprintf(" (%d/%d", body.Charge, body.Capacity)
		if body.Autocharge {
			s += ", autocharge"
		}
		s += ")"
	}
	if p := holder.EquippedOn(it.ID); p != nil {
		s += " [" + p.Name + "]"
	}
	return s
}

func (h *Agent) look(self types.BeingID) {
	b, ok := h.e.Being(self)
	if !ok {
		return
	}
	a := b.Attributes()
	h.Logf("You stand at %d,%d. HP %d/%d, mana %d/%d.", b.Pos.X, b.Pos.Y, b.HP, a.MaxHP, b.Mana, a.MaxMana)
	for _, s := range b.Statuses {
		h.Logf("You are affected by %s (%d ticks).", s.Kind, s.Ticks)
	}
	for _, id := range h.e.Grid.ItemsAt(b.Pos) {
		if it, ok := h.e.Item(id); ok {
			h.Logf("A %s lies here.", it.Name)
		}
	}
	for _, id := range h.e.Beings() {
		o, ok := h.e.Being(id)
		if !ok || o.ID == self {
			continue
		}
		h.Logf("A %s is at %d,%d (%d HP).", o.Name, o.Pos.X, o.Pos.Y, o.HP)
	}
	for _, p := range h.e.PendingDelayed(self) {
		h.Logf("Your %s lands in %d ticks.", p.Name, p.Remaining)
	}
}
