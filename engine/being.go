package engine

import (
	"slices"

	"github.com/nathoo/runecore/types"
)

// TurnState tracks where a being is in its turn.
type TurnState int

const (
	Idle TurnState = iota
	AwaitingDecision
	Performing
	Resolved
)

func (s TurnState) String() string {
	switch s {
	case AwaitingDecision:
		return "awaiting_decision"
	case Performing:
		return "performing"
	case Resolved:
		return "resolved"
	default:
		return "idle"
	}
}

// BodyPart is a node of a being's body tree. Parts with a Slot can hold
// one equipped item of that slot.
type BodyPart struct {
	Name  string
	Slot  string
	Item  types.ItemID
	Parts []*BodyPart
}

// Walk visits p and its descendants depth-first until fn returns false.
func (p *BodyPart) Walk(fn func(*BodyPart) bool) bool {
	if !fn(p) {
		return false
	}
	for _, c := range p.Parts {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// DefaultBody is the body given to templates that do not define one.
var DefaultBody = []types.BodyPartDef{
	{Name: "torso", Slot: "body"},
	{Name: "head", Slot: "head", Parent: "torso"},
	{Name: "neck", Slot: "neck", Parent: "torso"},
	{Name: "left arm", Parent: "torso"},
	{Name: "left hand", Slot: "hand", Parent: "left arm"},
	{Name: "right arm", Parent: "torso"},
	{Name: "right hand", Slot: "hand", Parent: "right arm"},
}

// BuildBody assembles a body tree from its part list. The first part without
// a parent is the root; parts naming an unknown parent hang off the root.
func BuildBody(defs []types.BodyPartDef) *BodyPart {
	if len(defs) == 0 {
		defs = DefaultBody
	}
	parts := make(map[string]*BodyPart, len(defs))
	for _, d := range defs {
		parts[d.Name] = &BodyPart{Name: d.Name, Slot: d.Slot}
	}

	var root *BodyPart
	for _, d := range defs {
		if d.Parent == "" && root == nil {
			root = parts[d.Name]
		}
	}
	if root == nil {
		root = &BodyPart{Name: "body"}
	}
	for _, d := range defs {
		p := parts[d.Name]
		if p == root {
			continue
		}
		parent, ok := parts[d.Parent]
		if !ok || parent == p {
			parent = root
		}
		parent.Parts = append(parent.Parts, p)
	}
	return root
}

// Being is a living entity on the grid.
type Being struct {
	ID       types.BeingID
	Template string
	Name     string
	Glyph    string
	Faction  string
	Base     types.Attributes
	HP       int
	Mana     int
	Busy     int
	Pos      types.Coord
	Agent    Agent
	Body     *BodyPart
	Spells   []string
	Behavior []types.BehaviorEntry
	Turn     TurnState

	Inventory []types.ItemID
	Statuses  []Status

	delayed []*delayed
	aborts  int
}

// Attributes returns the base attributes adjusted by active statuses.
func (b *Being) Attributes() types.Attributes {
	a := b.Base
	for _, s := range b.Statuses {
		s.modify(&a)
	}
	return a
}

// Has reports whether item is in b's inventory.
func (b *Being) Has(item types.ItemID) bool {
	return slices.Contains(b.Inventory, item)
}

// Knows reports whether b can incant spell.
func (b *Being) Knows(spell string) bool {
	return slices.Contains(b.Spells, spell)
}

// HasStatus reports whether a status of kind is active on b.
func (b *Being) HasStatus(kind StatusKind) bool {
	for _, s := range b.Statuses {
		if s.Kind == kind {
			return true
		}
	}
	return false
}

// Stunned reports whether b is stunned.
func (b *Being) Stunned() bool { return b.HasStatus(Stun) }

// Hostile reports whether b and o fight each other.
func (b *Being) Hostile(o *Being) bool {
	return b.ID != o.ID && b.Faction != o.Faction
}

// EquippedOn returns the body part holding item, or nil.
func (b *Being) EquippedOn(item types.ItemID) *BodyPart {
	var found *BodyPart
	if b.Body == nil || item == (types.ItemID{}) {
		return nil
	}
	b.Body.Walk(func(p *BodyPart) bool {
		if p.Item == item {
			found = p
			return false
		}
		return true
	})
	return found
}

// FreePart returns the first empty body part accepting slot, or nil.
func (b *Being) FreePart(slot string) *BodyPart {
	var found *BodyPart
	if b.Body == nil || slot == "" {
		return nil
	}
	b.Body.Walk(func(p *BodyPart) bool {
		if p.Slot == slot && p.Item == (types.ItemID{}) {
			found = p
			return false
		}
		return true
	})
	return found
}

// Equipped lists the items worn or wielded by b, in body order.
func (b *Being) Equipped() []types.ItemID {
	var out []types.ItemID
	if b.Body == nil {
		return nil
	}
	b.Body.Walk(func(p *BodyPart) bool {
		if p.Item != (types.ItemID{}) {
			out = append(out, p.Item)
		}
		return true
	})
	return out
}

// Delayed reports how many delayed actions b has pending.
func (b *Being) Delayed() int { return len(b.delayed) }
