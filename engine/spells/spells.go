// Package spells is the closed set of spell kinds: what each needs to be
// aimed and what it does when the incantation completes.
package spells

import (
	"fmt"

	"github.com/nathoo/runecore/engine"
	"github.com/nathoo/runecore/engine/query"
	"github.com/nathoo/runecore/types"
)

// Kind is a spell kind.
type Kind int

const (
	Bolt Kind = iota + 1
	Heal
	Blink
	Shove
	Hex
)

var kindNames = map[Kind]string{
	Bolt:  "bolt",
	Heal:  "heal",
	Blink: "blink",
	Shove: "shove",
	Hex:   "hex",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// ParseKind maps a spell kind name to its Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown spell kind %q", name)
}

// Params are the answers gathered while incanting.
type Params struct {
	Target    types.BeingID
	Tile      types.Coord
	Vector    types.Vector
	Dir       types.Direction
	Magnitude int
}

// Set stores the payload of r.
func (p *Params) Set(r query.Reply) {
	switch r.Kind {
	case query.KindBeing:
		p.Target = r.Being
	case query.KindTile:
		p.Tile = r.Tile
	case query.KindVector:
		p.Vector = r.Vec
	case query.KindDirection:
		p.Dir = r.Dir
	case query.KindMagnitude:
		p.Magnitude = r.N
	}
}

// Requirements lists the queries a spell of kind asks, in order.
func Requirements(kind Kind) []query.Kind {
	switch kind {
	case Bolt:
		return []query.Kind{query.KindTile}
	case Heal, Hex:
		return []query.Kind{query.KindBeing}
	case Blink:
		return []query.Kind{query.KindVector}
	case Shove:
		return []query.Kind{query.KindBeing, query.KindDirection, query.KindMagnitude}
	}
	return nil
}

// Prompt builds the query asking caster for need when aiming def.
func Prompt(e *engine.Engine, caster *engine.Being, def types.SpellDef, need query.Kind) query.Query {
	name := def.Name
	if name == "" {
		name = def.ID
	}
	switch need {
	case query.KindTile:
		return query.Tile{
			Asker:  caster.ID,
			Prompt: fmt.Sprintf("Aim %s where?", name),
			Origin: caster.Pos,
			Range:  def.Range,
			Filter: e.Grid.InBounds,
		}
	case query.KindBeing:
		return query.Being{
			Asker:  caster.ID,
			Prompt: fmt.Sprintf("Cast %s on whom?", name),
			Range:  def.Range,
		}
	case query.KindVector:
		return query.Vector{
			Asker:     caster.ID,
			Prompt:    fmt.Sprintf("Blink how far? (up to %d)", def.Range),
			MaxLength: def.Range,
		}
	case query.KindDirection:
		return query.Direction{Asker: caster.ID, Prompt: "Which way?"}
	case query.KindMagnitude:
		return query.Magnitude{
			Asker:   caster.ID,
			Prompt:  "How hard?",
			Default: max(def.Power, 1),
			Min:     1,
			Max:     max(def.Power, 1),
		}
	}
	panic(fmt.Sprintf("spells: %s does not ask for %s", def.ID, need))
}

// Resolve applies def for caster with the gathered params. Targets are
// re-resolved here, not trusted from incant time: a target that has died
// or moved out of range makes the spell fail.
func Resolve(e *engine.Engine, caster types.BeingID, def types.SpellDef, p Params) engine.Outcome {
	self, ok := e.Being(caster)
	if !ok {
		return engine.Aborted
	}
	kind, err := ParseKind(def.Kind)
	if err != nil {
		e.Log.Printf("cast %s: %v", def.ID, err)
		return engine.Failure
	}

	switch kind {
	case Bolt:
		return bolt(e, self, def, p.Tile)
	case Blink:
		return blink(e, self, def, p.Vector)
	}

	target, ok := e.Being(p.Target)
	if !ok {
		e.Notify(caster, query.Message{Kind: query.TargetMissing, Text: "Your target is gone."})
		return engine.Failure
	}
	if def.Range > 0 && engine.Distance(self.Pos, target.Pos) > def.Range {
		e.Notify(caster, query.Message{Kind: query.Fizzle, Text: fmt.Sprintf("The %s is out of reach.", target.Name)})
		return engine.Failure
	}

	switch kind {
	case Heal:
		n := e.Heal(target.ID, def.Power)
		e.Notify(caster, query.Message{Kind: query.Info, Amount: n, Text: fmt.Sprintf("The %s is healed for %d.", target.Name, n)})
		return engine.Success
	case Shove:
		n := min(max(p.Magnitude, 1), max(def.Power, 1))
		moved := e.Push(target.ID, p.Dir, n)
		if moved == 0 {
			e.Notify(caster, query.Message{Kind: query.Miss, Text: fmt.Sprintf("The %s does not budge.", target.Name)})
			return engine.Failure
		}
		e.Notify(caster, query.Message{Kind: query.Hit, Amount: moved, Text: fmt.Sprintf("The %s is shoved %d tiles.", target.Name, moved)})
		return engine.Success
	case Hex:
		e.Inflict(target.ID, engine.Status{Kind: engine.Stun, Ticks: max(def.Power, 1)})
		e.Notify(caster, query.Message{Kind: query.Hit, Text: fmt.Sprintf("The %s is stunned.", target.Name)})
		return engine.Success
	}
	return engine.Failure
}

func bolt(e *engine.Engine, self *engine.Being, def types.SpellDef, at types.Coord) engine.Outcome {
	if def.Range > 0 && engine.Distance(self.Pos, at) > def.Range {
		e.Notify(self.ID, query.Message{Kind: query.Fizzle, Text: "The bolt fizzles short of its mark."})
		return engine.Failure
	}
	path, hit, ok := e.Grid.LineOfFire(self.Pos, at)
	e.Grid.Register(engine.Effect{Kind: "lightning", Path: path, Ticks: e.Tuning.EffectTicks})
	if !ok {
		e.Notify(self.ID, query.Message{Kind: query.Miss, Text: "Your bolt strikes nothing."})
		return engine.Failure
	}
	target, _ := e.Being(hit)
	damage, _ := engine.DamageCalc(def.Power, target.Attributes().Defense, 0, e.RNG)
	e.Notify(self.ID, query.Message{Kind: query.Hit, Amount: damage, Text: fmt.Sprintf("Lightning strikes the %s for %d.", target.Name, damage)})
	e.Notify(hit, query.Message{Kind: query.Info, Amount: damage, Text: fmt.Sprintf("Lightning strikes you for %d.", damage)})
	e.Damage(hit, damage, self.ID)
	return engine.Success
}

func blink(e *engine.Engine, self *engine.Being, def types.SpellDef, v types.Vector) engine.Outcome {
	if def.Range > 0 && max(abs(v.DX), abs(v.DY)) > def.Range {
		e.Notify(self.ID, query.Message{Kind: query.Fizzle, Text: "That is too far to blink."})
		return engine.Failure
	}
	if !e.MoveTo(self.ID, engine.Offset(self.Pos, v)) {
		e.Notify(self.ID, query.Message{Kind: query.Fizzle, Text: "Something blocks the way."})
		return engine.Failure
	}
	return engine.Success
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
