package actions

import (
	"github.com/nathoo/runecore/engine"
	"github.com/nathoo/runecore/engine/events"
	"github.com/nathoo/runecore/engine/kont"
	"github.com/nathoo/runecore/engine/query"
	"github.com/nathoo/runecore/engine/spells"
	"github.com/nathoo/runecore/types"
)

// Incant aims a spell, pays for it and speaks its words. The spell itself
// is cast as a delayed action once the incantation completes, so a caster
// who is stunned or killed meanwhile loses it. With a Stone set the spell
// draws on the stone's charge instead of the caster's mana.
type Incant struct {
	Spell string
	Stone types.ItemID
}

func (Incant) Name() string { return "incant" }

func (a Incant) Perform(e *engine.Engine, actor types.BeingID, k *kont.Cont[engine.Outcome]) kont.Done {
	return engine.Run(e, actor, &incant{spell: a.Spell, stone: a.Stone}, k)
}

// Ticks keeps the caster busy for the whole incantation.
func (a Incant) Ticks(e *engine.Engine, actor types.BeingID) int {
	def, ok := e.Defs.Spell(a.Spell)
	if !ok {
		return e.Tuning.TurnTicks
	}
	return e.IncantTicks(actor, def)
}

type incantPhase int

const (
	gathering incantPhase = iota
	paying
	chanting
	scheduling
)

type incant struct {
	spell string
	stone types.ItemID

	def    types.SpellDef
	needs  []query.Kind
	asking query.Query
	params spells.Params
	phase  incantPhase
}

func (m *incant) Name() string { return "incant" }

func (m *incant) Start(e *engine.Engine, self *engine.Being) engine.Step {
	def, ok := e.Defs.Spell(m.spell)
	if !ok || !self.Knows(m.spell) {
		return engine.Report(query.Message{Kind: query.Fizzle, Text: "You do not know that spell."}, engine.Aborted)
	}
	if self.HasStatus(engine.Silence) {
		return engine.Report(query.Message{Kind: query.Fizzle, Text: "You cannot speak."}, engine.Aborted)
	}
	kind, err := spells.ParseKind(def.Kind)
	if err != nil {
		e.Log.Printf("incant %s: %v", def.ID, err)
		return engine.Report(query.Message{Kind: query.Fizzle, Text: "The spell makes no sense."}, engine.Aborted)
	}
	m.def = def
	m.needs = spells.Requirements(kind)
	return m.next(e, self)
}

func (m *incant) Resume(e *engine.Engine, self *engine.Being, r query.Reply) engine.Step {
	if !r.OK {
		return engine.Finish(engine.Aborted)
	}
	switch m.phase {
	case gathering:
		if !accepts(e, self, m.asking, r) {
			return engine.Report(info("That is out of reach."), engine.Aborted)
		}
		m.params.Set(r)
		m.needs = m.needs[1:]
		return m.next(e, self)
	case paying:
		m.phase = chanting
		return engine.Chant(query.Incantation{
			Spell: m.def.ID,
			Words: m.def.Words,
			Ticks: e.IncantTicks(self.ID, m.def),
		})
	case chanting:
		m.phase = scheduling
		return engine.Schedule(e.IncantTicks(self.ID, m.def), Cast{Spell: m.def.ID, Params: m.params})
	}
	return engine.Finish(engine.Success)
}

func (m *incant) next(e *engine.Engine, self *engine.Being) engine.Step {
	if len(m.needs) > 0 {
		m.asking = spells.Prompt(e, self, m.def, m.needs[0])
		return engine.Ask(m.asking)
	}
	m.phase = paying
	if m.stone != (types.ItemID{}) {
		return engine.Pay(engine.ChargeCost{Stone: m.stone, Amount: m.def.Mana})
	}
	return engine.Pay(engine.ManaCost{Amount: m.def.Mana})
}

// accepts checks an answer against the query that asked for it.
func accepts(e *engine.Engine, self *engine.Being, q query.Query, r query.Reply) bool {
	switch q := q.(type) {
	case query.Tile:
		return q.Accepts(r.Tile)
	case query.Vector:
		return q.Accepts(r.Vec)
	case query.Being:
		b, ok := e.Being(r.Being)
		if !ok {
			return false
		}
		return q.Range <= 0 || engine.Distance(self.Pos, b.Pos) <= q.Range
	case query.Magnitude:
		return r.N >= q.Min && (q.Max < q.Min || r.N <= q.Max)
	case query.Direction:
		return r.Dir != types.NoDirection
	}
	return true
}

// Cast applies a spell whose incantation has completed. Targets in Params
// are re-resolved; one that has gone makes the cast fail.
type Cast struct {
	Spell  string
	Params spells.Params
}

func (Cast) Name() string { return "cast" }

func (a Cast) Perform(e *engine.Engine, actor types.BeingID, k *kont.Cont[engine.Outcome]) kont.Done {
	def, ok := e.Defs.Spell(a.Spell)
	if !ok {
		return k.Resume(engine.Aborted)
	}
	o := spells.Resolve(e, actor, def, a.Params)
	e.Publish(types.Event{Type: events.Cast, Being: actor, Data: map[string]any{
		"spell":   def.ID,
		"outcome": o.String(),
	}})
	return k.Resume(o)
}
