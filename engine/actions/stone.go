package actions

import (
	"fmt"

	"github.com/nathoo/runecore/engine"
	"github.com/nathoo/runecore/engine/events"
	"github.com/nathoo/runecore/engine/kont"
	"github.com/nathoo/runecore/engine/query"
	"github.com/nathoo/runecore/types"
)

// Charge moves mana from the actor into a gatestone it carries, asking how
// much.
type Charge struct {
	Stone types.ItemID
}

func (Charge) Name() string { return "charge" }

func (a Charge) Perform(e *engine.Engine, actor types.BeingID, k *kont.Cont[engine.Outcome]) kont.Done {
	return engine.Run(e, actor, &charge{stone: a.Stone}, k)
}

type charge struct {
	stone  types.ItemID
	amount int
}

func (m *charge) Name() string { return "charge" }

func (m *charge) Start(e *engine.Engine, self *engine.Being) engine.Step {
	g, ok := m.resolve(e, self.ID)
	if !ok {
		return engine.Report(gone("You are not carrying that gatestone."), engine.Aborted)
	}
	room := g.Capacity - g.Charge
	if room <= 0 {
		return engine.Report(info("The gatestone is already full."), engine.Aborted)
	}
	return engine.Ask(query.Magnitude{
		Asker:   self.ID,
		Prompt:  fmt.Sprintf("Charge how much? (%d/%d)", g.Charge, g.Capacity),
		Default: max(min(room, self.Mana), 1),
		Min:     1,
		Max:     room,
	})
}

func (m *charge) Resume(e *engine.Engine, self *engine.Being, r query.Reply) engine.Step {
	if !r.OK {
		return engine.Finish(engine.Aborted)
	}
	g, ok := m.resolve(e, self.ID)
	if !ok {
		return engine.Report(gone("Your gatestone is gone."), engine.Aborted)
	}
	if r.Kind == query.KindMagnitude {
		if r.N < 1 {
			return engine.Finish(engine.Aborted)
		}
		m.amount = min(r.N, g.Capacity-g.Charge)
		if m.amount < 1 {
			return engine.Report(info("The gatestone is already full."), engine.Aborted)
		}
		return engine.Pay(engine.ManaCost{Amount: m.amount})
	}
	g.Charge += m.amount
	e.Publish(types.Event{Type: events.Charged, Being: self.ID, Data: map[string]any{
		"amount": m.amount,
		"charge": g.Charge,
	}})
	return engine.Finish(engine.Success)
}

func (m *charge) resolve(e *engine.Engine, holder types.BeingID) (*engine.Gatestone, bool) {
	it, ok := e.Held(holder, m.stone)
	if !ok {
		return nil, false
	}
	return engine.BodyAs[*engine.Gatestone](it)
}

// ToggleAutocharge switches whether a gatestone fills itself from the
// holder's spare mana.
type ToggleAutocharge struct {
	Stone types.ItemID
}

func (ToggleAutocharge) Name() string { return "autocharge" }

func (a ToggleAutocharge) Perform(e *engine.Engine, actor types.BeingID, k *kont.Cont[engine.Outcome]) kont.Done {
	it, ok := e.Held(actor, a.Stone)
	if !ok {
		return e.Tell(actor, gone("You are not carrying that gatestone."), abort(k))
	}
	g, ok := engine.BodyAs[*engine.Gatestone](it)
	if !ok {
		return e.Tell(actor, info("That is not a gatestone."), abort(k))
	}
	g.Autocharge = !g.Autocharge
	state := "off"
	if g.Autocharge {
		state = "on"
	}
	return e.Tell(actor, info(fmt.Sprintf("Autocharge is %s for the %s.", state, it.Name)), kont.Named("autocharge", func(kont.Unit) kont.Done {
		return k.Resume(engine.Success)
	}))
}

func abort(k *kont.Cont[engine.Outcome]) *kont.Cont[kont.Unit] {
	return kont.Map(k, func(kont.Unit) engine.Outcome { return engine.Aborted })
}
