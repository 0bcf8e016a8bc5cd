package engine

import (
	"fmt"

	"github.com/nathoo/runecore/engine/kont"
	"github.com/nathoo/runecore/engine/query"
	"github.com/nathoo/runecore/types"
)

// Cost gates an action on a resource. Check must not mutate anything: when
// the resource falls short it tells the actor's agent how much is missing
// and resumes k with Aborted. Incur deducts the resource and is only valid
// right after a successful Check.
type Cost interface {
	Check(e *Engine, actor types.BeingID, k *kont.Cont[Outcome]) kont.Done
	Incur(e *Engine, actor types.BeingID)
}

// CheckAndIncur checks c and, only if the check succeeds, incurs it before
// resuming k.
func CheckAndIncur(c Cost, e *Engine, actor types.BeingID, k *kont.Cont[Outcome]) kont.Done {
	return c.Check(e, actor, kont.Named("incur", func(o Outcome) kont.Done {
		if o == Success {
			c.Incur(e, actor)
		}
		return k.Resume(o)
	}))
}

// Free always succeeds.
type Free struct{}

func (Free) Check(_ *Engine, _ types.BeingID, k *kont.Cont[Outcome]) kont.Done {
	return k.Resume(Success)
}

func (Free) Incur(*Engine, types.BeingID) {}

// ManaCost draws on the actor's own mana.
type ManaCost struct {
	Amount int
}

func (c ManaCost) Check(e *Engine, actor types.BeingID, k *kont.Cont[Outcome]) kont.Done {
	b, ok := e.Being(actor)
	if !ok {
		return k.Resume(Aborted)
	}
	if b.Mana < c.Amount {
		return e.shortfall(actor, "mana", c.Amount-b.Mana, k)
	}
	return k.Resume(Success)
}

func (c ManaCost) Incur(e *Engine, actor types.BeingID) {
	if b, ok := e.Being(actor); ok {
		b.Mana -= c.Amount
	}
}

// ChargeCost draws on the charge stored in a gatestone the actor holds. The
// stone is re-resolved on every call; a stone that is gone or no longer
// held aborts with a target-missing message.
type ChargeCost struct {
	Stone  types.ItemID
	Amount int
}

func (c ChargeCost) Check(e *Engine, actor types.BeingID, k *kont.Cont[Outcome]) kont.Done {
	g, ok := heldBody[*Gatestone](e, actor, c.Stone)
	if !ok {
		return e.missing(actor, "Your gatestone is gone.", k)
	}
	if g.Charge < c.Amount {
		return e.shortfall(actor, "charge", c.Amount-g.Charge, k)
	}
	return k.Resume(Success)
}

func (c ChargeCost) Incur(e *Engine, actor types.BeingID) {
	if g, ok := heldBody[*Gatestone](e, actor, c.Stone); ok {
		g.Charge -= c.Amount
	}
}

// AmmoCost draws arrows from a quiver the actor holds.
type AmmoCost struct {
	Quiver types.ItemID
	Amount int
}

func (c AmmoCost) Check(e *Engine, actor types.BeingID, k *kont.Cont[Outcome]) kont.Done {
	q, ok := heldBody[*Quiver](e, actor, c.Quiver)
	if !ok {
		return e.missing(actor, "Your quiver is gone.", k)
	}
	if q.Arrows < c.Amount {
		return e.shortfall(actor, "arrows", c.Amount-q.Arrows, k)
	}
	return k.Resume(Success)
}

func (c AmmoCost) Incur(e *Engine, actor types.BeingID) {
	if q, ok := heldBody[*Quiver](e, actor, c.Quiver); ok {
		q.Arrows -= c.Amount
	}
}

// Chain checks every cost in order and incurs them only once all checks
// pass. Costs in a chain must draw on distinct resources.
type Chain []Cost

func (c Chain) Check(e *Engine, actor types.BeingID, k *kont.Cont[Outcome]) kont.Done {
	return c.checkFrom(0, e, actor, k)
}

func (c Chain) checkFrom(i int, e *Engine, actor types.BeingID, k *kont.Cont[Outcome]) kont.Done {
	if i == len(c) {
		return k.Resume(Success)
	}
	return c[i].Check(e, actor, kont.Named("chain", func(o Outcome) kont.Done {
		if o != Success {
			return k.Resume(o)
		}
		return c.checkFrom(i+1, e, actor, k)
	}))
}

func (c Chain) Incur(e *Engine, actor types.BeingID) {
	for _, cost := range c {
		cost.Incur(e, actor)
	}
}

// shortfall tells actor it is deficit short of resource, then aborts.
func (e *Engine) shortfall(actor types.BeingID, resource string, deficit int, k *kont.Cont[Outcome]) kont.Done {
	m := query.Message{
		Kind:     query.NotEnough,
		Resource: resource,
		Amount:   deficit,
		Text:     fmt.Sprintf("Not enough %s: %d short.", resource, deficit),
	}
	return e.Tell(actor, m, kont.Named("shortfall", func(kont.Unit) kont.Done {
		return k.Resume(Aborted)
	}))
}

// missing tells actor a referent has disappeared, then aborts.
func (e *Engine) missing(actor types.BeingID, text string, k *kont.Cont[Outcome]) kont.Done {
	m := query.Message{Kind: query.TargetMissing, Text: text}
	return e.Tell(actor, m, kont.Named("missing", func(kont.Unit) kont.Done {
		return k.Resume(Aborted)
	}))
}
