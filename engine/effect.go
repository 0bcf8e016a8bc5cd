package engine

import (
	"github.com/nathoo/runecore/engine/events"
	"github.com/nathoo/runecore/engine/kont"
	"github.com/nathoo/runecore/engine/query"
	"github.com/nathoo/runecore/types"
)

// Damage takes amount HP from target and kills it at zero. Returns the HP
// actually lost and whether the target died.
func (e *Engine) Damage(target types.BeingID, amount int, source types.BeingID) (dealt int, killed bool) {
	b, ok := e.Being(target)
	if !ok || amount <= 0 {
		return 0, false
	}
	dealt = min(amount, b.HP)
	b.HP -= amount
	e.Publish(types.Event{Type: events.Damaged, Being: target, Data: map[string]any{
		"amount": amount,
		"hp":     max(b.HP, 0),
		"source": source,
	}})
	if b.HP <= 0 {
		e.Kill(target)
		return dealt, true
	}
	return dealt, false
}

// Heal restores up to amount HP without exceeding the maximum. Returns the
// HP restored.
func (e *Engine) Heal(target types.BeingID, amount int) int {
	b, ok := e.Being(target)
	if !ok || amount <= 0 {
		return 0
	}
	maxHP := b.Attributes().MaxHP
	gained := min(amount, maxHP-b.HP)
	if gained <= 0 {
		return 0
	}
	b.HP += gained
	e.Publish(types.Event{Type: events.Healed, Being: target, Data: map[string]any{
		"amount": gained,
		"hp":     b.HP,
	}})
	return gained
}

// MoveTo puts id on tile c if c is passable.
func (e *Engine) MoveTo(id types.BeingID, c types.Coord) bool {
	b, ok := e.Being(id)
	if !ok || !e.Grid.Passable(c) {
		return false
	}
	from := b.Pos
	e.Grid.vacate(from)
	b.Pos = c
	e.Grid.place(id, c)
	e.Publish(types.Event{Type: events.Moved, Being: id, Data: map[string]any{
		"from_x": from.X, "from_y": from.Y,
		"x": c.X, "y": c.Y,
	}})
	return true
}

// Push slides id up to n tiles in dir, stopping before anything in the way.
// Returns the number of tiles moved.
func (e *Engine) Push(id types.BeingID, dir types.Direction, n int) int {
	moved := 0
	for moved < n {
		b, ok := e.Being(id)
		if !ok || !e.MoveTo(id, Adjacent(b.Pos, dir)) {
			break
		}
		moved++
	}
	return moved
}

// Notify sends m to actor's agent from a place that has no continuation of
// its own, such as a world tick.
func (e *Engine) Notify(actor types.BeingID, m query.Message) {
	e.Tell(actor, m, kont.Named("notify", func(kont.Unit) kont.Done {
		return kont.End()
	}))
}

// replenish regenerates mana and, for a being at full mana, moves mana
// into the autocharging gatestones it carries.
func (e *Engine) replenish(b *Being) {
	maxMana := b.Attributes().MaxMana
	if b.Mana >= maxMana {
		e.autocharge(b)
	}
	if b.Mana < maxMana && e.Tuning.ManaRegen > 0 {
		b.Mana = min(maxMana, b.Mana+e.Tuning.ManaRegen)
	}
}

func (e *Engine) autocharge(b *Being) {
	rate := e.Tuning.AutochargeRate
	for _, id := range b.Inventory {
		if rate <= 0 || b.Mana <= 0 {
			return
		}
		it, ok := e.Item(id)
		if !ok {
			continue
		}
		g, ok := BodyAs[*Gatestone](it)
		if !ok || !g.Autocharge || g.Charge >= g.Capacity {
			continue
		}
		n := min(rate, g.Capacity-g.Charge, b.Mana)
		g.Charge += n
		b.Mana -= n
		rate -= n
		e.Publish(types.Event{Type: events.Charged, Being: b.ID, Data: map[string]any{
			"item":   it.Name,
			"amount": n,
			"auto":   true,
		}})
	}
}
