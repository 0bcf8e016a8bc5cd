package engine

import (
	"github.com/nathoo/runecore/engine/events"
	"github.com/nathoo/runecore/engine/kont"
	"github.com/nathoo/runecore/types"
)

// maxAborts bounds how often one being may abort within a single tick
// before it is made to wait; it keeps an inline agent that keeps choosing
// unaffordable actions from spinning the driver.
const maxAborts = 8

// turn is the turn currently in flight.
type turn struct {
	being  types.BeingID
	action Action
}

// Blocked reports whether a turn, or a delayed action that fired, is
// suspended waiting on its agent. While blocked the world does not advance.
func (e *Engine) Blocked() bool { return e.active != nil }

// InFlight reports whether an action has started and not yet resolved.
func (e *Engine) InFlight() bool {
	return e.active != nil && e.active.action != nil
}

// Active returns the being whose turn is in flight.
func (e *Engine) Active() (types.BeingID, bool) {
	if e.active == nil {
		return types.BeingID{}, false
	}
	return e.active.being, true
}

// Ready reports whether b may be offered a turn.
func (b *Being) Ready() bool {
	return b.Busy <= 0 && !b.Stunned() && b.Turn == Idle
}

// Update does one unit of world work: it offers turns to ready beings in
// slot order, or advances one tick if none is ready. It returns false
// without doing anything while a turn is suspended.
func (e *Engine) Update() bool {
	if e.active != nil {
		return false
	}
	if e.offerTurns() {
		return true
	}
	e.Tick()
	return true
}

// Run pumps Update until a turn suspends or maxTicks ticks have passed.
// Returns the number of ticks advanced.
func (e *Engine) Run(maxTicks int) int {
	start := e.now
	for e.now-start < maxTicks {
		if !e.Update() {
			break
		}
	}
	return e.now - start
}

// offerTurns gives every ready being a turn, stopping at the first one that
// suspends. Reports whether any turn was offered.
func (e *Engine) offerTurns() bool {
	offered := false
	for _, id := range e.Beings() {
		b, ok := e.Being(id)
		if !ok || !b.Ready() {
			continue
		}
		offered = true
		e.beginTurn(b)
		if e.active != nil {
			return true
		}
	}
	return offered
}

func (e *Engine) beginTurn(b *Being) {
	t := &turn{being: b.ID}
	e.active = t
	b.Turn = AwaitingDecision
	id := b.ID
	d := agentOf(b).Act(e, id, kont.Named("act", func(a Action) kont.Done {
		return e.perform(t, a)
	}))
	e.settled(t, d, "act")
}

func (e *Engine) perform(t *turn, a Action) kont.Done {
	b, ok := e.Being(t.being)
	if !ok || e.active != t {
		return kont.End()
	}
	if a == nil {
		a = Pass{}
	}
	t.action = a
	b.Turn = Performing
	d := a.Perform(e, t.being, kont.Named(a.Name(), func(o Outcome) kont.Done {
		e.resolve(t, o)
		return kont.End()
	}))
	e.settled(t, d, a.Name())
	return d
}

// settled panics if t is still in flight although the path that returned d
// neither resolved it nor parked a continuation to resolve it later. Such a
// turn would block the world forever.
func (e *Engine) settled(t *turn, d kont.Done, name string) {
	if e.active == t && !d.Parked() {
		panic(&kont.ContractError{Name: name, Err: kont.ErrDropped})
	}
}

// resolve closes t with outcome o: busy-time is charged if the turn was
// consumed and the being returns to Idle.
func (e *Engine) resolve(t *turn, o Outcome) {
	if e.active == t {
		e.active = nil
	}
	b, ok := e.Being(t.being)
	if !ok {
		return
	}
	b.Turn = Resolved
	ticks := 0
	if o.ConsumesTurn() {
		ticks = e.TurnTicks(t.being, t.action)
		b.Busy += ticks
		b.aborts = 0
	} else {
		b.aborts++
		if b.aborts >= maxAborts {
			e.Log.Printf("%s aborted %d times in one tick, waiting", b.Name, b.aborts)
			b.Busy = max(b.Busy, 1)
			b.aborts = 0
		}
	}
	e.Publish(types.Event{Type: events.TurnResolved, Being: t.being, Data: map[string]any{
		"action":  t.action.Name(),
		"outcome": o.String(),
		"ticks":   ticks,
	}})
	b.Turn = Idle
}

// Tick advances the world by one tick: statuses, delayed actions,
// busy-time, mana and grid effects, in that order for each being.
func (e *Engine) Tick() {
	e.now++
	for _, id := range e.Beings() {
		e.tickStatuses(id)
		e.tickDelayed(id)

		b, ok := e.Being(id)
		if !ok {
			continue
		}
		if b.Busy > 0 {
			b.Busy--
		}
		e.replenish(b)
		b.aborts = 0
	}
	e.Grid.tick()
}
