package engine

import (
	"github.com/nathoo/runecore/engine/events"
	"github.com/nathoo/runecore/engine/kont"
	"github.com/nathoo/runecore/engine/query"
	"github.com/nathoo/runecore/types"
)

// delayed is an action waiting on its owner's countdown.
type delayed struct {
	action    Action
	k         *kont.Cont[Outcome]
	countdown int
}

// PendingAction describes a delayed action that has not fired yet.
type PendingAction struct {
	Name      string
	Remaining int
}

// AddDelayedAction attaches a to actor so that it is performed with k after
// delay ticks. A delay below 1 counts as 1. The record is dropped, and k
// resumed with Cancelled, if the actor is stunned or dies first; if the
// actor is already gone k is cancelled immediately.
func (e *Engine) AddDelayedAction(actor types.BeingID, delay int, a Action, k *kont.Cont[Outcome]) kont.Done {
	b, ok := e.Being(actor)
	if !ok {
		return k.Resume(Cancelled)
	}
	if delay < 1 {
		delay = 1
	}
	b.delayed = append(b.delayed, &delayed{action: a, k: k, countdown: delay})
	e.Publish(types.Event{Type: events.DelayedScheduled, Being: actor, Data: map[string]any{
		"action": a.Name(),
		"delay":  delay,
	}})
	return kont.Park(k)
}

// PendingDelayed lists actor's delayed actions in scheduling order.
func (e *Engine) PendingDelayed(actor types.BeingID) []PendingAction {
	b, ok := e.Being(actor)
	if !ok {
		return nil
	}
	out := make([]PendingAction, 0, len(b.delayed))
	for _, d := range b.delayed {
		out = append(out, PendingAction{Name: d.action.Name(), Remaining: d.countdown})
	}
	return out
}

// settle is the continuation a Schedule step attaches to its delayed
// action: it records how the action turned out.
func (e *Engine) settle(actor types.BeingID, a Action) *kont.Cont[Outcome] {
	return kont.Named(a.Name(), func(o Outcome) kont.Done {
		e.Publish(types.Event{Type: events.DelayedResolved, Being: actor, Data: map[string]any{
			"action":  a.Name(),
			"outcome": o.String(),
		}})
		return kont.End()
	})
}

// tickDelayed counts actor's records down by one and performs those that
// reach zero, in scheduling order.
func (e *Engine) tickDelayed(actor types.BeingID) {
	b, ok := e.Being(actor)
	if !ok || len(b.delayed) == 0 {
		return
	}

	var due []*delayed
	kept := b.delayed[:0]
	for _, d := range b.delayed {
		d.countdown--
		if d.countdown <= 0 {
			due = append(due, d)
		} else {
			kept = append(kept, d)
		}
	}
	b.delayed = kept

	for i, d := range due {
		b, ok := e.Being(actor)
		if !ok {
			e.cancelDelayed(actor, due[i:], "owner died")
			return
		}
		if b.Stunned() {
			e.cancelDelayed(actor, due[i:], "owner stunned")
			return
		}
		if e.active != nil {
			// Something else is suspended; the rest fire next tick.
			rest := append([]*delayed(nil), due[i:]...)
			for _, r := range rest {
				r.countdown = 1
			}
			b.delayed = append(rest, b.delayed...)
			return
		}
		e.Publish(types.Event{Type: events.DelayedFired, Being: actor, Data: map[string]any{
			"action": d.action.Name(),
		}})
		e.fire(b, d)
	}
}

// fire performs a due record as a turn of its owner. An action that
// suspends on its agent blocks the world, and its owner is not offered a
// turn, until it resumes.
func (e *Engine) fire(b *Being, d *delayed) {
	t := &turn{being: b.ID, action: d.action}
	e.active = t
	b.Turn = Performing
	done := d.action.Perform(e, b.ID, kont.Named(d.action.Name(), func(o Outcome) kont.Done {
		if e.active == t {
			e.active = nil
		}
		if owner, ok := e.Being(t.being); ok && owner.Turn == Performing {
			owner.Turn = Idle
		}
		return d.k.Resume(o)
	}))
	e.settled(t, done, d.action.Name())
}

// cancelDelayed resumes every record in recs with Cancelled. The caller has
// already detached them from their owner.
func (e *Engine) cancelDelayed(actor types.BeingID, recs []*delayed, reason string) {
	for _, d := range recs {
		e.Log.Printf("cancel %s for %v: %s", d.action.Name(), actor, reason)
		e.Publish(types.Event{Type: events.DelayedCancelled, Being: actor, Data: map[string]any{
			"action": d.action.Name(),
			"reason": reason,
		}})
		d.k.Resume(Cancelled)
	}
}

// interrupt drops every delayed action of a living being.
func (e *Engine) interrupt(actor types.BeingID, reason string) {
	b, ok := e.Being(actor)
	if !ok || len(b.delayed) == 0 {
		return
	}
	recs := b.delayed
	b.delayed = nil
	e.cancelDelayed(actor, recs, reason)
	for _, d := range recs {
		e.Notify(actor, query.Message{
			Kind: query.Interrupted,
			Text: "Your " + d.action.Name() + " is interrupted.",
		})
	}
}
