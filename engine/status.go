package engine

import (
	"github.com/nathoo/runecore/engine/events"
	"github.com/nathoo/runecore/types"
)

// StatusKind is the closed set of timed conditions.
type StatusKind int

const (
	Stun StatusKind = iota + 1
	Poison
	Regen
	Haste
	Weakness
	Silence
)

var statusNames = map[StatusKind]string{
	Stun:     "stun",
	Poison:   "poison",
	Regen:    "regen",
	Haste:    "haste",
	Weakness: "weakness",
	Silence:  "silence",
}

func (k StatusKind) String() string {
	if n, ok := statusNames[k]; ok {
		return n
	}
	return "unknown"
}

// ParseStatusKind maps a status name to its kind.
func ParseStatusKind(name string) (StatusKind, bool) {
	for k, n := range statusNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Status is a timed modifier on a being. Power is the per-tick amount for
// Poison and Regen and the attribute change for Haste and Weakness.
type Status struct {
	Kind  StatusKind
	Ticks int
	Power int
}

func (s Status) modify(a *types.Attributes) {
	switch s.Kind {
	case Haste:
		a.Speed += s.Power
	case Weakness:
		a.Attack -= s.Power
	}
}

// Inflict applies s to id. A kind already active keeps the longer duration
// and the stronger power. Stunning a being cancels its delayed actions.
func (e *Engine) Inflict(id types.BeingID, s Status) bool {
	b, ok := e.Being(id)
	if !ok || s.Ticks < 1 {
		return false
	}
	if s.Power < 1 && (s.Kind == Poison || s.Kind == Regen) {
		s.Power = 1
	}

	merged := false
	for i := range b.Statuses {
		cur := &b.Statuses[i]
		if cur.Kind != s.Kind {
			continue
		}
		cur.Ticks = max(cur.Ticks, s.Ticks)
		cur.Power = max(cur.Power, s.Power)
		merged = true
	}
	if !merged {
		b.Statuses = append(b.Statuses, s)
	}
	e.Publish(types.Event{Type: events.StatusInflicted, Being: id, Data: map[string]any{
		"status": s.Kind.String(),
		"ticks":  s.Ticks,
	}})

	if s.Kind == Stun {
		e.interrupt(id, "stunned")
	}
	return true
}

// Cure removes every status of kind from id.
func (e *Engine) Cure(id types.BeingID, kind StatusKind) bool {
	b, ok := e.Being(id)
	if !ok {
		return false
	}
	n := len(b.Statuses)
	b.Statuses = removeStatus(b.Statuses, kind)
	if len(b.Statuses) == n {
		return false
	}
	e.Publish(types.Event{Type: events.StatusExpired, Being: id, Data: map[string]any{
		"status": kind.String(),
		"cured":  true,
	}})
	return true
}

// tickStatuses applies per-tick effects and counts every status down by one.
func (e *Engine) tickStatuses(id types.BeingID) {
	b, ok := e.Being(id)
	if !ok || len(b.Statuses) == 0 {
		return
	}
	for _, s := range append([]Status(nil), b.Statuses...) {
		switch s.Kind {
		case Poison:
			e.Damage(id, s.Power, types.BeingID{})
		case Regen:
			e.Heal(id, s.Power)
		}
		if _, ok := e.Being(id); !ok {
			return
		}
	}

	kept := b.Statuses[:0]
	for _, s := range b.Statuses {
		s.Ticks--
		if s.Ticks > 0 {
			kept = append(kept, s)
			continue
		}
		e.Publish(types.Event{Type: events.StatusExpired, Being: id, Data: map[string]any{
			"status": s.Kind.String(),
		}})
	}
	b.Statuses = kept
}

func removeStatus(ss []Status, kind StatusKind) []Status {
	kept := ss[:0]
	for _, s := range ss {
		if s.Kind != kind {
			kept = append(kept, s)
		}
	}
	return kept
}
