// Package events implements single-pass event dispatch. Events published
// while handlers are running are queued and delivered after the current
// event, never recursively.
package events

import "github.com/nathoo/runecore/types"

// Handler receives a published event.
type Handler func(types.Event)

// Event types published by the engine.
const (
	TurnResolved     = "turn_resolved"
	DelayedScheduled = "delayed_scheduled"
	DelayedFired     = "delayed_fired"
	DelayedResolved  = "delayed_resolved"
	DelayedCancelled = "delayed_cancelled"
	Damaged          = "damaged"
	Healed           = "healed"
	Moved            = "moved"
	Died             = "died"
	StatusInflicted  = "status_inflicted"
	StatusExpired    = "status_expired"
	ItemDropped      = "item_dropped"
	ItemPicked       = "item_picked"
	ItemEquipped     = "item_equipped"
	ItemUnequipped   = "item_unequipped"
	Incanted         = "incanted"
	Cast             = "cast"
	Charged          = "charged"
	Message          = "message"
)

// Bus fans events out to subscribers in subscription order.
type Bus struct {
	byType map[string][]Handler
	all    []Handler
	queue  []types.Event
	busy   bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{byType: map[string][]Handler{}}
}

// Subscribe registers h for events of the given type.
func (b *Bus) Subscribe(eventType string, h Handler) {
	b.byType[eventType] = append(b.byType[eventType], h)
}

// SubscribeAll registers h for every event.
func (b *Bus) SubscribeAll(h Handler) {
	b.all = append(b.all, h)
}

// Publish delivers ev to its subscribers. Called from inside a handler, it
// queues ev behind the event being dispatched.
func (b *Bus) Publish(ev types.Event) {
	b.queue = append(b.queue, ev)
	if b.busy {
		return
	}
	b.busy = true
	defer func() { b.busy = false }()

	for len(b.queue) > 0 {
		next := b.queue[0]
		b.queue = b.queue[1:]
		for _, h := range b.byType[next.Type] {
			h(next)
		}
		for _, h := range b.all {
			h(next)
		}
	}
}
