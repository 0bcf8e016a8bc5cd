package state

import "fmt"

// Handle addresses a value in an Arena. Generations start at 1, so the zero
// Handle never resolves.
type Handle struct {
	Slot uint32
	Gen  uint32
}

type slot[T any] struct {
	gen  uint32
	live bool
	val  *T
}

// Arena is generational storage: removing a value bumps its slot's
// generation, so handles captured before the removal stop resolving even
// after the slot is reused.
type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
	live  int
}

// NewArena creates an empty arena.
func NewArena[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Insert stores v and returns its handle.
func (a *Arena[T]) Insert(v *T) Handle {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.gen++
		s.live = true
		s.val = v
		a.live++
		return Handle{Slot: idx, Gen: s.gen}
	}
	a.slots = append(a.slots, slot[T]{gen: 1, live: true, val: v})
	a.live++
	return Handle{Slot: uint32(len(a.slots) - 1), Gen: 1}
}

// Get resolves h. Returns false if h is stale or was never issued.
func (a *Arena[T]) Get(h Handle) (*T, bool) {
	if int(h.Slot) >= len(a.slots) {
		return nil, false
	}
	s := a.slots[h.Slot]
	if !s.live || s.gen != h.Gen {
		return nil, false
	}
	return s.val, true
}

// Valid reports whether h currently resolves.
func (a *Arena[T]) Valid(h Handle) bool {
	_, ok := a.Get(h)
	return ok
}

// Remove deletes the value behind h and returns it.
func (a *Arena[T]) Remove(h Handle) (*T, bool) {
	v, ok := a.Get(h)
	if !ok {
		return nil, false
	}
	s := &a.slots[h.Slot]
	s.live = false
	s.val = nil
	a.free = append(a.free, h.Slot)
	a.live--
	return v, true
}

// Len returns the number of live values.
func (a *Arena[T]) Len() int { return a.live }

// Handles returns the handles of all live values in slot order.
func (a *Arena[T]) Handles() []Handle {
	out := make([]Handle, 0, a.live)
	for i, s := range a.slots {
		if s.live {
			out = append(out, Handle{Slot: uint32(i), Gen: s.gen})
		}
	}
	return out
}

// Put stores v at exactly h, growing the arena as needed. Used when
// restoring a saved world so that saved handles keep resolving.
func (a *Arena[T]) Put(h Handle, v *T) error {
	if h.Gen == 0 {
		return fmt.Errorf("put %v: zero generation", h)
	}
	for int(h.Slot) >= len(a.slots) {
		a.slots = append(a.slots, slot[T]{})
		a.free = append(a.free, uint32(len(a.slots)-1))
	}
	s := &a.slots[h.Slot]
	if s.live {
		return fmt.Errorf("put %v: slot already live", h)
	}
	for i, idx := range a.free {
		if idx == h.Slot {
			a.free = append(a.free[:i], a.free[i+1:]...)
			break
		}
	}
	s.gen = h.Gen
	s.live = true
	s.val = v
	a.live++
	return nil
}
