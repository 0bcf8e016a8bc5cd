// Package query defines the closed set of requests an action issues to the
// agent controlling a being, the answers agents give back, and the messages
// they are sent.
package query

import "github.com/nathoo/runecore/types"

// Query is one of Being, Item, Direction, Magnitude, Tile, Count or Vector.
type Query interface {
	Kind() Kind
	query()
}

// Kind identifies the shape of a query.
type Kind int

const (
	KindBeing Kind = iota + 1
	KindItem
	KindDirection
	KindMagnitude
	KindTile
	KindCount
	KindVector
)

func (k Kind) String() string {
	switch k {
	case KindBeing:
		return "being"
	case KindItem:
		return "item"
	case KindDirection:
		return "direction"
	case KindMagnitude:
		return "magnitude"
	case KindTile:
		return "tile"
	case KindCount:
		return "count"
	case KindVector:
		return "vector"
	default:
		return "unknown"
	}
}

// Being asks for a target being within Range tiles of the asker.
type Being struct {
	Asker  types.BeingID
	Prompt string
	Range  int
	Filter func(types.BeingID) bool // nil accepts any being
}

// Item asks for one of the asker's items.
type Item struct {
	Asker  types.BeingID
	Prompt string
	Filter func(types.ItemID) bool
}

// Direction asks for a compass direction.
type Direction struct {
	Asker  types.BeingID
	Prompt string
}

// Magnitude asks for a number in [Min, Max], suggesting Default.
type Magnitude struct {
	Asker   types.BeingID
	Prompt  string
	Default int
	Min     int
	Max     int
}

// Tile asks for a tile within Range of Origin.
type Tile struct {
	Asker  types.BeingID
	Prompt string
	Origin types.Coord
	Range  int
	Filter func(types.Coord) bool
}

// Count asks how many of something, from 1 to Max.
type Count struct {
	Asker  types.BeingID
	Prompt string
	Max    int
}

// Vector asks for a displacement no longer than MaxLength tiles.
type Vector struct {
	Asker     types.BeingID
	Prompt    string
	MaxLength int
}

func (Being) Kind() Kind     { return KindBeing }
func (Item) Kind() Kind      { return KindItem }
func (Direction) Kind() Kind { return KindDirection }
func (Magnitude) Kind() Kind { return KindMagnitude }
func (Tile) Kind() Kind      { return KindTile }
func (Count) Kind() Kind     { return KindCount }
func (Vector) Kind() Kind    { return KindVector }

func (Being) query()     {}
func (Item) query()      {}
func (Direction) query() {}
func (Magnitude) query() {}
func (Tile) query()      {}
func (Count) query()     {}
func (Vector) query()    {}

// Clamp limits n to the query's [Min, Max] range.
func (q Magnitude) Clamp(n int) int {
	if n < q.Min {
		return q.Min
	}
	if q.Max >= q.Min && n > q.Max {
		return q.Max
	}
	return n
}

// Accepts reports whether c is in range of the query's origin and passes
// its filter.
func (q Tile) Accepts(c types.Coord) bool {
	if q.Range > 0 && chebyshev(q.Origin, c) > q.Range {
		return false
	}
	return q.Filter == nil || q.Filter(c)
}

// Accepts reports whether v fits the query's length limit.
func (q Vector) Accepts(v types.Vector) bool {
	if q.MaxLength <= 0 {
		return true
	}
	return max(abs(v.DX), abs(v.DY)) <= q.MaxLength
}

func chebyshev(a, b types.Coord) int {
	return max(abs(a.X-b.X), abs(a.Y-b.Y))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Answer is an agent's answer to a query. OK is false when the player
// cancelled.
type Answer[T any] struct {
	Value T
	OK    bool
}

// Some wraps an answer.
func Some[T any](v T) Answer[T] { return Answer[T]{Value: v, OK: true} }

// None is the cancelled answer.
func None[T any]() Answer[T] { return Answer[T]{} }

// Reply is an answer with its type erased, as delivered to a resumable
// action. Exactly one payload field is meaningful, chosen by Kind.
type Reply struct {
	Kind  Kind
	OK    bool
	Being types.BeingID
	Item  types.ItemID
	Dir   types.Direction
	N     int // magnitude or count
	Tile  types.Coord
	Vec   types.Vector
}

// Ack is the reply to a step that asks nothing of the agent.
var Ack = Reply{OK: true}

// MessageKind classifies a message sent to an agent.
type MessageKind int

const (
	Info MessageKind = iota
	NotEnough
	Miss
	Hit
	TargetMissing
	Interrupted
	Fizzle
)

func (k MessageKind) String() string {
	switch k {
	case NotEnough:
		return "not_enough"
	case Miss:
		return "miss"
	case Hit:
		return "hit"
	case TargetMissing:
		return "target_missing"
	case Interrupted:
		return "interrupted"
	case Fizzle:
		return "fizzle"
	default:
		return "info"
	}
}

// Message is sent to an agent. For NotEnough, Resource names what ran short
// and Amount is the deficit.
type Message struct {
	Kind     MessageKind
	To       types.BeingID
	Resource string
	Amount   int
	Text     string
}

// Incantation is spoken by a being winding up a spell.
type Incantation struct {
	Speaker types.BeingID
	Spell   string
	Words   string
	Ticks   int
}
