package engine

import (
	"fmt"

	"github.com/nathoo/runecore/engine/events"
	"github.com/nathoo/runecore/engine/kont"
	"github.com/nathoo/runecore/engine/query"
	"github.com/nathoo/runecore/types"
)

// Agent decides for a being. Every method takes a continuation and must
// consume it: an AI answers inline, a human front-end parks it until the
// player responds. A false Answer.OK means the player cancelled.
type Agent interface {
	Act(e *Engine, self types.BeingID, k *kont.Cont[Action]) kont.Done

	QueryBeing(q query.Being, k *kont.Cont[query.Answer[types.BeingID]]) kont.Done
	QueryItem(q query.Item, k *kont.Cont[query.Answer[types.ItemID]]) kont.Done
	QueryDirection(q query.Direction, k *kont.Cont[query.Answer[types.Direction]]) kont.Done
	QueryMagnitude(q query.Magnitude, k *kont.Cont[query.Answer[int]]) kont.Done
	QueryTile(q query.Tile, k *kont.Cont[query.Answer[types.Coord]]) kont.Done
	QueryCount(q query.Count, k *kont.Cont[query.Answer[int]]) kont.Done
	QueryVector(q query.Vector, k *kont.Cont[query.Answer[types.Vector]]) kont.Done

	SendMessage(m query.Message, k *kont.Cont[kont.Unit]) kont.Done
	Incant(inc query.Incantation, k *kont.Cont[kont.Unit]) kont.Done
}

// dispatch routes q to the matching query method of a and delivers the answer as
// a type-erased Reply.
func dispatch(a Agent, q query.Query, k *kont.Cont[query.Reply]) kont.Done {
	switch q := q.(type) {
	case query.Being:
		return a.QueryBeing(q, kont.Map(k, func(ans query.Answer[types.BeingID]) query.Reply {
			return query.Reply{Kind: query.KindBeing, OK: ans.OK, Being: ans.Value}
		}))
	case query.Item:
		return a.QueryItem(q, kont.Map(k, func(ans query.Answer[types.ItemID]) query.Reply {
			return query.Reply{Kind: query.KindItem, OK: ans.OK, Item: ans.Value}
		}))
	case query.Direction:
		return a.QueryDirection(q, kont.Map(k, func(ans query.Answer[types.Direction]) query.Reply {
			return query.Reply{Kind: query.KindDirection, OK: ans.OK, Dir: ans.Value}
		}))
	case query.Magnitude:
		return a.QueryMagnitude(q, kont.Map(k, func(ans query.Answer[int]) query.Reply {
			return query.Reply{Kind: query.KindMagnitude, OK: ans.OK, N: ans.Value}
		}))
	case query.Tile:
		return a.QueryTile(q, kont.Map(k, func(ans query.Answer[types.Coord]) query.Reply {
			return query.Reply{Kind: query.KindTile, OK: ans.OK, Tile: ans.Value}
		}))
	case query.Count:
		return a.QueryCount(q, kont.Map(k, func(ans query.Answer[int]) query.Reply {
			return query.Reply{Kind: query.KindCount, OK: ans.OK, N: ans.Value}
		}))
	case query.Vector:
		return a.QueryVector(q, kont.Map(k, func(ans query.Answer[types.Vector]) query.Reply {
			return query.Reply{Kind: query.KindVector, OK: ans.OK, Vec: ans.Value}
		}))
	default:
		panic(fmt.Sprintf("engine: unknown query %T", q))
	}
}

// agentOf returns the agent of b, or a passive stand-in for beings spawned
// without one.
func agentOf(b *Being) Agent {
	if b.Agent == nil {
		return passive{}
	}
	return b.Agent
}

// passive waits every turn, cancels every query and ignores messages.
type passive struct{}

func (passive) Act(_ *Engine, _ types.BeingID, k *kont.Cont[Action]) kont.Done {
	return k.Resume(Pass{})
}

func (passive) QueryBeing(_ query.Being, k *kont.Cont[query.Answer[types.BeingID]]) kont.Done {
	return k.Resume(query.None[types.BeingID]())
}

func (passive) QueryItem(_ query.Item, k *kont.Cont[query.Answer[types.ItemID]]) kont.Done {
	return k.Resume(query.None[types.ItemID]())
}

func (passive) QueryDirection(_ query.Direction, k *kont.Cont[query.Answer[types.Direction]]) kont.Done {
	return k.Resume(query.None[types.Direction]())
}

func (passive) QueryMagnitude(_ query.Magnitude, k *kont.Cont[query.Answer[int]]) kont.Done {
	return k.Resume(query.None[int]())
}

func (passive) QueryTile(_ query.Tile, k *kont.Cont[query.Answer[types.Coord]]) kont.Done {
	return k.Resume(query.None[types.Coord]())
}

func (passive) QueryCount(_ query.Count, k *kont.Cont[query.Answer[int]]) kont.Done {
	return k.Resume(query.None[int]())
}

func (passive) QueryVector(_ query.Vector, k *kont.Cont[query.Answer[types.Vector]]) kont.Done {
	return k.Resume(query.None[types.Vector]())
}

func (passive) SendMessage(_ query.Message, k *kont.Cont[kont.Unit]) kont.Done {
	return k.Resume(kont.Unit{})
}

func (passive) Incant(_ query.Incantation, k *kont.Cont[kont.Unit]) kont.Done {
	return k.Resume(kont.Unit{})
}

// Tell sends m to the agent of actor and then resumes k. If actor no longer
// exists, k is resumed without sending anything.
func (e *Engine) Tell(actor types.BeingID, m query.Message, k *kont.Cont[kont.Unit]) kont.Done {
	b, ok := e.Being(actor)
	if !ok {
		return k.Resume(kont.Unit{})
	}
	m.To = actor
	e.Publish(types.Event{Type: events.Message, Being: actor, Data: map[string]any{
		"kind": m.Kind.String(),
		"text": m.Text,
	}})
	return agentOf(b).SendMessage(m, k)
}
