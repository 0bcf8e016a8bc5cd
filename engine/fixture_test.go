package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nathoo/runecore/engine/kont"
	"github.com/nathoo/runecore/engine/query"
	"github.com/nathoo/runecore/engine/state"
	"github.com/nathoo/runecore/types"
)

// testDefs builds a small arena: a hero, a goblin and a handful of items.
func testDefs() *state.Defs {
	defs := state.NewDefs()
	defs.Game = types.GameDef{Title: "Test Game", Width: 12, Height: 8, Seed: 42, Player: "hero"}
	defs.Beings["hero"] = types.BeingDef{
		ID: "hero", Name: "hero", Glyph: "@", Faction: "player",
		Stats: types.Attributes{MaxHP: 20, MaxMana: 10, Attack: 2, Defense: 1, Accuracy: 4, Evasion: 1},
	}
	defs.Beings["goblin"] = types.BeingDef{
		ID: "goblin", Name: "goblin", Glyph: "g", Faction: "monster",
		Stats: types.Attributes{MaxHP: 6, Attack: 1, Defense: 0, Accuracy: 2},
	}
	defs.Items["quiver"] = types.ItemDef{ID: "quiver", Name: "quiver", Kind: "quiver", Arrows: 10}
	defs.Items["gatestone"] = types.ItemDef{ID: "gatestone", Name: "gatestone", Kind: "gatestone", Charge: 3, Capacity: 10}
	defs.Items["sword"] = types.ItemDef{ID: "sword", Name: "sword", Kind: "weapon", Slot: "hand", Damage: 2, Windup: 3}
	defs.Items["ring"] = types.ItemDef{ID: "ring", Name: "ring", Kind: "trinket"}
	return defs
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return New(testDefs(), Services{})
}

func spawn(t *testing.T, e *Engine, template string, x, y int, agent Agent) types.BeingID {
	t.Helper()
	id, err := e.Spawn(template, types.Coord{X: x, Y: y}, agent)
	require.NoError(t, err)
	return id
}

func give(t *testing.T, e *Engine, holder types.BeingID, template string) types.ItemID {
	t.Helper()
	id, err := e.CreateItem(template)
	require.NoError(t, err)
	require.True(t, e.GiveItem(holder, id))
	return id
}

func mustBeing(t *testing.T, e *Engine, id types.BeingID) *Being {
	t.Helper()
	b, ok := e.Being(id)
	require.True(t, ok, "being %v should exist", id)
	return b
}

// tally is an instrumented continuation that counts its invocations.
type tally struct {
	calls int
	last  Outcome
}

func (p *tally) cont() *kont.Cont[Outcome] {
	return kont.Named("tally", func(o Outcome) kont.Done {
		p.calls++
		p.last = o
		return kont.End()
	})
}

// scripted is an agent that answers from queues. Empty queues answer None.
// In async mode every answer is parked until flush.
type scripted struct {
	async bool

	actions []Action
	beings  []query.Answer[types.BeingID]
	items   []query.Answer[types.ItemID]
	dirs    []query.Answer[types.Direction]
	mags    []query.Answer[int]
	tiles   []query.Answer[types.Coord]
	counts  []query.Answer[int]
	vectors []query.Answer[types.Vector]

	asked    []query.Query
	messages []query.Message
	chants   []query.Incantation
	pending  []func() kont.Done
}

func answer[T any](s *scripted, q query.Query, queue *[]query.Answer[T], k *kont.Cont[query.Answer[T]]) kont.Done {
	s.asked = append(s.asked, q)
	ans := query.None[T]()
	if len(*queue) > 0 {
		ans = (*queue)[0]
		*queue = (*queue)[1:]
	}
	if s.async {
		s.pending = append(s.pending, func() kont.Done { return k.Resume(ans) })
		return kont.Park(k)
	}
	return k.Resume(ans)
}

func (s *scripted) Act(_ *Engine, _ types.BeingID, k *kont.Cont[Action]) kont.Done {
	var a Action = Pass{}
	if len(s.actions) > 0 {
		a = s.actions[0]
		s.actions = s.actions[1:]
	}
	if s.async {
		s.pending = append(s.pending, func() kont.Done { return k.Resume(a) })
		return kont.Park(k)
	}
	return k.Resume(a)
}

func (s *scripted) QueryBeing(q query.Being, k *kont.Cont[query.Answer[types.BeingID]]) kont.Done {
	return answer(s, q, &s.beings, k)
}

func (s *scripted) QueryItem(q query.Item, k *kont.Cont[query.Answer[types.ItemID]]) kont.Done {
	return answer(s, q, &s.items, k)
}

func (s *scripted) QueryDirection(q query.Direction, k *kont.Cont[query.Answer[types.Direction]]) kont.Done {
	return answer(s, q, &s.dirs, k)
}

func (s *scripted) QueryMagnitude(q query.Magnitude, k *kont.Cont[query.Answer[int]]) kont.Done {
	return answer(s, q, &s.mags, k)
}

func (s *scripted) QueryTile(q query.Tile, k *kont.Cont[query.Answer[types.Coord]]) kont.Done {
	return answer(s, q, &s.tiles, k)
}

func (s *scripted) QueryCount(q query.Count, k *kont.Cont[query.Answer[int]]) kont.Done {
	return answer(s, q, &s.counts, k)
}

func (s *scripted) QueryVector(q query.Vector, k *kont.Cont[query.Answer[types.Vector]]) kont.Done {
	return answer(s, q, &s.vectors, k)
}

func (s *scripted) SendMessage(m query.Message, k *kont.Cont[kont.Unit]) kont.Done {
	s.messages = append(s.messages, m)
	if s.async {
		s.pending = append(s.pending, func() kont.Done { return k.Resume(kont.Unit{}) })
		return kont.Park(k)
	}
	return k.Resume(kont.Unit{})
}

func (s *scripted) Incant(inc query.Incantation, k *kont.Cont[kont.Unit]) kont.Done {
	s.chants = append(s.chants, inc)
	return k.Resume(kont.Unit{})
}

// flush resumes parked continuations, including ones parked while
// flushing, and returns how many it resumed.
func (s *scripted) flush() int {
	n := 0
	for len(s.pending) > 0 {
		f := s.pending[0]
		s.pending = s.pending[1:]
		f()
		n++
	}
	return n
}

func (s *scripted) lastMessage() query.Message {
	if len(s.messages) == 0 {
		return query.Message{}
	}
	return s.messages[len(s.messages)-1]
}

// volley is a minimal ranged attack: aim, pay one arrow, then land.
type volley struct {
	quiver types.ItemID
	aimed  bool
}

func (m *volley) Name() string { return "volley" }

func (m *volley) Start(_ *Engine, self *Being) Step {
	return Ask(query.Tile{Asker: self.ID, Prompt: "Aim where?", Origin: self.Pos, Range: 5})
}

func (m *volley) Resume(_ *Engine, _ *Being, r query.Reply) Step {
	if !r.OK {
		return Finish(Aborted)
	}
	if !m.aimed {
		m.aimed = true
		return Pay(AmmoCost{Quiver: m.quiver, Amount: 1})
	}
	return Finish(Success)
}

// chain asks n directions in a row before finishing.
type chain struct {
	n, asked int
}

func (m *chain) Name() string { return "chain" }

func (m *chain) Start(_ *Engine, self *Being) Step {
	return Ask(query.Direction{Asker: self.ID})
}

func (m *chain) Resume(_ *Engine, self *Being, r query.Reply) Step {
	m.asked++
	if m.asked >= m.n {
		return Finish(Success)
	}
	return Ask(query.Direction{Asker: self.ID})
}

// always answers every query with a fixed direction; used for deep chains.
type always struct {
	scripted
}

func (a *always) QueryDirection(_ query.Direction, k *kont.Cont[query.Answer[types.Direction]]) kont.Done {
	return k.Resume(query.Some(types.North))
}

// recorder is an action that counts how often it is performed.
type recorder struct {
	name      string
	performed *int
	outcome   Outcome
}

func (r recorder) Name() string { return r.name }

func (r recorder) Perform(_ *Engine, _ types.BeingID, k *kont.Cont[Outcome]) kont.Done {
	*r.performed++
	return k.Resume(r.outcome)
}
