// Package enginetest provides agents and fixtures for testing code built on
// the engine: a scripted agent that answers from queues, optionally parking
// every answer, and a counting continuation.
package enginetest

import (
	"testing"

	"github.com/nathoo/runecore/engine"
	"github.com/nathoo/runecore/engine/kont"
	"github.com/nathoo/runecore/engine/query"
	"github.com/nathoo/runecore/engine/state"
	"github.com/nathoo/runecore/types"
)

// Defs returns a small arena: a hero who knows every test spell, a goblin,
// and the usual items.
func Defs() *state.Defs {
	defs := state.NewDefs()
	defs.Game = types.GameDef{Title: "Test Arena", Width: 12, Height: 8, Seed: 7, Player: "hero"}
	defs.Beings["hero"] = types.BeingDef{
		ID: "hero", Name: "hero", Glyph: "@", Faction: "player",
		Stats:  types.Attributes{MaxHP: 20, MaxMana: 10, Attack: 2, Defense: 1, Accuracy: 4, Evasion: 1},
		Spells: []string{"bolt", "mend", "blink", "shove", "hex"},
	}
	defs.Beings["goblin"] = types.BeingDef{
		ID: "goblin", Name: "goblin", Glyph: "g", Faction: "monster",
		Stats: types.Attributes{MaxHP: 6, Attack: 1, Accuracy: 2},
	}
	defs.Beings["ogre"] = types.BeingDef{
		ID: "ogre", Name: "ogre", Glyph: "O", Faction: "monster",
		Stats: types.Attributes{MaxHP: 40, Attack: 3, Defense: 1, Accuracy: 2},
	}
	defs.Items["quiver"] = types.ItemDef{ID: "quiver", Name: "quiver", Kind: "quiver", Arrows: 10}
	defs.Items["bow"] = types.ItemDef{ID: "bow", Name: "bow", Kind: "bow", Slot: "hand", Damage: 1, Range: 6}
	defs.Items["gatestone"] = types.ItemDef{ID: "gatestone", Name: "gatestone", Kind: "gatestone", Charge: 3, Capacity: 10}
	defs.Items["sword"] = types.ItemDef{ID: "sword", Name: "sword", Kind: "weapon", Slot: "hand", Damage: 2, Windup: 3}
	defs.Items["amulet"] = types.ItemDef{ID: "amulet", Name: "amulet", Kind: "trinket", Slot: "neck"}
	defs.Spells["bolt"] = types.SpellDef{ID: "bolt", Name: "lightning bolt", Words: "zap", Kind: "bolt", Mana: 4, Incant: 10, Power: 3, Range: 6}
	defs.Spells["mend"] = types.SpellDef{ID: "mend", Name: "mend", Words: "mend", Kind: "heal", Mana: 3, Incant: 5, Power: 5, Range: 3}
	defs.Spells["blink"] = types.SpellDef{ID: "blink", Name: "blink", Words: "hop", Kind: "blink", Mana: 2, Incant: 2, Range: 3}
	defs.Spells["shove"] = types.SpellDef{ID: "shove", Name: "shove", Words: "away", Kind: "shove", Mana: 2, Incant: 2, Power: 3, Range: 1}
	defs.Spells["hex"] = types.SpellDef{ID: "hex", Name: "hex", Words: "sleep", Kind: "hex", Mana: 5, Incant: 4, Power: 4, Range: 4}
	return defs
}

// New returns an engine over Defs with default services.
func New() *engine.Engine {
	return engine.New(Defs(), engine.Services{})
}

// Spawn places template at (x, y) or fails the test.
func Spawn(t testing.TB, e *engine.Engine, template string, x, y int, agent engine.Agent) types.BeingID {
	t.Helper()
	id, err := e.Spawn(template, types.Coord{X: x, Y: y}, agent)
	if err != nil {
		t.Fatalf("spawn %s: %v", template, err)
	}
	return id
}

// Give creates an item from template and hands it to holder, or fails the
// test.
func Give(t testing.TB, e *engine.Engine, holder types.BeingID, template string) types.ItemID {
	t.Helper()
	id, err := e.CreateItem(template)
	if err != nil {
		t.Fatalf("create %s: %v", template, err)
	}
	if !e.GiveItem(holder, id) {
		t.Fatalf("give %s to %v", template, holder)
	}
	return id
}

// Tally is a continuation that counts how often it is resumed.
type Tally struct {
	Calls int
	Last  engine.Outcome
}

// Cont returns a fresh continuation reporting into p.
func (p *Tally) Cont() *kont.Cont[engine.Outcome] {
	return kont.Named("tally", func(o engine.Outcome) kont.Done {
		p.Calls++
		p.Last = o
		return kont.End()
	})
}

// Perform runs a for actor and returns what its continuation saw.
func Perform(e *engine.Engine, actor types.BeingID, a engine.Action) *Tally {
	p := &Tally{}
	a.Perform(e, actor, p.Cont())
	return p
}

// Script is an agent that answers from queues. An empty queue answers
// None and an empty action queue passes. With Async set every answer is
// parked until Flush.
type Script struct {
	Async bool

	Actions []engine.Action
	Beings  []query.Answer[types.BeingID]
	Items   []query.Answer[types.ItemID]
	Dirs    []query.Answer[types.Direction]
	Mags    []query.Answer[int]
	Tiles   []query.Answer[types.Coord]
	Counts  []query.Answer[int]
	Vectors []query.Answer[types.Vector]

	Asked    []query.Query
	Messages []query.Message
	Chants   []query.Incantation

	pending []func() kont.Done
}

var _ engine.Agent = (*Script)(nil)

func answer[T any](s *Script, q query.Query, queue *[]query.Answer[T], k *kont.Cont[query.Answer[T]]) kont.Done {
	s.Asked = append(s.Asked, q)
	ans := query.None[T]()
	if len(*queue) > 0 {
		ans = (*queue)[0]
		*queue = (*queue)[1:]
	}
	return reply(s, k, ans)
}

func reply[T any](s *Script, k *kont.Cont[T], v T) kont.Done {
	if s.Async {
		s.pending = append(s.pending, func() kont.Done { return k.Resume(v) })
		return kont.Park(k)
	}
	return k.Resume(v)
}

func (s *Script) Act(_ *engine.Engine, _ types.BeingID, k *kont.Cont[engine.Action]) kont.Done {
	var a engine.Action = engine.Pass{}
	if len(s.Actions) > 0 {
		a = s.Actions[0]
		s.Actions = s.Actions[1:]
	}
	return reply(s, k, a)
}

func (s *Script) QueryBeing(q query.Being, k *kont.Cont[query.Answer[types.BeingID]]) kont.Done {
	return answer(s, q, &s.Beings, k)
}

func (s *Script) QueryItem(q query.Item, k *kont.Cont[query.Answer[types.ItemID]]) kont.Done {
	return answer(s, q, &s.Items, k)
}

func (s *Script) QueryDirection(q query.Direction, k *kont.Cont[query.Answer[types.Direction]]) kont.Done {
	return answer(s, q, &s.Dirs, k)
}

func (s *Script) QueryMagnitude(q query.Magnitude, k *kont.Cont[query.Answer[int]]) kont.Done {
	return answer(s, q, &s.Mags, k)
}

func (s *Script) QueryTile(q query.Tile, k *kont.Cont[query.Answer[types.Coord]]) kont.Done {
	return answer(s, q, &s.Tiles, k)
}

func (s *Script) QueryCount(q query.Count, k *kont.Cont[query.Answer[int]]) kont.Done {
	return answer(s, q, &s.Counts, k)
}

func (s *Script) QueryVector(q query.Vector, k *kont.Cont[query.Answer[types.Vector]]) kont.Done {
	return answer(s, q, &s.Vectors, k)
}

func (s *Script) SendMessage(m query.Message, k *kont.Cont[kont.Unit]) kont.Done {
	s.Messages = append(s.Messages, m)
	return reply(s, k, kont.Unit{})
}

func (s *Script) Incant(inc query.Incantation, k *kont.Cont[kont.Unit]) kont.Done {
	s.Chants = append(s.Chants, inc)
	return reply(s, k, kont.Unit{})
}

// Flush resumes parked continuations, including ones parked while
// flushing, and returns how many it resumed.
func (s *Script) Flush() int {
	n := 0
	for len(s.pending) > 0 {
		f := s.pending[0]
		s.pending = s.pending[1:]
		f()
		n++
	}
	return n
}

// Step resumes only the oldest parked continuation. It reports false when
// nothing was parked.
func (s *Script) Step() bool {
	if len(s.pending) == 0 {
		return false
	}
	f := s.pending[0]
	s.pending = s.pending[1:]
	f()
	return true
}

// Pending reports how many answers are parked.
func (s *Script) Pending() int { return len(s.pending) }

// Last returns the most recent message, or the zero Message.
func (s *Script) Last() query.Message {
	if len(s.Messages) == 0 {
		return query.Message{}
	}
	return s.Messages[len(s.Messages)-1]
}

// Saw reports whether a message of kind was received.
func (s *Script) Saw(kind query.MessageKind) bool {
	for _, m := range s.Messages {
		if m.Kind == kind {
			return true
		}
	}
	return false
}
