package actions

import (
	"fmt"

	"github.com/nathoo/runecore/engine"
	"github.com/nathoo/runecore/engine/kont"
	"github.com/nathoo/runecore/engine/query"
	"github.com/nathoo/runecore/types"
)

// Shoot fires one arrow from Bow at a tile. The arrow is paid for only
// once a tile has been chosen; it flies along the line of fire and hits
// the first being in the way.
type Shoot struct {
	Bow types.ItemID
}

func (Shoot) Name() string { return "shoot" }

func (a Shoot) Perform(e *engine.Engine, actor types.BeingID, k *kont.Cont[engine.Outcome]) kont.Done {
	return engine.Run(e, actor, &shoot{bow: a.Bow}, k)
}

type shoot struct {
	bow    types.ItemID
	quiver types.ItemID
	at     types.Coord
	paid   bool
}

func (m *shoot) Name() string { return "shoot" }

func (m *shoot) Start(e *engine.Engine, self *engine.Being) engine.Step {
	bow, ok := m.resolve(e, self.ID)
	if !ok {
		return engine.Report(gone("You are not holding that bow."), engine.Aborted)
	}
	quiver, _, ok := engine.FirstCarried(e, self.ID, func(q *engine.Quiver) bool { return q.Arrows > 0 })
	if !ok {
		return engine.Report(query.Message{
			Kind:     query.NotEnough,
			Resource: "arrows",
			Amount:   1,
			Text:     "You have no arrows.",
		}, engine.Aborted)
	}
	m.quiver = quiver
	return engine.Ask(query.Tile{
		Asker:  self.ID,
		Prompt: "Shoot at what?",
		Origin: self.Pos,
		Range:  bow.Range,
		Filter: e.Grid.InBounds,
	})
}

func (m *shoot) Resume(e *engine.Engine, self *engine.Being, r query.Reply) engine.Step {
	if !r.OK {
		return engine.Finish(engine.Aborted)
	}
	if !m.paid {
		bow, ok := m.resolve(e, self.ID)
		if !ok {
			return engine.Report(gone("Your bow is gone."), engine.Aborted)
		}
		if bow.Range > 0 && engine.Distance(self.Pos, r.Tile) > bow.Range {
			return engine.Report(info(fmt.Sprintf("That is out of range (%d tiles).", bow.Range)), engine.Aborted)
		}
		m.at = r.Tile
		m.paid = true
		return engine.Pay(engine.AmmoCost{Quiver: m.quiver, Amount: 1})
	}
	return m.fire(e, self)
}

func (m *shoot) fire(e *engine.Engine, self *engine.Being) engine.Step {
	bow, ok := m.resolve(e, self.ID)
	if !ok {
		return engine.Report(gone("Your bow is gone."), engine.Failure)
	}
	path, hit, ok := e.Grid.LineOfFire(self.Pos, m.at)
	e.Grid.Register(engine.Effect{Kind: "arrow", Path: path, Ticks: e.Tuning.EffectTicks})
	if !ok {
		return engine.Report(query.Message{Kind: query.Miss, Text: "Your arrow hits nothing."}, engine.Failure)
	}
	return engine.Finish(e.Attack(engine.Blow{
		Attacker: self.ID,
		Defender: hit,
		Bonus:    bow.Damage,
		Verb:     "shoot",
	}))
}

func (m *shoot) resolve(e *engine.Engine, holder types.BeingID) (*engine.Bow, bool) {
	it, ok := e.Held(holder, m.bow)
	if !ok {
		return nil, false
	}
	return engine.BodyAs[*engine.Bow](it)
}
