// Package actions is the catalog of things a being can decide to do. Every
// action that needs an answer from its agent is written as an
// engine.Machine so it can suspend on a human and run straight through for
// an AI.
package actions

import (
	"fmt"

	"github.com/nathoo/runecore/engine"
	"github.com/nathoo/runecore/engine/kont"
	"github.com/nathoo/runecore/engine/query"
	"github.com/nathoo/runecore/types"
)

// Wait spends a turn doing nothing.
type Wait struct{}

func (Wait) Name() string { return "wait" }

func (Wait) Perform(_ *engine.Engine, _ types.BeingID, k *kont.Cont[engine.Outcome]) kont.Done {
	return k.Resume(engine.Success)
}

// Walk steps one tile. With no Dir it asks which way. Walking into a
// hostile being attacks it.
type Walk struct {
	Dir types.Direction
}

func (Walk) Name() string { return "walk" }

func (a Walk) Perform(e *engine.Engine, actor types.BeingID, k *kont.Cont[engine.Outcome]) kont.Done {
	return engine.Run(e, actor, &walk{dir: a.Dir}, k)
}

type walk struct {
	dir types.Direction
}

func (m *walk) Name() string { return "walk" }

func (m *walk) Start(e *engine.Engine, self *engine.Being) engine.Step {
	if m.dir == types.NoDirection {
		return engine.Ask(query.Direction{Asker: self.ID, Prompt: "Walk which way?"})
	}
	return m.step(e, self)
}

func (m *walk) Resume(e *engine.Engine, self *engine.Being, r query.Reply) engine.Step {
	if !r.OK || r.Dir == types.NoDirection {
		return engine.Finish(engine.Aborted)
	}
	m.dir = r.Dir
	return m.step(e, self)
}

func (m *walk) step(e *engine.Engine, self *engine.Being) engine.Step {
	to := engine.Adjacent(self.Pos, m.dir)
	if id, ok := e.Grid.BeingAt(to); ok {
		if other, ok := e.Being(id); ok {
			if self.Hostile(other) {
				return engine.Finish(e.Attack(engine.Blow{
					Attacker: self.ID,
					Defender: id,
					Bonus:    wielded(e, self),
				}))
			}
			return engine.Report(info(fmt.Sprintf("The %s is in the way.", other.Name)), engine.Aborted)
		}
	}
	if !e.MoveTo(self.ID, to) {
		return engine.Report(info("Something blocks your way."), engine.Aborted)
	}
	return engine.Finish(engine.Success)
}

// wielded returns the damage of the first weapon self has equipped.
func wielded(e *engine.Engine, self *engine.Being) int {
	for _, id := range self.Equipped() {
		if it, ok := e.Item(id); ok {
			if w, ok := engine.BodyAs[*engine.Weapon](it); ok {
				return w.Damage
			}
		}
	}
	return 0
}

func info(text string) query.Message {
	return query.Message{Kind: query.Info, Text: text}
}

func gone(text string) query.Message {
	return query.Message{Kind: query.TargetMissing, Text: text}
}
