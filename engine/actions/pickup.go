package actions

import (
	"slices"

	"github.com/nathoo/runecore/engine"
	"github.com/nathoo/runecore/engine/kont"
	"github.com/nathoo/runecore/engine/query"
	"github.com/nathoo/runecore/types"
)

// PickUp takes an item lying on the actor's tile. With no Item set it
// takes the only one there, or asks which when there are several.
type PickUp struct {
	Item types.ItemID
}

func (PickUp) Name() string { return "pickup" }

func (a PickUp) Perform(e *engine.Engine, actor types.BeingID, k *kont.Cont[engine.Outcome]) kont.Done {
	return engine.Run(e, actor, &pickUp{item: a.Item}, k)
}

type pickUp struct {
	item types.ItemID
}

func (m *pickUp) Name() string { return "pickup" }

func (m *pickUp) Start(e *engine.Engine, self *engine.Being) engine.Step {
	if m.item != (types.ItemID{}) {
		return m.take(e, self)
	}
	here := e.Grid.ItemsAt(self.Pos)
	switch len(here) {
	case 0:
		return engine.Report(info("There is nothing here."), engine.Aborted)
	case 1:
		m.item = here[0]
		return m.take(e, self)
	}
	return engine.Ask(query.Item{
		Asker:  self.ID,
		Prompt: "Pick up what?",
		Filter: underfoot(e, self.ID),
	})
}

func (m *pickUp) Resume(e *engine.Engine, self *engine.Being, r query.Reply) engine.Step {
	if !r.OK {
		return engine.Finish(engine.Aborted)
	}
	m.item = r.Item
	return m.take(e, self)
}

func (m *pickUp) take(e *engine.Engine, self *engine.Being) engine.Step {
	if !slices.Contains(e.Grid.ItemsAt(self.Pos), m.item) {
		return engine.Report(gone("That is not here."), engine.Aborted)
	}
	e.GiveItem(self.ID, m.item)
	return engine.Finish(engine.Success)
}

// underfoot accepts items on the tile where holder stands when asked.
func underfoot(e *engine.Engine, holder types.BeingID) func(types.ItemID) bool {
	return func(id types.ItemID) bool {
		b, ok := e.Being(holder)
		return ok && slices.Contains(e.Grid.ItemsAt(b.Pos), id)
	}
}
