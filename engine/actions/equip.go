package actions

import (
	"fmt"

	"github.com/nathoo/runecore/engine"
	"github.com/nathoo/runecore/engine/kont"
	"github.com/nathoo/runecore/engine/query"
	"github.com/nathoo/runecore/types"
)

// Equip puts on or wields an item the actor carries. The item is worn only
// after the equip delay; being stunned meanwhile drops the attempt.
type Equip struct {
	Item types.ItemID
}

func (Equip) Name() string { return "equip" }

func (a Equip) Perform(e *engine.Engine, actor types.BeingID, k *kont.Cont[engine.Outcome]) kont.Done {
	return engine.Run(e, actor, &dress{item: a.Item, on: true}, k)
}

func (Equip) Ticks(e *engine.Engine, _ types.BeingID) int { return e.Tuning.EquipTicks }

// Unequip takes off a worn item after the equip delay.
type Unequip struct {
	Item types.ItemID
}

func (Unequip) Name() string { return "unequip" }

func (a Unequip) Perform(e *engine.Engine, actor types.BeingID, k *kont.Cont[engine.Outcome]) kont.Done {
	return engine.Run(e, actor, &dress{item: a.Item}, k)
}

func (Unequip) Ticks(e *engine.Engine, _ types.BeingID) int { return e.Tuning.EquipTicks }

// dress runs both Equip and Unequip; on picks which.
type dress struct {
	item      types.ItemID
	on        bool
	scheduled bool
}

func (m *dress) Name() string {
	if m.on {
		return "equip"
	}
	return "unequip"
}

func (m *dress) Start(e *engine.Engine, self *engine.Being) engine.Step {
	if m.item == (types.ItemID{}) {
		prompt := "Take off what?"
		if m.on {
			prompt = "Equip what?"
		}
		return engine.Ask(query.Item{Asker: self.ID, Prompt: prompt, Filter: m.filter(e, self.ID)})
	}
	return m.chosen(e, self)
}

func (m *dress) Resume(e *engine.Engine, self *engine.Being, r query.Reply) engine.Step {
	if !r.OK {
		return engine.Finish(engine.Aborted)
	}
	if m.scheduled {
		return engine.Finish(engine.Success)
	}
	m.item = r.Item
	return m.chosen(e, self)
}

func (m *dress) filter(e *engine.Engine, holder types.BeingID) func(types.ItemID) bool {
	on := m.on
	return func(id types.ItemID) bool {
		it, ok := e.Held(holder, id)
		if !ok || it.Slot == "" {
			return false
		}
		b, ok := e.Being(holder)
		return ok && (b.EquippedOn(id) == nil) == on
	}
}

func (m *dress) chosen(e *engine.Engine, self *engine.Being) engine.Step {
	it, ok := e.Held(self.ID, m.item)
	if !ok {
		return engine.Report(gone("You are not carrying that."), engine.Aborted)
	}
	worn := self.EquippedOn(m.item) != nil
	switch {
	case m.on && it.Slot == "":
		return engine.Report(info(fmt.Sprintf("You cannot equip the %s.", it.Name)), engine.Aborted)
	case m.on && worn:
		return engine.Report(info(fmt.Sprintf("The %s is already equipped.", it.Name)), engine.Aborted)
	case m.on && self.FreePart(it.Slot) == nil:
		return engine.Report(info(fmt.Sprintf("You have no free %s.", it.Slot)), engine.Aborted)
	case !m.on && !worn:
		return engine.Report(info(fmt.Sprintf("The %s is not equipped.", it.Name)), engine.Aborted)
	}
	m.scheduled = true
	return engine.Schedule(e.Tuning.EquipTicks, &don{item: m.item, on: m.on})
}

// don is the delayed half of Equip and Unequip.
type don struct {
	item types.ItemID
	on   bool
}

func (d *don) Name() string {
	if d.on {
		return "equip"
	}
	return "unequip"
}

func (d *don) Perform(e *engine.Engine, actor types.BeingID, k *kont.Cont[engine.Outcome]) kont.Done {
	var done bool
	if d.on {
		done = e.Wear(actor, d.item)
	} else {
		done = e.TakeOff(actor, d.item)
	}
	if !done {
		e.Notify(actor, info("You fumble with it and give up."))
		return k.Resume(engine.Failure)
	}
	return k.Resume(engine.Success)
}
