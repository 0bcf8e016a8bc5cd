package actions

import (
	"fmt"

	"github.com/nathoo/runecore/engine"
	"github.com/nathoo/runecore/engine/kont"
	"github.com/nathoo/runecore/engine/query"
	"github.com/nathoo/runecore/types"
)

// Jab is a quick blow at an adjacent being for half the weapon's damage.
// A zero Weapon jabs bare-handed.
type Jab struct {
	Weapon types.ItemID
	Dir    types.Direction
}

func (Jab) Name() string { return "jab" }

func (a Jab) Perform(e *engine.Engine, actor types.BeingID, k *kont.Cont[engine.Outcome]) kont.Done {
	return engine.Run(e, actor, &jab{weapon: a.Weapon, dir: a.Dir}, k)
}

type jab struct {
	weapon types.ItemID
	dir    types.Direction
}

func (m *jab) Name() string { return "jab" }

func (m *jab) Start(e *engine.Engine, self *engine.Being) engine.Step {
	if m.dir == types.NoDirection {
		return engine.Ask(query.Direction{Asker: self.ID, Prompt: "Jab which way?"})
	}
	return m.hit(e, self)
}

func (m *jab) Resume(e *engine.Engine, self *engine.Being, r query.Reply) engine.Step {
	if !r.OK || r.Dir == types.NoDirection {
		return engine.Finish(engine.Aborted)
	}
	m.dir = r.Dir
	return m.hit(e, self)
}

func (m *jab) hit(e *engine.Engine, self *engine.Being) engine.Step {
	damage, ok := weaponDamage(e, self.ID, m.weapon)
	if !ok {
		return engine.Report(gone("You are not holding that weapon."), engine.Aborted)
	}
	target, ok := e.Grid.BeingAt(engine.Adjacent(self.Pos, m.dir))
	if !ok {
		return engine.Report(info("There is nothing there to jab."), engine.Aborted)
	}
	return engine.Finish(e.Attack(engine.Blow{
		Attacker: self.ID,
		Defender: target,
		Bonus:    damage / 2,
		Verb:     "jab",
	}))
}

// Strike winds up a full blow at an adjacent being. The blow lands after
// the weapon's wind-up and hits whoever is then standing where the target
// was aimed at, if anyone.
type Strike struct {
	Weapon types.ItemID
	Dir    types.Direction
}

func (Strike) Name() string { return "strike" }

func (a Strike) Perform(e *engine.Engine, actor types.BeingID, k *kont.Cont[engine.Outcome]) kont.Done {
	return engine.Run(e, actor, &strike{weapon: a.Weapon, dir: a.Dir}, k)
}

// Ticks keeps the striker busy for the wind-up.
func (a Strike) Ticks(e *engine.Engine, actor types.BeingID) int {
	return windup(e, actor, a.Weapon)
}

type strike struct {
	weapon types.ItemID
	dir    types.Direction
	phase  int
}

const (
	aiming = iota
	windingUp
	landing
)

func (m *strike) Name() string { return "strike" }

func (m *strike) Start(e *engine.Engine, self *engine.Being) engine.Step {
	if m.dir == types.NoDirection {
		return engine.Ask(query.Direction{Asker: self.ID, Prompt: "Strike which way?"})
	}
	return m.windUp(e, self)
}

func (m *strike) Resume(e *engine.Engine, self *engine.Being, r query.Reply) engine.Step {
	if !r.OK {
		return engine.Finish(engine.Aborted)
	}
	switch m.phase {
	case aiming:
		if r.Dir == types.NoDirection {
			return engine.Finish(engine.Aborted)
		}
		m.dir = r.Dir
		return m.windUp(e, self)
	case windingUp:
		m.phase = landing
		return engine.Schedule(windup(e, self.ID, m.weapon), &blow{weapon: m.weapon, dir: m.dir})
	}
	return engine.Finish(engine.Success)
}

func (m *strike) windUp(e *engine.Engine, self *engine.Being) engine.Step {
	if _, ok := weaponDamage(e, self.ID, m.weapon); !ok {
		return engine.Report(gone("You are not holding that weapon."), engine.Aborted)
	}
	target, ok := e.Grid.BeingAt(engine.Adjacent(self.Pos, m.dir))
	if !ok {
		return engine.Report(info("There is nothing there to strike."), engine.Aborted)
	}
	name := "foe"
	if b, ok := e.Being(target); ok {
		name = b.Name
	}
	m.phase = windingUp
	return engine.Say(info(fmt.Sprintf("You wind up a strike at the %s.", name)))
}

// blow is the delayed half of a Strike.
type blow struct {
	weapon types.ItemID
	dir    types.Direction
}

func (*blow) Name() string { return "strike" }

func (a *blow) Perform(e *engine.Engine, actor types.BeingID, k *kont.Cont[engine.Outcome]) kont.Done {
	self, ok := e.Being(actor)
	if !ok {
		return k.Resume(engine.Cancelled)
	}
	damage, ok := weaponDamage(e, actor, a.weapon)
	if !ok {
		e.Notify(actor, gone("Your weapon is gone."))
		return k.Resume(engine.Failure)
	}
	target, ok := e.Grid.BeingAt(engine.Adjacent(self.Pos, a.dir))
	if !ok {
		e.Notify(actor, query.Message{Kind: query.Miss, Text: "Your strike hits empty air."})
		return k.Resume(engine.Failure)
	}
	return k.Resume(e.Attack(engine.Blow{
		Attacker: actor,
		Defender: target,
		Bonus:    damage,
		Verb:     "strike",
	}))
}

// weaponDamage re-resolves weapon in holder's hands. The zero weapon is
// bare hands.
func weaponDamage(e *engine.Engine, holder types.BeingID, weapon types.ItemID) (int, bool) {
	if weapon == (types.ItemID{}) {
		return 0, true
	}
	it, ok := e.Held(holder, weapon)
	if !ok {
		return 0, false
	}
	w, ok := engine.BodyAs[*engine.Weapon](it)
	if !ok {
		return 0, false
	}
	return w.Damage, true
}

func windup(e *engine.Engine, holder types.BeingID, weapon types.ItemID) int {
	if it, ok := e.Held(holder, weapon); ok {
		if w, ok := engine.BodyAs[*engine.Weapon](it); ok && w.Windup > 0 {
			return w.Windup
		}
	}
	return e.Tuning.TurnTicks
}
