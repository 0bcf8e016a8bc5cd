// Package ai drives non-player beings. It picks an action by weighted
// selection over the being's behavior table and answers every query inline,
// so an AI turn never suspends.
package ai

import (
	"github.com/nathoo/runecore/engine"
	"github.com/nathoo/runecore/engine/actions"
	"github.com/nathoo/runecore/engine/kont"
	"github.com/nathoo/runecore/engine/query"
	"github.com/nathoo/runecore/engine/spells"
	"github.com/nathoo/runecore/types"
)

// Behavior names understood in behavior tables.
const (
	Attack   = "attack"
	Shoot    = "shoot"
	Cast     = "cast"
	Approach = "approach"
	Wait     = "wait"
)

// defaultBehavior is used by beings whose template has no table.
var defaultBehavior = []types.BehaviorEntry{
	{Action: Attack, Weight: 3},
	{Action: Approach, Weight: 2},
}

// plan is what a being decided on its turn; the answers to the queries its
// action asks are read from it.
type plan struct {
	target types.BeingID
}

// Agent controls any number of beings of one engine.
type Agent struct {
	e     *engine.Engine
	plans map[types.BeingID]plan
}

var _ engine.Agent = (*Agent)(nil)

// New returns an AI agent for beings of e.
func New(e *engine.Engine) *Agent {
	return &Agent{e: e, plans: map[types.BeingID]plan{}}
}

// option is one feasible row of the behavior table.
type option struct {
	weight int
	action engine.Action
	plan   plan
}

// Act picks one of the feasible behaviors by weight. With nothing feasible
// the being waits.
func (a *Agent) Act(e *engine.Engine, self types.BeingID, k *kont.Cont[engine.Action]) kont.Done {
	b, ok := e.Being(self)
	if !ok {
		return k.Resume(actions.Wait{})
	}
	behavior := b.Behavior
	if len(behavior) == 0 {
		behavior = defaultBehavior
	}

	target, found := a.nearestHostile(b)
	var opts []option
	for _, entry := range behavior {
		if entry.Weight <= 0 {
			continue
		}
		if opt, ok := a.consider(b, entry.Action, target, found); ok {
			opt.weight = entry.Weight
			opts = append(opts, opt)
		}
	}
	if len(opts) == 0 {
		delete(a.plans, self)
		return k.Resume(actions.Wait{})
	}

	weights := make([]int, len(opts))
	for i, o := range opts {
		weights[i] = o.weight
	}
	chosen := opts[e.RNG.WeightedSelect(weights)]
	a.plans[self] = chosen.plan
	return k.Resume(chosen.action)
}

func (a *Agent) consider(b *engine.Being, behavior string, target *engine.Being, found bool) (option, bool) {
	e := a.e
	switch behavior {
	case Wait:
		return option{action: actions.Wait{}}, true

	case Attack:
		if !found || engine.Distance(b.Pos, target.Pos) > 1 {
			return option{}, false
		}
		dir := engine.Toward(b.Pos, target.Pos)
		p := plan{target: target.ID}
		if w, id, ok := weapon(e, b); ok && w.Windup > 0 {
			return option{action: actions.Strike{Weapon: id, Dir: dir}, plan: p}, true
		}
		return option{action: actions.Walk{Dir: dir}, plan: p}, true

	case Shoot:
		if !found {
			return option{}, false
		}
		bowID, bow, ok := engine.FirstCarried[*engine.Bow](e, b.ID, nil)
		if !ok || engine.Distance(b.Pos, target.Pos) > bow.Range {
			return option{}, false
		}
		if _, _, ok := engine.FirstCarried(e, b.ID, func(q *engine.Quiver) bool { return q.Arrows > 0 }); !ok {
			return option{}, false
		}
		if _, hit, ok := e.Grid.LineOfFire(b.Pos, target.Pos); !ok || hit != target.ID {
			return option{}, false
		}
		return option{action: actions.Shoot{Bow: bowID}, plan: plan{target: target.ID}}, true

	case Cast:
		return a.considerSpell(b, target, found)

	case Approach:
		if !found || engine.Distance(b.Pos, target.Pos) <= 1 {
			return option{}, false
		}
		dir, ok := a.stepToward(b.Pos, target.Pos)
		if !ok {
			return option{}, false
		}
		return option{action: actions.Walk{Dir: dir}, plan: plan{target: target.ID}}, true
	}
	return option{}, false
}

// considerSpell finds the first known spell worth casting now.
func (a *Agent) considerSpell(b *engine.Being, target *engine.Being, found bool) (option, bool) {
	e := a.e
	if b.HasStatus(engine.Silence) {
		return option{}, false
	}
	for _, id := range b.Spells {
		def, ok := e.Defs.Spell(id)
		if !ok || b.Mana < def.Mana {
			continue
		}
		kind, err := spells.ParseKind(def.Kind)
		if err != nil {
			continue
		}
		var p plan
		switch kind {
		case spells.Heal:
			if b.HP*2 >= b.Attributes().MaxHP {
				continue
			}
			p.target = b.ID
		case spells.Bolt:
			if !found || engine.Distance(b.Pos, target.Pos) > def.Range {
				continue
			}
			if _, hit, ok := e.Grid.LineOfFire(b.Pos, target.Pos); !ok || hit != target.ID {
				continue
			}
			p.target = target.ID
		case spells.Hex:
			if !found || target.Stunned() || engine.Distance(b.Pos, target.Pos) > def.Range {
				continue
			}
			p.target = target.ID
		case spells.Shove:
			if !found || engine.Distance(b.Pos, target.Pos) > max(def.Range, 1) {
				continue
			}
			p.target = target.ID
		default:
			continue
		}
		return option{action: actions.Incant{Spell: id}, plan: p}, true
	}
	return option{}, false
}

// nearestHostile returns the closest being hostile to b, first in slot
// order on ties.
func (a *Agent) nearestHostile(b *engine.Being) (*engine.Being, bool) {
	var best *engine.Being
	bestDist := 0
	for _, id := range a.e.Beings() {
		o, ok := a.e.Being(id)
		if !ok || !b.Hostile(o) {
			continue
		}
		if d := engine.Distance(b.Pos, o.Pos); best == nil || d < bestDist {
			best, bestDist = o, d
		}
	}
	return best, best != nil
}

// stepToward picks the passable step that brings from closest to to.
func (a *Agent) stepToward(from, to types.Coord) (types.Direction, bool) {
	best, bestDist := types.NoDirection, engine.Distance(from, to)
	if dir := engine.Toward(from, to); a.e.Grid.Passable(engine.Adjacent(from, dir)) {
		return dir, true
	}
	for _, dir := range types.Directions {
		c := engine.Adjacent(from, dir)
		if !a.e.Grid.Passable(c) {
			continue
		}
		if d := engine.Distance(c, to); d < bestDist {
			best, bestDist = dir, d
		}
	}
	return best, best != types.NoDirection
}

func weapon(e *engine.Engine, b *engine.Being) (*engine.Weapon, types.ItemID, bool) {
	for _, id := range b.Equipped() {
		if it, ok := e.Item(id); ok {
			if w, ok := engine.BodyAs[*engine.Weapon](it); ok {
				return w, id, true
			}
		}
	}
	return nil, types.ItemID{}, false
}

// target returns the being asker planned to act on, if it still exists.
func (a *Agent) target(asker types.BeingID) (*engine.Being, bool) {
	p, ok := a.plans[asker]
	if !ok {
		return nil, false
	}
	return a.e.Being(p.target)
}

func (a *Agent) QueryBeing(q query.Being, k *kont.Cont[query.Answer[types.BeingID]]) kont.Done {
	t, ok := a.target(q.Asker)
	if !ok || (q.Filter != nil && !q.Filter(t.ID)) {
		return k.Resume(query.None[types.BeingID]())
	}
	return k.Resume(query.Some(t.ID))
}

func (a *Agent) QueryItem(q query.Item, k *kont.Cont[query.Answer[types.ItemID]]) kont.Done {
	b, ok := a.e.Being(q.Asker)
	if !ok {
		return k.Resume(query.None[types.ItemID]())
	}
	for _, id := range b.Inventory {
		if q.Filter == nil || q.Filter(id) {
			return k.Resume(query.Some(id))
		}
	}
	return k.Resume(query.None[types.ItemID]())
}

// QueryDirection points at the planned target, which is also the way a
// shove pushes it.
func (a *Agent) QueryDirection(q query.Direction, k *kont.Cont[query.Answer[types.Direction]]) kont.Done {
	self, ok := a.e.Being(q.Asker)
	t, found := a.target(q.Asker)
	if !ok || !found {
		return k.Resume(query.None[types.Direction]())
	}
	return k.Resume(query.Some(engine.Toward(self.Pos, t.Pos)))
}

func (a *Agent) QueryMagnitude(q query.Magnitude, k *kont.Cont[query.Answer[int]]) kont.Done {
	return k.Resume(query.Some(q.Clamp(q.Default)))
}

func (a *Agent) QueryTile(q query.Tile, k *kont.Cont[query.Answer[types.Coord]]) kont.Done {
	t, ok := a.target(q.Asker)
	if !ok || !q.Accepts(t.Pos) {
		return k.Resume(query.None[types.Coord]())
	}
	return k.Resume(query.Some(t.Pos))
}

func (a *Agent) QueryCount(q query.Count, k *kont.Cont[query.Answer[int]]) kont.Done {
	return k.Resume(query.Some(max(q.Max, 1)))
}

// QueryVector never blinks: the AI has no use for it.
func (a *Agent) QueryVector(_ query.Vector, k *kont.Cont[query.Answer[types.Vector]]) kont.Done {
	return k.Resume(query.None[types.Vector]())
}

func (a *Agent) SendMessage(_ query.Message, k *kont.Cont[kont.Unit]) kont.Done {
	return k.Resume(kont.Unit{})
}

func (a *Agent) Incant(_ query.Incantation, k *kont.Cont[kont.Unit]) kont.Done {
	return k.Resume(kont.Unit{})
}
