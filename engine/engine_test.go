package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/runecore/engine/kont"
	"github.com/nathoo/runecore/engine/query"
	"github.com/nathoo/runecore/types"
)

func TestManaCost_NotEnoughScenario(t *testing.T) {
	e := newTestEngine(t)
	agent := &scripted{}
	hero := spawn(t, e, "hero", 1, 1, agent)
	mustBeing(t, e, hero).Mana = 5

	var p tally
	d := CheckAndIncur(ManaCost{Amount: 10}, e, hero, p.cont())

	assert.True(t, d.Valid())
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, Aborted, p.last)
	assert.Equal(t, 5, mustBeing(t, e, hero).Mana)
	require.Len(t, agent.messages, 1)
	msg := agent.messages[0]
	assert.Equal(t, query.NotEnough, msg.Kind)
	assert.Equal(t, "mana", msg.Resource)
	assert.Equal(t, 5, msg.Amount)
	assert.Equal(t, hero, msg.To)
}

func TestManaCost_CheckHasNoSideEffects(t *testing.T) {
	e := newTestEngine(t)
	hero := spawn(t, e, "hero", 1, 1, &scripted{})

	var p tally
	ManaCost{Amount: 4}.Check(e, hero, p.cont())

	assert.Equal(t, Success, p.last)
	assert.Equal(t, 10, mustBeing(t, e, hero).Mana)
}

func TestCheckAndIncur_TwiceDeductsTwice(t *testing.T) {
	e := newTestEngine(t)
	hero := spawn(t, e, "hero", 1, 1, &scripted{})

	var p1, p2 tally
	CheckAndIncur(ManaCost{Amount: 3}, e, hero, p1.cont())
	CheckAndIncur(ManaCost{Amount: 3}, e, hero, p2.cont())

	assert.Equal(t, Success, p1.last)
	assert.Equal(t, Success, p2.last)
	assert.Equal(t, 4, mustBeing(t, e, hero).Mana)
}

func TestChargeCost_DrawsFromStone(t *testing.T) {
	e := newTestEngine(t)
	hero := spawn(t, e, "hero", 1, 1, &scripted{})
	stone := give(t, e, hero, "gatestone")

	var p tally
	CheckAndIncur(ChargeCost{Stone: stone, Amount: 2}, e, hero, p.cont())

	assert.Equal(t, Success, p.last)
	g, ok := heldBody[*Gatestone](e, hero, stone)
	require.True(t, ok)
	assert.Equal(t, 1, g.Charge)
	assert.Equal(t, 10, mustBeing(t, e, hero).Mana, "charge cost must not touch mana")
}

func TestChargeCost_Shortfall(t *testing.T) {
	e := newTestEngine(t)
	agent := &scripted{}
	hero := spawn(t, e, "hero", 1, 1, agent)
	stone := give(t, e, hero, "gatestone")

	var p tally
	CheckAndIncur(ChargeCost{Stone: stone, Amount: 7}, e, hero, p.cont())

	assert.Equal(t, Aborted, p.last)
	assert.Equal(t, "charge", agent.lastMessage().Resource)
	assert.Equal(t, 4, agent.lastMessage().Amount)
	g, _ := heldBody[*Gatestone](e, hero, stone)
	assert.Equal(t, 3, g.Charge)
}

func TestChargeCost_MissingStone(t *testing.T) {
	e := newTestEngine(t)
	agent := &scripted{}
	hero := spawn(t, e, "hero", 1, 1, agent)
	stone := give(t, e, hero, "gatestone")
	require.True(t, e.PlaceItem(stone, types.Coord{X: 1, Y: 1}))

	var p tally
	CheckAndIncur(ChargeCost{Stone: stone, Amount: 1}, e, hero, p.cont())

	assert.Equal(t, 1, p.calls)
	assert.Equal(t, Aborted, p.last)
	assert.Equal(t, query.TargetMissing, agent.lastMessage().Kind)
}

func TestChain_ChecksAllBeforeIncurring(t *testing.T) {
	e := newTestEngine(t)
	agent := &scripted{}
	hero := spawn(t, e, "hero", 1, 1, agent)
	stone := give(t, e, hero, "gatestone")

	var p tally
	cost := Chain{ManaCost{Amount: 2}, ChargeCost{Stone: stone, Amount: 5}}
	CheckAndIncur(cost, e, hero, p.cont())

	assert.Equal(t, Aborted, p.last)
	assert.Equal(t, 10, mustBeing(t, e, hero).Mana, "mana must not be spent when a later cost fails")

	var ok tally
	CheckAndIncur(Chain{ManaCost{Amount: 2}, ChargeCost{Stone: stone, Amount: 1}}, e, hero, ok.cont())
	assert.Equal(t, Success, ok.last)
	assert.Equal(t, 8, mustBeing(t, e, hero).Mana)
}

func TestCost_AsyncAgentExactlyOnce(t *testing.T) {
	e := newTestEngine(t)
	agent := &scripted{async: true}
	hero := spawn(t, e, "hero", 1, 1, agent)
	mustBeing(t, e, hero).Mana = 1

	var p tally
	d := CheckAndIncur(ManaCost{Amount: 3}, e, hero, p.cont())

	assert.True(t, d.Parked())
	assert.Equal(t, 0, p.calls, "continuation must wait for the message to be acknowledged")
	agent.flush()
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, Aborted, p.last)
}

func TestRun_ShootCancelledConsumesNoAmmo(t *testing.T) {
	for _, async := range []bool{false, true} {
		e := newTestEngine(t)
		agent := &scripted{async: async}
		hero := spawn(t, e, "hero", 1, 1, agent)
		quiver := give(t, e, hero, "quiver")

		var p tally
		Run(e, hero, &volley{quiver: quiver}, p.cont())
		agent.flush()

		assert.Equal(t, 1, p.calls, "async=%v", async)
		assert.Equal(t, Aborted, p.last, "async=%v", async)
		q, _ := heldBody[*Quiver](e, hero, quiver)
		assert.Equal(t, 10, q.Arrows, "async=%v", async)
	}
}

func TestRun_ShootPaysOnce(t *testing.T) {
	for _, async := range []bool{false, true} {
		e := newTestEngine(t)
		agent := &scripted{async: async, tiles: []query.Answer[types.Coord]{query.Some(types.Coord{X: 4, Y: 1})}}
		hero := spawn(t, e, "hero", 1, 1, agent)
		quiver := give(t, e, hero, "quiver")

		var p tally
		Run(e, hero, &volley{quiver: quiver}, p.cont())
		agent.flush()

		assert.Equal(t, 1, p.calls, "async=%v", async)
		assert.Equal(t, Success, p.last, "async=%v", async)
		q, _ := heldBody[*Quiver](e, hero, quiver)
		assert.Equal(t, 9, q.Arrows, "async=%v", async)
	}
}

func TestRun_DeepSyncChainDoesNotRecurse(t *testing.T) {
	e := newTestEngine(t)
	hero := spawn(t, e, "hero", 1, 1, &always{})

	var p tally
	d := Run(e, hero, &chain{n: 100000}, p.cont())

	assert.True(t, d.Valid())
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, Success, p.last)
}

func TestRun_ActorDiesWhileSuspended(t *testing.T) {
	e := newTestEngine(t)
	agent := &scripted{async: true, tiles: []query.Answer[types.Coord]{query.Some(types.Coord{X: 3, Y: 1})}}
	hero := spawn(t, e, "hero", 1, 1, agent)
	quiver := give(t, e, hero, "quiver")

	var p tally
	Run(e, hero, &volley{quiver: quiver}, p.cont())
	require.Len(t, agent.pending, 1)

	e.Kill(hero)
	agent.flush()

	assert.Equal(t, 0, p.calls, "a dead actor's continuation must not be resumed")
}

func TestRun_InvalidStepPanics(t *testing.T) {
	e := newTestEngine(t)
	hero := spawn(t, e, "hero", 1, 1, &scripted{})

	var p tally
	assert.Panics(t, func() {
		Run(e, hero, &broken{}, p.cont())
	})
}

type broken struct{}

func (broken) Name() string { return "broken" }

func (broken) Start(*Engine, *Being) Step { return Step{} }

func (broken) Resume(*Engine, *Being, query.Reply) Step { return Step{} }

func TestDelayed_FiresOnExactTick(t *testing.T) {
	for _, d := range []int{1, 2, 5} {
		e := newTestEngine(t)
		hero := spawn(t, e, "hero", 1, 1, &scripted{})

		performed := 0
		var p tally
		e.AddDelayedAction(hero, d, recorder{name: "wind", performed: &performed, outcome: Success}, p.cont())

		for i := 0; i < d-1; i++ {
			e.Tick()
		}
		assert.Equal(t, 0, performed, "d=%d: fired before its tick", d)
		assert.Equal(t, 0, p.calls)

		e.Tick()
		assert.Equal(t, 1, performed, "d=%d", d)
		assert.Equal(t, 1, p.calls, "d=%d", d)
		assert.Equal(t, Success, p.last)
		assert.Empty(t, e.PendingDelayed(hero))

		e.Tick()
		assert.Equal(t, 1, performed, "d=%d: fired twice", d)
	}
}

func TestDelayed_NonPositiveDelayIsOneTick(t *testing.T) {
	e := newTestEngine(t)
	hero := spawn(t, e, "hero", 1, 1, &scripted{})

	performed := 0
	var p tally
	e.AddDelayedAction(hero, 0, recorder{name: "now", performed: &performed, outcome: Success}, p.cont())
	assert.Equal(t, []PendingAction{{Name: "now", Remaining: 1}}, e.PendingDelayed(hero))

	e.Tick()
	assert.Equal(t, 1, performed)
}

func TestDelayed_StunCancels(t *testing.T) {
	e := newTestEngine(t)
	agent := &scripted{}
	hero := spawn(t, e, "hero", 1, 1, agent)

	performed := 0
	var p tally
	e.AddDelayedAction(hero, 3, recorder{name: "incant", performed: &performed, outcome: Success}, p.cont())
	e.Tick()

	require.True(t, e.Inflict(hero, Status{Kind: Stun, Ticks: 2}))

	assert.Equal(t, 1, p.calls)
	assert.Equal(t, Cancelled, p.last)
	assert.Empty(t, e.PendingDelayed(hero))
	assert.Equal(t, query.Interrupted, agent.lastMessage().Kind)

	for i := 0; i < 5; i++ {
		e.Tick()
	}
	assert.Equal(t, 0, performed)
	assert.Equal(t, 1, p.calls)
}

func TestDelayed_DeathCancelsWithoutTouchingTheBeing(t *testing.T) {
	e := newTestEngine(t)
	hero := spawn(t, e, "hero", 1, 1, &scripted{})

	performed := 0
	var sawBeing bool
	k := kont.Once(func(o Outcome) kont.Done {
		assert.Equal(t, Cancelled, o)
		_, sawBeing = e.Being(hero)
		return kont.End()
	})
	e.AddDelayedAction(hero, 4, recorder{name: "strike", performed: &performed, outcome: Success}, k)

	e.Kill(hero)

	assert.True(t, k.Used())
	assert.False(t, sawBeing, "the record must be cancelled after the being is gone")
	e.Tick()
	assert.Equal(t, 0, performed)
}

func TestDelayed_DeadActorCancelsImmediately(t *testing.T) {
	e := newTestEngine(t)
	hero := spawn(t, e, "hero", 1, 1, &scripted{})
	e.Kill(hero)

	var p tally
	performed := 0
	d := e.AddDelayedAction(hero, 2, recorder{name: "x", performed: &performed}, p.cont())
	assert.True(t, d.Valid())
	assert.Equal(t, Cancelled, p.last)
}

func TestScheduleStep_RecordsOutcome(t *testing.T) {
	e := newTestEngine(t)
	hero := spawn(t, e, "hero", 1, 1, &scripted{})

	var resolved []string
	e.Subscribe("delayed_resolved", func(ev types.Event) {
		resolved = append(resolved, ev.Data["outcome"].(string))
	})

	performed := 0
	var p tally
	Run(e, hero, &scheduler{delay: 2, action: recorder{name: "cast", performed: &performed, outcome: Failure}}, p.cont())

	assert.Equal(t, Success, p.last, "scheduling finishes the action straight away")
	e.Tick()
	e.Tick()
	assert.Equal(t, 1, performed)
	assert.Equal(t, []string{"failure"}, resolved)
}

type scheduler struct {
	delay  int
	action Action
}

func (m *scheduler) Name() string { return "scheduler" }

func (m *scheduler) Start(*Engine, *Being) Step { return Schedule(m.delay, m.action) }

func (m *scheduler) Resume(*Engine, *Being, query.Reply) Step { return Finish(Success) }

func TestDriver_ChargesBusyTimeOnlyForConsumedTurns(t *testing.T) {
	e := newTestEngine(t)
	performed := 0
	agent := &scripted{actions: []Action{
		recorder{name: "fumble", performed: &performed, outcome: Aborted},
		recorder{name: "swing", performed: &performed, outcome: Failure},
	}}
	hero := spawn(t, e, "hero", 1, 1, agent)

	require.True(t, e.Update())
	assert.Equal(t, 0, mustBeing(t, e, hero).Busy, "aborted turn must not cost time")
	assert.Equal(t, 0, e.Now())

	require.True(t, e.Update())
	assert.Equal(t, e.Tuning.TurnTicks, mustBeing(t, e, hero).Busy)
	assert.Equal(t, 2, performed)
	assert.Equal(t, Idle, mustBeing(t, e, hero).Turn)
}

func TestDriver_SuspendedTurnBlocksWorld(t *testing.T) {
	e := newTestEngine(t)
	agent := &scripted{async: true, actions: []Action{Pass{}}}
	hero := spawn(t, e, "hero", 1, 1, agent)

	ticks := e.Run(50)
	assert.Equal(t, 0, ticks)
	assert.True(t, e.Blocked())
	assert.Equal(t, AwaitingDecision, mustBeing(t, e, hero).Turn)
	assert.False(t, e.Update())

	agent.flush()
	assert.False(t, e.Blocked())
	assert.Equal(t, e.Tuning.TurnTicks, mustBeing(t, e, hero).Busy)

	ticks = e.Run(3)
	assert.Equal(t, 3, ticks)
	assert.Equal(t, e.Tuning.TurnTicks-3, mustBeing(t, e, hero).Busy)
}

func TestDriver_StunnedBeingsAreSkipped(t *testing.T) {
	e := newTestEngine(t)
	performed := 0
	agent := &scripted{actions: []Action{recorder{name: "act", performed: &performed, outcome: Success}}}
	hero := spawn(t, e, "hero", 1, 1, agent)
	e.Inflict(hero, Status{Kind: Stun, Ticks: 2})

	e.Update()
	assert.Equal(t, 0, performed)
	assert.Equal(t, 1, e.Now())

	e.Run(2)
	assert.Equal(t, 1, performed)
}

func TestDriver_SpeedShortensTurns(t *testing.T) {
	e := newTestEngine(t)
	hero := spawn(t, e, "hero", 1, 1, &scripted{})
	e.Inflict(hero, Status{Kind: Haste, Ticks: 50, Power: 4})

	assert.Equal(t, e.Tuning.TurnTicks-4, e.TurnTicks(hero, Pass{}))
}

func TestDriver_DeathDuringPendingTurn(t *testing.T) {
	e := newTestEngine(t)
	agent := &scripted{async: true, actions: []Action{Pass{}}}
	hero := spawn(t, e, "hero", 1, 1, agent)

	e.Update()
	require.True(t, e.Blocked())
	e.Kill(hero)
	assert.False(t, e.Blocked())

	agent.flush()
	assert.False(t, e.Blocked())
	_, ok := e.Being(hero)
	assert.False(t, ok)
}

func TestDriver_InlineAborterIsThrottled(t *testing.T) {
	e := newTestEngine(t)
	performed := 0
	var actions []Action
	for i := 0; i < 50; i++ {
		actions = append(actions, recorder{name: "nope", performed: &performed, outcome: Aborted})
	}
	spawn(t, e, "hero", 1, 1, &scripted{actions: actions})

	ticks := e.Run(3)
	assert.Equal(t, 3, ticks)
	assert.LessOrEqual(t, performed, 3*maxAborts+maxAborts)
}

func TestKill_DropsInventoryAndFreesTile(t *testing.T) {
	e := newTestEngine(t)
	goblin := spawn(t, e, "goblin", 3, 3, nil)
	ring := give(t, e, goblin, "ring")

	e.Kill(goblin)

	_, ok := e.Being(goblin)
	assert.False(t, ok)
	assert.True(t, e.Grid.Passable(types.Coord{X: 3, Y: 3}))
	assert.Equal(t, []types.ItemID{ring}, e.Grid.ItemsAt(types.Coord{X: 3, Y: 3}))

	other := spawn(t, e, "goblin", 3, 3, nil)
	assert.Equal(t, goblin.Slot, other.Slot)
	assert.NotEqual(t, goblin.Gen, other.Gen)
}

func TestPassiveAgent_WaitsAndCancels(t *testing.T) {
	e := newTestEngine(t)
	goblin := spawn(t, e, "goblin", 2, 2, nil)

	e.Update()
	assert.Equal(t, e.Tuning.TurnTicks, mustBeing(t, e, goblin).Busy)

	var p tally
	Drop{}.Perform(e, goblin, p.cont())
	assert.Equal(t, Aborted, p.last)
}

func TestIncantTicks_DefaultFormula(t *testing.T) {
	e := newTestEngine(t)
	hero := spawn(t, e, "hero", 1, 1, &scripted{})
	mustBeing(t, e, hero).Base.Speech = 10

	assert.Equal(t, 5, e.IncantTicks(hero, types.SpellDef{ID: "bolt", Incant: 10}))
	assert.Equal(t, 1, e.IncantTicks(hero, types.SpellDef{ID: "flash", Incant: 1}))
}

// stalled returns without resuming or parking its continuation.
type stalled struct{}

func (stalled) Name() string { return "stalled" }

func (stalled) Perform(*Engine, types.BeingID, *kont.Cont[Outcome]) kont.Done { return kont.End() }

// mute never answers Act and never parks it either.
type mute struct {
	scripted
}

func (*mute) Act(*Engine, types.BeingID, *kont.Cont[Action]) kont.Done { return kont.End() }

// droppedPanic runs f and checks it panics with a dropped continuation
// named name.
func droppedPanic(t *testing.T, name string, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		ce, ok := r.(*kont.ContractError)
		require.True(t, ok, "expected a contract violation, got %v", r)
		assert.ErrorIs(t, ce, kont.ErrDropped)
		assert.Equal(t, name, ce.Name)
	}()
	f()
}

func TestDriver_ActionForgettingItsContinuationPanics(t *testing.T) {
	e := newTestEngine(t)
	spawn(t, e, "hero", 1, 1, &scripted{actions: []Action{stalled{}}})

	droppedPanic(t, "stalled", func() { e.Run(20) })
}

func TestDriver_AgentForgettingActPanics(t *testing.T) {
	e := newTestEngine(t)
	spawn(t, e, "hero", 1, 1, &mute{})

	droppedPanic(t, "act", func() { e.Update() })
}

func TestDelayed_ActionForgettingItsContinuationPanics(t *testing.T) {
	e := newTestEngine(t)
	hero := spawn(t, e, "hero", 1, 1, &scripted{})
	var p tally
	e.AddDelayedAction(hero, 1, stalled{}, p.cont())

	droppedPanic(t, "stalled", e.Tick)
	assert.Equal(t, 0, p.calls)
}

func TestDelayed_SuspendedActionBlocksOwnerAndWorld(t *testing.T) {
	e := newTestEngine(t)
	agent := &scripted{async: true}
	hero := spawn(t, e, "hero", 1, 1, agent)
	ring := give(t, e, hero, "ring")
	agent.items = []query.Answer[types.ItemID]{query.Some(ring)}
	mustBeing(t, e, hero).Busy = 4

	var p tally
	e.AddDelayedAction(hero, 2, Drop{}, p.cont())

	ticks := e.Run(10)
	assert.Equal(t, 2, ticks, "the world stops on the tick the drop asks")
	require.Len(t, agent.asked, 1)
	assert.Equal(t, query.KindItem, agent.asked[0].Kind())
	assert.True(t, e.Blocked())
	assert.True(t, e.InFlight())
	assert.Equal(t, Performing, mustBeing(t, e, hero).Turn)
	assert.False(t, e.Update())
	assert.Equal(t, 0, p.calls)

	require.Equal(t, 1, agent.flush())
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, Success, p.last)
	assert.False(t, e.Blocked())
	assert.Equal(t, Idle, mustBeing(t, e, hero).Turn)
	assert.Equal(t, []types.ItemID{ring}, e.Grid.ItemsAt(types.Coord{X: 1, Y: 1}))
}

func TestDelayed_WaitsWhileAnotherActionIsSuspended(t *testing.T) {
	e := newTestEngine(t)
	agent := &scripted{async: true}
	hero := spawn(t, e, "hero", 1, 1, agent)
	mustBeing(t, e, hero).Busy = 10

	var first, second tally
	e.AddDelayedAction(hero, 1, Drop{}, first.cont())
	e.AddDelayedAction(hero, 1, Drop{}, second.cont())

	e.Tick()
	require.Len(t, agent.asked, 1)
	assert.Equal(t, []PendingAction{{Name: "drop", Remaining: 1}}, e.PendingDelayed(hero))

	agent.flush()
	assert.Equal(t, Aborted, first.last)
	assert.Equal(t, 0, second.calls)

	e.Tick()
	assert.Len(t, agent.asked, 2)
	agent.flush()
	assert.Equal(t, 1, second.calls)
	assert.Equal(t, Aborted, second.last)
	assert.Empty(t, e.PendingDelayed(hero))
}
