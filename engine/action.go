package engine

import (
	"fmt"

	"github.com/nathoo/runecore/engine/events"
	"github.com/nathoo/runecore/engine/kont"
	"github.com/nathoo/runecore/engine/query"
	"github.com/nathoo/runecore/types"
)

// Action is one decision a being carries out. Perform must consume k on
// every path, either inline or after any number of suspensions. Actions are
// built fresh for each decision and performed at most once.
type Action interface {
	Name() string
	Perform(e *Engine, actor types.BeingID, k *kont.Cont[Outcome]) kont.Done
}

// Timed is implemented by actions whose busy-time differs from a normal
// turn.
type Timed interface {
	Ticks(e *Engine, actor types.BeingID) int
}

// Pass does nothing and consumes the turn.
type Pass struct{}

func (Pass) Name() string { return "pass" }

func (Pass) Perform(_ *Engine, _ types.BeingID, k *kont.Cont[Outcome]) kont.Done {
	return k.Resume(Success)
}

// Machine is an action written as an explicit state machine: Start yields
// the first step and every answer to a step comes back through Resume until
// a Finish step. The being handed to Start and Resume is re-resolved from
// its ID on each call and must not be kept between calls.
type Machine interface {
	Name() string
	Start(e *Engine, self *Being) Step
	Resume(e *Engine, self *Being, r query.Reply) Step
}

type stepKind uint8

const (
	stepFinish stepKind = iota + 1
	stepReport
	stepAsk
	stepSay
	stepPay
	stepChant
	stepSchedule
)

// Step is what a machine wants done next. The zero Step is invalid.
type Step struct {
	kind    stepKind
	outcome Outcome
	query   query.Query
	message query.Message
	cost    Cost
	chant   query.Incantation
	delay   int
	action  Action
}

// Finish ends the machine with o.
func Finish(o Outcome) Step { return Step{kind: stepFinish, outcome: o} }

// Report sends m to the actor's agent and then ends the machine with o.
func Report(m query.Message, o Outcome) Step {
	return Step{kind: stepReport, message: m, outcome: o}
}

// Ask issues q to the actor's agent. The answer arrives as the next Reply.
func Ask(q query.Query) Step { return Step{kind: stepAsk, query: q} }

// Say sends m to the actor's agent. The machine resumes with query.Ack.
func Say(m query.Message) Step { return Step{kind: stepSay, message: m} }

// Pay checks and incurs c. The machine resumes with query.Ack on success; a
// failed check ends the machine with the cost's outcome.
func Pay(c Cost) Step { return Step{kind: stepPay, cost: c} }

// Chant has the actor's agent speak inc. The machine resumes with
// query.Ack.
func Chant(inc query.Incantation) Step { return Step{kind: stepChant, chant: inc} }

// Schedule attaches a as a delayed action firing after delay ticks. The
// machine resumes with query.Ack straight away.
func Schedule(delay int, a Action) Step {
	return Step{kind: stepSchedule, delay: delay, action: a}
}

// AsAction wraps a single-use machine as an Action.
func AsAction(m Machine) Action { return machineAction{m: m} }

type machineAction struct{ m Machine }

func (a machineAction) Name() string { return a.m.Name() }

func (a machineAction) Perform(e *Engine, actor types.BeingID, k *kont.Cont[Outcome]) kont.Done {
	return Run(e, actor, a.m, k)
}

// signal is what a step hands back to the runner: a reply for the machine,
// or an outcome that ends it.
type signal struct {
	reply query.Reply
	halt  Outcome
}

type runner struct {
	e     *Engine
	actor types.BeingID
	m     Machine
	k     *kont.Cont[Outcome]
}

// Run drives m for actor and resumes k with its outcome. Steps answered
// inline are looped over without growing the stack; a step that suspends
// returns control to the caller and the machine continues when the agent
// resumes it. The actor is re-resolved on every resumption and k is
// abandoned, never resumed, once the actor is gone.
func Run(e *Engine, actor types.BeingID, m Machine, k *kont.Cont[Outcome]) kont.Done {
	b, ok := e.Being(actor)
	if !ok {
		return kont.Abandon(k)
	}
	r := &runner{e: e, actor: actor, m: m, k: k}
	return r.loop(m.Start(e, b))
}

func (r *runner) loop(s Step) kont.Done {
	for {
		if s.kind == stepFinish {
			return r.k.Resume(s.outcome)
		}

		got, sync, d := kont.Capture(r.m.Name(), func(k *kont.Cont[signal]) kont.Done {
			return r.issue(s, k)
		}, r.deliver)
		if !sync {
			return d
		}

		next, ok := r.advance(got)
		if !ok {
			return kont.Abandon(r.k)
		}
		s = next
	}
}

// deliver re-enters the loop after an asynchronous answer.
func (r *runner) deliver(sig signal) kont.Done {
	s, ok := r.advance(sig)
	if !ok {
		return kont.Abandon(r.k)
	}
	return r.loop(s)
}

func (r *runner) advance(sig signal) (Step, bool) {
	b, ok := r.e.Being(r.actor)
	if !ok {
		r.e.Log.Printf("%s: actor %v is gone, abandoning", r.m.Name(), r.actor)
		return Step{}, false
	}
	if sig.halt != 0 {
		return Finish(sig.halt), true
	}
	return r.m.Resume(r.e, b, sig.reply), true
}

func (r *runner) issue(s Step, k *kont.Cont[signal]) kont.Done {
	e := r.e
	b, ok := e.Being(r.actor)
	if !ok {
		return k.Resume(signal{halt: Aborted})
	}

	switch s.kind {
	case stepAsk:
		return dispatch(agentOf(b), s.query, kont.Map(k, func(rep query.Reply) signal {
			return signal{reply: rep}
		}))

	case stepSay:
		return e.Tell(r.actor, s.message, kont.Map(k, ack))

	case stepReport:
		o := s.outcome
		return e.Tell(r.actor, s.message, kont.Map(k, func(kont.Unit) signal {
			return signal{halt: o}
		}))

	case stepPay:
		return CheckAndIncur(s.cost, e, r.actor, kont.Map(k, func(o Outcome) signal {
			if o == Success {
				return signal{reply: query.Ack}
			}
			return signal{halt: o}
		}))

	case stepChant:
		inc := s.chant
		inc.Speaker = r.actor
		e.Publish(types.Event{Type: events.Incanted, Being: r.actor, Data: map[string]any{
			"spell": inc.Spell,
			"words": inc.Words,
			"ticks": inc.Ticks,
		}})
		return agentOf(b).Incant(inc, kont.Map(k, ack))

	case stepSchedule:
		e.AddDelayedAction(r.actor, s.delay, s.action, e.settle(r.actor, s.action))
		return k.Resume(signal{reply: query.Ack})
	}
	panic(fmt.Sprintf("engine: %s returned an invalid step", r.m.Name()))
}

func ack(kont.Unit) signal { return signal{reply: query.Ack} }
