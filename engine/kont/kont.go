// Package kont provides the completion marker and the one-shot continuations
// that every suspension point of the turn scheduler is built on.
//
// A function that accepts a continuation must, on every return path, either
// resume it, hand it to another function that does, park it for later
// resumption, or abandon it. The only way to obtain a valid Done is to do one
// of those things, so a function that forgets its continuation cannot produce
// a valid return value. Resuming twice panics.
package kont

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// Unit is the argument of continuations that only sequence.
type Unit = struct{}

// Sentinel causes carried by ContractError.
var (
	ErrResumedTwice = errors.New("resumed twice")
	ErrDiscarded    = errors.New("resumed after discard")
	ErrDropped      = errors.New("returned without consuming its continuation")
	ErrParkUsed     = errors.New("parked after being consumed")
)

// ContractError reports a broken continuation contract. It is raised with
// panic: a broken contract is a programming defect, not a runtime condition.
type ContractError struct {
	Name string
	Err  error
}

func (e *ContractError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("kont: continuation %v", e.Err)
	}
	return fmt.Sprintf("kont: continuation %q %v", e.Name, e.Err)
}

func (e *ContractError) Unwrap() error { return e.Err }

type completion uint8

const (
	incomplete completion = iota
	resumed
	parked
	abandoned
	bounced
	ended
)

// Done is the completion marker returned along every continuation path.
// The zero value is invalid.
type Done struct {
	how completion
}

// Valid reports whether d was produced by consuming a continuation.
func (d Done) Valid() bool { return d.how != incomplete }

// Parked reports whether the path ended by parking a continuation.
func (d Done) Parked() bool { return d.how == parked }

func (d Done) String() string {
	switch d.how {
	case resumed:
		return "resumed"
	case parked:
		return "parked"
	case abandoned:
		return "abandoned"
	case bounced:
		return "bounced"
	case ended:
		return "ended"
	default:
		return "incomplete"
	}
}

const (
	fresh uint32 = iota
	used
	dropped
)

// Cont is a one-shot continuation. It is consumed by Resume, TryResume or
// Discard, whichever comes first.
type Cont[T any] struct {
	name  string
	state atomic.Uint32
	fn    func(T) Done
}

// Once wraps fn as a one-shot continuation.
func Once[T any](fn func(T) Done) *Cont[T] {
	return &Cont[T]{fn: fn}
}

// Named is Once with a name used in contract violation reports.
func Named[T any](name string, fn func(T) Done) *Cont[T] {
	return &Cont[T]{name: name, fn: fn}
}

// Name returns the diagnostic name of k.
func (k *Cont[T]) Name() string { return k.name }

// Resume invokes the continuation with v.
// Panics with *ContractError if k was already consumed, or if the body
// returns without consuming its own continuation.
func (k *Cont[T]) Resume(v T) Done {
	if !k.state.CompareAndSwap(fresh, used) {
		if k.state.Load() == dropped {
			panic(&ContractError{Name: k.name, Err: ErrDiscarded})
		}
		panic(&ContractError{Name: k.name, Err: ErrResumedTwice})
	}
	d := k.fn(v)
	if !d.Valid() {
		panic(&ContractError{Name: k.name, Err: ErrDropped})
	}
	return d
}

// TryResume invokes the continuation if it has not been consumed.
// Returns (Done{}, false) otherwise.
func (k *Cont[T]) TryResume(v T) (Done, bool) {
	if !k.state.CompareAndSwap(fresh, used) {
		return Done{}, false
	}
	d := k.fn(v)
	if !d.Valid() {
		panic(&ContractError{Name: k.name, Err: ErrDropped})
	}
	return d, true
}

// Discard consumes k without invoking it. Discarding a consumed
// continuation is a no-op.
func (k *Cont[T]) Discard() {
	k.state.CompareAndSwap(fresh, dropped)
}

// Used reports whether k has been consumed.
func (k *Cont[T]) Used() bool { return k.state.Load() != fresh }

// Map adapts k to accept an A. Resuming the result resumes k exactly once.
func Map[A, B any](k *Cont[B], f func(A) B) *Cont[A] {
	return Named(k.name, func(a A) Done {
		return k.Resume(f(a))
	})
}

// Park records that k is retained by the caller and will be resumed later,
// returning the completion marker for the current path.
func Park[T any](k *Cont[T]) Done {
	if k.Used() {
		panic(&ContractError{Name: k.name, Err: ErrParkUsed})
	}
	return Done{how: parked}
}

// Abandon discards k because its owner no longer exists.
func Abandon[T any](k *Cont[T]) Done {
	k.Discard()
	return Done{how: abandoned}
}

// Capture calls issue with a continuation named name. If issue resumes it
// before returning, the value is handed back with sync set so the caller
// can continue in its own loop instead of recursing. If it is resumed
// later, later runs with the value. d is what issue returned.
func Capture[T any](name string, issue func(*Cont[T]) Done, later func(T) Done) (v T, sync bool, d Done) {
	inline := true
	d = issue(Named(name, func(got T) Done {
		if inline {
			v, sync = got, true
			return Done{how: bounced}
		}
		return later(got)
	}))
	inline = false
	return v, sync, d
}

// End is returned by the root continuation of a chain: the one the turn
// driver or a scheduler owns, which has no continuation of its own to resume.
func End() Done { return Done{how: ended} }
