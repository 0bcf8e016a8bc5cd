package engine

// Outcome is the result an action delivers to its continuation.
// The zero value is invalid.
type Outcome int

const (
	// Success means the action's effect occurred. The turn is consumed.
	Success Outcome = iota + 1
	// Failure means the turn is consumed but the effect did not land.
	Failure
	// Aborted means nothing happened and the turn is not consumed.
	Aborted
	// Cancelled is delivered to a delayed action's continuation when its
	// record is dropped by a stun or by the death of its owner.
	Cancelled
)

// ConsumesTurn reports whether the actor pays busy-time for o.
func (o Outcome) ConsumesTurn() bool {
	return o == Success || o == Failure
}

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case Aborted:
		return "aborted"
	case Cancelled:
		return "cancelled"
	default:
		return "invalid"
	}
}
