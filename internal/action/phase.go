package action

// Phase identifies where an action sits in its lifecycle. The zero value
// (the empty string) is not one of the four phases; NewBase sets
// Uninitialized explicitly so an action constructed in memory but never
// added to a plan reports the correct phase.
type Phase string

const (
	// Uninitialized means the action exists in memory but has not been
	// committed to a plan.
	Uninitialized Phase = "Uninitialized"
	// Pending means the action is part of a plan but has not executed.
	Pending Phase = "Pending"
	// Completed means Execute returned success.
	Completed Phase = "Completed"
	// Reverted means Revert returned success. Terminal.
	Reverted Phase = "Reverted"
)

// Valid reports whether p is one of the four defined phases.
func (p Phase) Valid() bool {
	switch p {
	case Uninitialized, Pending, Completed, Reverted:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether moving from p to next is a legal phase
// transition per the state machine in spec §3. The executor and reverter
// both consult this before mutating an action's recorded phase so a bug in
// either driver cannot silently corrupt the receipt.
func (p Phase) CanTransitionTo(next Phase) bool {
	switch {
	case p == Uninitialized && next == Pending:
		return true
	case p == Pending && next == Completed:
		return true
	case p == Completed && next == Reverted:
		return true
	default:
		return false
	}
}
