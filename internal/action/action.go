// Package action implements the action framework described in spec §3-4:
// the uniform contract every host mutation satisfies (describe, execute,
// revert, serialize), its phase state machine, and composition of actions
// into trees with sequential or independent child groups.
package action

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Description is the pure, side-effect-free output of Describe(). Summary is
// a single human-readable line; Explanation lists the side effects the
// action will have, read without performing them.
type Description struct {
	Summary     string   `json:"summary"`
	Explanation []string `json:"explanation,omitempty"`
}

// Action is the uniform contract every mutation implements. See spec §4.1.
type Action interface {
	// Tag is the stable string identifier of the action's concrete kind. It
	// survives serialization and is used by the Registry to reconstruct the
	// action from a receipt.
	Tag() string

	// Describe returns a human-readable summary of what the action will do.
	// It must be pure: no probing of host state, no side effects.
	Describe() Description

	// Phase returns the action's current lifecycle phase.
	Phase() Phase

	// Execute performs the action's effect. It must begin with a state
	// probe: if the desired postcondition already holds, it transitions
	// straight to Completed without side effects (idempotence rule, §4.1).
	// On success the action's phase becomes Completed.
	Execute(ctx context.Context) error

	// Revert undoes the action's effect. It must begin with a probe of
	// current state and remove only what it actually put there (revert
	// tolerance rule, §4.1). It must not fail merely because the effect is
	// already absent. On success the action's phase becomes Reverted.
	Revert(ctx context.Context) error

	// Children returns the action's child actions, if any, in declared
	// order. Children are a tree, not a DAG (§9): ordering is syntactic.
	Children() []Child

	// Payload returns the action-specific data needed to both execute and
	// revert the action, for inclusion in the receipt. Must be pure.
	Payload() (json.RawMessage, error)
}

// Child pairs a child action with whether it may run concurrently with its
// siblings in the same group. Siblings sharing an Independent group must be
// mutually commutative by construction (§5); the framework does not verify
// this, it trusts the planner.
type Child struct {
	Action      Action
	Independent bool
}

// Errorer is implemented by actions that want to attach non-fatal error
// annotations to the receipt (used by the Reverter to record partial-revert
// failures per action, per §4.4).
type Errorer interface {
	Errors() []string
	AddError(msg string)
}

// Base is an embeddable struct giving concrete action implementations the
// phase bookkeeping, description plumbing, and child-list storage that spec
// §3 requires of every action. Concrete actions embed Base and implement
// Execute/Revert/Payload themselves, the way Streamy's plugins embedded
// shared metadata rather than reimplementing bookkeeping per plugin.
type Base struct {
	mu          sync.Mutex
	tag         string
	summary     string
	explanation []string
	phase       Phase
	children    []Child
	errs        []string
	completedAt time.Time
}

// NewBase constructs a Base in the Uninitialized phase.
func NewBase(tag, summary string, explanation ...string) Base {
	return Base{
		tag:         tag,
		summary:     summary,
		explanation: append([]string(nil), explanation...),
		phase:       Uninitialized,
	}
}

// Tag implements Action.
func (b *Base) Tag() string { return b.tag }

// Describe implements Action.
func (b *Base) Describe() Description {
	return Description{Summary: b.summary, Explanation: append([]string(nil), b.explanation...)}
}

// Phase implements Action.
func (b *Base) Phase() Phase {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.phase
}

// SetPhase forces the phase without validating the transition. Used by the
// receipt store when rehydrating an action from disk, where the phase is
// already known-good and was validated when it was first written.
func (b *Base) SetPhase(p Phase) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.phase = p
}

// TransitionTo validates and applies a phase transition, returning an error
// if the transition is not legal per the state machine in spec §3.
func (b *Base) TransitionTo(next Phase) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.phase.CanTransitionTo(next) {
		return NewInvalidTransitionError(b.tag, b.phase, next)
	}
	b.phase = next
	if next == Completed {
		b.completedAt = time.Now()
	}
	return nil
}

// CompletedAt returns the time of the Pending -> Completed transition, or
// the zero Time if the action has not completed. Surfaced in the receipt so
// a reviewer can see when each action finished without instrumenting every
// concrete action individually.
func (b *Base) CompletedAt() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.completedAt
}

// Children implements Action.
func (b *Base) Children() []Child { return b.children }

// AddChild appends a sequential child.
func (b *Base) AddChild(child Action) { b.children = append(b.children, Child{Action: child}) }

// AddIndependentChild appends a child that may run concurrently with other
// independent children declared immediately around it.
func (b *Base) AddIndependentChild(child Action) {
	b.children = append(b.children, Child{Action: child, Independent: true})
}

// Errors returns the revert-error annotations collected so far.
func (b *Base) Errors() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.errs...)
}

// AddError appends a revert-error annotation.
func (b *Base) AddError(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errs = append(b.errs, msg)
}
