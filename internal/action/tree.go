package action

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// transitioner is satisfied by any Action built on Base (always true for
// actions in this codebase; the type assertion exists so Action itself
// stays a small, serialization-oriented interface).
type transitioner interface {
	TransitionTo(Phase) error
}

func transitionTo(a Action, next Phase) error {
	t, ok := a.(transitioner)
	if !ok {
		return fmt.Errorf("action %q: does not support phase transitions", a.Tag())
	}
	return t.TransitionTo(next)
}

// PlanTree transitions a and every descendant from Uninitialized to Pending.
// Called once, when an action is added to a Plan (§3: "Uninitialized
// -plan()-> Pending").
func PlanTree(a Action) error {
	if a.Phase() == Uninitialized {
		if err := transitionTo(a, Pending); err != nil {
			return err
		}
	}
	for _, c := range a.Children() {
		if err := PlanTree(c.Action); err != nil {
			return err
		}
	}
	return nil
}

// group is a maximal run of consecutive children sharing the same
// Independent flag taken from the declared child order.
type group struct {
	independent bool
	items       []Action
}

func groupChildren(children []Child) []group {
	var groups []group
	for _, c := range children {
		if len(groups) > 0 && groups[len(groups)-1].independent == c.Independent {
			last := &groups[len(groups)-1]
			last.items = append(last.items, c.Action)
			continue
		}
		groups = append(groups, group{independent: c.Independent, items: []Action{c.Action}})
	}
	return groups
}

// ExecuteChildren drives composed children forward in declared order
// (§4.1). Sequential children execute one at a time; consecutive
// independent children execute concurrently, bounded by the Scheduler
// attached to ctx. On any child failure the already-completed children (in
// all groups processed so far, including earlier items of the failing
// group) are reverted in reverse order and the original error is returned.
func ExecuteChildren(ctx context.Context, children []Child) error {
	groups := groupChildren(children)
	var completed []Action

	fail := func(cause error) error {
		revertCompleted(context.Background(), completed)
		return cause
	}

	for _, g := range groups {
		if !g.independent {
			for _, a := range g.items {
				if ctx.Err() != nil {
					return fail(ctx.Err())
				}
				if err := a.Execute(ctx); err != nil {
					return fail(err)
				}
				if a.Phase() == Completed {
					completed = append(completed, a)
				}
			}
			continue
		}

		sched := SchedulerFromContext(ctx)
		gctx, cancel := context.WithCancel(ctx)
		errs := make([]error, len(g.items))
		var wg sync.WaitGroup
		var firstErrOnce sync.Once

		for i, a := range g.items {
			wg.Add(1)
			go func(i int, a Action) {
				defer wg.Done()
				if err := sched.Acquire(gctx); err != nil {
					errs[i] = err
					return
				}
				defer sched.Release()
				if gctx.Err() != nil {
					errs[i] = gctx.Err()
					return
				}
				if err := a.Execute(gctx); err != nil {
					errs[i] = err
					firstErrOnce.Do(cancel)
				}
			}(i, a)
		}
		wg.Wait()
		cancel()

		var groupErr error
		for i, err := range errs {
			if err != nil && groupErr == nil {
				groupErr = err
			}
			if g.items[i].Phase() == Completed {
				completed = append(completed, g.items[i])
			}
		}
		if groupErr != nil {
			return fail(groupErr)
		}
	}

	return nil
}

func revertCompleted(ctx context.Context, completed []Action) {
	for i := len(completed) - 1; i >= 0; i-- {
		_ = completed[i].Revert(ctx)
	}
}

// RevertChildren drives composed children backward in reverse declared
// order, best-effort: every child gets a chance regardless of earlier
// failures, and errors are aggregated (§4.1, §4.4).
func RevertChildren(ctx context.Context, children []Child) error {
	var result *multierror.Error
	for i := len(children) - 1; i >= 0; i-- {
		a := children[i].Action
		if a.Phase() != Completed {
			continue
		}
		if err := a.Revert(ctx); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", a.Tag(), err))
		}
	}
	if result != nil {
		return result.ErrorOrNil()
	}
	return nil
}
