// Package executor implements C4: drives a Pending plan forward through
// action states in dependency order, exploiting declared parallelism within
// composite actions, reporting progress, persisting the receipt after every
// terminal transition, and cooperating with cancellation (spec §4.3, §5).
package executor

import (
	"context"
	"errors"

	"github.com/nix-installer/nix-installer-core/internal/action"
	"github.com/nix-installer/nix-installer-core/internal/kerrors"
	"github.com/nix-installer/nix-installer-core/internal/plan"
	"github.com/nix-installer/nix-installer-core/internal/progress"
	"github.com/nix-installer/nix-installer-core/internal/receipt"
)

// Executor drives a plan to all-Completed or aborts. Top-level actions run
// strictly sequentially (§4.3 "Scheduling"); bounded parallelism only
// happens within a composite action's declared independent child groups,
// via the Scheduler attached to the context.
type Executor struct {
	Store       *receipt.Store // may be nil (execute without persistence, e.g. in tests)
	Sink        progress.Sink
	Concurrency int
}

// New constructs an Executor. A nil sink falls back to a no-op-logging
// default; a nil store runs without receipt persistence.
func New(store *receipt.Store, sink progress.Sink, concurrency int) *Executor {
	if sink == nil {
		sink = progress.NewDefault(nil)
	}
	return &Executor{Store: store, Sink: sink, Concurrency: concurrency}
}

// Execute drives p's top-level actions forward in order. It returns a
// *kerrors.Error of kind KindActionExecute or KindCancelled on failure, or a
// KindReceiptIO error if persisting the receipt fails (which is fatal to the
// run even though the action itself succeeded, per §4.5).
func (e *Executor) Execute(ctx context.Context, p *plan.Plan) error {
	sched := action.NewScheduler(e.Concurrency)
	ctx = action.WithScheduler(ctx, sched)

	for _, a := range p.Actions {
		if ctx.Err() != nil {
			e.Sink.PlanAborted(ctx.Err())
			return kerrors.NewCancelled(ctx.Err())
		}

		if a.Phase() == action.Completed {
			// Resumed from a receipt where this top-level action already
			// finished; re-planning Completed -> Reverted is never done
			// implicitly (§3: "executor must never attempt Pending ->
			// Reverted directly"), and Completed -> Completed is a no-op.
			e.Sink.ActionSucceeded(a.Tag())
			continue
		}

		e.Sink.ActionStarted(a.Tag(), a.Describe().Summary)

		err := a.Execute(ctx)
		if err != nil {
			wrapped := classifyExecuteError(ctx, a.Tag(), err)
			e.Sink.ActionFailed(a.Tag(), err)
			if e.Store != nil {
				if saveErr := e.Store.Save(p); saveErr != nil {
					e.Sink.PlanAborted(saveErr)
					return saveErr
				}
			}
			e.Sink.PlanAborted(wrapped)
			return wrapped
		}

		e.Sink.ActionSucceeded(a.Tag())

		if e.Store != nil {
			if saveErr := e.Store.Save(p); saveErr != nil {
				e.Sink.PlanAborted(saveErr)
				return saveErr
			}
		}
	}

	e.Sink.PlanComplete()
	return nil
}

func classifyExecuteError(ctx context.Context, tag string, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return kerrors.NewCancelled(err)
	}
	return kerrors.NewActionExecute(tag, err)
}
