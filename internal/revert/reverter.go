// Package revert implements C6: drives a receipt backward through action
// states, best-effort, tolerating missing or partial prior state (spec
// §4.4).
package revert

import (
	"context"

	"github.com/hashicorp/go-multierror"

	"github.com/nix-installer/nix-installer-core/internal/action"
	"github.com/nix-installer/nix-installer-core/internal/kerrors"
	"github.com/nix-installer/nix-installer-core/internal/plan"
	"github.com/nix-installer/nix-installer-core/internal/progress"
	"github.com/nix-installer/nix-installer-core/internal/receipt"
)

// Reverter drives a plan backward in strict reverse order of execution.
type Reverter struct {
	Store *receipt.Store // may be nil to revert without persistence, e.g. tests
	Sink  progress.Sink
}

// New constructs a Reverter. A nil sink falls back to a no-op-logging
// default.
func New(store *receipt.Store, sink progress.Sink) *Reverter {
	if sink == nil {
		sink = progress.NewDefault(nil)
	}
	return &Reverter{Store: store, Sink: sink}
}

// Revert walks p's top-level actions in reverse, invoking Revert() on every
// action whose phase is Completed. Pending actions are skipped (never
// executed); Reverted actions are skipped (already done). Failures are
// logged, attached to the action via action.Errorer, and aggregated into a
// multi-error; they do not halt subsequent reverts (§4.4). After a fully
// successful revert the receipt is deleted; after a partial revert it is
// left in place, annotated, so a later uninstall run can retry.
func (r *Reverter) Revert(ctx context.Context, p *plan.Plan) error {
	var result *multierror.Error
	anyFailed := false

	for i := len(p.Actions) - 1; i >= 0; i-- {
		a := p.Actions[i]

		switch a.Phase() {
		case action.Pending, action.Reverted:
			continue
		case action.Completed:
			// fall through to revert below
		default:
			continue
		}

		if err := a.Revert(ctx); err != nil {
			anyFailed = true
			wrapped := kerrors.NewActionRevert(a.Tag(), err)
			result = multierror.Append(result, wrapped)
			if e, ok := a.(action.Errorer); ok {
				e.AddError(err.Error())
			}
			r.Sink.ActionRevertFailed(a.Tag(), err)
		} else {
			r.Sink.ActionReverted(a.Tag())
		}

		if r.Store != nil {
			if saveErr := r.Store.Save(p); saveErr != nil {
				result = multierror.Append(result, kerrors.NewReceiptIO("save receipt during revert", saveErr))
			}
		}
	}

	if !anyFailed {
		if r.Store != nil {
			if err := r.Store.Delete(); err != nil {
				result = multierror.Append(result, err)
			}
		}
		r.Sink.RevertComplete()
		return result.ErrorOrNil()
	}

	r.Sink.RevertComplete()
	return result.ErrorOrNil()
}
