package frontend

import (
	"context"

	"github.com/nix-installer/nix-installer-core/internal/diagnostics"
	"github.com/nix-installer/nix-installer-core/internal/progress"
	"github.com/nix-installer/nix-installer-core/internal/version"
)

// Target mirrors plan.Target; kept decoupled from the plan package since
// diagnostics metadata is gathered at process startup, before any plan
// exists.
type Target struct {
	OSName    string
	OSVersion string
	Triple    string
}

// DiagnosticSink wraps a progress.Sink and additionally emits diagnostics
// events at plan start, plan complete, plan failure, revert complete, and
// revert failure (spec §4.6 "Diagnostic emission"), as the closed §4.7
// event shape.
type DiagnosticSink struct {
	progress.Sink
	sender     *diagnostics.Sender
	action     diagnostics.Action
	plannerTag string
	overridden []string
	target     Target
	isCI       bool
}

// NewDiagnosticSink wraps inner with diagnostics reporting. An empty
// endpoint on sender makes every emission a no-op, satisfying
// "no-telemetry opt-out".
func NewDiagnosticSink(inner progress.Sink, sender *diagnostics.Sender, action diagnostics.Action, plannerTag string, overridden []string, target Target, isCI bool) *DiagnosticSink {
	return &DiagnosticSink{
		Sink:       inner,
		sender:     sender,
		action:     action,
		plannerTag: plannerTag,
		overridden: overridden,
		target:     target,
		isCI:       isCI,
	}
}

func (d *DiagnosticSink) event(status diagnostics.Status, failureVariant string) diagnostics.Event {
	return diagnostics.Event{
		Version:            version.Current,
		Planner:            d.plannerTag,
		ConfiguredSettings: d.overridden,
		OSName:             d.target.OSName,
		OSVersion:          d.target.OSVersion,
		Triple:             d.target.Triple,
		IsCI:               d.isCI,
		Action:             d.action,
		Status:             status,
		FailureVariant:     failureVariant,
	}
}

// EmitStart reports the plan/revert beginning.
func (d *DiagnosticSink) EmitStart(ctx context.Context) {
	d.sender.Send(ctx, d.event(diagnostics.StatusPending, ""))
}

func (d *DiagnosticSink) PlanComplete() {
	d.sender.Send(context.Background(), d.event(diagnostics.StatusSuccess, ""))
	d.Sink.PlanComplete()
}

func (d *DiagnosticSink) PlanAborted(err error) {
	d.sender.Send(context.Background(), d.event(diagnostics.StatusFailure, failureVariant(err)))
	d.Sink.PlanAborted(err)
}

func (d *DiagnosticSink) RevertComplete() {
	d.sender.Send(context.Background(), d.event(diagnostics.StatusSuccess, ""))
	d.Sink.RevertComplete()
}

func (d *DiagnosticSink) ActionRevertFailed(tag string, err error) {
	d.sender.Send(context.Background(), d.event(diagnostics.StatusFailure, failureVariant(err)))
	d.Sink.ActionRevertFailed(tag, err)
}

// failureVariant coarsens an error into spec §4.7's "coarse category".
func failureVariant(err error) string {
	if err == nil {
		return ""
	}
	return kindOf(err)
}
