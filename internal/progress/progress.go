// Package progress defines the pluggable lifecycle-event sink shared by the
// Executor (C4) and Reverter (C6), and a default logging-backed
// implementation, so "absence of a sink must not affect correctness"
// (spec §4.3) holds for both directions of travel through a plan.
package progress

import "github.com/nix-installer/nix-installer-core/internal/logging"

// Sink receives lifecycle events as a plan (or receipt) is driven forward
// or backward. Event names follow spec §4.3 for the forward direction;
// ActionReverted/ActionRevertFailed/RevertComplete mirror them for §4.4.
type Sink interface {
	ActionStarted(tag, description string)
	ActionSucceeded(tag string)
	ActionFailed(tag string, err error)
	PlanComplete()
	PlanAborted(err error)

	ActionReverted(tag string)
	ActionRevertFailed(tag string, err error)
	RevertComplete()
}

// LogSink logs every event through a structured logger. It is the default
// used whenever a caller supplies no sink of its own.
type LogSink struct {
	Log *logging.Logger
}

var _ Sink = LogSink{}

func (s LogSink) ActionStarted(tag, description string) {
	s.Log.WithFields(map[string]any{"action": tag}).Info("action started: " + description)
}

func (s LogSink) ActionSucceeded(tag string) {
	s.Log.WithFields(map[string]any{"action": tag}).Info("action succeeded")
}

func (s LogSink) ActionFailed(tag string, err error) {
	s.Log.WithFields(map[string]any{"action": tag}).Error(err, "action failed")
}

func (s LogSink) PlanComplete() { s.Log.Info("plan complete") }

func (s LogSink) PlanAborted(err error) { s.Log.Error(err, "plan aborted") }

func (s LogSink) ActionReverted(tag string) {
	s.Log.WithFields(map[string]any{"action": tag}).Info("action reverted")
}

func (s LogSink) ActionRevertFailed(tag string, err error) {
	s.Log.WithFields(map[string]any{"action": tag}).Error(err, "action revert failed")
}

func (s LogSink) RevertComplete() { s.Log.Info("revert complete") }

// NewDefault builds a LogSink around a fresh no-op-safe logger; callers that
// want real output pass their own *logging.Logger in.
func NewDefault(log *logging.Logger) Sink {
	if log == nil {
		log = logging.NewNop()
	}
	return LogSink{Log: log}
}
