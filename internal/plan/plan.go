// Package plan implements C3: the ordered, serializable bundle of actions
// plus metadata that a planner produces and the operator reviews before the
// executor consumes it (spec §3, §4.2).
package plan

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nix-installer/nix-installer-core/internal/action"
)

// Target captures the host triple/OS/OS-version observed at plan time, so a
// receipt review (or a bug report) can tell what host a plan was built for
// without re-probing it.
type Target struct {
	OS        string `json:"os"`
	OSVersion string `json:"os_version"`
	Triple    string `json:"triple"`
}

// Plan is the unit the operator reviews and the executor consumes. It
// carries no execution state of its own (that lives on the Actions, §4.2),
// only the metadata needed to review, serialize, and later refuse to
// misinterpret it.
type Plan struct {
	RunID              uuid.UUID
	PlannerTag         string
	PlannerSettings    map[string]any
	InstallerVersion   string
	Target             Target
	DiagnosticEndpoint string
	Actions            []action.Action
}

// Planner inspects the host and returns a Plan. Concrete planners (Linux,
// Darwin detectors) are external collaborators per spec §1; this package
// only defines the interface they satisfy.
type Planner interface {
	Tag() string
	Plan(ctx context.Context, settings map[string]any) (*Plan, error)
}

// New constructs a Plan from a planner's output and commits every action
// (and its descendants) from Uninitialized to Pending, satisfying the
// "plan()" transition in the phase state machine (§3).
func New(plannerTag string, settings map[string]any, installerVersion string, target Target, diagnosticEndpoint string, actions []action.Action) (*Plan, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("generate plan run id: %w", err)
	}

	p := &Plan{
		RunID:              id,
		PlannerTag:         plannerTag,
		PlannerSettings:    settings,
		InstallerVersion:   installerVersion,
		Target:             target,
		DiagnosticEndpoint: diagnosticEndpoint,
		Actions:            actions,
	}

	for _, a := range p.Actions {
		if err := action.PlanTree(a); err != nil {
			return nil, fmt.Errorf("commit action %q to plan: %w", a.Tag(), err)
		}
	}

	return p, nil
}

// Describe renders the plan as the numbered, human-readable list the
// confirmation gate (§4.6) shows the operator. Composite actions' children
// are indented beneath their parent.
func (p *Plan) Describe() []string {
	var lines []string
	for i, a := range p.Actions {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, a.Describe().Summary))
		lines = append(lines, describeChildren(a, "   ")...)
		for _, exp := range a.Describe().Explanation {
			lines = append(lines, "   - "+exp)
		}
	}
	return lines
}

func describeChildren(a action.Action, indent string) []string {
	var lines []string
	for _, c := range a.Children() {
		lines = append(lines, indent+"- "+c.Action.Describe().Summary)
		lines = append(lines, describeChildren(c.Action, indent+"  ")...)
	}
	return lines
}

// RequiresPrivilege reports whether any action in the plan (recursively)
// declares a need for elevated privileges, used by the front-end's
// escalation check (§4.6).
func (p *Plan) RequiresPrivilege() bool {
	for _, a := range p.Actions {
		if actionRequiresPrivilege(a) {
			return true
		}
	}
	return false
}

// PrivilegedAction is implemented by actions that require elevated
// privileges to execute. Actions that don't implement it are assumed
// unprivileged.
type PrivilegedAction interface {
	RequiresPrivilege() bool
}

func actionRequiresPrivilege(a action.Action) bool {
	if p, ok := a.(PrivilegedAction); ok && p.RequiresPrivilege() {
		return true
	}
	for _, c := range a.Children() {
		if actionRequiresPrivilege(c.Action) {
			return true
		}
	}
	return false
}
