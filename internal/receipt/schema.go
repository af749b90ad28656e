// Package receipt implements C5: atomic persistence and recovery of the
// post-install plan at a well-known path, and the self-describing on-disk
// schema from spec §6.
package receipt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nix-installer/nix-installer-core/internal/action"
	"github.com/nix-installer/nix-installer-core/internal/plan"
)

// timestamped is implemented by actions that record when they completed
// (action.Base does). Actions that don't implement it simply omit
// completed_at from their receipt entry.
type timestamped interface {
	CompletedAt() time.Time
}

// ActionRecord is the persisted form of one action (and, recursively, its
// children). Fields beyond the spec §6 minimum (action/state/data/errors)
// are additive: a reader from an older patch release of the same minor
// line ignores fields it doesn't know about.
type ActionRecord struct {
	Action      string          `json:"action"`
	State       action.Phase    `json:"state"`
	Data        json.RawMessage `json:"data,omitempty"`
	Errors      []string        `json:"errors,omitempty"`
	Independent bool            `json:"independent,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	Children    []ActionRecord  `json:"children,omitempty"`
}

// PlannerRecord is the persisted "planner" sub-document.
type PlannerRecord struct {
	Tag      string         `json:"tag"`
	Settings map[string]any `json:"settings,omitempty"`
}

// TargetRecord is the persisted host triple/OS/OS-version sub-document.
type TargetRecord struct {
	OS        string `json:"os,omitempty"`
	OSVersion string `json:"os_version,omitempty"`
	Triple    string `json:"triple,omitempty"`
}

// Document is the on-disk shape described in spec §6, plus the additive
// run_id and target fields.
type Document struct {
	Version            string         `json:"version"`
	Planner            PlannerRecord  `json:"planner"`
	Actions            []ActionRecord `json:"actions"`
	DiagnosticEndpoint string         `json:"diagnostic_endpoint"`
	RunID              string         `json:"run_id,omitempty"`
	Target             TargetRecord   `json:"target,omitempty"`
}

// Snapshot captures the current phase/errors/payload of every action in p
// into a Document. Called after every top-level action's terminal
// transition (§4.3 "Receipt maintenance").
func Snapshot(p *plan.Plan) (*Document, error) {
	doc := &Document{
		Version: p.InstallerVersion,
		Planner: PlannerRecord{Tag: p.PlannerTag, Settings: p.PlannerSettings},
		Target: TargetRecord{
			OS:        p.Target.OS,
			OSVersion: p.Target.OSVersion,
			Triple:    p.Target.Triple,
		},
		DiagnosticEndpoint: p.DiagnosticEndpoint,
		RunID:              p.RunID.String(),
	}

	for _, a := range p.Actions {
		rec, err := snapshotAction(a)
		if err != nil {
			return nil, err
		}
		doc.Actions = append(doc.Actions, rec)
	}
	return doc, nil
}

func snapshotAction(a action.Action) (ActionRecord, error) {
	data, err := a.Payload()
	if err != nil {
		return ActionRecord{}, fmt.Errorf("action %q: marshal payload: %w", a.Tag(), err)
	}

	rec := ActionRecord{
		Action: a.Tag(),
		State:  a.Phase(),
		Data:   data,
	}
	if e, ok := a.(action.Errorer); ok {
		rec.Errors = e.Errors()
	}
	if ts, ok := a.(timestamped); ok {
		if completedAt := ts.CompletedAt(); !completedAt.IsZero() {
			rec.CompletedAt = &completedAt
		}
	}

	for _, c := range a.Children() {
		childRec, err := snapshotAction(c.Action)
		if err != nil {
			return ActionRecord{}, err
		}
		childRec.Independent = c.Independent
		rec.Children = append(rec.Children, childRec)
	}
	return rec, nil
}

// Load reconstructs a Plan from a Document, routing each action payload
// through reg by tag (C2). The returned actions carry their recorded Phase
// and error annotations; they are NOT re-planned (no Uninitialized ->
// Pending transition is attempted, since they are already past that point).
func Load(doc *Document, reg *action.Registry) (*plan.Plan, error) {
	actions := make([]action.Action, 0, len(doc.Actions))
	for _, rec := range doc.Actions {
		a, err := loadAction(rec, reg)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}

	p := &plan.Plan{
		PlannerTag:         doc.Planner.Tag,
		PlannerSettings:    doc.Planner.Settings,
		InstallerVersion:   doc.Version,
		DiagnosticEndpoint: doc.DiagnosticEndpoint,
		Target: plan.Target{
			OS:        doc.Target.OS,
			OSVersion: doc.Target.OSVersion,
			Triple:    doc.Target.Triple,
		},
		Actions: actions,
	}
	return p, nil
}

func loadAction(rec ActionRecord, reg *action.Registry) (action.Action, error) {
	children := make([]action.Child, 0, len(rec.Children))
	for _, childRec := range rec.Children {
		child, err := loadAction(childRec, reg)
		if err != nil {
			return nil, err
		}
		children = append(children, action.Child{Action: child, Independent: childRec.Independent})
	}

	a, err := reg.Deserialize(rec.Action, rec.Data, children)
	if err != nil {
		return nil, fmt.Errorf("deserialize action %q: %w", rec.Action, err)
	}

	if setter, ok := a.(interface{ SetPhase(action.Phase) }); ok {
		setter.SetPhase(rec.State)
	}
	if e, ok := a.(action.Errorer); ok {
		for _, msg := range rec.Errors {
			e.AddError(msg)
		}
	}
	return a, nil
}
