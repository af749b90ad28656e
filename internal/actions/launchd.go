package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/nix-installer/nix-installer-core/internal/action"
)

// TagLaunchdUnit is LaunchdUnit's stable receipt tag.
const TagLaunchdUnit = "nix.launchd_unit"

const launchdDaemonsDir = "/Library/LaunchDaemons"

type launchdUnitPayload struct {
	Label      string `json:"label"`
	Plist      string `json:"plist"`
	PreExisted bool   `json:"pre_existed"`
}

// LaunchdUnit installs and loads a launchd daemon plist, the macOS
// planner's equivalent of SystemdUnit for org.nixos.nix-daemon.
type LaunchdUnit struct {
	action.Base
	label      string
	plist      string
	preExisted bool
}

var _ action.Action = (*LaunchdUnit)(nil)
var _ interface{ RequiresPrivilege() bool } = (*LaunchdUnit)(nil)

// NewLaunchdUnit constructs a Pending-eligible LaunchdUnit action.
func NewLaunchdUnit(label, plist string) *LaunchdUnit {
	return &LaunchdUnit{
		Base:  action.NewBase(TagLaunchdUnit, fmt.Sprintf("Install launchd daemon %s", label)),
		label: label,
		plist: plist,
	}
}

func (l *LaunchdUnit) RequiresPrivilege() bool { return true }

func (l *LaunchdUnit) plistPath() string {
	return filepath.Join(launchdDaemonsDir, l.label+".plist")
}

// Execute writes the plist (if not already correct) and loads it via
// launchctl; launchctl load is idempotent against an already-loaded label.
func (l *LaunchdUnit) Execute(ctx context.Context) error {
	existing, err := os.ReadFile(l.plistPath())
	upToDate := err == nil && string(existing) == l.plist
	l.preExisted = err == nil

	if !upToDate {
		if err := os.WriteFile(l.plistPath(), []byte(l.plist), 0o644); err != nil {
			return fmt.Errorf("write plist %s: %w", l.label, err)
		}
	}

	if out, err := exec.CommandContext(ctx, "launchctl", "load", "-w", l.plistPath()).CombinedOutput(); err != nil {
		return fmt.Errorf("launchctl load %s: %w: %s", l.label, err, string(out))
	}

	return l.Base.TransitionTo(action.Completed)
}

// Revert unloads the daemon and removes the plist only if LaunchdUnit wrote
// it.
func (l *LaunchdUnit) Revert(ctx context.Context) error {
	_, _ = exec.CommandContext(ctx, "launchctl", "unload", "-w", l.plistPath()).CombinedOutput()
	if !l.preExisted {
		if err := os.Remove(l.plistPath()); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove plist %s: %w", l.label, err)
		}
	}
	return l.Base.TransitionTo(action.Reverted)
}

// Payload implements Action.
func (l *LaunchdUnit) Payload() (json.RawMessage, error) {
	return json.Marshal(launchdUnitPayload{Label: l.label, Plist: l.plist, PreExisted: l.preExisted})
}

func newLaunchdUnitFromPayload(data json.RawMessage, children []action.Child) (action.Action, error) {
	var p launchdUnitPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode launchd_unit payload: %w", err)
	}
	l := NewLaunchdUnit(p.Label, p.Plist)
	l.preExisted = p.PreExisted
	return l, nil
}
