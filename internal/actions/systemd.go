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

// TagSystemdUnit is SystemdUnit's stable receipt tag.
const TagSystemdUnit = "nix.systemd_unit"

const systemdUnitDir = "/etc/systemd/system"

type systemdUnitPayload struct {
	Name       string `json:"name"`
	Contents   string `json:"contents"`
	Enable     bool   `json:"enable"`
	PreExisted bool   `json:"pre_existed"`
}

// SystemdUnit installs a unit file and, if requested, enables it, the
// nix-daemon.service/nix-daemon.socket pair a Linux planner would emit.
type SystemdUnit struct {
	action.Base
	name       string
	contents   string
	enable     bool
	preExisted bool
}

var _ action.Action = (*SystemdUnit)(nil)
var _ interface{ RequiresPrivilege() bool } = (*SystemdUnit)(nil)

// NewSystemdUnit constructs a Pending-eligible SystemdUnit action.
func NewSystemdUnit(name, contents string, enable bool) *SystemdUnit {
	return &SystemdUnit{
		Base:     action.NewBase(TagSystemdUnit, fmt.Sprintf("Install systemd unit %s", name)),
		name:     name,
		contents: contents,
		enable:   enable,
	}
}

func (s *SystemdUnit) RequiresPrivilege() bool { return true }

func (s *SystemdUnit) unitPath() string { return filepath.Join(systemdUnitDir, s.name) }

// Execute writes the unit file (skipping if already correct) and enables it
// via systemctl, idempotently: `systemctl enable` is itself a no-op when the
// unit is already enabled.
func (s *SystemdUnit) Execute(ctx context.Context) error {
	existing, err := os.ReadFile(s.unitPath())
	upToDate := err == nil && string(existing) == s.contents
	s.preExisted = err == nil

	if !upToDate {
		if err := os.WriteFile(s.unitPath(), []byte(s.contents), 0o644); err != nil {
			return fmt.Errorf("write unit %s: %w", s.name, err)
		}
		if out, err := exec.CommandContext(ctx, "systemctl", "daemon-reload").CombinedOutput(); err != nil {
			return fmt.Errorf("systemctl daemon-reload: %w: %s", err, string(out))
		}
	}

	if s.enable {
		if out, err := exec.CommandContext(ctx, "systemctl", "enable", s.name).CombinedOutput(); err != nil {
			return fmt.Errorf("systemctl enable %s: %w: %s", s.name, err, string(out))
		}
	}

	return s.Base.TransitionTo(action.Completed)
}

// Revert disables the unit and removes the unit file only if SystemdUnit
// wrote it.
func (s *SystemdUnit) Revert(ctx context.Context) error {
	if s.enable {
		_, _ = exec.CommandContext(ctx, "systemctl", "disable", s.name).CombinedOutput()
	}
	if !s.preExisted {
		if err := os.Remove(s.unitPath()); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove unit %s: %w", s.name, err)
		}
		_, _ = exec.CommandContext(ctx, "systemctl", "daemon-reload").CombinedOutput()
	}
	return s.Base.TransitionTo(action.Reverted)
}

// Payload implements Action.
func (s *SystemdUnit) Payload() (json.RawMessage, error) {
	return json.Marshal(systemdUnitPayload{Name: s.name, Contents: s.contents, Enable: s.enable, PreExisted: s.preExisted})
}

func newSystemdUnitFromPayload(data json.RawMessage, children []action.Child) (action.Action, error) {
	var p systemdUnitPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode systemd_unit payload: %w", err)
	}
	s := NewSystemdUnit(p.Name, p.Contents, p.Enable)
	s.preExisted = p.PreExisted
	return s, nil
}
