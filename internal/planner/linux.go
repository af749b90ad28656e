package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/nix-installer/nix-installer-core/internal/action"
	"github.com/nix-installer/nix-installer-core/internal/actions"
	"github.com/nix-installer/nix-installer-core/internal/config"
	"github.com/nix-installer/nix-installer-core/internal/plan"
)

// TagLinux is the Linux planner's stable tag, recorded in every plan and
// receipt it produces.
const TagLinux = "linux-systemd"

const nixConfTemplate = "build-users-group = %s\nexperimental-features = nix-command flakes\n"

// Linux assembles a Plan using a build-user group plus a systemd-managed
// nix-daemon, the shape spec §8 scenario 1 exercises directly.
type Linux struct {
	InstallerVersion string
	NixTarballURL    string
	NixTarballSHA256 string
	DiagnosticURL    string
}

var _ plan.Planner = (*Linux)(nil)

// Tag implements plan.Planner.
func (l *Linux) Tag() string { return TagLinux }

// Plan implements plan.Planner.
func (l *Linux) Plan(ctx context.Context, rawSettings map[string]any) (*plan.Plan, error) {
	s := settingsFromMap(rawSettings)

	topLevel := []action.Action{
		newBuildUsersComposite(s),
		actions.NewMkDir(s.StoreDir, 0o755),
		actions.NewFetchExtract(l.NixTarballURL, l.NixTarballSHA256, filepath.Join(s.StoreDir, "store"), nil),
		actions.NewWriteFile(filepath.Join("/etc/nix", "nix.conf"), fmt.Sprintf(nixConfTemplate, s.BuildUser), 0o644),
		actions.NewSystemdUnit("nix-daemon.service", nixDaemonUnit(s), true),
	}

	return plan.New(
		l.Tag(),
		rawSettingsFromConfig(s),
		l.InstallerVersion,
		plan.Target{OS: "linux", OSVersion: "", Triple: runtime.GOARCH + "-unknown-linux-gnu"},
		l.DiagnosticURL,
		topLevel,
	)
}

// TagBuildUsers is buildUsersComposite's stable receipt tag.
const TagBuildUsers = "nix.build_users"

// buildUsersComposite is a composite action (§3 "composed of child actions")
// whose children are the individual CreateUser actions for each build user.
type buildUsersComposite struct {
	action.Base
}

var _ action.Action = (*buildUsersComposite)(nil)

func newBuildUsersComposite(s config.Settings) *buildUsersComposite {
	c := &buildUsersComposite{Base: action.NewBase(TagBuildUsers, "Create build users")}
	for _, child := range buildUserActions(s) {
		if child.Independent {
			c.AddIndependentChild(child.Action)
		} else {
			c.AddChild(child.Action)
		}
	}
	return c
}

func newBuildUsersCompositeFromPayload(data json.RawMessage, children []action.Child) (action.Action, error) {
	c := &buildUsersComposite{Base: action.NewBase(TagBuildUsers, "Create build users")}
	for _, child := range children {
		if child.Independent {
			c.AddIndependentChild(child.Action)
		} else {
			c.AddChild(child.Action)
		}
	}
	return c, nil
}

func (c *buildUsersComposite) Execute(ctx context.Context) error {
	if err := action.ExecuteChildren(ctx, c.Children()); err != nil {
		return err
	}
	return c.Base.TransitionTo(action.Completed)
}

func (c *buildUsersComposite) Revert(ctx context.Context) error {
	err := action.RevertChildren(ctx, c.Children())
	if tErr := c.Base.TransitionTo(action.Reverted); tErr != nil {
		return tErr
	}
	return err
}

func (c *buildUsersComposite) Payload() (json.RawMessage, error) { return json.RawMessage("{}"), nil }

func nixDaemonUnit(s config.Settings) string {
	return fmt.Sprintf(`[Unit]
Description=Nix Daemon

[Service]
ExecStart=%s/var/nix/profile/bin/nix-daemon
KillMode=process

[Install]
WantedBy=multi-user.target
`, s.StoreDir)
}

func rawSettingsFromConfig(s config.Settings) map[string]any {
	return map[string]any{
		"store_dir":        s.StoreDir,
		"build_user":       s.BuildUser,
		"build_user_count": s.BuildUserCount,
		"build_gid":        s.BuildGID,
		"first_build_uid":  s.FirstBuildUID,
	}
}
