package planner

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/nix-installer/nix-installer-core/internal/action"
	"github.com/nix-installer/nix-installer-core/internal/actions"
	"github.com/nix-installer/nix-installer-core/internal/plan"
)

// TagDarwin is the Darwin planner's stable tag.
const TagDarwin = "darwin-launchd"

const launchdPlistTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>org.nixos.nix-daemon</string>
	<key>ProgramArguments</key>
	<array>
		<string>%s/var/nix/profile/bin/nix-daemon</string>
	</array>
	<key>RunAtLoad</key>
	<true/>
	<key>KeepAlive</key>
	<true/>
</dict>
</plist>
`

// Darwin assembles a Plan using a build-user group plus a launchd-managed
// nix-daemon.
type Darwin struct {
	InstallerVersion string
	NixTarballURL    string
	NixTarballSHA256 string
	DiagnosticURL    string
}

var _ plan.Planner = (*Darwin)(nil)

// Tag implements plan.Planner.
func (d *Darwin) Tag() string { return TagDarwin }

// Plan implements plan.Planner.
func (d *Darwin) Plan(ctx context.Context, rawSettings map[string]any) (*plan.Plan, error) {
	s := settingsFromMap(rawSettings)

	topLevel := []action.Action{
		newBuildUsersComposite(s),
		actions.NewMkDir(s.StoreDir, 0o755),
		actions.NewFetchExtract(d.NixTarballURL, d.NixTarballSHA256, filepath.Join(s.StoreDir, "store"), nil),
		actions.NewWriteFile(filepath.Join("/etc/nix", "nix.conf"), fmt.Sprintf(nixConfTemplate, s.BuildUser), 0o644),
		actions.NewLaunchdUnit("org.nixos.nix-daemon", fmt.Sprintf(launchdPlistTemplate, s.StoreDir)),
	}

	return plan.New(
		d.Tag(),
		rawSettingsFromConfig(s),
		d.InstallerVersion,
		plan.Target{OS: "darwin", OSVersion: "", Triple: runtime.GOARCH + "-apple-darwin"},
		d.DiagnosticURL,
		topLevel,
	)
}
