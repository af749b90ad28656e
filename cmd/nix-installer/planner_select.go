package main

import (
	"fmt"
	"runtime"

	"github.com/nix-installer/nix-installer-core/internal/plan"
	"github.com/nix-installer/nix-installer-core/internal/planner"
	"github.com/nix-installer/nix-installer-core/internal/version"
)

// planOptions are the flags shared by the "install" and "plan" commands
// (spec §6 "install [PLANNER] [opts]").
type planOptions struct {
	nixTarballURL    string
	nixTarballSHA256 string
}

// selectPlanner resolves the PLANNER positional argument to a concrete
// plan.Planner, defaulting to the host's runtime.GOOS the way a real
// installer autodetects its platform (spec §1: planners are "something
// that returns a Plan", chosen by the platform, overridable explicitly).
func selectPlanner(name string, diagnosticEndpoint string, opts planOptions) (plan.Planner, error) {
	if name == "" {
		switch runtime.GOOS {
		case "linux":
			name = planner.TagLinux
		case "darwin":
			name = planner.TagDarwin
		default:
			return nil, fmt.Errorf("no planner available for GOOS %q; specify one explicitly", runtime.GOOS)
		}
	}

	switch name {
	case planner.TagLinux:
		return &planner.Linux{
			InstallerVersion: version.Current,
			NixTarballURL:    opts.nixTarballURL,
			NixTarballSHA256: opts.nixTarballSHA256,
			DiagnosticURL:    diagnosticEndpoint,
		}, nil
	case planner.TagDarwin:
		return &planner.Darwin{
			InstallerVersion: version.Current,
			NixTarballURL:    opts.nixTarballURL,
			NixTarballSHA256: opts.nixTarballSHA256,
			DiagnosticURL:    diagnosticEndpoint,
		}, nil
	default:
		return nil, fmt.Errorf("unknown planner %q", name)
	}
}
