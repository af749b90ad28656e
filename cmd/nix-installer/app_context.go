package main

import (
	"github.com/nix-installer/nix-installer-core/internal/action"
	"github.com/nix-installer/nix-installer-core/internal/config"
	"github.com/nix-installer/nix-installer-core/internal/diagnostics"
	"github.com/nix-installer/nix-installer-core/internal/logging"
	"github.com/nix-installer/nix-installer-core/internal/receipt"
)

// AppContext bundles the long-lived services wired once at startup, the way
// cmd/streamy's AppContext bundles its use cases and infrastructure.
type AppContext struct {
	Log      *logging.Logger
	Registry *action.Registry
	Store    *receipt.Store
	Sender   *diagnostics.Sender
	Settings config.Settings
	// Overridden holds the yaml names of settings overridden by environment
	// variables or command-line flags, for
	// diagnostics.Event.ConfiguredSettings. Values set only in the settings
	// file are not listed.
	Overridden []string
}

// LoggerFor derives a component-scoped logger.
func (a *AppContext) LoggerFor(component string) *logging.Logger {
	if a == nil || a.Log == nil {
		return logging.NewNop()
	}
	return a.Log.WithFields(map[string]any{"component": component})
}
