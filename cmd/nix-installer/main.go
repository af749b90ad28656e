// Command nix-installer is the CLI front-end (C7) over the transactional
// installer kernel: it assembles a Plan via a planner, gates it behind
// confirmation and privilege escalation, drives it with the Executor, and
// on failure offers a best-effort Reverter run. See internal/action,
// internal/plan, internal/executor, internal/receipt, internal/revert,
// internal/frontend, internal/diagnostics for the kernel itself.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/nix-installer/nix-installer-core/internal/action"
	"github.com/nix-installer/nix-installer-core/internal/actions"
	"github.com/nix-installer/nix-installer-core/internal/config"
	"github.com/nix-installer/nix-installer-core/internal/diagnostics"
	"github.com/nix-installer/nix-installer-core/internal/logging"
	"github.com/nix-installer/nix-installer-core/internal/planner"
	"github.com/nix-installer/nix-installer-core/internal/receipt"
)

func main() {
	flags := &rootFlags{}
	cmd := newRootCmd(flags, buildApp)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

// buildApp wires the long-lived services every subcommand needs, the way
// cmd/streamy/main.go wires its AppContext before constructing the root
// command. It is deferred until a subcommand actually runs (rather than
// being built eagerly in main) so flag values are final by the time
// settings resolve.
func buildApp(flags *rootFlags) (*AppContext, error) {
	result, err := config.Load(flags.settingsFile)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	settings := result.Settings
	overridden := result.Overridden

	if flags.diagnosticEndpoint != "" {
		settings.DiagnosticEndpoint = flags.diagnosticEndpoint
		overridden = append(overridden, "diagnostic_endpoint")
	}
	if flags.lockTimeout > 0 {
		settings.LockTimeoutSeconds = flags.lockTimeout
		overridden = append(overridden, "lock_timeout_seconds")
	}

	level := "info"
	if flags.verbose {
		level = "debug"
	}
	log, err := logging.New(logging.Options{Level: level, JSON: flags.logJSON, Reporter: "nix-installer"})
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	reg := action.NewRegistry()
	if err := actions.Register(reg); err != nil {
		return nil, fmt.Errorf("register action catalogue: %w", err)
	}
	if err := planner.Register(reg); err != nil {
		return nil, fmt.Errorf("register planner composites: %w", err)
	}

	store := receipt.NewStore(receipt.DefaultPath, time.Duration(settings.LockTimeoutSeconds)*time.Second)
	sender := diagnostics.NewSender(settings.DiagnosticEndpoint, diagnostics.DefaultTimeout, log)

	return &AppContext{
		Log:        log,
		Registry:   reg,
		Store:      store,
		Sender:     sender,
		Settings:   settings,
		Overridden: overridden,
	}, nil
}
