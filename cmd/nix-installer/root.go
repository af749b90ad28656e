package main

import (
	"github.com/spf13/cobra"
)

// rootFlags are the persistent flags every subcommand inherits, mirroring
// cmd/streamy's rootFlags (--verbose, --dry-run) generalized to this
// domain's settings layer.
type rootFlags struct {
	settingsFile       string
	diagnosticEndpoint string
	lockTimeout        int
	verbose            bool
	logJSON            bool
}

func newRootCmd(flags *rootFlags, build func(*rootFlags) (*AppContext, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "nix-installer",
		Short:         "Install or uninstall the Nix package manager via a planned, reviewable, journaled, reversible install kernel",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.settingsFile, "settings", "", "Path to a YAML settings file")
	cmd.PersistentFlags().StringVar(&flags.diagnosticEndpoint, "diagnostic-endpoint", "", "Override the diagnostics POST endpoint; an empty value does not override an endpoint set in the settings file or environment (telemetry is off when none is set)")
	cmd.PersistentFlags().IntVar(&flags.lockTimeout, "lock-timeout", 0, "Seconds to wait for the receipt lock before giving up (0 = use settings default)")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug-level logging")
	cmd.PersistentFlags().BoolVar(&flags.logJSON, "log-json", false, "Emit logs as JSON instead of human-readable text")

	cmd.AddCommand(newInstallCmd(flags, build))
	cmd.AddCommand(newUninstallCmd(flags, build))
	cmd.AddCommand(newPlanCmd(flags, build))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
