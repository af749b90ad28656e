package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nix-installer/nix-installer-core/internal/diagnostics"
	"github.com/nix-installer/nix-installer-core/internal/frontend"
	"github.com/nix-installer/nix-installer-core/internal/progress"
	"github.com/nix-installer/nix-installer-core/internal/receipt"
)

// newUninstallCmd implements spec §6's "uninstall" command: locate the
// receipt, deserialize it, hand it to the Reverter (§4.6 "Uninstall entry").
func newUninstallCmd(flags *rootFlags, build func(*rootFlags) (*AppContext, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Revert a previous install using its receipt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := build(flags)
			if err != nil {
				return err
			}

			log := app.LoggerFor("uninstall")
			sink := frontend.NewDiagnosticSink(progress.NewDefault(log), app.Sender, diagnostics.ActionUninstall, "", app.Overridden, frontend.Target{}, frontend.DetectCI())
			sink.EmitStart(cmd.Context())

			err = frontend.Uninstall(cmd.Context(), app.Store, app.Registry, sink)
			if errors.Is(err, receipt.ErrNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "no receipt found; nothing to uninstall")
				return nil
			}
			return err
		},
	}

	return cmd
}
