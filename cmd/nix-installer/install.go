package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nix-installer/nix-installer-core/internal/diagnostics"
	"github.com/nix-installer/nix-installer-core/internal/frontend"
	"github.com/nix-installer/nix-installer-core/internal/kerrors"
	"github.com/nix-installer/nix-installer-core/internal/progress"
	"github.com/nix-installer/nix-installer-core/internal/revert"
)

// installOptions are the flags specific to "install" (spec §6 "install
// [PLANNER] [opts]" / "install --no-confirm").
type installOptions struct {
	plan           planOptions
	noConfirm      bool
	autoRevert     bool
	concurrency    int
	refuseExisting bool
}

func newInstallCmd(flags *rootFlags, build func(*rootFlags) (*AppContext, error)) *cobra.Command {
	opts := installOptions{autoRevert: true, refuseExisting: true}

	cmd := &cobra.Command{
		Use:   "install [PLANNER]",
		Short: "Plan, confirm, and execute a Nix install",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := build(flags)
			if err != nil {
				return err
			}

			var plannerName string
			if len(args) == 1 {
				plannerName = args[0]
			}

			return runInstall(cmd, app, plannerName, opts)
		},
	}

	cmd.Flags().StringVar(&opts.plan.nixTarballURL, "nix-tarball-url", "", "URL of the Nix release tarball")
	cmd.Flags().StringVar(&opts.plan.nixTarballSHA256, "nix-tarball-sha256", "", "Expected sha256 of the Nix release tarball")
	cmd.Flags().BoolVar(&opts.noConfirm, "no-confirm", false, "Skip the interactive confirmation gate")
	cmd.Flags().BoolVar(&opts.autoRevert, "auto-revert", true, "In a non-interactive session, attempt a best-effort revert on execute failure (interactive sessions prompt instead)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "Bound on independent-child parallelism (0 = number of hardware threads)")
	cmd.Flags().BoolVar(&opts.refuseExisting, "refuse-existing", true, "Refuse to install when a receipt already exists (spec §5)")

	return cmd
}

func runInstall(cmd *cobra.Command, app *AppContext, plannerName string, opts installOptions) error {
	log := app.LoggerFor("install")

	if opts.refuseExisting && app.Store.Exists() {
		return fmt.Errorf("a receipt already exists at %s; a prior install may be in progress or incomplete (uninstall first, or pass --refuse-existing=false)", app.Store.Path())
	}

	p, err := buildPlan(cmd, app, plannerName, opts.plan)
	if err != nil {
		return err
	}

	checker := frontend.HasRootPrivilege
	if escalated, err := frontend.EnsurePrivilege(p, app.Settings, checker, os.Args[1:]); err != nil {
		return fmt.Errorf("privilege escalation: %w", err)
	} else if escalated {
		return nil
	}

	ctx, stop := frontend.WatchSignals(cmd.Context(), func() { os.Exit(exitFatalBeforeRevert) })
	defer stop()

	target := frontend.Target{OSName: p.Target.OS, OSVersion: p.Target.OSVersion, Triple: p.Target.Triple}
	sink := frontend.NewDiagnosticSink(progress.NewDefault(log), app.Sender, diagnostics.ActionInstall, p.PlannerTag, app.Overridden, target, frontend.DetectCI())
	sink.EmitStart(ctx)

	interactive := frontend.IsInteractive(os.Stdin)
	err = frontend.Install(ctx, cmd.OutOrStdout(), cmd.InOrStdin(), interactive, opts.noConfirm || app.Settings.NoConfirm, p, app.Store, sink, opts.concurrency)
	if err == nil {
		return nil
	}

	// Only ActionExecute / Cancelled failures get the revert offer (spec
	// §4.4 "Failure-during-install -> offer revert"); ConfirmationDeclined,
	// ReceiptIO, and other kinds are fatal as-is.
	kind, _ := kerrors.Of(err)
	if kind != kerrors.KindActionExecute && kind != kerrors.KindCancelled {
		return withExitCode(exitFatalBeforeRevert, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "installation failed: %v\n", err)

	shouldRevert := opts.autoRevert
	if interactive {
		shouldRevert, _ = frontend.Confirm(cmd.OutOrStdout(), cmd.InOrStdin(), true, false, []string{"installation failed; attempt best-effort revert?"})
	}

	if !shouldRevert {
		return withExitCode(exitRevertDeclined, err)
	}

	revertSink := frontend.NewDiagnosticSink(progress.NewDefault(log), app.Sender, diagnostics.ActionInstall, p.PlannerTag, app.Overridden, target, frontend.DetectCI())
	reverter := revert.New(app.Store, revertSink)
	if revertErr := reverter.Revert(context.Background(), p); revertErr != nil {
		return withExitCode(exitFatalBeforeRevert, fmt.Errorf("install failed (%w); revert also failed: %v", err, revertErr))
	}

	return withExitCode(exitRevertedAfterFailure, err)
}
