package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newPlanCmd implements the review-only "plan" command: print a plan's
// describe() output without executing it, since the confirmation gate
// always describes a plan before running it (spec §4.6). Surfacing that
// step on its own is the natural CLI extension the pack's plan-before-apply
// tools (terraform, kubeadm) expose.
func newPlanCmd(flags *rootFlags, build func(*rootFlags) (*AppContext, error)) *cobra.Command {
	var opts planOptions

	cmd := &cobra.Command{
		Use:   "plan [PLANNER]",
		Short: "Print the install plan without executing it",
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

			p, err := buildPlan(cmd, app, plannerName, opts)
			if err != nil {
				return err
			}

			for _, line := range p.Describe() {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.nixTarballURL, "nix-tarball-url", "", "URL of the Nix release tarball")
	cmd.Flags().StringVar(&opts.nixTarballSHA256, "nix-tarball-sha256", "", "Expected sha256 of the Nix release tarball")

	return cmd
}
