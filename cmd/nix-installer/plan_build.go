package main

import (
	"github.com/spf13/cobra"

	"github.com/nix-installer/nix-installer-core/internal/kerrors"
	"github.com/nix-installer/nix-installer-core/internal/plan"
)

// buildPlan resolves a planner and runs it, wrapping any failure as a
// kerrors.KindPlan error (spec §7 "PlanError... the planner could not
// construct a plan").
func buildPlan(cmd *cobra.Command, app *AppContext, plannerName string, opts planOptions) (*plan.Plan, error) {
	pl, err := selectPlanner(plannerName, app.Settings.DiagnosticEndpoint, opts)
	if err != nil {
		return nil, kerrors.NewPlan(err)
	}

	settingsMap := map[string]any{
		"store_dir":        app.Settings.StoreDir,
		"build_user":       app.Settings.BuildUser,
		"build_user_count": float64(app.Settings.BuildUserCount),
		"build_gid":        float64(app.Settings.BuildGID),
		"first_build_uid":  float64(app.Settings.FirstBuildUID),
	}

	p, err := pl.Plan(cmd.Context(), settingsMap)
	if err != nil {
		return nil, kerrors.NewPlan(err)
	}
	return p, nil
}
