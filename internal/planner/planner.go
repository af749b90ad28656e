// Package planner implements the reference Planner collaborators the core
// consumes only through internal/plan.Planner (spec §1 "Planners... specified
// only as something that returns a Plan"). Two concrete planners are
// provided, linux (systemd) and darwin (launchd), both assembling the
// internal/actions catalogue.
package planner

import (
	"fmt"

	"github.com/nix-installer/nix-installer-core/internal/action"
	"github.com/nix-installer/nix-installer-core/internal/actions"
	"github.com/nix-installer/nix-installer-core/internal/config"
)

// buildUserActions returns one CreateUser per configured build user, as an
// independent child group: build users are mutually commutative to create
// (spec §5), so the executor may provision them concurrently.
func buildUserActions(s config.Settings) []action.Child {
	children := make([]action.Child, 0, s.BuildUserCount)
	for i := 0; i < s.BuildUserCount; i++ {
		username := fmt.Sprintf("%s%d", s.BuildUser, i+1)
		uid := s.FirstBuildUID + i
		a := actions.NewCreateUser(username, uid, s.BuildGID, "/usr/sbin/nologin", "/var/empty")
		children = append(children, action.Child{Action: a, Independent: true})
	}
	return children
}

// settingsFromMap decodes a plan.Planner's raw settings argument, falling
// back to config.Default() for anything unset. Planners are invoked with
// map[string]any (spec §4.2's "planner kind... settings it used" needs to
// serialize into the receipt), so the front-end marshals config.Settings
// into a map before calling Plan.
func settingsFromMap(raw map[string]any) config.Settings {
	s := config.Default()
	if raw == nil {
		return s
	}
	if v, ok := raw["store_dir"].(string); ok && v != "" {
		s.StoreDir = v
	}
	if v, ok := raw["build_user"].(string); ok && v != "" {
		s.BuildUser = v
	}
	if v, ok := raw["build_user_count"].(float64); ok && v > 0 {
		s.BuildUserCount = int(v)
	}
	if v, ok := raw["build_gid"].(float64); ok && v > 0 {
		s.BuildGID = int(v)
	}
	if v, ok := raw["first_build_uid"].(float64); ok && v > 0 {
		s.FirstBuildUID = int(v)
	}
	return s
}
