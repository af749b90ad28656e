package planner

import "github.com/nix-installer/nix-installer-core/internal/action"

// Register adds every composite action kind the reference planners
// introduce (currently just buildUsersComposite) to reg, alongside
// internal/actions.Register for the leaves.
func Register(reg *action.Registry) error {
	return reg.Register(TagBuildUsers, newBuildUsersCompositeFromPayload)
}
