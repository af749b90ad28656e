package frontend

import "github.com/nix-installer/nix-installer-core/internal/kerrors"

// kindOf returns the string form of err's kerrors.Kind, or "unknown" if err
// is not one of the closed taxonomy kinds (spec §7).
func kindOf(err error) string {
	kind, ok := kerrors.Of(err)
	if !ok {
		return "unknown"
	}
	return string(kind)
}
