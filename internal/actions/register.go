package actions

import "github.com/nix-installer/nix-installer-core/internal/action"

// Register adds every reference action kind's factory to reg. Planners and
// the receipt loader share one registry instance built this way.
func Register(reg *action.Registry) error {
	factories := map[string]action.Factory{
		TagMkDir:        newMkDirFromPayload,
		TagWriteFile:    newWriteFileFromPayload,
		TagCreateUser:   newCreateUserFromPayload,
		TagSystemdUnit:  newSystemdUnitFromPayload,
		TagLaunchdUnit:  newLaunchdUnitFromPayload,
		TagFetchExtract: newFetchExtractFromPayload,
	}

	for tag, f := range factories {
		if err := reg.Register(tag, f); err != nil {
			return err
		}
	}
	return nil
}
