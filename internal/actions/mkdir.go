// Package actions is the reference action catalogue referenced only through
// its interfaces by the core (spec §1 "out of scope... specified only as an
// action implementation satisfying §4.1"). It is grounded in the idempotent
// check/apply split Streamy's plugins use (internal/plugins/copy,
// internal/plugins/command), generalized to the action.Action contract.
package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/nix-installer/nix-installer-core/internal/action"
)

// TagMkDir is MkDir's stable receipt tag.
const TagMkDir = "nix.mkdir"

// mkDirPayload is MkDir's serialized form: the desired state plus enough
// history to revert correctly (§3 "write file action stores... whether the
// file pre-existed so revert can distinguish delete-vs-restore", the same
// pattern applies to directories).
type mkDirPayload struct {
	Path       string      `json:"path"`
	Mode       os.FileMode `json:"mode"`
	PreExisted bool        `json:"pre_existed"`
}

// MkDir creates a directory (and any missing parents), recording whether it
// pre-existed so Revert only removes what it created.
type MkDir struct {
	action.Base
	path       string
	mode       os.FileMode
	preExisted bool
}

var _ action.Action = (*MkDir)(nil)

// NewMkDir constructs a Pending-eligible MkDir action.
func NewMkDir(path string, mode os.FileMode) *MkDir {
	return &MkDir{
		Base: action.NewBase(TagMkDir, fmt.Sprintf("Create directory %s", path)),
		path: path,
		mode: mode,
	}
}

// Execute implements the idempotence rule: if path already exists as a
// directory, it transitions straight to Completed without side effects.
func (m *MkDir) Execute(ctx context.Context) error {
	info, err := os.Stat(m.path)
	switch {
	case err == nil && info.IsDir():
		m.preExisted = true
	case err == nil:
		return fmt.Errorf("%s exists and is not a directory", m.path)
	case os.IsNotExist(err):
		m.preExisted = false
		if err := os.MkdirAll(m.path, m.mode); err != nil {
			return fmt.Errorf("mkdir %s: %w", m.path, err)
		}
	default:
		return fmt.Errorf("stat %s: %w", m.path, err)
	}

	return m.Base.TransitionTo(action.Completed)
}

// Revert removes the directory only if MkDir created it and it is still
// empty; a pre-existing directory, or one populated by later actions, is
// left alone (revert tolerance rule, §4.1).
func (m *MkDir) Revert(ctx context.Context) error {
	if !m.preExisted {
		entries, err := os.ReadDir(m.path)
		if err == nil && len(entries) == 0 {
			if err := os.Remove(m.path); err != nil {
				return fmt.Errorf("remove directory %s: %w", m.path, err)
			}
		} else if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("read directory %s: %w", m.path, err)
		}
	}
	return m.Base.TransitionTo(action.Reverted)
}

// Payload implements Action.
func (m *MkDir) Payload() (json.RawMessage, error) {
	return json.Marshal(mkDirPayload{Path: m.path, Mode: m.mode, PreExisted: m.preExisted})
}

func newMkDirFromPayload(data json.RawMessage, children []action.Child) (action.Action, error) {
	var p mkDirPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode mkdir payload: %w", err)
	}
	m := NewMkDir(p.Path, p.Mode)
	m.preExisted = p.PreExisted
	return m, nil
}
