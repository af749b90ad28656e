package actions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/nix-installer/nix-installer-core/internal/action"
)

// TagWriteFile is WriteFile's stable receipt tag.
const TagWriteFile = "nix.write_file"

type writeFilePayload struct {
	Path             string      `json:"path"`
	Contents         string      `json:"contents"`
	Mode             os.FileMode `json:"mode"`
	PreExisted       bool        `json:"pre_existed"`
	PreviousContents string      `json:"previous_contents,omitempty"`
}

// WriteFile writes a file with exact desired contents, recording the
// pre-existing contents (if any) so Revert can restore-vs-delete (spec §3's
// explicit example of this split).
type WriteFile struct {
	action.Base
	path             string
	contents         string
	mode             os.FileMode
	preExisted       bool
	previousContents string
}

var _ action.Action = (*WriteFile)(nil)

// NewWriteFile constructs a Pending-eligible WriteFile action.
func NewWriteFile(path, contents string, mode os.FileMode) *WriteFile {
	return &WriteFile{
		Base:     action.NewBase(TagWriteFile, fmt.Sprintf("Write %s", path)),
		path:     path,
		contents: contents,
		mode:     mode,
	}
}

// Execute probes existing contents first; if they already match, it
// transitions straight to Completed without touching the file.
func (w *WriteFile) Execute(ctx context.Context) error {
	existing, err := os.ReadFile(w.path)
	switch {
	case err == nil:
		w.preExisted = true
		w.previousContents = string(existing)
		if bytes.Equal(existing, []byte(w.contents)) {
			return w.Base.TransitionTo(action.Completed)
		}
	case os.IsNotExist(err):
		w.preExisted = false
	default:
		return fmt.Errorf("stat %s: %w", w.path, err)
	}

	if err := os.WriteFile(w.path, []byte(w.contents), w.mode); err != nil {
		return fmt.Errorf("write %s: %w", w.path, err)
	}

	return w.Base.TransitionTo(action.Completed)
}

// Revert restores the file's previous contents if it pre-existed, or
// deletes it if WriteFile created it. It tolerates the file already being
// gone.
func (w *WriteFile) Revert(ctx context.Context) error {
	if w.preExisted {
		if err := os.WriteFile(w.path, []byte(w.previousContents), w.mode); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("restore %s: %w", w.path, err)
		}
	} else {
		if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", w.path, err)
		}
	}
	return w.Base.TransitionTo(action.Reverted)
}

// Payload implements Action.
func (w *WriteFile) Payload() (json.RawMessage, error) {
	return json.Marshal(writeFilePayload{
		Path:             w.path,
		Contents:         w.contents,
		Mode:             w.mode,
		PreExisted:       w.preExisted,
		PreviousContents: w.previousContents,
	})
}

func newWriteFileFromPayload(data json.RawMessage, children []action.Child) (action.Action, error) {
	var p writeFilePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode write_file payload: %w", err)
	}
	w := NewWriteFile(p.Path, p.Contents, p.Mode)
	w.preExisted = p.PreExisted
	w.previousContents = p.PreviousContents
	return w, nil
}
