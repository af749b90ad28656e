package frontend

import (
	"context"
	"fmt"

	"github.com/nix-installer/nix-installer-core/internal/action"
	"github.com/nix-installer/nix-installer-core/internal/progress"
	"github.com/nix-installer/nix-installer-core/internal/receipt"
	"github.com/nix-installer/nix-installer-core/internal/revert"
)

// Uninstall implements spec §4.6's "Uninstall entry": locate the receipt,
// deserialize it against reg, and hand the reconstructed plan to a Reverter.
// receipt.ErrNotFound is returned unwrapped so callers can report "nothing
// to uninstall" distinctly from a genuine I/O failure.
func Uninstall(ctx context.Context, store *receipt.Store, reg *action.Registry, sink progress.Sink) error {
	if !store.Exists() {
		return receipt.ErrNotFound
	}

	unlock, err := store.Lock(ctx)
	if err != nil {
		return fmt.Errorf("lock receipt: %w", err)
	}
	defer unlock()

	p, err := store.Load(reg)
	if err != nil {
		return err
	}

	reverter := revert.New(store, sink)
	return reverter.Revert(ctx, p)
}
