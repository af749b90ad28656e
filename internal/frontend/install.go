package frontend

import (
	"context"
	"fmt"
	"io"

	"github.com/nix-installer/nix-installer-core/internal/executor"
	"github.com/nix-installer/nix-installer-core/internal/kerrors"
	"github.com/nix-installer/nix-installer-core/internal/plan"
	"github.com/nix-installer/nix-installer-core/internal/progress"
	"github.com/nix-installer/nix-installer-core/internal/receipt"
)

// Install runs the confirmation gate and, on approval, drives p to
// completion with an Executor, persisting to store after every terminal
// transition (spec §4.3, §4.6).
func Install(ctx context.Context, out io.Writer, in io.Reader, interactive, noConfirm bool, p *plan.Plan, store *receipt.Store, sink progress.Sink, concurrency int) error {
	ok, err := Confirm(out, in, interactive, noConfirm, p.Describe())
	if err != nil {
		return err
	}
	if !ok {
		return kerrors.NewConfirmationDeclined()
	}

	unlock, err := store.Lock(ctx)
	if err != nil {
		return fmt.Errorf("lock receipt: %w", err)
	}
	defer unlock()

	exec := executor.New(store, sink, concurrency)
	return exec.Execute(ctx, p)
}
