package frontend

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// WatchSignals implements spec §4.3's cancellation policy: the first
// SIGINT/SIGTERM cancels ctx cooperatively, so the Executor stops scheduling
// new work and lets in-flight actions finish; a second signal within the
// process lifetime calls forceAbort for an immediate, non-cooperative exit.
// It returns a stop function that should be deferred by the caller.
func WatchSignals(parent context.Context, forceAbort func()) (ctx context.Context, stop func()) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
		case <-done:
			return
		}
		cancel()

		select {
		case <-sigCh:
			forceAbort()
		case <-done:
		}
	}()

	return ctx, func() {
		close(done)
		signal.Stop(sigCh)
		cancel()
	}
}
