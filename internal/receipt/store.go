package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/nix-installer/nix-installer-core/internal/action"
	"github.com/nix-installer/nix-installer-core/internal/kerrors"
	"github.com/nix-installer/nix-installer-core/internal/plan"
	"github.com/nix-installer/nix-installer-core/internal/version"
)

// DefaultPath is the well-known absolute receipt path from spec §6, the
// same on macOS and Linux.
const DefaultPath = "/nix/receipt.json"

// ErrNotFound is returned by Load when no receipt exists at the store's
// path.
var ErrNotFound = errors.New("receipt: no receipt found")

// Store implements C5. A single Store instance should be used per process;
// concurrent installer invocations are guarded by an flock-based lock file
// alongside the receipt (spec §9 "Open question, concurrent installer
// invocations", resolved here rather than left unaddressed).
type Store struct {
	path        string
	lockTimeout time.Duration
	lock        *flock.Flock
}

// NewStore constructs a Store rooted at path, with the given lock
// acquisition timeout (see Lock).
func NewStore(path string, lockTimeout time.Duration) *Store {
	if path == "" {
		path = DefaultPath
	}
	if lockTimeout <= 0 {
		lockTimeout = 10 * time.Second
	}
	return &Store{path: path, lockTimeout: lockTimeout, lock: flock.New(path + ".lock")}
}

// Path returns the receipt's absolute path.
func (s *Store) Path() string { return s.path }

// Exists reports whether a receipt is currently present, the signal the
// front-end uses to refuse a fresh install without an explicit override
// (spec §5 "Receipt file").
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Lock acquires the single-writer lock for the receipt directory, waiting
// up to the store's configured timeout. The returned func releases it.
func (s *Store) Lock(ctx context.Context) (func(), error) {
	lctx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	ok, err := s.lock.TryLockContext(lctx, 100*time.Millisecond)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("acquire receipt lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("acquire receipt lock: timed out after %s; another installer invocation may be in progress", s.lockTimeout)
	}
	return func() { _ = s.lock.Unlock() }, nil
}

// Save atomically persists p's current state: serialize to a temp file in
// the receipt's directory, fsync, rename over the canonical path, fsync the
// directory (§4.5 "Write").
func (s *Store) Save(p *plan.Plan) error {
	doc, err := Snapshot(p)
	if err != nil {
		return kerrors.NewReceiptIO("snapshot plan", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return kerrors.NewReceiptIO("marshal receipt", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return kerrors.NewReceiptIO("create receipt directory", err)
	}

	tmp, err := os.CreateTemp(dir, ".receipt-*.tmp")
	if err != nil {
		return kerrors.NewReceiptIO("create temp receipt", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return kerrors.NewReceiptIO("write temp receipt", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return kerrors.NewReceiptIO("fsync temp receipt", err)
	}
	if err := tmp.Close(); err != nil {
		return kerrors.NewReceiptIO("close temp receipt", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return kerrors.NewReceiptIO("rename receipt into place", err)
	}

	if dirHandle, err := os.Open(dir); err == nil {
		_ = dirHandle.Sync()
		_ = dirHandle.Close()
	}

	return nil
}

// Load reads and deserializes the receipt, rejecting one produced by an
// incompatible installer version (§4.5 "Schema check", §7 VersionMismatch).
func (s *Store) Load(reg *action.Registry) (*plan.Plan, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, kerrors.NewReceiptIO("read receipt", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, kerrors.NewReceiptIO("parse receipt", err)
	}

	compatible, err := version.CompatibleWithReceipt(doc.Version, version.Current)
	if err != nil {
		return nil, kerrors.NewReceiptIO("parse receipt version", err)
	}
	if !compatible {
		return nil, kerrors.NewVersionMismatch(doc.Version, version.Current)
	}

	p, err := Load(&doc, reg)
	if err != nil {
		return nil, kerrors.NewReceiptIO("reconstruct plan", err)
	}
	return p, nil
}

// Delete removes the receipt file. Called only after a fully successful
// revert (§4.5 "Delete").
func (s *Store) Delete() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return kerrors.NewReceiptIO("delete receipt", err)
	}
	return nil
}
