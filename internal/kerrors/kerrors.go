// Package kerrors implements the closed error taxonomy from spec §7. It is
// kinds, not types in the usual Go sense of "one struct per failure site":
// every failure in the installer kernel is classified into exactly one of
// these seven kinds, the way Streamy's pkg/errors classified every failure
// into ParseError/ValidationError/ExecutionError/PluginError. The kernel
// never invents an eighth kind.
package kerrors

import (
	"errors"
	"fmt"
)

// Kind is one of the seven error categories from spec §7.
type Kind string

const (
	// KindPlan: the planner could not construct a plan. Fatal; no receipt
	// is written.
	KindPlan Kind = "PlanError"
	// KindConfirmationDeclined: the operator said no. Fatal; no receipt.
	KindConfirmationDeclined Kind = "ConfirmationDeclined"
	// KindActionExecute: an action failed during execute. Triggers
	// offer-to-revert.
	KindActionExecute Kind = "ActionExecute"
	// KindActionRevert: an action failed during revert. Collected, not
	// fatal to the revert loop.
	KindActionRevert Kind = "ActionRevert"
	// KindReceiptIO: could not read/write/parse a receipt. Fatal to the
	// current operation; on-disk state is left as-is.
	KindReceiptIO Kind = "ReceiptIO"
	// KindVersionMismatch: receipt produced by an incompatible installer
	// version. Refuse rather than guess.
	KindVersionMismatch Kind = "VersionMismatch"
	// KindCancelled: cooperative cancellation. Treated like ActionExecute
	// for the purposes of the revert offer.
	KindCancelled Kind = "Cancelled"
)

// Error is the single error type backing every kind in the taxonomy. The
// kernel's callers switch on Kind rather than on concrete Go types, which
// keeps the taxonomy closed: adding a new failure mode means picking one of
// the seven kinds, not defining a new exported type.
type Error struct {
	Kind      Kind
	ActionTag string // populated for KindActionExecute / KindActionRevert
	Err       error
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.ActionTag != "":
		return fmt.Sprintf("%s [%s]: %v", e.Kind, e.ActionTag, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is lets errors.Is match on Kind alone via a sentinel constructed with the
// same kind and no cause, e.g. errors.Is(err, kerrors.Sentinel(KindCancelled)).
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

// Sentinel returns a bare *Error of the given kind, suitable for use with
// errors.Is.
func Sentinel(k Kind) error { return &Error{Kind: k} }

// NewPlan wraps a planner failure.
func NewPlan(err error) error { return &Error{Kind: KindPlan, Err: err} }

// NewConfirmationDeclined reports the operator declining the confirmation
// gate.
func NewConfirmationDeclined() error {
	return &Error{Kind: KindConfirmationDeclined, Err: errors.New("operator declined confirmation")}
}

// NewActionExecute wraps an execute() failure for the named action tag.
func NewActionExecute(tag string, err error) error {
	return &Error{Kind: KindActionExecute, ActionTag: tag, Err: err}
}

// NewActionRevert wraps a revert() failure for the named action tag.
func NewActionRevert(tag string, err error) error {
	return &Error{Kind: KindActionRevert, ActionTag: tag, Err: err}
}

// NewReceiptIO wraps a receipt read/write/parse failure.
func NewReceiptIO(op string, err error) error {
	return &Error{Kind: KindReceiptIO, Err: fmt.Errorf("%s: %w", op, err)}
}

// NewVersionMismatch reports an incompatible receipt version.
func NewVersionMismatch(receiptVersion, installerVersion string) error {
	return &Error{
		Kind: KindVersionMismatch,
		Err:  fmt.Errorf("receipt was produced by installer version %s, incompatible with running version %s", receiptVersion, installerVersion),
	}
}

// NewCancelled wraps a cooperative-cancellation error.
func NewCancelled(err error) error {
	if err == nil {
		err = errors.New("cancelled")
	}
	return &Error{Kind: KindCancelled, Err: err}
}

// Of reports the Kind of err, if err (or something it wraps) is a *Error.
func Of(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
