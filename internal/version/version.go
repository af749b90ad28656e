// Package version defines the installer's own version and the receipt
// compatibility window (spec §7 VersionMismatch, §9 "Open question, version
// skew"). Decision recorded in DESIGN.md: this kernel preserves
// refuse-rather-than-guess by requiring an exact major.minor match between
// the receipt and the running binary; patch versions are compatible in
// either direction.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Current is the installer version embedded in every plan this binary
// produces. Set via -ldflags at release build time in a real deployment;
// defaulted here for reproducible tests.
var Current = "0.1.0"

// Parsed is a minimal major.minor.patch split; the installer does not need
// full semver precedence semantics, only the compatibility predicate below.
type Parsed struct {
	Major, Minor, Patch int
}

// Parse splits a "X.Y.Z" string. Malformed input yields an error rather than
// a best-effort guess, matching the taxonomy's refuse-rather-than-guess
// posture.
func Parse(v string) (Parsed, error) {
	parts := strings.SplitN(v, ".", 3)
	if len(parts) < 2 {
		return Parsed{}, fmt.Errorf("version %q is not in major.minor[.patch] form", v)
	}
	var out Parsed
	var err error
	if out.Major, err = strconv.Atoi(parts[0]); err != nil {
		return Parsed{}, fmt.Errorf("version %q: invalid major: %w", v, err)
	}
	if out.Minor, err = strconv.Atoi(parts[1]); err != nil {
		return Parsed{}, fmt.Errorf("version %q: invalid minor: %w", v, err)
	}
	if len(parts) == 3 {
		if out.Patch, err = strconv.Atoi(parts[2]); err != nil {
			return Parsed{}, fmt.Errorf("version %q: invalid patch: %w", v, err)
		}
	}
	return out, nil
}

// CompatibleWithReceipt reports whether a receipt produced by receiptVersion
// may be read (and reverted) by the installer running runningVersion. The
// supported compatibility window is exact major.minor match: patch releases
// within a minor line never change the receipt schema or action payload
// shapes, but a minor bump is allowed to.
func CompatibleWithReceipt(receiptVersion, runningVersion string) (bool, error) {
	rv, err := Parse(receiptVersion)
	if err != nil {
		return false, err
	}
	cv, err := Parse(runningVersion)
	if err != nil {
		return false, err
	}
	return rv.Major == cv.Major && rv.Minor == cv.Minor, nil
}
