// Package frontend implements C7: the pieces of the installer that sit
// above the action framework and are never themselves reverted (privilege
// escalation, the confirmation gate, signal-driven cancellation policy, and
// diagnostic emission hooks, spec §4.6).
package frontend

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// IsInteractive reports whether f is a terminal, the way
// cmd/streamy/apply.go decides NonInteractive via term.IsTerminal.
func IsInteractive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Confirm implements spec §4.6's confirmation gate: in an interactive
// session it prints the plan description and requires an explicit "y"
// (default No); in a non-interactive session noConfirm must already be
// true, or the operation is refused outright.
func Confirm(out io.Writer, in io.Reader, interactive bool, noConfirm bool, description []string) (bool, error) {
	for _, line := range description {
		fmt.Fprintln(out, line)
	}

	if !interactive {
		if !noConfirm {
			return false, fmt.Errorf("refusing to proceed without --no-confirm in a non-interactive session")
		}
		return true, nil
	}

	if noConfirm {
		return true, nil
	}

	fmt.Fprint(out, "Proceed? [y/N] ")
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
