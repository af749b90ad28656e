package frontend

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/nix-installer/nix-installer-core/internal/config"
	"github.com/nix-installer/nix-installer-core/internal/plan"
)

// PrivilegeChecker reports whether the current process already holds the
// privileges a plan requires. Production builds check os.Geteuid(); tests
// can substitute a fake.
type PrivilegeChecker func() bool

// HasRootPrivilege is the production PrivilegeChecker.
func HasRootPrivilege() bool { return os.Geteuid() == 0 }

// EnsurePrivilege implements spec §4.6's "Privilege check": if p requires
// privileged operations and the process lacks them, it re-executes itself
// under settings.ElevationHelper, preserving argv and the env vars that
// encode configured settings, and returns (true, nil) in the parent after a
// successful re-exec so the caller can exit without doing real work twice.
// The escalation path runs before the plan exists in spec's own words, so
// this takes the already-built plan only to decide IF escalation is needed.
func EnsurePrivilege(p *plan.Plan, settings config.Settings, checker PrivilegeChecker, args []string) (escalated bool, err error) {
	if !p.RequiresPrivilege() {
		return false, nil
	}
	if checker() {
		return false, nil
	}

	helper, err := exec.LookPath(settings.ElevationHelper)
	if err != nil {
		return false, fmt.Errorf("elevation helper %q not found: %w", settings.ElevationHelper, err)
	}

	self, err := os.Executable()
	if err != nil {
		return false, fmt.Errorf("resolve own executable: %w", err)
	}

	cmdArgs := append([]string{self}, args...)
	cmd := exec.Command(helper, cmdArgs...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = allowListedEnv(os.Environ())

	if err := cmd.Run(); err != nil {
		return true, fmt.Errorf("re-exec under %s: %w", settings.ElevationHelper, err)
	}
	return true, nil
}

// baseEnvAllowList are variables a re-exec needs regardless of configured
// settings, so the helper and the re-invoked binary can still resolve paths
// and a home directory.
var baseEnvAllowList = []string{"PATH", "HOME", "LANG", "TERM"}

// allowListedEnv keeps only the minimal base environment plus every
// NIX_INSTALLER_-prefixed variable (spec §4.6: "preserving environment
// variables that encode configured settings"), so escalation never leaks
// unrelated process environment into the privileged child.
func allowListedEnv(environ []string) []string {
	lookup := make(map[string]string, len(environ))
	for _, kv := range environ {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				lookup[kv[:i]] = kv[i+1:]
				break
			}
		}
	}

	out := make([]string, 0, len(baseEnvAllowList))
	for _, name := range baseEnvAllowList {
		if v, ok := lookup[name]; ok {
			out = append(out, name+"="+v)
		}
	}
	for k, v := range lookup {
		if len(k) >= len(config.EnvPrefix) && k[:len(config.EnvPrefix)] == config.EnvPrefix {
			out = append(out, k+"="+v)
		}
	}
	return out
}
