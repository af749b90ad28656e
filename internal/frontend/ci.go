package frontend

import "os"

// DetectCI reports whether the process appears to run under a CI system,
// for diagnostics.Event.IsCI. It checks the de facto standard CI env var
// that GitHub Actions, GitLab CI, CircleCI, and most others set.
func DetectCI() bool {
	v, ok := os.LookupEnv("CI")
	return ok && v != "" && v != "false" && v != "0"
}
