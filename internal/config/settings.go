// Package config models the planner settings the front-end assembles before
// building a plan: defaults, an optional YAML settings file, environment
// overrides, and struct validation, in that precedence order (lowest to
// highest). It replaces Streamy's YAML pipeline-step config, which modeled a
// step DAG rather than planner settings, but keeps Streamy's validation
// idiom: a single process-wide *validator.Validate built once, struct tags
// driving every rule (internal/config/validator_instance.go).
package config

// Settings are the tunables a planner consults while building a Plan (spec
// §4.2 "planner kind... settings it used"). Every field has an environment
// variable form under the NIX_INSTALLER_ prefix (spec §6 "Environment
// overrides"); see env.go.
type Settings struct {
	// StoreDir is the root of the managed store, e.g. /nix.
	StoreDir string `yaml:"store_dir" env:"STORE_DIR" validate:"required"`

	// BuildUser is the name of the build user (or build user group prefix)
	// created by CreateUser actions.
	BuildUser string `yaml:"build_user" env:"BUILD_USER" validate:"required,build_user_name"`

	// BuildUserCount is how many build users the planner provisions.
	BuildUserCount int `yaml:"build_user_count" env:"BUILD_USER_COUNT" validate:"required,min=1,max=256"`

	// BuildGID is the shared group id for all build users.
	BuildGID int `yaml:"build_gid" env:"BUILD_GID" validate:"required,min=1"`

	// FirstBuildUID is the starting uid of the build user range; build users
	// are allocated FirstBuildUID..FirstBuildUID+BuildUserCount-1.
	FirstBuildUID int `yaml:"first_build_uid" env:"FIRST_BUILD_UID" validate:"required,min=1"`

	// DiagnosticEndpoint receives best-effort telemetry; empty disables it
	// entirely (spec §8 property 6).
	DiagnosticEndpoint string `yaml:"diagnostic_endpoint" env:"DIAGNOSTIC_ENDPOINT" validate:"omitempty,url"`

	// NoConfirm skips the interactive confirmation gate (spec §4.6); it is
	// required in non-interactive sessions.
	NoConfirm bool `yaml:"no_confirm" env:"NO_CONFIRM"`

	// LockTimeoutSeconds bounds how long install/uninstall wait to acquire
	// the receipt lock before giving up (resolves spec §9's open question on
	// concurrent invocations).
	LockTimeoutSeconds int `yaml:"lock_timeout_seconds" env:"LOCK_TIMEOUT_SECONDS" validate:"required,min=1,max=3600"`

	// ElevationHelper is the command used to re-exec under elevated
	// privileges, e.g. "sudo" or "doas" (spec §4.6 "Privilege check").
	ElevationHelper string `yaml:"elevation_helper" env:"ELEVATION_HELPER" validate:"required"`
}

// Default returns the settings a fresh install uses absent any file or
// environment override.
func Default() Settings {
	return Settings{
		StoreDir:           "/nix",
		BuildUser:          "nixbld",
		BuildUserCount:     32,
		BuildGID:           30000,
		FirstBuildUID:      30001,
		DiagnosticEndpoint: "",
		NoConfirm:          false,
		LockTimeoutSeconds: 30,
		ElevationHelper:    "sudo",
	}
}
