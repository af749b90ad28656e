package config

import (
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	buildUserNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_-]{0,30}$`)
)

// validatorInstance configures and returns the process-wide validator used
// across the config package, mirroring Streamy's validator_instance.go:
// build once, register custom rules once, reuse everywhere.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("build_user_name", func(fl validator.FieldLevel) bool {
			return buildUserNamePattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// GetValidator returns the configured validator instance for use outside the
// config package.
func GetValidator() *validator.Validate {
	return validatorInstance()
}
