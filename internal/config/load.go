package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Result bundles resolved settings with the names of settings that were
// overridden by environment variables, for diagnostics reporting. Values
// set by the settings file are not listed.
type Result struct {
	Settings   Settings
	Overridden []string
}

// Load resolves settings in precedence order: built-in defaults, then an
// optional YAML file, then environment variables, then validates the
// result. filePath may be empty to skip the file layer.
func Load(filePath string) (Result, error) {
	s, err := LoadFile(filePath)
	if err != nil {
		return Result{}, err
	}

	overridden, err := ApplyEnv(&s, nil)
	if err != nil {
		return Result{}, err
	}

	if err := validatorInstance().Struct(s); err != nil {
		return Result{}, convertValidationError(err)
	}

	return Result{Settings: s, Overridden: overridden}, nil
}

func convertValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("invalid settings: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q validation", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid settings: %s", strings.Join(msgs, "; "))
}
