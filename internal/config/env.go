package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
)

// EnvPrefix is prepended to every Settings field's env tag to form the
// actual environment variable name, e.g. "store_dir" -> NIX_INSTALLER_STORE_DIR.
const EnvPrefix = "NIX_INSTALLER_"

// ApplyEnv overrides fields of s from environment variables named
// EnvPrefix+<env tag>. It returns the yaml names of every field that was
// overridden, for use as diagnostics.Event.ConfiguredSettings (names only,
// never values, per spec §4.7).
func ApplyEnv(s *Settings, lookup func(string) (string, bool)) ([]string, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	var overridden []string

	v := reflect.ValueOf(s).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		envSuffix := field.Tag.Get("env")
		if envSuffix == "" {
			continue
		}

		raw, ok := lookup(EnvPrefix + envSuffix)
		if !ok {
			continue
		}

		fv := v.Field(i)
		if err := setFieldFromString(fv, raw); err != nil {
			return overridden, fmt.Errorf("env %s%s: %w", EnvPrefix, envSuffix, err)
		}

		if yamlName := field.Tag.Get("yaml"); yamlName != "" {
			overridden = append(overridden, yamlName)
		}
	}

	return overridden, nil
}

func setFieldFromString(fv reflect.Value, raw string) error {
	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		fv.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		fv.SetBool(b)
	default:
		return fmt.Errorf("unsupported field kind %s", fv.Kind())
	}
	return nil
}
