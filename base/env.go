package base

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvVar reads an environment variable and falls back to a default when unset.
// It returns the resolved string value.
func EnvVar(key string, defaultValue string) string {
	if val, present := os.LookupEnv(key); present {
		return val
	}
	return defaultValue
}

// EnvVarFirst reads the first set variable of keys, so renamed variables keep working.
func EnvVarFirst(defaultValue string, keys ...string) string {
	for _, key := range keys {
		if val, present := os.LookupEnv(key); present {
			return val
		}
	}
	return defaultValue
}

// EnvVarAsInt parses an environment variable into an integer with a fallback for invalid values.
// It returns the parsed integer or the default value when parsing fails.
func EnvVarAsInt(key string, defaultValue int) int {
	if val, present := os.LookupEnv(key); present {
		res, err := strconv.Atoi(val)
		if err != nil {
			slog.Warn("env var is not an integer, using default", "key", key, "value", val, "default", defaultValue)
			return defaultValue
		}
		return res
	}
	return defaultValue
}

// EnvVarAsBool parses an environment variable into a boolean with a fallback for invalid values.
// It returns the parsed boolean or the default value when parsing fails.
func EnvVarAsBool(key string, defaultValue bool) bool {
	if val, present := os.LookupEnv(key); present {
		res, err := strconv.ParseBool(val)
		if err != nil {
			slog.Warn("env var is not a boolean, using default", "key", key, "value", val, "default", defaultValue)
			return defaultValue
		}
		return res
	}
	return defaultValue
}

// EnvVarAsDuration parses an environment variable like "30s" or "2m".
// Plain integers are read as seconds.
func EnvVarAsDuration(key string, defaultValue time.Duration) time.Duration {
	if val, present := os.LookupEnv(key); present {
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
		res, err := time.ParseDuration(val)
		if err != nil {
			slog.Warn("env var is not a duration, using default", "key", key, "value", val, "default", defaultValue)
			return defaultValue
		}
		return res
	}
	return defaultValue
}

// EnvVarAsStringSlice splits a comma-separated environment variable into trimmed values.
// It returns the non-empty entries in order, or an empty slice when unset.
func EnvVarAsStringSlice(key string) []string {
	var result []string
	if val, present := os.LookupEnv(key); present {
		for _, v := range strings.Split(val, ",") {
			value := strings.TrimSpace(v)
			if value != "" {
				result = append(result, value)
			}
		}
	}
	return result
}
