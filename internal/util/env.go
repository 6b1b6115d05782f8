package util

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// GetEnv returns the value of key or defaultVal when unset.
func GetEnv(key string, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}

	return defaultVal
}

func GetEnvAsInt(key string, defaultVal int) int {
	strVal := GetEnv(key, "")

	if val, err := strconv.Atoi(strVal); err == nil {
		return val
	}

	return defaultVal
}

func GetEnvAsBool(key string, defaultVal bool) bool {
	strVal := GetEnv(key, "")

	if val, err := strconv.ParseBool(strVal); err == nil {
		return val
	}

	return defaultVal
}

// GetEnvAsDuration parses values like "15s" or "250ms".
func GetEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	strVal := GetEnv(key, "")

	if val, err := time.ParseDuration(strVal); err == nil {
		return val
	}

	return defaultVal
}

func GetEnvAsStringArr(key string, defaultVal []string, separator ...string) []string {
	strVal := GetEnv(key, "")

	if len(strVal) == 0 {
		return defaultVal
	}

	sep := ","
	if len(separator) >= 1 {
		sep = separator[0]
	}

	parts := strings.Split(strVal, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}

// GetEnvEnum returns the value of key when it is one of allowedValues and
// defaultVal otherwise.
func GetEnvEnum(key string, defaultVal string, allowedValues []string) string {
	strVal := GetEnv(key, defaultVal)

	for _, allowed := range allowedValues {
		if strings.EqualFold(strVal, allowed) {
			return allowed
		}
	}

	log.Warn().Str("key", key).Str("value", strVal).Strs("allowed", allowedValues).Msg("Ignoring invalid env value, using default")

	return defaultVal
}
