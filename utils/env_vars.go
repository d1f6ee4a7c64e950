package utils

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

type envValue interface {
	string | int | bool | float64 | time.Duration
}

func parseEnv[T envValue](key, raw string) (T, error) {
	var out T
	var parsed any
	var err error

	switch any(out).(type) {
	case string:
		parsed = raw
	case int:
		parsed, err = strconv.Atoi(raw)
	case bool:
		parsed, err = strconv.ParseBool(raw)
	case float64:
		parsed, err = strconv.ParseFloat(raw, 64)
	case time.Duration:
		parsed, err = time.ParseDuration(raw)
	}
	if err != nil {
		return out, fmt.Errorf("environment variable %s is not valid: '%s': %w", key, raw, err)
	}
	return parsed.(T), nil
}

// GetEnv reads an optional environment variable, falling back to defaultValue when it is unset or empty.
// An unparsable value is fatal.
func GetEnv[T envValue](key string, defaultValue T) T {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue
	}
	value, err := parseEnv[T](key, raw)
	if err != nil {
		log.Fatal(err)
	}
	return value
}

func GetRequiredEnv[T envValue](key string) T {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		log.Fatalf("%s environment variable is required", key)
	}
	value, err := parseEnv[T](key, raw)
	if err != nil {
		log.Fatal(err)
	}
	return value
}
