package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

var errEmptyList = errors.New("empty list")

// envOr parses the variable with parse. Unset, empty and unparsable values
// yield def; Validate catches values that must not silently default.
func envOr[T any](key string, def T, parse func(string) (T, error)) T {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

func envString(key, def string) string {
	return envOr(key, def, func(s string) (string, error) { return s, nil })
}

func envBool(key string, def bool) bool { return envOr(key, def, strconv.ParseBool) }

func envInt(key string, def int) int { return envOr(key, def, strconv.Atoi) }

func envDuration(key string, def time.Duration) time.Duration {
	return envOr(key, def, time.ParseDuration)
}

// envList splits a comma-separated variable, dropping blank items. A list
// with no items yields def.
func envList(key string, def []string) []string {
	return envOr(key, def, func(s string) ([]string, error) {
		var out []string
		for _, item := range strings.Split(s, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		if len(out) == 0 {
			return nil, errEmptyList
		}
		return out, nil
	})
}

// envIDs parses a list of ids. Malformed entries become 0 so Validate can
// name them instead of the list silently shrinking.
func envIDs(key string, def []int64) []int64 {
	items := envList(key, nil)
	if items == nil {
		return def
	}
	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i], _ = strconv.ParseInt(item, 10, 64)
	}
	return ids
}
