// Package config loads hostbench settings from flags, environment, dotenv
// files and JSON/YAML/TOML config files.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// lookupSetting resolves the first alias present in settings. Aliases are
// dotted paths ("log.level"); each segment matches case-insensitively.
func lookupSetting(settings map[string]any, aliases ...string) (any, bool) {
	for _, alias := range aliases {
		node := any(settings)
		found := true
		for _, segment := range strings.Split(strings.ToLower(alias), ".") {
			m, err := toStringKeyMap(node)
			if err != nil {
				found = false
				break
			}
			if node, found = m[segment]; !found {
				break
			}
		}
		if found {
			return node, true
		}
	}
	return nil, false
}

// Scalars from config files arrive as whatever the decoder produced. Text
// is trimmed and blank text means "unset"; other types go through cast.

func blank(value any) (string, bool) {
	s, ok := value.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s == ""
}

func asString(value any) (string, error) {
	return cast.ToStringE(value)
}

func asInt(value any) (int, error) {
	if s, isBlank := blank(value); isBlank {
		return 0, nil
	} else if s != "" {
		return strconv.Atoi(s)
	}
	return cast.ToIntE(value)
}

func asFloat64(value any) (float64, error) {
	if s, isBlank := blank(value); isBlank {
		return 0, nil
	} else if s != "" {
		return strconv.ParseFloat(s, 64)
	}
	return cast.ToFloat64E(value)
}

func asBool(value any) (bool, error) {
	if s, isBlank := blank(value); isBlank {
		return false, nil
	} else if s != "" {
		return strconv.ParseBool(s)
	}
	return cast.ToBoolE(value)
}

// asDuration reads Go duration text ("250ms"); a bare number, quoted or not,
// counts seconds.
func asDuration(value any) (time.Duration, error) {
	if d, ok := value.(time.Duration); ok {
		return d, nil
	}
	s, isBlank := blank(value)
	if isBlank {
		return 0, nil
	}
	if s != "" {
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return time.ParseDuration(s)
		}
	}
	secs, err := asFloat64(value)
	if err != nil {
		return 0, fmt.Errorf("duration: %w", err)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// asStringSlice reads a list, or one comma-separated string.
func asStringSlice(value any) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return cleanHosts(strings.Split(v, ",")), nil
	}
	items, err := cast.ToStringSliceE(value)
	if err != nil {
		return nil, err
	}
	return cleanHosts(items), nil
}

// toStringKeyMap normalises YAML/TOML maps to lower-cased string keys.
func toStringKeyMap(value any) (map[string]any, error) {
	m, err := cast.ToStringMapE(value)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out, nil
}
