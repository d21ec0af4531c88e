package config

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// KeySeparator joins the segments of a property path, e.g. "style>MagicNumber>active".
const KeySeparator = ">"

// Config is an immutable tree of named sub-configs holding scalars, lists and maps.
// Lookups never fail: missing keys and mismatched types resolve to the caller's default.
type Config struct {
	name   string
	parent *Config
	values map[string]any
}

var empty = &Config{values: map[string]any{}}

// Empty returns a config without any keys.
func Empty() *Config {
	return empty
}

// New builds a config from decoded YAML/TOML style values. The map is deep-copied.
func New(values map[string]any) *Config {
	return &Config{values: normalizeMap(values)}
}

// SubConfig returns the nested config stored under name or an empty child.
func (c *Config) SubConfig(name string) *Config {
	child := &Config{name: name, parent: c, values: map[string]any{}}
	if nested, ok := c.values[name].(map[string]any); ok {
		child.values = nested
	}
	return child
}

func (c *Config) Parent() *Config {
	return c.parent
}

func (c *Config) Name() string {
	return c.name
}

// Path is the property path of this config from the root, e.g. "style>MagicNumber".
func (c *Config) Path() string {
	var segments []string
	for current := c; current != nil && current.parent != nil; current = current.parent {
		segments = append(segments, current.name)
	}
	slices.Reverse(segments)
	return strings.Join(segments, KeySeparator)
}

// KeyPath is the property path for one key of this config.
func (c *Config) KeyPath(key string) string {
	if path := c.Path(); path != "" {
		return path + KeySeparator + key
	}
	return key
}

func (c *Config) Raw(key string) (any, bool) {
	value, ok := c.values[key]
	return value, ok
}

func (c *Config) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Keys returns the keys of this level in sorted order.
func (c *Config) Keys() []string {
	return slices.Sorted(maps.Keys(c.values))
}

func (c *Config) IsEmpty() bool {
	return len(c.values) == 0
}

// Values returns a deep copy of the underlying tree.
func (c *Config) Values() map[string]any {
	return normalizeMap(c.values)
}

func (c *Config) Bool(key string, def bool) bool {
	return ValueOrDefault(c, key, def)
}

func (c *Config) String(key string, def string) string {
	return ValueOrDefault(c, key, def)
}

func (c *Config) Int(key string, def int) int {
	return ValueOrDefault(c, key, def)
}

func (c *Config) StringList(key string, def []string) []string {
	return ValueOrDefault(c, key, def)
}

// ValueOrDefault looks key up in c and converts it to T.
// Integral numbers widen to int, numeric and boolean strings are parsed,
// and string lists accept both YAML sequences and comma separated strings.
// Anything else that does not fit T yields def.
func ValueOrDefault[T any](c *Config, key string, def T) T {
	if c == nil {
		return def
	}
	raw, ok := c.values[key]
	if !ok || raw == nil {
		return def
	}
	if value, ok := raw.(T); ok {
		return value
	}
	converted, ok := convert(raw, def)
	if !ok {
		return def
	}
	return converted.(T)
}

func convert(raw any, def any) (any, bool) {
	switch def.(type) {
	case int:
		return toInt(raw)
	case int64:
		i, ok := toInt(raw)
		return int64(i), ok
	case float64:
		return toFloat(raw)
	case bool:
		if s, ok := raw.(string); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(s))
			return b, err == nil
		}
	case string:
		switch v := raw.(type) {
		case int, int64, float64, bool:
			return fmt.Sprint(v), true
		}
	case []string:
		return toStringList(raw)
	}
	return nil, false
}

func toInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case uint64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(v))
		return i, err == nil
	}
	return 0, false
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

func toStringList(raw any) ([]string, bool) {
	switch v := raw.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	case string:
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, true
	}
	return nil, false
}

// normalizeMap deep-copies a decoded tree and rewrites nested maps and slices
// into map[string]any and []any so lookups only deal with one shape.
func normalizeMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = normalizeValue(value)
	}
	return out
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return normalizeMap(v)
	case map[any]any:
		converted := make(map[string]any, len(v))
		for key, item := range v {
			converted[fmt.Sprint(key)] = item
		}
		return normalizeMap(converted)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeValue(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeMap(item)
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out
	}
	return value
}
