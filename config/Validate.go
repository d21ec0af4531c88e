package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/reaandrew/lintdetector/core"
)

// DefaultPropertyExcludes are property paths every rule and rule set accepts
// even when the reference config does not declare them.
var DefaultPropertyExcludes = []string{
	".*>excludes",
	".*>includes",
	".*>active",
	".*>severity",
	".*>aliases",
	".*>.*>excludes",
	".*>.*>includes",
	".*>.*>active",
	".*>.*>severity",
	".*>.*>aliases",
	".*>.*>ignoreFunction",
	"(build|config|processors|console-reports|output-reports)(>.*)?",
}

// CompilePatterns anchors and compiles property path patterns.
func CompilePatterns(expressions []string) ([]*regexp.Regexp, error) {
	patterns := make([]*regexp.Regexp, 0, len(expressions))
	for _, expression := range expressions {
		expression = strings.TrimSpace(expression)
		if expression == "" {
			continue
		}
		pattern, err := regexp.Compile("^(?:" + expression + ")$")
		if err != nil {
			return nil, fmt.Errorf("invalid property pattern '%s': %w", expression, err)
		}
		patterns = append(patterns, pattern)
	}
	return patterns, nil
}

// KnownPatterns returns DefaultPropertyExcludes plus extra, compiled.
func KnownPatterns(extra ...string) ([]*regexp.Regexp, error) {
	all := append([]string{}, DefaultPropertyExcludes...)
	all = append(all, extra...)
	return CompilePatterns(all)
}

// Validate compares c against the reference tree and returns a *core.ConfigurationError
// naming every property that the reference does not declare and no pattern matches.
// It returns nil when every property is known.
func Validate(c *Config, reference *Config, known []*regexp.Regexp) error {
	if c == nil || c.IsEmpty() {
		return nil
	}
	var problems []string
	validateLevel(c.values, reference.values, "", known, &problems)
	if len(problems) == 0 {
		return nil
	}
	return &core.ConfigurationError{Messages: problems}
}

func validateLevel(current, base map[string]any, parent string, known []*regexp.Regexp, problems *[]string) {
	for _, key := range sortedKeys(current) {
		path := key
		if parent != "" {
			path = parent + KeySeparator + key
		}
		if matchesAny(known, path) {
			continue
		}

		baseValue, declared := base[key]
		if !declared {
			*problems = append(*problems, fmt.Sprintf("property '%s' is misspelled or does not exist", path))
		}

		next, nextIsMap := current[key].(map[string]any)
		nextBase, baseIsMap := baseValue.(map[string]any)
		switch {
		case !nextIsMap && baseIsMap:
			*problems = append(*problems, fmt.Sprintf("nested config expected for '%s'", path))
		case declared && nextIsMap && !baseIsMap:
			*problems = append(*problems, fmt.Sprintf("unexpected nested config for '%s'", path))
		case nextIsMap && baseIsMap:
			validateLevel(next, nextBase, path, known, problems)
		}
	}
}

func matchesAny(patterns []*regexp.Regexp, path string) bool {
	for _, pattern := range patterns {
		if pattern.MatchString(path) {
			return true
		}
	}
	return false
}

func sortedKeys(values map[string]any) []string {
	return (&Config{values: values}).Keys()
}
