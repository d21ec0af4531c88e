package rules

import (
	"fmt"
	"path/filepath"

	"github.com/gobwas/glob"
)

// PathFilter restricts a rule to files matching its includes and not matching its excludes.
type PathFilter struct {
	includes []glob.Glob
	excludes []glob.Glob
}

func NewPathFilter(includes, excludes []string) (*PathFilter, error) {
	filter := &PathFilter{}
	var err error
	if filter.includes, err = compileGlobs(includes); err != nil {
		return nil, err
	}
	if filter.excludes, err = compileGlobs(excludes); err != nil {
		return nil, err
	}
	return filter, nil
}

// Accepts reports whether path, relative to the base path, passes the filter.
func (f *PathFilter) Accepts(path string) bool {
	if f == nil {
		return true
	}
	path = filepath.ToSlash(path)
	if len(f.includes) > 0 && !matchesAny(f.includes, path) {
		return false
	}
	return !matchesAny(f.excludes, path)
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		compiled, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern '%s': %w", pattern, err)
		}
		globs = append(globs, compiled)
	}
	return globs, nil
}

func matchesAny(globs []glob.Glob, path string) bool {
	for _, g := range globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}
