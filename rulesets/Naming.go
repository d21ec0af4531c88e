package rulesets

import (
	"cmp"
	"fmt"
	"maps"
	"path"
	"slices"
	"strings"

	"github.com/reaandrew/lintdetector/config"
	"github.com/reaandrew/lintdetector/core"
	"github.com/reaandrew/lintdetector/rules"
	"github.com/reaandrew/lintdetector/syntax"
)

const NamingRuleSetID = "naming"

func NamingRuleSet() rules.RuleSet {
	return rules.RuleSet{
		ID: NamingRuleSetID,
		Rules: []rules.Descriptor{
			{
				ID:            "PackageNameMismatch",
				Description:   "Flags directories whose files declare different package names.",
				URL:           docsURL(NamingRuleSetID, "PackageNameMismatch"),
				DefaultActive: true,
				ActiveSince:   "0.1.0",
				Severity:      core.SeverityError,
				Factory:       newPackageNameMismatch,
			},
		},
	}
}

// packageNameMismatch compares package clauses across files of one directory.
// External test packages ("foo_test") count as "foo".
type packageNameMismatch struct{}

func newPackageNameMismatch(*config.Config, bool) rules.Rule {
	return packageNameMismatch{}
}

func (packageNameMismatch) Handlers(*rules.Context) syntax.Handlers {
	return nil
}

func (packageNameMismatch) VisitProject(ctx *rules.ProjectContext) {
	byDir := map[string][]*syntax.File{}
	for _, file := range ctx.Files {
		dir := path.Dir(file.Path)
		byDir[dir] = append(byDir[dir], file)
	}

	for _, dir := range slices.Sorted(maps.Keys(byDir)) {
		files := byDir[dir]
		slices.SortFunc(files, func(a, b *syntax.File) int { return cmp.Compare(a.Path, b.Path) })

		counts := map[string]int{}
		for _, file := range files {
			counts[strings.TrimSuffix(file.PackageName(), "_test")]++
		}
		if len(counts) < 2 {
			continue
		}
		expected := majority(counts)
		for _, file := range files {
			name := strings.TrimSuffix(file.PackageName(), "_test")
			if name != expected {
				ctx.Report(file, file.AST.Name, fmt.Sprintf("Package '%s' differs from package '%s' used by the other files in '%s'.",
					file.PackageName(), expected, dir))
			}
		}
	}
}

// majority picks the most used name, alphabetically first on ties.
func majority(counts map[string]int) string {
	var best string
	for _, name := range slices.Sorted(maps.Keys(counts)) {
		if best == "" || counts[name] > counts[best] {
			best = name
		}
	}
	return best
}
