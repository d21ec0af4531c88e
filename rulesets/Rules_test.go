package rulesets

import (
	"go/ast"
	"go/types"
	"testing"

	"github.com/reaandrew/lintdetector/config"
	"github.com/reaandrew/lintdetector/rules"
	"github.com/reaandrew/lintdetector/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findDescriptor(t *testing.T, ruleSet rules.RuleSet, id string) rules.Descriptor {
	t.Helper()
	descriptor, ok := ruleSet.Find(id)
	require.True(t, ok, "rule %s not found", id)
	return descriptor
}

func parse(t *testing.T, path, src string) *syntax.File {
	t.Helper()
	file, err := syntax.ParseSource(path, []byte(src))
	require.NoError(t, err)
	return file
}

func runOnFile(t *testing.T, descriptor rules.Descriptor, cfg *config.Config, file *syntax.File) []rules.Finding {
	t.Helper()
	ctx := rules.NewContext(file, cfg, file.HasSemantics())
	syntax.Walk(file, descriptor.Factory(cfg, file.HasSemantics()).Handlers(ctx))
	require.NoError(t, ctx.Err())
	return ctx.Findings()
}

func TestForbiddenComment(t *testing.T) {
	file := parse(t, "a.go", `package a

// TODO: remove
func A() {} // FIXME: later

// plain comment
func B() {}
`)
	descriptor := findDescriptor(t, StyleRuleSet(), "ForbiddenComment")

	findings := runOnFile(t, descriptor, config.Empty(), file)
	require.Len(t, findings, 2)
	assert.Contains(t, findings[0].Message, "TODO:")
	assert.Contains(t, findings[1].Message, "FIXME:")

	custom := config.New(map[string]any{"comments": []any{"plain"}})
	findings = runOnFile(t, descriptor, custom, file)
	require.Len(t, findings, 1)
	assert.Equal(t, 6, findings[0].Entity.Location.Start.Line)
}

func TestEmptyBlock(t *testing.T) {
	file := parse(t, "a.go", `package a

func A(values []int, ok bool) {
	if ok {
	} else {
	}
	for range values {
		// intentionally empty
	}
	for i := 0; i < 1; i++ {
	}
}
`)
	findings := runOnFile(t, findDescriptor(t, StyleRuleSet(), "EmptyBlock"), config.Empty(), file)

	var messages []string
	for _, finding := range findings {
		messages = append(messages, finding.Message)
	}
	assert.Equal(t, []string{
		"This empty if block can be removed.",
		"This empty else block can be removed.",
		"This empty for block can be removed.",
	}, messages)
}

func TestLongParameterList(t *testing.T) {
	file := parse(t, "a.go", `package a

func Short(a, b int) {}
func Long(a, b, c int, d string) {}
`)
	cfg := config.New(map[string]any{"functionThreshold": 4})
	findings := runOnFile(t, findDescriptor(t, ComplexityRuleSet(), "LongParameterList"), cfg, file)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "Long(4)")
}

func TestLongMethod(t *testing.T) {
	file := parse(t, "a.go", `package a

func Long() {
	_ = 1
	_ = 2
	_ = 3
}

func Short() {
	_ = 1
}
`)
	cfg := config.New(map[string]any{"threshold": 3})
	findings := runOnFile(t, findDescriptor(t, ComplexityRuleSet(), "LongMethod"), cfg, file)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "Long is too long (3)")
}

func TestTooManyFunctions(t *testing.T) {
	file := parse(t, "a.go", "package a\n\nfunc A() {}\nfunc B() {}\nfunc C() {}\n")
	cfg := config.New(map[string]any{"thresholdInFiles": 2})
	findings := runOnFile(t, findDescriptor(t, ComplexityRuleSet(), "TooManyFunctions"), cfg, file)
	assert.Len(t, findings, 1)
}

func TestPackageNameMismatch(t *testing.T) {
	files := []*syntax.File{
		parse(t, "pkg/a.go", "package pkg\n"),
		parse(t, "pkg/b.go", "package pkg\n"),
		parse(t, "pkg/b_test.go", "package pkg_test\n"),
		parse(t, "pkg/c.go", "package other\n"),
		parse(t, "single/d.go", "package single\n"),
	}
	descriptor := findDescriptor(t, NamingRuleSet(), "PackageNameMismatch")
	rule, ok := descriptor.Factory(config.Empty(), false).(rules.ProjectRule)
	require.True(t, ok)

	ctx := rules.NewProjectContext(files, config.Empty(), false)
	rule.VisitProject(ctx)

	findings := ctx.Findings()
	require.Len(t, findings, 1)
	assert.Equal(t, "pkg/c.go", findings[0].Entity.Location.Path)
}

func TestIgnoredErrorNeedsTypes(t *testing.T) {
	src := `package a

func fail() error { return nil }
func pair() (int, error) { return 0, nil }
func fine() int { return 0 }

func Use() {
	fail()
	pair()
	fine()
	_ = fail()
}
`
	descriptor := findDescriptor(t, PotentialBugsRuleSet(), "IgnoredError")
	assert.True(t, descriptor.RequiresSemantics)

	file := parse(t, "a.go", src)
	assert.Empty(t, runOnFile(t, descriptor, config.Empty(), file))

	info := &types.Info{
		Types: map[ast.Expr]types.TypeAndValue{},
		Defs:  map[*ast.Ident]types.Object{},
		Uses:  map[*ast.Ident]types.Object{},
	}
	pkg, err := (&types.Config{}).Check("a", file.Fset, []*ast.File{file.AST}, info)
	require.NoError(t, err)
	file.Info = info
	file.Pkg = pkg

	findings := runOnFile(t, descriptor, config.Empty(), file)
	require.Len(t, findings, 2)
	assert.Equal(t, "The error returned by fail is ignored.", findings[0].Message)
	assert.Equal(t, "The error returned by pair is ignored.", findings[1].Message)

	allowed := config.New(map[string]any{"allowedCalls": []any{"a.fail"}})
	assert.Len(t, runOnFile(t, descriptor, allowed, file), 1)
}

func TestProvidersHaveUniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for _, provider := range InitializeProviders() {
		ruleSet := provider.New()
		assert.Equal(t, provider.ID, ruleSet.ID)
		assert.False(t, seen[ruleSet.ID])
		seen[ruleSet.ID] = true
		for _, descriptor := range ruleSet.Rules {
			assert.NotNil(t, descriptor.Factory, descriptor.ID)
		}
	}
}
