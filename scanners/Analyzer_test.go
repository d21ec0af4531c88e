package scanners

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/reaandrew/lintdetector/config"
	"github.com/reaandrew/lintdetector/core"
	"github.com/reaandrew/lintdetector/rules"
	"github.com/reaandrew/lintdetector/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcReporter struct{}

func (funcReporter) Handlers(ctx *rules.Context) syntax.Handlers {
	return syntax.Handlers{
		syntax.On(func(decl *ast.FuncDecl) { ctx.Report(decl.Name, "function "+decl.Name.Name) }),
	}
}

type panickingRule struct{}

func (panickingRule) Handlers(*rules.Context) syntax.Handlers {
	return syntax.Handlers{
		syntax.On(func(*ast.FuncDecl) { panic("boom") }),
	}
}

type failingRule struct{}

func (failingRule) Handlers(ctx *rules.Context) syntax.Handlers {
	return syntax.Handlers{
		syntax.On(func(decl *ast.FuncDecl) {
			ctx.Report(decl.Name, "partial")
			ctx.Fail(errors.New("cannot continue"))
		}),
	}
}

type fileCounter struct{ funcReporter }

func (fileCounter) VisitProject(ctx *rules.ProjectContext) {
	for _, file := range ctx.Files {
		ctx.Report(file, file.AST.Name, fmt.Sprintf("seen %d files", len(ctx.Files)))
	}
}

func ruleOf(id string, rule rules.Rule) rules.Descriptor {
	return rules.Descriptor{
		ID:            id,
		DefaultActive: true,
		Severity:      core.SeverityWarning,
		Factory:       func(*config.Config, bool) rules.Rule { return rule },
	}
}

func loadRules(t *testing.T, cfg *config.Config, descriptors ...rules.Descriptor) []rules.LoadedRule {
	t.Helper()
	registry := rules.NewRegistry(rules.Provider{ID: "test", New: func() rules.RuleSet {
		return rules.RuleSet{ID: "test", Rules: descriptors}
	}})
	loaded, err := rules.Load(registry, rules.DefaultPolicy{}, cfg, false)
	require.NoError(t, err)
	return loaded
}

func parse(t *testing.T, path, source string) *syntax.File {
	t.Helper()
	file, err := syntax.ParseSource(path, []byte(source))
	require.NoError(t, err)
	return file
}

func sampleFiles(t *testing.T, count int) []*syntax.File {
	t.Helper()
	var files []*syntax.File
	for i := 0; i < count; i++ {
		source := fmt.Sprintf("package sample\n\nfunc First%d() {}\n\nfunc Second%d() {}\n", i, i)
		files = append(files, parse(t, fmt.Sprintf("pkg/file%02d.go", i), source))
	}
	return files
}

func TestAnalyzeIsDeterministicWithAndWithoutParallelism(t *testing.T) {
	loaded := loadRules(t, config.Empty(), ruleOf("Functions", funcReporter{}), ruleOf("Other", funcReporter{}))
	files := sampleFiles(t, 25)

	sequential, err := (&Analyzer{Rules: loaded}).Analyze(context.Background(), files)
	require.NoError(t, err)
	parallel, err := (&Analyzer{Rules: loaded, Parallel: true, Workers: 4}).Analyze(context.Background(), files)
	require.NoError(t, err)

	assert.Len(t, sequential.Issues, 100)
	assert.Equal(t, sequential.Issues, parallel.Issues)
	assert.Equal(t, "Functions", sequential.Issues[0].RuleInstance.ID)
	assert.Equal(t, "pkg/file00.go", sequential.Issues[0].Entity.Location.Path)
	assert.Equal(t, 3, sequential.Issues[0].Entity.Location.Start.Line)
}

func TestAnalyzeConvertsRuleFailuresIntoNotifications(t *testing.T) {
	loaded := loadRules(t, config.Empty(),
		ruleOf("Panics", panickingRule{}),
		ruleOf("Fails", failingRule{}),
		ruleOf("Works", funcReporter{}),
	)
	files := []*syntax.File{parse(t, "a.go", "package a\n\nfunc A() {}\n")}

	result, err := (&Analyzer{Rules: loaded}).Analyze(context.Background(), files)
	require.NoError(t, err)

	require.Len(t, result.Issues, 1)
	assert.Equal(t, "Works", result.Issues[0].RuleInstance.ID)
	require.Len(t, result.Notifications, 2)
	for _, notification := range result.Notifications {
		assert.Equal(t, core.NotificationError, notification.Level)
	}
	assert.Equal(t, "rule 'test:Fails' failed on a.go: cannot continue", result.Notifications[0].Message)
	assert.Equal(t, "rule 'test:Panics' failed on a.go: panic: boom", result.Notifications[1].Message)
}

func TestAnalyzeRunsProjectRulesOnceOverFilteredFiles(t *testing.T) {
	cfg := config.New(map[string]any{
		"test": map[string]any{
			"Counter": map[string]any{"excludes": []any{"**/skip.go"}},
		},
	})
	loaded := loadRules(t, cfg, ruleOf("Counter", fileCounter{}))
	files := []*syntax.File{
		parse(t, "a/one.go", "package a\n"),
		parse(t, "a/two.go", "package a\n"),
		parse(t, "a/skip.go", "package a\n"),
	}

	result, err := (&Analyzer{Rules: loaded, Parallel: true}).Analyze(context.Background(), files)
	require.NoError(t, err)

	require.Len(t, result.Issues, 2)
	assert.Equal(t, "a/one.go", result.Issues[0].Entity.Location.Path)
	assert.Equal(t, "seen 2 files", result.Issues[0].Message)
	assert.Equal(t, "a/two.go", result.Issues[1].Entity.Location.Path)
}

func TestAnalyzeKeepsSuppressedIssuesWithReasons(t *testing.T) {
	loaded := loadRules(t, config.Empty(), ruleOf("Functions", funcReporter{}))
	source := "package a\n\n//lintdetector:suppress Functions\nfunc Hidden() {}\n\nfunc Shown() {}\n"
	files := []*syntax.File{parse(t, "a.go", source)}

	result, err := (&Analyzer{Rules: loaded}).Analyze(context.Background(), files)
	require.NoError(t, err)

	require.Len(t, result.Issues, 2)
	assert.Equal(t, []string{"directive"}, result.Issues[0].SuppressReasons)
	assert.True(t, result.Issues[0].Suppressed())
	assert.False(t, result.Issues[1].Suppressed())
	assert.Len(t, result.ActiveIssues(), 1)
}

func TestAnalyzeListsInactiveRulesWithoutRunningThem(t *testing.T) {
	descriptor := ruleOf("Off", panickingRule{})
	descriptor.DefaultActive = false
	loaded := loadRules(t, config.Empty(), descriptor, ruleOf("On", funcReporter{}))

	result, err := (&Analyzer{Rules: loaded}).Analyze(context.Background(), sampleFiles(t, 1))
	require.NoError(t, err)

	assert.Empty(t, result.Notifications)
	assert.Len(t, result.Rules, 2)
	assert.Len(t, result.Issues, 2)
}

func TestAnalyzeStopsDispatchingWhenCancelled(t *testing.T) {
	loaded := loadRules(t, config.Empty(), ruleOf("Functions", funcReporter{}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, parallel := range []bool{false, true} {
		result, err := (&Analyzer{Rules: loaded, Parallel: parallel}).Analyze(ctx, sampleFiles(t, 3))
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, result)
	}
}

func TestListenersPublishProfilingAndMetrics(t *testing.T) {
	loaded := loadRules(t, config.Empty(), ruleOf("Functions", funcReporter{}), ruleOf("Counter", fileCounter{}))
	profiling := NewRuleProfilingListener()
	metrics := NewMetricsListener()
	progress := &countingProgress{}

	analyzer := &Analyzer{
		Rules:     loaded,
		Parallel:  true,
		Listeners: []FileProcessListener{profiling, metrics, NewProgressListener(progress)},
	}
	result, err := analyzer.Analyze(context.Background(), sampleFiles(t, 3))
	require.NoError(t, err)

	executions, ok := ExecutionsOf(result)
	require.True(t, ok)
	require.Len(t, executions, 4)
	assert.Equal(t, ProjectPath, executions[0].Path)
	assert.Equal(t, "Counter", executions[0].RuleID)
	assert.Equal(t, 3, executions[0].Findings)
	assert.Equal(t, "pkg/file00.go", executions[1].Path)
	assert.Equal(t, 2, executions[1].Findings)

	assert.Equal(t, []core.Metric{
		core.NewMetric(MetricFiles, 3),
		core.NewMetric(MetricLines, 15),
		core.NewMetric(MetricFunctions, 6),
	}, result.Metrics)

	assert.Equal(t, 3, progress.total)
	assert.Equal(t, int32(3), progress.done.Load())
	assert.True(t, progress.finished)
}

type countingProgress struct {
	total    int
	done     atomic.Int32
	finished bool
}

func (p *countingProgress) SetTotal(total int) { p.total = total }
func (p *countingProgress) Increment()         { p.done.Add(1) }
func (p *countingProgress) Finish()            { p.finished = true }

func TestProfilingKeepsLastMeasurementPerKey(t *testing.T) {
	listener := NewRuleProfilingListener()
	rule := core.RuleInstance{ID: "R", RuleSetID: "S"}
	file := &syntax.File{Path: "a.go"}

	listener.AfterRule(rule, file, 1, 1)
	listener.AfterRule(rule, file, 2, 5)

	executions := listener.Executions()
	require.Len(t, executions, 1)
	assert.Equal(t, 5, executions[0].Findings)
}

type fixedChanges map[string]struct{}

func (f fixedChanges) ChangedSince(string, string) (map[string]struct{}, error) {
	return f, nil
}

func writeTree(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, path := range paths {
		full := filepath.Join(root, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("package x\n"), 0o644))
	}
}

func TestFileCollector(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"main.go",
		"README.md",
		"pkg/service.go",
		"pkg/service_test.go",
		"gen/skip.go",
		"vendor/lib/lib.go",
		".hidden/h.go",
		"pkg/testdata/fixture.go",
	)

	files, err := FileCollector{BasePath: root, Excludes: []string{"gen/**"}}.Collect([]string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "main.go"),
		filepath.Join(root, "pkg", "service.go"),
		filepath.Join(root, "pkg", "service_test.go"),
	}, files)

	files, err = FileCollector{BasePath: root, Includes: []string{"pkg/**"}, Excludes: []string{"**/*_test.go"}}.
		Collect([]string{root, filepath.Join(root, "pkg", "service.go")})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "pkg", "service.go")}, files)

	changed := fixedChanges{filepath.Join(root, "main.go"): {}}
	files, err = FileCollector{BasePath: root, ChangedSince: "1 week ago", Changes: changed}.Collect([]string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "main.go")}, files)

	_, err = FileCollector{}.Collect([]string{filepath.Join(root, "missing")})
	assert.ErrorContains(t, err, "does not exist")
}
