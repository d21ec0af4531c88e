package scanners

import (
	"go/ast"
	"sync/atomic"

	"github.com/reaandrew/lintdetector/core"
	"github.com/reaandrew/lintdetector/syntax"
)

const (
	MetricFiles     = "files"
	MetricLines     = "lines"
	MetricFunctions = "functions"
)

// MetricsListener counts the processed files, their lines and their function declarations.
type MetricsListener struct {
	BaseListener
	files     atomic.Int64
	lines     atomic.Int64
	functions atomic.Int64
}

func NewMetricsListener() *MetricsListener {
	return &MetricsListener{}
}

func (l *MetricsListener) OnProcess(file *syntax.File) {
	l.files.Add(1)
	l.lines.Add(int64(file.Lines()))
	if file.AST == nil {
		return
	}
	var functions int64
	for _, decl := range file.AST.Decls {
		if _, ok := decl.(*ast.FuncDecl); ok {
			functions++
		}
	}
	l.functions.Add(functions)
}

func (l *MetricsListener) OnFinish(_ []*syntax.File, result *core.AnalysisResult) {
	result.AddMetrics(
		core.NewMetric(MetricFiles, int(l.files.Load())),
		core.NewMetric(MetricLines, int(l.lines.Load())),
		core.NewMetric(MetricFunctions, int(l.functions.Load())),
	)
}
