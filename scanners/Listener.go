package scanners

import (
	"time"

	"github.com/reaandrew/lintdetector/core"
	"github.com/reaandrew/lintdetector/syntax"
)

// FileProcessListener observes the scheduler. Methods other than OnStart and
// OnFinish are called from worker goroutines and must be safe for concurrent use.
type FileProcessListener interface {
	OnStart(files []*syntax.File)
	OnProcess(file *syntax.File)
	// BeforeRule and AfterRule receive a nil file for project rules.
	BeforeRule(rule core.RuleInstance, file *syntax.File)
	AfterRule(rule core.RuleInstance, file *syntax.File, elapsed time.Duration, findings int)
	OnProcessComplete(file *syntax.File, issues []core.Issue)
	// OnFinish may publish metrics and user data into the still open result.
	OnFinish(files []*syntax.File, result *core.AnalysisResult)
}

// BaseListener implements every hook as a no-op for embedding.
type BaseListener struct{}

func (BaseListener) OnStart([]*syntax.File)                                        {}
func (BaseListener) OnProcess(*syntax.File)                                        {}
func (BaseListener) BeforeRule(core.RuleInstance, *syntax.File)                    {}
func (BaseListener) AfterRule(core.RuleInstance, *syntax.File, time.Duration, int) {}
func (BaseListener) OnProcessComplete(*syntax.File, []core.Issue)                  {}
func (BaseListener) OnFinish([]*syntax.File, *core.AnalysisResult)                 {}

type listeners []FileProcessListener

func (l listeners) onStart(files []*syntax.File) {
	for _, listener := range l {
		listener.OnStart(files)
	}
}

func (l listeners) onProcess(file *syntax.File) {
	for _, listener := range l {
		listener.OnProcess(file)
	}
}

func (l listeners) beforeRule(rule core.RuleInstance, file *syntax.File) {
	for _, listener := range l {
		listener.BeforeRule(rule, file)
	}
}

func (l listeners) afterRule(rule core.RuleInstance, file *syntax.File, elapsed time.Duration, findings int) {
	for _, listener := range l {
		listener.AfterRule(rule, file, elapsed, findings)
	}
}

func (l listeners) onProcessComplete(file *syntax.File, issues []core.Issue) {
	for _, listener := range l {
		listener.OnProcessComplete(file, issues)
	}
}

func (l listeners) onFinish(files []*syntax.File, result *core.AnalysisResult) {
	for _, listener := range l {
		listener.OnFinish(files, result)
	}
}
