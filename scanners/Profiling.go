package scanners

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/reaandrew/lintdetector/core"
	"github.com/reaandrew/lintdetector/syntax"
)

// ProfilingExecutionsKey is the AnalysisResult.UserData key holding []RuleExecution.
const ProfilingExecutionsKey = "profiling.executions"

// ProjectPath stands in for the file path of project rule executions.
const ProjectPath = "<project>"

type RuleExecution struct {
	RuleSetID string
	RuleID    string
	Path      string
	Duration  time.Duration
	Findings  int
}

type executionKey struct {
	ruleID    string
	ruleSetID string
	path      string
}

// RuleProfilingListener records how long every rule took on every file.
// A repeated (rule, file) pair keeps the last measurement.
type RuleProfilingListener struct {
	BaseListener
	executions sync.Map
}

func NewRuleProfilingListener() *RuleProfilingListener {
	return &RuleProfilingListener{}
}

func (l *RuleProfilingListener) AfterRule(rule core.RuleInstance, file *syntax.File, elapsed time.Duration, findings int) {
	path := ProjectPath
	if file != nil {
		path = file.Path
	}
	l.executions.Store(executionKey{ruleID: rule.ID, ruleSetID: rule.RuleSetID, path: path}, RuleExecution{
		RuleSetID: rule.RuleSetID,
		RuleID:    rule.ID,
		Path:      path,
		Duration:  elapsed,
		Findings:  findings,
	})
}

func (l *RuleProfilingListener) OnFinish(_ []*syntax.File, result *core.AnalysisResult) {
	result.SetUserData(ProfilingExecutionsKey, l.Executions())
}

// Executions returns the recorded executions ordered by rule set, rule and path.
func (l *RuleProfilingListener) Executions() []RuleExecution {
	var executions []RuleExecution
	l.executions.Range(func(_, value any) bool {
		executions = append(executions, value.(RuleExecution))
		return true
	})
	SortExecutions(executions)
	return executions
}

func SortExecutions(executions []RuleExecution) {
	slices.SortFunc(executions, func(a, b RuleExecution) int {
		return cmp.Or(
			cmp.Compare(a.RuleSetID, b.RuleSetID),
			cmp.Compare(a.RuleID, b.RuleID),
			cmp.Compare(a.Path, b.Path),
		)
	})
}

// ExecutionsOf reads the profiling data a RuleProfilingListener published into result.
func ExecutionsOf(result *core.AnalysisResult) ([]RuleExecution, bool) {
	if result == nil || result.UserData == nil {
		return nil, false
	}
	executions, ok := result.UserData[ProfilingExecutionsKey].([]RuleExecution)
	return executions, ok
}
