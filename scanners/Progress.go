package scanners

import (
	"github.com/reaandrew/lintdetector/core"
	"github.com/reaandrew/lintdetector/syntax"
	"github.com/reaandrew/lintdetector/utils"
)

// ProgressListener advances a progress reporter once per analyzed file.
type ProgressListener struct {
	BaseListener
	Reporter utils.ProgressReporter
}

func NewProgressListener(reporter utils.ProgressReporter) *ProgressListener {
	return &ProgressListener{Reporter: reporter}
}

func (l *ProgressListener) OnStart(files []*syntax.File) {
	l.Reporter.SetTotal(len(files))
}

func (l *ProgressListener) OnProcessComplete(*syntax.File, []core.Issue) {
	l.Reporter.Increment()
}

func (l *ProgressListener) OnFinish([]*syntax.File, *core.AnalysisResult) {
	l.Reporter.Finish()
}
