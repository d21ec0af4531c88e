package extensions

import (
	"errors"
	"testing"

	"github.com/reaandrew/lintdetector/config"
	"github.com/reaandrew/lintdetector/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExtension struct {
	Base
	id       string
	priority int
	calls    *[]string
	suppress bool
	failRaw  bool
	final    *core.AnalysisResult
}

func (e *recordingExtension) ID() string    { return e.id }
func (e *recordingExtension) Priority() int { return e.priority }

func (e *recordingExtension) OnRawResult(*core.AnalysisResult) error {
	*e.calls = append(*e.calls, "raw:"+e.id)
	if e.failRaw {
		return errors.New("raw failed")
	}
	return nil
}

func (e *recordingExtension) TransformIssues(issues []core.Issue) []core.Issue {
	*e.calls = append(*e.calls, "transform:"+e.id)
	if !e.suppress {
		return issues
	}
	out := make([]core.Issue, len(issues))
	for i, issue := range issues {
		out[i] = issue.WithSuppressReasons(e.id)
	}
	return out
}

func (e *recordingExtension) OnFinalResult(result *core.AnalysisResult) error {
	*e.calls = append(*e.calls, "final:"+e.id)
	e.final = result
	return nil
}

func sealedResult() *core.AnalysisResult {
	result := core.NewAnalysisResult()
	result.AddIssues(core.Issue{RuleInstance: core.RuleInstance{ID: "R", RuleSetID: "S"}, Message: "m"})
	return result.Seal()
}

func TestRunOrdersExtensionsByPriority(t *testing.T) {
	var calls []string
	low := &recordingExtension{id: "low", priority: -1, calls: &calls}
	high := &recordingExtension{id: "high", priority: 10, calls: &calls}
	mid := &recordingExtension{id: "mid", calls: &calls}

	Run(sealedResult(), []ReportingExtension{low, high, mid})

	assert.Equal(t, []string{
		"raw:high", "raw:mid", "raw:low",
		"transform:high", "transform:mid", "transform:low",
		"final:high", "final:mid", "final:low",
	}, calls)
}

func TestRunReturnsSameResultWhenNothingIsTransformed(t *testing.T) {
	var calls []string
	result := sealedResult()
	extension := &recordingExtension{id: "noop", calls: &calls}

	out := Run(result, []ReportingExtension{extension})

	assert.Same(t, result, out)
	assert.Same(t, result, extension.final)
}

func TestRunRewrapsTransformedIssues(t *testing.T) {
	var calls []string
	result := sealedResult()
	extension := &recordingExtension{id: "baseline", suppress: true, calls: &calls}

	out := Run(result, []ReportingExtension{extension})

	assert.NotSame(t, result, out)
	assert.True(t, out.Sealed())
	assert.Equal(t, []string{"baseline"}, out.Issues[0].SuppressReasons)
	assert.False(t, result.Issues[0].Suppressed())
	assert.Same(t, out, extension.final)
}

func TestRunTurnsHookErrorsIntoNotifications(t *testing.T) {
	var calls []string
	extension := &recordingExtension{id: "broken", failRaw: true, calls: &calls}

	out := Run(sealedResult(), []ReportingExtension{extension})

	require.Len(t, out.Notifications, 1)
	assert.Equal(t, core.NotificationError, out.Notifications[0].Level)
	assert.Equal(t, "extension 'broken': raw failed", out.Notifications[0].Message)
	assert.Contains(t, calls, "final:broken")
}

type failingInit struct {
	Base
}

func (failingInit) ID() string { return "bad" }
func (failingInit) Init(*config.Config) error {
	return core.NewConfigurationError("missing path")
}

func TestInitWrapsErrors(t *testing.T) {
	err := Init([]ReportingExtension{failingInit{}}, config.Empty())

	assert.EqualError(t, err, "failed to initialize extension 'bad': invalid configuration: missing path")
	assert.Equal(t, core.ExitInvalidConfig, core.ExitCodeFor(err))
}
