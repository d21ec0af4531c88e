package baseline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/reaandrew/lintdetector/config"
	"github.com/reaandrew/lintdetector/core"
	"github.com/reaandrew/lintdetector/extensions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issue(rule, signature string) core.Issue {
	return core.Issue{
		RuleInstance: core.RuleInstance{ID: rule, RuleSetID: "style"},
		Entity:       core.Entity{Signature: signature, Location: core.Location{Path: "a.go"}},
		Message:      rule,
	}
}

func TestIssueIDIsStable(t *testing.T) {
	a := issue("LongMethod", "a.go$run$func run() {")
	b := issue("LongMethod", "a.go$run$func run() {")
	b.Entity.Location.Start.Line = 42
	b.Message = "changed"

	assert.Equal(t, IssueID(a), IssueID(b))
	assert.Regexp(t, `^LongMethod:[0-9a-f]{16}$`, IssueID(a))
	assert.NotEqual(t, IssueID(a), IssueID(issue("LongMethod", "a.go$other$func other() {")))
	assert.NotEqual(t, IssueID(a), IssueID(issue("EmptyBlock", "a.go$run$func run() {")))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, name := range []string{"baseline.xml", "baseline.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			original := &Baseline{
				ManuallySuppressedIssues: NewIDSet("LongMethod:1", "EmptyBlock:2"),
				CurrentIssues:            NewIDSet("LongMethod:1", "Other:3"),
			}

			require.NoError(t, Save(path, original))
			loaded, err := Load(path)
			require.NoError(t, err)

			assert.Equal(t, original, loaded)
		})
	}

	path := filepath.Join(t.TempDir(), "empty.xml")
	require.NoError(t, Save(path, New()))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, New(), loaded)
}

func TestLoadXMLDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.xml")
	document := `<?xml version="1.0" ?>
<SmellBaseline>
  <ManuallySuppressedIssues>
    <ID>LongParameterList:abc</ID>
    <ID>LongMethod:def</ID>
  </ManuallySuppressedIssues>
  <CurrentIssues/>
</SmellBaseline>`
	require.NoError(t, os.WriteFile(path, []byte(document), 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"LongMethod:def", "LongParameterList:abc"}, loaded.ManuallySuppressedIssues.Sorted())
	assert.Empty(t, loaded.CurrentIssues)
}

func TestClassify(t *testing.T) {
	known := issue("LongMethod", "sig")
	current := issue("EmptyBlock", "sig")
	fresh := issue("Other", "sig")
	b := &Baseline{
		ManuallySuppressedIssues: NewIDSet(IssueID(known)),
		CurrentIssues:            NewIDSet(IssueID(current)),
	}

	gotKnown, gotNew := Classify(b, []core.Issue{known, current, fresh})

	assert.Equal(t, []core.Issue{known}, gotKnown)
	assert.Equal(t, []core.Issue{current, fresh}, gotNew)
}

func sealed(issues ...core.Issue) *core.AnalysisResult {
	result := core.NewAnalysisResult()
	result.AddIssues(issues...)
	return result.Seal()
}

func TestExtensionDoesNotCreateBaselineWithoutIssues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.xml")
	extension := NewExtension(path, true)
	require.NoError(t, extension.Init(config.Empty()))

	extensions.Run(sealed(), []extensions.ReportingExtension{extension})

	assert.NoFileExists(t, path)
}

func TestExtensionCreatesBaselineFromActiveIssues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.xml")
	extension := NewExtension(path, true)
	require.NoError(t, extension.Init(config.Empty()))
	active := issue("LongMethod", "a")
	suppressed := issue("EmptyBlock", "b").WithSuppressReasons("directive")

	out := extensions.Run(sealed(active, suppressed), []extensions.ReportingExtension{extension})

	written, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, NewIDSet(IssueID(active)), written.CurrentIssues)
	assert.Empty(t, written.ManuallySuppressedIssues)
	assert.Len(t, out.ActiveIssues(), 1)
}

func TestExtensionUpdateKeepsManualIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.xml")
	accepted := issue("LongMethod", "a")
	require.NoError(t, Save(path, &Baseline{
		ManuallySuppressedIssues: NewIDSet(IssueID(accepted)),
		CurrentIssues:            NewIDSet("Stale:0"),
	}))
	extension := NewExtension(path, true)
	require.NoError(t, extension.Init(config.Empty()))

	extensions.Run(sealed(), []extensions.ReportingExtension{extension})

	written, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, NewIDSet(IssueID(accepted)), written.ManuallySuppressedIssues)
	assert.Empty(t, written.CurrentIssues)
}

func TestExtensionSuppressesKnownIssues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.yml")
	accepted := issue("LongMethod", "a")
	other := issue("EmptyBlock", "b")
	require.NoError(t, Save(path, &Baseline{
		ManuallySuppressedIssues: NewIDSet(IssueID(accepted)),
		CurrentIssues:            NewIDSet(IssueID(other)),
	}))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	extension := NewExtension(path, false)
	require.NoError(t, extension.Init(config.Empty()))
	result := sealed(accepted, other)
	out := extensions.Run(result, []extensions.ReportingExtension{extension})

	require.Len(t, out.Issues, 2)
	assert.Equal(t, []string{SuppressReason}, out.Issues[1].SuppressReasons)
	assert.False(t, out.Issues[0].Suppressed())
	assert.False(t, result.Issues[1].Suppressed())

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestTransformIssuesReturnsSameSliceWhenNothingIsKnown(t *testing.T) {
	extension := &Extension{baseline: &Baseline{ManuallySuppressedIssues: NewIDSet("x"), CurrentIssues: IDSet{}}}
	issues := []core.Issue{issue("LongMethod", "a")}

	out := extension.TransformIssues(issues)

	assert.Same(t, &issues[0], &out[0])
}

func TestExtensionRejectsMalformedBaseline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.xml")
	require.NoError(t, os.WriteFile(path, []byte("<SmellBaseline><ManuallySuppressedIssues>"), 0o644))

	err := NewExtension(path, false).Init(config.Empty())

	assert.Equal(t, core.ExitInvalidConfig, core.ExitCodeFor(err))
}
