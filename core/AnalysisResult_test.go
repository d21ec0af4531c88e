package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func issueAt(ruleSet, rule, path string, line, column int) Issue {
	return Issue{
		RuleInstance: RuleInstance{ID: rule, RuleSetID: ruleSet, Active: true},
		Entity: Entity{
			Signature: fmt.Sprintf("%s$%d", path, line),
			Location: Location{
				Start: SourcePosition{Line: line, Column: column},
				End:   SourcePosition{Line: line, Column: column + 1},
				Path:  path,
			},
		},
		Message: rule,
	}
}

func TestSealSortsIssuesByRuleSetRuleFileLineColumn(t *testing.T) {
	result := NewAnalysisResult()
	result.AddIssues(
		issueAt("style", "B", "a.go", 1, 1),
		issueAt("complexity", "Z", "z.go", 9, 9),
		issueAt("style", "A", "b.go", 1, 1),
		issueAt("style", "A", "a.go", 2, 1),
		issueAt("style", "A", "a.go", 1, 5),
		issueAt("style", "A", "a.go", 1, 2),
	)

	result.Seal()

	var got []string
	for _, issue := range result.Issues {
		got = append(got, fmt.Sprintf("%s/%s/%s:%d:%d",
			issue.RuleInstance.RuleSetID, issue.RuleInstance.ID, issue.Entity.Location.Path,
			issue.Entity.Location.Start.Line, issue.Entity.Location.Start.Column))
	}
	assert.Equal(t, []string{
		"complexity/Z/z.go:9:9",
		"style/A/a.go:1:2",
		"style/A/a.go:1:5",
		"style/A/a.go:2:1",
		"style/A/b.go:1:1",
		"style/B/a.go:1:1",
	}, got)
}

func TestSuppressedMatchesReasons(t *testing.T) {
	issue := issueAt("style", "A", "a.go", 1, 1)
	assert.False(t, issue.Suppressed())

	suppressed := issue.WithSuppressReasons("directive")
	assert.True(t, suppressed.Suppressed())
	assert.Equal(t, []string{"directive"}, suppressed.SuppressReasons)
	assert.False(t, issue.Suppressed(), "original issue must not change")

	same := issue.WithSuppressReasons()
	assert.False(t, same.Suppressed())
}

func TestSealedResultRejectsMutation(t *testing.T) {
	result := NewAnalysisResult().Seal()
	assert.Panics(t, func() {
		result.AddIssues(issueAt("style", "A", "a.go", 1, 1))
	})
}

func TestWithIssuesCopiesAndSorts(t *testing.T) {
	result := NewAnalysisResult()
	result.AddIssues(issueAt("style", "A", "a.go", 1, 1))
	result.Seal()

	updated := result.WithIssues([]Issue{
		issueAt("style", "B", "a.go", 1, 1),
		issueAt("style", "A", "a.go", 3, 1),
	})

	assert.Len(t, result.Issues, 1)
	assert.Len(t, updated.Issues, 2)
	assert.Equal(t, "A", updated.Issues[0].RuleInstance.ID)
	assert.True(t, updated.Sealed())
}

func TestActiveIssuesSkipsSuppressed(t *testing.T) {
	result := NewAnalysisResult()
	result.AddIssues(
		issueAt("style", "A", "a.go", 1, 1),
		issueAt("style", "A", "a.go", 2, 1).WithSuppressReasons("baseline"),
	)
	assert.Len(t, result.ActiveIssues(), 1)
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ExitCode
	}{
		{"nil", nil, ExitNormal},
		{"policy", &PolicyViolationError{Policy: "NoneAllowed", Count: 1}, ExitPolicyViolation},
		{"wrapped config", fmt.Errorf("loading: %w", NewConfigurationError("bad key")), ExitInvalidConfig},
		{"rule load", &RuleLoadError{Message: "no rule set with id 'x'"}, ExitInvalidConfig},
		{"other", errors.New("boom"), ExitUnexpectedError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCodeFor(tt.err); got != tt.want {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseSeverity(t *testing.T) {
	severity, err := ParseSeverity(" Warning ")
	assert.Nil(t, err)
	assert.Equal(t, SeverityWarning, severity)

	_, err = ParseSeverity("fatal")
	assert.NotNil(t, err)
}
