package policy

import (
	"fmt"

	"github.com/reaandrew/lintdetector/config"
	"github.com/reaandrew/lintdetector/core"
)

type kind int

const (
	allowAny kind = iota
	noneAllowed
	allowAmount
)

// Policy decides whether a finished run passes.
type Policy struct {
	kind        kind
	amount      int
	minSeverity *core.Severity
}

func AllowAny() Policy {
	return Policy{kind: allowAny}
}

func NoneAllowed() Policy {
	return Policy{kind: noneAllowed}
}

// AllowAmount passes while at most n issues count against the policy.
func AllowAmount(n int) Policy {
	return Policy{kind: allowAmount, amount: n}
}

// WithMinSeverity only counts issues at or above severity.
func (p Policy) WithMinSeverity(severity core.Severity) Policy {
	p.minSeverity = &severity
	return p
}

// MinSeverity returns the minimum counted severity, if one is set.
func (p Policy) MinSeverity() (core.Severity, bool) {
	if p.minSeverity == nil {
		return core.SeverityInfo, false
	}
	return *p.minSeverity, true
}

func (p Policy) String() string {
	var name string
	switch p.kind {
	case noneAllowed:
		name = "NoneAllowed"
	case allowAmount:
		name = fmt.Sprintf("AllowAmount(%d)", p.amount)
	default:
		name = "AllowAny"
	}
	if p.minSeverity != nil {
		name += fmt.Sprintf(" >= %s", *p.minSeverity)
	}
	return name
}

// Count returns the non-suppressed issues at or above the minimum severity.
func (p Policy) Count(issues []core.Issue) int {
	count := 0
	for _, issue := range issues {
		if issue.Suppressed() {
			continue
		}
		if p.minSeverity != nil && issue.Severity < *p.minSeverity {
			continue
		}
		count++
	}
	return count
}

func (p Policy) allowed() int {
	if p.kind == noneAllowed {
		return 0
	}
	return p.amount
}

// Evaluate returns a *core.PolicyViolationError when the result fails the policy.
func (p Policy) Evaluate(result *core.AnalysisResult) error {
	if p.kind == allowAny {
		return nil
	}
	count := p.Count(result.Issues)
	if count <= p.allowed() {
		return nil
	}
	return &core.PolicyViolationError{Policy: p.String(), Count: count, Allowed: p.allowed()}
}

// FromConfig reads build>maxIssues and build>minSeverity. A missing or
// negative maxIssues allows any number of issues.
func FromConfig(cfg *config.Config) (Policy, error) {
	build := cfg.SubConfig("build")
	policy := FromMaxIssues(build.Int("maxIssues", -1))
	if build.Has("minSeverity") {
		severity, err := core.ParseSeverity(build.String("minSeverity", ""))
		if err != nil {
			return Policy{}, &core.ConfigurationError{Messages: []string{"build>minSeverity"}, Err: err}
		}
		policy = policy.WithMinSeverity(severity)
	}
	return policy, nil
}

func FromMaxIssues(maxIssues int) Policy {
	switch {
	case maxIssues < 0:
		return AllowAny()
	case maxIssues == 0:
		return NoneAllowed()
	default:
		return AllowAmount(maxIssues)
	}
}
