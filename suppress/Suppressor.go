package suppress

import (
	"github.com/reaandrew/lintdetector/core"
	"github.com/reaandrew/lintdetector/rules"
)

// Candidate is a finding on its way to becoming an issue, with the rule that produced it.
type Candidate struct {
	Rule    rules.LoadedRule
	Finding rules.Finding
}

// Suppressor decides whether a candidate should be hidden and names the reason.
type Suppressor interface {
	Suppress(candidate Candidate) (reason string, suppressed bool)
}

// SuppressorFunc adapts a function to the Suppressor interface.
type SuppressorFunc func(candidate Candidate) (string, bool)

func (f SuppressorFunc) Suppress(candidate Candidate) (string, bool) {
	return f(candidate)
}

// Chain evaluates every suppressor in order. Each one that fires adds its reason,
// so an issue is suppressed as soon as any suppressor fires.
type Chain []Suppressor

func (c Chain) Apply(issue core.Issue, candidate Candidate) core.Issue {
	var reasons []string
	for _, suppressor := range c {
		if reason, ok := suppressor.Suppress(candidate); ok {
			reasons = append(reasons, reason)
		}
	}
	return issue.WithSuppressReasons(reasons...)
}

type Options struct {
	// SuppressGenerated hides findings in generated files.
	SuppressGenerated bool
}

// ForRule assembles the chain used for one rule.
func ForRule(rule rules.LoadedRule, options Options) (Chain, error) {
	chain := Chain{DirectiveSuppressor{}}
	functions, err := NewFunctionSuppressor(rule.Config.StringList("ignoreFunction", nil))
	if err != nil {
		return nil, err
	}
	if functions != nil {
		chain = append(chain, functions)
	}
	if options.SuppressGenerated {
		chain = append(chain, GeneratedFileSuppressor{})
	}
	return chain, nil
}

// GeneratedFileSuppressor hides findings located in generated files.
type GeneratedFileSuppressor struct{}

func (GeneratedFileSuppressor) Suppress(candidate Candidate) (string, bool) {
	if candidate.Finding.File != nil && candidate.Finding.File.Generated {
		return "generated", true
	}
	return "", false
}
