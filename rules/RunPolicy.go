package rules

import (
	"fmt"
	"strings"
)

// RunPolicy decides which rule sets and rules are eligible in a run.
type RunPolicy interface {
	fmt.Stringer
	runPolicy()
}

// DefaultPolicy loads every enabled built-in provider plus every external one.
type DefaultPolicy struct{}

// DisableDefaultRuleSets loads only external providers.
type DisableDefaultRuleSets struct{}

// RestrictToSingleRule loads one rule set filtered to one rule, which is forced active.
type RestrictToSingleRule struct {
	RuleSetID string
	RuleID    string
}

func (DefaultPolicy) runPolicy()          {}
func (DisableDefaultRuleSets) runPolicy() {}
func (RestrictToSingleRule) runPolicy()   {}

func (DefaultPolicy) String() string          { return "default" }
func (DisableDefaultRuleSets) String() string { return "disable-default-rulesets" }
func (p RestrictToSingleRule) String() string { return p.RuleSetID + ":" + p.RuleID }

// ParseSingleRule reads the "ruleSet:rule" notation used on the command line.
func ParseSingleRule(value string) (RestrictToSingleRule, error) {
	ruleSetID, ruleID, ok := strings.Cut(value, ":")
	if !ok || strings.TrimSpace(ruleSetID) == "" || strings.TrimSpace(ruleID) == "" {
		return RestrictToSingleRule{}, fmt.Errorf("expected '<ruleSet>:<rule>', got '%s'", value)
	}
	return RestrictToSingleRule{RuleSetID: strings.TrimSpace(ruleSetID), RuleID: strings.TrimSpace(ruleID)}, nil
}
