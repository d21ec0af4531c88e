package rules

import "github.com/reaandrew/lintdetector/core"

// Descriptor is the declarative metadata attached to a rule when it is registered.
type Descriptor struct {
	ID          string
	Description string
	URL         string
	// DefaultActive applies when the config does not set "active".
	DefaultActive bool
	// ActiveSince names the release that turned the rule on by default.
	ActiveSince       string
	Severity          core.Severity
	Aliases           []string
	RequiresSemantics bool
	// Priority orders rules within one file. Higher runs first.
	Priority int
	// ConfigKeys lists the rule specific properties and their defaults.
	ConfigKeys map[string]any
	Factory    Factory
}

// RuleSet groups descriptors under one configuration namespace.
type RuleSet struct {
	ID    string
	Rules []Descriptor
}

func (s RuleSet) Find(ruleID string) (Descriptor, bool) {
	for _, descriptor := range s.Rules {
		if descriptor.ID == ruleID {
			return descriptor, true
		}
	}
	return Descriptor{}, false
}

// Provider creates a rule set. Built-in and plugin rule sets are both providers.
type Provider struct {
	ID  string
	New func() RuleSet
}
