package rules

import (
	"fmt"

	"github.com/reaandrew/lintdetector/config"
	"github.com/reaandrew/lintdetector/core"
	log "github.com/sirupsen/logrus"
)

// Registry holds the built-in providers plus externally supplied ones.
type Registry struct {
	builtin  []Provider
	external []Provider
	disabled map[string]struct{}
}

func NewRegistry(builtin ...Provider) *Registry {
	return &Registry{builtin: builtin, disabled: map[string]struct{}{}}
}

// AddExternal registers providers that come from plugins or the embedding program.
func (r *Registry) AddExternal(providers ...Provider) {
	r.external = append(r.external, providers...)
}

// SetDisabled turns off built-in providers by id. External providers are unaffected.
func (r *Registry) SetDisabled(ids []string) {
	r.disabled = map[string]struct{}{}
	for _, id := range ids {
		r.disabled[id] = struct{}{}
	}
}

// All returns every provider known to the registry, disabled ones included.
func (r *Registry) All() []Provider {
	all := make([]Provider, 0, len(r.builtin)+len(r.external))
	all = append(all, r.builtin...)
	return append(all, r.external...)
}

// RuleSets instantiates the rule sets eligible under policy.
// RestrictToSingleRule returns exactly one rule set holding exactly one rule.
func (r *Registry) RuleSets(policy RunPolicy) ([]RuleSet, error) {
	switch p := policy.(type) {
	case nil, DefaultPolicy:
		var providers []Provider
		for _, provider := range r.builtin {
			if _, off := r.disabled[provider.ID]; off {
				log.WithField("ruleSet", provider.ID).Debug("Rule set disabled")
				continue
			}
			providers = append(providers, provider)
		}
		return instantiate(append(providers, r.external...)), nil
	case DisableDefaultRuleSets:
		return instantiate(r.external), nil
	case RestrictToSingleRule:
		for _, ruleSet := range instantiate(r.All()) {
			if ruleSet.ID != p.RuleSetID {
				continue
			}
			descriptor, ok := ruleSet.Find(p.RuleID)
			if !ok {
				return nil, &core.RuleLoadError{Message: fmt.Sprintf("no rule with id '%s' in rule set '%s'", p.RuleID, p.RuleSetID)}
			}
			return []RuleSet{{ID: ruleSet.ID, Rules: []Descriptor{descriptor}}}, nil
		}
		return nil, &core.RuleLoadError{Message: fmt.Sprintf("no rule set with id '%s'", p.RuleSetID)}
	}
	return nil, fmt.Errorf("unsupported run policy: %T", policy)
}

// ReferenceConfig describes every property the registered rules understand.
// Config validation compares user configs against it.
func (r *Registry) ReferenceConfig() *config.Config {
	values := map[string]any{}
	for _, ruleSet := range instantiate(r.All()) {
		section := map[string]any{"active": true}
		for _, descriptor := range ruleSet.Rules {
			ruleSection := map[string]any{"active": descriptor.DefaultActive}
			for key, def := range descriptor.ConfigKeys {
				ruleSection[key] = def
			}
			section[descriptor.ID] = ruleSection
		}
		values[ruleSet.ID] = section
	}
	return config.New(values)
}

func instantiate(providers []Provider) []RuleSet {
	seen := map[string]bool{}
	var ruleSets []RuleSet
	for _, provider := range providers {
		ruleSet := provider.New()
		if seen[ruleSet.ID] {
			log.WithField("ruleSet", ruleSet.ID).Warn("Ignoring duplicate rule set")
			continue
		}
		seen[ruleSet.ID] = true
		ruleSets = append(ruleSets, ruleSet)
	}
	return ruleSets
}
