package rules

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/reaandrew/lintdetector/config"
	"github.com/reaandrew/lintdetector/core"
	log "github.com/sirupsen/logrus"
)

// LoadedRule is a rule resolved against the run's config.
type LoadedRule struct {
	Instance      core.RuleInstance
	Descriptor    Descriptor
	RuleSetConfig *config.Config
	Config        *config.Config
	Aliases       []string
	Filter        *PathFilter
}

// New creates a fresh rule instance.
func (l LoadedRule) New(fullAnalysis bool) Rule {
	return l.Descriptor.Factory(l.Config, fullAnalysis)
}

// Project reports whether the rule runs in the cross-file phase.
func (l LoadedRule) Project(fullAnalysis bool) bool {
	_, ok := l.New(fullAnalysis).(ProjectRule)
	return ok
}

// Load resolves every rule eligible under policy against cfg. Inactive rules are
// returned too so reports can list them; check Instance.Active before running.
func Load(registry *Registry, policy RunPolicy, cfg *config.Config, fullAnalysis bool) ([]LoadedRule, error) {
	ruleSets, err := registry.RuleSets(policy)
	if err != nil {
		return nil, err
	}
	_, forceActive := policy.(RestrictToSingleRule)

	var loaded []LoadedRule
	seen := map[string]bool{}
	for _, ruleSet := range ruleSets {
		setConfig := cfg.SubConfig(ruleSet.ID)
		setActive := setConfig.Bool("active", true)
		for _, descriptor := range ruleSet.Rules {
			rule, err := resolve(ruleSet.ID, setConfig, setActive, descriptor, fullAnalysis, forceActive)
			if err != nil {
				return nil, err
			}
			if seen[rule.Instance.Key()] {
				return nil, &core.RuleLoadError{Message: fmt.Sprintf("duplicate rule '%s'", rule.Instance.Key())}
			}
			seen[rule.Instance.Key()] = true
			loaded = append(loaded, rule)
		}
	}
	log.WithField("rules", len(loaded)).Debug("Loaded rules")
	return loaded, nil
}

func resolve(ruleSetID string, setConfig *config.Config, setActive bool, descriptor Descriptor, fullAnalysis, forceActive bool) (LoadedRule, error) {
	ruleConfig := setConfig.SubConfig(descriptor.ID)

	active := setActive && ruleConfig.Bool("active", descriptor.DefaultActive)
	if forceActive {
		active = true
	}
	if active && descriptor.RequiresSemantics && !fullAnalysis {
		log.WithField("rule", descriptor.ID).Debug("Rule needs type information and is skipped in light mode")
		active = false
	}

	severity := descriptor.Severity
	if raw := ruleConfig.String("severity", ""); raw != "" {
		parsed, err := core.ParseSeverity(raw)
		if err != nil {
			return LoadedRule{}, &core.ConfigurationError{Messages: []string{ruleConfig.KeyPath("severity")}, Err: err}
		}
		severity = parsed
	}

	filter, err := NewPathFilter(
		ruleConfig.StringList("includes", setConfig.StringList("includes", nil)),
		ruleConfig.StringList("excludes", setConfig.StringList("excludes", nil)),
	)
	if err != nil {
		return LoadedRule{}, &core.ConfigurationError{Messages: []string{ruleConfig.Path()}, Err: err}
	}

	aliases := slices.Concat(descriptor.Aliases, ruleConfig.StringList("aliases", nil))

	return LoadedRule{
		Instance: core.RuleInstance{
			ID:          descriptor.ID,
			RuleSetID:   ruleSetID,
			Severity:    severity,
			Active:      active,
			URL:         descriptor.URL,
			Description: descriptor.Description,
		},
		Descriptor:    descriptor,
		RuleSetConfig: setConfig,
		Config:        ruleConfig,
		Aliases:       aliases,
		Filter:        filter,
	}, nil
}

// Active keeps the active rules, ordered by priority (highest first), then rule set and id.
func Active(loaded []LoadedRule) []LoadedRule {
	var active []LoadedRule
	for _, rule := range loaded {
		if rule.Instance.Active {
			active = append(active, rule)
		}
	}
	slices.SortStableFunc(active, func(a, b LoadedRule) int {
		return cmp.Or(
			cmp.Compare(b.Descriptor.Priority, a.Descriptor.Priority),
			cmp.Compare(a.Instance.RuleSetID, b.Instance.RuleSetID),
			cmp.Compare(a.Instance.ID, b.Instance.ID),
		)
	})
	return active
}

// Instances returns the rule instances of all loaded rules, active or not.
func Instances(loaded []LoadedRule) []core.RuleInstance {
	instances := make([]core.RuleInstance, 0, len(loaded))
	for _, rule := range loaded {
		instances = append(instances, rule.Instance)
	}
	return instances
}
