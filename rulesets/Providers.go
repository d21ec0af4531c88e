package rulesets

import "github.com/reaandrew/lintdetector/rules"

const docsBaseURL = "https://github.com/reaandrew/lintdetector/blob/main/docs/rules/"

// InitializeProviders returns the built-in rule set providers.
func InitializeProviders() []rules.Provider {
	return []rules.Provider{
		{ID: StyleRuleSetID, New: StyleRuleSet},
		{ID: ComplexityRuleSetID, New: ComplexityRuleSet},
		{ID: NamingRuleSetID, New: NamingRuleSet},
		{ID: PotentialBugsRuleSetID, New: PotentialBugsRuleSet},
	}
}

func docsURL(ruleSetID, ruleID string) string {
	return docsBaseURL + ruleSetID + ".md#" + ruleID
}
