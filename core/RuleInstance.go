package core

// RuleInstance describes one rule as it was configured for a run.
type RuleInstance struct {
	ID          string   `json:"id"`
	RuleSetID   string   `json:"ruleSetId"`
	Severity    Severity `json:"severity"`
	Active      bool     `json:"active"`
	URL         string   `json:"url,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Key is unique per rule within a run.
func (r RuleInstance) Key() string {
	return r.RuleSetID + ":" + r.ID
}
