package core

// Entity identifies the code element an issue points at.
type Entity struct {
	// Signature is stable across runs as long as the element itself is unchanged.
	Signature string   `json:"signature"`
	Location  Location `json:"location"`
}

type Issue struct {
	RuleInstance    RuleInstance `json:"rule"`
	Entity          Entity       `json:"entity"`
	Message         string       `json:"message"`
	Severity        Severity     `json:"severity"`
	SuppressReasons []string     `json:"suppressReasons,omitempty"`
	References      []Entity     `json:"references,omitempty"`
}

// Suppressed is true exactly when at least one suppression reason was recorded.
func (i Issue) Suppressed() bool {
	return len(i.SuppressReasons) > 0
}

// WithSuppressReasons returns a copy of the issue with the reasons appended.
// The receiver's reason slice is never shared with the copy.
func (i Issue) WithSuppressReasons(reasons ...string) Issue {
	if len(reasons) == 0 {
		return i
	}
	merged := make([]string, 0, len(i.SuppressReasons)+len(reasons))
	merged = append(merged, i.SuppressReasons...)
	merged = append(merged, reasons...)
	i.SuppressReasons = merged
	return i
}

func (i Issue) Location() Location {
	return i.Entity.Location
}
