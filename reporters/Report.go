package reporters

import (
	"slices"

	"github.com/reaandrew/lintdetector/core"
)

// ConsoleReport renders a human readable section for the terminal.
// An empty string means there is nothing to show.
type ConsoleReport interface {
	ID() string
	Render(result *core.AnalysisResult) (string, error)
}

// OutputReport renders a machine readable document written to a destination.
type OutputReport interface {
	ID() string
	Render(result *core.AnalysisResult) ([]byte, error)
}

// issuesByFile groups issues per file path. Both the paths and each group keep
// the canonical issue order.
func issuesByFile(issues []core.Issue) ([]string, map[string][]core.Issue) {
	var paths []string
	grouped := map[string][]core.Issue{}
	for _, issue := range issues {
		path := issue.Entity.Location.Path
		if _, ok := grouped[path]; !ok {
			paths = append(paths, path)
		}
		grouped[path] = append(grouped[path], issue)
	}
	slices.Sort(paths)
	return paths, grouped
}

func ruleKey(issue core.Issue) string {
	return issue.RuleInstance.Key()
}
