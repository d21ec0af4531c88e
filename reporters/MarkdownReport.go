package reporters

import (
	"fmt"
	"slices"
	"strings"

	"github.com/reaandrew/lintdetector/core"
)

// MarkdownReport renders a summary table per rule set followed by the issues per file.
type MarkdownReport struct{}

func (MarkdownReport) ID() string { return "md" }

func (MarkdownReport) Render(result *core.AnalysisResult) ([]byte, error) {
	var sb strings.Builder
	active := result.ActiveIssues()

	sb.WriteString(fmt.Sprintf("# %s report\n\n", core.ToolName))
	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- Issues: %d\n", len(active)))
	sb.WriteString(fmt.Sprintf("- Suppressed: %d\n", len(result.Issues)-len(active)))
	for _, metric := range result.Metrics {
		sb.WriteString(fmt.Sprintf("- %s: %d\n", metric.Type, metric.Value))
	}
	sb.WriteString("\n")

	counts := map[string]int{}
	for _, issue := range active {
		counts[ruleKey(issue)]++
	}
	if len(counts) > 0 {
		rules := make([]string, 0, len(counts))
		for rule := range counts {
			rules = append(rules, rule)
		}
		slices.Sort(rules)
		sb.WriteString("| Rule | Issues |\n")
		sb.WriteString("|------|--------|\n")
		for _, rule := range rules {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", rule, counts[rule]))
		}
		sb.WriteString("\n")
	}

	paths, grouped := issuesByFile(result.Issues)
	if len(paths) > 0 {
		sb.WriteString("## Issues\n\n")
	}
	for _, path := range paths {
		sb.WriteString(fmt.Sprintf("### %s\n\n", path))
		sb.WriteString("| Line | Rule | Severity | Message | Suppressed |\n")
		sb.WriteString("|------|------|----------|---------|------------|\n")
		for _, issue := range grouped[path] {
			sb.WriteString(fmt.Sprintf("| %d:%d | %s | %s | %s | %s |\n",
				issue.Entity.Location.Start.Line,
				issue.Entity.Location.Start.Column,
				ruleKey(issue),
				issue.Severity,
				escapeMarkdown(issue.Message),
				strings.Join(issue.SuppressReasons, ", "),
			))
		}
		sb.WriteString("\n")
	}

	if len(result.Notifications) > 0 {
		sb.WriteString("## Notifications\n\n")
		for _, notification := range result.Notifications {
			sb.WriteString(fmt.Sprintf("- **%s**: %s\n", notification.Level, notification.Message))
		}
		sb.WriteString("\n")
	}
	return []byte(sb.String()), nil
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
