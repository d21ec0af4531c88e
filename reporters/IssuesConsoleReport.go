package reporters

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/reaandrew/lintdetector/core"
)

// IssuesConsoleReport prints the active issues grouped per file.
type IssuesConsoleReport struct{}

func (IssuesConsoleReport) ID() string { return "issues" }

func (IssuesConsoleReport) Render(result *core.AnalysisResult) (string, error) {
	issues := result.ActiveIssues()
	if len(issues) == 0 {
		return "", nil
	}

	tw := table.NewWriter()
	tw.SetAllowedRowLength(160)
	tw.AppendHeader(table.Row{"Location", "Rule", "Severity", "Message"})

	paths, grouped := issuesByFile(issues)
	green := text.FgGreen
	for i, path := range paths {
		if i > 0 {
			tw.AppendSeparator()
		}
		tw.AppendRow(table.Row{green.Sprint(path)})
		for _, issue := range grouped[path] {
			start := issue.Entity.Location.Start
			tw.AppendRow(table.Row{
				fmt.Sprintf("%d:%d", start.Line, start.Column),
				ruleKey(issue),
				severityColor(issue.Severity).Sprint(issue.Severity),
				text.WrapSoft(issue.Message, 80),
			})
		}
	}
	return tw.Render(), nil
}

func severityColor(severity core.Severity) text.Colors {
	switch severity {
	case core.SeverityError:
		return text.Colors{text.FgRed}
	case core.SeverityWarning:
		return text.Colors{text.FgYellow}
	default:
		return text.Colors{text.FgBlue}
	}
}
