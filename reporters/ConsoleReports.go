package reporters

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/reaandrew/lintdetector/core"
	"github.com/reaandrew/lintdetector/scanners"
)

// LiteConsoleReport prints one line per active issue.
type LiteConsoleReport struct{}

func (LiteConsoleReport) ID() string { return "lite" }

func (LiteConsoleReport) Render(result *core.AnalysisResult) (string, error) {
	var sb strings.Builder
	for _, issue := range result.ActiveIssues() {
		fmt.Fprintf(&sb, "%s: %s [%s]\n", issue.Location(), issue.Message, issue.RuleInstance.ID)
	}
	return sb.String(), nil
}

// SummaryConsoleReport counts the active issues per rule set.
type SummaryConsoleReport struct{}

func (SummaryConsoleReport) ID() string { return "summary" }

func (SummaryConsoleReport) Render(result *core.AnalysisResult) (string, error) {
	counts := map[string]int{}
	for _, issue := range result.ActiveIssues() {
		counts[issue.RuleInstance.RuleSetID]++
	}
	ruleSets := make([]string, 0, len(counts))
	total := 0
	for ruleSet, count := range counts {
		ruleSets = append(ruleSets, ruleSet)
		total += count
	}
	slices.Sort(ruleSets)

	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Rule set", "Issues"})
	for _, ruleSet := range ruleSets {
		tw.AppendRow(table.Row{ruleSet, counts[ruleSet]})
	}
	tw.AppendFooter(table.Row{"Total", total})
	return tw.Render(), nil
}

// NotificationsConsoleReport prints every run notification.
type NotificationsConsoleReport struct{}

func (NotificationsConsoleReport) ID() string { return "notifications" }

func (NotificationsConsoleReport) Render(result *core.AnalysisResult) (string, error) {
	var sb strings.Builder
	for _, notification := range result.Notifications {
		fmt.Fprintf(&sb, "%s: %s\n", notification.Level, notification.Message)
	}
	return sb.String(), nil
}

// ProfilingConsoleReport sums the profiled rule executions per rule, slowest first.
type ProfilingConsoleReport struct{}

func (ProfilingConsoleReport) ID() string { return "profiling-summary" }

type ruleTotals struct {
	rule     string
	duration time.Duration
	files    int
	findings int
}

func (ProfilingConsoleReport) Render(result *core.AnalysisResult) (string, error) {
	executions, ok := scanners.ExecutionsOf(result)
	if !ok || len(executions) == 0 {
		return "", nil
	}

	byRule := map[string]*ruleTotals{}
	for _, execution := range executions {
		key := execution.RuleSetID + ":" + execution.RuleID
		totals, ok := byRule[key]
		if !ok {
			totals = &ruleTotals{rule: key}
			byRule[key] = totals
		}
		totals.duration += execution.Duration
		totals.files++
		totals.findings += execution.Findings
	}
	rows := make([]*ruleTotals, 0, len(byRule))
	for _, totals := range byRule {
		rows = append(rows, totals)
	}
	slices.SortFunc(rows, func(a, b *ruleTotals) int {
		return cmp.Or(cmp.Compare(b.duration, a.duration), cmp.Compare(a.rule, b.rule))
	})

	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Rule", "Duration", "Files", "Findings"})
	for _, row := range rows {
		tw.AppendRow(table.Row{row.rule, row.duration.Round(time.Microsecond), row.files, row.findings})
	}
	return tw.Render(), nil
}
