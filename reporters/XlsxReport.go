package reporters

import (
	"fmt"
	"slices"
	"strings"

	"github.com/reaandrew/lintdetector/core"
	"github.com/xuri/excelize/v2"
)

const (
	rulesSheet   = "Rules"
	metricsSheet = "Metrics"
)

// XlsxReport writes a workbook with one sheet of issues per rule set plus the
// rule and metric overviews.
type XlsxReport struct{}

func (XlsxReport) ID() string { return "xlsx" }

var issueHeaders = []string{"Rule", "Severity", "Path", "Line", "Column", "Message", "Signature", "Suppressed"}

func (XlsxReport) Render(result *core.AnalysisResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	issuesByRuleSet := make(map[string][]core.Issue)
	for _, issue := range result.Issues {
		ruleSet := strings.TrimSpace(issue.RuleInstance.RuleSetID)
		issuesByRuleSet[ruleSet] = append(issuesByRuleSet[ruleSet], issue)
	}
	ruleSets := make([]string, 0, len(issuesByRuleSet))
	for ruleSet := range issuesByRuleSet {
		ruleSets = append(ruleSets, ruleSet)
	}
	slices.Sort(ruleSets)

	for _, ruleSet := range ruleSets {
		rows := make([][]any, 0, len(issuesByRuleSet[ruleSet]))
		for _, issue := range issuesByRuleSet[ruleSet] {
			rows = append(rows, []any{
				issue.RuleInstance.ID,
				issue.Severity.String(),
				issue.Entity.Location.Path,
				issue.Entity.Location.Start.Line,
				issue.Entity.Location.Start.Column,
				issue.Message,
				issue.Entity.Signature,
				strings.Join(issue.SuppressReasons, ", "),
			})
		}
		if err := writeSheet(f, ruleSet, issueHeaders, rows); err != nil {
			return nil, err
		}
	}

	ruleRows := make([][]any, 0, len(result.Rules))
	for _, rule := range result.Rules {
		ruleRows = append(ruleRows, []any{rule.RuleSetID, rule.ID, rule.Active, rule.Severity.String()})
	}
	if err := writeSheet(f, rulesSheet, []string{"RuleSet", "Rule", "Active", "Severity"}, ruleRows); err != nil {
		return nil, err
	}

	metricRows := make([][]any, 0, len(result.Metrics))
	for _, metric := range result.Metrics {
		metricRows = append(metricRows, []any{metric.Type, metric.Value})
	}
	if err := writeSheet(f, metricsSheet, []string{"Metric", "Value"}, metricRows); err != nil {
		return nil, err
	}

	// Remove default sheet if not used
	if defaultSheetName := f.GetSheetName(0); defaultSheetName == "Sheet1" {
		if err := f.DeleteSheet(defaultSheetName); err != nil {
			return nil, fmt.Errorf("failed to delete default sheet: %w", err)
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write XLSX workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, name string, headers []string, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet '%s': %w", name, err)
	}
	if err := f.SetSheetRow(name, "A1", &headers); err != nil {
		return fmt.Errorf("failed to set headers for sheet '%s': %w", name, err)
	}
	for i, row := range rows {
		rowNum := i + 2
		cellAddress, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return fmt.Errorf("failed to get cell address for row %d in sheet '%s': %w", rowNum, name, err)
		}
		if err := f.SetSheetRow(name, cellAddress, &row); err != nil {
			return fmt.Errorf("failed to set data for row %d in sheet '%s': %w", rowNum, name, err)
		}
	}
	return nil
}
