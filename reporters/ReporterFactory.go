package reporters

import (
	"fmt"
	"slices"
)

var consoleReports = map[string]func() ConsoleReport{
	"issues":            func() ConsoleReport { return IssuesConsoleReport{} },
	"lite":              func() ConsoleReport { return LiteConsoleReport{} },
	"summary":           func() ConsoleReport { return SummaryConsoleReport{} },
	"notifications":     func() ConsoleReport { return NotificationsConsoleReport{} },
	"profiling-summary": func() ConsoleReport { return ProfilingConsoleReport{} },
}

var outputReports = map[string]func() OutputReport{
	"checkstyle": func() OutputReport { return CheckstyleReport{} },
	"sarif":      func() OutputReport { return SarifReport{} },
	"html":       func() OutputReport { return HtmlReport{} },
	"json":       func() OutputReport { return JsonReport{} },
	"jsonl":      func() OutputReport { return JsonLinesReport{} },
	"md":         func() OutputReport { return MarkdownReport{} },
	"profiling":  func() OutputReport { return ProfilingReport{} },
	"xlsx":       func() OutputReport { return XlsxReport{} },
	"sqlite":     func() OutputReport { return SqliteReport{} },
}

func CreateConsoleReport(id string) (ConsoleReport, error) {
	if create, ok := consoleReports[id]; ok {
		return create(), nil
	}
	return nil, fmt.Errorf("unknown console report: %s", id)
}

func CreateOutputReport(reportFormat string) (OutputReport, error) {
	if create, ok := outputReports[reportFormat]; ok {
		return create(), nil
	}
	return nil, fmt.Errorf("unknown report format: %s", reportFormat)
}

// ConsoleReportIDs lists the console reports in the order they are printed.
func ConsoleReportIDs() []string {
	return []string{"issues", "lite", "summary", "notifications", "profiling-summary"}
}

func OutputReportIDs() []string {
	ids := make([]string, 0, len(outputReports))
	for id := range outputReports {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
