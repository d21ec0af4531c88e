package reporters

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/reaandrew/lintdetector/core"
	"github.com/reaandrew/lintdetector/scanners"
)

// ProfilingReport writes one CSV row per profiled rule execution.
type ProfilingReport struct{}

func (ProfilingReport) ID() string { return "profiling" }

var profilingHeader = []string{"RuleSet", "Rule", "File", "Duration(ms)", "Findings"}

func (ProfilingReport) Render(result *core.AnalysisResult) ([]byte, error) {
	executions, _ := scanners.ExecutionsOf(result)

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(profilingHeader); err != nil {
		return nil, fmt.Errorf("failed to write profiling header: %w", err)
	}
	for _, execution := range executions {
		record := []string{
			execution.RuleSetID,
			execution.RuleID,
			execution.Path,
			strconv.FormatFloat(float64(execution.Duration.Microseconds())/1000, 'f', 3, 64),
			strconv.Itoa(execution.Findings),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write profiling record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to write profiling report: %w", err)
	}
	return buf.Bytes(), nil
}
