package reporters

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/reaandrew/lintdetector/core"
)

type jsonDocument struct {
	Tool    string `json:"tool"`
	Version string `json:"version"`
	RunID   string `json:"runId,omitempty"`
	*core.AnalysisResult
}

// JsonReport writes the whole result as one JSON document, suppressed issues included.
type JsonReport struct{}

func (JsonReport) ID() string { return "json" }

func (JsonReport) Render(result *core.AnalysisResult) ([]byte, error) {
	document := jsonDocument{
		Tool:           core.ToolName,
		Version:        core.Version,
		RunID:          result.RunID(),
		AnalysisResult: result,
	}
	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result to JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// JsonLinesReport writes one JSON object per issue, one per line.
type JsonLinesReport struct{}

func (JsonLinesReport) ID() string { return "jsonl" }

func (JsonLinesReport) Render(result *core.AnalysisResult) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	for _, issue := range result.Issues {
		if err := encoder.Encode(issue); err != nil {
			return nil, fmt.Errorf("failed to marshal issue to JSON: %w", err)
		}
	}
	return buf.Bytes(), nil
}
