package reporters

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/reaandrew/lintdetector/core"
)

// CheckstyleReport writes the checkstyle XML format understood by most CI servers.
// Suppressed issues are kept with the severity "ignore".
type CheckstyleReport struct{}

func (CheckstyleReport) ID() string { return "checkstyle" }

type checkstyleDocument struct {
	XMLName xml.Name         `xml:"checkstyle"`
	Version string           `xml:"version,attr"`
	Files   []checkstyleFile `xml:"file"`
}

type checkstyleFile struct {
	Name   string            `xml:"name,attr"`
	Errors []checkstyleError `xml:"error"`
}

type checkstyleError struct {
	Line     int    `xml:"line,attr"`
	Column   int    `xml:"column,attr"`
	Severity string `xml:"severity,attr"`
	Message  string `xml:"message,attr"`
	Source   string `xml:"source,attr"`
}

func (CheckstyleReport) Render(result *core.AnalysisResult) ([]byte, error) {
	document := checkstyleDocument{Version: "4.3"}
	paths, grouped := issuesByFile(result.Issues)
	for _, path := range paths {
		file := checkstyleFile{Name: path}
		for _, issue := range grouped[path] {
			severity := issue.Severity.String()
			if issue.Suppressed() {
				severity = "ignore"
			}
			file.Errors = append(file.Errors, checkstyleError{
				Line:     issue.Entity.Location.Start.Line,
				Column:   issue.Entity.Location.Start.Column,
				Severity: severity,
				Message:  issue.Message,
				Source:   fmt.Sprintf("%s.%s.%s", core.ToolName, issue.RuleInstance.RuleSetID, issue.RuleInstance.ID),
			})
		}
		document.Files = append(document.Files, file)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	encoder := xml.NewEncoder(&buf)
	encoder.Indent("", "  ")
	if err := encoder.Encode(document); err != nil {
		return nil, fmt.Errorf("failed to encode checkstyle report: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
