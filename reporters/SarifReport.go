package reporters

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/reaandrew/lintdetector/core"
)

const (
	sarifVersion = "2.1.0"
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
)

// SarifReport writes a SARIF 2.1.0 log with one run.
type SarifReport struct{}

func (SarifReport) ID() string { return "sarif" }

type SarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []SarifRun `json:"runs"`
}

type SarifRun struct {
	Tool              SarifTool              `json:"tool"`
	AutomationDetails SarifAutomationDetails `json:"automationDetails"`
	Results           []SarifResult          `json:"results"`
}

type SarifAutomationDetails struct {
	ID string `json:"id"`
}

type SarifTool struct {
	Driver SarifDriver `json:"driver"`
}

type SarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []SarifRule `json:"rules"`
}

type SarifText struct {
	Text string `json:"text"`
}

type SarifRule struct {
	ID                   string                 `json:"id"`
	Name                 string                 `json:"name"`
	ShortDescription     SarifText              `json:"shortDescription"`
	HelpURI              string                 `json:"helpUri,omitempty"`
	DefaultConfiguration SarifRuleConfiguration `json:"defaultConfiguration"`
}

type SarifRuleConfiguration struct {
	Level string `json:"level"`
}

type SarifResult struct {
	RuleID              string             `json:"ruleId"`
	Level               string             `json:"level"`
	Message             SarifText          `json:"message"`
	Locations           []SarifLocation    `json:"locations"`
	RelatedLocations    []SarifLocation    `json:"relatedLocations,omitempty"`
	PartialFingerprints map[string]string  `json:"partialFingerprints,omitempty"`
	Suppressions        []SarifSuppression `json:"suppressions,omitempty"`
}

type SarifLocation struct {
	PhysicalLocation SarifPhysicalLocation `json:"physicalLocation"`
}

type SarifPhysicalLocation struct {
	ArtifactLocation SarifArtifactLocation `json:"artifactLocation"`
	Region           SarifRegion           `json:"region"`
}

type SarifArtifactLocation struct {
	URI string `json:"uri"`
}

type SarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn"`
	EndLine     int `json:"endLine"`
	EndColumn   int `json:"endColumn"`
}

type SarifSuppression struct {
	Kind          string `json:"kind"`
	Justification string `json:"justification"`
}

func (SarifReport) Render(result *core.AnalysisResult) ([]byte, error) {
	runID := result.RunID()
	if runID == "" {
		runID = uuid.New().String()
	}

	run := SarifRun{
		Tool: SarifTool{Driver: SarifDriver{
			Name:    core.ToolName,
			Version: core.Version,
			Rules:   []SarifRule{},
		}},
		AutomationDetails: SarifAutomationDetails{ID: runID},
		Results:           []SarifResult{},
	}
	for _, rule := range result.Rules {
		if !rule.Active {
			continue
		}
		run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, SarifRule{
			ID:                   sarifRuleID(rule),
			Name:                 rule.ID,
			ShortDescription:     SarifText{Text: rule.Description},
			HelpURI:              rule.URL,
			DefaultConfiguration: SarifRuleConfiguration{Level: sarifLevel(rule.Severity)},
		})
	}

	for _, issue := range result.Issues {
		sarifResult := SarifResult{
			RuleID:              sarifRuleID(issue.RuleInstance),
			Level:               sarifLevel(issue.Severity),
			Message:             SarifText{Text: issue.Message},
			Locations:           []SarifLocation{sarifLocation(issue.Entity.Location)},
			PartialFingerprints: map[string]string{"signature/v1": issue.Entity.Signature},
		}
		for _, reference := range issue.References {
			sarifResult.RelatedLocations = append(sarifResult.RelatedLocations, sarifLocation(reference.Location))
		}
		for _, reason := range issue.SuppressReasons {
			sarifResult.Suppressions = append(sarifResult.Suppressions, SarifSuppression{
				Kind:          sarifSuppressionKind(reason),
				Justification: reason,
			})
		}
		run.Results = append(run.Results, sarifResult)
	}

	document := SarifLog{Version: sarifVersion, Schema: sarifSchema, Runs: []SarifRun{run}}
	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sarif report: %w", err)
	}
	return append(data, '\n'), nil
}

func sarifRuleID(rule core.RuleInstance) string {
	return fmt.Sprintf("%s.%s.%s", core.ToolName, rule.RuleSetID, rule.ID)
}

func sarifLevel(severity core.Severity) string {
	switch severity {
	case core.SeverityError:
		return "error"
	case core.SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}

// Directives live in the source, everything else was decided outside of it.
func sarifSuppressionKind(reason string) string {
	if reason == "directive" {
		return "inSource"
	}
	return "external"
}

func sarifLocation(location core.Location) SarifLocation {
	return SarifLocation{PhysicalLocation: SarifPhysicalLocation{
		ArtifactLocation: SarifArtifactLocation{URI: location.Path},
		Region: SarifRegion{
			StartLine:   location.Start.Line,
			StartColumn: location.Start.Column,
			EndLine:     location.End.Line,
			EndColumn:   location.End.Column,
		},
	}}
}
