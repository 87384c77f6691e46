package reportfmt

import (
	"encoding/json"
	"io"

	"github.com/google/uuid"

	"github.com/doctypetool/doctype/pkg/constants"
	"github.com/doctypetool/doctype/pkg/doctype"
)

const (
	sarifVersion = "2.1.0"
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
)

// SARIF 2.1.0, reduced to the parts a diagnostic list needs.
type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool              sarifTool              `json:"tool"`
	AutomationDetails sarifAutomationDetails `json:"automationDetails"`
	Artifacts         []sarifArtifact        `json:"artifacts"`
	Results           []sarifResult          `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifAutomationDetails struct {
	GUID string `json:"guid"`
}

type sarifArtifact struct {
	Location   sarifArtifactLocation `json:"location"`
	Properties map[string]any        `json:"properties,omitempty"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	RuleIndex int             `json:"ruleIndex"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine,omitempty"`
	StartColumn int `json:"startColumn,omitempty"`
}

// One rule per severity; the parser does not assign finer-grained codes.
var sarifRules = []sarifRule{
	{ID: "doctype/warning", ShortDescription: sarifMessage{Text: "Parser warning"}},
	{ID: "doctype/error", ShortDescription: sarifMessage{Text: "Recoverable validity error"}},
	{ID: "doctype/fatal", ShortDescription: sarifMessage{Text: "Well-formedness error; processing stopped"}},
}

func sarifRuleIndex(sev doctype.Severity) int {
	switch sev {
	case doctype.SeverityWarning:
		return 0
	case doctype.SeverityError:
		return 1
	default:
		return 2
	}
}

func sarifLevel(sev doctype.Severity) string {
	if sev == doctype.SeverityWarning {
		return "warning"
	}
	return "error"
}

func newSARIFLog(version string, reports []doctype.Report) sarifLog {
	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name:    constants.CLIName,
			Version: version,
			Rules:   sarifRules,
		}},
		AutomationDetails: sarifAutomationDetails{GUID: uuid.NewString()},
		Artifacts:         []sarifArtifact{},
		Results:           []sarifResult{},
	}

	for _, r := range reports {
		artifact := sarifArtifact{Location: sarifArtifactLocation{URI: r.URI}}
		if r.Declaration != nil {
			artifact.Properties = map[string]any{"doctype": r.Declaration.Markup()}
		}
		run.Artifacts = append(run.Artifacts, artifact)

		for _, d := range r.Diagnostics {
			idx := sarifRuleIndex(d.Severity)
			uri := d.SystemID
			if uri == "" {
				uri = r.URI
			}
			run.Results = append(run.Results, sarifResult{
				RuleID:    sarifRules[idx].ID,
				RuleIndex: idx,
				Level:     sarifLevel(d.Severity),
				Message:   sarifMessage{Text: d.Message},
				Locations: []sarifLocation{{PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: uri},
					Region:           sarifRegion{StartLine: d.Line, StartColumn: d.Column},
				}}},
			})
		}
	}

	return sarifLog{Version: sarifVersion, Schema: sarifSchema, Runs: []sarifRun{run}}
}

func writeSARIF(w io.Writer, version string, reports []doctype.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newSARIFLog(version, reports))
}
