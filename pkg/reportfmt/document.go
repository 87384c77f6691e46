package reportfmt

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/doctypetool/doctype/pkg/doctype"
)

// Document is the serialisable form of a doctype.Report.
type Document struct {
	URI          string       `json:"uri" yaml:"uri"`
	Doctype      *Doctype     `json:"doctype,omitempty" yaml:"doctype,omitempty"`
	Diagnostics  []Diagnostic `json:"diagnostics" yaml:"diagnostics"`
	Aborted      bool         `json:"aborted" yaml:"aborted"`
	FatalCount   int          `json:"fatal_count" yaml:"fatal_count"`
	ErrorCount   int          `json:"error_count" yaml:"error_count"`
	WarningCount int          `json:"warning_count" yaml:"warning_count"`
}

// Doctype describes a resolved declaration.
type Doctype struct {
	Root     string `json:"root" yaml:"root"`
	PublicID string `json:"public_id,omitempty" yaml:"public_id,omitempty"`
	SystemID string `json:"system_id,omitempty" yaml:"system_id,omitempty"`
	Markup   string `json:"markup" yaml:"markup"`
}

// Diagnostic is one located message.
type Diagnostic struct {
	Severity string `json:"severity" yaml:"severity"`
	SystemID string `json:"system_id" yaml:"system_id"`
	Line     int    `json:"line" yaml:"line"`
	Column   int    `json:"column" yaml:"column"`
	Message  string `json:"message" yaml:"message"`
}

// NewDocument converts a report.
func NewDocument(r doctype.Report) Document {
	doc := Document{
		URI:          r.URI,
		Diagnostics:  []Diagnostic{},
		Aborted:      r.Aborted,
		FatalCount:   r.FatalCount(),
		ErrorCount:   r.ErrorCount(),
		WarningCount: r.WarningCount(),
	}
	if d := r.Declaration; d != nil {
		doc.Doctype = &Doctype{
			Root:     d.Root(),
			PublicID: d.PublicID(),
			SystemID: d.SystemID(),
			Markup:   d.Markup(),
		}
	}
	for _, d := range r.Diagnostics {
		doc.Diagnostics = append(doc.Diagnostics, Diagnostic{
			Severity: d.Severity.String(),
			SystemID: d.SystemID,
			Line:     d.Line,
			Column:   d.Column,
			Message:  d.Message,
		})
	}
	return doc
}

func newDocuments(reports []doctype.Report) []Document {
	docs := make([]Document, 0, len(reports))
	for _, r := range reports {
		docs = append(docs, NewDocument(r))
	}
	return docs
}

// writeJSON writes a single report as an object and several as an array.
func writeJSON(w io.Writer, reports []doctype.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(reports) == 1 {
		return enc.Encode(NewDocument(reports[0]))
	}
	return enc.Encode(newDocuments(reports))
}

// writeYAML writes one YAML document per report.
func writeYAML(w io.Writer, reports []doctype.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, r := range reports {
		if err := enc.Encode(NewDocument(r)); err != nil {
			return err
		}
	}
	return enc.Close()
}
