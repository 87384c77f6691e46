// Package reportfmt renders doctype reports for people and for tools.
package reportfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/doctypetool/doctype/pkg/doctype"
)

// Format is a report output format.
type Format string

const (
	FormatXML   Format = "xml"
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatSARIF Format = "sarif"
)

// Formats lists every supported format, default first.
var Formats = []Format{FormatXML, FormatText, FormatJSON, FormatYAML, FormatSARIF}

// ParseFormat validates a format name. The empty string selects FormatXML.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatXML, nil
	}
	f := Format(strings.ToLower(s))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown report format %q (want one of %s)", s, formatList())
}

func formatList() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// Renderer writes reports in one format.
type Renderer struct {
	Format Format
	// Sources maps a report URI to the document text so the text format
	// can show the lines a diagnostic points at. Optional.
	Sources map[string][]byte
	// ToolVersion is recorded in SARIF output.
	ToolVersion string
}

// Write renders reports to w in the given format.
func Write(w io.Writer, format Format, reports ...doctype.Report) error {
	return Renderer{Format: format}.Write(w, reports...)
}

// Write renders reports to w, in order.
func (r Renderer) Write(w io.Writer, reports ...doctype.Report) error {
	switch r.Format {
	case FormatXML, "":
		return writeXML(w, reports)
	case FormatText:
		return r.writeText(w, reports)
	case FormatJSON:
		return writeJSON(w, reports)
	case FormatYAML:
		return writeYAML(w, reports)
	case FormatSARIF:
		return writeSARIF(w, r.ToolVersion, reports)
	}
	return fmt.Errorf("unknown report format %q", r.Format)
}

// writeXML writes one <report> record per line.
func writeXML(w io.Writer, reports []doctype.Report) error {
	for _, report := range reports {
		if _, err := io.WriteString(w, report.Markup()+"\n"); err != nil {
			return err
		}
	}
	return nil
}
