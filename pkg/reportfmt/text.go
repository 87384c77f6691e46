package reportfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/doctypetool/doctype/pkg/console"
	"github.com/doctypetool/doctype/pkg/doctype"
)

const contextRadius = 1

// writeText renders each report for a terminal: the declaration, then each
// diagnostic with the source lines around it, then a count line.
func (r Renderer) writeText(w io.Writer, reports []doctype.Report) error {
	var b strings.Builder
	for _, report := range reports {
		if report.Declaration != nil {
			b.WriteString(console.FormatInfoMessage(fmt.Sprintf("%s: %s", report.URI, report.Declaration.Markup())))
		} else {
			b.WriteString(console.FormatInfoMessage(fmt.Sprintf("%s: no DOCTYPE declaration", report.URI)))
		}
		b.WriteString("\n")

		source := r.Sources[report.URI]
		for _, d := range report.Diagnostics {
			b.WriteString(console.FormatDiagnostic(console.Diagnostic{
				Position: console.Position{File: d.SystemID, Line: d.Line, Column: d.Column},
				Severity: d.Severity.String(),
				Message:  d.Message,
				Context:  console.ContextLines(source, d.Line, contextRadius),
			}))
		}

		switch {
		case report.Aborted:
			b.WriteString(console.FormatErrorMessage(fmt.Sprintf("%s: processing stopped (%s, %s, %s)",
				report.URI,
				console.FormatCount(report.FatalCount(), "fatal error"),
				console.FormatCount(report.ErrorCount(), "error"),
				console.FormatCount(report.WarningCount(), "warning"))))
			b.WriteString("\n")
		case len(report.Diagnostics) > 0:
			b.WriteString(console.FormatWarningMessage(fmt.Sprintf("%s: %s, %s",
				report.URI,
				console.FormatCount(report.ErrorCount(), "error"),
				console.FormatCount(report.WarningCount(), "warning"))))
			b.WriteString("\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
