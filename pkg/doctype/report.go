package doctype

import (
	"strconv"
	"strings"
)

// Report is the outcome of processing one document.
type Report struct {
	URI string
	// Declaration is nil when the document has no DOCTYPE.
	Declaration *Declaration
	Diagnostics []Diagnostic
	// Aborted is set when processing stopped before the end of the document.
	Aborted bool
}

// HasDeclaration reports whether a DOCTYPE was found.
func (r Report) HasDeclaration() bool { return r.Declaration != nil }

func (r Report) count(sev Severity) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

func (r Report) WarningCount() int { return r.count(SeverityWarning) }
func (r Report) ErrorCount() int   { return r.count(SeverityError) }
func (r Report) FatalCount() int   { return r.count(SeverityFatal) }

// Markup renders the report as a <report> record:
//
//	<report uri='…'><diagnostic severity='…' systemID='…' line='…' column='…'>…</diagnostic><doctype …/></report>
func (r Report) Markup() string {
	var b strings.Builder
	b.WriteString("<report")
	writeAttr(&b, "uri", r.URI)
	b.WriteString(">")
	for _, d := range r.Diagnostics {
		b.WriteString("<diagnostic")
		writeAttr(&b, "severity", d.Severity.String())
		writeAttr(&b, "systemID", d.SystemID)
		writeAttr(&b, "line", strconv.Itoa(d.Line))
		writeAttr(&b, "column", strconv.Itoa(d.Column))
		b.WriteString(">")
		b.WriteString(escapeAttr(d.Message))
		b.WriteString("</diagnostic>")
	}
	if r.Declaration != nil {
		b.WriteString(r.Declaration.ReportFragment(r.URI))
	}
	b.WriteString("</report>")
	return b.String()
}
