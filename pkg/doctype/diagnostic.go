package doctype

import (
	"fmt"

	"github.com/doctypetool/doctype/pkg/xmlevents"
)

// Severity of a Diagnostic.
type Severity = xmlevents.Severity

const (
	SeverityWarning = xmlevents.SeverityWarning
	SeverityError   = xmlevents.SeverityError
	SeverityFatal   = xmlevents.SeverityFatal
)

// Diagnostic is one warning, error or fatal error raised while parsing.
type Diagnostic struct {
	Severity Severity
	SystemID string
	Line     int
	Column   int
	Message  string
}

func diagnosticFrom(e *xmlevents.ParseError) Diagnostic {
	return Diagnostic{
		Severity: e.Severity,
		SystemID: e.SystemID,
		Line:     e.Line,
		Column:   e.Column,
		Message:  e.Msg,
	}
}

// String renders the diagnostic as systemID:line:col: severity: message.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.SystemID, d.Line, d.Column, d.Severity, d.Message)
}
