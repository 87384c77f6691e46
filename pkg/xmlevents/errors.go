package xmlevents

import "fmt"

// Severity classifies a ParseError.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	}
	return "unknown"
}

// ParseError is a located diagnostic raised while parsing.
type ParseError struct {
	Severity Severity
	SystemID string
	Line     int
	Column   int
	Msg      string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.SystemID, e.Line, e.Column, e.Msg)
}
