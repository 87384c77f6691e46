// Package xmlevents drives a push-style handler with the lexical, content and
// error events of an XML 1.0 document.
//
// It sits on top of encoding/xml in strict mode and adds what a rewriting
// consumer needs from a SAX-like parser: the document type declaration split
// into name and external identifiers, comment and CDATA boundaries, and the
// exact source bytes of every other construct so that a document can be
// copied through unchanged.
package xmlevents

// LexicalHandler receives the document type declaration scope, comments and
// CDATA section boundaries.
type LexicalHandler interface {
	StartDTD(name, publicID, systemID string) error
	EndDTD() error
	StartCDATA() error
	EndCDATA() error
	Comment(text string) error
}

// ContentHandler receives the remaining markup of the document. Every raw
// argument is the exact source text of the construct.
type ContentHandler interface {
	ProcInst(target, raw string) error
	StartElement(name, raw string) error
	// EndElement is also called for empty-element tags, with an empty raw.
	EndElement(name, raw string) error
	// Text carries character data as written, with references unexpanded.
	// Inside a CDATA section it carries the section content only.
	Text(raw string) error
}

// ErrorHandler receives diagnostics. Returning a non-nil error from any
// method stops the parse; Fatal stops it regardless.
type ErrorHandler interface {
	Warning(err *ParseError) error
	Error(err *ParseError) error
	Fatal(err *ParseError) error
}

// Handler is the full event capability set consumed by Parse.
type Handler interface {
	LexicalHandler
	ContentHandler
	ErrorHandler
}
