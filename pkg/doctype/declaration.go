// Package doctype intercepts the document type declaration of an XML
// document while it streams through, rewrites it according to an
// OverridePolicy and records what was found in a Report.
package doctype

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Declaration is one resolved DOCTYPE declaration. An empty identifier is
// absent. The zero value is not a valid declaration; use NewDeclaration or
// OverridePolicy.Resolve.
type Declaration struct {
	root     string
	publicID string
	systemID string
}

// NewDeclaration returns the declaration for root with the given
// identifiers. A public identifier without a system identifier is dropped,
// since PUBLIC always requires a system literal.
func NewDeclaration(root, publicID, systemID string) Declaration {
	if systemID == "" {
		publicID = ""
	}
	return Declaration{root: root, publicID: publicID, systemID: systemID}
}

func (d Declaration) Root() string     { return d.root }
func (d Declaration) PublicID() string { return d.publicID }
func (d Declaration) SystemID() string { return d.systemID }

// HasPublicID reports whether the declaration carries a PUBLIC identifier.
func (d Declaration) HasPublicID() bool { return d.publicID != "" }

// HasSystemID reports whether the declaration carries a SYSTEM identifier.
func (d Declaration) HasSystemID() bool { return d.systemID != "" }

// Markup renders the declaration as it appears in a document.
func (d Declaration) Markup() string {
	switch {
	case d.HasPublicID():
		return fmt.Sprintf(`<!DOCTYPE %s PUBLIC "%s" "%s">`, d.root, d.publicID, d.systemID)
	case d.HasSystemID():
		return fmt.Sprintf(`<!DOCTYPE %s SYSTEM "%s">`, d.root, d.systemID)
	default:
		return fmt.Sprintf("<!DOCTYPE %s>", d.root)
	}
}

// ReportFragment renders the declaration as a <doctype/> record for
// embedding in a report document.
func (d Declaration) ReportFragment(uri string) string {
	var b strings.Builder
	b.WriteString("<doctype")
	writeAttr(&b, "uri", uri)
	writeAttr(&b, "root", d.root)
	if d.HasSystemID() {
		writeAttr(&b, "systemID", d.systemID)
	}
	if d.HasPublicID() {
		writeAttr(&b, "publicID", d.publicID)
	}
	b.WriteString("/>")
	return b.String()
}

func (d Declaration) String() string { return d.Markup() }

func writeAttr(b *strings.Builder, name, value string) {
	b.WriteString(" ")
	b.WriteString(name)
	b.WriteString("='")
	b.WriteString(escapeAttr(value))
	b.WriteString("'")
}

func escapeAttr(s string) string {
	var b strings.Builder
	// EscapeText never fails on a strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
