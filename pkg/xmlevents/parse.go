package xmlevents

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

var (
	cdataOpen  = []byte("<![CDATA[")
	cdataClose = []byte("]]>")
	utf8BOM    = []byte("\xef\xbb\xbf")
)

// Parse reads a whole document from r and delivers its events to h in
// document order. systemID identifies the document in diagnostics.
//
// Parsing stops at the first fatal condition or at the first non-nil error
// returned by h. In the fatal case Parse returns the error h.Fatal returned,
// or the *ParseError itself when h.Fatal returned nil.
func Parse(systemID string, r io.Reader, h Handler) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading %s: %w", systemID, err)
	}
	return ParseBytes(systemID, data, h)
}

// ParseBytes is Parse over an in-memory document.
func ParseBytes(systemID string, data []byte, h Handler) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true
	dec.Entity = map[string]string{}

	p := &parser{
		systemID: systemID,
		data:     data,
		dec:      dec,
		h:        h,
		skipped:  map[string]string{},
		values:   map[string]string{},
	}
	return p.run()
}

type position struct {
	line, col int
}

type parser struct {
	systemID string
	data     []byte
	dec      *xml.Decoder
	h        Handler

	doctype  *doctypeDecl
	skipped  map[string]string
	values   map[string]string
	sawRoot  bool
	elements []string
}

func (p *parser) run() error {
	for {
		line, col := p.dec.InputPos()
		start := p.dec.InputOffset()

		tok, err := p.dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return p.syntaxError(err)
		}

		raw := p.data[start:p.dec.InputOffset()]
		if err := p.dispatch(tok, raw, start, position{line, col}); err != nil {
			return err
		}
	}

	if !p.sawRoot {
		line, col := p.dec.InputPos()
		return p.fatal(position{line, col}, "document has no document element")
	}
	return nil
}

func (p *parser) dispatch(tok xml.Token, raw []byte, offset int64, pos position) error {
	switch t := tok.(type) {
	case xml.ProcInst:
		return p.h.ProcInst(t.Target, string(raw))

	case xml.Directive:
		return p.directive(raw, offset, pos)

	case xml.Comment:
		return p.h.Comment(string(t))

	case xml.CharData:
		if bytes.HasPrefix(raw, cdataOpen) {
			return p.cdata(raw, pos)
		}
		return p.text(raw, offset, pos)

	case xml.StartElement:
		return p.startElement(raw, pos)

	case xml.EndElement:
		name := t.Name.Local
		if n := len(p.elements); n > 0 {
			name = p.elements[n-1]
			p.elements = p.elements[:n-1]
		}
		return p.h.EndElement(name, string(raw))
	}
	return nil
}

func (p *parser) directive(raw []byte, offset int64, pos position) error {
	if !bytes.HasPrefix(raw, []byte("<!DOCTYPE")) {
		return p.fatal(pos, "markup declaration is not allowed outside the document type declaration")
	}
	if p.doctype != nil {
		return p.fatal(pos, "only one document type declaration is allowed")
	}
	if p.sawRoot {
		return p.fatal(pos, "document type declaration is not allowed after the document element")
	}

	decl, err := parseDoctype(string(raw))
	if err != nil {
		return p.fatal(pos, err.Error())
	}
	p.doctype = &decl
	comments, entities := scanSubset(decl.Subset)
	p.registerEntities(decl, entities, int(offset)+len(raw))

	if err := p.h.StartDTD(decl.Name, decl.PublicID, decl.SystemID); err != nil {
		return err
	}
	for _, text := range comments {
		if err := p.h.Comment(text); err != nil {
			return err
		}
	}
	if decl.HasSubset {
		msg := "internal subset is not carried into the rewritten declaration; references to its internal entities are expanded"
		if err := p.warning(pos, msg); err != nil {
			return err
		}
	}
	return p.h.EndDTD()
}

// registerEntities teaches the decoder about entity names it cannot expand
// itself: those declared in the internal subset and, when an external
// subset exists, every other name referenced in the rest of the document.
// The first declaration of a name binds.
func (p *parser) registerEntities(decl doctypeDecl, entities []subsetEntity, end int) {
	for _, e := range entities {
		if _, known := p.dec.Entity[e.Name]; known {
			continue
		}
		p.dec.Entity[e.Name] = e.Value
		if e.External {
			p.skipped[e.Name] = fmt.Sprintf("external entity %q is not expanded; reference left as written", e.Name)
		} else {
			p.values[e.Name] = e.Value
		}
	}
	if !decl.HasExternalID() {
		return
	}
	for _, ref := range entityRefs(p.data[end:]) {
		if predefinedEntities[ref.Name] {
			continue
		}
		if _, known := p.dec.Entity[ref.Name]; known {
			continue
		}
		p.dec.Entity[ref.Name] = ""
		p.skipped[ref.Name] = fmt.Sprintf("entity %q is not declared in the internal subset; reference left unexpanded", ref.Name)
	}
}

// expand substitutes internal entity references in raw. A recursive entity
// is fatal.
func (p *parser) expand(raw []byte, inAttr bool, pos position) ([]byte, error) {
	if len(p.values) == 0 {
		return raw, nil
	}
	out, loop := expandEntities(raw, p.values, inAttr, nil)
	if loop != "" {
		return nil, p.fatal(pos, fmt.Sprintf("recursive reference to entity %q", loop))
	}
	return out, nil
}

func (p *parser) cdata(raw []byte, pos position) error {
	if len(p.elements) == 0 {
		return p.fatal(pos, "CDATA section is not allowed outside the document element")
	}
	content := raw[len(cdataOpen) : len(raw)-len(cdataClose)]
	if err := p.h.StartCDATA(); err != nil {
		return err
	}
	if len(content) > 0 {
		if err := p.h.Text(string(content)); err != nil {
			return err
		}
	}
	return p.h.EndCDATA()
}

func (p *parser) text(raw []byte, offset int64, pos position) error {
	if len(p.elements) == 0 {
		check := raw
		if offset == 0 {
			check = bytes.TrimPrefix(check, utf8BOM)
		}
		if len(bytes.TrimSpace(check)) > 0 {
			if p.sawRoot {
				return p.fatal(pos, "content is not allowed after the document element")
			}
			return p.fatal(pos, "content is not allowed in prolog")
		}
	}
	if err := p.skippedEntityWarnings(raw, pos); err != nil {
		return err
	}
	text, err := p.expand(raw, false, pos)
	if err != nil {
		return err
	}
	return p.h.Text(string(text))
}

func (p *parser) startElement(raw []byte, pos position) error {
	name := qualifiedName(raw)
	if len(p.elements) == 0 {
		if p.sawRoot {
			return p.fatal(pos, "document may contain only one document element")
		}
		p.sawRoot = true
		if p.doctype != nil && p.doctype.Name != name {
			msg := fmt.Sprintf("document element %q does not match the declared root %q", name, p.doctype.Name)
			if err := p.error(pos, msg); err != nil {
				return err
			}
		}
	}
	if err := p.skippedEntityWarnings(raw, pos); err != nil {
		return err
	}
	tag, err := p.expand(raw, true, pos)
	if err != nil {
		return err
	}
	p.elements = append(p.elements, name)
	return p.h.StartElement(name, string(tag))
}

func (p *parser) skippedEntityWarnings(raw []byte, pos position) error {
	if len(p.skipped) == 0 {
		return nil
	}
	for _, ref := range entityRefs(raw) {
		msg, ok := p.skipped[ref.Name]
		if !ok {
			continue
		}
		if err := p.warning(advance(pos, raw[:ref.Offset]), msg); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) syntaxError(err error) error {
	line, col := p.dec.InputPos()
	msg := err.Error()
	var se *xml.SyntaxError
	if errors.As(err, &se) {
		msg = se.Msg
		if se.Line != line {
			line, col = se.Line, 0
		}
	}
	return p.fatal(position{line, col}, msg)
}

func (p *parser) newError(sev Severity, pos position, msg string) *ParseError {
	return &ParseError{
		Severity: sev,
		SystemID: p.systemID,
		Line:     pos.line,
		Column:   pos.col,
		Msg:      msg,
	}
}

func (p *parser) warning(pos position, msg string) error {
	return p.h.Warning(p.newError(SeverityWarning, pos, msg))
}

func (p *parser) error(pos position, msg string) error {
	return p.h.Error(p.newError(SeverityError, pos, msg))
}

func (p *parser) fatal(pos position, msg string) error {
	pe := p.newError(SeverityFatal, pos, msg)
	if err := p.h.Fatal(pe); err != nil {
		return err
	}
	return pe
}

// qualifiedName extracts the element name, prefix included, from a start or
// end tag.
func qualifiedName(raw []byte) string {
	s := bytes.TrimPrefix(bytes.TrimPrefix(raw, []byte("<")), []byte("/"))
	end := bytes.IndexFunc(s, func(r rune) bool {
		return r == '/' || r == '>' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if end < 0 {
		return string(s)
	}
	return string(s[:end])
}

// advance moves pos over the bytes in seen.
func advance(pos position, seen []byte) position {
	for _, b := range seen {
		if b == '\n' {
			pos.line++
			pos.col = 1
			continue
		}
		pos.col++
	}
	return pos
}
