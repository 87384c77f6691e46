package doctype

import (
	"fmt"

	"github.com/doctypetool/doctype/pkg/xmlevents"
)

// State is the position of a Pipeline in its life cycle.
type State int

const (
	StateIdle State = iota
	StateInDeclarationScope
	StateAfterDeclaration
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInDeclarationScope:
		return "in-declaration-scope"
	case StateAfterDeclaration:
		return "after-declaration"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Pipeline receives the events of one document, writes the document to its
// sink with the declaration rewritten and collects the material for a
// Report. A Pipeline processes exactly one document and is not safe for
// concurrent use.
type Pipeline struct {
	policy      OverridePolicy
	sink        Sink
	state       State
	declaration *Declaration
	diagnostics []Diagnostic
}

var _ xmlevents.Handler = (*Pipeline)(nil)

// NewPipeline returns a pipeline that applies policy and writes to sink.
// The policy should already have passed Validate. A nil sink makes the
// pipeline report-only.
func NewPipeline(policy OverridePolicy, sink Sink) *Pipeline {
	if sink == nil {
		sink = discard{}
	}
	return &Pipeline{policy: policy, sink: sink}
}

// State returns the current state.
func (p *Pipeline) State() State { return p.state }

// Declaration returns the resolved declaration, or nil if none has been seen.
func (p *Pipeline) Declaration() *Declaration { return p.declaration }

func (p *Pipeline) write(s string) error {
	if _, err := p.sink.WriteString(s); err != nil {
		p.abort()
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// StartDTD resolves the declaration from the document's own values.
func (p *Pipeline) StartDTD(name, publicID, systemID string) error {
	if p.state != StateIdle {
		return nil
	}
	decl := p.policy.Resolve(name, publicID, systemID)
	p.declaration = &decl
	p.state = StateInDeclarationScope
	return nil
}

// EndDTD writes the resolved declaration.
func (p *Pipeline) EndDTD() error {
	if p.state != StateInDeclarationScope {
		return nil
	}
	p.state = StateAfterDeclaration
	return p.write(p.declaration.Markup())
}

// StartCDATA writes the opening of a CDATA section.
func (p *Pipeline) StartCDATA() error { return p.write("<![CDATA[") }

// EndCDATA writes the close of a CDATA section.
func (p *Pipeline) EndCDATA() error { return p.write("]]>") }

// Comment writes text as a comment, in any state.
func (p *Pipeline) Comment(text string) error { return p.write("<!--" + text + "-->") }

// ProcInst copies a processing instruction as written.
func (p *Pipeline) ProcInst(_, raw string) error { return p.write(raw) }

// StartElement copies a start or empty-element tag.
func (p *Pipeline) StartElement(_, raw string) error { return p.write(raw) }

// EndElement copies an end tag; raw is empty for empty-element tags.
func (p *Pipeline) EndElement(_, raw string) error { return p.write(raw) }

// Text copies character data.
func (p *Pipeline) Text(raw string) error { return p.write(raw) }

// Warning records e; processing continues.
func (p *Pipeline) Warning(e *xmlevents.ParseError) error {
	p.diagnostics = append(p.diagnostics, diagnosticFrom(e))
	return nil
}

// Error records e; processing continues.
func (p *Pipeline) Error(e *xmlevents.ParseError) error {
	p.diagnostics = append(p.diagnostics, diagnosticFrom(e))
	return nil
}

// Fatal records e, aborts the pipeline and hands e back so the parser stops.
func (p *Pipeline) Fatal(e *xmlevents.ParseError) error {
	p.diagnostics = append(p.diagnostics, diagnosticFrom(e))
	p.abort()
	return e
}

// Finish marks the end of input. It has no effect on an aborted pipeline.
func (p *Pipeline) Finish() {
	if p.state != StateAborted {
		p.state = StateDone
	}
}

func (p *Pipeline) abort() { p.state = StateAborted }

// Report returns what the pipeline found in the document identified by
// uri. It is meant to be called once the pipeline is done or aborted; an
// aborted pipeline still reports the declaration and every diagnostic
// collected before it stopped.
func (p *Pipeline) Report(uri string) Report {
	r := Report{
		URI:     uri,
		Aborted: p.state == StateAborted,
	}
	if p.declaration != nil {
		decl := *p.declaration
		r.Declaration = &decl
	}
	if len(p.diagnostics) > 0 {
		r.Diagnostics = append([]Diagnostic(nil), p.diagnostics...)
	}
	return r
}
