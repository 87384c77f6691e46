package doctype

import (
	"io"

	"github.com/doctypetool/doctype/pkg/xmlevents"
)

// Process validates policy, then runs one document from r through a new
// Pipeline writing to sink. uri names the document in diagnostics and in
// the report.
//
// A policy that fails validation yields a *ConfigError before r is read. A
// fatal diagnostic yields the *xmlevents.ParseError; the returned Report is
// complete in every case except the configuration error.
func Process(uri string, r io.Reader, policy OverridePolicy, sink Sink) (Report, error) {
	if err := policy.Validate(); err != nil {
		return Report{URI: uri}, err
	}

	p := NewPipeline(policy, sink)
	if err := xmlevents.Parse(uri, r, p); err != nil {
		p.abort()
		return p.Report(uri), err
	}
	p.Finish()
	return p.Report(uri), nil
}
