package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/doctypetool/doctype/pkg/doctype"
	"github.com/doctypetool/doctype/pkg/input"
	"github.com/doctypetool/doctype/pkg/reportfmt"
)

// Document is one processed input together with the source it was read from.
type Document struct {
	URI    string
	Source []byte
	Report doctype.Report
	// Err is the I/O failure or fatal parse error that stopped processing.
	Err error
}

// Failed reports whether the document could not be processed to the end.
func (d Document) Failed() bool {
	return d.Err != nil
}

// inspectDocument reads uri and runs it through a pipeline bound to sink.
func inspectDocument(uri string, policy doctype.OverridePolicy, sink doctype.Sink) Document {
	data, err := input.ReadAll(uri)
	if err != nil {
		return Document{URI: uri, Report: doctype.Report{URI: uri, Aborted: true}, Err: err}
	}
	return processDocument(uri, data, policy, sink)
}

func processDocument(uri string, data []byte, policy doctype.OverridePolicy, sink doctype.Sink) Document {
	report, err := doctype.Process(uri, bytes.NewReader(data), policy, sink)
	return Document{URI: uri, Source: data, Report: report, Err: err}
}

// renderDocuments writes the reports of docs, in order, in the given format.
func renderDocuments(w io.Writer, format reportfmt.Format, docs ...Document) error {
	renderer := reportfmt.Renderer{
		Format:      format,
		Sources:     make(map[string][]byte, len(docs)),
		ToolVersion: GetVersion(),
	}
	reports := make([]doctype.Report, 0, len(docs))
	for _, doc := range docs {
		renderer.Sources[doc.URI] = doc.Source
		reports = append(reports, doc.Report)
	}
	return renderer.Write(w, reports...)
}

// openReportWriter returns the report destination: path when set, otherwise
// fallback. The returned close function is always non-nil.
func openReportWriter(path string, fallback io.Writer) (io.Writer, func() error, error) {
	if path == "" {
		return fallback, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create report file: %w", err)
	}
	return f, f.Close, nil
}
