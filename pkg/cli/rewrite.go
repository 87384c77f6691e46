package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/doctypetool/doctype/pkg/config"
	"github.com/doctypetool/doctype/pkg/console"
	"github.com/doctypetool/doctype/pkg/doctype"
	"github.com/doctypetool/doctype/pkg/input"
)

// RewriteOptions configures RunRewrite.
type RewriteOptions struct {
	Settings *config.Settings
	// Output receives the rewritten document instead of Stdout when set.
	Output string
	Stdout io.Writer
	Stderr io.Writer
}

// RunRewrite re-emits the document at uri with its DOCTYPE declaration
// rewritten by the configured overrides, then renders its report.
// Conflicting options fail before the document is opened.
func RunRewrite(uri string, opts RewriteOptions) error {
	s := opts.Settings
	if err := s.Validate(); err != nil {
		return usageError(err)
	}

	policy := s.Policy()
	if s.Verbose {
		fmt.Fprintln(opts.Stderr, console.FormatVerboseMessage(fmt.Sprintf("Reading %s", uri)))
		if policy.IsZero() {
			fmt.Fprintln(opts.Stderr, console.FormatVerboseMessage("No overrides configured; the declaration is copied as found"))
		}
	}
	data, err := input.ReadAll(uri)
	if err != nil {
		return failure(err)
	}

	var sink doctype.Sink
	var out *bufio.Writer
	if !s.Quiet {
		w := opts.Stdout
		if opts.Output != "" {
			f, err := os.Create(opts.Output)
			if err != nil {
				return failure(fmt.Errorf("failed to create output file: %w", err))
			}
			defer f.Close()
			w = f
		}
		out = bufio.NewWriter(w)
		sink = out
	}

	doc := processDocument(uri, data, policy, sink)
	if out != nil {
		// whatever was written before a fatal error is kept
		if err := out.Flush(); err != nil && doc.Err == nil {
			doc.Err = fmt.Errorf("failed to write document: %w", err)
		}
	}

	if doc.Report.HasDeclaration() {
		for _, option := range policy.Ignored(*doc.Report.Declaration) {
			msg := fmt.Sprintf("%s ignored: the declaration has no system identifier to pair it with", option)
			fmt.Fprintln(opts.Stderr, console.FormatWarningMessage(msg))
		}
	}

	if s.Verbose {
		if doc.Report.HasDeclaration() {
			fmt.Fprintln(opts.Stderr, console.FormatVerboseMessage(fmt.Sprintf("Rewrote declaration as %s", doc.Report.Declaration.Markup())))
		} else {
			fmt.Fprintln(opts.Stderr, console.FormatVerboseMessage(fmt.Sprintf("%s has no DOCTYPE declaration", uri)))
		}
	}

	w, closeReport, err := openReportWriter(s.ReportFile, opts.Stderr)
	if err != nil {
		return failure(err)
	}
	renderErr := renderDocuments(w, s.ReportFormat(), doc)
	if err := closeReport(); err != nil && renderErr == nil {
		renderErr = err
	}

	if doc.Err != nil {
		return failure(fmt.Errorf("processing stopped: %w", doc.Err))
	}
	if renderErr != nil {
		return failure(fmt.Errorf("failed to write report: %w", renderErr))
	}
	return nil
}
