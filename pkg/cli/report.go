package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/sourcegraph/conc/pool"

	"github.com/doctypetool/doctype/pkg/config"
	"github.com/doctypetool/doctype/pkg/console"
)

// ReportOptions configures RunReport.
type ReportOptions struct {
	Settings *config.Settings
	// Stdout receives the reports unless Settings.ReportFile is set.
	Stdout io.Writer
	// Stderr receives progress and the summary table.
	Stderr io.Writer
}

type indexedDocument struct {
	index int
	doc   Document
}

// InspectAll processes every uri report-only, at most jobs at a time, and
// returns the documents in argument order. Documents not yet started when
// ctx is cancelled carry ctx.Err().
func InspectAll(ctx context.Context, uris []string, settings *config.Settings, jobs int) []Document {
	policy := settings.Policy()
	p := pool.NewWithResults[indexedDocument]().WithMaxGoroutines(max(1, jobs))

	for i, uri := range uris {
		p.Go(func() indexedDocument {
			if err := ctx.Err(); err != nil {
				return indexedDocument{index: i, doc: Document{URI: uri, Err: err}}
			}
			// each document gets its own pipeline; nothing is shared
			return indexedDocument{index: i, doc: inspectDocument(uri, policy, nil)}
		})
	}

	docs := make([]Document, len(uris))
	for _, r := range p.Wait() {
		docs[r.index] = r.doc
	}
	for i := range docs {
		if docs[i].Report.URI == "" {
			docs[i].Report.URI = docs[i].URI
			docs[i].Report.Aborted = docs[i].Err != nil
		}
	}
	return docs
}

// RunReport inspects many documents without rewriting them and renders one
// report per document, in argument order.
func RunReport(ctx context.Context, uris []string, opts ReportOptions) error {
	s := opts.Settings
	if err := s.Validate(); err != nil {
		return usageError(err)
	}
	if len(uris) == 0 {
		return usageError(fmt.Errorf("no documents given"))
	}

	spinner := console.NewSpinner(fmt.Sprintf("Inspecting %s...", console.FormatCount(len(uris), "document")))
	spinner.Start()
	docs := InspectAll(ctx, uris, s, s.Jobs)
	spinner.Stop()

	w, closeReport, err := openReportWriter(s.ReportFile, opts.Stdout)
	if err != nil {
		return failure(err)
	}
	renderErr := renderDocuments(w, s.ReportFormat(), docs...)
	if err := closeReport(); err != nil && renderErr == nil {
		renderErr = err
	}
	if renderErr != nil {
		return failure(fmt.Errorf("failed to write report: %w", renderErr))
	}

	if !s.Quiet {
		fmt.Fprint(opts.Stderr, console.RenderTable(summaryTable(docs)))
	}

	failed := 0
	for _, doc := range docs {
		if doc.Failed() {
			failed++
			if s.Verbose {
				fmt.Fprintln(opts.Stderr, console.FormatVerboseMessage(fmt.Sprintf("%s: %v", doc.URI, doc.Err)))
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return failure(fmt.Errorf("report interrupted: %w", err))
	}
	if failed > 0 {
		return failure(fmt.Errorf("%d of %s could not be processed", failed, console.FormatCount(len(docs), "document")))
	}
	return nil
}

func summaryTable(docs []Document) console.TableConfig {
	var warnings, errs, fatals int
	rows := make([][]string, 0, len(docs))
	for _, doc := range docs {
		r := doc.Report
		root, publicID, systemID := "-", "-", "-"
		if r.Declaration != nil {
			root = r.Declaration.Root()
			if r.Declaration.HasPublicID() {
				publicID = r.Declaration.PublicID()
			}
			if r.Declaration.HasSystemID() {
				systemID = r.Declaration.SystemID()
			}
		}
		status := "ok"
		if doc.Failed() {
			status = "failed"
		}
		rows = append(rows, []string{
			console.ToRelativePath(doc.URI),
			root,
			publicID,
			systemID,
			strconv.Itoa(r.WarningCount()),
			strconv.Itoa(r.ErrorCount()),
			strconv.Itoa(r.FatalCount()),
			status,
		})
		warnings += r.WarningCount()
		errs += r.ErrorCount()
		fatals += r.FatalCount()
	}

	return console.TableConfig{
		Title:   "DOCTYPE Summary",
		Headers: []string{"Document", "Root", "Public ID", "System ID", "Warnings", "Errors", "Fatal", "Status"},
		Rows:    rows,
		TotalRow: []string{
			console.FormatCount(len(docs), "document"),
			"", "", "",
			strconv.Itoa(warnings),
			strconv.Itoa(errs),
			strconv.Itoa(fatals),
			"",
		},
	}
}
