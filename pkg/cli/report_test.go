package cli

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectAllKeepsArgumentOrder(t *testing.T) {
	dir := t.TempDir()
	var uris []string
	for i := range 12 {
		uris = append(uris, writeDocument(t, dir, fmt.Sprintf("doc%02d.xml", i),
			fmt.Sprintf("<!DOCTYPE r%d SYSTEM \"s%d.dtd\"><r%d/>", i, i, i)))
	}

	docs := InspectAll(context.Background(), uris, testSettings(), 4)
	require.Len(t, docs, len(uris))
	for i, doc := range docs {
		assert.Equal(t, uris[i], doc.URI)
		assert.Equal(t, uris[i], doc.Report.URI)
		require.NotNil(t, doc.Report.Declaration)
		assert.Equal(t, fmt.Sprintf("r%d", i), doc.Report.Declaration.Root())
		assert.NoError(t, doc.Err)
	}
}

func TestInspectAllAppliesOverrides(t *testing.T) {
	path := writeDocument(t, t.TempDir(), "a.xml", xhtmlDocument)
	s := testSettings()
	s.OmitSystemID = true

	docs := InspectAll(context.Background(), []string{path}, s, 1)
	require.Len(t, docs, 1)
	assert.Equal(t, "<!DOCTYPE html>", docs[0].Report.Declaration.Markup())
}

func TestInspectAllCancelled(t *testing.T) {
	path := writeDocument(t, t.TempDir(), "a.xml", "<a/>")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	docs := InspectAll(ctx, []string{path, path}, testSettings(), 1)
	require.Len(t, docs, 2)
	for _, doc := range docs {
		assert.ErrorIs(t, doc.Err, context.Canceled)
		assert.True(t, doc.Report.Aborted)
		assert.Equal(t, path, doc.Report.URI)
	}
}

func TestRunReport(t *testing.T) {
	noColor(t)
	dir := t.TempDir()
	good := writeDocument(t, dir, "good.xml", xhtmlDocument)
	plain := writeDocument(t, dir, "plain.xml", "<p/>")

	var stdout, stderr bytes.Buffer
	err := RunReport(context.Background(), []string{good, plain}, ReportOptions{
		Settings: testSettings(),
		Stdout:   &stdout,
		Stderr:   &stderr,
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "root='html'")
	assert.Equal(t, "<report uri='"+plain+"'></report>", lines[1])

	summary := stderr.String()
	assert.Contains(t, summary, "DOCTYPE Summary")
	assert.Contains(t, summary, "xhtml1-strict.dtd")
	assert.Contains(t, summary, "2 documents")
}

func TestRunReportFailures(t *testing.T) {
	noColor(t)
	dir := t.TempDir()
	broken := writeDocument(t, dir, "broken.xml", "<a>")
	missing := filepath.Join(dir, "missing.xml")

	s := testSettings()
	s.Quiet = true
	var stdout, stderr bytes.Buffer
	err := RunReport(context.Background(), []string{broken, missing}, ReportOptions{Settings: s, Stdout: &stdout, Stderr: &stderr})
	require.Error(t, err)
	assert.Equal(t, ExitFailure, ExitCode(err))
	assert.Contains(t, err.Error(), "2 of 2 documents could not be processed")

	assert.Contains(t, stdout.String(), "severity='fatal'")
	assert.Contains(t, stdout.String(), "<report uri='"+missing+"'></report>")
	assert.Empty(t, stderr.String(), "quiet suppresses the summary")
}

func TestRunReportUsageErrors(t *testing.T) {
	var out bytes.Buffer
	err := RunReport(context.Background(), nil, ReportOptions{Settings: testSettings(), Stdout: &out, Stderr: &out})
	assert.Equal(t, ExitUsage, ExitCode(err))

	s := testSettings()
	s.OmitSystemID = true
	s.SystemID = "x.dtd"
	err = RunReport(context.Background(), []string{"a.xml"}, ReportOptions{Settings: s, Stdout: &out, Stderr: &out})
	assert.Equal(t, ExitUsage, ExitCode(err))
	assert.Empty(t, out.String())
}

func TestSummaryTable(t *testing.T) {
	dir := t.TempDir()
	docs := InspectAll(context.Background(), []string{
		writeDocument(t, dir, "a.xml", "<!DOCTYPE a SYSTEM \"a.dtd\" [<!ENTITY e \"x\">]><a>&e;</a>"),
		writeDocument(t, dir, "b.xml", "<b/>"),
	}, testSettings(), 2)

	table := summaryTable(docs)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"a", "-", "a.dtd", "1", "0", "0", "ok"}, table.Rows[0][1:])
	assert.Equal(t, []string{"-", "-", "-", "0", "0", "0", "ok"}, table.Rows[1][1:])
	assert.Equal(t, "2 documents", table.TotalRow[0])
	assert.Equal(t, "1", table.TotalRow[4])
}
