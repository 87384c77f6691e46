package doctype

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doctypetool/doctype/pkg/xmlevents"
)

func process(t *testing.T, doc string, policy OverridePolicy) (string, Report, error) {
	t.Helper()
	var out strings.Builder
	r, err := Process("doc.xml", strings.NewReader(doc), policy, &out)
	return out.String(), r, err
}

func TestProcessRoundTrip(t *testing.T) {
	doc := "<?xml version=\"1.0\"?>\n<!DOCTYPE note SYSTEM \"note.dtd\">\n<note><to>Tove</to></note>\n"

	out, r, err := process(t, doc, OverridePolicy{})
	require.NoError(t, err)
	assert.Equal(t, doc, out)
	require.NotNil(t, r.Declaration)
	assert.Equal(t, "note", r.Declaration.Root())
	assert.Equal(t, "note.dtd", r.Declaration.SystemID())
	assert.False(t, r.Declaration.HasPublicID())
	assert.Empty(t, r.Diagnostics)
	assert.False(t, r.Aborted)
}

func TestProcessOverrideRootAndOmitPublicID(t *testing.T) {
	out, r, err := process(t, `<!DOCTYPE a PUBLIC "pub" "sys"><a/>`, OverridePolicy{ForcedRoot: "b", OmitPublicID: true})
	require.NoError(t, err)
	assert.Empty(t, r.Diagnostics)

	assert.Equal(t, `<!DOCTYPE b SYSTEM "sys"><a/>`, out)
	require.NotNil(t, r.Declaration)
	assert.Equal(t, "b", r.Declaration.Root())
	assert.False(t, r.Declaration.HasPublicID())
	assert.Equal(t, "sys", r.Declaration.SystemID())
}

func TestProcessOmitSystemID(t *testing.T) {
	out, r, err := process(t, `<!DOCTYPE a PUBLIC "pub" "sys"><a/>`, OverridePolicy{OmitSystemID: true})
	require.NoError(t, err)

	assert.Equal(t, `<!DOCTYPE a><a/>`, out)
	require.NotNil(t, r.Declaration)
	assert.False(t, r.Declaration.HasPublicID())
	assert.False(t, r.Declaration.HasSystemID())
}

func TestProcessWithoutDeclaration(t *testing.T) {
	doc := "<!-- plain -->\n<a b=\"c\"><![CDATA[<x>]]></a>"

	out, r, err := process(t, doc, OverridePolicy{ForcedRoot: "z", ForcedSystemID: "z.dtd"})
	require.NoError(t, err)
	assert.Equal(t, doc, out)
	assert.False(t, r.HasDeclaration())
	assert.Empty(t, r.Diagnostics)
	assert.Equal(t, "<report uri='doc.xml'></report>", r.Markup())
}

func TestProcessFatalAfterDeclaration(t *testing.T) {
	out, r, err := process(t, "<!DOCTYPE a SYSTEM \"a.dtd\">\n<a>\n<b></a>", OverridePolicy{})

	var pe *xmlevents.ParseError
	require.ErrorAs(t, err, &pe)
	assert.True(t, r.Aborted)
	require.NotNil(t, r.Declaration)
	assert.Equal(t, "a.dtd", r.Declaration.SystemID())
	require.NotEmpty(t, r.Diagnostics)
	last := r.Diagnostics[len(r.Diagnostics)-1]
	assert.Equal(t, SeverityFatal, last.Severity)
	assert.Equal(t, pe.Msg, last.Message)
	assert.Equal(t, 3, last.Line)
	assert.True(t, strings.HasPrefix(out, `<!DOCTYPE a SYSTEM "a.dtd">`))
}

func TestProcessRejectsInvalidPolicyBeforeReading(t *testing.T) {
	r, err := Process("doc.xml", failingReader{t}, OverridePolicy{OmitSystemID: true, ForcedPublicID: "p"}, nil)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "doc.xml", r.URI)
	assert.Nil(t, r.Declaration)
}

func TestProcessRootMismatchIsReported(t *testing.T) {
	_, r, err := process(t, `<!DOCTYPE a SYSTEM "a.dtd"><b/>`, OverridePolicy{})
	require.NoError(t, err)
	require.Len(t, r.Diagnostics, 1)
	assert.Equal(t, SeverityError, r.Diagnostics[0].Severity)
	assert.False(t, r.Aborted)
}

func TestProcessReportMarkup(t *testing.T) {
	_, r, err := process(t, "<!DOCTYPE a SYSTEM \"a.dtd\">\n<a>&x;</a>", OverridePolicy{})
	require.NoError(t, err)

	assert.Equal(t,
		"<report uri='doc.xml'>"+
			"<diagnostic severity='warning' systemID='doc.xml' line='2' column='4'>entity &#34;x&#34; is not declared in the internal subset; reference left unexpanded</diagnostic>"+
			"<doctype uri='doc.xml' root='a' systemID='a.dtd'/>"+
			"</report>",
		r.Markup())
}

func TestProcessOutputOfInternalSubsetReparses(t *testing.T) {
	doc := `<!DOCTYPE a [<!-- defs --><!ENTITY x "y">]><a v="&x;">&x;</a>`

	out, r, err := process(t, doc, OverridePolicy{ForcedSystemID: "a.dtd"})
	require.NoError(t, err)
	assert.Equal(t, `<!-- defs --><!DOCTYPE a SYSTEM "a.dtd"><a v="y">y</a>`, out)
	require.Len(t, r.Diagnostics, 1)
	assert.Equal(t, SeverityWarning, r.Diagnostics[0].Severity)

	again, r, err := process(t, out, OverridePolicy{})
	require.NoError(t, err)
	assert.Equal(t, out, again)
	assert.Empty(t, r.Diagnostics)
}

type failingReader struct{ t *testing.T }

func (f failingReader) Read([]byte) (int, error) {
	f.t.Fatal("input must not be read")
	return 0, nil
}
