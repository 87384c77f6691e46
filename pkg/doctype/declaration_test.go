package doctype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeclarationMarkup(t *testing.T) {
	tests := []struct {
		decl Declaration
		want string
	}{
		{NewDeclaration("note", "", ""), `<!DOCTYPE note>`},
		{NewDeclaration("note", "", "note.dtd"), `<!DOCTYPE note SYSTEM "note.dtd">`},
		{NewDeclaration("html", "-//W3C//DTD XHTML 1.0 Strict//EN", "xhtml1-strict.dtd"), `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "xhtml1-strict.dtd">`},
		{NewDeclaration("note", "orphan", ""), `<!DOCTYPE note>`},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.decl.Markup())
			assert.Equal(t, tt.want, tt.decl.String())
		})
	}
}

func TestDeclarationReportFragment(t *testing.T) {
	assert.Equal(t,
		`<doctype uri='note.xml' root='note'/>`,
		NewDeclaration("note", "", "").ReportFragment("note.xml"))
	assert.Equal(t,
		`<doctype uri='note.xml' root='note' systemID='note.dtd'/>`,
		NewDeclaration("note", "", "note.dtd").ReportFragment("note.xml"))
	assert.Equal(t,
		`<doctype uri='a.xml' root='a' systemID='sys' publicID='pub'/>`,
		NewDeclaration("a", "pub", "sys").ReportFragment("a.xml"))
}

func TestDeclarationReportFragmentEscapes(t *testing.T) {
	got := NewDeclaration("a", "", "it's <here> & there").ReportFragment("dir/a&b.xml")
	assert.Equal(t, `<doctype uri='dir/a&amp;b.xml' root='a' systemID='it&#39;s &lt;here&gt; &amp; there'/>`, got)
}

func TestDeclarationAccessors(t *testing.T) {
	d := NewDeclaration("a", "pub", "sys")
	assert.Equal(t, "a", d.Root())
	assert.Equal(t, "pub", d.PublicID())
	assert.Equal(t, "sys", d.SystemID())
	assert.True(t, d.HasPublicID())
	assert.True(t, d.HasSystemID())

	bare := NewDeclaration("a", "", "")
	assert.False(t, bare.HasPublicID())
	assert.False(t, bare.HasSystemID())
}
