// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package input

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wperrors "github.com/pdiddy/wp2tt/internal/errors"
	"github.com/pdiddy/wp2tt/pkg/types"
)

const (
	odtNamedStyles = `<office:styles>` +
		`<style:style style:name="Text_20_body" style:display-name="Text body" style:family="paragraph"/>` +
		`<style:style style:name="Emphasis" style:family="text"/>` +
		`</office:styles>`

	odtAutomaticStyles = `<office:automatic-styles>` +
		`<style:style style:name="P1" style:family="paragraph" style:parent-style-name="Text_20_body"/>` +
		`<style:style style:name="T1" style:family="text"/>` +
		`</office:automatic-styles>`

	odtBody = `<office:body><office:text>` +
		`<text:sequence-decls/>` +
		`<text:h text:style-name="Heading_20_1" text:outline-level="1">Title</text:h>` +
		`<text:p text:style-name="P1">Some   <text:span text:style-name="Emphasis">strong</text:span>` +
		`<text:s text:c="2"/>words<text:note><text:note-body><text:p>fn</text:p></text:note-body></text:note></text:p>` +
		`<text:list><text:list-item><text:p text:style-name="List_20_Item">item <text:span text:style-name="T1">plain</text:span></text:p></text:list-item></text:list>` +
		`<table:table><table:table-row><table:table-cell><text:p text:style-name="Text_20_body">cell<text:tab/>2</text:p></table:table-cell></table:table-row></table:table>` +
		`</office:text></office:body>`
)

var wantODF = []types.Paragraph{
	{Style: "Heading 1", Runs: []types.Run{{Text: "Title"}}},
	{Style: "Text body", Runs: []types.Run{
		{Text: "Some "},
		{Text: "strong", Style: "Emphasis"},
		{Text: "  words", Notes: []types.Note{{Kind: types.NoteFootnote, Paragraphs: []types.Paragraph{
			{Runs: []types.Run{{Text: "fn"}}},
		}}}},
	}},
	{Style: "List Item", Runs: []types.Run{{Text: "item plain"}}},
	{Style: "Text body", Runs: []types.Run{{Text: "cell\t2"}}},
}

func odtFile(t *testing.T, name string) string {
	t.Helper()
	return writeFile(t, name, zipBytes(t,
		part{name: odfMimetypePart, body: odfTextMimetype},
		part{name: odfStylesPart, body: `<?xml version="1.0" encoding="UTF-8"?>` +
			`<office:document-styles ` + odfNSDecl + `>` + odtNamedStyles + `</office:document-styles>`},
		part{name: odfContentPart, body: `<?xml version="1.0" encoding="UTF-8"?>` +
			`<office:document-content ` + odfNSDecl + `>` + odtAutomaticStyles + odtBody + `</office:document-content>`},
	))
}

func fodtData() []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8"?>` +
		`<office:document ` + odfNSDecl + ` office:mimetype="application/vnd.oasis.opendocument.text">` +
		odtNamedStyles + odtAutomaticStyles + odtBody + `</office:document>`)
}

func TestOdtAdapter_Read(t *testing.T) {
	doc, err := OdtAdapter{}.Read(context.Background(), odtFile(t, "sample.odt"))
	require.NoError(t, err)
	assert.Equal(t, wantODF, doc.Paragraphs)
	assert.False(t, doc.RTL)
}

func TestFodtAdapter_Read(t *testing.T) {
	doc, err := FodtAdapter{}.Read(context.Background(), writeFile(t, "sample.fodt", fodtData()))
	require.NoError(t, err)
	assert.Equal(t, wantODF, doc.Paragraphs)
}

func TestOdtAdapter_RTL(t *testing.T) {
	data := zipBytes(t,
		part{name: odfMimetypePart, body: odfTextMimetype},
		part{name: odfContentPart, body: `<office:document-content ` + odfNSDecl + `>` +
			`<office:automatic-styles><style:style style:name="P1" style:family="paragraph">` +
			`<style:paragraph-properties style:writing-mode="rl-tb"/></style:style></office:automatic-styles>` +
			`<office:body><office:text><text:p text:style-name="P1">x</text:p></office:text></office:body>` +
			`</office:document-content>`},
	)
	doc, err := OdtAdapter{}.Read(context.Background(), writeFile(t, "rtl.odt", data))
	require.NoError(t, err)
	assert.True(t, doc.RTL)
	require.Len(t, doc.Paragraphs, 1)
	assert.Equal(t, "", doc.Paragraphs[0].Style)
}

func TestOdtAdapter_Notes(t *testing.T) {
	body := `<office:body><office:text><text:p>A<text:note text:note-class="footnote">` +
		`<text:note-citation>1</text:note-citation><text:note-body>` +
		`<text:p text:style-name="Text_20_body">foot <text:span text:style-name="Emphasis">em</text:span></text:p>` +
		`</text:note-body></text:note>` +
		`<text:note text:note-class="endnote"><text:note-body><text:p>end</text:p></text:note-body></text:note>` +
		` B<office:annotation><dc:creator>ed</dc:creator><text:p>remark</text:p></office:annotation>` +
		`C<office:annotation-end/></text:p></office:text></office:body>`
	data := zipBytes(t,
		part{name: odfMimetypePart, body: odfTextMimetype},
		part{name: odfStylesPart, body: `<office:document-styles ` + odfNSDecl + `>` + odtNamedStyles + `</office:document-styles>`},
		part{name: odfContentPart, body: `<office:document-content ` + odfNSDecl +
			` xmlns:dc="http://purl.org/dc/elements/1.1/">` + body + `</office:document-content>`},
	)
	doc, err := OdtAdapter{}.Read(context.Background(), writeFile(t, "notes.odt", data))
	require.NoError(t, err)

	want := []types.Paragraph{{Runs: []types.Run{
		{Text: "A", Notes: []types.Note{{Kind: types.NoteFootnote, Paragraphs: []types.Paragraph{
			{Style: "Text body", Runs: []types.Run{{Text: "foot "}, {Text: "em", Style: "Emphasis"}}},
		}}}},
		{Text: " B", Notes: []types.Note{{Kind: types.NoteComment, Paragraphs: []types.Paragraph{
			{Runs: []types.Run{{Text: "remark"}}},
		}}}},
		{Text: "C"},
	}}}
	assert.Equal(t, want, doc.Paragraphs)
}

func TestOdtAdapter_Malformed(t *testing.T) {
	data := zipBytes(t, part{name: odfMimetypePart, body: odfTextMimetype})
	_, err := OdtAdapter{}.Read(context.Background(), writeFile(t, "empty.odt", data))
	require.Error(t, err)
	assert.ErrorIs(t, err, wperrors.ErrMalformedDocument)

	data = zipBytes(t,
		part{name: odfMimetypePart, body: odfTextMimetype},
		part{name: odfContentPart, body: `<office:document-content ` + odfNSDecl + `/>`},
	)
	_, err = OdtAdapter{}.Read(context.Background(), writeFile(t, "nobody.odt", data))
	assert.ErrorIs(t, err, wperrors.ErrMalformedDocument)
}

func TestOdfDecodeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Text_20_body", "Text body"},
		{"Heading_20_1", "Heading 1"},
		{"Plain", "Plain"},
		{"a_5f_b", "a_b"},
		{"bad_zz_", "bad_zz_"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, odfDecodeName(tt.in), tt.in)
	}
}
