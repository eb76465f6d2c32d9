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

const sampleDocxBody = `<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Intro</w:t></w:r></w:p>` +
	`<w:p><w:r><w:t xml:space="preserve">Plain </w:t></w:r>` +
	`<w:r><w:rPr><w:rStyle w:val="Emph"/></w:rPr><w:t>bold</w:t></w:r>` +
	`<w:r><w:rPr><w:rStyle w:val="DefaultParagraphFont"/></w:rPr><w:t xml:space="preserve"> tail</w:t></w:r>` +
	`<w:r><w:tab/><w:t>x</w:t></w:r></w:p>` +
	`<w:p><w:ins><w:r><w:t>added</w:t></w:r></w:ins>` +
	`<w:del><w:r><w:delText>gone</w:delText></w:r></w:del>` +
	`<w:hyperlink><w:r><w:t xml:space="preserve"> link</w:t></w:r></w:hyperlink></w:p>` +
	`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl>` +
	`<w:p><w:r><w:br w:type="page"/><w:t>next</w:t></w:r></w:p>`

func TestDocxAdapter_Read(t *testing.T) {
	path := docxFile(t, "sample.docx", sampleDocxBody)

	doc, err := DocxAdapter{}.Read(context.Background(), path)
	require.NoError(t, err)

	want := []types.Paragraph{
		{Style: "heading 1", Runs: []types.Run{{Text: "Intro"}}},
		{Style: "Normal", Runs: []types.Run{
			{Text: "Plain "},
			{Text: "bold", Style: "Strong Emphasis"},
			{Text: " tail\tx"},
		}},
		{Style: "Normal", Runs: []types.Run{{Text: "added link"}}},
		{Style: "Normal", Runs: []types.Run{{Text: "cell"}}},
		{Style: "Normal", Runs: []types.Run{{Text: "next"}}, PageBreak: true},
	}
	assert.Equal(t, want, doc.Paragraphs)
	assert.False(t, doc.RTL)
}

func TestDocxAdapter_RTL(t *testing.T) {
	body := `<w:p><w:pPr><w:bidi/></w:pPr><w:r><w:rPr><w:rtl/></w:rPr><w:t>` +
		"\u05e9\u05dc\u05d5\u05dd" + `</w:t></w:r></w:p>`
	doc, err := DocxAdapter{}.Read(context.Background(), docxFile(t, "rtl.docx", body))
	require.NoError(t, err)
	assert.True(t, doc.RTL)

	off := `<w:p><w:pPr><w:bidi w:val="0"/></w:pPr><w:r><w:t>ltr</w:t></w:r></w:p>`
	doc, err = DocxAdapter{}.Read(context.Background(), docxFile(t, "ltr.docx", off))
	require.NoError(t, err)
	assert.False(t, doc.RTL)
}

func TestDocxAdapter_SpecialCharacters(t *testing.T) {
	body := `<w:p><w:r><w:t>a</w:t><w:noBreakHyphen/><w:t>b</w:t><w:softHyphen/><w:t>c</w:t><w:br/><w:t>d</w:t></w:r></w:p>`
	doc, err := DocxAdapter{}.Read(context.Background(), docxFile(t, "chars.docx", body))
	require.NoError(t, err)
	require.Len(t, doc.Paragraphs, 1)
	assert.Equal(t, "a\u2011b\u00adc\nd", doc.Paragraphs[0].Text())
}

func TestDocxAdapter_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data func(t *testing.T) []byte
	}{
		{"not a zip", func(*testing.T) []byte { return []byte("plain text") }},
		{"missing document part", func(t *testing.T) []byte {
			return zipBytes(t, part{name: "word/styles.xml", body: "<w:styles/>"})
		}},
		{"broken xml", func(t *testing.T) []byte {
			return zipBytes(t, part{name: docxDocumentPart, body: "<w:document><w:body></w:document>"})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "bad.docx", tt.data(t))
			_, err := DocxAdapter{}.Read(context.Background(), path)
			require.Error(t, err)
			assert.ErrorIs(t, err, wperrors.ErrMalformedDocument)
			assert.Equal(t, wperrors.ExitMalformedDocument, wperrors.ExitCode(err))
		})
	}
}

func TestDocxAdapter_Notes(t *testing.T) {
	body := `<w:p><w:r><w:t>See</w:t><w:footnoteReference w:id="1"/></w:r>` +
		`<w:commentRangeStart w:id="0"/><w:r><w:t xml:space="preserve"> more</w:t></w:r><w:commentRangeEnd w:id="0"/>` +
		`<w:r><w:commentReference w:id="0"/></w:r>` +
		`<w:r><w:footnoteReference w:id="9"/></w:r></w:p>`
	parts := append(docxParts(body),
		part{name: docxFootnotesPart, body: `<w:footnotes ` + wordNSDecl + `>` +
			`<w:footnote w:type="separator" w:id="-1"><w:p><w:r><w:separator/></w:r></w:p></w:footnote>` +
			`<w:footnote w:id="1"><w:p><w:r><w:footnoteRef/></w:r><w:r><w:t xml:space="preserve"> A note.</w:t></w:r></w:p>` +
			`<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Second</w:t></w:r></w:p></w:footnote>` +
			`</w:footnotes>`},
		part{name: docxCommentsPart, body: `<w:comments ` + wordNSDecl + `>` +
			`<w:comment w:id="0" w:author="ed"><w:p><w:r><w:t>Check this</w:t></w:r></w:p></w:comment>` +
			`</w:comments>`},
	)
	path := writeFile(t, "notes.docx", zipBytes(t, parts...))

	doc, err := DocxAdapter{}.Read(context.Background(), path)
	require.NoError(t, err)

	want := []types.Paragraph{{Style: "Normal", Runs: []types.Run{
		{Text: "See", Notes: []types.Note{{Kind: types.NoteFootnote, Paragraphs: []types.Paragraph{
			{Style: "Normal", Runs: []types.Run{{Text: " A note."}}},
			{Style: "heading 1", Runs: []types.Run{{Text: "Second"}}},
		}}}},
		{Text: " more", Notes: []types.Note{{Kind: types.NoteComment, Paragraphs: []types.Paragraph{
			{Style: "Normal", Runs: []types.Run{{Text: "Check this"}}},
		}}}},
	}}}
	assert.Equal(t, want, doc.Paragraphs)
}

func TestRegistry_DocxComments(t *testing.T) {
	body := `<w:p><w:r><w:t>text</w:t><w:commentReference w:id="0"/></w:r></w:p>`
	parts := append(docxParts(body), part{name: docxCommentsPart, body: `<w:comments ` + wordNSDecl + `>` +
		`<w:comment w:id="0"><w:p><w:r><w:t>note</w:t></w:r></w:p></w:comment></w:comments>`})
	path := writeFile(t, "comments.docx", zipBytes(t, parts...))

	tests := []struct {
		name     string
		comments bool
		want     int
	}{
		{"dropped by default", false, 0},
		{"kept when asked", true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := testRegistry(Options{Comments: tt.comments}, &fakeRuntime{})
			doc, err := reg.Open(context.Background(), path)
			require.NoError(t, err)
			require.Len(t, doc.Paragraphs, 1)
			require.Len(t, doc.Paragraphs[0].Runs, 1)
			assert.Equal(t, "text", doc.Paragraphs[0].Runs[0].Text)
			assert.Len(t, doc.Paragraphs[0].Runs[0].Notes, tt.want)
		})
	}
}
