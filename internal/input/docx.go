// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package input

import (
	"archive/zip"
	"context"
	"fmt"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	wperrors "github.com/pdiddy/wp2tt/internal/errors"
	"github.com/pdiddy/wp2tt/internal/logging"
	"github.com/pdiddy/wp2tt/pkg/types"
)

const (
	docxDocumentPart  = "word/document.xml"
	docxStylesPart    = "word/styles.xml"
	docxFootnotesPart = "word/footnotes.xml"
	docxCommentsPart  = "word/comments.xml"
)

var (
	docxStyles     = mustCompile("//w:styles/w:style", wordNS)
	docxBody       = mustCompile("//w:body", wordNS)
	docxNestedPara = mustCompile(".//w:p[not(ancestor::w:txbxContent)]", wordNS)
	docxBidi       = mustCompile("//w:bidi | //w:rtl", wordNS)
	docxFootnotes  = mustCompile("//w:footnotes/w:footnote", wordNS)
	docxComments   = mustCompile("//w:comments/w:comment", wordNS)
)

// DocxAdapter reads Office Open XML word-processing documents.
type DocxAdapter struct{}

func (DocxAdapter) Name() string { return "docx" }

func (DocxAdapter) Extensions() []string { return []string{".docx", ".docm", ".dotx", ".dotm"} }

func (DocxAdapter) Sniff(path string, head []byte) bool {
	return isZip(head) && zipHas(path, docxDocumentPart)
}

// docxStyleTable maps style ids to display names per realm.
type docxStyleTable struct {
	names    map[types.Realm]map[string]string
	defaults map[types.Realm]string // default style id per realm
}

func (t *docxStyleTable) name(realm types.Realm, id string) string {
	if id == "" {
		return ""
	}
	if n, ok := t.names[realm][id]; ok {
		return n
	}
	return id
}

func (DocxAdapter) Read(ctx context.Context, path string) (*types.Document, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, &wperrors.MalformedDocumentError{Path: path, Err: err}
	}
	defer zr.Close()
	return readDocx(path, &zr.Reader)
}

func readDocx(path string, zr *zip.Reader) (*types.Document, error) {
	data, ok, err := readZipPart(zr, docxDocumentPart)
	if err != nil {
		return nil, &wperrors.MalformedDocumentError{Path: path, Part: docxDocumentPart, Err: err}
	}
	if !ok {
		return nil, &wperrors.MalformedDocumentError{Path: path, Part: docxDocumentPart, Err: fmt.Errorf("missing part")}
	}
	root, err := parseXML(data)
	if err != nil {
		return nil, &wperrors.MalformedDocumentError{Path: path, Part: docxDocumentPart, Err: err}
	}

	styles := &docxStyleTable{
		names:    map[types.Realm]map[string]string{types.RealmParagraph: {}, types.RealmCharacter: {}},
		defaults: map[types.Realm]string{},
	}
	var styleRoot *xmlquery.Node
	if data, ok, err := readZipPart(zr, docxStylesPart); err != nil {
		return nil, &wperrors.MalformedDocumentError{Path: path, Part: docxStylesPart, Err: err}
	} else if ok {
		styleRoot, err = parseXML(data)
		if err != nil {
			return nil, &wperrors.MalformedDocumentError{Path: path, Part: docxStylesPart, Err: err}
		}
		loadDocxStyles(styleRoot, styles)
	}

	r := &docxReader{styles: styles}
	if r.footnotes, err = loadDocxNotes(path, zr, docxFootnotesPart, docxFootnotes); err != nil {
		return nil, err
	}
	if r.comments, err = loadDocxNotes(path, zr, docxCommentsPart, docxComments); err != nil {
		return nil, err
	}

	body := xmlquery.QuerySelector(root, docxBody)
	if body == nil {
		return nil, &wperrors.MalformedDocumentError{Path: path, Part: docxDocumentPart, Err: fmt.Errorf("no w:body element")}
	}

	doc := &types.Document{}
	tables := 0
	for n := body.FirstChild; n != nil; n = n.NextSibling {
		if n.Type != xmlquery.ElementNode {
			continue
		}
		switch n.Data {
		case "p":
			doc.Paragraphs = append(doc.Paragraphs, r.paragraph(n))
		case "tbl", "sdt", "customXml":
			if n.Data == "tbl" {
				tables++
			}
			for _, p := range xmlquery.QuerySelectorAll(n, docxNestedPara) {
				doc.Paragraphs = append(doc.Paragraphs, r.paragraph(p))
			}
		}
	}
	if tables > 0 {
		logging.Warn("tables flattened into paragraphs", "path", path, "tables", tables)
	}
	if r.missing > 0 {
		logging.Warn("note references without a note", "path", path, "count", r.missing)
	}

	doc.RTL = hasDocxBidi(root) || (styleRoot != nil && hasDocxBidi(styleRoot))
	return doc, nil
}

func loadDocxStyles(root *xmlquery.Node, t *docxStyleTable) {
	for _, s := range xmlquery.QuerySelectorAll(root, docxStyles) {
		var realm types.Realm
		switch attr(s, "type") {
		case "paragraph":
			realm = types.RealmParagraph
		case "character":
			realm = types.RealmCharacter
		default:
			continue
		}
		id := attr(s, "styleId")
		if id == "" {
			continue
		}
		name := attr(child(s, "name"), "val")
		if name == "" {
			name = id
		}
		t.names[realm][id] = name
		if isOn(attr(s, "default")) {
			t.defaults[realm] = id
		}
	}
}

// loadDocxNotes indexes the w:footnote or w:comment elements of an optional
// part by their w:id.
func loadDocxNotes(path string, zr *zip.Reader, part string, expr *xpath.Expr) (map[string]*xmlquery.Node, error) {
	data, ok, err := readZipPart(zr, part)
	if err != nil {
		return nil, &wperrors.MalformedDocumentError{Path: path, Part: part, Err: err}
	}
	notes := map[string]*xmlquery.Node{}
	if !ok {
		return notes, nil
	}
	root, err := parseXML(data)
	if err != nil {
		return nil, &wperrors.MalformedDocumentError{Path: path, Part: part, Err: err}
	}
	for _, n := range xmlquery.QuerySelectorAll(root, expr) {
		notes[attr(n, "id")] = n
	}
	return notes, nil
}

// docxReader turns body, footnote and comment paragraphs into the model.
type docxReader struct {
	styles    *docxStyleTable
	footnotes map[string]*xmlquery.Node
	comments  map[string]*xmlquery.Node
	missing   int
}

func (r *docxReader) paragraph(p *xmlquery.Node) types.Paragraph {
	var para types.Paragraph
	id := attr(child(child(p, "pPr"), "pStyle"), "val")
	if id == "" {
		id = r.styles.defaults[types.RealmParagraph]
	}
	para.Style = r.styles.name(types.RealmParagraph, id)
	r.walk(p, &para)
	return para
}

// walk collects runs from p and from the containers runs nest in
// (insertions, hyperlinks, fields, content controls). Deleted text is
// skipped.
func (r *docxReader) walk(n *xmlquery.Node, para *types.Paragraph) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.ElementNode {
			continue
		}
		switch c.Data {
		case "r":
			r.run(c, para)
		case "pPr", "rPr", "del", "moveFrom", "proofErr", "bookmarkStart", "bookmarkEnd",
			"commentRangeStart", "commentRangeEnd":
		default:
			r.walk(c, para)
		}
	}
}

func (r *docxReader) run(n *xmlquery.Node, para *types.Paragraph) {
	id := attr(child(child(n, "rPr"), "rStyle"), "val")
	style := ""
	if id != "" && id != r.styles.defaults[types.RealmCharacter] {
		style = r.styles.name(types.RealmCharacter, id)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.ElementNode {
			continue
		}
		switch c.Data {
		case "t":
			para.AddText(style, c.InnerText())
		case "tab", "ptab":
			para.AddText(style, "\t")
		case "br":
			if attr(c, "type") == "page" {
				para.PageBreak = true
				continue
			}
			para.AddText(style, "\n")
		case "cr":
			para.AddText(style, "\n")
		case "noBreakHyphen":
			para.AddText(style, "\u2011")
		case "softHyphen":
			para.AddText(style, "\u00ad")
		case "footnoteReference":
			r.note(para, style, types.NoteFootnote, r.footnotes[attr(c, "id")])
		case "commentReference":
			r.note(para, style, types.NoteComment, r.comments[attr(c, "id")])
		}
	}
}

// note anchors the paragraphs of a w:footnote or w:comment element.
func (r *docxReader) note(para *types.Paragraph, style string, kind types.NoteKind, n *xmlquery.Node) {
	if n == nil {
		r.missing++
		return
	}
	note := types.Note{Kind: kind}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == "p" {
			note.Paragraphs = append(note.Paragraphs, r.paragraph(c))
		}
	}
	para.AddNote(style, note)
}

func hasDocxBidi(root *xmlquery.Node) bool {
	for _, n := range xmlquery.QuerySelectorAll(root, docxBidi) {
		if !hasAttr(n, "val") || isOn(attr(n, "val")) {
			return true
		}
	}
	return false
}

// isOn interprets an OOXML on/off value.
func isOn(v string) bool {
	switch v {
	case "1", "true", "on":
		return true
	}
	return false
}
