// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package input

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	wperrors "github.com/pdiddy/wp2tt/internal/errors"
	"github.com/pdiddy/wp2tt/internal/logging"
	"github.com/pdiddy/wp2tt/pkg/types"
)

const (
	odfContentPart  = "content.xml"
	odfStylesPart   = "styles.xml"
	odfMimetypePart = "mimetype"
	odfTextMimetype = "application/vnd.oasis.opendocument.text"

	odfTextURI   = "urn:oasis:names:tc:opendocument:xmlns:text:1.0"
	odfOfficeURI = "urn:oasis:names:tc:opendocument:xmlns:office:1.0"
)

var (
	odfNamedStyles     = mustCompile("//office:styles/style:style", odfNS)
	odfAutomaticStyles = mustCompile("//office:automatic-styles/style:style", odfNS)
	odfBodyText        = mustCompile("//office:body/office:text", odfNS)
	odfParaProps       = mustCompile("//style:paragraph-properties", odfNS)

	odfHexEscape = regexp.MustCompile(`_([0-9A-Fa-f]{2})_`)
	odfSpace     = regexp.MustCompile(`[ \t\r\n]+`)
)

// OdtAdapter reads zipped OpenDocument text files.
type OdtAdapter struct{}

func (OdtAdapter) Name() string { return "odt" }

func (OdtAdapter) Extensions() []string { return []string{".odt", ".ott"} }

func (OdtAdapter) Sniff(path string, head []byte) bool {
	if !isZip(head) {
		return false
	}
	zr, err := zip.OpenReader(path)
	if err != nil {
		return false
	}
	defer zr.Close()
	mt, ok, err := readZipPart(&zr.Reader, odfMimetypePart)
	return ok && err == nil && strings.HasPrefix(string(mt), odfTextMimetype)
}

func (OdtAdapter) Read(ctx context.Context, path string) (*types.Document, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, &wperrors.MalformedDocumentError{Path: path, Err: err}
	}
	defer zr.Close()

	var roots []*xmlquery.Node
	for _, part := range []string{odfStylesPart, odfContentPart} {
		data, ok, err := readZipPart(&zr.Reader, part)
		if err != nil {
			return nil, &wperrors.MalformedDocumentError{Path: path, Part: part, Err: err}
		}
		if !ok {
			if part == odfContentPart {
				return nil, &wperrors.MalformedDocumentError{Path: path, Part: part, Err: fmt.Errorf("missing part")}
			}
			continue
		}
		root, err := parseXML(data)
		if err != nil {
			return nil, &wperrors.MalformedDocumentError{Path: path, Part: part, Err: err}
		}
		roots = append(roots, root)
	}
	return readODF(path, odfContentPart, roots)
}

// FodtAdapter reads flat (single XML file) OpenDocument text.
type FodtAdapter struct{}

func (FodtAdapter) Name() string { return "fodt" }

func (FodtAdapter) Extensions() []string { return []string{".fodt"} }

func (FodtAdapter) Sniff(_ string, head []byte) bool {
	return !isZip(head) && bytes.Contains(head, []byte("office:document")) &&
		bytes.Contains(head, []byte("opendocument"))
}

func (FodtAdapter) Read(ctx context.Context, path string) (*types.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	root, err := parseXML(data)
	if err != nil {
		return nil, &wperrors.MalformedDocumentError{Path: path, Err: err}
	}
	return readODF(path, "", []*xmlquery.Node{root})
}

// odfStyle is one style:style element.
type odfStyle struct {
	display   string
	parent    string
	automatic bool
}

// odfStyleTable indexes styles by family ("paragraph", "text") and name.
// Later roots override earlier ones.
type odfStyleTable map[string]map[string]odfStyle

func (t odfStyleTable) add(n *xmlquery.Node, automatic bool) {
	family := attr(n, "family")
	name := attr(n, "name")
	if family == "" || name == "" {
		return
	}
	if t[family] == nil {
		t[family] = map[string]odfStyle{}
	}
	display := attr(n, "display-name")
	if display == "" {
		display = odfDecodeName(name)
	}
	t[family][name] = odfStyle{display: display, parent: attr(n, "parent-style-name"), automatic: automatic}
}

// name returns the user-visible name for a style reference. Automatic styles
// stand for their parent; an automatic style with no parent is unstyled.
func (t odfStyleTable) name(family, ref string) string {
	for i := 0; i < 8; i++ {
		if ref == "" {
			return ""
		}
		s, ok := t[family][ref]
		if !ok {
			return odfDecodeName(ref)
		}
		if !s.automatic {
			return s.display
		}
		ref = s.parent
	}
	return ""
}

// odfDecodeName reverses the _xx_ hex escaping ODF applies to style names.
func odfDecodeName(name string) string {
	return odfHexEscape.ReplaceAllStringFunc(name, func(m string) string {
		b, err := strconv.ParseUint(m[1:3], 16, 8)
		if err != nil {
			return m
		}
		return string([]byte{byte(b)})
	})
}

func readODF(path, part string, roots []*xmlquery.Node) (*types.Document, error) {
	styles := odfStyleTable{}
	for _, root := range roots {
		for _, n := range xmlquery.QuerySelectorAll(root, odfNamedStyles) {
			styles.add(n, false)
		}
		for _, n := range xmlquery.QuerySelectorAll(root, odfAutomaticStyles) {
			styles.add(n, true)
		}
	}

	var body *xmlquery.Node
	for _, root := range roots {
		if b := xmlquery.QuerySelector(root, odfBodyText); b != nil {
			body = b
		}
	}
	if body == nil {
		return nil, &wperrors.MalformedDocumentError{Path: path, Part: part, Err: fmt.Errorf("no office:text body")}
	}

	w := &odfWalker{styles: styles}
	w.block(body)
	if w.tables > 0 {
		logging.Warn("tables flattened into paragraphs", "path", path, "tables", w.tables)
	}

	doc := &types.Document{Paragraphs: w.paras}
	for _, root := range roots {
		for _, n := range xmlquery.QuerySelectorAll(root, odfParaProps) {
			if strings.HasPrefix(attr(n, "writing-mode"), "rl") {
				doc.RTL = true
			}
		}
	}
	return doc, nil
}

type odfWalker struct {
	styles odfStyleTable
	paras  []types.Paragraph
	tables int
}

// block walks block-level content, emitting a paragraph per text:p and
// text:h and descending into lists, sections and tables.
func (w *odfWalker) block(n *xmlquery.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.ElementNode {
			continue
		}
		if c.NamespaceURI != odfTextURI && c.NamespaceURI != "" {
			if c.Data == "table" {
				w.tables++
			}
			if c.Data == "frame" || c.Data == "custom-shape" {
				continue
			}
			w.block(c)
			continue
		}
		switch c.Data {
		case "p", "h":
			w.paragraph(c)
		case "tracked-changes", "sequence-decls", "variable-decls", "user-field-decls", "table-of-content", "alphabetical-index":
		default:
			w.block(c)
		}
	}
}

func (w *odfWalker) paragraph(n *xmlquery.Node) {
	para := types.Paragraph{Style: w.styles.name("paragraph", attr(n, "style-name"))}
	if para.Style == "" && n.Data == "h" {
		level := attr(n, "outline-level")
		if level == "" {
			level = "1"
		}
		para.Style = "Heading " + level
	}
	b := &odfRunBuilder{para: &para}
	w.inline(n, "", b)
	w.paras = append(w.paras, para)
}

// inline collects text under n. style is the character style in force.
func (w *odfWalker) inline(n *xmlquery.Node, style string, b *odfRunBuilder) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isText(c) {
			b.text(style, c.Data)
			continue
		}
		if c.Type != xmlquery.ElementNode {
			continue
		}
		if c.NamespaceURI == odfOfficeURI && c.Data == "annotation" {
			w.note(c, style, types.NoteComment, b)
			continue
		}
		if c.NamespaceURI != odfTextURI && c.NamespaceURI != "" {
			continue
		}
		switch c.Data {
		case "note":
			// Endnotes are not carried over.
			if attr(c, "note-class") != "endnote" {
				if body := child(c, "note-body"); body != nil {
					w.note(body, style, types.NoteFootnote, b)
				}
			}
		case "span":
			inner := style
			if s := w.styles.name("text", attr(c, "style-name")); s != "" {
				inner = s
			}
			w.inline(c, inner, b)
		case "s":
			count := 1
			if v, err := strconv.Atoi(attr(c, "c")); err == nil && v > 0 {
				count = v
			}
			b.literal(style, strings.Repeat(" ", count))
		case "tab":
			b.literal(style, "\t")
		case "line-break":
			b.literal(style, "\n")
		case "annotation-end", "bookmark", "bookmark-start", "bookmark-end",
			"soft-page-break", "change", "change-start", "change-end":
		default:
			w.inline(c, style, b)
		}
	}
}

// note anchors the paragraphs under n, a text:note-body or an
// office:annotation.
func (w *odfWalker) note(n *xmlquery.Node, style string, kind types.NoteKind, b *odfRunBuilder) {
	sub := &odfWalker{styles: w.styles}
	sub.block(n)
	w.tables += sub.tables
	b.para.AddNote(style, types.Note{Kind: kind, Paragraphs: sub.paras})
}

// odfRunBuilder applies ODF whitespace collapsing across text nodes.
type odfRunBuilder struct {
	para      *types.Paragraph
	lastSpace bool
	started   bool
}

func (b *odfRunBuilder) text(style, s string) {
	s = odfSpace.ReplaceAllString(s, " ")
	if strings.HasPrefix(s, " ") && (b.lastSpace || !b.started) {
		s = s[1:]
	}
	if s == "" {
		return
	}
	b.para.AddText(style, s)
	b.started = true
	b.lastSpace = strings.HasSuffix(s, " ")
}

func (b *odfRunBuilder) literal(style, s string) {
	b.para.AddText(style, s)
	b.started = true
	b.lastSpace = false
}
