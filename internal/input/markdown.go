// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package input

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/text/unicode/bidi"

	"github.com/pdiddy/wp2tt/pkg/types"
)

// Style names given to Markdown constructs.
const (
	MarkdownNormal         = "normal"
	MarkdownListItem       = "list item"
	MarkdownBlockQuote     = "block quote"
	MarkdownCodeBlock      = "code block"
	MarkdownEmphasis       = "emphasis"
	MarkdownDoubleEmphasis = "double emphasis"
	MarkdownLink           = "link"
	MarkdownCodeSpan       = "code span"
)

// MarkdownHeader returns the paragraph style for a heading level.
func MarkdownHeader(level int) string {
	return "header " + strconv.Itoa(level)
}

// MarkdownAdapter reads CommonMark files. Block constructs become
// paragraph styles and inline emphasis, links and code become character
// styles.
type MarkdownAdapter struct{}

func (MarkdownAdapter) Name() string { return "markdown" }

func (MarkdownAdapter) Extensions() []string { return []string{".md", ".markdown", ".mdown"} }

// Sniff never claims a file; plain text has no reliable signature.
func (MarkdownAdapter) Sniff(string, []byte) bool { return false }

func (MarkdownAdapter) Read(ctx context.Context, path string) (*types.Document, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseMarkdown(src), nil
}

// ParseMarkdown converts Markdown source into a Document.
func ParseMarkdown(src []byte) *types.Document {
	root := goldmark.New().Parser().Parse(text.NewReader(src))
	m := &mdWalker{src: src}
	m.blocks(root, MarkdownNormal)

	doc := &types.Document{Paragraphs: m.paras}
	doc.RTL = hasRTL(doc.Text())
	return doc
}

type mdWalker struct {
	src   []byte
	paras []types.Paragraph
}

// blocks walks block children of n. style applies to plain paragraphs.
func (m *mdWalker) blocks(n ast.Node, style string) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch b := c.(type) {
		case *ast.Heading:
			m.paragraph(b, MarkdownHeader(b.Level))
		case *ast.Paragraph, *ast.TextBlock:
			m.paragraph(b, style)
		case *ast.List:
			m.blocks(b, MarkdownListItem)
		case *ast.ListItem:
			m.blocks(b, MarkdownListItem)
		case *ast.Blockquote:
			m.blocks(b, MarkdownBlockQuote)
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			m.code(b)
		}
	}
}

func (m *mdWalker) paragraph(n ast.Node, style string) {
	para := types.Paragraph{Style: style}
	m.inline(n, "", &para)
	m.paras = append(m.paras, para)
}

// code emits one paragraph per source line of a code block.
func (m *mdWalker) code(n ast.Node) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := strings.TrimRight(string(seg.Value(m.src)), "\r\n")
		para := types.Paragraph{Style: MarkdownCodeBlock}
		para.AddText("", line)
		m.paras = append(m.paras, para)
	}
}

func (m *mdWalker) inline(n ast.Node, style string, para *types.Paragraph) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			para.AddText(style, string(v.Segment.Value(m.src)))
			switch {
			case v.HardLineBreak():
				para.AddText(style, "\n")
			case v.SoftLineBreak():
				para.AddText(style, " ")
			}
		case *ast.String:
			para.AddText(style, string(v.Value))
		case *ast.Emphasis:
			inner := MarkdownEmphasis
			if v.Level >= 2 {
				inner = MarkdownDoubleEmphasis
			}
			m.inline(v, inner, para)
		case *ast.Link:
			m.inline(v, MarkdownLink, para)
		case *ast.AutoLink:
			para.AddText(MarkdownLink, string(v.Label(m.src)))
		case *ast.CodeSpan:
			m.inline(v, MarkdownCodeSpan, para)
		case *ast.Image, *ast.RawHTML:
		default:
			m.inline(v, style, para)
		}
	}
}

// hasRTL reports whether s contains right-to-left letters.
func hasRTL(s string) bool {
	for _, r := range s {
		p, _ := bidi.LookupRune(r)
		if c := p.Class(); c == bidi.R || c == bidi.AL {
			return true
		}
	}
	return false
}
