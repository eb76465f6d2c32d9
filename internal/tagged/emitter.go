// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tagged serializes resolved paragraphs into InDesign Tagged Text.
package tagged

import (
	"math"
	"strconv"
	"strings"

	"github.com/pdiddy/wp2tt/pkg/types"
)

const version = "<Version:13.1>"

var colorTable = "<ColorTable:=" +
	"<Black:COLOR:CMYK:Process:0,0,0,1>" +
	"<Cyan:COLOR:CMYK:Process:1,0,0,0>" +
	"<Magenta:COLOR:CMYK:Process:0,1,0,0>" +
	"<Yellow:COLOR:CMYK:Process:0,0,1,0>" +
	">"

var realmMnemonic = map[types.Realm]string{
	types.RealmParagraph: "Para",
	types.RealmCharacter: "Char",
}

// Options controls the emitted header and text transforms.
type Options struct {
	Encoding types.Encoding
	RTL      bool
	Maqaf    bool
	Vav      bool
}

// Emit renders paragraphs as tagged text: the header with one definition
// per destination style, then one line per paragraph.
func Emit(paras []types.ResolvedParagraph, opts Options) string {
	var b strings.Builder

	enc := opts.Encoding
	if enc == "" {
		enc = types.EncodingUnicodeMac
	}
	b.WriteString("<" + string(enc) + ">\n")
	b.WriteString(version)
	if opts.RTL {
		b.WriteString("<FeatureSet:Indesign-R2L>")
	}
	b.WriteString(colorTable)
	b.WriteString("\n")

	for _, d := range declarations(paras) {
		writeDefinition(&b, d)
		b.WriteString("\n")
	}

	for _, p := range paras {
		writeParagraph(&b, p, opts)
	}
	return b.String()
}

func writeParagraph(b *strings.Builder, p types.ResolvedParagraph, opts Options) {
	writeParagraphBody(b, p, opts)
	b.WriteString("\n")
}

// writeParagraphBody writes p without its terminating newline.
func writeParagraphBody(b *strings.Builder, p types.ResolvedParagraph, opts Options) {
	b.WriteString("<ParaStyle:")
	if p.Style != nil {
		b.WriteString(idName(p.Style))
	}
	b.WriteString(">")

	var current *types.StyleDescriptor
	for _, r := range p.Runs {
		if !sameStyle(current, r.Style) {
			writeCharStyle(b, r.Style)
			current = r.Style
		}
		b.WriteString(Escape(transformText(r.Text, opts)))
		for _, n := range r.Notes {
			writeNote(b, n, opts)
			writeCharStyle(b, current)
		}
	}
	if current != nil {
		writeCharStyle(b, nil)
	}

	if p.Style != nil && p.Style.Variable != "" {
		b.WriteString("<DefineTextVariable:")
		b.WriteString(Escape(p.Style.Variable))
		b.WriteString("=<TextVarType:CustomText><tvString:")
		b.WriteString(Escape(transformText(p.Text(), opts)))
		b.WriteString(">>")
	}
}

// writeNote writes a footnote at the current position. Its paragraphs are
// separated by newlines; the last one runs straight into the end tag.
func writeNote(b *strings.Builder, n types.ResolvedNote, opts Options) {
	writeCharStyle(b, noteRefStyle(n.Kind))
	b.WriteString("<FootnoteStart:>")
	for i, p := range n.Paragraphs {
		if i > 0 {
			b.WriteString("\n")
		}
		writeParagraphBody(b, p, opts)
	}
	b.WriteString("<FootnoteEnd:>")
}

func writeCharStyle(b *strings.Builder, d *types.StyleDescriptor) {
	b.WriteString("<CharStyle:")
	if d != nil {
		b.WriteString(idName(d))
	}
	b.WriteString(">")
}

func sameStyle(a, b *types.StyleDescriptor) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Key() == b.Key()
}

// idName renders a descriptor as a tagged-text style reference: group
// segments and name joined by the "\:" group separator.
func idName(d *types.StyleDescriptor) string {
	parts := make([]string, 0, len(d.Group)+1)
	for _, g := range d.Group {
		parts = append(parts, escapeName(g))
	}
	parts = append(parts, escapeName(d.Name))
	return strings.Join(parts, `\:`)
}

func escapeName(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `<`, `\<`, `>`, `\>`)
	return r.Replace(s)
}

// writeDefinition writes one style definition. Styles without explicit
// tags are highlighted with a tint that fades with each new definition so
// imported styles stand out in the layout.
func writeDefinition(b *strings.Builder, d declaration) {
	b.WriteString("<Define")
	b.WriteString(realmMnemonic[d.style.Realm])
	b.WriteString("Style:")
	b.WriteString(idName(d.style))

	if d.style.Tags != "" {
		b.WriteString(d.style.Tags)
	} else {
		fullness := 50.0 + 50.0/math.Pow(1.05, float64(d.shade))
		switch d.style.Realm {
		case types.RealmParagraph:
			b.WriteString("<pShadingColor:Yellow><pShadingOn:1><pShadingTint:")
			b.WriteString(strconv.Itoa(int(100 - fullness)))
			b.WriteString(">")
		case types.RealmCharacter:
			b.WriteString("<cColor:Magenta><cColorTint:")
			b.WriteString(strconv.Itoa(int(fullness)))
			b.WriteString(">")
		}
	}

	if d.style.BasedOn != nil {
		b.WriteString("<BasedOn:")
		b.WriteString(idName(d.style.BasedOn))
		b.WriteString(">")
	}
	if d.style.Next != nil && d.style.Realm == types.RealmParagraph {
		b.WriteString("<Nextstyle:")
		b.WriteString(idName(d.style.Next))
		b.WriteString(">")
	}
	b.WriteString(">")
}
