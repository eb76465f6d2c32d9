// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// ConversionStatus indicates the outcome of converting one input document.
type ConversionStatus string

const (
	ConversionNone   ConversionStatus = "none"
	ConversionDone   ConversionStatus = "converted"
	ConversionCached ConversionStatus = "cached"
	ConversionFailed ConversionStatus = "failed"
)

// NoteKind tells footnotes from comments. Both are emitted as InDesign
// footnotes.
type NoteKind string

const (
	NoteFootnote NoteKind = "footnote"
	NoteComment  NoteKind = "comment"
)

// Note is a footnote or comment anchored after the text of a run.
type Note struct {
	Kind       NoteKind    `json:"kind" yaml:"kind"`
	Paragraphs []Paragraph `json:"paragraphs" yaml:"paragraphs"`
}

// Run is a contiguous span of text sharing one source character style.
// An empty Style means the source applies no character style.
type Run struct {
	Text  string `json:"text" yaml:"text"`
	Style string `json:"style,omitempty" yaml:"style,omitempty"`

	// Notes are anchored, in order, right after Text.
	Notes []Note `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Paragraph is an ordered sequence of runs under one source paragraph style.
type Paragraph struct {
	Style string `json:"style,omitempty" yaml:"style,omitempty"`
	Runs  []Run  `json:"runs" yaml:"runs"`

	// PageBreak is set when the source paragraph carries a hard page break.
	PageBreak bool `json:"page_break,omitempty" yaml:"page_break,omitempty"`
}

// Text returns the concatenated text of all runs in the paragraph.
func (p Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// AddText appends text under the given character style, extending the last
// run when it carries the same style and no notes.
func (p *Paragraph) AddText(style, text string) {
	if text == "" {
		return
	}
	if n := len(p.Runs); n > 0 && p.Runs[n-1].Style == style && len(p.Runs[n-1].Notes) == 0 {
		p.Runs[n-1].Text += text
		return
	}
	p.Runs = append(p.Runs, Run{Text: text, Style: style})
}

// AddNote anchors note after the text written so far. The note joins the
// last run when that run carries style, otherwise it starts an empty run.
func (p *Paragraph) AddNote(style string, note Note) {
	if n := len(p.Runs); n > 0 && p.Runs[n-1].Style == style {
		p.Runs[n-1].Notes = append(p.Runs[n-1].Notes, note)
		return
	}
	p.Runs = append(p.Runs, Run{Style: style, Notes: []Note{note}})
}

// HasNotes reports whether any run anchors a note.
func (p Paragraph) HasNotes() bool {
	for _, r := range p.Runs {
		if len(r.Notes) > 0 {
			return true
		}
	}
	return false
}

// Document is the whole input file converted to a uniform shape regardless of
// source format.
type Document struct {
	// Source is the path the document was read from.
	Source string `json:"source" yaml:"source"`

	// Format names the adapter that produced the document (e.g. "docx").
	Format string `json:"format" yaml:"format"`

	Paragraphs []Paragraph `json:"paragraphs" yaml:"paragraphs"`

	// RTL reports whether the source contains right-to-left text.
	RTL bool `json:"rtl,omitempty" yaml:"rtl,omitempty"`
}

// Text returns the concatenated text of every run in document order.
func (d *Document) Text() string {
	var b strings.Builder
	for _, p := range d.Paragraphs {
		for _, r := range p.Runs {
			b.WriteString(r.Text)
		}
	}
	return b.String()
}

// Append adds the paragraphs of other after those of d.
func (d *Document) Append(other *Document) {
	d.Paragraphs = append(d.Paragraphs, other.Paragraphs...)
	d.RTL = d.RTL || other.RTL
}

// StylesInUse returns the distinct source style names per realm in
// first-encountered order. Styles inside notes count where their anchor is.
func (d *Document) StylesInUse() map[Realm][]string {
	seen := map[Realm]map[string]bool{
		RealmParagraph: {},
		RealmCharacter: {},
	}
	used := map[Realm][]string{}
	add := func(realm Realm, name string) {
		if seen[realm][name] {
			return
		}
		seen[realm][name] = true
		used[realm] = append(used[realm], name)
	}
	var walk func(paras []Paragraph)
	walk = func(paras []Paragraph) {
		for _, p := range paras {
			add(RealmParagraph, p.Style)
			for _, r := range p.Runs {
				add(RealmCharacter, r.Style)
				for _, n := range r.Notes {
					walk(n.Paragraphs)
				}
			}
		}
	}
	walk(d.Paragraphs)
	return used
}
