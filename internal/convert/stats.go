// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/wp2tt/internal/rules"
	"github.com/pdiddy/wp2tt/internal/stylemap"
	"github.com/pdiddy/wp2tt/pkg/types"
)

// StyleUse counts how often one style occurred.
type StyleUse struct {
	Name  string
	Count int
}

// Stats summarizes one conversion. Style lists are in first-seen order.
type Stats struct {
	Policy types.DefaultPolicy

	Paragraphs int
	Runs       int
	Notes      map[types.NoteKind]int

	Source map[types.Realm][]StyleUse
	Dest   map[types.Realm][]StyleUse

	// Unmapped lists source styles with no explicit style map entry. The
	// unstyled case is not listed.
	Unmapped map[types.Realm][]string

	Rules []rules.RuleCount
}

type useCounter struct {
	index map[string]int
	uses  []StyleUse
}

func (c *useCounter) add(name string) {
	if c.index == nil {
		c.index = map[string]int{}
	}
	i, ok := c.index[name]
	if !ok {
		i = len(c.uses)
		c.index[name] = i
		c.uses = append(c.uses, StyleUse{Name: name})
	}
	c.uses[i].Count++
}

func styleLabel(name string) string {
	if name == "" {
		return stylemap.UnstyledKey
	}
	return name
}

func destLabel(d *types.StyleDescriptor) string {
	if d == nil {
		return "(none)"
	}
	return d.Path()
}

// collectStats counts source and destination styles. Paragraphs inside
// notes are counted together with the body.
func collectStats(doc *types.Document, resolved []types.ResolvedParagraph, m *stylemap.StyleMap, applied []rules.RuleCount) Stats {
	s := Stats{
		Policy:   m.Policy(),
		Notes:    map[types.NoteKind]int{},
		Source:   map[types.Realm][]StyleUse{},
		Dest:     map[types.Realm][]StyleUse{},
		Unmapped: map[types.Realm][]string{},
		Rules:    applied,
	}
	src := map[types.Realm]*useCounter{types.RealmParagraph: {}, types.RealmCharacter: {}}
	dst := map[types.Realm]*useCounter{types.RealmParagraph: {}, types.RealmCharacter: {}}

	var walk func(paras []types.Paragraph, resolved []types.ResolvedParagraph)
	walk = func(paras []types.Paragraph, resolved []types.ResolvedParagraph) {
		for i, para := range paras {
			s.Paragraphs++
			src[types.RealmParagraph].add(styleLabel(para.Style))
			dst[types.RealmParagraph].add(destLabel(resolved[i].Style))
			for j, run := range para.Runs {
				s.Runs++
				rr := resolved[i].Runs[j]
				src[types.RealmCharacter].add(styleLabel(run.Style))
				dst[types.RealmCharacter].add(destLabel(rr.Style))
				for k, n := range run.Notes {
					s.Notes[n.Kind]++
					walk(n.Paragraphs, rr.Notes[k].Paragraphs)
				}
			}
		}
	}
	walk(doc.Paragraphs, resolved)

	for realm, names := range doc.StylesInUse() {
		for _, name := range names {
			if name != "" && !m.Mapped(realm, name) {
				s.Unmapped[realm] = append(s.Unmapped[realm], name)
			}
		}
	}
	for _, realm := range types.Realms {
		s.Source[realm] = src[realm].uses
		s.Dest[realm] = dst[realm].uses
	}
	return s
}

// Write prints the statistics as an indented report.
func (s Stats) Write(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "policy: %s\nparagraphs: %d\nruns: %d\n", s.Policy, s.Paragraphs, s.Runs)
	if n := s.Notes[types.NoteFootnote] + s.Notes[types.NoteComment]; n > 0 {
		fmt.Fprintf(&b, "notes: %d footnotes, %d comments\n", s.Notes[types.NoteFootnote], s.Notes[types.NoteComment])
	}
	for _, realm := range types.Realms {
		writeUses(&b, "source "+string(realm)+" styles", s.Source[realm])
		writeUses(&b, "destination "+string(realm)+" styles", s.Dest[realm])
		if names := s.Unmapped[realm]; len(names) > 0 {
			fmt.Fprintf(&b, "unmapped %s styles: %s\n", realm, strings.Join(names, ", "))
		}
	}
	if len(s.Rules) > 0 {
		b.WriteString("rules:\n")
		for _, rc := range s.Rules {
			fmt.Fprintf(&b, "  %-30s %-10s %d\n", rc.Name, rc.Realm, rc.Applied)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeUses(b *strings.Builder, title string, uses []StyleUse) {
	if len(uses) == 0 {
		return
	}
	b.WriteString(title + ":\n")
	for _, u := range uses {
		fmt.Fprintf(b, "  %-30s %d\n", u.Name, u.Count)
	}
}
