// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rules

import (
	"github.com/pdiddy/wp2tt/internal/stylemap"
	"github.com/pdiddy/wp2tt/pkg/types"
)

// Context is the read-only view a condition evaluates against. Neighbouring
// paragraphs expose their source styles only.
type Context struct {
	Paragraph *types.Paragraph
	Index     int // paragraph index in the document
	Count     int // number of paragraphs in the document

	// Occurrence is the 1-based index of this paragraph among paragraphs
	// sharing its source style.
	Occurrence int

	// Preceding and Following are nil at the document boundaries.
	Preceding *types.Paragraph
	Following *types.Paragraph

	// Run fields are set for character rules only.
	Run      *types.Run
	RunIndex int
	RunCount int
}

// RuleCount reports how often a rule was applied.
type RuleCount struct {
	Name    string
	Realm   types.Realm
	Applied int
}

// Engine resolves documents against a style map and a rule set. It keeps
// application counts, so use one engine per conversion.
type Engine struct {
	styles  *stylemap.StyleMap
	byRealm map[types.Realm][]*Rule
	order   []*Rule
	into    map[*Rule]*types.StyleDescriptor
	applied map[*Rule]int
}

// NewEngine prepares an engine. Rule destinations that the style map
// already declares share its descriptors, so their attributes apply.
func NewEngine(m *stylemap.StyleMap, set *Set) *Engine {
	e := &Engine{
		styles:  m,
		byRealm: map[types.Realm][]*Rule{},
		into:    map[*Rule]*types.StyleDescriptor{},
		applied: map[*Rule]int{},
	}
	if set != nil {
		for _, r := range set.Rules {
			e.into[r] = m.Declared(r.Into)
			e.byRealm[r.Realm] = append(e.byRealm[r.Realm], r)
			e.order = append(e.order, r)
		}
	}
	return e
}

// Resolve makes one pass over doc in paragraph-then-run order. Each run
// yields exactly one ResolvedRun with its text untouched. Note paragraphs
// are resolved where they are anchored; their neighbours and positions are
// taken within the note, and their occurrences are counted separately from
// the body.
func (e *Engine) Resolve(doc *types.Document) []types.ResolvedParagraph {
	r := &resolver{engine: e, bodySeen: map[string]int{}, noteSeen: map[string]int{}}
	return r.paragraphs(doc.Paragraphs, r.bodySeen)
}

type resolver struct {
	engine   *Engine
	bodySeen map[string]int
	noteSeen map[string]int
}

func (r *resolver) paragraphs(paras []types.Paragraph, seen map[string]int) []types.ResolvedParagraph {
	e := r.engine
	out := make([]types.ResolvedParagraph, len(paras))
	count := len(paras)

	for i := range paras {
		p := &paras[i]
		seen[p.Style]++

		ctx := &Context{
			Paragraph:  p,
			Index:      i,
			Count:      count,
			Occurrence: seen[p.Style],
		}
		if i > 0 {
			ctx.Preceding = &paras[i-1]
		}
		if i+1 < count {
			ctx.Following = &paras[i+1]
		}

		style, _ := e.styles.Resolve(types.RealmParagraph, p.Style)
		if rule := e.match(types.RealmParagraph, ctx); rule != nil {
			style = e.into[rule]
		}

		rp := types.ResolvedParagraph{Style: style, Runs: make([]types.ResolvedRun, len(p.Runs))}
		ctx.RunCount = len(p.Runs)
		for j := range p.Runs {
			run := &p.Runs[j]
			ctx.Run = run
			ctx.RunIndex = j
			cs, _ := e.styles.Resolve(types.RealmCharacter, run.Style)
			if rule := e.match(types.RealmCharacter, ctx); rule != nil {
				cs = e.into[rule]
			}
			rr := types.ResolvedRun{Style: cs, Text: run.Text}
			for _, n := range run.Notes {
				rr.Notes = append(rr.Notes, types.ResolvedNote{
					Kind:       n.Kind,
					Paragraphs: r.paragraphs(n.Paragraphs, r.noteSeen),
				})
			}
			rp.Runs[j] = rr
		}
		out[i] = rp
	}
	return out
}

// match returns the first rule of realm whose conditions hold.
func (e *Engine) match(realm types.Realm, ctx *Context) *Rule {
	for _, r := range e.byRealm[realm] {
		if r.Matches(ctx) {
			e.applied[r]++
			return r
		}
	}
	return nil
}

// Applied returns per-rule application counts in declaration order.
func (e *Engine) Applied() []RuleCount {
	counts := make([]RuleCount, len(e.order))
	for i, r := range e.order {
		counts[i] = RuleCount{Name: r.Name, Realm: r.Realm, Applied: e.applied[r]}
	}
	return counts
}
