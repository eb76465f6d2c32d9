// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tagged

import "github.com/pdiddy/wp2tt/pkg/types"

// declaration is a style to define in the header together with its shade
// index, the number of definitions of its realm written before it.
type declaration struct {
	style *types.StyleDescriptor
	shade int
}

// groupNode is one level of the style group tree. Items keep first-seen
// order, mixing styles and subgroups.
type groupNode struct {
	children map[string]*groupNode
	items    []groupItem
	seen     map[string]bool
}

type groupItem struct {
	style *types.StyleDescriptor
	group *groupNode
}

func newGroupNode() *groupNode {
	return &groupNode{children: map[string]*groupNode{}, seen: map[string]bool{}}
}

func (n *groupNode) insert(d *types.StyleDescriptor) {
	node := n
	for _, g := range d.Group {
		child, ok := node.children[g]
		if !ok {
			child = newGroupNode()
			node.children[g] = child
			node.items = append(node.items, groupItem{group: child})
		}
		node = child
	}
	if node.seen[d.Name] {
		return
	}
	node.seen[d.Name] = true
	node.items = append(node.items, groupItem{style: d})
}

func (n *groupNode) walk(visit func(*types.StyleDescriptor)) {
	for _, it := range n.items {
		if it.group != nil {
			it.group.walk(visit)
			continue
		}
		visit(it.style)
	}
}

// declarations lists every destination style the paragraphs use, including
// BasedOn and Next targets, note reference styles and styles inside notes. Paragraph styles come first, then character
// styles; within a realm styles are ordered by a group tree built from
// first-encountered group paths so each group is contiguous.
func declarations(paras []types.ResolvedParagraph) []declaration {
	trees := map[types.Realm]*groupNode{
		types.RealmParagraph: newGroupNode(),
		types.RealmCharacter: newGroupNode(),
	}
	visited := map[string]bool{}

	var add func(d *types.StyleDescriptor)
	add = func(d *types.StyleDescriptor) {
		if d == nil || visited[d.Key()] {
			return
		}
		visited[d.Key()] = true
		trees[d.Realm].insert(d)
		add(d.BasedOn)
		add(d.Next)
	}

	var walk func(paras []types.ResolvedParagraph)
	walk = func(paras []types.ResolvedParagraph) {
		for _, p := range paras {
			add(p.Style)
			for _, r := range p.Runs {
				add(r.Style)
				for _, n := range r.Notes {
					add(noteRefStyle(n.Kind))
					walk(n.Paragraphs)
				}
			}
		}
	}
	walk(paras)

	var out []declaration
	for _, realm := range types.Realms {
		shade := 0
		trees[realm].walk(func(d *types.StyleDescriptor) {
			out = append(out, declaration{style: d, shade: shade})
			shade++
		})
	}
	return out
}

// Reference styles marking where a note is anchored in the text.
var (
	footnoteRef = &types.StyleDescriptor{
		Realm: types.RealmCharacter,
		Group: []string{"wp2tt"},
		Name:  "(Footnote Reference in Text)",
		Tags:  "<cColor:Magenta><cColorTint:100><cPosition:Superscript>",
	}
	commentRef = &types.StyleDescriptor{
		Realm:   types.RealmCharacter,
		Group:   []string{"wp2tt"},
		Name:    "(Comment Reference)",
		BasedOn: footnoteRef,
		Tags:    "<cColor:Cyan><cColorTint:100>",
	}
)

func noteRefStyle(kind types.NoteKind) *types.StyleDescriptor {
	if kind == types.NoteComment {
		return commentRef
	}
	return footnoteRef
}
