// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// Realm separates paragraph styles from character styles. Both the source
// and destination style namespaces are partitioned by realm.
type Realm string

const (
	RealmParagraph Realm = "paragraph"
	RealmCharacter Realm = "character"
)

// Realms lists the realms in declaration order.
var Realms = []Realm{RealmParagraph, RealmCharacter}

// ParseRealm converts a case-insensitive realm name.
func ParseRealm(s string) (Realm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "paragraph", "para":
		return RealmParagraph, nil
	case "character", "char":
		return RealmCharacter, nil
	}
	return "", fmt.Errorf("unknown realm %q", s)
}

// StyleDescriptor identifies a destination style: its name plus the group
// path it lives in, outermost group first.
type StyleDescriptor struct {
	Realm Realm    `json:"realm" yaml:"realm"`
	Name  string   `json:"name" yaml:"name"`
	Group []string `json:"group,omitempty" yaml:"group,omitempty"`

	// BasedOn and Next link related styles in the same realm. Next applies
	// to paragraph styles only. Either may form a cycle.
	BasedOn *StyleDescriptor `json:"-" yaml:"-"`
	Next    *StyleDescriptor `json:"-" yaml:"-"`

	// Variable names a text variable defined from the text of paragraphs
	// in this style.
	Variable string `json:"variable,omitempty" yaml:"variable,omitempty"`

	// Tags holds raw tagged-text attributes written into the definition
	// in place of the default highlighting.
	Tags string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Path returns the group path and name joined with "/".
func (s *StyleDescriptor) Path() string {
	if len(s.Group) == 0 {
		return s.Name
	}
	return strings.Join(s.Group, "/") + "/" + s.Name
}

// SplitPath splits a "Group/Sub/Name" destination path into its group path
// and name, trimming blanks around each segment. It does not validate.
func SplitPath(path string) (group []string, name string) {
	parts := strings.Split(path, "/")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) > 1 {
		group = parts[:len(parts)-1]
	}
	return group, parts[len(parts)-1]
}

// Key identifies the descriptor across realms.
func (s *StyleDescriptor) Key() string {
	return string(s.Realm) + ":" + s.Path()
}

func (s *StyleDescriptor) String() string {
	return s.Key()
}

// ResolvedRun pairs run text with its destination character style. A nil
// Style means the run carries no character style.
type ResolvedRun struct {
	Style *StyleDescriptor
	Text  string
	Notes []ResolvedNote
}

// ResolvedNote is a note whose paragraphs went through the same resolution
// as the body.
type ResolvedNote struct {
	Kind       NoteKind
	Paragraphs []ResolvedParagraph
}

// ResolvedParagraph is a paragraph whose style and runs have been resolved to
// destination styles.
type ResolvedParagraph struct {
	Style *StyleDescriptor
	Runs  []ResolvedRun
}

// Text returns the concatenated run text.
func (p ResolvedParagraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}
