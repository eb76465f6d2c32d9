// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package stylemap loads the mapping from source style names to destination
// style descriptors and applies the default policy to unmapped styles.
package stylemap

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"

	wperrors "github.com/pdiddy/wp2tt/internal/errors"
	"github.com/pdiddy/wp2tt/internal/logging"
	"github.com/pdiddy/wp2tt/pkg/types"
)

const (
	// UnstyledKey stands for the empty source style in a style map.
	UnstyledKey = "(unstyled)"

	// NormalParagraphStyle receives unstyled paragraphs under the
	// pass-through policy.
	NormalParagraphStyle = "NormalParagraphStyle"
)

// Options configures how unmapped styles resolve.
type Options struct {
	Policy   types.DefaultPolicy
	Fallback types.FallbackConfig

	// Ignore lists source styles treated as unstyled.
	Ignore []string
}

// Entry is one source-to-destination mapping in file order.
type Entry struct {
	Realm  types.Realm
	Source string
	Dest   *types.StyleDescriptor
	Line   int
}

// StyleMap resolves source style names to destination descriptors. It is
// built once and read-only afterwards.
type StyleMap struct {
	entries  map[types.Realm]map[string]*types.StyleDescriptor
	order    []Entry
	dests    map[string]*types.StyleDescriptor
	policy   types.DefaultPolicy
	fallback map[types.Realm]*types.StyleDescriptor
	ignored  map[string]bool
}

// New returns a StyleMap with no entries.
func New(opts Options) (*StyleMap, error) {
	m := &StyleMap{
		entries: map[types.Realm]map[string]*types.StyleDescriptor{
			types.RealmParagraph: {},
			types.RealmCharacter: {},
		},
		dests:    map[string]*types.StyleDescriptor{},
		policy:   opts.Policy,
		fallback: map[types.Realm]*types.StyleDescriptor{},
		ignored:  map[string]bool{},
	}
	if m.policy == "" {
		m.policy = types.PolicyPassthrough
	}
	for _, name := range opts.Ignore {
		m.ignored[name] = true
	}

	switch m.policy {
	case types.PolicyPassthrough:
	case types.PolicyFallback:
		if strings.TrimSpace(opts.Fallback.Paragraph) == "" {
			return nil, &wperrors.ConfigError{Field: "fallback.paragraph", Message: "required by the fallback policy"}
		}
		fallbacks := map[types.Realm]string{
			types.RealmParagraph: opts.Fallback.Paragraph,
			types.RealmCharacter: opts.Fallback.Character,
		}
		for realm, path := range fallbacks {
			if strings.TrimSpace(path) == "" {
				continue
			}
			d, err := ParsePath(realm, path)
			if err != nil {
				return nil, &wperrors.ConfigError{Field: "fallback." + string(realm), Message: err.Error()}
			}
			m.fallback[realm] = m.intern(d)
		}
	default:
		return nil, &wperrors.ConfigError{Field: "policy", Message: fmt.Sprintf("unknown policy %q", m.policy)}
	}
	return m, nil
}

// Load reads and parses the style map at path. An empty path yields a map
// with no entries.
func Load(path string, opts Options) (*StyleMap, error) {
	if path == "" {
		return New(opts)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading style map %s: %w", path, err)
	}
	return Parse(path, data, opts)
}

// Parse builds a StyleMap from style map text. name is used in error messages.
func Parse(name string, data []byte, opts Options) (*StyleMap, error) {
	m, err := New(opts)
	if err != nil {
		return nil, err
	}

	file, err := parseMapFile(name, string(data))
	if err != nil {
		return nil, syntaxError(name, err)
	}

	type pendingRef struct {
		d     *types.StyleDescriptor
		key   string
		value string
		line  int
		entry string
	}
	var refs []pendingRef

	realm := types.RealmParagraph
	for _, line := range file.Lines {
		if line.Section != "" {
			realm, err = types.ParseRealm(sectionRealm(line.Section))
			if err != nil {
				return nil, &wperrors.InvalidMappingError{Path: name, Line: line.Pos.Line, Message: err.Error()}
			}
			continue
		}
		if line.Entry == nil {
			continue
		}

		source := strings.TrimSpace(line.Entry.Source)
		if source == UnstyledKey {
			source = ""
		}
		d, err := ParsePath(realm, line.Entry.Dest)
		if err != nil {
			return nil, &wperrors.InvalidMappingError{Path: name, Line: line.Pos.Line, Entry: line.Entry.Source, Message: err.Error()}
		}
		d = m.intern(d)

		for _, attr := range line.Entry.Attrs {
			key := strings.ToLower(strings.TrimSpace(attr.Key))
			value := strings.TrimSpace(attr.Value)
			bad := func(msg string) error {
				return &wperrors.InvalidMappingError{Path: name, Line: line.Pos.Line, Entry: strings.TrimSpace(line.Entry.Source), Message: msg}
			}
			if value == "" {
				return nil, bad(fmt.Sprintf("attribute %q has no value", key))
			}
			switch key {
			case "next", "variable":
				if realm != types.RealmParagraph {
					return nil, bad(fmt.Sprintf("attribute %q applies to paragraph styles only", key))
				}
			case "based-on", "tags":
			default:
				return nil, bad(fmt.Sprintf("unknown attribute %q", key))
			}
			switch key {
			case "variable":
				d.Variable = value
			case "tags":
				d.Tags = value
			default:
				refs = append(refs, pendingRef{d: d, key: key, value: value, line: line.Pos.Line, entry: line.Entry.Source})
			}
		}

		if prev, ok := m.entries[realm][source]; ok {
			logging.Debug("style map entry overrides earlier one",
				"file", name, "line", line.Pos.Line, "source", source, "previous", prev.Path())
			m.dropOrder(realm, source)
		}
		m.entries[realm][source] = d
		m.order = append(m.order, Entry{Realm: realm, Source: source, Dest: d, Line: line.Pos.Line})
	}

	// References resolve after all entries so forward references find the
	// descriptor declared later in the file.
	for _, ref := range refs {
		target, err := ParsePath(ref.d.Realm, ref.value)
		if err != nil {
			return nil, &wperrors.InvalidMappingError{Path: name, Line: ref.line, Entry: ref.entry, Message: fmt.Sprintf("%s: %v", ref.key, err)}
		}
		target = m.intern(target)
		if ref.key == "next" {
			ref.d.Next = target
		} else {
			ref.d.BasedOn = target
		}
	}
	return m, nil
}

// ParsePath validates a "Group/Sub/Name" destination path and returns its
// descriptor.
func ParsePath(realm types.Realm, path string) (*types.StyleDescriptor, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("empty destination style")
	}
	group, name := types.SplitPath(path)
	for _, seg := range append(append([]string{}, group...), name) {
		if seg == "" {
			return nil, fmt.Errorf("ambiguous group path %q: empty segment", path)
		}
		if strings.Contains(seg, ":") {
			return nil, fmt.Errorf("ambiguous group path %q: ':' separates groups in tagged text", path)
		}
	}
	return &types.StyleDescriptor{Realm: realm, Name: name, Group: group}, nil
}

// Resolve returns the destination descriptor for a source style in realm.
// mapped reports whether an explicit entry matched. A nil descriptor means
// no style (character realm only).
func (m *StyleMap) Resolve(realm types.Realm, source string) (d *types.StyleDescriptor, mapped bool) {
	if m.ignored[source] {
		source = ""
	}
	if d, ok := m.entries[realm][source]; ok {
		return d, true
	}

	if source == "" {
		if realm == types.RealmCharacter {
			return nil, false
		}
		if m.policy == types.PolicyFallback {
			return m.fallback[realm], false
		}
		return m.lookup(realm, NormalParagraphStyle), false
	}

	if m.policy == types.PolicyFallback {
		return m.fallback[realm], false
	}
	return m.lookup(realm, source), false
}

// lookup returns the declared descriptor named name, or a fresh ungrouped
// one. It never modifies the map.
func (m *StyleMap) lookup(realm types.Realm, name string) *types.StyleDescriptor {
	d := &types.StyleDescriptor{Realm: realm, Name: name}
	if existing, ok := m.dests[d.Key()]; ok {
		return existing
	}
	return d
}

// Entries returns the explicit mappings in file order, after duplicate
// resolution.
func (m *StyleMap) Entries() []Entry {
	return append([]Entry(nil), m.order...)
}

// Mapped reports whether source has an explicit entry in realm.
func (m *StyleMap) Mapped(realm types.Realm, source string) bool {
	_, ok := m.entries[realm][source]
	return ok
}

// Policy returns the default policy in effect.
func (m *StyleMap) Policy() types.DefaultPolicy {
	return m.policy
}

// intern returns the shared descriptor for d's realm and path, registering d
// when none exists yet. Only called while the map is being built.
func (m *StyleMap) intern(d *types.StyleDescriptor) *types.StyleDescriptor {
	if existing, ok := m.dests[d.Key()]; ok {
		return existing
	}
	m.dests[d.Key()] = d
	return d
}

func (m *StyleMap) dropOrder(realm types.Realm, source string) {
	for i, e := range m.order {
		if e.Realm == realm && e.Source == source {
			m.order = append(m.order[:i], m.order[i+1:]...)
			return
		}
	}
}

func syntaxError(name string, err error) error {
	var perr participle.Error
	if errors.As(err, &perr) {
		return &wperrors.InvalidMappingError{Path: name, Line: perr.Position().Line, Message: perr.Message()}
	}
	return &wperrors.InvalidMappingError{Path: name, Message: err.Error()}
}

// Declared returns the descriptor the map already holds for d's realm and
// path, or d itself when the map does not mention that destination.
func (m *StyleMap) Declared(d *types.StyleDescriptor) *types.StyleDescriptor {
	if d == nil {
		return nil
	}
	if existing, ok := m.dests[d.Key()]; ok {
		return existing
	}
	return d
}
