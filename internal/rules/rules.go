// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rules loads contextual style rules and resolves a document's
// source styles into destination styles.
package rules

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.yaml.in/yaml/v3"

	wperrors "github.com/pdiddy/wp2tt/internal/errors"
	"github.com/pdiddy/wp2tt/internal/stylemap"
	"github.com/pdiddy/wp2tt/pkg/types"
)

//go:embed schema.json
var schemaJSON string

var schemaLoader = gojsonschema.NewStringLoader(schemaJSON)

// Rule overrides the mapped style of a paragraph or run when all of its
// conditions hold.
type Rule struct {
	Name       string
	Realm      types.Realm
	Conditions []*Condition
	Into       *types.StyleDescriptor
}

// Matches reports whether every condition holds in ctx. A rule without
// conditions always matches.
func (r *Rule) Matches(ctx *Context) bool {
	for _, c := range r.Conditions {
		if !c.Eval(ctx) {
			return false
		}
	}
	return true
}

// Set is an ordered list of rules. Declaration order decides precedence.
type Set struct {
	Rules []*Rule
}

// Len returns the number of rules, tolerating a nil set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Rules)
}

type ruleFile struct {
	Rules []ruleDoc `yaml:"rules"`
}

type ruleDoc struct {
	Name     string   `yaml:"name"`
	Realm    string   `yaml:"realm"`
	When     []string `yaml:"when"`
	Into     string   `yaml:"into"`
	Disabled bool     `yaml:"disabled"`
}

// Load reads and compiles the rule file at path. An empty path yields an
// empty set.
func Load(path string) (*Set, error) {
	if path == "" {
		return &Set{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse validates rule YAML against the rule schema and compiles every
// condition. Any problem is reported as an InvalidRuleError before a single
// paragraph is resolved.
func Parse(name string, data []byte) (*Set, error) {
	if strings.TrimSpace(string(data)) == "" {
		return &Set{}, nil
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &wperrors.InvalidRuleError{Path: name, Message: err.Error()}
	}
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, &wperrors.InvalidRuleError{Path: name, Message: err.Error()}
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, &wperrors.InvalidRuleError{Path: name, Message: strings.Join(msgs, "; ")}
	}

	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &wperrors.InvalidRuleError{Path: name, Message: err.Error()}
	}

	set := &Set{}
	for i, rd := range file.Rules {
		if rd.Disabled {
			continue
		}
		ruleName := rd.Name
		if ruleName == "" {
			ruleName = fmt.Sprintf("rule %d", i+1)
		}
		realm, err := types.ParseRealm(rd.Realm)
		if err != nil {
			return nil, &wperrors.InvalidRuleError{Path: name, Rule: ruleName, Message: err.Error()}
		}
		into, err := stylemap.ParsePath(realm, rd.Into)
		if err != nil {
			return nil, &wperrors.InvalidRuleError{Path: name, Rule: ruleName, Message: "into: " + err.Error()}
		}

		rule := &Rule{Name: ruleName, Realm: realm, Into: into}
		for _, src := range rd.When {
			c, err := ParseCondition(realm, src)
			if err != nil {
				return nil, &wperrors.InvalidRuleError{Path: name, Rule: ruleName, Condition: src, Message: err.Error()}
			}
			rule.Conditions = append(rule.Conditions, c)
		}
		set.Rules = append(set.Rules, rule)
	}
	return set, nil
}
