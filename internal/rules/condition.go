// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rules

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/pdiddy/wp2tt/pkg/types"
)

// Field names a piece of context a condition inspects.
type Field string

const (
	FieldParagraphStyle Field = "paragraph_style"
	FieldCharacterStyle Field = "character_style"
	FieldPrecedingStyle Field = "preceding_style"
	FieldFollowingStyle Field = "following_style"
	FieldText           Field = "text"
	FieldPosition       Field = "position"
	FieldOccurrence     Field = "occurrence"
	FieldRunPosition    Field = "run_position"
	FieldPageBreak      Field = "page_break"
)

// Op is a comparison operator.
type Op string

const (
	OpEqual     Op = "="
	OpNotEqual  Op = "!="
	OpMatch     Op = "~"
	OpNotMatch  Op = "!~"
	OpPrefix    Op = "^="
	OpSuffix    Op = "$="
	OpContains  Op = "*="
	OpLess      Op = "<"
	OpLessEq    Op = "<="
	OpGreater   Op = ">"
	OpGreaterEq Op = ">="
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindPosition
	kindNumber
	kindBool
)

type fieldInfo struct {
	kind   fieldKind
	realms []types.Realm
}

var fields = map[Field]fieldInfo{
	FieldParagraphStyle: {kindString, types.Realms},
	FieldCharacterStyle: {kindString, []types.Realm{types.RealmCharacter}},
	FieldPrecedingStyle: {kindString, types.Realms},
	FieldFollowingStyle: {kindString, types.Realms},
	FieldText:           {kindString, types.Realms},
	FieldPosition:       {kindPosition, types.Realms},
	FieldOccurrence:     {kindNumber, types.Realms},
	FieldRunPosition:    {kindPosition, []types.Realm{types.RealmCharacter}},
	FieldPageBreak:      {kindBool, types.Realms},
}

var opsByKind = map[fieldKind][]Op{
	kindString:   {OpEqual, OpNotEqual, OpMatch, OpNotMatch, OpPrefix, OpSuffix, OpContains},
	kindPosition: {OpEqual, OpNotEqual},
	kindNumber:   {OpEqual, OpNotEqual, OpLess, OpLessEq, OpGreater, OpGreaterEq},
	kindBool:     {OpEqual, OpNotEqual},
}

var positions = map[string]bool{"first": true, "last": true, "only": true}

// The value after the operator runs to the end of the condition, so the
// lexer switches state once it sees an operator.
var conditionLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Whitespace", Pattern: `\s+`},
		{Name: "Op", Pattern: `!=|!~|\^=|\$=|\*=|<=|>=|=|~|<|>`, Action: lexer.Push("Value")},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	},
	"Value": {
		{Name: "Whitespace", Pattern: `\s+`},
		{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`, Action: lexer.Pop()},
		{Name: "Rest", Pattern: `[^\s"].*`, Action: lexer.Pop()},
	},
})

type conditionAST struct {
	Field  string  `parser:"@Ident"`
	Op     string  `parser:"@Op"`
	Quoted *string `parser:"( @String"`
	Bare   *string `parser:"| @Rest )?"`
}

var conditionParser = participle.MustBuild[conditionAST](
	participle.Lexer(conditionLexer),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
)

// Condition is one compiled predicate of a rule.
type Condition struct {
	Source string
	Field  Field
	Op     Op
	Value  string

	re   *regexp.Regexp
	num  int
	flag bool
}

// ParseCondition compiles a "field op value" condition for a rule in realm.
func ParseCondition(realm types.Realm, src string) (*Condition, error) {
	ast, err := conditionParser.ParseString("", src)
	if err != nil {
		var perr participle.Error
		if errors.As(err, &perr) {
			return nil, fmt.Errorf("syntax error at column %d: %s", perr.Position().Column, perr.Message())
		}
		return nil, fmt.Errorf("syntax error: %w", err)
	}

	c := &Condition{Source: src, Field: Field(ast.Field), Op: Op(ast.Op)}
	switch {
	case ast.Quoted != nil:
		c.Value = *ast.Quoted
	case ast.Bare != nil:
		c.Value = strings.TrimSpace(*ast.Bare)
	}

	fi, ok := fields[c.Field]
	if !ok {
		return nil, fmt.Errorf("unknown field %q", ast.Field)
	}
	if !slices.Contains(fi.realms, realm) {
		return nil, fmt.Errorf("field %q is not available to %s rules", c.Field, realm)
	}
	if !slices.Contains(opsByKind[fi.kind], c.Op) {
		return nil, fmt.Errorf("operator %q cannot be used with %q", c.Op, c.Field)
	}

	switch fi.kind {
	case kindPosition:
		c.Value = strings.ToLower(c.Value)
		if !positions[c.Value] {
			return nil, fmt.Errorf("%s must be first, last or only, not %q", c.Field, c.Value)
		}
		if c.Field == FieldRunPosition && c.Value == "only" {
			return nil, fmt.Errorf("%s must be first or last, not %q", c.Field, c.Value)
		}
	case kindNumber:
		n, err := strconv.Atoi(c.Value)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%s needs a positive number, not %q", c.Field, c.Value)
		}
		c.num = n
	case kindBool:
		b, err := strconv.ParseBool(c.Value)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false, not %q", c.Field, c.Value)
		}
		c.flag = b
	case kindString:
		if c.Op == OpMatch || c.Op == OpNotMatch {
			re, err := regexp.Compile(c.Value)
			if err != nil {
				return nil, fmt.Errorf("bad pattern %q: %v", c.Value, err)
			}
			c.re = re
		}
	}
	return c, nil
}

func (c *Condition) String() string {
	return c.Source
}

// Eval reports whether the condition holds in ctx.
func (c *Condition) Eval(ctx *Context) bool {
	switch c.Field {
	case FieldParagraphStyle:
		return c.compare(ctx.Paragraph.Style)
	case FieldCharacterStyle:
		return ctx.Run != nil && c.compare(ctx.Run.Style)
	case FieldPrecedingStyle:
		if ctx.Preceding == nil {
			return false
		}
		return c.compare(ctx.Preceding.Style)
	case FieldFollowingStyle:
		if ctx.Following == nil {
			return false
		}
		return c.compare(ctx.Following.Style)
	case FieldText:
		if ctx.Run != nil {
			return c.compare(ctx.Run.Text)
		}
		return c.compare(ctx.Paragraph.Text())
	case FieldPosition:
		return c.position(ctx.Index == 0, ctx.Index == ctx.Count-1)
	case FieldRunPosition:
		return c.position(ctx.RunIndex == 0, ctx.RunIndex == ctx.RunCount-1)
	case FieldOccurrence:
		return c.number(ctx.Occurrence)
	case FieldPageBreak:
		return (ctx.Paragraph.PageBreak == c.flag) == (c.Op == OpEqual)
	}
	return false
}

func (c *Condition) compare(s string) bool {
	switch c.Op {
	case OpEqual:
		return s == c.Value
	case OpNotEqual:
		return s != c.Value
	case OpMatch:
		return c.re.MatchString(s)
	case OpNotMatch:
		return !c.re.MatchString(s)
	case OpPrefix:
		return strings.HasPrefix(s, c.Value)
	case OpSuffix:
		return strings.HasSuffix(s, c.Value)
	case OpContains:
		return strings.Contains(s, c.Value)
	}
	return false
}

func (c *Condition) position(first, last bool) bool {
	var holds bool
	switch c.Value {
	case "first":
		holds = first
	case "last":
		holds = last
	case "only":
		holds = first && last
	}
	if c.Op == OpNotEqual {
		return !holds
	}
	return holds
}

func (c *Condition) number(n int) bool {
	switch c.Op {
	case OpEqual:
		return n == c.num
	case OpNotEqual:
		return n != c.num
	case OpLess:
		return n < c.num
	case OpLessEq:
		return n <= c.num
	case OpGreater:
		return n > c.num
	case OpGreaterEq:
		return n >= c.num
	}
	return false
}
