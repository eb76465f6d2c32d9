// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stylemap

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// The style map is line oriented:
//
//	# comment
//	[paragraph]
//	Heading 1 = Titles/Chapter Title | next = Body Text
//	[character]
//	Emphasis = Italic
//
// Section headers switch realm. Each entry maps a source style to a
// destination path and may carry "| key = value" attributes.

var mapLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Section", Pattern: `(?i)\[\s*(paragraph|character|para|char)\s*\]`},
	{Name: "Newline", Pattern: `\r?\n`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
	{Name: "Punct", Pattern: `[=|]`},
	{Name: "Text", Pattern: `[^=|\s][^=|\r\n]*`},
})

type mapFile struct {
	Lines []*mapLine `parser:"@@*"`
}

type mapLine struct {
	Pos lexer.Position

	Section string    `parser:"( @Section"`
	Entry   *mapEntry `parser:"  | @@ )? Newline"`
}

type mapEntry struct {
	Source string     `parser:"@Text '='"`
	Dest   string     `parser:"@Text?"`
	Attrs  []*mapAttr `parser:"( '|' @@ )*"`
}

type mapAttr struct {
	Key   string `parser:"@Text '='"`
	Value string `parser:"@Text?"`
}

var mapParser = participle.MustBuild[mapFile](
	participle.Lexer(mapLexer),
	participle.Elide("Whitespace", "Comment"),
)

// parseMapFile tokenizes and parses style map text. The input always gets a
// terminating newline so the last line needs none.
func parseMapFile(name, text string) (*mapFile, error) {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return mapParser.ParseString(name, text)
}

// sectionRealm extracts the realm name from a section header token.
func sectionRealm(tok string) string {
	return strings.TrimSpace(strings.Trim(tok, "[]"))
}
