// Package dsl parses quire report scripts.
//
// A script names the report and holds up to four sections:
//
//	report Calibration v1 {
//	  meta { title: "Run ${run.name}" }
//	  resources { color Accent = #0F62FE }
//	  story A4 portrait margin 18mm { section "Overview" ... }
//	}
//
// Inside a block every line is a property (`key: value`), a command
// (`name arg arg... [{ block }]`) or a bare string, which is body text.
// Command arguments are typed at lex time: quoted strings, numbers with an
// optional unit (12pt, 30%, -5mm, 1.2x), colors (#RRGGBB) and words. Dotted
// data paths such as data.rows[0].name lex as a single word.
package dsl

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/ByLCY/quire/errs"
)

var (
	scriptLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Comment", Pattern: `//[^\n]*|/\*(?s:.)*?\*/`},
		{Name: "Newline", Pattern: `\n`},
		{Name: "Space", Pattern: `[ \t\r]+`},
		{Name: "String", Pattern: `"(?:\\.|[^"\\\n])*"`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "Number", Pattern: `-?\d+(?:\.\d+)?(?:pt|mm|cm|in|%|x)?`},
		{Name: "Path", Pattern: `[A-Za-z_][\w-]*(?:\.[A-Za-z_][\w-]*|\[\d+\])+`},
		{Name: "Ident", Pattern: `[A-Za-z_][\w-]*`},
		{Name: "Punct", Pattern: `[{}\[\]:,;=]`},
	})

	scriptParser = participle.MustBuild[Document](
		participle.Lexer(scriptLexer),
		participle.Elide("Space", "Comment"),
		participle.UseLookahead(2),
	)
)

// Document is a parsed report script.
type Document struct {
	Pos      lexer.Position `parser:""`
	Name     string         `parser:"Newline* 'report' @Ident"`
	Version  string         `parser:"@(Ident | Number)"`
	Sections []*Section     `parser:"'{' ( @@ | Newline )* '}' Newline*"`
}

// Section is one top-level block of a script.
type Section struct {
	Meta      *Block     `parser:"  'meta' @@"`
	Resources *Block     `parser:"| 'resources' @@"`
	Story     *PageBlock `parser:"| 'story' @@"`
	Deck      *PageBlock `parser:"| 'deck' @@"`
}

// Kind names the section.
func (s *Section) Kind() string {
	switch {
	case s == nil:
		return "unknown"
	case s.Meta != nil:
		return "meta"
	case s.Resources != nil:
		return "resources"
	case s.Story != nil:
		return "story"
	case s.Deck != nil:
		return "deck"
	}
	return "unknown"
}

// PageBlock is a story or deck: a page size, optional page parameters and
// the content block, e.g. `A4 landscape margin 15mm 20mm { ... }`.
type PageBlock struct {
	Size   string `parser:"@Ident"`
	Params []*Arg `parser:"@@*"`
	Block  *Block `parser:"@@"`
}

// Block is a brace-delimited list of statements separated by newlines or ';'.
type Block struct {
	Statements []*Statement `parser:"'{' ( @@ | ';' | Newline )* '}'"`
}

// Statement is exactly one of a property, a command or body text.
type Statement struct {
	Property *Property `parser:"  @@"`
	Command  *Command  `parser:"| @@"`
	Text     *Quoted   `parser:"| @String"`
}

// Property is `key: value`.
type Property struct {
	Pos   lexer.Position `parser:""`
	Key   string         `parser:"@Ident ':'"`
	Value *Value         `parser:"@@"`
}

// Command is a name followed by arguments on the same line and an optional
// block opened on that line.
type Command struct {
	Pos   lexer.Position `parser:""`
	Name  string         `parser:"@Ident"`
	Args  []*Arg         `parser:"@@*"`
	Block *Block         `parser:"@@?"`
}

// Arg is a single command argument.
type Arg struct {
	Pos    lexer.Position `parser:""`
	Quoted *Quoted        `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Word   *string        `parser:"| @(Ident | Path)"`
	Equals bool           `parser:"| @'='"`
}

// Value is the right-hand side of a property. Lists may span lines and
// separate items with commas or newlines.
type Value struct {
	Pos    lexer.Position `parser:""`
	Quoted *Quoted        `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Word   *string        `parser:"| @(Ident | Path)"`
	List   []*Value       `parser:"| '[' ( @@ | ',' | Newline )* ']'"`
}

// Quoted is an unquoted string literal.
type Quoted string

// Capture implements participle.Capture.
func (q *Quoted) Capture(values []string) error {
	s, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*q = Quoted(s)
	return nil
}

// Parse parses a report script from r; name is used in error positions.
func Parse(name string, r io.Reader) (*Document, error) {
	doc, err := scriptParser.Parse(name, r)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeValidation, err, "invalid report script")
	}
	return doc, nil
}

// ParseString parses a report script held in memory.
func ParseString(input string) (*Document, error) {
	return Parse("", strings.NewReader(input))
}

// ParseFile parses the script stored at path.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeNotFound, err, "script %s not found", path)
		}
		return nil, errs.Wrap(errs.ErrCodeResource, err, "open script %s", path)
	}
	defer f.Close()
	return Parse(path, f)
}
