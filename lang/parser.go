package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// ParseOption configures parser behavior.
type ParseOption func(*parser)

// WithLookup sets the environment-variable lookup used to resolve %env
// references. The default reads the process environment.
func WithLookup(lookup Lookup) ParseOption {
	return func(p *parser) {
		p.lookup = lookup
	}
}

// Parse lexes and parses source text into a Config tree. Environment
// references are resolved eagerly during this pass; the returned tree holds
// only literal strings. Parsing fails fast on the first structural
// violation and never returns a partial tree.
func Parse(src string, opts ...ParseOption) (*Config, error) {
	toks, err := Lex(src)
	if err != nil {
		return nil, err
	}

	p := &parser{
		toks:   toks,
		lookup: os.LookupEnv,
	}

	for _, opt := range opts {
		opt(p)
	}

	stmts, err := p.statements(EOF)
	if err != nil {
		return nil, err
	}

	return &Config{
		base:       base{pos: Position{Line: 1, Column: 1}},
		Statements: stmts,
	}, nil
}

// parser consumes the token sequence via recursive descent with one- and
// occasionally two-token lookahead.
type parser struct {
	toks   []Token
	idx    int
	lookup Lookup
}

func (p *parser) tok() Token {
	if p.idx >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF, by construction
	}

	return p.toks[p.idx]
}

func (p *parser) peek(n int) Token {
	if p.idx+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}

	return p.toks[p.idx+n]
}

func (p *parser) next() Token {
	t := p.tok()
	if p.idx < len(p.toks) {
		p.idx++
	}

	return t
}

// expect consumes a token of the given kind or fails with a positioned
// syntax error naming what was expected.
func (p *parser) expect(k Kind) (Token, error) {
	t := p.tok()
	if t.Kind != k {
		return Token{}, expected(k.String(), t)
	}

	return p.next(), nil
}

func expected(what string, got Token) *Error {
	return ErrSyntax.
		WithPosition(got.Pos).
		Wrap(fmt.Errorf("expected %s, found %s", what, got))
}

// statements parses a statement sequence up to the given terminator kind
// (RBrace for block bodies, EOF at the top level). The terminator itself is
// left for the caller to consume. Stray semicolons between statements are
// skipped.
func (p *parser) statements(until Kind) ([]Node, error) {
	var stmts []Node

	for {
		t := p.tok()

		if t.Kind == Semicolon {
			p.next()

			continue
		}

		if t.Kind == until {
			return stmts, nil
		}

		if t.Kind == EOF {
			return nil, expected(until.String(), t)
		}

		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}

		stmts = append(stmts, stmt)
	}
}

// statement dispatches on the current token. A variable token followed by
// an equals token begins a template definition; a bare variable token falls
// back to ordinary directive parsing, preserving sigil-prefixed tokens as
// plain directive names and arguments.
func (p *parser) statement() (Node, error) {
	t := p.tok()

	switch t.Kind {
	case Variable:
		if p.peek(1).Kind == Equals {
			return p.templateDef()
		}

		p.next()

		return p.directiveOrBlock(t.Lit, t.Pos)

	case KeywordInline:
		return p.templateRef()

	case KeywordEnv:
		name, err := p.envRef()
		if err != nil {
			return nil, err
		}

		if name == "" {
			return nil, ErrSyntax.
				WithPosition(t.Pos).
				Wrap(errors.New("environment reference resolved to an empty directive name"))
		}

		return p.directiveOrBlock(name, t.Pos)

	case KeywordLocation:
		return p.location()

	case KeywordImport:
		return p.importRef()

	case Ident, Number, String, KeywordIn, Modifier:
		p.next()

		if t.Kind == Ident && t.Lit == "if" {
			return p.ifBlock(t)
		}

		return p.directiveOrBlock(t.Lit, t.Pos)

	default:
		return nil, expected("directive", t)
	}
}

// directiveOrBlock decides between a directive and a block by scanning
// forward token-by-token until a left brace, a semicolon, or end of input:
// a left brace before a semicolon means the statement is a block.
func (p *parser) directiveOrBlock(name string, pos Position) (Node, error) {
	block := false

scan:
	for i := 0; ; i++ {
		switch p.peek(i).Kind {
		case LBrace:
			block = true

			break scan
		case Semicolon, EOF:
			break scan
		}
	}

	if block {
		args, err := p.args(LBrace, pos.Line, false)
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(LBrace); err != nil {
			return nil, err
		}

		children, err := p.statements(RBrace)
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(RBrace); err != nil {
			return nil, err
		}

		return &Block{
			base:     base{pos: pos},
			Name:     name,
			Args:     args,
			Children: children,
		}, nil
	}

	args, err := p.args(Semicolon, pos.Line, true)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(Semicolon); err != nil {
		return nil, err
	}

	return &Directive{
		base: base{pos: pos},
		Name: name,
		Args: args,
	}, nil
}

// args accumulates argument strings until the stop token. In directive mode
// an identifier on a strictly later source line than the statement's own
// start is treated as the beginning of the next statement: accumulation
// stops and the caller's required semicolon produces the hard failure.
func (p *parser) args(stop Kind, startLine int, directive bool) ([]string, error) {
	var args []string

	for {
		t := p.tok()

		switch {
		case t.Kind == stop || t.Kind == EOF:
			return args, nil

		case t.Kind == RBrace:
			// Dangling brace mid-argument-list: a missing terminator.
			return nil, expected(stop.String(), t)

		case t.Kind == Equals:
			p.next()

			if nt := p.tok(); nt.Kind == Number || nt.Kind == Ident {
				p.next()
				args = append(args, "="+nt.Lit)
			} else {
				args = append(args, "=")
			}

		case t.Kind == KeywordEnv:
			val, err := p.envRef()
			if err != nil {
				return nil, err
			}

			args = append(args, val)

		case t.Kind == String:
			p.next()
			args = append(args, `"`+t.Lit+`"`)

		case directive && t.Kind == Ident && t.Pos.Line > startLine:
			return args, nil

		default:
			p.next()
			args = append(args, t.Lit)
		}
	}
}

// ifBlock parses the conditional block form. The condition is captured as
// raw token text with no semantic interpretation: everything up to (and
// consuming) a balanced closing parenthesis when parenthesized, or up to
// the opening brace otherwise.
func (p *parser) ifBlock(name Token) (Node, error) {
	var parts []string

	if p.tok().Kind == LParen {
		depth := 0

		for {
			t := p.tok()

			switch t.Kind {
			case EOF:
				return nil, expected(")", t)
			case LParen:
				depth++
			case RParen:
				depth--
			}

			p.next()
			parts = append(parts, rawValue(t))

			if t.Kind == RParen && depth == 0 {
				break
			}
		}
	} else {
		for p.tok().Kind != LBrace && p.tok().Kind != EOF {
			parts = append(parts, rawValue(p.next()))
		}
	}

	var args []string
	if len(parts) > 0 {
		args = []string{joinCondition(parts)}
	}

	if _, err := p.expect(LBrace); err != nil {
		return nil, err
	}

	children, err := p.statements(RBrace)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(RBrace); err != nil {
		return nil, err
	}

	return &Block{
		base:     base{pos: name.Pos},
		Name:     name.Lit,
		Args:     args,
		Children: children,
	}, nil
}

// rawValue returns a token's source form, restoring the quotes of string
// literals.
func rawValue(t Token) string {
	if t.Kind == String {
		return `"` + t.Lit + `"`
	}

	return t.Lit
}

// joinCondition reassembles raw condition tokens into one argument with
// spaces between words but none inside the parentheses.
func joinCondition(parts []string) string {
	var sb strings.Builder

	for i, p := range parts {
		if i > 0 && p != ")" && parts[i-1] != "(" {
			sb.WriteByte(' ')
		}

		sb.WriteString(p)
	}

	return sb.String()
}

// templateDef parses: %name = { statements };
func (p *parser) templateDef() (Node, error) {
	name, err := p.expect(Variable)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(Equals); err != nil {
		return nil, err
	}

	if _, err := p.expect(LBrace); err != nil {
		return nil, err
	}

	children, err := p.statements(RBrace)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(RBrace); err != nil {
		return nil, err
	}

	if _, err := p.expect(Semicolon); err != nil {
		return nil, err
	}

	return &TemplateDef{
		base: base{pos: name.Pos},
		Name: name.Lit,
		Body: &Block{
			base:     base{pos: name.Pos},
			Name:     name.Lit,
			Children: children,
		},
	}, nil
}

// templateRef parses: %inline(%name);
func (p *parser) templateRef() (Node, error) {
	kw := p.next() // %inline

	if _, err := p.expect(LParen); err != nil {
		return nil, err
	}

	name, err := p.expect(Variable)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(RParen); err != nil {
		return nil, err
	}

	if _, err := p.expect(Semicolon); err != nil {
		return nil, err
	}

	return &TemplateRef{
		base: base{pos: kw.Pos},
		Name: name.Lit,
	}, nil
}

// importRef parses: %import("path");
func (p *parser) importRef() (Node, error) {
	kw := p.next() // %import

	if _, err := p.expect(LParen); err != nil {
		return nil, err
	}

	path, err := p.expect(String)
	if err != nil {
		return nil, expected("import path string", p.tok())
	}

	if _, err := p.expect(RParen); err != nil {
		return nil, err
	}

	if _, err := p.expect(Semicolon); err != nil {
		return nil, err
	}

	return &Import{
		base: base{pos: kw.Pos},
		Path: path.Lit,
	}, nil
}

// envRef parses and eagerly resolves: %env("NAME") or %env("NAME", "default").
// A set variable wins over the default; with neither, resolution fails.
func (p *parser) envRef() (string, error) {
	kw := p.next() // %env

	if _, err := p.expect(LParen); err != nil {
		return "", err
	}

	name, err := p.expect(String)
	if err != nil {
		return "", expected("environment variable name string", p.tok())
	}

	var (
		dflt    string
		hasDflt bool
	)

	if p.tok().Kind == Comma {
		p.next()

		d, err := p.expect(String)
		if err != nil {
			return "", expected("default value string", p.tok())
		}

		dflt, hasDflt = d.Lit, true
	}

	if _, err := p.expect(RParen); err != nil {
		return "", err
	}

	if val, ok := p.lookup(name.Lit); ok {
		return val, nil
	}

	if hasDflt {
		return dflt, nil
	}

	return "", ErrUnsetVariable.
		WithPosition(kw.Pos).
		With(slog.String("name", name.Lit))
}

// location parses either the single-path form, with an optional modifier,
// or the multi-path shorthand: location in ["p1", "p2", ...] { ... }.
// Modifier sigils embedded in path strings are left in place here; they are
// resolved uniformly at render time.
func (p *parser) location() (Node, error) {
	kw := p.next() // location

	loc := &Location{base: base{pos: kw.Pos}}

	if p.tok().Kind == KeywordIn {
		p.next()

		if _, err := p.expect(LBracket); err != nil {
			return nil, err
		}

		for {
			path, err := p.locationPath()
			if err != nil {
				return nil, err
			}

			loc.Paths = append(loc.Paths, path)

			t := p.tok()
			if t.Kind == Comma {
				p.next()

				continue
			}

			if t.Kind == RBracket {
				p.next()

				break
			}

			return nil, expected(", or ]", t)
		}
	} else {
		switch t := p.tok(); t.Kind {
		case Modifier:
			p.next()

			switch t.Lit {
			case "~":
				loc.Modifier = MatchRegex
			case "~*":
				loc.Modifier = MatchRegexInsensitive
			case "^~":
				loc.Modifier = MatchPriorityPrefix
			}
		case Equals:
			// A bare equals is a synonym for the exact-match modifier.
			p.next()
			loc.Modifier = MatchExact
		}

		path, err := p.locationPath()
		if err != nil {
			return nil, err
		}

		loc.Paths = []string{path}
	}

	if _, err := p.expect(LBrace); err != nil {
		return nil, err
	}

	children, err := p.statements(RBrace)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(RBrace); err != nil {
		return nil, err
	}

	loc.Children = children

	return loc, nil
}

// locationPath consumes one path: an identifier, a string, a number, or an
// environment reference resolved to a literal path.
func (p *parser) locationPath() (string, error) {
	switch t := p.tok(); t.Kind {
	case Ident, String, Number:
		p.next()

		return t.Lit, nil
	case KeywordEnv:
		return p.envRef()
	default:
		return "", expected("location path", t)
	}
}
