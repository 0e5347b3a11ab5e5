package lang

import "log/slog"

// Lex converts source text into a flat token sequence terminated by an EOF
// token. It is a pure function of its input: the only failure mode is an
// unterminated quoted string, reported at the opening quote.
func Lex(src string) ([]Token, error) {
	lx := &lexer{
		src:  []rune(src),
		line: 1,
		col:  1,
	}

	return lx.run()
}

// lexer is a single left-to-right scan over the source runes with an
// explicit position cursor.
type lexer struct {
	src  []rune
	pos  int
	line int
	col  int
}

func (lx *lexer) run() ([]Token, error) {
	toks := make([]Token, 0, 64)

	for {
		lx.skipSpaceAndComments()

		if lx.eof() {
			toks = append(toks, Token{Kind: EOF, Pos: lx.position()})

			return toks, nil
		}

		tok, err := lx.next()
		if err != nil {
			return nil, err
		}

		toks = append(toks, tok)
	}
}

// next produces exactly one token from the current (non-space, non-comment)
// position.
func (lx *lexer) next() (Token, error) {
	pos := lx.position()
	r := lx.peek()

	switch r {
	case '{':
		lx.advance()

		return Token{Kind: LBrace, Lit: "{", Pos: pos}, nil
	case '}':
		lx.advance()

		return Token{Kind: RBrace, Lit: "}", Pos: pos}, nil
	case '[':
		lx.advance()

		return Token{Kind: LBracket, Lit: "[", Pos: pos}, nil
	case ']':
		lx.advance()

		return Token{Kind: RBracket, Lit: "]", Pos: pos}, nil
	case '(':
		lx.advance()

		return Token{Kind: LParen, Lit: "(", Pos: pos}, nil
	case ')':
		lx.advance()

		return Token{Kind: RParen, Lit: ")", Pos: pos}, nil
	case ';':
		lx.advance()

		return Token{Kind: Semicolon, Lit: ";", Pos: pos}, nil
	case ',':
		lx.advance()

		return Token{Kind: Comma, Lit: ",", Pos: pos}, nil
	case '=':
		lx.advance()

		return Token{Kind: Equals, Lit: "=", Pos: pos}, nil
	case '"', '\'':
		return lx.string(pos)
	case Sigil:
		return lx.sigil(pos), nil
	case '~':
		lx.advance()

		if lx.peek() == '*' {
			lx.advance()

			return Token{Kind: Modifier, Lit: "~*", Pos: pos}, nil
		}

		return Token{Kind: Modifier, Lit: "~", Pos: pos}, nil
	case '^':
		if lx.peekAt(1) == '~' {
			lx.advance()
			lx.advance()

			return Token{Kind: Modifier, Lit: "^~", Pos: pos}, nil
		}

		return lx.ident(pos), nil
	}

	if isDigit(r) {
		return lx.number(pos), nil
	}

	// Everything else, recognized or not, folds into an identifier span.
	return lx.ident(pos), nil
}

// string consumes a quoted literal. The returned token holds the content
// between the quotes, verbatim (backslash escapes are preserved, they only
// prevent the escaped character from terminating the literal).
func (lx *lexer) string(pos Position) (Token, error) {
	quote := lx.peek()
	lx.advance()

	start := lx.pos

	for {
		if lx.eof() {
			return Token{}, ErrUnterminatedString.
				WithPosition(pos).
				With(slog.String("quote", string(quote)))
		}

		r := lx.peek()
		if r == quote {
			lit := string(lx.src[start:lx.pos])
			lx.advance()

			return Token{Kind: String, Lit: lit, Pos: pos}, nil
		}

		if r == '\\' {
			lx.advance()

			if lx.eof() {
				return Token{}, ErrUnterminatedString.
					WithPosition(pos).
					With(slog.String("quote", string(quote)))
			}
		}

		lx.advance()
	}
}

// sigil consumes a token introduced by the sigil character. The keyword
// forms are disambiguated by the literal text that follows, most specific
// first: a sigil followed by "inline(" is the inline keyword, not a plain
// variable named "inline".
func (lx *lexer) sigil(pos Position) Token {
	switch {
	case lx.hasPrefix(string(Sigil) + "inline("):
		lx.advanceN(len("%inline"))

		return Token{Kind: KeywordInline, Lit: string(Sigil) + "inline", Pos: pos}
	case lx.hasPrefix(string(Sigil) + "env("):
		lx.advanceN(len("%env"))

		return Token{Kind: KeywordEnv, Lit: string(Sigil) + "env", Pos: pos}
	case lx.hasPrefix(string(Sigil) + "import("):
		lx.advanceN(len("%import"))

		return Token{Kind: KeywordImport, Lit: string(Sigil) + "import", Pos: pos}
	}

	start := lx.pos
	lx.advance()

	for !lx.eof() && isIdentRune(lx.peek()) {
		lx.advance()
	}

	if lx.pos-start == 1 {
		// A lone sigil is not a variable; fold it into an identifier span
		// like any other unrecognized text.
		for !lx.eof() && !isBoundary(lx.peek()) {
			lx.advance()
		}

		return Token{Kind: Ident, Lit: string(lx.src[start:lx.pos]), Pos: pos}
	}

	return Token{Kind: Variable, Lit: string(lx.src[start:lx.pos]), Pos: pos}
}

// number consumes a digit run. A run that continues into non-boundary text
// (an address, a version string) is an identifier, not a number.
func (lx *lexer) number(pos Position) Token {
	start := lx.pos

	for !lx.eof() && isDigit(lx.peek()) {
		lx.advance()
	}

	if !lx.eof() && !isBoundary(lx.peek()) {
		return lx.identFrom(start, pos)
	}

	return Token{Kind: Number, Lit: string(lx.src[start:lx.pos]), Pos: pos}
}

// ident consumes a bare word up to the next boundary. Words matching the
// routing-scope and multi-path keywords are tagged with their own kinds.
func (lx *lexer) ident(pos Position) Token {
	return lx.identFrom(lx.pos, pos)
}

func (lx *lexer) identFrom(start int, pos Position) Token {
	for !lx.eof() && !isBoundary(lx.peek()) {
		lx.advance()
	}

	lit := string(lx.src[start:lx.pos])

	switch lit {
	case "location":
		return Token{Kind: KeywordLocation, Lit: lit, Pos: pos}
	case "in":
		return Token{Kind: KeywordIn, Lit: lit, Pos: pos}
	}

	return Token{Kind: Ident, Lit: lit, Pos: pos}
}

func (lx *lexer) skipSpaceAndComments() {
	for !lx.eof() {
		r := lx.peek()

		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			lx.advance()

			continue
		}

		if r == '#' {
			for !lx.eof() && lx.peek() != '\n' {
				lx.advance()
			}

			continue
		}

		return
	}
}

func (lx *lexer) eof() bool { return lx.pos >= len(lx.src) }

func (lx *lexer) peek() rune {
	if lx.eof() {
		return 0
	}

	return lx.src[lx.pos]
}

func (lx *lexer) peekAt(n int) rune {
	if lx.pos+n >= len(lx.src) {
		return 0
	}

	return lx.src[lx.pos+n]
}

func (lx *lexer) hasPrefix(s string) bool {
	want := []rune(s)
	if lx.pos+len(want) > len(lx.src) {
		return false
	}

	for i, r := range want {
		if lx.src[lx.pos+i] != r {
			return false
		}
	}

	return true
}

func (lx *lexer) advance() {
	if lx.eof() {
		return
	}

	if lx.src[lx.pos] == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}

	lx.pos++
}

func (lx *lexer) advanceN(n int) {
	for range n {
		lx.advance()
	}
}

func (lx *lexer) position() Position {
	return Position{Line: lx.line, Column: lx.col}
}

func isDigit(r rune) bool { return '0' <= r && r <= '9' }

func isIdentRune(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || isDigit(r) || r == '_'
}

// isBoundary reports whether r ends a bare-word span.
func isBoundary(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n',
		'{', '}', '[', ']', '(', ')', ';', ',', '=', '"', '\'', '#':
		return true
	}

	return false
}
