package lang

import "strconv"

// Kind identifies the lexical class of a token.
type Kind int

const (
	// EOF marks the end of input. Every token stream ends with exactly one.
	EOF Kind = iota

	// Ident is a bare word: directive names, unquoted arguments, paths,
	// and any span of text the lexer has no more specific class for.
	Ident

	// Number is an unbroken run of decimal digits.
	Number

	// String is a single- or double-quoted literal. The token value holds
	// the content without the surrounding quotes.
	String

	// Variable is a sigil-prefixed identifier, e.g. "%upstream_defaults".
	// The token value includes the sigil.
	Variable

	// KeywordLocation is the routing-scope keyword "location".
	KeywordLocation

	// KeywordIn is the multi-path keyword "in".
	KeywordIn

	// KeywordInline is the template-reference keyword "%inline".
	KeywordInline

	// KeywordEnv is the environment-reference keyword "%env".
	KeywordEnv

	// KeywordImport is the file-inclusion keyword "%import".
	KeywordImport

	// Modifier is a location match modifier recognized as a unit:
	// "~", "~*", or "^~".
	Modifier

	LBrace    // {
	RBrace    // }
	LBracket  // [
	RBracket  // ]
	LParen    // (
	RParen    // )
	Semicolon // ;
	Comma     // ,
	Equals    // =
)

// String returns a human-readable name for the token kind, used in
// diagnostics ("expected ;" and the like).
func (k Kind) String() string {
	switch k {
	case EOF:
		return "end of input"
	case Ident:
		return "identifier"
	case Number:
		return "number"
	case String:
		return "string"
	case Variable:
		return "variable"
	case KeywordLocation:
		return "location"
	case KeywordIn:
		return "in"
	case KeywordInline:
		return "%inline"
	case KeywordEnv:
		return "%env"
	case KeywordImport:
		return "%import"
	case Modifier:
		return "location modifier"
	case LBrace:
		return "{"
	case RBrace:
		return "}"
	case LBracket:
		return "["
	case RBracket:
		return "]"
	case LParen:
		return "("
	case RParen:
		return ")"
	case Semicolon:
		return ";"
	case Comma:
		return ","
	case Equals:
		return "="
	default:
		return "unknown"
	}
}

// Position locates a token or node in its source text.
// Lines and columns are 1-based.
type Position struct {
	Line   int `json:"line"   yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// String formats the position as "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Token is one lexical unit of source text.
type Token struct {
	Kind Kind
	Lit  string
	Pos  Position
}

// String returns the token's literal text, or the kind name for tokens
// without meaningful literal text.
func (t Token) String() string {
	if t.Lit != "" {
		return t.Lit
	}

	return t.Kind.String()
}
