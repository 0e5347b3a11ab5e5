// Package lang implements the ngxs configuration superset language: a lexer,
// a recursive-descent parser, and a tree renderer that together compile
// superset source text into nginx-dialect configuration text.
//
// The superset extends the target dialect with three constructs, all
// introduced by the '%' sigil:
//
//   - Templates: %name = { ... }; defines a reusable block body, and
//     %inline(%name); expands it in place at render time.
//   - Environment references: %env("NAME") and %env("NAME", "default")
//     resolve to literal strings at parse time.
//   - Imports: %import("path"); parses and renders another file in place at
//     render time, with exact cycle detection.
//
// Everything else passes through structurally untouched: directives are
// opaque name+argument tuples, and nginx's own $var interpolation is plain
// argument text to this package.
//
// # Grammar
//
// Informal EBNF:
//
//	Config      → Statement* EOF
//	Statement   → Directive | Block | Location | Template | Inline | Import
//	Directive   → name Arg* ';'
//	Block       → name Arg* '{' Statement* '}'
//	Location    → 'location' Modifier? Path '{' Statement* '}'
//	            | 'location' 'in' '[' Path (',' Path)* ']' '{' Statement* '}'
//	Template    → variable '=' '{' Statement* '}' ';'
//	Inline      → '%inline' '(' variable ')' ';'
//	Import      → '%import' '(' string ')' ';'
//	Env         → '%env' '(' string (',' string)? ')'
//	Modifier    → '=' | '~' | '~*' | '^~'
//
// An Env reference may appear anywhere an argument or path may.
//
// # Pipeline
//
// Lex produces a flat token sequence; Parse builds an immutable Config tree
// with environment references already resolved to literals; Render walks
// the tree twice, first collecting template definitions and then generating
// indented output text, expanding templates and inlining imports as it
// goes. The parser is hand-written recursive descent with one- or
// two-token lookahead.
//
// # Example
//
//	%proxy = {
//	  proxy_set_header Host $host;
//	  proxy_set_header X-Real-IP $remote_addr;
//	};
//
//	server {
//	  listen %env("PORT", "8080");
//
//	  location in ["/api", "=/healthz"] {
//	    %inline(%proxy);
//	    proxy_pass http://backend;
//	  }
//
//	  %import("tls.conf");
//	}
package lang
