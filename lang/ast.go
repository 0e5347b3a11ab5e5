package lang

// Sigil introduces the source-only extensions: variables, template
// references, environment references, and imports. Nginx's own runtime
// interpolation marker ('$') is a different character on purpose, so native
// interpolation passes through the compiler untouched.
const Sigil = '%'

// Node is one syntax-tree node. The node set is closed: Config, Directive,
// Block, Location, TemplateDef, TemplateRef, and Import. Every walk over
// nodes switches exhaustively on these types and fails on anything else.
type Node interface {
	// Pos returns the node's position in its source text.
	Pos() Position

	node()
}

type base struct {
	pos Position
}

func (b base) Pos() Position { return b.pos }

func (base) node() {}

// Config is the root of one parsed source: an ordered sequence of top-level
// statements. A Config owns all of its descendants exclusively; nodes are
// never shared between trees and are immutable once parsing returns.
type Config struct {
	base

	Statements []Node
}

// Directive is a leaf configuration line: a name and its arguments.
// The name is never empty.
type Directive struct {
	base

	Name string
	Args []string
}

// Block is a named scope with arguments and nested statements, e.g.
// "server { ... }" or "if ($cond) { ... }".
type Block struct {
	base

	Name     string
	Args     []string
	Children []Node
}

// MatchModifier selects how a location path is matched by the target
// runtime. The zero value is the default prefix match, which renders as no
// modifier at all.
type MatchModifier int

const (
	MatchPrefix           MatchModifier = iota // default prefix match
	MatchExact                                 // =
	MatchRegex                                 // ~
	MatchRegexInsensitive                      // ~*
	MatchPriorityPrefix                        // ^~
)

// String returns the modifier's rendered form. MatchPrefix renders empty.
func (m MatchModifier) String() string {
	switch m {
	case MatchExact:
		return "="
	case MatchRegex:
		return "~"
	case MatchRegexInsensitive:
		return "~*"
	case MatchPriorityPrefix:
		return "^~"
	default:
		return ""
	}
}

// Location is a path-routing scope. Paths always holds at least one entry;
// more than one denotes the multi-path shorthand, expanded to sibling
// single-path locations at render time with the children shared verbatim.
type Location struct {
	base

	Modifier MatchModifier
	Paths    []string
	Children []Node
}

// TemplateDef binds a variable name to a reusable block body. Definitions
// never render to output text; they only populate the template table, where
// the last definition of a name wins.
type TemplateDef struct {
	base

	Name string // includes the sigil, e.g. "%proxy_defaults"
	Body *Block
}

// TemplateRef references a TemplateDef by name. With expansion enabled the
// referenced body's children render inline at the reference's indentation;
// with expansion disabled the reference syntax is re-emitted verbatim.
type TemplateRef struct {
	base

	Name string // includes the sigil
}

// Import references another source file to be parsed and rendered in place.
// Relative paths resolve against the directory of the importing file.
type Import struct {
	base

	Path string
}

// Tree returns a plain-data representation of the parse tree, suitable for
// marshaling to YAML or JSON by the fmt subcommands.
func (c *Config) Tree() []map[string]any {
	return treeOf(c.Statements)
}

func treeOf(nodes []Node) []map[string]any {
	out := make([]map[string]any, 0, len(nodes))

	for _, n := range nodes {
		switch t := n.(type) {
		case *Directive:
			out = append(out, map[string]any{
				"kind": "directive",
				"name": t.Name,
				"args": t.Args,
				"pos":  t.Pos(),
			})
		case *Block:
			out = append(out, map[string]any{
				"kind":     "block",
				"name":     t.Name,
				"args":     t.Args,
				"children": treeOf(t.Children),
				"pos":      t.Pos(),
			})
		case *Location:
			out = append(out, map[string]any{
				"kind":     "location",
				"modifier": t.Modifier.String(),
				"paths":    t.Paths,
				"children": treeOf(t.Children),
				"pos":      t.Pos(),
			})
		case *TemplateDef:
			out = append(out, map[string]any{
				"kind":     "template",
				"name":     t.Name,
				"children": treeOf(t.Body.Children),
				"pos":      t.Pos(),
			})
		case *TemplateRef:
			out = append(out, map[string]any{
				"kind": "inline",
				"name": t.Name,
				"pos":  t.Pos(),
			})
		case *Import:
			out = append(out, map[string]any{
				"kind": "import",
				"path": t.Path,
				"pos":  t.Pos(),
			})
		}
	}

	return out
}
