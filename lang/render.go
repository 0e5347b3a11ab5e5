package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/ngxs-lang/ngxs/log"
)

// DefaultIndent is the indentation unit used when no option overrides it.
const DefaultIndent = "  "

// RenderOption configures a Renderer.
type RenderOption func(*Renderer)

// WithIndent sets the indentation unit for rendered output.
func WithIndent(unit string) RenderOption {
	return func(r *Renderer) {
		r.indent = unit
	}
}

// WithExpand controls template expansion. When disabled, template
// references are re-emitted verbatim instead of being inlined. Template
// definitions are dropped and imports are resolved and inlined either way.
func WithExpand(expand bool) RenderOption {
	return func(r *Renderer) {
		r.expand = expand
	}
}

// WithPreserve enables source-preserving output: template definitions and
// import references are re-emitted in source form instead of dropped or
// inlined, and template references stay verbatim, so the result is valid
// compiler input equivalent to the original.
func WithPreserve(preserve bool) RenderOption {
	return func(r *Renderer) {
		r.preserve = preserve
	}
}

// WithOrigin sets the path of the file the tree was parsed from. Relative
// import paths in the tree resolve against this file's directory, and the
// origin participates in import cycle detection.
func WithOrigin(path string) RenderOption {
	return func(r *Renderer) {
		r.origin = path
	}
}

// WithFS sets the filesystem used to resolve imports.
func WithFS(fsys FS) RenderOption {
	return func(r *Renderer) {
		r.fsys = fsys
	}
}

// WithSearchPath sets an ordered list of directories consulted for a
// relative import path after the importing file's own directory.
func WithSearchPath(dirs ...string) RenderOption {
	return func(r *Renderer) {
		r.search = dirs
	}
}

// WithEnv sets the environment lookup threaded into the parses of imported
// files. The default reads the process environment.
func WithEnv(lookup Lookup) RenderOption {
	return func(r *Renderer) {
		r.lookup = lookup
	}
}

// WithRenderLogger sets the structured logger for trace-level debugging.
// The zero-value logger discards everything.
func WithRenderLogger(logger log.Logger) RenderOption {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// Renderer generates target-format text from a Config tree. Each renderer
// owns its template table, import stack, and parse cache exclusively;
// construct a fresh one per top-level render call. Independent renderers
// share nothing, so concurrent renders of independent trees are safe.
type Renderer struct {
	indent   string
	expand   bool
	preserve bool
	origin   string
	fsys     FS
	search   []string
	lookup   Lookup
	logger   log.Logger

	templates map[string]*TemplateDef
	stack     []string // in-flight imports, resolved absolute paths
	cache     map[string]*Config
	current   string // resolved path of the file being rendered
	depth     int
}

// NewRenderer constructs a renderer with the given options applied over
// defaults: two-space indentation, template expansion enabled, OS
// filesystem, process environment.
func NewRenderer(opts ...RenderOption) *Renderer {
	r := &Renderer{
		indent:    DefaultIndent,
		expand:    true,
		fsys:      OSFS{},
		lookup:    os.LookupEnv,
		templates: make(map[string]*TemplateDef),
		cache:     make(map[string]*Config),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Render constructs a fresh renderer and renders the tree with it.
func Render(cfg *Config, opts ...RenderOption) (string, error) {
	return NewRenderer(opts...).Render(cfg)
}

// Render walks the tree in two passes: first collecting every template
// definition into the lookup table, then rendering nodes to indented text.
// Imported files are parsed (once per resolved path) and rendered in place
// as they are encountered.
func (r *Renderer) Render(cfg *Config) (string, error) {
	if r.origin != "" {
		abs, err := filepath.Abs(r.origin)
		if err != nil {
			abs = filepath.Clean(r.origin)
		}

		r.current = abs
		r.stack = append(r.stack, abs)
	}

	r.collect(cfg.Statements)

	r.logger.Trace("render start",
		slog.Int("statements", len(cfg.Statements)),
		slog.Int("templates", len(r.templates)),
		slog.Bool("expand", r.expand),
	)

	out, err := r.renderNodes(cfg.Statements)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(out), nil
}

// collect recursively gathers template definitions into the shared table.
// Later definitions of a name overwrite earlier ones.
func (r *Renderer) collect(nodes []Node) {
	for _, n := range nodes {
		switch t := n.(type) {
		case *TemplateDef:
			r.templates[t.Name] = t
			r.collect(t.Body.Children)
		case *Block:
			r.collect(t.Children)
		case *Location:
			r.collect(t.Children)
		}
	}
}

// renderNodes renders a statement sequence at the current depth, dropping
// statements that produce no output (template definitions), joined by
// newlines.
func (r *Renderer) renderNodes(nodes []Node) (string, error) {
	lines := make([]string, 0, len(nodes))

	for _, n := range nodes {
		s, err := r.renderNode(n)
		if err != nil {
			return "", err
		}

		if s == "" {
			continue
		}

		lines = append(lines, s)
	}

	return strings.Join(lines, "\n"), nil
}

// renderChildren renders nested statements one level deeper. The depth is
// restored on every exit path.
func (r *Renderer) renderChildren(nodes []Node) (string, error) {
	r.depth++
	defer func() { r.depth-- }()

	return r.renderNodes(nodes)
}

func (r *Renderer) renderNode(n Node) (string, error) {
	switch t := n.(type) {
	case *Directive:
		return r.renderDirective(t), nil
	case *Block:
		return r.renderBlock(t)
	case *Location:
		return r.renderLocation(t)
	case *TemplateDef:
		if r.preserve {
			return r.renderTemplateDef(t)
		}

		// Consumed by the collection pass; never emitted.
		return "", nil
	case *TemplateRef:
		return r.renderTemplateRef(t)
	case *Import:
		return r.renderImport(t)
	default:
		return "", fmt.Errorf("unhandled node type %T", n)
	}
}

func (r *Renderer) pad() string {
	return strings.Repeat(r.indent, r.depth)
}

func (r *Renderer) renderDirective(d *Directive) string {
	var sb strings.Builder

	sb.WriteString(r.pad())
	sb.WriteString(d.Name)

	for _, arg := range d.Args {
		sb.WriteByte(' ')
		sb.WriteString(quoteArg(arg))
	}

	sb.WriteByte(';')

	return sb.String()
}

func (r *Renderer) renderBlock(b *Block) (string, error) {
	header := r.pad() + b.Name

	if len(b.Args) > 0 {
		header += " " + strings.Join(b.Args, " ")
	}

	header += " {"

	body, err := r.renderChildren(b.Children)
	if err != nil {
		return "", err
	}

	return r.enclose(header, body), nil
}

// enclose joins a block header, an optional body, and the closing brace.
func (r *Renderer) enclose(header, body string) string {
	if body == "" {
		return header + "\n" + r.pad() + "}"
	}

	return header + "\n" + body + "\n" + r.pad() + "}"
}

// modifierPrefixes are the sigils recognized at the front of a path string,
// longest-prefix-first: "~*" and "^~" are two characters and must be
// checked before the single-character "~" (and before treating "^" as path
// text).
var modifierPrefixes = []struct {
	prefix string
	mod    MatchModifier
}{
	{"~*", MatchRegexInsensitive},
	{"^~", MatchPriorityPrefix},
	{"=", MatchExact},
	{"~", MatchRegex},
}

func (r *Renderer) renderLocation(l *Location) (string, error) {
	if len(l.Paths) > 1 {
		// Multi-path shorthand: one full location block per path, in the
		// original order, children shared verbatim. Each copy is a new
		// node; the parsed tree is never mutated.
		blocks := make([]string, 0, len(l.Paths))

		for _, path := range l.Paths {
			single := &Location{
				base:     base{pos: l.Pos()},
				Modifier: l.Modifier,
				Paths:    []string{path},
				Children: l.Children,
			}

			s, err := r.renderLocation(single)
			if err != nil {
				return "", err
			}

			blocks = append(blocks, s)
		}

		return strings.Join(blocks, "\n"), nil
	}

	path := l.Paths[0]
	mod := l.Modifier

	// A sigil embedded in the path overrides any modifier already set on
	// the node.
	for _, mp := range modifierPrefixes {
		if strings.HasPrefix(path, mp.prefix) {
			mod = mp.mod
			path = strings.TrimPrefix(path, mp.prefix)

			break
		}
	}

	header := r.pad() + "location "
	if mod != MatchPrefix {
		header += mod.String() + " "
	}

	header += quoteArg(path) + " {"

	body, err := r.renderChildren(l.Children)
	if err != nil {
		return "", err
	}

	return r.enclose(header, body), nil
}

// renderTemplateDef re-emits a definition in source form. Only reachable
// in preserve mode; otherwise definitions never print.
func (r *Renderer) renderTemplateDef(t *TemplateDef) (string, error) {
	header := r.pad() + t.Name + " = {"

	body, err := r.renderChildren(t.Body.Children)
	if err != nil {
		return "", err
	}

	return r.enclose(header, body) + ";", nil
}

func (r *Renderer) renderTemplateRef(t *TemplateRef) (string, error) {
	if !r.expand || r.preserve {
		return r.pad() + string(Sigil) + "inline(" + t.Name + ");", nil
	}

	def, ok := r.templates[t.Name]
	if !ok {
		return "", r.undefinedTemplate(t)
	}

	r.logger.Trace("template expanded",
		slog.String("name", t.Name),
		slog.Int("statements", len(def.Body.Children)),
	)

	// Inlining removes the template's own scope: children render at the
	// reference's indentation with no wrapping header or footer.
	return r.renderNodes(def.Body.Children)
}

func (r *Renderer) undefinedTemplate(t *TemplateRef) error {
	err := ErrUndefinedTemplate.
		WithPosition(t.Pos()).
		Wrap(errors.New(t.Name))

	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}

	slices.Sort(names)

	if matches := fuzzy.Find(t.Name, names); len(matches) > 0 {
		err = err.With(slog.String("did_you_mean", matches[0].Str))
	}

	return err
}

func (r *Renderer) renderImport(imp *Import) (string, error) {
	if r.preserve {
		return r.pad() + string(Sigil) + `import("` + imp.Path + `");`, nil
	}

	resolved, err := r.resolveImport(imp)
	if err != nil {
		return "", err
	}

	if slices.Contains(r.stack, resolved) {
		chain := append(slices.Clone(r.stack), resolved)

		return "", ErrImportCycle.
			WithPosition(imp.Pos()).
			Wrap(errors.New(strings.Join(chain, " -> ")))
	}

	cfg, ok := r.cache[resolved]
	if !ok {
		data, err := r.fsys.ReadFile(resolved)
		if err != nil {
			return "", ErrImportNotFound.
				WithPosition(imp.Pos()).
				Wrap(err).
				With(slog.String("path", imp.Path))
		}

		cfg, err = Parse(string(data), WithLookup(r.lookup))
		if err != nil {
			return "", err
		}

		r.cache[resolved] = cfg

		r.logger.Trace("import parsed",
			slog.String("path", resolved),
			slog.Int("statements", len(cfg.Statements)),
		)
	}

	r.stack = append(r.stack, resolved)
	prev := r.current
	r.current = resolved

	defer func() {
		r.stack = r.stack[:len(r.stack)-1]
		r.current = prev
	}()

	// Template definitions from the imported file merge into the shared
	// table before its statements render, and stay visible to later
	// references in the importing file.
	r.collect(cfg.Statements)

	return r.renderNodes(cfg.Statements)
}

// resolveImport resolves an import path to the file that will be read.
// Absolute paths are used as-is. Relative paths resolve against the
// directory of the file currently being rendered, then against the search
// path in order.
func (r *Renderer) resolveImport(imp *Import) (string, error) {
	if filepath.IsAbs(imp.Path) {
		path := filepath.Clean(imp.Path)
		if r.fsys.Exists(path) {
			return path, nil
		}

		return "", ErrImportNotFound.
			WithPosition(imp.Pos()).
			Wrap(errors.New(path))
	}

	dirs := make([]string, 0, len(r.search)+1)

	if r.current != "" {
		dirs = append(dirs, filepath.Dir(r.current))
	} else {
		dirs = append(dirs, ".")
	}

	dirs = append(dirs, r.search...)

	for _, dir := range dirs {
		candidate := filepath.Join(dir, imp.Path)

		if abs, err := filepath.Abs(candidate); err == nil {
			candidate = abs
		}

		if r.fsys.Exists(candidate) {
			return candidate, nil
		}
	}

	return "", ErrImportNotFound.
		WithPosition(imp.Pos()).
		Wrap(errors.New(imp.Path))
}

// quoteArg wraps an argument in double quotes when it is not already
// quote-wrapped and contains whitespace or punctuation meaningful to the
// target format.
func quoteArg(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') ||
			(s[0] == '\'' && s[len(s)-1] == '\'') {
			return s
		}
	}

	if strings.ContainsAny(s, " \t\r\n{}();,") {
		return `"` + s + `"`
	}

	return s
}
