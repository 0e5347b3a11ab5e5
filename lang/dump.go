package lang

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes an annotated outline of the parse tree to w, one node per
// line with its kind, salient fields, and source position.
func (c *Config) Dump(w io.Writer) error {
	for _, n := range c.Statements {
		if err := dumpNode(w, n, 0); err != nil {
			return err
		}
	}

	return nil
}

func dumpNode(w io.Writer, n Node, depth int) error {
	pad := strings.Repeat("  ", depth)

	var err error

	switch t := n.(type) {
	case *Directive:
		_, err = fmt.Fprintf(w, "%sdirective %s [%s] @%s\n",
			pad, t.Name, strings.Join(t.Args, " "), t.Pos())

	case *Block:
		header := t.Name
		if len(t.Args) > 0 {
			header += " " + strings.Join(t.Args, " ")
		}

		if _, err = fmt.Fprintf(w, "%sblock %s @%s\n", pad, header, t.Pos()); err != nil {
			return err
		}

		return dumpNodes(w, t.Children, depth+1)

	case *Location:
		if _, err = fmt.Fprintf(w, "%slocation %s match=%s @%s\n",
			pad, strings.Join(t.Paths, " "), t.Modifier, t.Pos()); err != nil {
			return err
		}

		return dumpNodes(w, t.Children, depth+1)

	case *TemplateDef:
		if _, err = fmt.Fprintf(w, "%stemplate %s @%s\n", pad, t.Name, t.Pos()); err != nil {
			return err
		}

		return dumpNodes(w, t.Body.Children, depth+1)

	case *TemplateRef:
		_, err = fmt.Fprintf(w, "%sinline %s @%s\n", pad, t.Name, t.Pos())

	case *Import:
		_, err = fmt.Fprintf(w, "%simport %q @%s\n", pad, t.Path, t.Pos())

	default:
		_, err = fmt.Fprintf(w, "%s%T @%s\n", pad, n, n.Pos())
	}

	return err
}

func dumpNodes(w io.Writer, nodes []Node, depth int) error {
	for _, n := range nodes {
		if err := dumpNode(w, n, depth); err != nil {
			return err
		}
	}

	return nil
}
