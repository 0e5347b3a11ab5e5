package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ngxs-lang/ngxs/lang"
)

var (
	diagErrStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	diagPosStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	diagGutterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	diagCaretStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

// diagnose renders a compile error as a human-readable diagnostic. When the
// error carries a source position and the source text is available, the
// offending line is shown with a caret under the failing column.
func diagnose(name, source string, err error) string {
	var b strings.Builder

	b.WriteString(diagErrStyle.Render("error:"))
	b.WriteByte(' ')
	b.WriteString(message(err))

	var langErr *lang.Error
	if !errors.As(err, &langErr) {
		return b.String()
	}

	pos, ok := langErr.Position()
	if !ok {
		return b.String()
	}

	b.WriteByte('\n')
	b.WriteString(diagGutterStyle.Render("  --> "))
	b.WriteString(diagPosStyle.Render(
		fmt.Sprintf("%s:%d:%d", name, pos.Line, pos.Column),
	))

	if source == "" {
		return b.String()
	}

	snippet := strings.TrimRight(lang.Snippet(source, pos), "\n")
	if snippet == "" {
		return b.String()
	}

	for _, line := range strings.Split(snippet, "\n") {
		b.WriteByte('\n')

		if strings.HasSuffix(strings.TrimRight(line, " "), "^") {
			b.WriteString(diagCaretStyle.Render(line))
		} else {
			b.WriteString(diagGutterStyle.Render(line))
		}
	}

	return b.String()
}

// message strips any position prefix from a compile error so the diagnostic
// header does not repeat what the location line already shows.
func message(err error) string {
	var langErr *lang.Error
	if errors.As(err, &langErr) {
		if pos, ok := langErr.Position(); ok {
			prefix := fmt.Sprintf("%d:%d: ", pos.Line, pos.Column)

			return strings.TrimPrefix(langErr.Error(), prefix)
		}
	}

	return err.Error()
}
