package tex

import (
	"path/filepath"
	"strings"
)

var graphicsMacros = MacroSet{"includegraphics": {Arity: 1, Optional: true, Star: true}}

// FigureRef is one distinct \includegraphics target.
type FigureRef struct {
	Num     int    // 1-based order of first appearance
	Path    string // as written, trimmed
	Options string // raw optional argument including brackets, or ""
}

// FindFigures lists the distinct figure paths in order of first use.
func FindFigures(text string) []FigureRef {
	var figs []FigureRef
	seen := make(map[string]bool)
	for _, n := range Parse(text, graphicsMacros).Macros() {
		p := n.Arg(0)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true

		opts := ""
		if n.HasOptional {
			opts = "[" + n.Optional + "]"
		}
		figs = append(figs, FigureRef{Num: len(figs) + 1, Path: p, Options: opts})
	}
	return figs
}

// RewriteFigures points every \includegraphics whose path is a key of
// renamed at the new name, keeping its options.
func RewriteFigures(text string, renamed map[string]string) string {
	return Parse(text, graphicsMacros).Render(func(n Node) (string, bool) {
		target, ok := renamed[n.Arg(0)]
		if !ok {
			return "", false
		}
		var b strings.Builder
		b.WriteString(`\includegraphics`)
		if strings.HasPrefix(n.Text, `\includegraphics*`) {
			b.WriteByte('*')
		}
		if n.HasOptional {
			b.WriteString("[" + n.Optional + "]")
		}
		b.WriteString("{" + target + "}")
		return b.String(), true
	})
}

// StripExt removes a figure file's extension, as graphicx resolves it itself.
func StripExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
