package tex

import "strings"

var bibliographyMacros = MacroSet{"bibliography": {Arity: 1}}

const endDocument = `\end{document}`

// InlineBibliography substitutes bbl for the first \bibliography{...}. When
// the document has none, bbl is inserted before \end{document}. It reports
// false and returns text unchanged when neither is present.
func InlineBibliography(text, bbl string) (string, bool) {
	replaced := false
	out := Parse(text, bibliographyMacros).Render(func(n Node) (string, bool) {
		if replaced || len(n.Args) == 0 {
			return "", false
		}
		replaced = true
		return bbl, true
	})
	if replaced {
		return out, true
	}

	idx := strings.LastIndex(text, endDocument)
	if idx < 0 {
		return text, false
	}
	sep := ""
	if !strings.HasSuffix(bbl, "\n") {
		sep = "\n"
	}
	return text[:idx] + bbl + sep + text[idx:], true
}
