package services

import (
	"bytes"
	"fmt"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Highlighter colours LaTeX source for a 256-colour terminal.
type Highlighter struct {
	lexer     chroma.Lexer
	style     *chroma.Style
	formatter chroma.Formatter
}

// NewHighlighter returns a highlighter using the named chroma style.
// Unknown names fall back to chroma's default style.
func NewHighlighter(styleName string) *Highlighter {
	lexer := lexers.Get("tex")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}
	return &Highlighter{
		lexer:     chroma.Coalesce(lexer),
		style:     styles.Get(styleName),
		formatter: formatter,
	}
}

// Highlight returns source wrapped in ANSI colour sequences.
func (h *Highlighter) Highlight(source string) (string, error) {
	iterator, err := h.lexer.Tokenise(nil, source)
	if err != nil {
		return "", fmt.Errorf("tokenise: %w", err)
	}
	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, iterator); err != nil {
		return "", fmt.Errorf("format: %w", err)
	}
	return buf.String(), nil
}
