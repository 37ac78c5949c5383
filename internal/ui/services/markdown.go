package services

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer renders markdown for a terminal of the given width.
type MarkdownRenderer interface {
	Render(content string, width int) (string, error)
}

// GlamourRenderer renders markdown with glamour, picking a light or dark
// style from the terminal background.
type GlamourRenderer struct {
	wordWrap int
}

// NewGlamourRenderer returns a renderer that wraps at wordWrap columns when
// the caller does not supply a width. Zero disables wrapping.
func NewGlamourRenderer(wordWrap int) *GlamourRenderer {
	return &GlamourRenderer{wordWrap: wordWrap}
}

func (g *GlamourRenderer) Render(content string, width int) (string, error) {
	if width <= 0 {
		width = g.wordWrap
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(content)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

// RenderMarkdown renders content and trims the blank margin glamour adds.
// A nil renderer returns the content unchanged.
func RenderMarkdown(content string, width int, renderer MarkdownRenderer) (string, error) {
	if renderer == nil {
		return content, nil
	}
	out, err := renderer.Render(content, width)
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}
