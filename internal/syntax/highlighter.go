package syntax

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Highlighter renders source code for terminals using ANSI styles.
type Highlighter struct {
	languages map[string]func(string) string
	styles    map[Category]lipgloss.Style
}

// NewHighlighter creates a terminal highlighter using the default lipgloss renderer,
// which disables colors automatically when the output is not a terminal.
func NewHighlighter() *Highlighter {
	return NewHighlighterWithRenderer(lipgloss.DefaultRenderer())
}

// NewHighlighterWithRenderer creates a terminal highlighter bound to a specific renderer.
func NewHighlighterWithRenderer(r *lipgloss.Renderer) *Highlighter {
	base := r.NewStyle().TabWidth(lipgloss.NoTabConversion)

	h := &Highlighter{
		styles: map[Category]lipgloss.Style{
			CategoryComment:    base.Foreground(lipgloss.Color("8")).Italic(true),
			CategoryString:     base.Foreground(lipgloss.Color("2")),
			CategoryAnnotation: base.Foreground(lipgloss.Color("3")),
			CategoryKeyword:    base.Foreground(lipgloss.Color("5")).Bold(true),
			CategoryType:       base.Foreground(lipgloss.Color("6")),
			CategoryNumber:     base.Foreground(lipgloss.Color("11")),
			CategoryCall:       base.Foreground(lipgloss.Color("15")),
		},
	}
	h.languages = map[string]func(string) string{
		"java":   h.renderJava,
		"jshell": h.renderJava,
	}
	return h
}

// Highlight applies syntax highlighting to code and returns an ANSI-colored string.
// Unsupported languages are returned unchanged.
func (h *Highlighter) Highlight(code string, language string) (string, error) {
	language = strings.ToLower(strings.TrimSpace(language))

	render, ok := h.languages[language]
	if !ok {
		return code, nil
	}
	return render(code), nil
}

// Supports reports whether the language has a renderer.
func (h *Highlighter) Supports(language string) bool {
	_, ok := h.languages[strings.ToLower(strings.TrimSpace(language))]
	return ok
}

func (h *Highlighter) renderJava(code string) string {
	var sb strings.Builder
	for _, tok := range Tokenize(code) {
		style, ok := h.styles[tok.Category]
		if !ok {
			sb.WriteString(tok.Text)
			continue
		}
		// lipgloss pads multi-line blocks to a common width, so style line by line.
		for i, line := range strings.Split(tok.Text, "\n") {
			if i > 0 {
				sb.WriteByte('\n')
			}
			if line != "" {
				sb.WriteString(style.Render(line))
			}
		}
	}
	return sb.String()
}
