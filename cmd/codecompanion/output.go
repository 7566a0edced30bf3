package main

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/codefionn/codecompanion/internal/syntax"
)

const defaultWrapWidth = 80

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 20 {
			return width
		}
	}
	return defaultWrapWidth
}

// ansiHighlighter returns a highlighter that always emits ANSI colors.
func ansiHighlighter(w io.Writer) *syntax.Highlighter {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(termenv.ANSI256)
	return syntax.NewHighlighterWithRenderer(r)
}

// writeCode prints Java source, highlighted when w is a terminal.
func (a *app) writeCode(w io.Writer, code string) error {
	if a.isTTY(w) {
		highlighted, err := ansiHighlighter(w).Highlight(code, "java")
		if err != nil {
			return err
		}
		code = highlighted
	}
	_, err := io.WriteString(w, strings.TrimRight(code, "\n")+"\n")
	return err
}

// renderMarkdown renders an explanation with glamour on terminals and as
// wrapped plain text elsewhere.
func (a *app) renderMarkdown(w io.Writer, markdown string) string {
	if !a.isTTY(w) {
		return wordwrap.String(markdown, defaultWrapWidth)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(terminalWidth(w)-4),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return wordwrap.String(markdown, defaultWrapWidth)
	}
	out, err := renderer.Render(markdown)
	if err != nil {
		return wordwrap.String(markdown, defaultWrapWidth)
	}
	return out
}
