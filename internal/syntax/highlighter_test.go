package syntax

import (
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func newColorHighlighter() *Highlighter {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.ANSI)
	return NewHighlighterWithRenderer(r)
}

func TestHighlighter_Java(t *testing.T) {
	h := newColorHighlighter()

	code := `public class Main {
	/* block
	   comment */
	public static void main(String[] args) {
		int x = 42;
		System.out.println("Hello, World!");
	}
}`

	result, err := h.Highlight(code, "java")
	if err != nil {
		t.Fatalf("Highlight failed: %v", err)
	}

	// Check that some ANSI codes are present (indicating highlighting)
	if !strings.Contains(result, "\033[") {
		t.Error("Expected ANSI color codes in output")
	}

	// Stripping the codes must give back the original, tabs and line layout included
	stripped := stripANSI(result)
	if stripped != code {
		t.Errorf("Highlighted code doesn't match original\nExpected: %q\nGot: %q", code, stripped)
	}
}

func TestHighlighter_LanguageNormalization(t *testing.T) {
	h := newColorHighlighter()

	result, err := h.Highlight("int x;", "  JAVA ")
	if err != nil {
		t.Fatalf("Highlight failed: %v", err)
	}
	if !strings.Contains(result, "\033[") {
		t.Error("Expected ANSI color codes for upper-case language name")
	}
}

func TestHighlighter_UnsupportedLanguage(t *testing.T) {
	h := NewHighlighter()

	code := "some code"
	result, err := h.Highlight(code, "unsupported")

	if err != nil {
		t.Fatalf("Highlight failed: %v", err)
	}

	// Should return code as-is for unsupported languages
	if result != code {
		t.Errorf("Expected unchanged code for unsupported language\nExpected: %q\nGot: %q", code, result)
	}
}

func TestHighlighter_NoColorProfile(t *testing.T) {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	h := NewHighlighterWithRenderer(r)

	code := "// nothing to color\nint y = 1;"
	result, err := h.Highlight(code, "java")
	if err != nil {
		t.Fatalf("Highlight failed: %v", err)
	}
	if result != code {
		t.Errorf("Expected plain output without a color profile, got %q", result)
	}
}

// stripANSI removes ANSI escape codes from a string
func stripANSI(s string) string {
	var result strings.Builder
	inEscape := false

	for i := 0; i < len(s); i++ {
		if s[i] == '\033' {
			inEscape = true
			continue
		}
		if inEscape {
			if s[i] == 'm' {
				inEscape = false
			}
			continue
		}
		result.WriteByte(s[i])
	}

	return result.String()
}
