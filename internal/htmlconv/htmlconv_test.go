package htmlconv

import (
	"strings"
	"testing"
)

func TestIsHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"doctype", "<!DOCTYPE html><html><body>Test</body></html>", true},
		{"paragraphs", "<p>Line 3 is missing a semicolon.</p><p>Add one.</p>", true},
		{"list", "<ul><li>Missing ;</li></ul>", true},
		{"plain text", "No errors or significant issues found in the provided Java code.", false},
		{"java generics", "Line 4: List<String> names = new ArrayList<Integer>(); mixes Map<K, V> types.", false},
		{"code span", "Here's some code: `<div><p>test</p></div>`", false},
		{"single link", "See <a href='https://docs.oracle.com'>the docs</a>", false},
		{"email brackets", "Contact me at <user@example.com>", false},
		{"upper-case tags", "<P>one</P><P>two</P>", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := isHTML(tt.input); result != tt.expected {
				t.Errorf("isHTML() = %v, want %v for input: %s", result, tt.expected, tt.input)
			}
		})
	}
}

func TestConvertIfHTML(t *testing.T) {
	tests := []struct {
		name            string
		input           string
		expectConverted bool
		contains        []string
		excludes        []string
	}{
		{
			name:            "explanation with list",
			input:           "<p>Found <strong>2</strong> errors:</p><ol><li>Line 3: missing <code>;</code></li><li>Line 5: <code>systm</code> should be <code>System</code></li></ol>",
			expectConverted: true,
			contains:        []string{"**2**", "1. Line 3: missing `;`", "`System`"},
		},
		{
			name:            "strips scripts and styles",
			input:           "<html><head><style>p{}</style></head><body><p>Visible</p><script>alert(1)</script><p>Also</p></body></html>",
			expectConverted: true,
			contains:        []string{"Visible", "Also"},
			excludes:        []string{"alert", "p{}"},
		},
		{
			name:            "markdown stays",
			input:           "1. Line 3: missing `;`\n2. `List<String>` expected",
			expectConverted: false,
			contains:        []string{"List<String>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, converted := ConvertIfHTML(tt.input)
			if converted != tt.expectConverted {
				t.Fatalf("converted = %v, want %v (output %q)", converted, tt.expectConverted, output)
			}
			for _, want := range tt.contains {
				if !strings.Contains(output, want) {
					t.Errorf("output missing %q:\n%s", want, output)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(output, unwanted) {
					t.Errorf("output contains %q:\n%s", unwanted, output)
				}
			}
		})
	}
}

func TestCleanMarkdown(t *testing.T) {
	got := cleanMarkdown("\n\nTitle\n\n\n\n\nBody\n\n")
	if got != "Title\n\nBody" {
		t.Errorf("cleanMarkdown() = %q", got)
	}
}
