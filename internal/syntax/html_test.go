package syntax

import (
	"html"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func span(class, text string) string {
	return `<span class="` + class + `">` + text + "</span>"
}

func TestHighlightJava(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "line comment then code",
			input:    "// comment\ncode",
			expected: span(classComment, "// comment") + "<br/>code",
		},
		{
			name:  "string declaration",
			input: `String s = "hi";`,
			expected: span(classType, "String") + " s = " +
				span(classString, "&quot;hi&quot;") + ";",
		},
		{
			name:  "annotation keywords and call",
			input: "@Override public void run() {}",
			expected: span(classAnnotation, "@Override") + " " +
				span(classKeyword, "public") + " " +
				span(classKeyword, "void") + " " +
				span(classCall, "run") + "() {}",
		},
		{
			name:  "hex scientific and long literals",
			input: "0x1F, 3.14e10, 42L",
			expected: span(classNumber, "0x1F") + ", " +
				span(classNumber, "3.14e10") + ", " +
				span(classNumber, "42L"),
		},
		{
			name:     "uppercase call is a constructor",
			input:    "MyClass(",
			expected: "MyClass(",
		},
		{
			name:     "new expression",
			input:    "new Widget()",
			expected: span(classKeyword, "new") + " Widget()",
		},
		{
			name:     "keyword inside identifier",
			input:    "Interfacer interfaces",
			expected: "Interfacer interfaces",
		},
		{
			name:     "keyword followed by paren is not a call",
			input:    "if (x)",
			expected: span(classKeyword, "if") + " (x)",
		},
		{
			name:     "known type followed by paren is not a call",
			input:    "Optional(",
			expected: span(classType, "Optional") + "(",
		},
		{
			name:     "call with whitespace before paren",
			input:    "foo (1)",
			expected: span(classCall, "foo") + " (" + span(classNumber, "1") + ")",
		},
		{
			name:     "call with newline before paren",
			input:    "foo\n(x)",
			expected: span(classCall, "foo") + "<br/>(x)",
		},
		{
			name:     "underscore identifier call",
			input:    "_run()",
			expected: span(classCall, "_run") + "()",
		},
		{
			name:  "generic type arguments are escaped",
			input: "List<String>",
			expected: span(classType, "List") + "&lt;" +
				span(classType, "String") + "&gt;",
		},
		{
			name:     "quote inside comment stays in comment",
			input:    `// say "hi"`,
			expected: span(classComment, "// say &quot;hi&quot;"),
		},
		{
			name:     "comment marker inside string stays in string",
			input:    `"http://example.com"`,
			expected: span(classString, "&quot;http://example.com&quot;"),
		},
		{
			name:     "block comment spans lines and swallows line comment",
			input:    "/* a // b\n c */x",
			expected: span(classComment, "/* a // b<br/> c */") + "x",
		},
		{
			name:     "non-greedy block comments",
			input:    "/* a */ int /* b */",
			expected: span(classComment, "/* a */") + " " + span(classKeyword, "int") + " " + span(classComment, "/* b */"),
		},
		{
			name:     "unterminated block comment is not a comment",
			input:    "/* open",
			expected: "/* open",
		},
		{
			name:     "escaped quote inside string",
			input:    `"a\"b"`,
			expected: span(classString, `&quot;a\&quot;b&quot;`),
		},
		{
			name:     "unterminated string is plain",
			input:    "\"abc\nnull",
			expected: "&quot;abc<br/>" + span(classKeyword, "null"),
		},
		{
			name:     "character literal quote does not open a string",
			input:    `'"' + x + '"'`,
			expected: "&#039;&quot;&#039; + x + &#039;&quot;&#039;",
		},
		{
			name:     "non-sealed is a single keyword",
			input:    "non-sealed class",
			expected: span(classKeyword, "non-sealed") + " " + span(classKeyword, "class"),
		},
		{
			name:  "module declaration words",
			input: "requires transitive java.sql;",
			expected: span(classKeyword, "requires") + " " + span(classKeyword, "transitive") +
				" java.sql;",
		},
		{
			name:  "literal keywords",
			input: "true false null",
			expected: span(classKeyword, "true") + " " + span(classKeyword, "false") + " " +
				span(classKeyword, "null"),
		},
		{
			name:     "digits inside identifiers",
			input:    "x1 = value2",
			expected: "x1 = value2",
		},
		{
			name:     "number glued to letters is plain",
			input:    "123abc",
			expected: "123abc",
		},
		{
			name:  "binary float and leading dot literals",
			input: "0b1010L 1.5f .5 2e-3d",
			expected: span(classNumber, "0b1010L") + " " + span(classNumber, "1.5f") + " " +
				span(classNumber, ".5") + " " + span(classNumber, "2e-3d"),
		},
		{
			name:     "integer before member access",
			input:    "arr[1].length",
			expected: "arr[" + span(classNumber, "1") + "].length",
		},
		{
			name:     "ampersand escaped exactly once",
			input:    "a && b & &amp;",
			expected: "a &amp;&amp; b &amp; &amp;amp;",
		},
		{
			name:     "markup in source cannot become markup",
			input:    `<script>alert('x')</script>`,
			expected: "&lt;script&gt;" + span(classCall, "alert") + "(&#039;x&#039;)&lt;/script&gt;",
		},
		{
			name:     "annotation with lowercase name and arguments",
			input:    `@interface @param(1)`,
			expected: span(classAnnotation, "@interface") + " " + span(classAnnotation, "@param") + "(" + span(classNumber, "1") + ")",
		},
		{
			name:     "at sign without identifier",
			input:    "@ 1",
			expected: "@ " + span(classNumber, "1"),
		},
		{
			name:     "non-ascii identifiers stay plain",
			input:    "café()",
			expected: "caf" + "é()",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HighlightJava(tt.input))
		})
	}
}

func TestHighlightJava_FullProgram(t *testing.T) {
	code := `public class HelloWorld {
    public static void main(String[] args) {
        System.out.println("Hello, Java Playground!");
    }
}`

	result := HighlightJava(code)

	assert.Contains(t, result, span(classKeyword, "class")+" HelloWorld {")
	assert.Contains(t, result, span(classType, "System")+".out."+span(classCall, "println")+"(")
	assert.Contains(t, result, span(classString, "&quot;Hello, Java Playground!&quot;"))
	assert.Equal(t, 4, strings.Count(result, lineBreak))
	assert.NotContains(t, result, "\n")
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "&amp;&lt;&gt;&quot;&#039;", Escape(`&<>"'`))
	assert.Equal(t, "plain", Escape("plain"))
	assert.Equal(t, "&amp;amp;", Escape("&amp;"))
}

var wrapperMarkup = regexp.MustCompile(`<span class="[^"]*">|</span>`)

// stripMarkup removes wrapper spans and restores newlines, leaving only escaped source text.
func stripMarkup(s string) string {
	return strings.ReplaceAll(wrapperMarkup.ReplaceAllString(s, ""), lineBreak, "\n")
}

var entity = regexp.MustCompile(`&(amp|lt|gt|quot|#039);`)

func javaishString() *rapid.Generator[string] {
	alphabet := []rune("/*\"'@<>&\n\t (){}[];.,=+-_019xXbBeEfLl abcAZ\\é")
	return rapid.StringOf(rapid.RuneFrom(alphabet))
}

func checkEscapingRoundTrip(t *rapid.T, src string) {
	out := HighlightJava(src)
	text := stripMarkup(out)

	require.NotContains(t, text, "<")
	require.NotContains(t, text, ">")
	require.NotContains(t, text, `"`)
	require.NotContains(t, text, "'")
	require.Equal(t, strings.Count(text, "&"), len(entity.FindAllString(text, -1)),
		"every ampersand must start an entity")
	require.Equal(t, src, html.UnescapeString(text))
}

func TestHighlightJava_EscapingRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		checkEscapingRoundTrip(t, javaishString().Draw(t, "src"))
	})
}

func TestHighlightJava_EscapingRoundTripArbitrary(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		checkEscapingRoundTrip(t, rapid.String().Draw(t, "src"))
	})
}

func TestHighlightJava_UnterminatedOpenersStayLinear(t *testing.T) {
	const size = 1 << 20
	tests := []struct {
		name string
		unit string
	}{
		{name: "escaped quotes on one line", unit: "\"\\"},
		{name: "unterminated block comments", unit: "/*a"},
		{name: "mixed openers", unit: "\"/*\\"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := strings.Repeat(tt.unit, size/len(tt.unit))

			start := time.Now()
			out := HighlightJava(src)
			elapsed := time.Since(start)

			assert.Equal(t, Escape(src), out, "nothing in the input is a comment or string")
			assert.Less(t, elapsed, 5*time.Second, "highlighting %d bytes took %s", len(src), elapsed)
		})
	}
}
