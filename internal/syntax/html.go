package syntax

import "strings"

const lineBreak = "<br/>"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// Escape replaces &, <, >, " and ' with their HTML entities.
func Escape(s string) string {
	return htmlEscaper.Replace(s)
}

// HighlightJava renders Java source as HTML. Every token is escaped before it
// is wrapped, so the result can be inserted verbatim into a raw-HTML container;
// newlines become <br/>. The function never fails: text that is not valid Java
// is still rendered, only with partial or no styling.
func HighlightJava(src string) string {
	var sb strings.Builder
	sb.Grow(len(src) * 2)
	for _, tok := range Tokenize(src) {
		writeHTMLToken(&sb, tok)
	}
	return sb.String()
}

func writeHTMLToken(sb *strings.Builder, tok Token) {
	text := strings.ReplaceAll(Escape(tok.Text), "\n", lineBreak)

	class := tok.Category.Class()
	if class == "" {
		sb.WriteString(text)
		return
	}

	sb.WriteString(`<span class="`)
	sb.WriteString(class)
	sb.WriteString(`">`)
	sb.WriteString(text)
	sb.WriteString("</span>")
}
