// Package htmlconv turns model replies written in HTML into Markdown.
package htmlconv

import (
	"bytes"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/codefionn/codecompanion/internal/logger"
	"golang.org/x/net/html"
)

// htmlTagPattern captures the element name of opening tags.
var htmlTagPattern = regexp.MustCompile(`<([a-zA-Z][a-zA-Z0-9]*)\b[^<>]*>`)

// inlineCodePattern matches Markdown code spans, whose content never counts as markup.
var inlineCodePattern = regexp.MustCompile("`[^`\n]*`")

var multipleNewlines = regexp.MustCompile(`\n{3,}`)

// htmlTagThreshold is how many known opening tags make a text count as HTML.
const htmlTagThreshold = 2

// knownTags are the elements models use when they answer in HTML. Other
// angle-bracket words, Java generics such as List<String> in particular,
// do not count.
var knownTags = map[string]bool{
	"html": true, "body": true, "div": true, "span": true, "p": true, "br": true,
	"ul": true, "ol": true, "li": true, "code": true, "pre": true,
	"strong": true, "em": true, "b": true, "i": true, "u": true, "a": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"table": true, "thead": true, "tbody": true, "tr": true, "td": true, "th": true,
	"blockquote": true, "hr": true,
}

// unwantedTags are dropped before conversion.
var unwantedTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "meta": true, "link": true,
	"head": true, "iframe": true, "svg": true,
}

// ConvertIfHTML detects if the input is HTML and converts it to markdown if needed.
// Returns the converted text and a boolean indicating if conversion was performed.
func ConvertIfHTML(input string) (string, bool) {
	if !isHTML(input) {
		return input, false
	}

	log := logger.Global().WithPrefix("htmlconv")

	cleanedHTML, err := preprocessHTML(input)
	if err != nil {
		log.Warn("Failed to preprocess HTML: %v, using original", err)
		cleanedHTML = input
	}

	markdown, err := htmltomarkdown.ConvertString(cleanedHTML)
	if err != nil {
		log.Warn("Failed to convert HTML to markdown: %v", err)
		return input, false
	}

	markdown = cleanMarkdown(markdown)
	log.Debug("Converted HTML to markdown (%d -> %d bytes)", len(input), len(markdown))
	return markdown, true
}

// isHTML reports whether input looks like an HTML document or fragment.
func isHTML(input string) bool {
	trimmed := strings.TrimSpace(input)
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html") {
		return true
	}

	count := 0
	prose := inlineCodePattern.ReplaceAllString(input, "")
	for _, m := range htmlTagPattern.FindAllStringSubmatch(prose, -1) {
		if knownTags[strings.ToLower(m[1])] {
			count++
			if count >= htmlTagThreshold {
				return true
			}
		}
	}
	return false
}

// preprocessHTML parses input as a body fragment and removes non-content elements.
func preprocessHTML(input string) (string, error) {
	doc, err := html.Parse(strings.NewReader(input))
	if err != nil {
		return input, err
	}

	removeUnwantedNodes(doc)

	root := findBody(doc)
	if root == nil {
		root = doc
	}

	var buf bytes.Buffer
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return input, err
		}
	}
	return buf.String(), nil
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if body := findBody(c); body != nil {
			return body
		}
	}
	return nil
}

// removeUnwantedNodes recursively removes unwanted elements from the HTML tree
func removeUnwantedNodes(n *html.Node) {
	child := n.FirstChild
	for child != nil {
		next := child.NextSibling
		if child.Type == html.ElementNode && unwantedTags[child.Data] {
			n.RemoveChild(child)
		} else {
			removeUnwantedNodes(child)
		}
		child = next
	}
}

// cleanMarkdown collapses runs of blank lines and trims the result.
func cleanMarkdown(markdown string) string {
	markdown = multipleNewlines.ReplaceAllString(markdown, "\n\n")
	return strings.TrimSpace(markdown)
}
