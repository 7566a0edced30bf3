package syntax

import (
	"regexp"
	"strings"
)

// codeBlockRegex matches markdown fenced code blocks with optional language specifier
// Format: ```language\ncode\n``` or ```\ncode\n```
var codeBlockRegex = regexp.MustCompile("(?s)```([\\w+-]*)[ \\t]*\\r?\\n(.*?)```")

// ExtractCodeBlock returns the body of the first fenced block in text,
// preferring a Java fence when several are present. Text without fences is
// returned trimmed. Models frequently wrap generated code in fences even when
// asked for raw source.
func ExtractCodeBlock(text string) string {
	matches := codeBlockRegex.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return strings.TrimSpace(text)
	}

	chosen := matches[0]
	for _, m := range matches {
		if isJavaFence(m[1]) {
			chosen = m
			break
		}
	}
	return strings.TrimRight(chosen[2], " \t\r\n")
}

// HighlightMarkdownCodeBlocks finds all code blocks in markdown and applies syntax highlighting
func (h *Highlighter) HighlightMarkdownCodeBlocks(markdown string) string {
	return codeBlockRegex.ReplaceAllStringFunc(markdown, func(match string) string {
		submatch := codeBlockRegex.FindStringSubmatch(match)
		if len(submatch) < 3 {
			return match
		}

		language := submatch[1]
		code := submatch[2]

		if language == "" || !h.Supports(language) {
			return match
		}

		highlighted, err := h.Highlight(code, language)
		if err != nil {
			return match
		}

		return "```" + language + "\n" + highlighted + "```"
	})
}

// Segment is a run of markdown text or the body of one fenced block.
type Segment struct {
	Text     string
	Language string
	Fenced   bool
}

// SplitCodeBlocks cuts markdown into prose and fenced-block segments in
// document order. Fence markers are dropped from fenced segments.
func SplitCodeBlocks(markdown string) []Segment {
	var segments []Segment
	last := 0
	for _, loc := range codeBlockRegex.FindAllStringSubmatchIndex(markdown, -1) {
		if loc[0] > last {
			segments = append(segments, Segment{Text: markdown[last:loc[0]]})
		}
		segments = append(segments, Segment{
			Text:     strings.TrimRight(markdown[loc[4]:loc[5]], "\r\n"),
			Language: strings.ToLower(markdown[loc[2]:loc[3]]),
			Fenced:   true,
		})
		last = loc[1]
	}
	if last < len(markdown) {
		segments = append(segments, Segment{Text: markdown[last:]})
	}
	return segments
}

// IsJavaLanguage reports whether a fence tag names Java.
func IsJavaLanguage(tag string) bool {
	return isJavaFence(tag)
}
