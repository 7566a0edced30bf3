package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

// jsonFenceRegex matches the first fenced block, with or without a language tag.
var jsonFenceRegex = regexp.MustCompile("(?s)```[A-Za-z]*[ \\t]*\\r?\\n?(.*?)```")

// CleanLLMJSONResponse strips the wrapping models like to add around JSON:
// Markdown fences (```json or ```), one outer XML-style tag, and whitespace.
func CleanLLMJSONResponse(response string) string {
	response = strings.TrimSpace(response)

	if m := jsonFenceRegex.FindStringSubmatch(response); m != nil {
		response = strings.TrimSpace(m[1])
	} else {
		// an opening fence the model never closed
		response = strings.TrimPrefix(response, "```json")
		response = strings.TrimPrefix(response, "```")
		response = strings.TrimSpace(response)
	}

	return strings.TrimSpace(extractFromXMLTags(response))
}

// extractFromXMLTags returns the body of the outermost tag when the whole
// text is wrapped in one, e.g. <result kind="json">{...}</result>.
func extractFromXMLTags(content string) string {
	if !strings.HasPrefix(content, "<") {
		return content
	}

	openEnd := strings.Index(content, ">")
	if openEnd == -1 {
		return content
	}

	tagName, _, _ := strings.Cut(content[1:openEnd], " ")
	if tagName == "" || strings.HasPrefix(tagName, "/") {
		return content
	}

	closingTag := "</" + tagName + ">"
	if !strings.HasSuffix(content, closingTag) {
		return content
	}

	closeStart := len(content) - len(closingTag)
	if closeStart <= openEnd {
		return content
	}
	return content[openEnd+1 : closeStart]
}

// ParseLLMJSONResponse decodes a model reply into target. It tries the
// cleaned reply first and then the first balanced JSON object inside it.
func ParseLLMJSONResponse(response string, target any) error {
	cleaned := CleanLLMJSONResponse(response)
	if err := json.Unmarshal([]byte(cleaned), target); err == nil {
		return nil
	}
	return ExtractJSON(response, target)
}

// ExtractJSON finds the first balanced {...} object in response that decodes
// into target. Braces inside JSON strings are ignored while scanning.
func ExtractJSON(response string, target any) error {
	for start := strings.IndexByte(response, '{'); start >= 0; {
		end := matchingBrace(response, start)
		if end < 0 {
			break
		}
		if err := json.Unmarshal([]byte(response[start:end+1]), target); err == nil {
			return nil
		}

		next := strings.IndexByte(response[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}

	return &JSONParseError{Response: response, Message: "could not parse JSON object"}
}

// matchingBrace returns the index of the brace closing the one at start, or -1.
func matchingBrace(s string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// JSONParseError represents an error that occurred while parsing LLM JSON response.
type JSONParseError struct {
	Response string
	Message  string
}

func (e *JSONParseError) Error() string {
	return e.Message + ": " + TruncateForError(e.Response, 200)
}

// TruncateForError shortens value to limit runes for error messages.
func TruncateForError(value string, limit int) string {
	value = strings.TrimSpace(value)
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit]) + "..."
}
