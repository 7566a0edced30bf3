package syntax

import (
	"path/filepath"
	"strings"
)

// DetectLanguage determines the language name from a file path. Only the
// names understood by Highlighter and the fence helpers are returned; anything
// else yields "".
func DetectLanguage(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".java":
		return "java"
	case ".jsh":
		return "jshell"
	case ".md", ".markdown":
		return "markdown"
	}
	return ""
}

// isJavaFence reports whether a fenced code block language tag denotes Java.
func isJavaFence(tag string) bool {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "java", "jshell":
		return true
	}
	return false
}
