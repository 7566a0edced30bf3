package syntax

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// numberPattern matches hex, binary and decimal literals (integer, fractional or
// scientific) with their optional type suffix. It is anchored at the scan position.
var numberPattern = regexp.MustCompile(`^(?:0[xX][0-9a-fA-F]+[lL]?|0[bB][01]+[lL]?|(?:[0-9]+\.[0-9]*|\.[0-9]+)(?:[eE][-+]?[0-9]+)?[fFdD]?|[0-9]+(?:[eE][-+]?[0-9]+)?[fFdDlL]?)`)

// Tokenize splits Java source into classified tokens in a single left-to-right
// pass. At each position the matchers are tried in priority order: comments,
// string literals, annotations, then words (keywords, known types, calls) and
// numbers. Everything else accumulates into plain tokens.
//
// Concatenating the Text of the returned tokens yields src unchanged.
func Tokenize(src string) []Token {
	if src == "" {
		return nil
	}
	l := &lexer{src: src, unclosedComment: -1}
	l.run()
	return l.tokens
}

type lexer struct {
	src    string
	pos    int
	plain  int // start of the pending plain run
	tokens []Token

	// unclosedComment is the first "/*" position known to have no "*/" after
	// it, or -1. Every later opener is unterminated too.
	unclosedComment int
	// deadQuotes is where the last failed string scan stopped. Quotes before
	// it were escaped in that scan and cannot close either.
	deadQuotes int
}

func (l *lexer) run() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '/' && l.peek(1) == '*':
			if l.lexBlockComment() {
				continue
			}
		case c == '/' && l.peek(1) == '/':
			l.emit(CategoryComment, l.lineEnd(l.pos))
			continue
		case c == '"':
			if l.lexString() {
				continue
			}
		case c == '\'':
			if end, ok := l.charLiteralEnd(); ok {
				// Character literals stay plain, but their quotes must not open strings.
				l.pos = end
				continue
			}
		case c == '@':
			if l.lexAnnotation() {
				continue
			}
		case isDigit(c):
			if !l.lexNumber() {
				l.pos = l.wordEnd(l.pos)
			}
			continue
		case c == '.' && isDigit(l.peek(1)) && !l.afterWordByte():
			if l.lexNumber() {
				continue
			}
		case isIdentStart(c):
			l.lexWord()
			continue
		}
		l.pos++
	}
	l.flushPlain()
}

func (l *lexer) peek(offset int) byte {
	if l.pos+offset < len(l.src) {
		return l.src[l.pos+offset]
	}
	return 0
}

func (l *lexer) afterWordByte() bool {
	return l.pos > 0 && isWordByte(l.src[l.pos-1])
}

// emit closes the pending plain run and appends src[pos:end] as a token of cat.
func (l *lexer) emit(cat Category, end int) {
	l.flushPlain()
	l.tokens = append(l.tokens, Token{Category: cat, Text: l.src[l.pos:end]})
	l.pos = end
	l.plain = end
}

func (l *lexer) flushPlain() {
	if l.plain < l.pos {
		l.tokens = append(l.tokens, Token{Category: CategoryPlain, Text: l.src[l.plain:l.pos]})
	}
	l.plain = l.pos
}

func (l *lexer) lexBlockComment() bool {
	if l.unclosedComment >= 0 && l.pos >= l.unclosedComment {
		return false
	}
	end := strings.Index(l.src[l.pos+2:], "*/")
	if end < 0 {
		// Unterminated: not a comment.
		l.unclosedComment = l.pos
		return false
	}
	l.emit(CategoryComment, l.pos+2+end+2)
	return true
}

func (l *lexer) lineEnd(from int) int {
	if i := strings.IndexAny(l.src[from:], "\r\n"); i >= 0 {
		return from + i
	}
	return len(l.src)
}

// lexString consumes a double-quoted literal on a single line. Backslash
// escapes are skipped so an escaped quote does not terminate the literal.
//
// A scan that fails at position f only passed quotes that were escaped. A
// scan starting at such a quote resumes in step right after it and fails at
// f as well, so quotes before f are rejected without scanning again.
func (l *lexer) lexString() bool {
	if l.pos < l.deadQuotes {
		return false
	}
	for i := l.pos + 1; i < len(l.src); i++ {
		switch l.src[i] {
		case '\\':
			if i+1 >= len(l.src) || l.src[i+1] == '\n' {
				l.deadQuotes = i
				return false
			}
			i++
		case '\n':
			l.deadQuotes = i
			return false
		case '"':
			l.emit(CategoryString, i+1)
			return true
		}
	}
	l.deadQuotes = len(l.src)
	return false
}

// charLiteralEnd returns the end of a character literal such as 'a', '\n',
// '\'' or 'A' starting at the current position.
func (l *lexer) charLiteralEnd() (int, bool) {
	i := l.pos + 1
	if i >= len(l.src) {
		return 0, false
	}

	if l.src[i] == '\\' {
		j := i + 2
		for j < len(l.src) && j < i+8 && l.src[j] != '\'' && l.src[j] != '\n' {
			j++
		}
		if j < len(l.src) && l.src[j] == '\'' {
			return j + 1, true
		}
		return 0, false
	}

	if l.src[i] == '\n' || l.src[i] == '\'' {
		return 0, false
	}
	_, size := utf8.DecodeRuneInString(l.src[i:])
	if j := i + size; j < len(l.src) && l.src[j] == '\'' {
		return j + 1, true
	}
	return 0, false
}

func (l *lexer) lexAnnotation() bool {
	if !isIdentStart(l.peek(1)) {
		return false
	}
	l.emit(CategoryAnnotation, l.wordEnd(l.pos+1))
	return true
}

func (l *lexer) lexNumber() bool {
	m := numberPattern.FindStringIndex(l.src[l.pos:])
	if m == nil {
		return false
	}
	end := l.pos + m[1]

	// "1.length" is the literal 1 followed by member access.
	if l.src[end-1] == '.' && end < len(l.src) && isIdentStart(l.src[end]) {
		end--
	}
	if end <= l.pos || (end < len(l.src) && isWordByte(l.src[end])) {
		return false
	}

	l.emit(CategoryNumber, end)
	return true
}

func (l *lexer) lexWord() {
	end := l.wordEnd(l.pos)
	word := l.src[l.pos:end]

	if word == "non" && strings.HasPrefix(l.src[end:], "-sealed") {
		if after := end + len("-sealed"); after == len(l.src) || !isWordByte(l.src[after]) {
			l.emit(CategoryKeyword, after)
			return
		}
	}

	switch {
	case IsKeyword(word):
		l.emit(CategoryKeyword, end)
	case IsKnownType(word):
		l.emit(CategoryType, end)
	case !isUpper(word[0]) && l.followedByParen(end):
		l.emit(CategoryCall, end)
	default:
		// Plain identifier: extend the pending plain run.
		l.pos = end
	}
}

func (l *lexer) followedByParen(from int) bool {
	for i := from; i < len(l.src); i++ {
		if !isSpace(l.src[i]) {
			return l.src[i] == '('
		}
	}
	return false
}

func (l *lexer) wordEnd(from int) int {
	i := from
	for i < len(l.src) && isWordByte(l.src[i]) {
		i++
	}
	return i
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isUpper(c byte) bool {
	return c >= 'A' && c <= 'Z'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || isUpper(c)
}

func isWordByte(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
