package syntax

type wordSet map[string]struct{}

func newWordSet(words ...string) wordSet {
	set := make(wordSet, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func (s wordSet) has(word string) bool {
	_, ok := s[word]
	return ok
}

// javaKeywords holds reserved words, contextual keywords (including the module
// system and sealed hierarchies) and the literals true, false and null.
var javaKeywords = newWordSet(
	"abstract", "assert", "boolean", "break", "byte", "case", "catch", "char", "class", "const",
	"continue", "default", "do", "double", "else", "enum", "exports", "extends", "final", "finally", "float",
	"for", "goto", "if", "implements", "import", "instanceof", "int", "interface", "long", "module", "native",
	"new", "non-sealed", "opens", "package", "permits", "private", "protected", "public", "provides", "record", "requires",
	"return", "sealed", "short", "static", "strictfp", "super", "switch", "synchronized", "this", "throw",
	"throws", "to", "transient", "transitive", "try", "uses", "var", "void", "volatile", "while", "with", "yield",
	"true", "false", "null",
)

// javaKnownTypes is a heuristic list of commonly used JDK types. Matching is case-sensitive.
var javaKnownTypes = newWordSet(
	"String", "Integer", "Double", "Boolean", "List", "ArrayList", "LinkedList", "Map", "HashMap", "Set", "HashSet",
	"System", "Object", "Exception", "RuntimeException", "Thread", "Runnable", "Optional", "Stream", "File",
	"InputStream", "OutputStream", "Reader", "Writer", "URL", "Date", "Calendar", "BigDecimal", "BigInteger",
)

// IsKeyword reports whether word is a Java keyword or literal keyword.
func IsKeyword(word string) bool {
	return javaKeywords.has(word)
}

// IsKnownType reports whether word is one of the recognised JDK type names.
func IsKnownType(word string) bool {
	return javaKnownTypes.has(word)
}
