package syntax

// Category is the lexical class assigned to a span of Java source.
type Category int

const (
	// CategoryPlain is text that receives no styling
	CategoryPlain Category = iota
	// CategoryComment covers block and line comments
	CategoryComment
	// CategoryString covers double-quoted string literals
	CategoryString
	// CategoryAnnotation covers @Identifier tokens
	CategoryAnnotation
	// CategoryKeyword covers reserved words, contextual keywords and true/false/null
	CategoryKeyword
	// CategoryType covers well-known JDK type names
	CategoryType
	// CategoryNumber covers numeric literals
	CategoryNumber
	// CategoryCall covers lowercase identifiers directly followed by '('
	CategoryCall
)

// String returns the category name
func (c Category) String() string {
	switch c {
	case CategoryPlain:
		return "plain"
	case CategoryComment:
		return "comment"
	case CategoryString:
		return "string"
	case CategoryAnnotation:
		return "annotation"
	case CategoryKeyword:
		return "keyword"
	case CategoryType:
		return "type"
	case CategoryNumber:
		return "number"
	case CategoryCall:
		return "call"
	default:
		return "unknown"
	}
}

// CSS classes used by the HTML renderer. They match the palette of the web UI.
const (
	classComment    = "text-gray-500 italic"
	classString     = "text-green-400"
	classAnnotation = "text-yellow-400"
	classKeyword    = "text-sky-400 font-semibold"
	classType       = "text-cyan-400"
	classNumber     = "text-orange-400"
	classCall       = "text-white"
)

// Class returns the CSS class list for the category, or "" for plain text.
func (c Category) Class() string {
	switch c {
	case CategoryComment:
		return classComment
	case CategoryString:
		return classString
	case CategoryAnnotation:
		return classAnnotation
	case CategoryKeyword:
		return classKeyword
	case CategoryType:
		return classType
	case CategoryNumber:
		return classNumber
	case CategoryCall:
		return classCall
	default:
		return ""
	}
}

// Token is a classified slice of the original source. Text is never escaped.
type Token struct {
	Category Category
	Text     string
}
