package highlight

import "strings"

// DefaultClassName is the class of the element wrapping highlighted text.
const DefaultClassName = "highlighted-text"

// replacer escapes in a single pass, so ampersands introduced by the other
// replacements are never escaped twice.
var replacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// EscapeHTML neutralizes &, <, > and " for embedding s in element content.
func EscapeHTML(s string) string {
	return replacer.Replace(s)
}

// Markup wraps already escaped text in a highlight element with the given class.
func Markup(escaped, className string) string {
	if className == "" {
		className = DefaultClassName
	}
	var sb strings.Builder
	sb.Grow(len(escaped) + len(className) + 28)
	sb.WriteString(`<span class="`)
	sb.WriteString(EscapeHTML(className))
	sb.WriteString(`">`)
	sb.WriteString(escaped)
	sb.WriteString(`</span>`)
	return sb.String()
}
