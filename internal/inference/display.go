package inference

import (
	"strings"
	"unicode"
)

// FormatDisplayName turns snake_case, kebab-case or camelCase names into
// Title Case labels: "created_at" → "Created At", "dealValue" → "Deal Value".
// Words that are already all upper case are kept ("userID" → "User ID").
func FormatDisplayName(name string) string {
	words := splitWords(name)
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

func splitWords(name string) []string {
	var words []string
	var current []rune
	runes := []rune(name)

	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == '.' || unicode.IsSpace(r):
			flush()
		case unicode.IsUpper(r) && i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])):
			flush()
			current = append(current, r)
		default:
			current = append(current, r)
		}
	}
	flush()
	return words
}

func titleWord(w string) string {
	runes := []rune(w)
	allUpper := true
	for _, r := range runes {
		if unicode.IsLetter(r) && !unicode.IsUpper(r) {
			allUpper = false
			break
		}
	}
	if allUpper && len(runes) > 1 {
		return w
	}
	runes[0] = unicode.ToUpper(runes[0])
	for i := 1; i < len(runes); i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}
