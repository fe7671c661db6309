package textsim

import (
	"strings"
	"unicode"
)

// ContainsWord reports whether word occurs in text with no letter or digit
// directly before or after it. Unlike \b this also works for terms such as
// "c++" and "c#" that end in punctuation. Both arguments are compared as is,
// callers lowercase them when needed.
func ContainsWord(text, word string) bool {
	if word == "" {
		return false
	}
	for offset := 0; offset < len(text); {
		idx := strings.Index(text[offset:], word)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(word)
		if !isWordRune(lastRune(text[:start])) && !isWordRune(firstRune(text[end:])) {
			return true
		}
		offset = start + 1
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func lastRune(s string) rune {
	if s == "" {
		return 0
	}
	r := []rune(s)
	return r[len(r)-1]
}
