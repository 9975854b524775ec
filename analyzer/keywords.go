package analyzer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ExtractKeywords returns the lowercase words of title longer than three
// characters, in order and without duplicates.
func ExtractKeywords(title string) []string {
	seen := make(map[string]bool)
	var keywords []string
	for _, token := range strings.Fields(strings.ToLower(title)) {
		token = strings.TrimFunc(token, isPunct)
		if utf8.RuneCountInString(token) <= 3 || seen[token] {
			continue
		}
		seen[token] = true
		keywords = append(keywords, token)
	}
	return keywords
}

// ContainsAnyKeyword reports whether text contains at least one keyword as a
// whole word, ignoring case.
func ContainsAnyKeyword(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if countWholeWord(lower, kw) > 0 {
			return true
		}
	}
	return false
}

// countWholeWord counts occurrences of word in text that are not part of a
// longer word. Both arguments must already be lowercase.
func countWholeWord(text, word string) int {
	if word == "" {
		return 0
	}
	count := 0
	for offset := 0; offset < len(text); {
		i := strings.Index(text[offset:], word)
		if i < 0 {
			break
		}
		start := offset + i
		end := start + len(word)

		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if (start == 0 || !isWordRune(before)) && (end == len(text) || !isWordRune(after)) {
			count++
		}
		offset = start + 1
	}
	return count
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func isPunct(r rune) bool {
	return !isWordRune(r)
}
