package document

import (
	"strings"
	"unicode"

	"github.com/tmc/langchaingo/schema"
)

// EstimateTokens gives a rough WordPiece-style token count for text: words of
// up to four characters count as one token, longer words one per four
// characters, and each digit of a number counts on its own. It is only meant
// for reporting, not for enforcing model limits.
func EstimateTokens(text string) int {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}

	count := 0
	for _, word := range words {
		count += wordTokens(word)
	}
	return count
}

// EstimateDocumentTokens sums EstimateTokens over docs.
func EstimateDocumentTokens(docs []schema.Document) int {
	total := 0
	for _, d := range docs {
		total += EstimateTokens(d.PageContent)
	}
	return total
}

func wordTokens(word string) int {
	runes := []rune(word)
	if len(runes) == 1 && unicode.IsPunct(runes[0]) {
		return 1
	}
	if isNumeric(runes) {
		return len(runes)
	}
	if len(runes) <= 4 {
		return 1
	}
	return (len(runes) + 3) / 4
}

func isNumeric(runes []rune) bool {
	digits := 0
	for _, r := range runes {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '.' || r == ',':
		default:
			return false
		}
	}
	return digits > 0
}
