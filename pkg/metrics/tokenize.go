package metrics

import (
	"strings"
	"unicode"
)

// contraction suffixes split off the way the Treebank word tokenizer does
var contractionSuffixes = []string{"n't", "'s", "'re", "'ve", "'ll", "'d", "'m"}

// Words splits text into alphabetic word tokens, preserving case.
// Punctuation is split off each whitespace-separated field and tokens
// that still contain non-letters (numbers, URLs, hyphenated compounds)
// are dropped.
func Words(text string) []string {
	fields := strings.FieldsFunc(text, isSeparator)
	words := make([]string, 0, len(fields))

	for _, field := range fields {
		field = strings.ReplaceAll(field, "’", "'")
		field = strings.TrimFunc(field, isEdgePunct)
		field = stripContraction(field)
		if isAlpha(field) {
			words = append(words, field)
		}
	}

	return words
}

// Tokenize lowercases text, splits it into words, keeps only alphabetic
// tokens and drops stopwords
func Tokenize(text string, stopWords map[string]struct{}) []string {
	words := Words(strings.ToLower(text))
	filtered := words[:0]

	for _, word := range words {
		if _, stop := stopWords[word]; !stop {
			filtered = append(filtered, word)
		}
	}

	return filtered
}

func stripContraction(word string) string {
	lower := strings.ToLower(word)
	for _, suffix := range contractionSuffixes {
		if len(lower) > len(suffix) && strings.HasSuffix(lower, suffix) {
			return strings.TrimFunc(word[:len(word)-len(suffix)], isEdgePunct)
		}
	}
	return word
}

func isSeparator(r rune) bool {
	switch r {
	case '—', '–', '…', '/':
		return true
	}
	return unicode.IsSpace(r)
}

func isEdgePunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

func isAlpha(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func stopWordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}
