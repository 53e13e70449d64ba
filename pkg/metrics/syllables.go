package metrics

import (
	"regexp"
	"strings"

	"github.com/mtso/syllables"
)

// ComplexWordSyllables is the syllable count at which a word is complex
const ComplexWordSyllables = 3

// silent "es"/"ed" endings keep their syllable after these stems
var voicedEndings = []string{
	"tes", "des", "ses", "zes", "ces", "ges", "xes", "shes", "ches",
	"ted", "ded",
}

// hiatusPatterns match vowel pairs that are pronounced as two syllables,
// as in "idea", "video", "radio" or "situation". Each match adds one.
var hiatusPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[^ct]ia`),
	regexp.MustCompile(`[^cgnst]io`),
	regexp.MustCompile(`[^gp]eo`),
	regexp.MustCompile(`[^gq]ua`),
	regexp.MustCompile(`iu`),
	regexp.MustCompile(`iet`),
	regexp.MustCompile(`^scien`),
	regexp.MustCompile(`^crea[tl]`),
	regexp.MustCompile(`^reac[^h]`),
	regexp.MustCompile(`[aeiouy][^aeiouy]ea$`),
}

// CountSyllables returns the number of syllables in an English word: the
// larger of the exception-list count from the syllables package and the
// vowel-group estimate. The result is at least 1 for any non-empty word.
func CountSyllables(word string) int {
	w := strings.ToLower(word)
	if w == "" {
		return 0
	}

	count := estimateSyllables(w)
	if n := syllables.In(w); n > count {
		count = n
	}
	return count
}

// estimateSyllables counts vowel groups in a lowercase word, discounts
// silent endings and splits known hiatus pairs
func estimateSyllables(w string) int {
	runes := []rune(w)
	count := 0
	prevVowel := false
	for _, r := range runes {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}

	n := len(runes)
	switch {
	case n >= 2 && runes[n-1] == 'e' && !isVowel(runes[n-2]):
		// a trailing consonant+"le" is voiced unless a vowel precedes it
		consonantLE := runes[n-2] == 'l' && n >= 3 && !isVowel(runes[n-3])
		if !consonantLE && count > 1 {
			count--
		}
	case strings.HasSuffix(w, "es") || strings.HasSuffix(w, "ed"):
		if count > 1 && !hasAnySuffix(w, voicedEndings) {
			count--
		}
	}

	for _, re := range hiatusPatterns {
		count += len(re.FindAllStringIndex(w, -1))
	}

	if count == 0 {
		count = 1
	}
	return count
}

// IsComplex reports whether word has at least ComplexWordSyllables syllables
func IsComplex(word string) bool {
	return CountSyllables(word) >= ComplexWordSyllables
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}
