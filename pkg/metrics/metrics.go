// Package metrics computes readability and sentiment statistics over
// article text: lexicon-based positive/negative scores, polarity and
// subjectivity, sentence and word lengths, complex-word density, the Gunning
// Fog index and personal pronoun counts.
package metrics

import (
	"strings"
	"unicode/utf8"

	"github.com/amosWeiskopf/articlemetrics/internal/models"
	"github.com/amosWeiskopf/articlemetrics/pkg/lexicon"
)

// epsilon keeps the score ratios finite when both counts are zero
const epsilon = 0.000001

// personalPronouns are matched case-insensitively; the exact token "US"
// is the country and is not counted
var personalPronouns = map[string]struct{}{
	"i": {}, "we": {}, "my": {}, "ours": {}, "us": {},
}

// Calculator scores text against a fixed pair of lexicons. It holds no
// mutable state and is safe to reuse across texts.
type Calculator struct {
	positive  *lexicon.Lexicon
	negative  *lexicon.Lexicon
	stopWords map[string]struct{}
	segmenter Segmenter
}

// Option configures a Calculator
type Option func(*Calculator)

// WithStopWords replaces the default English stopword list
func WithStopWords(words []string) Option {
	return func(c *Calculator) {
		c.stopWords = stopWordSet(words)
	}
}

// WithSegmenter replaces the default Punkt sentence segmenter
func WithSegmenter(s Segmenter) Option {
	return func(c *Calculator) {
		c.segmenter = s
	}
}

// New creates a Calculator for the given positive and negative lexicons
func New(positive, negative *lexicon.Lexicon, opts ...Option) (*Calculator, error) {
	c := &Calculator{
		positive:  positive,
		negative:  negative,
		stopWords: stopWordSet(englishStopWords),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.segmenter == nil {
		seg, err := NewPunktSegmenter()
		if err != nil {
			return nil, err
		}
		c.segmenter = seg
	}

	return c, nil
}

// Analyze computes the metrics record for text
func (c *Calculator) Analyze(text string) models.Metrics {
	tokens := Tokenize(text, c.stopWords)
	sentences := c.segmenter.Segment(text)

	var m models.Metrics
	m.WordCount = len(tokens)
	m.SentenceCount = len(sentences)

	var chars, syllables int
	for _, token := range tokens {
		if c.positive.Contains(token) {
			m.PositiveScore++
		}
		if c.negative.Contains(token) {
			m.NegativeScore++
		}

		n := CountSyllables(token)
		syllables += n
		if n >= ComplexWordSyllables {
			m.ComplexWordCount++
		}
		chars += utf8.RuneCountInString(token)
	}

	pos, neg := float64(m.PositiveScore), float64(m.NegativeScore)
	m.PolarityScore = (pos - neg) / ((pos + neg) + epsilon)
	m.SubjectivityScore = (pos + neg) / (float64(m.WordCount) + epsilon)

	if m.SentenceCount > 0 {
		m.AverageSentenceLength = float64(m.WordCount) / float64(m.SentenceCount)
	}
	m.AverageWordsPerSentence = m.AverageSentenceLength

	if m.WordCount > 0 {
		m.PercentageComplexWords = float64(m.ComplexWordCount) / float64(m.WordCount) * 100
		m.AverageWordLength = float64(chars) / float64(m.WordCount)
		m.SyllablesPerWord = float64(syllables) / float64(m.WordCount)
	}

	m.FogIndex = 0.4 * (m.AverageSentenceLength + m.PercentageComplexWords)
	m.PersonalPronouns = CountPersonalPronouns(text)

	return m
}

// Summarize returns the first n sentences of text joined by spaces, or
// text itself when it has no more than n sentences
func (c *Calculator) Summarize(text string, n int) string {
	if n <= 0 {
		return text
	}
	sentences := c.segmenter.Segment(text)
	if len(sentences) <= n {
		return text
	}
	return strings.Join(sentences[:n], " ")
}

// CountPersonalPronouns counts I, we, my, ours and us in the raw text,
// before stopword removal
func CountPersonalPronouns(text string) int {
	count := 0
	for _, word := range Words(text) {
		if word == "US" {
			continue
		}
		if _, ok := personalPronouns[strings.ToLower(word)]; ok {
			count++
		}
	}
	return count
}
