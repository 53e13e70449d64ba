package metrics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/articlemetrics/internal/models"
	"github.com/amosWeiskopf/articlemetrics/pkg/lexicon"
)

// periodSegmenter splits on sentence-final punctuation so tests do not
// depend on the Punkt model
type periodSegmenter struct{}

func (periodSegmenter) Segment(text string) []string {
	var out []string
	for _, s := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	}) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func newTestCalculator(t *testing.T) *Calculator {
	t.Helper()
	c, err := New(lexicon.New("good", "great"), lexicon.New("bad"), WithSegmenter(periodSegmenter{}))
	require.NoError(t, err)
	return c
}

func TestAnalyzeEmptyText(t *testing.T) {
	c := newTestCalculator(t)

	for _, text := range []string{"", "   \n\t", "123 456 !!!"} {
		m := c.Analyze(text)
		assert.Zero(t, m.PositiveScore)
		assert.Zero(t, m.NegativeScore)
		assert.Zero(t, m.WordCount)
		assert.Zero(t, m.PolarityScore)
		assert.Zero(t, m.SubjectivityScore)
		assert.Zero(t, m.AverageWordLength)
		assert.Zero(t, m.PercentageComplexWords)
	}
}

func TestAnalyzeNoSentences(t *testing.T) {
	c := newTestCalculator(t)

	m := c.Analyze("")
	assert.Zero(t, m.SentenceCount)
	assert.Zero(t, m.AverageSentenceLength)
	assert.Zero(t, m.FogIndex)
}

func TestAnalyzeSentimentScores(t *testing.T) {
	c := newTestCalculator(t)

	m := c.Analyze("This is good and bad and bad")

	assert.Equal(t, 1, m.PositiveScore)
	assert.Equal(t, 2, m.NegativeScore)
	assert.Equal(t, 3, m.WordCount)
	assert.InDelta(t, -0.333333, m.PolarityScore, 1e-5)
	assert.InDelta(t, 1.0, m.SubjectivityScore, 1e-5)
}

func TestAnalyzeLexiconIsCaseInsensitive(t *testing.T) {
	c, err := New(lexicon.New("Good"), lexicon.New("BAD"), WithSegmenter(periodSegmenter{}))
	require.NoError(t, err)

	m := c.Analyze("GOOD things, Bad things.")
	assert.Equal(t, 1, m.PositiveScore)
	assert.Equal(t, 1, m.NegativeScore)
	assert.Zero(t, m.PolarityScore)
}

func TestAnalyzeAverageWordLength(t *testing.T) {
	c := newTestCalculator(t)

	// surviving tokens: good, bad, bad
	m := c.Analyze("This is good, and bad; and bad!")
	assert.InDelta(t, 10.0/3.0, m.AverageWordLength, 1e-9)
}

func TestAnalyzeReadability(t *testing.T) {
	c := newTestCalculator(t)

	m := c.Analyze("Readability analysis is complicated. Cats sleep.")

	// tokens: readability analysis complicated cats sleep
	assert.Equal(t, 5, m.WordCount)
	assert.Equal(t, 2, m.SentenceCount)
	assert.Equal(t, 3, m.ComplexWordCount)
	assert.InDelta(t, 2.5, m.AverageSentenceLength, 1e-9)
	assert.Equal(t, m.AverageSentenceLength, m.AverageWordsPerSentence)
	assert.InDelta(t, 60.0, m.PercentageComplexWords, 1e-9)
	assert.InDelta(t, 0.4*(2.5+60.0), m.FogIndex, 1e-9)
	assert.InDelta(t, 15.0/5.0, m.SyllablesPerWord, 1e-9)
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	c := newTestCalculator(t)
	text := "The extraordinary municipality deliberated. Everybody celebrated the unanimous resolution!"

	first := c.Analyze(text)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, c.Analyze(text))
	}
}

func TestAnalyzePersonalPronouns(t *testing.T) {
	c := newTestCalculator(t)

	m := c.Analyze("I think we should tell US officials about my plan and ours. Us too, and I'm sure.")
	// I, we, my, ours, Us, I('m); the country "US" is skipped
	assert.Equal(t, 6, m.PersonalPronouns)
	// pronouns are stopwords and never reach the token list
	assert.NotContains(t, Tokenize("I we my ours us", stopWordSet(englishStopWords)), "we")
}

func TestAnalyzeWithCustomStopWords(t *testing.T) {
	c, err := New(lexicon.New("good"), lexicon.New(), WithSegmenter(periodSegmenter{}), WithStopWords([]string{"Good"}))
	require.NoError(t, err)

	m := c.Analyze("this is good")
	assert.Zero(t, m.PositiveScore)
	assert.Equal(t, 2, m.WordCount)
}

func TestSummarize(t *testing.T) {
	c := newTestCalculator(t)
	text := "One. Two. Three. Four. Five. Six. Seven."

	assert.Equal(t, "One Two Three Four Five", c.Summarize(text, 5))
	assert.Equal(t, text, c.Summarize(text, 10))
	assert.Equal(t, text, c.Summarize(text, 0))
}

func TestPunktSegmenter(t *testing.T) {
	seg, err := NewPunktSegmenter()
	require.NoError(t, err)

	assert.Empty(t, seg.Segment(""))
	assert.Empty(t, seg.Segment("   "))
	assert.Len(t, seg.Segment("The cat sat on the mat. The dog barked loudly at it."), 2)
}

func TestNewWithDefaultSegmenter(t *testing.T) {
	c, err := New(lexicon.New("good"), lexicon.New("bad"))
	require.NoError(t, err)

	m := c.Analyze("The weather is good today. The traffic was bad.")
	assert.Equal(t, models.Metrics{
		PositiveScore:           1,
		NegativeScore:           1,
		PolarityScore:           0,
		SubjectivityScore:       m.SubjectivityScore,
		AverageSentenceLength:   m.AverageSentenceLength,
		PercentageComplexWords:  m.PercentageComplexWords,
		FogIndex:                m.FogIndex,
		AverageWordsPerSentence: m.AverageWordsPerSentence,
		ComplexWordCount:        m.ComplexWordCount,
		WordCount:               5,
		SyllablesPerWord:        m.SyllablesPerWord,
		PersonalPronouns:        0,
		AverageWordLength:       m.AverageWordLength,
		SentenceCount:           2,
	}, m)
}
