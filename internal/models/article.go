package models

import "time"

// InputRow is one (URL_ID, URL) pair read from the input sheet
type InputRow struct {
	ProcessingNo int    `json:"processing_no"`
	ID           string `json:"url_id"`
	URL          string `json:"url"`
}

// Article is the rendered page content returned by a fetcher
type Article struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Metrics holds the readability and sentiment statistics of one text
type Metrics struct {
	PositiveScore           int     `json:"positive_score" yaml:"positive_score"`
	NegativeScore           int     `json:"negative_score" yaml:"negative_score"`
	PolarityScore           float64 `json:"polarity_score" yaml:"polarity_score"`
	SubjectivityScore       float64 `json:"subjectivity_score" yaml:"subjectivity_score"`
	AverageSentenceLength   float64 `json:"average_sentence_length" yaml:"average_sentence_length"`
	PercentageComplexWords  float64 `json:"percentage_complex_words" yaml:"percentage_complex_words"`
	FogIndex                float64 `json:"fog_index" yaml:"fog_index"`
	AverageWordsPerSentence float64 `json:"average_words_per_sentence" yaml:"average_words_per_sentence"`
	ComplexWordCount        int     `json:"complex_word_count" yaml:"complex_word_count"`
	WordCount               int     `json:"word_count" yaml:"word_count"`
	SyllablesPerWord        float64 `json:"syllables_per_word" yaml:"syllables_per_word"`
	PersonalPronouns        int     `json:"personal_pronouns" yaml:"personal_pronouns"`
	AverageWordLength       float64 `json:"average_word_length" yaml:"average_word_length"`
	SentenceCount           int     `json:"sentence_count" yaml:"sentence_count"`
}

// MetricsRow is one output row, keyed by the input row's URL_ID
type MetricsRow struct {
	ProcessingNo int     `json:"processing_no" yaml:"processing_no"`
	ID           string  `json:"url_id" yaml:"url_id"`
	URL          string  `json:"url" yaml:"url"`
	Title        string  `json:"title" yaml:"title"`
	Summary      string  `json:"summary,omitempty" yaml:"summary,omitempty"`
	Metrics      Metrics `json:"metrics" yaml:"metrics"`
	Error        string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the row records a fetch failure instead of metrics
func (r MetricsRow) Failed() bool {
	return r.Error != ""
}

// Failure describes an input row that produced no metrics
type Failure struct {
	ProcessingNo int    `json:"processing_no" yaml:"processing_no"`
	ID           string `json:"url_id" yaml:"url_id"`
	URL          string `json:"url" yaml:"url"`
	Reason       string `json:"reason" yaml:"reason"`
}

// RunResult contains the results of one pipeline run
type RunResult struct {
	RunID      string       `json:"run_id" yaml:"run_id"`
	StartedAt  time.Time    `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time    `json:"finished_at" yaml:"finished_at"`
	Total      int          `json:"total" yaml:"total"`
	Rows       []MetricsRow `json:"rows" yaml:"rows"`
	Failures   []Failure    `json:"failures" yaml:"failures"`
}

// Succeeded returns the number of rows that carry metrics
func (r *RunResult) Succeeded() int {
	n := 0
	for _, row := range r.Rows {
		if !row.Failed() {
			n++
		}
	}
	return n
}
