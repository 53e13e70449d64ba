package metrics

import (
	"fmt"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// Segmenter splits raw text into sentences
type Segmenter interface {
	Segment(text string) []string
}

// PunktSegmenter detects sentence boundaries with the Punkt model trained
// for English, which knows common abbreviations and initials
type PunktSegmenter struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

// NewPunktSegmenter loads the bundled English Punkt model
func NewPunktSegmenter() (*PunktSegmenter, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("load english sentence model: %w", err)
	}
	return &PunktSegmenter{tokenizer: tokenizer}, nil
}

// Segment returns the non-blank sentences of text
func (p *PunktSegmenter) Segment(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var out []string
	for _, s := range p.tokenizer.Tokenize(text) {
		if sentence := strings.TrimSpace(s.Text); sentence != "" {
			out = append(out, sentence)
		}
	}
	return out
}
