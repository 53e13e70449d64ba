package extractor

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/markusmobius/go-trafilatura"
)

// DefaultTitle is used when a page has no usable <title>
const DefaultTitle = "No Title"

// Extractor handles article extraction from rendered HTML
type Extractor struct {
	// ParagraphSelector selects the text nodes joined into the body
	ParagraphSelector string

	// FallbackToMainContent enables trafilatura when no paragraph has text
	FallbackToMainContent bool
}

// New creates a new Extractor instance
func New() *Extractor {
	return &Extractor{
		ParagraphSelector:     "p",
		FallbackToMainContent: true,
	}
}

// Extract returns the page title and the text of all paragraphs joined by
// single spaces
func (e *Extractor) Extract(htmlContent []byte, pageURL string) (title, text string, err error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlContent))
	if err != nil {
		return "", "", fmt.Errorf("parse html: %w", err)
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = DefaultTitle
	}

	text = JoinParagraphs(doc.Find(e.ParagraphSelector).Map(func(_ int, s *goquery.Selection) string {
		return s.Text()
	}))

	if text == "" && e.FallbackToMainContent {
		text, err = e.ExtractMainContent(htmlContent, pageURL)
		if err != nil {
			return title, "", err
		}
	}

	return title, text, nil
}

// ExtractMainContent extracts the main article text using trafilatura
func (e *Extractor) ExtractMainContent(htmlContent []byte, pageURL string) (string, error) {
	opts := trafilatura.Options{}
	if pageURL != "" {
		opts.OriginalURL = parseURL(pageURL)
	}

	result, err := trafilatura.Extract(bytes.NewReader(htmlContent), opts)
	if err != nil {
		return "", fmt.Errorf("extract main content: %w", err)
	}
	if result == nil {
		return "", nil
	}
	return CleanText(result.ContentText), nil
}

// JoinParagraphs trims each paragraph, drops blank ones and joins the rest
// with single spaces
func JoinParagraphs(paragraphs []string) string {
	kept := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// CleanText collapses runs of whitespace and trims the result
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func parseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		return nil
	}
	return u
}
