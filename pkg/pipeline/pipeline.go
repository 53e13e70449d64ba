// Package pipeline drives a run: it fetches each input URL in file order,
// scores the article text and collects one metrics row per article.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/amosWeiskopf/articlemetrics/internal/models"
	"github.com/amosWeiskopf/articlemetrics/pkg/fetcher"
)

// Analyzer scores article text
type Analyzer interface {
	Analyze(text string) models.Metrics
	Summarize(text string, n int) string
}

// Options contains configuration for a run
type Options struct {
	// SummarySentences is the number of leading sentences kept as the row
	// summary; 0 disables summaries
	SummarySentences int

	// RecordFailures keeps a row with an Error cell for every URL that
	// could not be fetched instead of dropping it
	RecordFailures bool

	// OnRow is called after each row is appended
	OnRow func(models.MetricsRow)
}

// Pipeline processes input rows one at a time. The fetcher is owned by the
// caller, which must close it when the run is over.
type Pipeline struct {
	fetcher  fetcher.Fetcher
	analyzer Analyzer
	opts     Options
	logger   *log.Logger
}

// New creates a Pipeline
func New(f fetcher.Fetcher, a Analyzer, opts Options, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Pipeline{
		fetcher:  f,
		analyzer: a,
		opts:     opts,
		logger:   logger,
	}
}

// Run fetches and scores every row sequentially. A failed fetch is logged
// and the run continues. When ctx is canceled Run stops before the next row
// and returns the partial result together with the context error.
func (p *Pipeline) Run(ctx context.Context, rows []models.InputRow) (*models.RunResult, error) {
	result := &models.RunResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Total:     len(rows),
		Rows:      []models.MetricsRow{},
		Failures:  []models.Failure{},
	}
	defer func() {
		result.FinishedAt = time.Now()
	}()

	for _, in := range rows {
		if err := ctx.Err(); err != nil {
			p.logger.Printf("Run %s stopped after %d of %d URLs: %v", result.RunID, in.ProcessingNo-1, len(rows), err)
			return result, err
		}

		p.logger.Printf("Processing No: %d | URL_ID: %s | URL: %s", in.ProcessingNo, in.ID, in.URL)

		row, err := p.process(ctx, in)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			p.logger.Printf("Skipped %s (URL_ID %s): %v", in.URL, in.ID, err)
			result.Failures = append(result.Failures, models.Failure{
				ProcessingNo: in.ProcessingNo,
				ID:           in.ID,
				URL:          in.URL,
				Reason:       err.Error(),
			})
			if !p.opts.RecordFailures {
				continue
			}
			row = models.MetricsRow{
				ProcessingNo: in.ProcessingNo,
				ID:           in.ID,
				URL:          in.URL,
				Error:        err.Error(),
			}
		}

		result.Rows = append(result.Rows, row)
		if p.opts.OnRow != nil {
			p.opts.OnRow(row)
		}
	}

	p.logger.Printf("Run %s complete: %d of %d URLs scored", result.RunID, result.Succeeded(), len(rows))
	return result, nil
}

func (p *Pipeline) process(ctx context.Context, in models.InputRow) (models.MetricsRow, error) {
	article, err := p.fetcher.Fetch(ctx, in.URL)
	if err != nil {
		return models.MetricsRow{}, err
	}
	if article == nil || strings.TrimSpace(article.Text) == "" {
		return models.MetricsRow{}, fmt.Errorf("fetch %s: %w", in.URL, fetcher.ErrEmptyArticle)
	}

	row := models.MetricsRow{
		ProcessingNo: in.ProcessingNo,
		ID:           in.ID,
		URL:          in.URL,
		Title:        article.Title,
		Metrics:      p.analyzer.Analyze(article.Text),
	}
	if p.opts.SummarySentences > 0 {
		row.Summary = p.analyzer.Summarize(article.Text, p.opts.SummarySentences)
	}
	return row, nil
}
