// Package server exposes the analysis pipeline as a small upload-and-download
// web dashboard.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"

	"github.com/amosWeiskopf/articlemetrics/internal/config"
	"github.com/amosWeiskopf/articlemetrics/internal/models"
	"github.com/amosWeiskopf/articlemetrics/pkg/fetcher"
	"github.com/amosWeiskopf/articlemetrics/pkg/lexicon"
	"github.com/amosWeiskopf/articlemetrics/pkg/metrics"
	"github.com/amosWeiskopf/articlemetrics/pkg/pipeline"
	"github.com/amosWeiskopf/articlemetrics/pkg/reporter"
	"github.com/amosWeiskopf/articlemetrics/pkg/spreadsheet"
)

// OutputFilename is the download name of spreadsheet results
const OutputFilename = "Output_Data_Structure"

// FetcherFactory opens a fetcher for one run
type FetcherFactory func(ctx context.Context) (fetcher.Fetcher, error)

// Server handles dashboard requests. Runs are serialized so that only one
// browser instance fetches at a time.
type Server struct {
	cfg        *config.Config
	newFetcher FetcherFactory
	reporter   *reporter.Reporter
	logger     *log.Logger
	runMu      sync.Mutex
	engine     *gin.Engine
}

// ErrorResponse is the body of every failed API call
type ErrorResponse struct {
	Error string `json:"error"`
}

// New creates the server and registers its routes
func New(cfg *config.Config, newFetcher FetcherFactory, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	s := &Server{
		cfg:        cfg,
		newFetcher: newFetcher,
		reporter:   reporter.New(),
		logger:     logger,
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())
	engine.MaxMultipartMemory = cfg.Server.MaxUploadMB << 20

	engine.GET("/", s.index)
	engine.GET("/healthz", s.health)
	api := engine.Group("/api/v1")
	api.POST("/analyze", s.analyze)

	s.engine = engine
	return s
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is canceled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("Dashboard listening on http://%s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Printf("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Millisecond))
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexPage)
}

// analyze runs the pipeline over uploaded files. The multipart form must
// carry "input" (.xlsx or .csv), "positive" and "negative" files.
func (s *Server) analyze(c *gin.Context) {
	format := c.DefaultQuery("format", string(spreadsheet.XLSX))
	if !validFormat(format) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("unsupported format %q", format)})
		return
	}

	maxBytes := s.cfg.Server.MaxUploadMB << 20
	if c.Request.ContentLength > maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: fmt.Sprintf("upload exceeds %d MB", s.cfg.Server.MaxUploadMB)})
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	if err := c.Request.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: fmt.Sprintf("upload exceeds %d MB", s.cfg.Server.MaxUploadMB)})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid multipart form: %v", err)})
		return
	}

	rows, positive, negative, err := s.readUploads(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	calc, err := metrics.New(positive, negative)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	result, err := s.run(c.Request.Context(), rows, calc)
	if err != nil {
		s.logger.Printf("Run failed: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.Header("X-Run-ID", result.RunID)

	switch format {
	case string(spreadsheet.XLSX), string(spreadsheet.CSV):
		var buf bytes.Buffer
		if err := spreadsheet.WriteResults(&buf, spreadsheet.Format(format), result.Rows); err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
			return
		}
		contentType := "text/csv; charset=utf-8"
		if format == string(spreadsheet.XLSX) {
			contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, OutputFilename, format))
		c.Data(http.StatusOK, contentType, buf.Bytes())
	default:
		out, err := s.reporter.Generate(result, format)
		if err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
			return
		}
		c.Data(http.StatusOK, reporter.ContentType(format), []byte(out))
	}
}

func (s *Server) run(ctx context.Context, rows []models.InputRow, calc *metrics.Calculator) (*models.RunResult, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	f, err := s.newFetcher(ctx)
	if err != nil {
		return nil, fmt.Errorf("open fetcher: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Printf("Close fetcher: %v", err)
		}
	}()

	p := pipeline.New(f, calc, pipeline.Options{
		SummarySentences: s.cfg.Analysis.SummarySentences,
		RecordFailures:   s.cfg.Analysis.RecordFailures,
	}, s.logger)
	return p.Run(ctx, rows)
}

func (s *Server) readUploads(c *gin.Context) ([]models.InputRow, *lexicon.Lexicon, *lexicon.Lexicon, error) {
	inputHeader, err := c.FormFile("input")
	if err != nil {
		return nil, nil, nil, errors.New("missing input file")
	}
	positiveHeader, err := c.FormFile("positive")
	if err != nil {
		return nil, nil, nil, errors.New("missing positive words file")
	}
	negativeHeader, err := c.FormFile("negative")
	if err != nil {
		return nil, nil, nil, errors.New("missing negative words file")
	}

	format, err := spreadsheet.FormatFromPath(inputHeader.Filename)
	if err != nil {
		return nil, nil, nil, err
	}

	var rows []models.InputRow
	err = withUpload(inputHeader, func(r io.Reader) error {
		rows, err = spreadsheet.ReadInputFrom(r, format)
		return err
	})
	if err != nil {
		return nil, nil, nil, err
	}

	positive, err := parseLexicon(positiveHeader)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("positive words: %w", err)
	}
	negative, err := parseLexicon(negativeHeader)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("negative words: %w", err)
	}

	return rows, positive, negative, nil
}

func parseLexicon(fh *multipart.FileHeader) (*lexicon.Lexicon, error) {
	var l *lexicon.Lexicon
	err := withUpload(fh, func(r io.Reader) error {
		var err error
		l, err = lexicon.Parse(r)
		return err
	})
	return l, err
}

func withUpload(fh *multipart.FileHeader, fn func(io.Reader) error) error {
	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	return fn(f)
}

func validFormat(format string) bool {
	if format == string(spreadsheet.XLSX) || format == string(spreadsheet.CSV) {
		return true
	}
	for _, f := range reporter.Formats {
		if f == format {
			return true
		}
	}
	return false
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Article Text Analysis</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; max-width: 720px; margin: 2rem auto; color: #333; }
        label { display: block; margin: 1rem 0 0.25rem; font-weight: bold; }
        button { margin-top: 1.5rem; padding: 10px 15px; border: none; border-radius: 5px; background: #667eea; color: white; font-size: 16px; }
    </style>
</head>
<body>
    <h1>Article Text Analysis</h1>
    {{instructions}}
    <form action="/api/v1/analyze" method="post" enctype="multipart/form-data">
        <label for="input">Input file (.xlsx or .csv)</label>
        <input id="input" name="input" type="file" accept=".xlsx,.csv" required>
        <label for="positive">Positive words (.txt)</label>
        <input id="positive" name="positive" type="file" accept=".txt" required>
        <label for="negative">Negative words (.txt)</label>
        <input id="negative" name="negative" type="file" accept=".txt" required>
        <label for="format">Output</label>
        <select id="format" name="format" onchange="this.form.action='/api/v1/analyze?format='+this.value">
            <option value="xlsx">Excel (.xlsx)</option>
            <option value="csv">CSV</option>
            <option value="html">HTML report</option>
            <option value="json">JSON</option>
        </select>
        <button type="submit">Start Analysis</button>
    </form>
</body>
</html>
`

const instructions = `Upload an input sheet with ` + "`URL_ID`" + ` and ` + "`URL`" + ` columns together with
the positive and negative word lists. Each URL is fetched once; pages that fail
to load are skipped.

Every scored article gets:

- positive, negative, polarity and subjectivity scores
- average sentence length, percentage of complex words and fog index
- word, complex word and personal pronoun counts, syllables per word and average word length
`

var indexPage = []byte(strings.Replace(indexHTML, "{{instructions}}", string(markdown.ToHTML([]byte(instructions), nil, nil)), 1))
