package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/amosWeiskopf/articlemetrics/internal/models"
)

var (
	// ErrEmptyArticle is returned when a page has no paragraph text
	ErrEmptyArticle = errors.New("article has no text")

	// ErrDisallowed is returned when robots.txt forbids fetching a page
	ErrDisallowed = errors.New("disallowed by robots.txt")
)

// Fetcher defines the interface for article fetching operations. A Fetcher
// owns its underlying resources until Close is called.
type Fetcher interface {
	// Fetch loads pageURL once and returns its title and body text
	Fetch(ctx context.Context, pageURL string) (*models.Article, error)

	// Close releases the browser or connection pool behind the fetcher
	Close() error
}

// Options contains configuration for the fetchers
type Options struct {
	Driver            string        // "browser" or "http"
	RenderWait        time.Duration // Fixed wait after navigation
	Timeout           time.Duration // Per-page timeout, 0 for none
	UserAgent         string        // User agent for the http driver
	Headless          bool          // Run the browser without a window
	ChromePath        string        // Browser executable, empty for auto-detect
	WindowWidth       int           // Browser window width
	WindowHeight      int           // Browser window height
	FollowRobotsTxt   bool          // Respect robots.txt (http driver)
	RequestsPerSecond float64       // Rate limit, 0 for unlimited (http driver)
	Logger            *log.Logger
}

// New creates the fetcher selected by opts.Driver
func New(ctx context.Context, opts Options) (Fetcher, error) {
	switch opts.Driver {
	case "", "browser":
		b, err := NewBrowserFetcher(ctx, opts)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "http":
		return NewHTTPFetcher(opts), nil
	default:
		return nil, fmt.Errorf("unknown fetcher driver %q", opts.Driver)
	}
}
