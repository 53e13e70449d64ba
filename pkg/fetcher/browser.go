package fetcher

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/amosWeiskopf/articlemetrics/internal/models"
	"github.com/amosWeiskopf/articlemetrics/pkg/extractor"
)

// paragraphsJS collects the rendered text of every <p> element
const paragraphsJS = `Array.from(document.getElementsByTagName('p'), p => p.innerText || '')`

// BrowserFetcher renders pages in a single shared headless Chrome instance
type BrowserFetcher struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	renderWait    time.Duration
	timeout       time.Duration
	logger        *log.Logger
	closeOnce     sync.Once
	closeErr      error
}

// NewBrowserFetcher launches the browser. The returned fetcher must be
// closed to terminate the browser process.
func NewBrowserFetcher(ctx context.Context, opts Options) (*BrowserFetcher, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.WindowWidth > 0 && opts.WindowHeight > 0 {
		allocOpts = append(allocOpts, chromedp.WindowSize(opts.WindowWidth, opts.WindowHeight))
	}
	if opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ChromePath))
	}

	// The browser outlives any single request, so it is not bound to ctx
	// cancellation; Close tears it down.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithErrorf(logger.Printf))

	// Start the browser now so launch failures surface before the first URL.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	return &BrowserFetcher{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		renderWait:    opts.RenderWait,
		timeout:       opts.Timeout,
		logger:        logger,
	}, nil
}

// Fetch opens pageURL in a new tab, waits for rendering, and returns the
// document title and the text of all paragraphs
func (b *BrowserFetcher) Fetch(ctx context.Context, pageURL string) (*models.Article, error) {
	tabCtx, cancel := chromedp.NewContext(b.browserCtx)
	defer cancel()

	if b.timeout > 0 {
		var cancelTimeout context.CancelFunc
		tabCtx, cancelTimeout = context.WithTimeout(tabCtx, b.timeout+b.renderWait)
		defer cancelTimeout()
	}

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var title string
	var paragraphs []string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(b.renderWait),
		chromedp.Title(&title),
		chromedp.Evaluate(paragraphsJS, &paragraphs),
	)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", pageURL, err)
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = extractor.DefaultTitle
	}

	text := extractor.JoinParagraphs(paragraphs)
	if text == "" {
		return nil, fmt.Errorf("render %s: %w", pageURL, ErrEmptyArticle)
	}

	return &models.Article{URL: pageURL, Title: title, Text: text}, nil
}

// Close shuts the browser down. It is safe to call more than once.
func (b *BrowserFetcher) Close() error {
	b.closeOnce.Do(func() {
		b.closeErr = chromedp.Cancel(b.browserCtx)
		b.browserCancel()
		b.allocCancel()
	})
	return b.closeErr
}
