package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/epharmacy/backend/internal/domain/order"
	"go.uber.org/zap"
)

const defaultRenderTimeout = 30 * time.Second

// A4 paper dimensions in inches
const (
	paperWidthA4  = 8.27
	paperHeightA4 = 11.69
)

// RendererConfig configures the chromedp-backed PDF renderer
type RendererConfig struct {
	// Timeout bounds one render, including browser startup
	Timeout time.Duration
	// RemoteURL points at a running Chrome instance; empty launches one
	RemoteURL string
	// NoSandbox is required when Chrome runs as root, e.g. in containers
	NoSandbox bool
	// Seller appears in the invoice header
	Seller Seller
}

// ChromeRenderer renders invoice HTML to PDF through the DevTools protocol
type ChromeRenderer struct {
	config      RendererConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromeRenderer creates a renderer with a shared browser allocator
func NewChromeRenderer(config RendererConfig, logger *zap.Logger) *ChromeRenderer {
	if config.Timeout <= 0 {
		config.Timeout = defaultRenderTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &ChromeRenderer{config: config, logger: logger}

	if config.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), config.RemoteURL)
		return r
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if config.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return r
}

// Render builds the invoice HTML for the order and prints it to PDF
func (r *ChromeRenderer) Render(ctx context.Context, o *order.Order, invoiceNumber string) ([]byte, error) {
	html, err := BuildHTML(o, invoiceNumber, r.config.Seller, time.Now())
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx)
	defer browserCancel()

	start := time.Now()
	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidthA4).
				WithPaperHeight(paperHeightA4).
				WithMarginTop(0.4).
				WithMarginRight(0.4).
				WithMarginBottom(0.4).
				WithMarginLeft(0.4).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("invoice rendering timed out after %v: %w", r.config.Timeout, err)
		}
		return nil, fmt.Errorf("invoice rendering failed: %w", err)
	}
	if len(pdf) == 0 {
		return nil, fmt.Errorf("invoice rendering produced an empty document")
	}

	r.logger.Debug("invoice rendered",
		zap.String("invoice_number", invoiceNumber),
		zap.Int("bytes", len(pdf)),
		zap.Duration("duration", time.Since(start)))

	return pdf, nil
}

// Close releases the browser allocator
func (r *ChromeRenderer) Close() {
	if r.allocCancel != nil {
		r.allocCancel()
	}
}
