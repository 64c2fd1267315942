// Package browser implements capture.PageDriver on top of headless Chrome.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"pinscraper/pkg/capture"
	"pinscraper/pkg/config"
	"pinscraper/pkg/logger"
)

var chromeBinaryNames = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
}

// FindChromePath returns $CHROME_PATH when it names an existing file, else
// the first Chrome binary on PATH, or "" to let chromedp use its own lookup.
func FindChromePath() string {
	if path := os.Getenv("CHROME_PATH"); path != "" {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	for _, name := range chromeBinaryNames {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// Factory owns one Chrome allocator and opens a fresh tab per capture
type Factory struct {
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	cfg         config.BrowserConfig
	logger      logger.Logger
}

// NewFactory prepares a Chrome allocator. Chrome itself is started lazily
// by the first Open.
func NewFactory(cfg config.BrowserConfig, log logger.Logger) *Factory {
	if log == nil {
		log = logger.NewNopLogger()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
	)
	if path := FindChromePath(); path != "" {
		opts = append(opts, chromedp.ExecPath(path))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	log.DebugWithFields("Browser allocator ready", map[string]interface{}{
		"headless": cfg.Headless,
		"timeout":  cfg.Timeout,
	})

	return &Factory{allocCtx: allocCtx, cancelAlloc: cancel, cfg: cfg, logger: log}
}

// Open starts a new browser session. The session ends when the returned
// driver is closed, when ctx is cancelled, or after the configured timeout.
func (f *Factory) Open(ctx context.Context) (capture.PageDriver, error) {
	tabCtx, cancelTab := chromedp.NewContext(f.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			f.logger.Debug("chromedp: " + fmt.Sprintf(format, args...))
		}),
	)

	timeout := f.cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	sessionCtx, cancelTimeout := context.WithTimeout(tabCtx, timeout)
	stop := context.AfterFunc(ctx, cancelTimeout)

	// Run with no actions launches the browser
	if err := chromedp.Run(sessionCtx); err != nil {
		stop()
		cancelTimeout()
		cancelTab()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &Driver{
		ctx: sessionCtx,
		cancel: func() {
			stop()
			cancelTimeout()
			cancelTab()
		},
		logger: f.logger,
	}, nil
}

// Close shuts down Chrome
func (f *Factory) Close() {
	f.cancelAlloc()
}

// Driver is one Chrome tab
type Driver struct {
	ctx    context.Context
	cancel func()
	logger logger.Logger
	closed bool
}

func (d *Driver) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(d.ctx, actions...)
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	d.logger.WithField("url", url).Debug("Navigating")
	return d.run(ctx, chromedp.Navigate(url))
}

// WaitForIdle waits for the body to exist and gives lazy loaders a moment
func (d *Driver) WaitForIdle(ctx context.Context) error {
	return d.run(ctx,
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(500*time.Millisecond),
	)
}

func (d *Driver) ScrollBy(ctx context.Context, pixels int) error {
	var y float64
	return d.run(ctx, chromedp.Evaluate(fmt.Sprintf("window.scrollBy(0, %d); window.scrollY", pixels), &y))
}

func (d *Driver) Wait(ctx context.Context, dur time.Duration) error {
	return d.run(ctx, chromedp.Sleep(dur))
}

func (d *Driver) CaptureMarkup(ctx context.Context) (string, error) {
	var html string
	if err := d.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// IsVisible reports whether selector matches an element that is rendered
// with a non-empty box. A missing element is not an error.
func (d *Driver) IsVisible(ctx context.Context, selector string) (bool, error) {
	script, err := visibilityScript(selector)
	if err != nil {
		return false, err
	}
	var visible bool
	if err := d.run(ctx, chromedp.Evaluate(script, &visible)); err != nil {
		return false, err
	}
	return visible, nil
}

// Close ends the tab. Calling it more than once is harmless.
func (d *Driver) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	err := chromedp.Cancel(d.ctx)
	d.cancel()
	if err != nil && d.ctx.Err() == nil {
		return err
	}
	return nil
}

func visibilityScript(selector string) (string, error) {
	quoted, err := json.Marshal(selector)
	if err != nil {
		return "", fmt.Errorf("invalid selector: %w", err)
	}
	return fmt.Sprintf(`(() => {
	const el = document.querySelector(%s);
	if (!el) return false;
	const style = window.getComputedStyle(el);
	if (style.display === "none" || style.visibility === "hidden") return false;
	const rect = el.getBoundingClientRect();
	return rect.width > 0 && rect.height > 0;
})()`, quoted), nil
}
