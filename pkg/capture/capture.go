// Package capture scrolls an infinite-scroll page until no more content
// loads and returns every distinct snapshot of its markup.
package capture

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"pinscraper/pkg/errors"
	"pinscraper/pkg/logger"
)

// PageDriver is a single rendering session on one page
type PageDriver interface {
	Navigate(ctx context.Context, url string) error
	WaitForIdle(ctx context.Context) error
	ScrollBy(ctx context.Context, pixels int) error
	Wait(ctx context.Context, d time.Duration) error
	CaptureMarkup(ctx context.Context) (string, error)
	IsVisible(ctx context.Context, selector string) (bool, error)
	Close() error
}

// StopReason says why scrolling ended
type StopReason string

const (
	StopMarker     StopReason = "marker"
	StopStagnation StopReason = "stagnation"
	StopMaxScrolls StopReason = "max_scrolls"
)

// Options tune the scroll loop
type Options struct {
	MaxScrolls int
	ScrollStep int
	Settle     time.Duration
	// FinalBurst is the number of extra scroll and capture cycles run
	// after the stop marker appears.
	FinalBurst int
	// StrictStagnation compares a content hash instead of the length, so
	// two different snapshots of equal length do not end the loop.
	StrictStagnation bool
}

// DefaultOptions returns the standard scroll settings
func DefaultOptions() Options {
	return Options{
		MaxScrolls: 50,
		ScrollStep: 500,
		Settle:     time.Second,
		FinalBurst: 3,
	}
}

// Result is the outcome of one capture session
type Result struct {
	Markup  *CapturedMarkup
	Reason  StopReason
	Scrolls int
}

// Capturer runs scroll capture sessions
type Capturer struct {
	opts   Options
	logger logger.Logger
}

// New creates a Capturer. Zero-valued limits fall back to DefaultOptions.
func New(opts Options, log logger.Logger) *Capturer {
	def := DefaultOptions()
	if opts.MaxScrolls <= 0 {
		opts.MaxScrolls = def.MaxScrolls
	}
	if opts.ScrollStep <= 0 {
		opts.ScrollStep = def.ScrollStep
	}
	if opts.FinalBurst < 0 {
		opts.FinalBurst = 0
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Capturer{opts: opts, logger: log}
}

// Capture loads url in driver and scrolls until stopSelector is visible,
// the page stops growing, or MaxScrolls is reached. The driver is always
// closed before Capture returns. On any driver failure the result is the
// empty string and a session error.
func (c *Capturer) Capture(ctx context.Context, driver PageDriver, url, stopSelector string) (string, error) {
	res, err := c.Run(ctx, driver, url, stopSelector)
	if err != nil {
		return "", err
	}
	return res.Markup.Combined(), nil
}

// Run is Capture with the stop details kept
func (c *Capturer) Run(ctx context.Context, driver PageDriver, url, stopSelector string) (*Result, error) {
	defer func() {
		if cerr := driver.Close(); cerr != nil {
			c.logger.WithError(cerr).Warn("Failed to close browser session")
		}
	}()

	log := c.logger.WithField("url", url)

	if err := driver.Navigate(ctx, url); err != nil {
		return nil, c.fail(log, "navigation failed", err)
	}
	if err := driver.WaitForIdle(ctx); err != nil {
		return nil, c.fail(log, "page did not settle", err)
	}

	markup := NewCapturedMarkup()
	res := &Result{Markup: markup, Reason: StopMaxScrolls}

	var previous [32]byte
	previousLen := 0

	for res.Scrolls < c.opts.MaxScrolls {
		if err := ctx.Err(); err != nil {
			return nil, c.fail(log, "capture cancelled", err)
		}

		visible, err := driver.IsVisible(ctx, stopSelector)
		if err != nil {
			return nil, c.fail(log, "visibility check failed", err)
		}
		if visible {
			res.Reason = StopMarker
			break
		}

		snapshot, err := c.scrollAndCapture(ctx, driver)
		if err != nil {
			return nil, c.fail(log, "scroll cycle failed", err)
		}
		res.Scrolls++
		markup.Add(snapshot)

		if c.opts.StrictStagnation {
			sum := blake2b.Sum256([]byte(snapshot))
			if sum == previous {
				res.Reason = StopStagnation
				break
			}
			previous = sum
		} else {
			if len(snapshot) == previousLen {
				res.Reason = StopStagnation
				break
			}
			previousLen = len(snapshot)
		}
	}

	if res.Reason == StopMarker {
		for i := 0; i < c.opts.FinalBurst; i++ {
			snapshot, err := c.scrollAndCapture(ctx, driver)
			if err != nil {
				return nil, c.fail(log, "final capture failed", err)
			}
			markup.Add(snapshot)
		}
	}
	markup.Seal()

	logger.LogCaptureStop(c.logger, url, string(res.Reason), res.Scrolls, markup.Len())
	return res, nil
}

func (c *Capturer) scrollAndCapture(ctx context.Context, driver PageDriver) (string, error) {
	if err := driver.ScrollBy(ctx, c.opts.ScrollStep); err != nil {
		return "", err
	}
	if err := driver.Wait(ctx, c.opts.Settle); err != nil {
		return "", err
	}
	return driver.CaptureMarkup(ctx)
}

func (c *Capturer) fail(log logger.Logger, msg string, err error) error {
	log.WithError(err).Error("Scroll capture aborted: " + msg)
	return errors.Session(msg, err)
}

// CapturedMarkup holds distinct page snapshots in capture order
type CapturedMarkup struct {
	snapshots []string
	seen      map[string]struct{}
	sealed    bool
}

// NewCapturedMarkup creates an empty snapshot set
func NewCapturedMarkup() *CapturedMarkup {
	return &CapturedMarkup{seen: make(map[string]struct{})}
}

// Add appends s unless it is a duplicate or the set is sealed
func (m *CapturedMarkup) Add(s string) bool {
	if m.sealed {
		return false
	}
	if _, dup := m.seen[s]; dup {
		return false
	}
	m.seen[s] = struct{}{}
	m.snapshots = append(m.snapshots, s)
	return true
}

// Seal stops any further snapshot from being added
func (m *CapturedMarkup) Seal() {
	m.sealed = true
}

// Len returns the number of distinct snapshots
func (m *CapturedMarkup) Len() int {
	return len(m.snapshots)
}

// Snapshots returns a copy of the snapshots in capture order
func (m *CapturedMarkup) Snapshots() []string {
	out := make([]string, len(m.snapshots))
	copy(out, m.snapshots)
	return out
}

// Combined wraps all snapshots in one document shell
func (m *CapturedMarkup) Combined() string {
	return "<html><body>" + strings.Join(m.snapshots, "\n") + "</body></html>"
}
