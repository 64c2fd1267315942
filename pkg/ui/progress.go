package ui

import (
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/dustin/go-humanize"

	"pinscraper/internal/downloader"
	"pinscraper/pkg/models"
)

const barWidth = 30

// ProgressDisplay prints one progress line per board and a summary when the
// board finishes. In verbose mode every asset gets its own line instead.
type ProgressDisplay struct {
	mu      sync.Mutex
	out     io.Writer
	bar     progress.Model
	verbose bool

	board     string
	index     int
	total     int
	processed int
	assets    int
	failed    int
	bytes     int64
	started   time.Time
}

// NewProgressDisplay creates a display writing to out
func NewProgressDisplay(out io.Writer, verbose bool) *ProgressDisplay {
	return &ProgressDisplay{
		out: out,
		bar: progress.New(
			progress.WithSolidFill("#E60023"),
			progress.WithWidth(barWidth),
			progress.WithoutPercentage(),
		),
		verbose: verbose,
	}
}

// BoardStarted resets the counters for a new board
func (p *ProgressDisplay) BoardStarted(boardURL string, index, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.board = boardLabel(boardURL)
	p.index = index
	p.total = total
	p.processed = 0
	p.assets = 0
	p.failed = 0
	p.bytes = 0
	p.started = time.Now()

	fmt.Fprintf(p.out, "\n%s %s\n", Cyan(fmt.Sprintf("[%d/%d]", index, total)), p.board)
}

// AssetProcessed advances the bar
func (p *ProgressDisplay) AssetProcessed(ev downloader.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.processed = ev.Index
	p.assets = ev.Total
	p.bytes += ev.Bytes
	if ev.State == downloader.EventFailed {
		p.failed++
	}

	if p.verbose {
		p.printAsset(ev)
		return
	}
	fmt.Fprint(p.out, "\r"+p.line())
}

// BoardFinished prints the board summary
func (p *ProgressDisplay) BoardFinished(boardURL string, outcome models.DownloadOutcome) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.verbose && p.assets > 0 {
		fmt.Fprintln(p.out)
	}

	status := Green("✓")
	if outcome.HasFailures() {
		status = Red("✗")
	}
	fmt.Fprintf(p.out, "%s %s: %d saved, %d skipped, %d failed, %s in %s\n",
		status,
		p.board,
		outcome.Saved,
		outcome.Skipped,
		len(outcome.Failed),
		humanize.Bytes(uint64(outcome.Bytes)),
		time.Since(p.started).Round(time.Second),
	)
}

func (p *ProgressDisplay) line() string {
	pct := 0.0
	if p.assets > 0 {
		pct = float64(p.processed) / float64(p.assets)
	}

	var b strings.Builder
	b.WriteString(p.bar.ViewAs(pct))
	fmt.Fprintf(&b, " %d/%d", p.processed, p.assets)
	if p.failed > 0 {
		b.WriteString(" " + Red(fmt.Sprintf("(%d failed)", p.failed)))
	}
	b.WriteString(" " + Dim(humanize.Bytes(uint64(p.bytes))))
	return b.String()
}

func (p *ProgressDisplay) printAsset(ev downloader.Event) {
	name := path.Base(ev.Asset)
	prefix := Dim(fmt.Sprintf("[%d/%d]", ev.Index, ev.Total))

	switch ev.State {
	case downloader.EventSaved:
		fmt.Fprintf(p.out, "%s %s %s %s\n", prefix, Green("✓"), name, Dim(humanize.Bytes(uint64(ev.Bytes))))
	case downloader.EventSkipped:
		fmt.Fprintf(p.out, "%s %s %s already downloaded\n", prefix, Yellow("•"), name)
	case downloader.EventFailed:
		fmt.Fprintf(p.out, "%s %s %s %s\n", prefix, Red("✗"), name, ev.Reason)
	}
}

// boardLabel turns https://site/alice/recipes/ into alice/recipes
func boardLabel(boardURL string) string {
	trimmed := strings.TrimSuffix(boardURL, "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) >= 2 {
		return parts[len(parts)-2] + "/" + parts[len(parts)-1]
	}
	return boardURL
}
