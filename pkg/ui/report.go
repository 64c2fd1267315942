package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"pinscraper/pkg/models"
)

var (
	reportTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(lipgloss.Color("#E60023")).
				Padding(0, 1)

	reportLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#00AFAF")).
				Width(10)

	reportFailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F"))

	reportBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#767676")).
			Padding(0, 1)
)

// BoardReport renders the result of a single-board run
func BoardReport(boardURL string, o models.DownloadOutcome, elapsed time.Duration) string {
	var b strings.Builder
	b.WriteString(reportTitleStyle.Render("BOARD COMPLETE") + "\n\n")
	b.WriteString(row("Board", boardURL))
	writeTotals(&b, o, elapsed)

	if o.HasFailures() {
		b.WriteString("\n" + reportFailStyle.Render(fmt.Sprintf("%d pins failed to download", len(o.Failed))) + "\n")
		writeFailures(&b, o.Failed)
	}
	return reportBoxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// ProfileReport renders the result of a profile run
func ProfileReport(p models.ProfileOutcome, elapsed time.Duration) string {
	var b strings.Builder
	title := "PROFILE COMPLETE"
	if !p.Success {
		title = "PROFILE COMPLETE WITH FAILURES"
	}
	b.WriteString(reportTitleStyle.Render(title) + "\n\n")
	b.WriteString(row("Profile", p.Username))
	b.WriteString(row("Boards", humanize.Comma(int64(len(p.Boards)))))

	resumed := 0
	for _, board := range p.Boards {
		if board.Resumed {
			resumed++
		}
	}
	if resumed > 0 {
		b.WriteString(row("Resumed", fmt.Sprintf("%d already complete", resumed)))
	}

	totals := p.Totals()
	writeTotals(&b, totals, elapsed)

	if len(p.FailedBoards) > 0 {
		b.WriteString("\n" + reportFailStyle.Render("Boards with failures:") + "\n")
		for _, board := range p.Boards {
			if !board.Failed() {
				continue
			}
			if board.Err != "" {
				fmt.Fprintf(&b, "  %s\n    Error: %s\n", board.BoardURL, board.Err)
				continue
			}
			fmt.Fprintf(&b, "  %s (%d failed)\n", board.BoardURL, len(board.Outcome.Failed))
		}
	}
	if len(totals.Failed) > 0 {
		b.WriteString("\n")
		writeFailures(&b, totals.Failed)
	}
	return reportBoxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func writeTotals(b *strings.Builder, o models.DownloadOutcome, elapsed time.Duration) {
	b.WriteString(row("Found", humanize.Comma(int64(o.Attempted))))
	b.WriteString(row("Saved", humanize.Comma(int64(o.Saved))))
	if o.Skipped > 0 {
		b.WriteString(row("Skipped", humanize.Comma(int64(o.Skipped))))
	}
	b.WriteString(row("Failed", humanize.Comma(int64(len(o.Failed)))))
	b.WriteString(row("Size", humanize.Bytes(uint64(o.Bytes))))
	if elapsed > 0 {
		b.WriteString(row("Elapsed", elapsed.Round(time.Second).String()))
	}
}

func writeFailures(b *strings.Builder, failed []models.FailedAsset) {
	for _, f := range failed {
		fmt.Fprintf(b, "Failed to download pin: %s\n", f.Asset)
		fmt.Fprintf(b, "Reason: %s\n", f.Reason)
	}
}

func row(label, value string) string {
	return reportLabelStyle.Render(label) + " " + value + "\n"
}
