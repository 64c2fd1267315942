package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pinscraper/pkg/extract"
	"pinscraper/pkg/logger"
	"pinscraper/pkg/ui"
)

// boardCmd represents the board command
var boardCmd = &cobra.Command{
	Use:   "board <url>",
	Short: "Download every image of one board",
	Long: `Download every image pinned to a single board.

Images are saved to <output>/<board name>/ together with a manifest.json that
records each saved file and any pins that failed.`,
	Example: `  # Download a board into ./Downloads/recipes
  pinscraper board https://www.pinterest.com/alice/recipes/

  # Download into another directory and show every image
  pinscraper board https://www.pinterest.com/alice/recipes/ -o ./pins -v`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBoard(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(boardCmd)
}

func runBoard(cmd *cobra.Command, boardURL string) error {
	if err := extract.ValidateURL(boardURL); err != nil {
		ui.PrintError("Invalid board URL", err.Error())
		return err
	}

	sess, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer sess.scraper.Close()

	ctx, stop := interruptContext()
	defer stop()

	ui.PrintInfo("Board", boardURL)
	ui.PrintHighlight("[CAPTURING BOARD]")

	start := time.Now()
	outcome, err := sess.scraper.RunBoard(ctx, boardURL)
	if err != nil {
		logger.WithError(err).WithField("url", boardURL).Error("Board download failed")
		sess.notifier.SendError(failureTitle("board", err), err.Error())
		return err
	}

	fmt.Fprintln(ui.Out, ui.BoardReport(boardURL, outcome, time.Since(start)))

	if ctx.Err() != nil {
		sess.notifier.SendError("Board download interrupted", boardURL)
		return failed("interrupted")
	}
	if outcome.HasFailures() {
		sess.notifier.SendError("Board finished with failures", boardURL)
		return failed("%d images failed to download", len(outcome.Failed))
	}

	sess.notifier.SendSuccess("Board downloaded", boardURL)
	return nil
}
