package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pinscraper/pkg/extract"
	"pinscraper/pkg/logger"
	"pinscraper/pkg/ui"
)

var resumeProfile bool

// profileCmd represents the profile command
var profileCmd = &cobra.Command{
	Use:   "profile <url>",
	Short: "Download every board of a profile",
	Long: `Download every board owned by a profile, one board after another.

Boards are saved to <output>/<username>/<board name>/. Progress is
checkpointed after each board that finishes without failures, so an
interrupted run can continue with --resume.`,
	Example: `  # Download all of alice's boards
  pinscraper profile https://www.pinterest.com/alice/

  # Continue a run that was interrupted
  pinscraper profile https://www.pinterest.com/alice/ --resume`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProfile(cmd, args[0], resumeProfile)
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().BoolVar(&resumeProfile, "resume", false, "skip boards a previous run already completed")
}

func runProfile(cmd *cobra.Command, profileURL string, resume bool) error {
	if err := extract.ValidateURL(profileURL); err != nil {
		ui.PrintError("Invalid profile URL", err.Error())
		return err
	}

	sess, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer sess.scraper.Close()

	ctx, stop := interruptContext()
	defer stop()

	ui.PrintInfo("Profile", profileURL)
	if resume {
		ui.PrintInfo("Resume", "skipping completed boards")
	}
	ui.PrintHighlight("[CAPTURING PROFILE]")

	start := time.Now()
	outcome, err := sess.scraper.RunProfileWithResume(ctx, profileURL, resume)
	if err != nil {
		logger.WithError(err).WithField("url", profileURL).Error("Profile download failed")
		sess.notifier.SendError(failureTitle("profile", err), err.Error())
		return err
	}

	fmt.Fprintln(ui.Out, ui.ProfileReport(outcome, time.Since(start)))

	if ctx.Err() != nil {
		sess.notifier.SendError("Profile download interrupted", "run again with --resume to continue")
		return failed("interrupted")
	}
	if !outcome.Success {
		sess.notifier.SendError("Profile finished with failures",
			fmt.Sprintf("%d of %d boards had failures", len(outcome.FailedBoards), len(outcome.Boards)))
		return failed("%d boards had failures", len(outcome.FailedBoards))
	}

	sess.notifier.SendSuccess("Profile downloaded", fmt.Sprintf("%s: %d boards", outcome.Username, len(outcome.Boards)))
	return nil
}
