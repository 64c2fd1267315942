package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pinscraper/pkg/config"
	errs "pinscraper/pkg/errors"
	"pinscraper/pkg/logger"
	"pinscraper/pkg/scraper"
	"pinscraper/pkg/ui"
)

// session bundles what every download command needs
type session struct {
	cfg      *config.Config
	scraper  *scraper.Scraper
	notifier *ui.Notifier
}

func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(configFile, commandLineFlags(cmd))
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		return nil, err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		return nil, err
	}
	logger.WithField("version", version).Info("pinscraper starting")

	progressOut := ui.Out
	if ui.IsQuietMode() {
		progressOut = io.Discard
	}

	s, err := scraper.New(cfg, scraper.WithObserver(ui.NewProgressDisplay(progressOut, verbose)))
	if err != nil {
		ui.PrintError("Failed to initialize scraper", err.Error())
		return nil, err
	}

	return &session{
		cfg:      cfg,
		scraper:  s,
		notifier: ui.NewNotifier(cfg.Notifications.Enabled),
	}, nil
}

// interruptContext is cancelled on SIGINT or SIGTERM. The current image
// finishes and the run stops before the next one.
func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// exitError carries a failed run out of RunE without cobra printing usage
type exitError struct {
	msg string
}

func (e *exitError) Error() string { return e.msg }

func failed(format string, args ...interface{}) error {
	return &exitError{msg: fmt.Sprintf(format, args...)}
}

// failureTitle names a failed run for the terminal and the notification
func failureTitle(kind string, err error) string {
	if errs.IsType(err, errs.ErrorTypeParse) {
		return "Unrecognized " + kind + " URL"
	}
	return "Download of " + kind + " failed"
}
