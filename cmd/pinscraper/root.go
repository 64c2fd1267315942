package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pinscraper/pkg/extract"
	"pinscraper/pkg/ui"
	"pinscraper/pkg/ui/tui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile       string
	logLevel         string
	outputDir        string
	headless         bool
	rateLimit        int
	maxRetries       int
	strictStagnation bool
	skipExisting     bool
	notifications    bool
	quiet            bool
	verbose          bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pinscraper",
	Short: "Download every image from a Pinterest board or profile",
	Long: `pinscraper downloads the full resolution images of a Pinterest board, or of
every board a profile owns.

A headless browser scrolls the page until the end-of-content marker appears,
the captured markup is searched for pin images, and each image is fetched at
the highest quality the CDN serves.

Run without a subcommand in a terminal to choose interactively.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet || logLevel == "error" {
			ui.SetQuietMode(true)
		}

		if cmd.Name() != "version" && cmd.Name() != "help" && cmd.Parent() != configCmd {
			ui.PrintLogo()
		}
	},
	SilenceUsage: true,
	RunE:         runInteractive,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./pinscraper.yaml or $HOME/.config/pinscraper/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "base directory for downloaded boards")
	rootCmd.PersistentFlags().BoolVar(&headless, "headless", true, "run the browser without a window")
	rootCmd.PersistentFlags().IntVar(&rateLimit, "rate-limit", 120, "image requests per minute (0 disables limiting)")
	rootCmd.PersistentFlags().IntVar(&maxRetries, "max-retries", 3, "retries per image after the first attempt")
	rootCmd.PersistentFlags().BoolVar(&strictStagnation, "strict-stagnation", false, "compare page content, not only its length, to detect the end of scrolling")
	rootCmd.PersistentFlags().BoolVar(&skipExisting, "skip-existing", true, "skip images already present in the board folder")
	rootCmd.PersistentFlags().BoolVar(&notifications, "notifications", false, "enable desktop notifications")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print a line for every image")

	rootCmd.SetVersionTemplate(`pinscraper {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// commandLineFlags collects the flags the user actually set so that config
// files and environment variables keep their values otherwise
func commandLineFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	set := cmd.Flags().Changed

	if set("output") {
		flags["output"] = outputDir
	}
	if set("log-level") {
		flags["log-level"] = logLevel
	}
	if set("headless") {
		flags["headless"] = headless
	}
	if set("rate-limit") {
		flags["rate-limit"] = rateLimit
	}
	if set("max-retries") {
		flags["max-retries"] = maxRetries
	}
	if set("strict-stagnation") {
		flags["strict-stagnation"] = strictStagnation
	}
	if set("skip-existing") {
		flags["skip-existing"] = skipExisting
	}
	if set("notifications") {
		flags["notifications"] = notifications
	}
	return flags
}

func runInteractive(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return cmd.Help()
	}

	choice, err := tui.Prompt(os.Stdin, os.Stdout, extract.ValidateURL)
	if errors.Is(err, tui.ErrAborted) {
		return nil
	}
	if err != nil {
		return err
	}

	switch choice.Mode {
	case tui.ModeProfile:
		return runProfile(cmd, choice.URL, false)
	default:
		return runBoard(cmd, choice.URL)
	}
}
