package scraper

import (
	"context"
	"fmt"

	"pinscraper/internal/downloader"
	"pinscraper/pkg/browser"
	"pinscraper/pkg/capture"
	"pinscraper/pkg/checkpoint"
	"pinscraper/pkg/config"
	"pinscraper/pkg/extract"
	"pinscraper/pkg/fetcher"
	"pinscraper/pkg/logger"
	"pinscraper/pkg/metadata"
	"pinscraper/pkg/models"
	"pinscraper/pkg/quality"
	"pinscraper/pkg/ratelimit"
	"pinscraper/pkg/retry"
	"pinscraper/pkg/storage"
)

// Scraper runs board and profile downloads
type Scraper struct {
	config        *config.Config
	drivers       DriverFactory
	capturer      *capture.Capturer
	fetcher       fetcher.Fetcher
	engine        *downloader.Engine
	storage       *storage.Manager
	observer      Observer
	checkpointDir string
	sleep         retry.SleepFunc
	closers       []func()
	logger        logger.Logger
}

// Option customises a Scraper
type Option func(*Scraper)

// WithDriverFactory replaces the Chrome-backed browser
func WithDriverFactory(f DriverFactory) Option {
	return func(s *Scraper) { s.drivers = f }
}

// WithFetcher replaces the HTTP client used for image downloads
func WithFetcher(f fetcher.Fetcher) Option {
	return func(s *Scraper) { s.fetcher = f }
}

// WithObserver reports progress to o
func WithObserver(o Observer) Option {
	return func(s *Scraper) { s.observer = o }
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(s *Scraper) { s.logger = l }
}

// WithCheckpointDir stores profile checkpoints under dir instead of the
// user data directory
func WithCheckpointDir(dir string) Option {
	return func(s *Scraper) { s.checkpointDir = dir }
}

// WithRetrySleep replaces the wait between download retries
func WithRetrySleep(fn retry.SleepFunc) Option {
	return func(s *Scraper) { s.sleep = fn }
}

// New creates a Scraper from cfg. Collaborators not supplied through opts
// are built from the configuration.
func New(cfg *config.Config, opts ...Option) (*Scraper, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	s := &Scraper{config: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.GetLogger()
	}
	if s.observer == nil {
		s.observer = nopObserver{}
	}

	storageManager, err := storage.NewManager(cfg.Output.BaseDirectory)
	if err != nil {
		s.logger.WithError(err).Error("Failed to create storage manager")
		return nil, fmt.Errorf("failed to create storage manager: %w", err)
	}
	s.storage = storageManager

	if s.drivers == nil {
		factory := browser.NewFactory(cfg.Browser, s.logger.WithField("component", "browser"))
		s.drivers = factory
		s.closers = append(s.closers, factory.Close)
	}

	if s.fetcher == nil {
		client := fetcher.NewClient(
			cfg.Download.Timeout,
			ratelimit.New(cfg.RateLimit.RequestsPerMinute),
			s.logger.WithField("component", "fetcher"),
		)
		if cfg.Browser.UserAgent != "" {
			client.SetHeader("User-Agent", cfg.Browser.UserAgent)
		}
		client.SetHeader("Referer", cfg.Pinterest.SiteOrigin+"/")
		s.fetcher = client
	}

	s.capturer = capture.New(capture.Options{
		MaxScrolls:       cfg.Browser.MaxScrolls,
		ScrollStep:       cfg.Browser.ScrollStep,
		Settle:           cfg.Browser.SettleDelay,
		FinalBurst:       cfg.Browser.FinalBurst,
		StrictStagnation: cfg.Browser.StrictStagnation,
	}, s.logger.WithField("component", "capture"))

	s.engine = downloader.NewEngine(
		s.fetcher,
		s.storage,
		quality.NewResolver(cfg.Pinterest.BaseAssetOrigin),
		downloader.Options{
			MaxRetries:       cfg.Download.RetryAttempts,
			BaseDelay:        cfg.Download.RetryBaseDelay,
			PermanentMarkers: cfg.Download.PermanentMarkers,
			SkipExisting:     cfg.Download.SkipExisting,
		},
		s.logger.WithField("component", "downloader"),
	)
	if s.sleep != nil {
		s.engine.SetSleep(s.sleep)
	}

	return s, nil
}

// Close releases the browser
func (s *Scraper) Close() {
	for _, c := range s.closers {
		c()
	}
	s.closers = nil
}

// OutputDir returns the download root
func (s *Scraper) OutputDir() string {
	return s.storage.BaseDir()
}

// RunBoard downloads every image on one board into {output}/{board}
func (s *Scraper) RunBoard(ctx context.Context, boardURL string) (models.DownloadOutcome, error) {
	target, err := s.boardTarget(boardURL, s.storage.BaseDir())
	if err != nil {
		return models.DownloadOutcome{}, err
	}
	return s.runBoardIn(ctx, target, 1, 1)
}

// boardTarget resolves the folder a board is saved under
func (s *Scraper) boardTarget(boardURL, parent string) (models.BoardTarget, error) {
	boardName, err := extract.BoardName(boardURL)
	if err != nil {
		s.logger.WithError(err).WithField("url", boardURL).Error("Invalid board URL")
		return models.BoardTarget{}, err
	}
	return models.BoardTarget{
		BoardURL:     boardURL,
		BoardName:    boardName,
		ParentFolder: parent,
	}, nil
}

func (s *Scraper) runBoardIn(ctx context.Context, target models.BoardTarget, index, total int) (models.DownloadOutcome, error) {
	boardURL, boardName := target.BoardURL, target.BoardName

	log := s.logger.WithFields(map[string]interface{}{
		"board": boardName,
		"url":   boardURL,
	})

	folder, err := s.storage.EnsureFolder(target.ParentFolder, boardName)
	if err != nil {
		log.WithError(err).Error("Failed to create board folder")
		return models.DownloadOutcome{}, err
	}

	s.observer.BoardStarted(boardURL, index, total)
	log.InfoWithFields("Starting board download", map[string]interface{}{
		"folder": folder,
	})

	var assets []string
	markup := s.capture(ctx, boardURL, s.config.Pinterest.BoardStopSelector)
	if markup == "" {
		log.Warn("No page content captured, board has no assets")
	} else {
		assets, err = extract.AssetURLs(markup)
		if err != nil {
			log.WithError(err).Warn("Failed to extract assets")
		}
	}

	log.InfoWithFields("Assets discovered", map[string]interface{}{
		"assets": len(assets),
	})

	manifest, err := metadata.Load(folder)
	if err != nil {
		log.WithError(err).Warn("Ignoring unreadable manifest")
		manifest = metadata.New(boardURL, boardName)
	}
	manifest.BoardURL = boardURL
	manifest.BoardName = boardName

	outcome := s.engine.ProcessBoard(ctx, assets, folder,
		downloader.WithManifest(manifest),
		downloader.WithProgress(s.observer.AssetProcessed),
	)

	if removed := manifest.CleanOrphaned(folder); removed > 0 {
		log.DebugWithFields("Dropped manifest entries for missing files", map[string]interface{}{
			"removed": removed,
		})
	}
	if err := manifest.Save(folder); err != nil {
		log.WithError(err).Warn("Failed to save manifest")
	}

	s.observer.BoardFinished(boardURL, outcome)
	return outcome, nil
}

// capture runs one scroll session. Session failures are logged and yield
// empty markup.
func (s *Scraper) capture(ctx context.Context, url, stopSelector string) string {
	driver, err := s.drivers.Open(ctx)
	if err != nil {
		s.logger.WithError(err).WithField("url", url).Error("Failed to open browser session")
		return ""
	}

	markup, err := s.capturer.Capture(ctx, driver, url, stopSelector)
	if err != nil {
		s.logger.WithError(err).WithField("url", url).Error("Scroll capture failed")
		return ""
	}
	return markup
}

// RunProfile downloads every board of a profile, one after another
func (s *Scraper) RunProfile(ctx context.Context, profileURL string) (models.ProfileOutcome, error) {
	return s.RunProfileWithResume(ctx, profileURL, false)
}

// RunProfileWithResume is RunProfile that, when resume is set, skips boards
// a previous run of the same profile already completed.
func (s *Scraper) RunProfileWithResume(ctx context.Context, profileURL string, resume bool) (models.ProfileOutcome, error) {
	username, err := extract.Username(profileURL)
	if err != nil {
		s.logger.WithError(err).WithField("url", profileURL).Error("Invalid profile URL")
		return models.ProfileOutcome{}, err
	}

	result := models.ProfileOutcome{
		Username:     username,
		Boards:       []models.BoardResult{},
		FailedBoards: []string{},
	}
	log := s.logger.WithField("username", username)

	checkpointMgr, err := s.checkpointManager(username)
	if err != nil {
		log.WithError(err).Warn("Checkpointing disabled")
	}
	cp := s.loadCheckpoint(checkpointMgr, username, profileURL, resume)

	markup := s.capture(ctx, profileURL, s.config.Pinterest.ProfileStopSelector)
	var boards []string
	if markup == "" {
		log.Warn("No profile content captured, no boards to download")
	} else {
		boards, err = extract.BoardURLsWithOrigin(markup, username, s.config.Pinterest.SiteOrigin)
		if err != nil {
			log.WithError(err).Warn("Failed to extract boards")
		}
	}

	log.InfoWithFields("Boards discovered", map[string]interface{}{
		"boards": len(boards),
		"resume": resume && cp != nil,
	})

	parent, err := s.storage.EnsureFolder(s.storage.BaseDir(), username)
	if err != nil {
		log.WithError(err).Error("Failed to create profile folder")
		return result, err
	}

	for i, boardURL := range boards {
		if ctx.Err() != nil {
			log.Warn("Profile run cancelled")
			break
		}

		if cp != nil && resume && cp.IsBoardDone(boardURL) {
			log.DebugWithFields("Skipping completed board", map[string]interface{}{
				"board": boardURL,
			})
			result.Boards = append(result.Boards, models.BoardResult{BoardURL: boardURL, Resumed: true})
			continue
		}

		var outcome models.DownloadOutcome
		target, err := s.boardTarget(boardURL, parent)
		if err == nil {
			outcome, err = s.runBoardIn(ctx, target, i+1, len(boards))
		}
		board := models.BoardResult{BoardURL: boardURL, Outcome: outcome}
		if err != nil {
			board.Err = err.Error()
		}
		result.Boards = append(result.Boards, board)

		if board.Failed() {
			result.FailedBoards = append(result.FailedBoards, boardURL)
			log.WarnWithFields("Board finished with failures", map[string]interface{}{
				"board":         boardURL,
				"failed_assets": len(outcome.Failed),
			})
			continue
		}

		if cp != nil {
			if err := checkpointMgr.MarkBoardDone(cp, boardURL); err != nil {
				log.WithError(err).Warn("Failed to update checkpoint")
			}
		}
	}

	result.Success = len(result.FailedBoards) == 0

	if checkpointMgr != nil && result.Success && ctx.Err() == nil {
		if err := checkpointMgr.Delete(); err != nil {
			log.WithError(err).Warn("Failed to remove checkpoint")
		}
	}

	log.InfoWithFields("Profile download finished", map[string]interface{}{
		"boards":        len(result.Boards),
		"failed_boards": len(result.FailedBoards),
		"success":       result.Success,
	})

	return result, nil
}

func (s *Scraper) checkpointManager(username string) (*checkpoint.Manager, error) {
	log := s.logger.WithField("component", "checkpoint")
	if s.checkpointDir != "" {
		return checkpoint.NewManagerAt(s.checkpointDir, username, log)
	}
	return checkpoint.NewManager(username, log)
}

// loadCheckpoint returns the checkpoint to track this run with. Without
// resume any previous checkpoint is replaced.
func (s *Scraper) loadCheckpoint(mgr *checkpoint.Manager, username, profileURL string, resume bool) *checkpoint.Checkpoint {
	if mgr == nil {
		return nil
	}

	if resume {
		cp, err := mgr.Load()
		if err != nil {
			s.logger.WithError(err).Warn("Failed to load checkpoint, starting fresh")
		} else if cp != nil {
			return cp
		}
	}

	cp, err := mgr.Create(username, profileURL)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to create checkpoint")
		return nil
	}
	return cp
}
