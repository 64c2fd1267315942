package downloader

import (
	"context"
	stderrors "errors"
	"io"
	"path/filepath"
	"time"

	"pinscraper/pkg/errors"
	"pinscraper/pkg/fetcher"
	"pinscraper/pkg/logger"
	"pinscraper/pkg/metadata"
	"pinscraper/pkg/models"
	"pinscraper/pkg/quality"
	"pinscraper/pkg/retry"
)

// ErrNoApplicableTier is returned when no tier could produce a download URL
var ErrNoApplicableTier = &errors.Error{
	Type:    errors.ErrorTypePermanent,
	Message: "no applicable quality tier",
}

// FileStore is the part of storage the engine writes through
type FileStore interface {
	Exists(path string) bool
	WriteFile(path string, r io.Reader) (int64, error)
}

// Options holds per-engine download settings
type Options struct {
	// MaxRetries counts retries after the first attempt
	MaxRetries       int
	BaseDelay        time.Duration
	PermanentMarkers []string
	SkipExisting     bool
}

// DefaultOptions retries three times after 3s, 6s and 12s
func DefaultOptions() Options {
	return Options{
		MaxRetries:       3,
		BaseDelay:        3 * time.Second,
		PermanentMarkers: errors.DefaultPermanentMarkers,
		SkipExisting:     true,
	}
}

// Result is the outcome of a single asset
type Result struct {
	Asset   models.Asset
	Bytes   int64
	Skipped bool
}

// EventState is what happened to one asset
type EventState string

const (
	EventSaved   EventState = "saved"
	EventSkipped EventState = "skipped"
	EventFailed  EventState = "failed"
)

// Event reports progress through a board batch
type Event struct {
	Index  int
	Total  int
	Asset  string
	State  EventState
	Bytes  int64
	Reason string
}

// BoardOption customises one ProcessBoard call
type BoardOption func(*boardRun)

type boardRun struct {
	manifest *metadata.Manifest
	progress func(Event)
}

// WithManifest records every saved file in m
func WithManifest(m *metadata.Manifest) BoardOption {
	return func(r *boardRun) { r.manifest = m }
}

// WithProgress calls fn once per asset
func WithProgress(fn func(Event)) BoardOption {
	return func(r *boardRun) { r.progress = fn }
}

// Engine downloads board assets one at a time, walking quality tiers and
// retrying transient failures.
type Engine struct {
	fetcher  fetcher.Fetcher
	store    FileStore
	resolver *quality.Resolver
	opts     Options
	sleep    retry.SleepFunc
	logger   logger.Logger
}

// NewEngine creates an Engine
func NewEngine(f fetcher.Fetcher, store FileStore, resolver *quality.Resolver, opts Options, log logger.Logger) *Engine {
	if log == nil {
		log = logger.GetLogger()
	}
	if resolver == nil {
		resolver = quality.NewResolver("")
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}

	return &Engine{
		fetcher:  f,
		store:    store,
		resolver: resolver,
		opts:     opts,
		sleep:    retry.Wait,
		logger:   log,
	}
}

// SetSleep replaces the backoff wait, mostly for tests
func (e *Engine) SetSleep(s retry.SleepFunc) {
	if s == nil {
		s = retry.Wait
	}
	e.sleep = s
}

// ProcessBoard downloads every asset into folder. A failed asset is recorded
// and the batch moves on; only a cancelled context stops it early.
func (e *Engine) ProcessBoard(ctx context.Context, assets []string, folder string, opts ...BoardOption) models.DownloadOutcome {
	run := &boardRun{}
	for _, opt := range opts {
		opt(run)
	}

	outcome := models.DownloadOutcome{Failed: []models.FailedAsset{}}
	log := e.logger.WithField("folder", folder)
	board := filepath.Base(folder)

	log.InfoWithFields("Processing board assets", map[string]interface{}{
		"assets": len(assets),
	})

	for i, assetURL := range assets {
		if ctx.Err() != nil {
			log.WarnWithFields("Board processing cancelled", map[string]interface{}{
				"processed": i,
				"remaining": len(assets) - i,
			})
			break
		}

		outcome.Attempted++
		event := Event{Index: i + 1, Total: len(assets), Asset: assetURL}

		res, err := e.downloadWithRetry(ctx, assetURL, folder)
		switch {
		case err != nil:
			reason := Reason(err)
			outcome.Failed = append(outcome.Failed, models.FailedAsset{Asset: assetURL, Reason: reason})
			event.State = EventFailed
			event.Reason = reason
			logger.LogAssetOutcome(log, board, res.Asset.FileName, "", 0, err)
		case res.Skipped:
			outcome.Skipped++
			event.State = EventSkipped
			log.DebugWithFields("Asset already on disk", map[string]interface{}{
				"file": res.Asset.FileName,
			})
		default:
			outcome.Saved++
			outcome.Bytes += res.Bytes
			event.State = EventSaved
			event.Bytes = res.Bytes
			logger.LogAssetOutcome(log, board, res.Asset.FileName, res.Asset.Tier, res.Bytes, nil)
			if run.manifest != nil {
				run.manifest.Record(metadata.Entry{
					FileName:     res.Asset.FileName,
					SourceURL:    res.Asset.SourceURL,
					DownloadURL:  *res.Asset.RewrittenURL,
					Tier:         res.Asset.Tier,
					Bytes:        res.Bytes,
					DownloadedAt: time.Now(),
				})
			}
		}

		if run.progress != nil {
			run.progress(event)
		}
	}

	if run.manifest != nil {
		run.manifest.SetFailures(outcome.Failed)
	}

	log.InfoWithFields("Board assets processed", map[string]interface{}{
		"attempted": outcome.Attempted,
		"saved":     outcome.Saved,
		"skipped":   outcome.Skipped,
		"failed":    len(outcome.Failed),
		"bytes":     outcome.Bytes,
	})

	return outcome
}

// downloadWithRetry runs DownloadOneAsset and retries it while the failure
// carries no permanent marker.
func (e *Engine) downloadWithRetry(ctx context.Context, assetURL, folder string) (Result, error) {
	var lastErr error

	markerRetry := retry.PermanentMarkerRetryIf(e.opts.PermanentMarkers)
	cfg := &retry.Config{
		MaxAttempts: e.opts.MaxRetries + 1,
		Backoff: &retry.ExponentialBackoff{
			BaseDelay:  e.opts.BaseDelay,
			Multiplier: 2,
		},
		RetryIf: func(err error) bool {
			if stderrors.Is(err, ErrNoApplicableTier) {
				return false
			}
			return markerRetry(err)
		},
		OnRetry: func(attempt int, err error, delay time.Duration) {
			logger.LogRetry(e.logger, assetURL, attempt+1, delay.Milliseconds(), err)
		},
		Context: ctx,
		Logger:  e.logger,
		Sleep:   e.sleep,
	}

	// the retry error wraps lastErr; the report wants the bare reason
	res, _ := retry.DoWithResult(func() (Result, error) {
		r, err := e.DownloadOneAsset(ctx, assetURL, folder)
		lastErr = err
		return r, err
	}, cfg)

	return res, lastErr
}

// DownloadOneAsset tries each quality tier in order and saves the first
// successful response as {folder}/{fileName}. It never retries.
func (e *Engine) DownloadOneAsset(ctx context.Context, assetURL, folder string) (Result, error) {
	targets := e.resolver.Targets(assetURL, folder)
	if len(targets) == 0 {
		return Result{}, ErrNoApplicableTier
	}

	dest := filepath.Join(folder, targets[0].FileName)
	if e.opts.SkipExisting && e.store.Exists(dest) {
		return Result{Asset: targets[0], Skipped: true}, nil
	}

	var lastErr error = ErrNoApplicableTier
	failed := targets[0]

	for _, target := range targets {
		if !target.Applicable() {
			continue
		}

		resp, err := e.fetcher.Get(ctx, *target.RewrittenURL)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}

		if !resp.OK() {
			resp.Body.Close()
			lastErr = fetcher.StatusError(resp.Status)
			e.logger.DebugWithFields("Tier unavailable", map[string]interface{}{
				"url":    *target.RewrittenURL,
				"tier":   target.Tier,
				"status": resp.Status,
			})
			continue
		}

		n, err := e.store.WriteFile(dest, resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = &errors.Error{
				Type:    errors.ErrorTypeTransient,
				Message: "failed to save " + target.FileName,
				Err:     err,
			}
			continue
		}

		return Result{Asset: target, Bytes: n}, nil
	}

	failed.Error = Reason(lastErr)
	return Result{Asset: failed}, lastErr
}

// Reason renders err for the failure report
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var e *errors.Error
	if stderrors.As(err, &e) {
		if e.Err != nil {
			return e.Message + ": " + e.Err.Error()
		}
		return e.Message
	}
	return err.Error()
}
