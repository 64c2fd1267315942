package scraper

import (
	"context"

	"pinscraper/internal/downloader"
	"pinscraper/pkg/capture"
	"pinscraper/pkg/models"
)

// DriverFactory opens a fresh browser session for every capture
type DriverFactory interface {
	Open(ctx context.Context) (capture.PageDriver, error)
}

// Observer receives progress as boards are processed. Implementations must
// not block.
type Observer interface {
	BoardStarted(boardURL string, index, total int)
	AssetProcessed(ev downloader.Event)
	BoardFinished(boardURL string, outcome models.DownloadOutcome)
}

type nopObserver struct{}

func (nopObserver) BoardStarted(string, int, int)                {}
func (nopObserver) AssetProcessed(downloader.Event)              {}
func (nopObserver) BoardFinished(string, models.DownloadOutcome) {}
