package models

// Quality tiers, highest fidelity first. Each is the path segment that
// replaces the size prefix of an asset URL.
const (
	TierOriginals = "originals/"
	Tier736       = "736x/"
	Tier474       = "474x/"
	Tier236       = "236x/"
)

// Asset is one downloadable image as seen by a single tier attempt
type Asset struct {
	SourceURL    string  `json:"source_url"`
	FileName     string  `json:"file_name"`
	RewrittenURL *string `json:"rewritten_url,omitempty"`
	TargetFolder string  `json:"target_folder"`
	Tier         string  `json:"tier,omitempty"`
	Error        string  `json:"error,omitempty"`
}

// Applicable reports whether the tier produced a download URL
func (a Asset) Applicable() bool {
	return a.RewrittenURL != nil
}

// BoardTarget is a board discovered on a profile page
type BoardTarget struct {
	BoardURL     string `json:"board_url"`
	BoardName    string `json:"board_name"`
	ParentFolder string `json:"parent_folder"`
}

// FailedAsset pairs an asset URL with the last error seen for it
type FailedAsset struct {
	Asset  string `json:"asset"`
	Reason string `json:"reason"`
}

// DownloadOutcome is the aggregate result of one board batch
type DownloadOutcome struct {
	Attempted int           `json:"attempted"`
	Saved     int           `json:"saved"`
	Skipped   int           `json:"skipped"`
	Bytes     int64         `json:"bytes"`
	Failed    []FailedAsset `json:"failed"`
}

// HasFailures reports whether any asset ended in failure
func (o DownloadOutcome) HasFailures() bool {
	return len(o.Failed) > 0
}

// BoardResult is the outcome of one board inside a profile run
type BoardResult struct {
	BoardURL string          `json:"board_url"`
	Outcome  DownloadOutcome `json:"outcome"`
	Err      string          `json:"error,omitempty"`
	Resumed  bool            `json:"resumed,omitempty"`
}

// Failed reports whether the board errored or lost any asset
func (b BoardResult) Failed() bool {
	return b.Err != "" || b.Outcome.HasFailures()
}

// ProfileOutcome is the aggregate result of a profile-wide run.
// Success is false when at least one board failed.
type ProfileOutcome struct {
	Success      bool          `json:"success"`
	Username     string        `json:"username"`
	Boards       []BoardResult `json:"boards"`
	FailedBoards []string      `json:"failed_boards"`
}

// Totals sums the per-board outcomes
func (p ProfileOutcome) Totals() DownloadOutcome {
	var total DownloadOutcome
	for _, b := range p.Boards {
		total.Attempted += b.Outcome.Attempted
		total.Saved += b.Outcome.Saved
		total.Skipped += b.Outcome.Skipped
		total.Bytes += b.Outcome.Bytes
		total.Failed = append(total.Failed, b.Outcome.Failed...)
	}
	return total
}
