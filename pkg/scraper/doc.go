// Package scraper runs board and profile downloads end to end.
//
// A board run opens a browser session, scrolls the board until its end
// marker shows up (or the page stops growing), extracts every image URL from
// the captured markup and hands them to the download engine, which walks the
// quality tiers for each image and retries transient failures.
//
// A profile run captures the profile page the same way, extracts the boards
// owned by the profile and runs each board in turn. A board that fails does
// not stop the run; it is reported in ProfileOutcome.FailedBoards.
//
// Usage:
//
//	s, err := scraper.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	outcome, err := s.RunBoard(ctx, "https://www.pinterest.com/alice/recipes/")
//
// Storage:
//
// Board runs write to {output}/{board}/ and profile runs to
// {output}/{username}/{board}/. Every board folder carries a manifest.json
// recording where each file came from. Files already present are skipped.
//
// Resuming:
//
// Profile runs keep a checkpoint of the boards that finished cleanly.
// RunProfileWithResume with resume set skips those boards; the checkpoint is
// removed once a run completes without failures.
package scraper
