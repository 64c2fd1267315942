// Package logger provides structured logging for pinscraper.
//
// It wraps zerolog behind a small Logger interface so that components can
// attach fields (board, file, tier, attempt) without depending on zerolog
// directly, and so tests can swap in a Recorder.
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//	log := logger.GetLogger().WithField("board", "recipes")
//	log.InfoWithFields("Asset saved", map[string]interface{}{
//	    "file":  "abc123.jpg",
//	    "tier":  "originals/",
//	    "bytes": 52311,
//	})
//
// Every logger built by New carries a run_id field so that the lines of one
// invocation can be grouped when several runs share a log file.
package logger
