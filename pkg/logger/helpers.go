package logger

// LogAssetOutcome logs the result of one asset download
func LogAssetOutcome(l Logger, board, file, tier string, bytes int64, err error) {
	fields := map[string]interface{}{
		"board": board,
		"file":  file,
	}
	if err != nil {
		l.WithFields(fields).WithError(err).Error("Asset download failed")
		return
	}
	fields["tier"] = tier
	fields["bytes"] = bytes
	l.InfoWithFields("Asset saved", fields)
}

// LogCaptureStop logs why scroll capture ended
func LogCaptureStop(l Logger, url, reason string, scrolls, snapshots int) {
	l.InfoWithFields("Scroll capture finished", map[string]interface{}{
		"url":       url,
		"reason":    reason,
		"scrolls":   scrolls,
		"snapshots": snapshots,
	})
}

// LogRetry logs a retry that is about to be attempted
func LogRetry(l Logger, url string, attempt int, delayMs int64, err error) {
	l.WithError(err).WarnWithFields("Retrying download", map[string]interface{}{
		"url":      url,
		"attempt":  attempt,
		"delay_ms": delayMs,
	})
}
