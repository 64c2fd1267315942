// Package retry runs an operation again after a backoff delay while its
// error still looks transient.
//
//	cfg := &retry.Config{
//		MaxAttempts: 4,
//		Backoff: &retry.ExponentialBackoff{
//			BaseDelay:  3 * time.Second,
//			Multiplier: 2.0,
//		},
//		RetryIf: retry.PermanentMarkerRetryIf([]string{"Forbidden", "Not Found"}),
//		Context: ctx,
//	}
//	err := retry.Do(func() error {
//		return download(url)
//	}, cfg)
//
// With that configuration a failing download is tried once, then retried
// after 3s, 6s and 12s. Any attempt whose error message contains one of the
// markers stops the sequence at once.
package retry
