// Package ratelimit throttles requests to the image host.
//
// TokenBucket hands out a fixed number of tokens per refill period; the
// fetcher takes one token before every GET. A bucket of N tokens per minute
// lets a short board finish at full speed while a long one settles into N
// requests a minute. Unlimited is used when limiting is switched off.
package ratelimit
