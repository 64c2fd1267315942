// Package fetcher issues the HTTP GETs that download image bytes.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"pinscraper/pkg/errors"
	"pinscraper/pkg/logger"
	"pinscraper/pkg/ratelimit"
)

// Response is a received HTTP response. The caller must close Body.
type Response struct {
	Status        int
	ContentLength int64
	Body          io.ReadCloser
}

// OK reports a 2xx status
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Fetcher is the download primitive the engine depends on
type Fetcher interface {
	Get(ctx context.Context, url string) (*Response, error)
}

// Client is an HTTP client with browser-like headers and a rate limit
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	limiter    ratelimit.Limiter
	logger     logger.Logger
}

// NewClient creates a Client. A nil limiter disables rate limiting.
func NewClient(timeout time.Duration, limiter ratelimit.Limiter, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			"Accept":          "image/avif,image/webp,image/apng,image/*,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
			"Referer":         "https://www.pinterest.com/",
			"Sec-Fetch-Dest":  "image",
			"Sec-Fetch-Mode":  "no-cors",
			"Sec-Fetch-Site":  "cross-site",
		},
		limiter: limiter,
		logger:  log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// Get performs a rate-limited GET. Any HTTP status is returned as a
// Response; only transport failures produce an error.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeContract,
			Message: fmt.Sprintf("failed to create request: %v", err),
		}
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.WarnWithFields("HTTP request failed", map[string]interface{}{
			"url":      url,
			"error":    err.Error(),
			"duration": duration,
		})
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &errors.Error{
			Type:    errors.ErrorTypeTransient,
			Message: "network error",
			Err:     err,
		}
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      url,
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return &Response{
		Status:        resp.StatusCode,
		ContentLength: resp.ContentLength,
		Body:          resp.Body,
	}, nil
}

// StatusError describes a non-2xx status as "status 403 Forbidden" so that
// permanent markers can be matched against the message. The type follows the
// default markers.
func StatusError(status int) error {
	msg := fmt.Sprintf("status %d %s", status, http.StatusText(status))
	errType := errors.ErrorTypeTransient
	if errors.IsPermanentReason(msg, errors.DefaultPermanentMarkers) {
		errType = errors.ErrorTypePermanent
	}
	return &errors.Error{
		Type:    errType,
		Message: msg,
		Code:    status,
	}
}
