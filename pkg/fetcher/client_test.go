package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinscraper/pkg/errors"
	"pinscraper/pkg/logger"
	"pinscraper/pkg/ratelimit"
)

func TestGetSendsBrowserHeaders(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpegdata"))
	}))
	defer server.Close()

	client := NewClient(5*time.Second, nil, logger.NewNopLogger())
	client.SetHeader("X-Test", "yes")

	resp, err := client.Get(context.Background(), server.URL+"/originals/ab/cd/ef/abcdef.jpg")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.True(t, resp.OK())
	assert.Equal(t, http.StatusOK, resp.Status)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "jpegdata", string(body))

	assert.Contains(t, got.Get("User-Agent"), "Mozilla/5.0")
	assert.Equal(t, "https://www.pinterest.com/", got.Get("Referer"))
	assert.Equal(t, "yes", got.Get("X-Test"))
}

func TestGetReturnsErrorStatusesAsResponses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	resp, err := NewClient(time.Second, nil, logger.NewNopLogger()).Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusForbidden, resp.Status)
}

func TestGetTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(time.Second, nil, logger.NewNopLogger()).Get(context.Background(), url)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeTransient))
	assert.Contains(t, err.Error(), "network error")

	var typed *errors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, "network error", typed.Message)
	assert.NotNil(t, typed.Err)
}

func TestGetHonoursRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	limiter := ratelimit.NewTokenBucket(1, time.Hour)
	client := NewClient(time.Second, limiter, logger.NewNopLogger())

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.Get(ctx, server.URL)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStatusError(t *testing.T) {
	tests := []struct {
		status   int
		message  string
		wantType errors.ErrorType
	}{
		{403, "status 403 Forbidden", errors.ErrorTypePermanent},
		{404, "status 404 Not Found", errors.ErrorTypePermanent},
		{429, "status 429 Too Many Requests", errors.ErrorTypeTransient},
		{503, "status 503 Service Unavailable", errors.ErrorTypeTransient},
	}

	for _, tt := range tests {
		err := StatusError(tt.status)
		assert.Contains(t, err.Error(), tt.message)
		assert.True(t, errors.IsType(err, tt.wantType), "status %d", tt.status)
	}

	assert.True(t, errors.IsPermanentReason(StatusError(403).Error(), errors.DefaultPermanentMarkers))
	assert.False(t, errors.IsPermanentReason(StatusError(429).Error(), errors.DefaultPermanentMarkers))
}
