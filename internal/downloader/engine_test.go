package downloader

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinscraper/pkg/fetcher"
	"pinscraper/pkg/logger"
	"pinscraper/pkg/metadata"
	"pinscraper/pkg/models"
	"pinscraper/pkg/quality"
)

const origin = "https://img.test/"

// MockFetcher answers each URL with a fixed status; unknown URLs get 404
type MockFetcher struct {
	mu       sync.Mutex
	statuses map[string]int
	failWith error
	calls    []string
}

func NewMockFetcher() *MockFetcher {
	return &MockFetcher{statuses: make(map[string]int)}
}

func (m *MockFetcher) Set(url string, status int) {
	m.statuses[url] = status
}

func (m *MockFetcher) Get(ctx context.Context, url string) (*fetcher.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, url)
	if m.failWith != nil {
		return nil, m.failWith
	}
	status, ok := m.statuses[url]
	if !ok {
		status = 404
	}
	return &fetcher.Response{
		Status: status,
		Body:   io.NopCloser(strings.NewReader("image:" + url)),
	}, nil
}

func (m *MockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// MockStore keeps written files in memory
type MockStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

func NewMockStore() *MockStore {
	return &MockStore{files: make(map[string][]byte)}
}

func (m *MockStore) Exists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok
}

func (m *MockStore) WriteFile(path string, r io.Reader) (int64, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, r)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = buf.Bytes()
	return n, nil
}

// sleepRecorder records backoff waits instead of sleeping
type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func tierURL(tier, name string) string {
	return origin + tier + name[0:2] + "/" + name[2:4] + "/" + name[4:6] + "/" + name
}

func assetURL(name string) string {
	return "https://img.test/236x/" + name[0:2] + "/" + name[2:4] + "/" + name[4:6] + "/" + name
}

func newTestEngine(f fetcher.Fetcher, store FileStore, opts Options) (*Engine, *sleepRecorder) {
	e := NewEngine(f, store, quality.NewResolver(origin), opts, logger.NewNopLogger())
	rec := &sleepRecorder{}
	e.SetSleep(rec.Sleep)
	return e, rec
}

func TestDownloadOneAssetPrefersHighestTier(t *testing.T) {
	f := NewMockFetcher()
	f.Set(tierURL(models.TierOriginals, "ab12cd34.jpg"), 200)
	f.Set(tierURL(models.Tier736, "ab12cd34.jpg"), 200)
	store := NewMockStore()
	e, _ := newTestEngine(f, store, DefaultOptions())

	res, err := e.DownloadOneAsset(context.Background(), assetURL("ab12cd34.jpg"), "/out/board")
	require.NoError(t, err)

	assert.Equal(t, models.TierOriginals, res.Asset.Tier)
	assert.Equal(t, []string{tierURL(models.TierOriginals, "ab12cd34.jpg")}, f.Calls())
	assert.True(t, store.Exists(filepath.Join("/out/board", "ab12cd34.jpg")))
	assert.Equal(t, int64(len("image:"+tierURL(models.TierOriginals, "ab12cd34.jpg"))), res.Bytes)
}

func TestDownloadOneAssetFallsBackToNextTier(t *testing.T) {
	f := NewMockFetcher()
	f.Set(tierURL(models.TierOriginals, "ab12cd34.jpg"), 500)
	f.Set(tierURL(models.Tier736, "ab12cd34.jpg"), 200)
	f.Set(tierURL(models.Tier474, "ab12cd34.jpg"), 200)
	e, _ := newTestEngine(f, NewMockStore(), DefaultOptions())

	res, err := e.DownloadOneAsset(context.Background(), assetURL("ab12cd34.jpg"), "/out/board")
	require.NoError(t, err)

	assert.Equal(t, models.Tier736, res.Asset.Tier)
	assert.Equal(t, []string{
		tierURL(models.TierOriginals, "ab12cd34.jpg"),
		tierURL(models.Tier736, "ab12cd34.jpg"),
	}, f.Calls(), "no tier after the first success may be requested")
}

func TestDownloadOneAssetAllTiersFail(t *testing.T) {
	f := NewMockFetcher()
	for _, tier := range quality.AllTiers() {
		f.Set(tierURL(tier, "ab12cd34.jpg"), 503)
	}
	e, _ := newTestEngine(f, NewMockStore(), DefaultOptions())

	res, err := e.DownloadOneAsset(context.Background(), assetURL("ab12cd34.jpg"), "/out/board")
	require.Error(t, err)
	assert.Len(t, f.Calls(), 4)
	assert.Equal(t, "status 503 Service Unavailable", res.Asset.Error)
}

func TestDownloadOneAssetShortNameHasNoTier(t *testing.T) {
	f := NewMockFetcher()
	e, _ := newTestEngine(f, NewMockStore(), DefaultOptions())

	_, err := e.DownloadOneAsset(context.Background(), "https://img.test/236x/abc.jpg", "/out/board")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoApplicableTier))
	assert.Empty(t, f.Calls())
}

func TestProcessBoardRetriesTransientFailures(t *testing.T) {
	f := NewMockFetcher()
	for _, tier := range quality.AllTiers() {
		f.Set(tierURL(tier, "ab12cd34.jpg"), 503)
	}
	e, rec := newTestEngine(f, NewMockStore(), DefaultOptions())

	outcome := e.ProcessBoard(context.Background(), []string{assetURL("ab12cd34.jpg")}, "/out/board")

	assert.Equal(t, []time.Duration{3 * time.Second, 6 * time.Second, 12 * time.Second}, rec.delays)
	assert.Len(t, f.Calls(), 4*4, "first attempt plus three retries, four tiers each")
	require.Len(t, outcome.Failed, 1)
	assert.Equal(t, "status 503 Service Unavailable", outcome.Failed[0].Reason)
	assert.Equal(t, 1, outcome.Attempted)
	assert.Equal(t, 0, outcome.Saved)
}

func TestProcessBoardStopsRetryingOnSuccess(t *testing.T) {
	f := &flakyFetcher{MockFetcher: NewMockFetcher(), failures: 4}
	f.Set(tierURL(models.TierOriginals, "ab12cd34.jpg"), 200)
	e, rec := newTestEngine(f, NewMockStore(), DefaultOptions())

	outcome := e.ProcessBoard(context.Background(), []string{assetURL("ab12cd34.jpg")}, "/out/board")

	// every tier of the first attempt hits a network error
	assert.Equal(t, []time.Duration{3 * time.Second}, rec.delays)
	assert.Equal(t, 1, outcome.Saved)
	assert.Empty(t, outcome.Failed)
}

// flakyFetcher fails the first n requests with a network error
type flakyFetcher struct {
	*MockFetcher
	failures int
}

func (f *flakyFetcher) Get(ctx context.Context, url string) (*fetcher.Response, error) {
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("connection reset by peer")
	}
	return f.MockFetcher.Get(ctx, url)
}

func TestProcessBoardRetriesClientTimeouts(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-time.After(200 * time.Millisecond):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	client := fetcher.NewClient(20*time.Millisecond, nil, logger.NewNopLogger())
	e := NewEngine(client, NewMockStore(), quality.NewResolver(server.URL+"/"), DefaultOptions(), logger.NewNopLogger())
	rec := &sleepRecorder{}
	e.SetSleep(rec.Sleep)

	outcome := e.ProcessBoard(context.Background(), []string{assetURL("ab12cd34.jpg")}, "/out/board")

	require.Len(t, outcome.Failed, 1)
	assert.Equal(t, []time.Duration{3 * time.Second, 6 * time.Second, 12 * time.Second}, rec.delays)
	assert.Equal(t, int32(16), hits.Load())

	reason := outcome.Failed[0].Reason
	assert.True(t, strings.HasPrefix(reason, "network error: "), reason)
	assert.Equal(t, 1, strings.Count(reason, "Client.Timeout exceeded"), reason)
}

func TestProcessBoardPermanentFailureIsNotRetried(t *testing.T) {
	names := []string{"aa11aa11.jpg", "bb22bb22.jpg", "cc33cc33.jpg", "dd44dd44.jpg", "ee55ee55.jpg"}
	f := NewMockFetcher()
	for i, name := range names {
		if i == 2 {
			for _, tier := range quality.AllTiers() {
				f.Set(tierURL(tier, name), 403)
			}
			continue
		}
		f.Set(tierURL(models.TierOriginals, name), 200)
	}
	store := NewMockStore()
	e, rec := newTestEngine(f, store, DefaultOptions())

	assets := make([]string, len(names))
	for i, name := range names {
		assets[i] = assetURL(name)
	}

	var events []Event
	outcome := e.ProcessBoard(context.Background(), assets, "/out/board", WithProgress(func(ev Event) {
		events = append(events, ev)
	}))

	assert.Empty(t, rec.delays, "permanent failures must not wait")
	assert.Equal(t, 5, outcome.Attempted)
	assert.Equal(t, 4, outcome.Saved)
	require.Len(t, outcome.Failed, 1)
	assert.Equal(t, assets[2], outcome.Failed[0].Asset)
	assert.Contains(t, outcome.Failed[0].Reason, "Forbidden")
	assert.True(t, store.Exists(filepath.Join("/out/board", "ee55ee55.jpg")))

	require.Len(t, events, 5)
	assert.Equal(t, EventFailed, events[2].State)
	assert.Equal(t, EventSaved, events[4].State)
	assert.Equal(t, 5, events[4].Index)
}

func TestProcessBoardCustomPermanentMarkers(t *testing.T) {
	f := NewMockFetcher()
	for _, tier := range quality.AllTiers() {
		f.Set(tierURL(tier, "ab12cd34.jpg"), 503)
	}
	opts := DefaultOptions()
	opts.PermanentMarkers = []string{"Service Unavailable"}
	e, rec := newTestEngine(f, NewMockStore(), opts)

	outcome := e.ProcessBoard(context.Background(), []string{assetURL("ab12cd34.jpg")}, "/out/board")

	assert.Empty(t, rec.delays)
	assert.Len(t, outcome.Failed, 1)
}

func TestProcessBoardSkipsExistingFiles(t *testing.T) {
	f := NewMockFetcher()
	f.Set(tierURL(models.TierOriginals, "ab12cd34.jpg"), 200)
	store := NewMockStore()
	_, err := store.WriteFile(filepath.Join("/out/board", "ab12cd34.jpg"), strings.NewReader("old"))
	require.NoError(t, err)

	e, _ := newTestEngine(f, store, DefaultOptions())
	outcome := e.ProcessBoard(context.Background(), []string{assetURL("ab12cd34.jpg")}, "/out/board")

	assert.Equal(t, 1, outcome.Skipped)
	assert.Equal(t, 0, outcome.Saved)
	assert.Empty(t, f.Calls())

	opts := DefaultOptions()
	opts.SkipExisting = false
	e, _ = newTestEngine(f, store, opts)
	outcome = e.ProcessBoard(context.Background(), []string{assetURL("ab12cd34.jpg")}, "/out/board")
	assert.Equal(t, 1, outcome.Saved)
}

func TestProcessBoardRecordsManifest(t *testing.T) {
	f := NewMockFetcher()
	f.Set(tierURL(models.Tier736, "ab12cd34.jpg"), 200)
	for _, tier := range quality.AllTiers() {
		f.Set(tierURL(tier, "ff00ff00.jpg"), 404)
	}
	e, _ := newTestEngine(f, NewMockStore(), DefaultOptions())
	m := metadata.New("https://www.pinterest.com/alice/recipes/", "recipes")

	e.ProcessBoard(context.Background(),
		[]string{assetURL("ab12cd34.jpg"), assetURL("ff00ff00.jpg")},
		"/out/recipes", WithManifest(m))

	require.True(t, m.Has("ab12cd34.jpg"))
	entry := m.Files["ab12cd34.jpg"]
	assert.Equal(t, models.Tier736, entry.Tier)
	assert.Equal(t, tierURL(models.Tier736, "ab12cd34.jpg"), entry.DownloadURL)
	assert.False(t, m.Has("ff00ff00.jpg"))
	require.Len(t, m.Failed, 1)
	assert.Equal(t, assetURL("ff00ff00.jpg"), m.Failed[0].Asset)
}

func TestProcessBoardEmptyAssetList(t *testing.T) {
	e, _ := newTestEngine(NewMockFetcher(), NewMockStore(), DefaultOptions())
	outcome := e.ProcessBoard(context.Background(), nil, "/out/board")
	assert.Equal(t, 0, outcome.Attempted)
	assert.NotNil(t, outcome.Failed)
	assert.False(t, outcome.HasFailures())
}

func TestProcessBoardStopsOnCancelledContext(t *testing.T) {
	f := NewMockFetcher()
	e, _ := newTestEngine(f, NewMockStore(), DefaultOptions())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := e.ProcessBoard(ctx, []string{assetURL("ab12cd34.jpg"), assetURL("ff00ff00.jpg")}, "/out/board")
	assert.Equal(t, 0, outcome.Attempted)
	assert.Empty(t, f.Calls())
}

func TestReason(t *testing.T) {
	assert.Equal(t, "", Reason(nil))
	assert.Equal(t, "status 404 Not Found", Reason(fetcher.StatusError(404)))
	assert.Equal(t, "boom", Reason(errors.New("boom")))
}
