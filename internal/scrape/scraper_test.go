package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"ycscout/internal/fetch"
	"ycscout/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeCkpt is an in-memory CheckpointStore.
type fakeCkpt struct {
	mu   sync.Mutex
	rows map[string]types.CompanyRecord
}

func newFakeCkpt() *fakeCkpt {
	return &fakeCkpt{rows: make(map[string]types.CompanyRecord)}
}

func (f *fakeCkpt) Put(url string, rec types.CompanyRecord, attempts int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[url] = rec
	return nil
}

func (f *fakeCkpt) Completed() (map[string]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	done := make(map[string]struct{}, len(f.rows))
	for url := range f.rows {
		done[url] = struct{}{}
	}
	return done, nil
}

func (f *fakeCkpt) get(url string) (types.CompanyRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.rows[url]
	return rec, ok
}

func companyPage(name, batch string) string {
	return fmt.Sprintf(`<html><body><script id="__NEXT_DATA__" type="application/json">
{"company":{"website":"https://%s.example.com","status":"Active","batch":"%s"}}
</script></body></html>`, name, batch)
}

func testFetcher(t *testing.T, retries int) *fetch.Client {
	t.Helper()
	return fetch.New(fetch.Options{RPM: 60000, Retries: retries, Timeout: 5 * time.Second})
}

func TestRun(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/companies/acme", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(companyPage("acme", "W21")))
	})
	mux.HandleFunc("/companies/beta", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(companyPage("beta", "S20")))
	})
	mux.HandleFunc("/companies/blank", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>nothing here</body></html>"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ckpt := newFakeCkpt()
	s := New(testFetcher(t, 0), ckpt, nil, Options{Concurrency: 2})

	urls := []string{
		srv.URL + "/companies/acme",
		srv.URL + "/companies/beta",
		srv.URL + "/companies/acme", // duplicate, fetched once
		srv.URL + "/companies/blank",
	}
	summary, err := s.Run(context.Background(), urls)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total, "duplicates collapse")
	assert.Equal(t, 2, summary.Scraped)
	assert.Equal(t, 1, summary.Empty)
	assert.Zero(t, summary.Failed)
	assert.Zero(t, summary.Skipped)

	rec, ok := ckpt.get(srv.URL + "/companies/acme")
	require.True(t, ok)
	assert.Equal(t, "W21", rec.Batch)
	assert.Equal(t, "https://acme.example.com", rec.Website)

	rec, ok = ckpt.get(srv.URL + "/companies/blank")
	require.True(t, ok)
	assert.True(t, rec.Empty())
}

func TestRun_Resume(t *testing.T) {
	var hits sync.Map
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Store(r.URL.Path, true)
		_, _ = w.Write([]byte(companyPage("x", "W22")))
	}))
	defer srv.Close()

	ckpt := newFakeCkpt()
	doneURL := srv.URL + "/companies/done"
	require.NoError(t, ckpt.Put(doneURL, types.CompanyRecord{YCLink: doneURL, Batch: "W20"}, 1))

	s := New(testFetcher(t, 0), ckpt, nil, Options{Concurrency: 1, Resume: true})
	summary, err := s.Run(context.Background(), []string{doneURL, srv.URL + "/companies/new"})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Scraped)

	_, refetched := hits.Load("/companies/done")
	assert.False(t, refetched, "checkpointed URL must not be fetched again")

	// Without --resume the checkpointed URL is re-scraped.
	summary, err = New(testFetcher(t, 0), ckpt, nil, Options{Concurrency: 1}).
		Run(context.Background(), []string{doneURL})
	require.NoError(t, err)
	assert.Zero(t, summary.Skipped)
	_, refetched = hits.Load("/companies/done")
	assert.True(t, refetched)
}

func TestRun_FailureCheckpointsBareRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ckpt := newFakeCkpt()
	s := New(testFetcher(t, 0), ckpt, nil, Options{Concurrency: 1})

	url := srv.URL + "/companies/down"
	summary, err := s.Run(context.Background(), []string{url})
	require.NoError(t, err, "per-link failures do not fail the run")

	assert.Equal(t, 1, summary.Failed)
	rec, ok := ckpt.get(url)
	require.True(t, ok, "failed URL still checkpointed")
	assert.True(t, rec.Empty())
	assert.Equal(t, url, rec.YCLink)
}

// stubRenderer serves a canned rendered page.
type stubRenderer struct {
	page  string
	calls int
}

func (r *stubRenderer) Render(ctx context.Context, url string) (string, error) {
	r.calls++
	return r.page, nil
}

func TestRun_BrowserFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Shell page: data only appears after client-side render.
		_, _ = w.Write([]byte("<html><body><div id=\"root\"></div></body></html>"))
	}))
	defer srv.Close()

	renderer := &stubRenderer{page: companyPage("spa", "F24")}
	ckpt := newFakeCkpt()
	s := New(testFetcher(t, 0), ckpt, renderer, Options{Concurrency: 1})

	url := srv.URL + "/companies/spa"
	summary, err := s.Run(context.Background(), []string{url})
	require.NoError(t, err)

	assert.Equal(t, 1, renderer.calls)
	assert.Equal(t, 1, summary.Scraped)
	rec, _ := ckpt.get(url)
	assert.Equal(t, "F24", rec.Batch)
}

func TestRun_CancelDuringPacing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(companyPage("x", "W22")))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	// An hour of pacing between requests: only cancellation can end
	// the run promptly.
	s := New(testFetcher(t, 0), newFakeCkpt(), nil, Options{Concurrency: 1, PaceDelay: time.Hour})
	start := time.Now()
	_, err := s.Run(ctx, []string{srv.URL + "/a", srv.URL + "/b"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRun_Cancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte("late"))
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	s := New(testFetcher(t, 0), newFakeCkpt(), nil, Options{Concurrency: 2})
	urls := []string{srv.URL + "/a", srv.URL + "/b", srv.URL + "/c", srv.URL + "/d"}
	_, err := s.Run(ctx, urls)
	require.ErrorIs(t, err, context.Canceled)
}
