package portal

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func robotsServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(status)
		_, _ = fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCheck_Disallowed(t *testing.T) {
	srv := robotsServer(t, http.StatusOK, "User-agent: *\nDisallow: /h_rr25/\nCrawl-delay: 5\n")

	v, err := Check(context.Background(), srv.Client(), srv.URL+"/h_rr25/index.php", "")
	require.NoError(t, err)
	assert.True(t, v.Known)
	assert.False(t, v.Allowed)
	assert.Equal(t, 5*time.Second, v.CrawlDelay)
}

func TestCheck_Allowed(t *testing.T) {
	srv := robotsServer(t, http.StatusOK, "User-agent: *\nDisallow: /admin/\n")

	v, err := Check(context.Background(), srv.Client(), srv.URL+"/h_rr25/index.php", "resultfetch")
	require.NoError(t, err)
	assert.True(t, v.Allowed)
	assert.Zero(t, v.CrawlDelay)
}

func TestCheck_MissingRobotsAllowsAll(t *testing.T) {
	srv := robotsServer(t, http.StatusNotFound, "")

	v, err := Check(context.Background(), srv.Client(), srv.URL+"/index.php", "")
	require.NoError(t, err)
	assert.True(t, v.Allowed)
}

func TestCheck_UnreachableHost(t *testing.T) {
	srv := robotsServer(t, http.StatusOK, "")
	url := srv.URL
	srv.Close()

	v, err := Check(context.Background(), nil, url+"/index.php", "")
	require.NoError(t, err)
	assert.True(t, v.Allowed)
	assert.False(t, v.Known)
}

func TestPacer_Spacing(t *testing.T) {
	p := NewPacer(40 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, p.Wait(ctx))
	require.NoError(t, p.Wait(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestPacer_ZeroIntervalNeverWaits(t *testing.T) {
	p := NewPacer(0)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	for i := 0; i < 100; i++ {
		require.NoError(t, p.Wait(ctx))
	}
}

func TestPacer_Cancelled(t *testing.T) {
	p := NewPacer(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, p.Wait(ctx))
	cancel()
	assert.Error(t, p.Wait(ctx))
}
