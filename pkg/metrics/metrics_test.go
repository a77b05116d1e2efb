package metrics

import (
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// freePort asks the kernel for an unused TCP port.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func scrape(t *testing.T, addr string) string {
	t.Helper()

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get(addr)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return false
		}
		body = string(data)
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond, "metrics endpoint never came up")
	return body
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(Options{Port: freePort(t)}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestServeAndScrape(t *testing.T) {
	s := newTestServer(t)

	s.ObserveCommand("list", 120*time.Millisecond, true)
	s.ObserveCommand("list", 90*time.Millisecond, false)
	s.ObserveFetch(200, true)
	s.ObserveRender(800 * time.Millisecond)
	s.SetIndicators(3)

	body := scrape(t, s.Addr())

	assert.Contains(t, body, `gcstester_cli_commands_total{outcome="success",subcommand="list"} 1`)
	assert.Contains(t, body, `gcstester_cli_commands_total{outcome="failure",subcommand="list"} 1`)
	assert.Contains(t, body, `gcstester_signed_url_fetches_total{outcome="success",status="200"} 1`)
	assert.Contains(t, body, "gcstester_page_render_seconds")
	assert.Contains(t, body, "gcstester_threat_indicators 3")
}

func TestIndicatorGaugeTracksLatest(t *testing.T) {
	s := newTestServer(t)

	s.SetIndicators(2)
	s.SetIndicators(0)

	body := scrape(t, s.Addr())
	assert.Contains(t, body, "gcstester_threat_indicators 0")
}

func TestCloseIsIdempotent(t *testing.T) {
	s := newTestServer(t)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}

func TestAddr(t *testing.T) {
	port := freePort(t)
	s, err := NewServer(Options{Port: port, Path: "/m"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer s.Close()

	assert.Contains(t, s.Addr(), "/m")
}
