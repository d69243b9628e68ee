package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/polysola/copilotxrp/internal/config"
	"github.com/polysola/copilotxrp/internal/session"
)

// fakeSource records what the poller publishes.
type fakeSource struct {
	mu        sync.Mutex
	info      session.NetworkStatus
	infoErr   error
	published []session.NetworkStatus
	quotes    []session.MarketQuote
}

func (f *fakeSource) ServerInfo(ctx context.Context) (session.NetworkStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.info, f.infoErr
}

func (f *fakeSource) SetNetworkStatus(ns session.NetworkStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, ns)
}

func (f *fakeSource) SetMarketQuote(q session.MarketQuote) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quotes = append(f.quotes, q)
}

func (f *fakeSource) snapshot() ([]session.NetworkStatus, []session.MarketQuote) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]session.NetworkStatus(nil), f.published...), append([]session.MarketQuote(nil), f.quotes...)
}

func testConfig(marketURL string) *config.Config {
	return &config.Config{
		Market: config.MarketConfig{URL: marketURL, FetchTimeout: time.Second},
	}
}

func TestRefreshPublishesBothFetches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ripple":{"usd":0.5234,"usd_24h_change":-2.17}}`))
	}))
	defer srv.Close()

	src := &fakeSource{info: session.NetworkStatus{ServerState: "full", ValidatedLedgerSeq: 90000001}}
	p := New(src, testConfig(srv.URL), zap.NewNop())

	p.Refresh(context.Background())

	published, quotes := src.snapshot()
	require.Len(t, published, 1)
	assert.Equal(t, "full", published[0].ServerState)
	assert.Equal(t, uint32(90000001), published[0].ValidatedLedgerSeq)
	require.Len(t, quotes, 1)
	assert.Equal(t, 0.5234, quotes[0].PriceUSD)
	assert.Equal(t, -2.17, quotes[0].Change24hPct)
}

func TestRefreshFailuresAreIndependent(t *testing.T) {
	t.Run("node down, market up", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"ripple":{"usd":0.5,"usd_24h_change":0.1}}`))
		}))
		defer srv.Close()

		src := &fakeSource{infoErr: errors.New("not connected")}
		p := New(src, testConfig(srv.URL), zap.NewNop())
		p.Refresh(context.Background())

		published, quotes := src.snapshot()
		assert.Empty(t, published, "a failed fetch must not publish")
		require.Len(t, quotes, 1)
	})

	t.Run("market down, node up", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		src := &fakeSource{info: session.NetworkStatus{ServerState: "full"}}
		p := New(src, testConfig(srv.URL), zap.NewNop())
		p.Refresh(context.Background())

		published, quotes := src.snapshot()
		require.Len(t, published, 1)
		assert.Empty(t, quotes)
	})
}

func TestFetchMarketMalformed(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", `<html>rate limited</html>`},
		{"missing asset", `{"bitcoin":{"usd":60000}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			p := New(&fakeSource{}, testConfig(srv.URL), zap.NewNop())
			_, err := p.fetchMarket(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ripple":{"usd":0.5,"usd_24h_change":0}}`))
	}))
	defer srv.Close()

	src := &fakeSource{info: session.NetworkStatus{ServerState: "full"}}
	p := New(src, testConfig(srv.URL), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(ctx, time.Hour)
	}()

	// The initial refresh fires before the first tick.
	require.Eventually(t, func() bool {
		published, _ := src.snapshot()
		return len(published) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on context cancellation")
	}
}
