// Package telemetry periodically refreshes the best-effort context shown
// alongside wallet operations: node status from the ledger connection
// and an XRP market quote from an external price API. Fetch failures are
// logged and leave the previously published values in place; they never
// surface as user-facing errors.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/polysola/copilotxrp/internal/config"
	"github.com/polysola/copilotxrp/internal/session"
)

// Source is the session surface the poller reads from and publishes to.
type Source interface {
	ServerInfo(ctx context.Context) (session.NetworkStatus, error)
	SetNetworkStatus(session.NetworkStatus)
	SetMarketQuote(session.MarketQuote)
}

// marketAsset is the key the price API files the XRP quote under.
const marketAsset = "ripple"

// Poller drives the telemetry refresh cycle.
type Poller struct {
	src    Source
	cfg    *config.Config
	log    *zap.Logger
	client *http.Client
}

// New creates a poller publishing into the given source.
func New(src Source, cfg *config.Config, log *zap.Logger) *Poller {
	return &Poller{
		src:    src,
		cfg:    cfg,
		log:    log,
		client: &http.Client{Timeout: cfg.Market.FetchTimeout},
	}
}

// Refresh runs one round of both fetches concurrently. Each fetch fails
// independently: a dead price API must not hide node status and vice
// versa.
func (p *Poller) Refresh(ctx context.Context) {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ns, err := p.src.ServerInfo(ctx)
		if err != nil {
			p.log.Debug("node telemetry fetch failed", zap.Error(err))
			return nil
		}
		p.src.SetNetworkStatus(ns)
		return nil
	})
	g.Go(func() error {
		q, err := p.fetchMarket(ctx)
		if err != nil {
			p.log.Debug("market quote fetch failed", zap.Error(err))
			return nil
		}
		p.src.SetMarketQuote(q)
		return nil
	})
	// Both goroutines swallow their errors after logging; Wait only
	// synchronizes completion.
	_ = g.Wait()
}

// Run refreshes immediately and then on every interval tick until the
// context is cancelled.
func (p *Poller) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Refresh(ctx)
		}
	}
}

// fetchMarket pulls the current XRP quote from the configured price API.
// The response maps asset ids to quote objects.
func (p *Poller) fetchMarket(ctx context.Context) (session.MarketQuote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.Market.URL, nil)
	if err != nil {
		return session.MarketQuote{}, fmt.Errorf("telemetry: building market request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return session.MarketQuote{}, fmt.Errorf("telemetry: market request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return session.MarketQuote{}, fmt.Errorf("telemetry: market API returned %s", resp.Status)
	}

	var out map[string]struct {
		USD          float64 `json:"usd"`
		USD24hChange float64 `json:"usd_24h_change"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return session.MarketQuote{}, fmt.Errorf("telemetry: malformed market response: %w", err)
	}
	quote, ok := out[marketAsset]
	if !ok {
		return session.MarketQuote{}, fmt.Errorf("telemetry: market response carries no %q entry", marketAsset)
	}
	return session.MarketQuote{PriceUSD: quote.USD, Change24hPct: quote.USD24hChange}, nil
}
