package main

import (
	"context"
	"net/http"
	"time"

	"github.com/sells-group/leadgen-cli/internal/cache"
	"github.com/sells-group/leadgen-cli/internal/leads"
	"github.com/sells-group/leadgen-cli/internal/verify"
	"github.com/sells-group/leadgen-cli/pkg/neverbounce"
)

// appEnv holds the initialized cache tiers, gateway and orchestrator shared
// by the verify/leads/cache/export/serve commands.
type appEnv struct {
	Gateway      *cache.Gateway
	Local        *cache.LocalStore
	Ledger       *leads.Ledger
	Orchestrator *verify.Orchestrator
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Ledger != nil {
		_ = e.Ledger.Close()
	}
	if e.Local != nil {
		_ = e.Local.Close()
	}
}

// initEnv sets up both cache tiers behind the gateway, the export ledger,
// the provider client, and the orchestrator. Callers should defer
// env.Close().
func initEnv(ctx context.Context) (*appEnv, error) {
	remote := cache.NewRemoteStore(cfg.Cache.RemoteURL,
		cache.WithRemoteHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Cache.RemoteTimeoutSecs) * time.Second,
		}),
	)

	local, err := cache.NewLocalStore(cfg.Cache.LocalPath)
	if err != nil {
		return nil, err
	}

	ledger, err := leads.OpenLedger(cfg.Export.LedgerPath)
	if err != nil {
		_ = local.Close()
		return nil, err
	}

	selector := cache.NewProbeSelector(ctx, remote,
		time.Duration(cfg.Cache.ReprobeSecs)*time.Second)
	gateway := cache.NewGateway(remote, local, selector)

	provider := neverbounce.NewClient(cfg.NeverBounce.Key,
		neverbounce.WithBaseURL(cfg.NeverBounce.BaseURL))

	orch := verify.New(gateway, provider,
		verify.WithTimeout(time.Duration(cfg.NeverBounce.TimeoutSecs)*time.Second),
		verify.WithRateLimit(cfg.NeverBounce.RatePerSec, cfg.NeverBounce.Burst),
	)

	return &appEnv{
		Gateway:      gateway,
		Local:        local,
		Ledger:       ledger,
		Orchestrator: orch,
	}, nil
}
