package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// TierSelector decides, per operation, whether the remote tier should be
// tried first. Implementations track remote availability so a recovered
// remote is picked up on a later call rather than pinned down forever.
type TierSelector interface {
	UseRemote(ctx context.Context) bool
	MarkRemoteDown()
}

// probeSelector is the default TierSelector: it probes remote health at
// construction, marks the tier down on reported failures, and re-probes at
// most once per reprobe interval while degraded.
type probeSelector struct {
	remote Store

	mu        sync.Mutex
	remoteUp  bool
	lastProbe time.Time
	reprobe   time.Duration
}

// NewProbeSelector probes the remote tier once and returns a selector
// tracking its availability. A failed initial probe puts the session into
// degraded (local-primary) mode until a later re-probe succeeds.
func NewProbeSelector(ctx context.Context, remote Store, reprobe time.Duration) TierSelector {
	s := &probeSelector{
		remote:    remote,
		reprobe:   reprobe,
		lastProbe: time.Now(),
	}
	if err := remote.HealthCheck(ctx); err != nil {
		zap.L().Warn("cache: remote tier unavailable, using local tier", zap.Error(err))
	} else {
		s.remoteUp = true
	}
	return s
}

func (s *probeSelector) UseRemote(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.remoteUp {
		return true
	}
	if time.Since(s.lastProbe) < s.reprobe {
		return false
	}
	s.lastProbe = time.Now()
	if err := s.remote.HealthCheck(ctx); err != nil {
		return false
	}
	s.remoteUp = true
	zap.L().Info("cache: remote tier recovered")
	return true
}

func (s *probeSelector) MarkRemoteDown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.remoteUp {
		s.remoteUp = false
		s.lastProbe = time.Now()
	}
}

// Gateway presents the Store contract while transparently choosing between
// the remote and local tiers. Every operation tries the remote tier first
// (when the selector deems it available) and falls back to the local tier on
// failure; an error reaches the caller only when both tiers fail.
//
// Known limitation: entries written to the local tier while degraded are
// never reconciled back to the remote tier, and listAll never merges the two
// stores — it reads whichever tier is currently primary.
type Gateway struct {
	remote   Store
	local    Store
	selector TierSelector
}

// NewGateway composes the two tiers behind the given selector.
func NewGateway(remote, local Store, selector TierSelector) *Gateway {
	return &Gateway{remote: remote, local: local, selector: selector}
}

func (g *Gateway) fallback(op string, err error) {
	g.selector.MarkRemoteDown()
	zap.L().Warn("cache: remote tier failed, falling back to local",
		zap.String("op", op),
		zap.Error(err),
	)
}

func (g *Gateway) Get(ctx context.Context, email string) (*model.VerificationRecord, error) {
	if g.selector.UseRemote(ctx) {
		rec, err := g.remote.Get(ctx, email)
		if err == nil {
			return rec, nil
		}
		g.fallback("get", err)
	}
	return g.local.Get(ctx, email)
}

func (g *Gateway) Put(ctx context.Context, rec model.VerificationRecord) error {
	if g.selector.UseRemote(ctx) {
		err := g.remote.Put(ctx, rec)
		if err == nil {
			return nil
		}
		g.fallback("put", err)
	}
	return g.local.Put(ctx, rec)
}

func (g *Gateway) Delete(ctx context.Context, email string) (bool, error) {
	if g.selector.UseRemote(ctx) {
		deleted, err := g.remote.Delete(ctx, email)
		if err == nil {
			return deleted, nil
		}
		g.fallback("delete", err)
	}
	return g.local.Delete(ctx, email)
}

func (g *Gateway) DeleteAll(ctx context.Context, emails []string) (int, error) {
	if g.selector.UseRemote(ctx) {
		count, err := g.remote.DeleteAll(ctx, emails)
		if err == nil {
			return count, nil
		}
		g.fallback("delete_all", err)
	}
	return g.local.DeleteAll(ctx, emails)
}

func (g *Gateway) Clear(ctx context.Context) (int, error) {
	if g.selector.UseRemote(ctx) {
		count, err := g.remote.Clear(ctx)
		if err == nil {
			return count, nil
		}
		g.fallback("clear", err)
	}
	return g.local.Clear(ctx)
}

func (g *Gateway) ListAll(ctx context.Context) (map[string]model.VerificationRecord, error) {
	if g.selector.UseRemote(ctx) {
		records, err := g.remote.ListAll(ctx)
		if err == nil {
			return records, nil
		}
		g.fallback("list_all", err)
	}
	return g.local.ListAll(ctx)
}

func (g *Gateway) Stats(ctx context.Context) (*model.CacheStats, error) {
	if g.selector.UseRemote(ctx) {
		stats, err := g.remote.Stats(ctx)
		if err == nil {
			return stats, nil
		}
		g.fallback("stats", err)
	}
	return g.local.Stats(ctx)
}

func (g *Gateway) HealthCheck(ctx context.Context) error {
	if err := g.remote.HealthCheck(ctx); err == nil {
		return nil
	}
	return g.local.HealthCheck(ctx)
}
