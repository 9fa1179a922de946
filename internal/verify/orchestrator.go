// Package verify orchestrates candidate verification against the provider,
// reading and writing the verification cache.
package verify

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadgen-cli/internal/cache"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/pkg/neverbounce"
)

// State tracks one candidate's progress through verification.
type State string

const (
	StateUnverified      State = "unverified"
	StateCheckingCache   State = "checking_cache"
	StateCallingProvider State = "calling_provider"
	StateCachingResult   State = "caching_result"
	StateDone            State = "done"
	StateFailed          State = "failed"
)

// Cache is the gateway surface the orchestrator needs.
type Cache interface {
	Get(ctx context.Context, email string) (*model.VerificationRecord, error)
	Put(ctx context.Context, rec model.VerificationRecord) error
}

// Provider is the verification provider surface. Satisfied by
// neverbounce.Client.
type Provider interface {
	Check(ctx context.Context, email string) (*neverbounce.CheckResponse, error)
}

// Result is the settled outcome (or error) for one candidate in a batch.
type Result struct {
	Outcome *model.Outcome
	Err     error
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRateLimit throttles provider calls across all in-flight verifications.
func WithRateLimit(perSec float64, burst int) Option {
	return func(o *Orchestrator) {
		o.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
	}
}

// WithTimeout bounds each provider call; timing out counts as a provider
// failure (no cache write).
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.timeout = d
	}
}

// WithConcurrency caps in-flight verifications within a batch.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		o.concurrency = n
	}
}

// WithProgress registers a per-candidate state transition callback.
func WithProgress(fn func(email string, state State)) Option {
	return func(o *Orchestrator) {
		o.progress = fn
	}
}

// Orchestrator coordinates cache lookups, provider calls and cache writes.
type Orchestrator struct {
	cache       Cache
	provider    Provider
	limiter     *rate.Limiter
	timeout     time.Duration
	concurrency int
	progress    func(email string, state State)
}

// New creates an orchestrator over the given cache gateway and provider.
func New(c Cache, p Provider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cache:       c,
		provider:    p,
		concurrency: 3,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) report(email string, state State) {
	if o.progress != nil {
		o.progress(email, state)
	}
}

// VerifyOne verifies a single email. A cache hit is returned immediately
// with no provider call. On a miss the provider is called once; a successful
// response is written back through the gateway before returning. Provider
// failures are returned to the caller and never cached, so a later call
// retries the provider.
func (o *Orchestrator) VerifyOne(ctx context.Context, email string, lead model.LeadContext) (*model.Outcome, error) {
	key := cache.Key(email)

	o.report(key, StateCheckingCache)
	rec, err := o.cache.Get(ctx, key)
	if err != nil {
		o.report(key, StateFailed)
		return nil, eris.Wrapf(err, "verify: cache lookup for %s", key)
	}
	if rec != nil {
		o.report(key, StateDone)
		return &model.Outcome{
			Email:  key,
			Status: rec.Status,
			Source: model.SourceCache,
		}, nil
	}

	o.report(key, StateCallingProvider)
	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			o.report(key, StateFailed)
			return nil, eris.Wrap(err, "verify: rate limiter wait")
		}
	}

	checkCtx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		checkCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	resp, err := o.provider.Check(checkCtx, key)
	if err != nil {
		o.report(key, StateFailed)
		return nil, eris.Wrapf(err, "verify: provider check for %s", key)
	}

	status := model.ParseStatus(resp.Result)
	record := model.VerificationRecord{
		Email:       key,
		Status:      status,
		FirstName:   lead.FirstName,
		LastName:    lead.LastName,
		CompanyName: lead.CompanyName,
		Domain:      lead.Domain,
		ListID:      lead.ListID,
		CreatedAt:   time.Now().UnixMilli(),
	}

	o.report(key, StateCachingResult)
	if err := o.cache.Put(ctx, record); err != nil {
		// The verification itself succeeded; a write failure here means both
		// tiers are down. Surface the outcome and log the write failure so
		// the next lookup retries the provider.
		zap.L().Error("verify: caching result failed",
			zap.String("email", key),
			zap.Error(err),
		)
	}

	o.report(key, StateDone)
	return &model.Outcome{
		Email:           key,
		Status:          status,
		Source:          model.SourceProvider,
		ExecutionTimeMS: resp.ExecutionTime,
		Flags:           resp.Flags,
	}, nil
}

// VerifyBatch verifies every email concurrently and collects a Result per
// email. Candidates settle independently: one failure neither cancels nor
// fails the others, and no completion order is guaranteed.
func (o *Orchestrator) VerifyBatch(ctx context.Context, emails []string, lead model.LeadContext) map[string]Result {
	var mu sync.Mutex
	results := make(map[string]Result, len(emails))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for _, email := range emails {
		email := email
		g.Go(func() error {
			outcome, err := o.VerifyOne(gCtx, email, lead)
			mu.Lock()
			results[cache.Key(email)] = Result{Outcome: outcome, Err: err}
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return results
}
