// Package leads aggregates cached verification records into lead counts and
// exports valid, unexported leads.
package leads

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Lister is the cache surface the aggregator reads.
type Lister interface {
	ListAll(ctx context.Context) (map[string]model.VerificationRecord, error)
}

// Exporter answers whether a lead has already been handed to the export
// collaborator. Export state lives with the exporter, not in the cache.
type Exporter interface {
	IsExported(ctx context.Context, email string) (bool, error)
}

// Aggregator computes on-demand lead counts from the verification cache.
type Aggregator struct {
	cache    Lister
	exporter Exporter
}

// NewAggregator creates an aggregator over the cache gateway and exporter.
func NewAggregator(cache Lister, exporter Exporter) *Aggregator {
	return &Aggregator{cache: cache, exporter: exporter}
}

// Aggregate scans every cached record and returns the count summary.
// Records with an empty list ID are excluded from the per-list breakdown but
// still counted in the totals. A cache read failure (both tiers down) is
// surfaced as an error rather than a fabricated zero result.
func (a *Aggregator) Aggregate(ctx context.Context) (*model.AggregationResult, error) {
	records, err := a.cache.ListAll(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "leads: aggregation unavailable")
	}

	result := &model.AggregationResult{
		PerList: make(map[string]int),
	}
	for email, rec := range records {
		result.TotalLeads++
		if rec.Status != model.StatusValid {
			result.Invalid++
			continue
		}

		exported, err := a.exporter.IsExported(ctx, email)
		if err != nil {
			return nil, eris.Wrapf(err, "leads: export lookup for %s", email)
		}
		if exported {
			result.ValidExported++
			continue
		}

		result.ValidUnexported++
		if rec.ListID != "" {
			result.PerList[rec.ListID]++
		}
	}
	return result, nil
}
