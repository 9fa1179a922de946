// Package cache persists verification records across two tiers: a remote
// HTTP key-value service and a local SQLite database. The Gateway composes
// both behind one Store, falling back to the local tier per operation when
// the remote tier fails.
package cache

import (
	"context"
	"strings"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Store is the contract both cache tiers implement. Keys are always the
// lower-cased email; Put is an unconditional overwrite.
type Store interface {
	// Get returns the record for an email, or nil on a cache miss.
	Get(ctx context.Context, email string) (*model.VerificationRecord, error)
	// Put writes a record, keyed by its (normalized) email.
	Put(ctx context.Context, rec model.VerificationRecord) error
	// Delete removes one record; reports whether anything was deleted.
	Delete(ctx context.Context, email string) (bool, error)
	// DeleteAll removes the given keys and returns the count deleted.
	DeleteAll(ctx context.Context, emails []string) (int, error)
	// Clear removes every record and returns the count deleted.
	Clear(ctx context.Context) (int, error)
	// ListAll returns every record keyed by email. Used by aggregation.
	ListAll(ctx context.Context) (map[string]model.VerificationRecord, error)
	// Stats summarizes entry counts and entry age extremes.
	Stats(ctx context.Context) (*model.CacheStats, error)
	// HealthCheck reports whether the tier is reachable.
	HealthCheck(ctx context.Context) error
}

// Key normalizes an email into its cache key.
func Key(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
