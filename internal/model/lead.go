// Package model defines the shared types for lead verification and aggregation.
package model

// Status is the provider-reported deliverability classification for an email.
type Status string

const (
	StatusValid      Status = "valid"
	StatusInvalid    Status = "invalid"
	StatusDisposable Status = "disposable"
	StatusCatchall   Status = "catchall"
	StatusUnknown    Status = "unknown"
)

// ParseStatus maps a provider result string onto a known Status.
// Unrecognized values collapse to StatusUnknown.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusValid, StatusInvalid, StatusDisposable, StatusCatchall, StatusUnknown:
		return Status(s)
	default:
		return StatusUnknown
	}
}

// Candidate is one deterministically generated email guess.
type Candidate struct {
	LocalPart string `json:"local_part"`
	Domain    string `json:"domain"`
}

// Address renders the candidate as local@domain.
func (c Candidate) Address() string {
	return c.LocalPart + "@" + c.Domain
}

// LeadContext carries the caller-supplied lead fields attached to a
// verification record at write time.
type LeadContext struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	CompanyName string `json:"company_name"`
	Domain      string `json:"domain"`
	ListID      string `json:"list_id,omitempty"`
}

// VerificationRecord is the cached outcome of verifying one email.
// The cache key is the lower-cased email. Records are written once per
// verification; a re-verification overwrites (last-write-wins, no history).
type VerificationRecord struct {
	Email       string `json:"email"`
	Status      Status `json:"status"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	CompanyName string `json:"companyName"`
	Domain      string `json:"domain"`
	ListID      string `json:"listId,omitempty"`
	CreatedAt   int64  `json:"createdAt"` // epoch millis
}

// Source identifies where a verification outcome came from.
type Source string

const (
	SourceCache    Source = "cache"
	SourceProvider Source = "provider"
)

// Outcome is the result of verifying one candidate email.
type Outcome struct {
	Email           string   `json:"email"`
	Status          Status   `json:"status"`
	Source          Source   `json:"source"`
	ExecutionTimeMS int64    `json:"execution_time_ms,omitempty"`
	Flags           []string `json:"flags,omitempty"`
}

// AggregationResult is the on-demand lead count summary.
// PerList counts only valid, unexported leads with a non-empty list ID;
// blank-list leads are still counted in ValidUnexported and TotalLeads.
type AggregationResult struct {
	TotalLeads      int            `json:"total_leads"`
	ValidUnexported int            `json:"valid_unexported"`
	ValidExported   int            `json:"valid_exported"`
	Invalid         int            `json:"invalid"`
	PerList         map[string]int `json:"per_list,omitempty"`
}

// CacheStats summarizes the entries held by one cache tier.
type CacheStats struct {
	TotalEntries int64 `json:"totalEntries"`
	NewestEntry  int64 `json:"newestEntry"`
	OldestEntry  int64 `json:"oldestEntry"`
}
