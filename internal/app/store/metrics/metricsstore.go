package metricsstore

import (
	"context"
)

// Counter is satisfied by the profile and item stores.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// Counts is the set of totals shown on the admin dashboard.
type Counts struct {
	Users int64
	Items int64

	// Partial is set when at least one count could not be read and was
	// reported as 0.
	Partial bool
}

// FetchDashboardCounts returns the totals used by the admin dashboard.
// Intentionally tolerant: on error it returns 0 for that counter.
func FetchDashboardCounts(ctx context.Context, users, items Counter) Counts {
	var out Counts

	if n, err := users.Count(ctx); err == nil {
		out.Users = n
	} else {
		out.Partial = true
	}

	if n, err := items.Count(ctx); err == nil {
		out.Items = n
	} else {
		out.Partial = true
	}

	return out
}
