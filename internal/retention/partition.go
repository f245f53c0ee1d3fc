// Package retention moves aged records out of the live dataset into cold
// storage and prunes the audit log on a schedule.
package retention

import (
	"context"
	"time"
)

// Partition splits items into archived (older than cutoff) and kept. Items
// whose date is missing or unparseable are always kept, never silently
// archived.
func Partition[T any](items []T, cutoff time.Time, dateOf func(T) (time.Time, bool)) (archived, kept []T) {
	for _, it := range items {
		ts, ok := dateOf(it)
		if !ok || ts.IsZero() {
			kept = append(kept, it)
			continue
		}
		if ts.Before(cutoff) {
			archived = append(archived, it)
			continue
		}
		kept = append(kept, it)
	}
	return archived, kept
}

// Target is a live collection the sweep can apply an age threshold to.
type Target interface {
	Name() string
	ApplyRetention(ctx context.Context, cutoff time.Time) (archived int, err error)
}
