// Package lock provides per-key mutual exclusion for campaign dispatch runs.
package lock

import (
	"context"
	"time"
)

// Lease is a held lock. Refresh extends it by the TTL it was acquired with.
type Lease interface {
	Refresh(ctx context.Context) error
	Release(ctx context.Context) error
}

// Locker hands out leases. Acquire fails with ErrDispatchInProgress when the
// key is already held by someone else.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, error)
}

func CampaignKey(campaignID string) string {
	return "campaign_dispatch:" + campaignID
}
