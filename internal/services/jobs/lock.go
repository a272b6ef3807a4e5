package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/killallgit/persona-api/internal/services/kvstore"
)

const lockKeyPrefix = "ingestion-lock:"

// ChannelLock guards a (channel, team) pair so only one ingestion runs for
// it at a time. Locks expire with the job retention window so a crashed
// worker cannot hold a channel forever.
type ChannelLock struct {
	store kvstore.Store
	ttl   time.Duration
}

// NewChannelLock creates a lock manager over store
func NewChannelLock(store kvstore.Store, ttl time.Duration) *ChannelLock {
	if ttl <= 0 {
		ttl = DefaultRetention
	}
	return &ChannelLock{store: store, ttl: ttl}
}

// Acquire takes the lock for owner and reports whether it was free
func (l *ChannelLock) Acquire(ctx context.Context, channelID, teamID, owner string) (bool, error) {
	ok, err := l.store.SetNX(ctx, lockKey(channelID, teamID), []byte(owner), l.ttl)
	if err != nil {
		return false, fmt.Errorf("acquiring ingestion lock: %w", err)
	}
	return ok, nil
}

// Release frees the lock if owner still holds it
func (l *ChannelLock) Release(ctx context.Context, channelID, teamID, owner string) error {
	released, err := l.store.DeleteIfEquals(ctx, lockKey(channelID, teamID), []byte(owner))
	if err != nil {
		return fmt.Errorf("releasing ingestion lock: %w", err)
	}
	if !released {
		log.Printf("[WARN] Ingestion lock for channel %s team %s was not held by %s", channelID, teamID, owner)
	}
	return nil
}

// Refresh extends owner's lock to a full TTL. A lock that expired while its
// job waited in the queue is taken again if nobody else holds it. It reports
// false when another owner holds the lock.
func (l *ChannelLock) Refresh(ctx context.Context, channelID, teamID, owner string) (bool, error) {
	holder, err := l.Holder(ctx, channelID, teamID)
	if err != nil {
		return false, err
	}
	key := lockKey(channelID, teamID)
	switch holder {
	case owner:
		if err := l.store.Set(ctx, key, []byte(owner), l.ttl); err != nil {
			return false, fmt.Errorf("refreshing ingestion lock: %w", err)
		}
		return true, nil
	case "":
		ok, err := l.store.SetNX(ctx, key, []byte(owner), l.ttl)
		if err != nil {
			return false, fmt.Errorf("reacquiring ingestion lock: %w", err)
		}
		return ok, nil
	default:
		return false, nil
	}
}

// Holder returns the owner of the lock, or "" when it is free
func (l *ChannelLock) Holder(ctx context.Context, channelID, teamID string) (string, error) {
	v, err := l.store.Get(ctx, lockKey(channelID, teamID))
	if errors.Is(err, kvstore.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading ingestion lock: %w", err)
	}
	return string(v), nil
}

func lockKey(channelID, teamID string) string {
	return lockKeyPrefix + channelID + ":" + teamID
}
