package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"alcyxob/coachlink/internal/scheduling"
)

const slotKeyPrefix = "slots"

// SlotCache memoizes resolver output per (coach, client, date, viewpoint).
// Slot offerings are stale-tolerant by design: the propose path always
// recomputes from fresh reads, so the cache only ever affects what is shown,
// never what is accepted. Entries expire on a short TTL and are additionally
// dropped when a schedule or blackout list changes.
//
// Every method is best-effort: Redis trouble degrades to cache misses and a
// log line, never to a failed request. A nil *SlotCache disables caching.
type SlotCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewSlotCache creates a slot cache with the given entry TTL.
func NewSlotCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *SlotCache {
	return &SlotCache{client: client, ttl: ttl, logger: logger}
}

func slotKey(coachID, clientID primitive.ObjectID, date time.Time, viewerIsCoach bool) string {
	viewer := "client"
	if viewerIsCoach {
		viewer = "coach"
	}
	return fmt.Sprintf("%s:%s:%s:%s:%s", slotKeyPrefix, coachID.Hex(), clientID.Hex(), date.Format("2006-01-02"), viewer)
}

// Get returns the cached slots for the key, if present.
func (c *SlotCache) Get(ctx context.Context, coachID, clientID primitive.ObjectID, date time.Time, viewerIsCoach bool) ([]scheduling.Slot, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, slotKey(coachID, clientID, date, viewerIsCoach)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("slot cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var slots []scheduling.Slot
	if err := json.Unmarshal(raw, &slots); err != nil {
		c.logger.Warn("slot cache entry corrupt, dropping", zap.Error(err))
		return nil, false
	}
	return slots, true
}

// Set stores freshly computed slots under the key.
func (c *SlotCache) Set(ctx context.Context, coachID, clientID primitive.ObjectID, date time.Time, viewerIsCoach bool, slots []scheduling.Slot) {
	if c == nil || c.client == nil {
		return
	}

	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, slotKey(coachID, clientID, date, viewerIsCoach), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("slot cache write failed", zap.Error(err))
	}
}

// InvalidateProfile drops every cached offering the profile participates in,
// as coach or as client. Called when a weekly schedule or blackout list changes.
func (c *SlotCache) InvalidateProfile(ctx context.Context, profileID primitive.ObjectID) {
	if c == nil || c.client == nil {
		return
	}

	patterns := []string{
		fmt.Sprintf("%s:%s:*", slotKeyPrefix, profileID.Hex()),
		fmt.Sprintf("%s:*:%s:*", slotKeyPrefix, profileID.Hex()),
	}
	for _, pattern := range patterns {
		iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
		for iter.Next(ctx) {
			if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
				c.logger.Warn("slot cache invalidation failed", zap.String("key", iter.Val()), zap.Error(err))
			}
		}
		if err := iter.Err(); err != nil {
			c.logger.Warn("slot cache scan failed", zap.String("pattern", pattern), zap.Error(err))
		}
	}
}
