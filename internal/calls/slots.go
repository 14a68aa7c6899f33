package calls

import (
	"context"
	"time"

	"workshop-intake/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// RedisCallSlots implements CallSlots on the shared Redis client.
//
// The TTL bounds slot leakage when a call-ended webhook is never delivered;
// it should comfortably exceed the longest plausible call.
type RedisCallSlots struct {
	rdb   *redis.Client
	limit int
	ttl   time.Duration
}

const (
	slotKeyPrefix  = "calls:active:"
	defaultSlotTTL = 2 * time.Hour
)

func NewRedisCallSlots(rdb *redis.Client, limit int) *RedisCallSlots {
	return &RedisCallSlots{rdb: rdb, limit: limit, ttl: defaultSlotTTL}
}

func (s *RedisCallSlots) Acquire(ctx context.Context, workshopID string) (bool, error) {
	return utils.AcquireCallSlot(ctx, s.rdb, slotKeyPrefix+workshopID, s.limit, s.ttl)
}

func (s *RedisCallSlots) Release(ctx context.Context, workshopID string) error {
	return utils.ReleaseCallSlot(ctx, s.rdb, slotKeyPrefix+workshopID)
}
