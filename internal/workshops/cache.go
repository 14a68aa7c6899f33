package workshops

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheKeyPrefix  = "workshop:number:"
	defaultCacheTTL = 5 * time.Minute
)

// Directory resolves workshops by platform number, read-through cached in
// Redis. Workshop rows change rarely; the TTL bounds staleness, so no
// explicit invalidation is needed.
type Directory struct {
	repo *Repository
	rdb  *redis.Client
	ttl  time.Duration
}

func NewDirectory(repo *Repository, rdb *redis.Client) *Directory {
	return &Directory{repo: repo, rdb: rdb, ttl: defaultCacheTTL}
}

func (d *Directory) FindActiveByNumber(ctx context.Context, phoneNumber string) (Workshop, error) {
	if w, ok := d.cacheGet(ctx, phoneNumber); ok {
		return w, nil
	}

	w, err := d.repo.FindActiveByNumber(ctx, phoneNumber)
	if err != nil {
		return Workshop{}, err
	}

	d.cacheSet(ctx, phoneNumber, w)
	return w, nil
}

func (d *Directory) FindByID(ctx context.Context, id string) (Workshop, error) {
	return d.repo.FindByID(ctx, id)
}

func (d *Directory) cacheGet(ctx context.Context, phoneNumber string) (Workshop, bool) {
	if d.rdb == nil {
		return Workshop{}, false
	}
	raw, err := d.rdb.Get(ctx, cacheKeyPrefix+phoneNumber).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Default().Warn("workshop cache read failed", "err", err)
		}
		return Workshop{}, false
	}
	var w Workshop
	if err := json.Unmarshal(raw, &w); err != nil {
		// Poisoned entry; fall through to the DB and overwrite.
		slog.Default().Warn("workshop cache entry malformed", "err", err)
		return Workshop{}, false
	}
	return w, true
}

func (d *Directory) cacheSet(ctx context.Context, phoneNumber string, w Workshop) {
	if d.rdb == nil {
		return
	}
	raw, err := json.Marshal(w)
	if err != nil {
		return
	}
	if err := d.rdb.Set(ctx, cacheKeyPrefix+phoneNumber, raw, d.ttl).Err(); err != nil {
		// Cache failures never fail the lookup.
		slog.Default().Warn("workshop cache write failed", "err", err)
	}
}
