package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	itemDomain "github.com/shareit-platform/service-booking/internal/domain/item"
	"go.uber.org/zap"
)

const (
	ownedItemsKeyPrefix        = "shareit:items:owned:"
	ownedItemsGenerationPrefix = "shareit:items:owned-gen:"
)

// CachedItemRepository caches owned item id sets in Redis, which the owner booking
// queries resolve on every request. Other calls pass through. Redis failures are
// logged and fall back to the wrapped repository.
type CachedItemRepository struct {
	itemDomain.ItemRepository
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedItemRepository wraps next with a Redis cache for IDsOwnedBy.
func NewCachedItemRepository(next itemDomain.ItemRepository, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedItemRepository {
	return &CachedItemRepository{ItemRepository: next, rdb: rdb, ttl: ttl, logger: logger}
}

func ownedItemsKey(ownerID uuid.UUID) string {
	return ownedItemsKeyPrefix + ownerID.String()
}

// ownedItemsGenerationKey changes on every Save for the owner and never expires.
func ownedItemsGenerationKey(ownerID uuid.UUID) string {
	return ownedItemsGenerationPrefix + ownerID.String()
}

// IDsOwnedBy serves from Redis when possible. A miss is filled inside a
// transaction watching the owner's generation key, so a Save that lands while
// the database is being read aborts the fill instead of caching a stale set.
func (r *CachedItemRepository) IDsOwnedBy(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	key := ownedItemsKey(ownerID)

	raw, err := r.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var ids []uuid.UUID
		if jsonErr := json.Unmarshal(raw, &ids); jsonErr == nil {
			return ids, nil
		}
		r.logger.Warn("discarding corrupt owned-items cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		r.logger.Warn("redis read failed, using database", zap.String("key", key), zap.Error(err))
		return r.ItemRepository.IDsOwnedBy(ctx, ownerID)
	}

	var (
		ids    []uuid.UUID
		loaded bool
		dbErr  error
	)
	err = r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		ids, dbErr = r.ItemRepository.IDsOwnedBy(ctx, ownerID)
		loaded = dbErr == nil
		if dbErr != nil {
			return dbErr
		}
		payload, err := json.Marshal(ids)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		})
		return err
	}, ownedItemsGenerationKey(ownerID))

	switch {
	case dbErr != nil:
		return nil, dbErr
	case errors.Is(err, redis.TxFailedErr):
		r.logger.Debug("owned-items set changed during fill, not caching", zap.String("key", key))
	case err != nil:
		r.logger.Warn("redis write failed", zap.String("key", key), zap.Error(err))
	}

	if !loaded {
		// Watch failed before the callback ran.
		return r.ItemRepository.IDsOwnedBy(ctx, ownerID)
	}
	return ids, nil
}

// Save stores the item, then bumps the owner's generation and drops the cached id set.
func (r *CachedItemRepository) Save(ctx context.Context, it *itemDomain.Item) error {
	if err := r.ItemRepository.Save(ctx, it); err != nil {
		return err
	}
	r.invalidate(ctx, it.OwnerID())
	return nil
}

func (r *CachedItemRepository) invalidate(ctx context.Context, ownerID uuid.UUID) {
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, ownedItemsGenerationKey(ownerID))
		pipe.Del(ctx, ownedItemsKey(ownerID))
		return nil
	})
	if err != nil {
		r.logger.Warn("redis invalidation failed",
			zap.String("owner_id", ownerID.String()),
			zap.Error(err),
		)
	}
}
