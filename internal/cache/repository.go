package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chris/mentor/internal/logger"
	"github.com/chris/mentor/internal/model"
)

const keyPrefix = "mentor:"

// Repository caches ReadRecords results of an underlying repository for a
// short TTL. Writes drop every cached range of the written (user, kind).
// Cache failures are logged and fall through to the underlying store.
//
// Each (user, kind) has a write generation. A read only fills the cache if
// no write for its prefix happened while it was loading, so a snapshot taken
// before a write never outlives that write's invalidation. Generations are
// per process; other processes sharing a Redis store are bounded by the TTL.
type Repository struct {
	next  model.Repository
	store Store
	ttl   time.Duration
	log   *logger.Logger

	mu   sync.Mutex
	gens map[string]uint64
}

var _ model.Repository = (*Repository)(nil)

func NewRepository(next model.Repository, store Store, ttl time.Duration, log *logger.Logger) *Repository {
	return &Repository{next: next, store: store, ttl: ttl, log: log.Named("cache"), gens: make(map[string]uint64)}
}

func userKindPrefix(userID string, kind model.Kind) string {
	return fmt.Sprintf("%s%s:%s:", keyPrefix, userID, kind)
}

func rangeKey(userID string, kind model.Kind, start, end time.Time) string {
	lo := "-"
	if !start.IsZero() {
		lo = model.Day(start).Format("2006-01-02")
	}
	return userKindPrefix(userID, kind) + lo + ":" + model.Day(end).Format("2006-01-02")
}

func (r *Repository) ReadRecords(ctx context.Context, userID string, kind model.Kind, start, end time.Time) ([]model.Record, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownRecordKind, kind)
	}
	if err := model.CheckRange(start, end); err != nil {
		return nil, fmt.Errorf("reading %s records: %w", kind, err)
	}
	key := rangeKey(userID, kind, start, end)
	prefix := userKindPrefix(userID, kind)

	if data, ok, err := r.store.Get(ctx, key); err != nil {
		r.log.Warn("cache read failed", "key", key, "error", err)
	} else if ok {
		recs, err := model.DecodeRecords(kind, data)
		if err == nil {
			return recs, nil
		}
		r.log.Warn("dropping undecodable cache entry", "key", key, "error", err)
	}

	gen := r.generation(prefix)
	recs, err := r.next.ReadRecords(ctx, userID, kind, start, end)
	if err != nil {
		return nil, err
	}
	data, err := model.EncodeRecords(recs)
	if err != nil {
		r.log.Warn("encoding records for cache", "key", key, "error", err)
		return recs, nil
	}

	// Holding mu across Set orders it against invalidate's bump: either the
	// entry lands first and DeletePrefix removes it, or the bump is seen here.
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gens[prefix] != gen {
		r.log.Debug("skipping cache fill, written during read", "key", key)
		return recs, nil
	}
	if err := r.store.Set(ctx, key, data, r.ttl); err != nil {
		r.log.Warn("cache write failed", "key", key, "error", err)
	}
	return recs, nil
}

func (r *Repository) generation(prefix string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gens[prefix]
}

func (r *Repository) UpsertRecord(ctx context.Context, userID string, rec model.Record) error {
	if err := r.next.UpsertRecord(ctx, userID, rec); err != nil {
		return err
	}
	r.invalidate(ctx, userID, rec.Kind())
	return nil
}

func (r *Repository) AppendRecord(ctx context.Context, userID string, rec model.Record) (int64, error) {
	id, err := r.next.AppendRecord(ctx, userID, rec)
	if err != nil {
		return 0, err
	}
	r.invalidate(ctx, userID, rec.Kind())
	return id, nil
}

func (r *Repository) invalidate(ctx context.Context, userID string, kind model.Kind) {
	prefix := userKindPrefix(userID, kind)
	r.mu.Lock()
	r.gens[prefix]++
	r.mu.Unlock()
	if err := r.store.DeletePrefix(context.WithoutCancel(ctx), prefix); err != nil {
		r.log.Warn("cache invalidation failed", "prefix", prefix, "error", err)
	}
}
