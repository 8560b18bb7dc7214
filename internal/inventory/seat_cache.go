// Package inventory implements the fast seat-availability counters that
// guard bookings against overselling.  Counters live in a Redis hash per
// showtime (key "showtime_seats:{id}", field = zone label, value = seats
// remaining) and are mutated only through the atomic primitives below.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/NorthFirstGroup/backend/internal/model"
)

// ErrUnknownZone is returned by Reserve when the counter hash exists but
// carries no field for the requested zone, or when the hash itself was
// never initialized.  The caller must treat it as a failed reservation.
var ErrUnknownZone = errors.New("zone not present in seat counter cache")

// SeatCache is the capability interface for zone seat counters.  Reserve
// and Release are the forward and inverse halves of a saga: every zone a
// caller reserves must be released if the surrounding unit of work fails.
// Callers must never release more than they reserved.
type SeatCache interface {
	// Initialize overwrites all counters for a showtime with full
	// capacities.  It is a full overwrite and therefore idempotent.
	Initialize(ctx context.Context, showtimeID string, zones []model.ZoneCapacity) error
	// Reserve atomically decrements a zone counter by qty.  It returns
	// false when fewer than qty seats remain; in that case the counter is
	// left unchanged.  Errors indicate the store is unreachable and the
	// booking must fail closed.
	Reserve(ctx context.Context, showtimeID, zone string, qty int) (bool, error)
	// Release credits qty seats back to a zone counter.
	Release(ctx context.Context, showtimeID, zone string, qty int) error
	// Peek returns a non-authoritative snapshot of a zone counter.
	Peek(ctx context.Context, showtimeID, zone string) (int, error)
	// Clear drops every counter for a showtime.
	Clear(ctx context.Context, showtimeID string) error
}

const seatKeyPrefix = "showtime_seats"

// seatKey builds the Redis hash key for one showtime's counters.
func seatKey(showtimeID string) string {
	return seatKeyPrefix + ":" + showtimeID
}

// reserveScript performs the check-and-decrement indivisibly.  HINCRBY by
// the negative quantity, and if the result went below zero credit the
// quantity straight back inside the same script so no concurrent caller
// can ever commit against a negative counter.  A missing field decrements
// from zero and is indistinguishable from an empty zone, which is the
// fail-closed behaviour we want; -2 tells the caller the field was absent.
var reserveScript = redis.NewScript(`
    local exists = redis.call('HEXISTS', KEYS[1], ARGV[1])
    if exists == 0 then
        return -2
    end
    local remaining = redis.call('HINCRBY', KEYS[1], ARGV[1], -ARGV[2])
    if remaining < 0 then
        redis.call('HINCRBY', KEYS[1], ARGV[1], ARGV[2])
        return -1
    end
    return remaining
`)

// RedisSeatCache is the production SeatCache backed by go-redis.
type RedisSeatCache struct {
	rdb *redis.Client
}

// NewRedisSeatCache wraps an already connected Redis client.
func NewRedisSeatCache(rdb *redis.Client) *RedisSeatCache {
	if rdb == nil {
		panic("nil redis client passed to NewRedisSeatCache")
	}
	return &RedisSeatCache{rdb: rdb}
}

// Initialize resets the showtime's hash to the given capacities.  The DEL
// and HSETs run in one MULTI/EXEC so readers never observe a half-written
// counter set.
func (c *RedisSeatCache) Initialize(ctx context.Context, showtimeID string, zones []model.ZoneCapacity) error {
	key := seatKey(showtimeID)
	pipe := c.rdb.TxPipeline()
	pipe.Del(ctx, key)
	for _, z := range zones {
		pipe.HSet(ctx, key, z.Zone, z.Capacity)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("initialize seat counters for showtime %s: %w", showtimeID, err)
	}
	return nil
}

// Reserve runs the atomic check-and-decrement script.  ok=false means the
// zone had fewer than qty seats left; the counter is unchanged in that case.
func (c *RedisSeatCache) Reserve(ctx context.Context, showtimeID, zone string, qty int) (bool, error) {
	if qty <= 0 {
		return false, fmt.Errorf("reserve quantity must be positive, got %d", qty)
	}
	res, err := reserveScript.Run(ctx, c.rdb, []string{seatKey(showtimeID)}, zone, qty).Int64()
	if err != nil {
		return false, fmt.Errorf("reserve %d seats in showtime %s zone %s: %w", qty, showtimeID, zone, err)
	}
	switch {
	case res == -2:
		return false, fmt.Errorf("showtime %s zone %s: %w", showtimeID, zone, ErrUnknownZone)
	case res < 0:
		return false, nil
	default:
		return true, nil
	}
}

// Release credits seats back after a failed booking attempt.  It only
// restores counts validly subtracted by the same attempt, so repeating it
// with the caller's own reserved quantities is safe.
func (c *RedisSeatCache) Release(ctx context.Context, showtimeID, zone string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("release quantity must be positive, got %d", qty)
	}
	if err := c.rdb.HIncrBy(ctx, seatKey(showtimeID), zone, int64(qty)).Err(); err != nil {
		return fmt.Errorf("release %d seats in showtime %s zone %s: %w", qty, showtimeID, zone, err)
	}
	return nil
}

// Peek returns the current counter value, or 0 when the zone is unknown.
func (c *RedisSeatCache) Peek(ctx context.Context, showtimeID, zone string) (int, error) {
	v, err := c.rdb.HGet(ctx, seatKey(showtimeID), zone).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("peek showtime %s zone %s: %w", showtimeID, zone, err)
	}
	return v, nil
}

// Clear removes the showtime's counter hash entirely.
func (c *RedisSeatCache) Clear(ctx context.Context, showtimeID string) error {
	if err := c.rdb.Del(ctx, seatKey(showtimeID)).Err(); err != nil {
		return fmt.Errorf("clear seat counters for showtime %s: %w", showtimeID, err)
	}
	return nil
}
