// Package sequence allocates the human-readable payment numbers embedded in
// confirmation numbers. Numbers are scoped to an event's calendar day and
// are monotonically allocated from a Redis counter, so they never repeat
// within a day while the counter key lives.
package sequence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/pos-order-api/internal/store"
)

const (
	counterKeyPrefix = "sequence:paymentNo:"
	dayFormat        = "20060102"
)

// day keys are Asia/Tokyo calendar days; no DST, so a fixed offset is exact
var jst = time.FixedZone("JST", 9*60*60)

// Issuer allocates payment numbers from day-scoped Redis counters.
type Issuer struct {
	rdb *redis.Client
}

// NewIssuer wraps an established Redis client.
func NewIssuer(rdb *redis.Client) *Issuer { return &Issuer{rdb: rdb} }

// Publish allocates the next payment number for the given day key
// (YYYYMMDD). The returned value is unique per day key for the lifetime of
// the backing counter, which outlives the event day and its return window.
func (i *Issuer) Publish(ctx context.Context, dayKey string) (string, error) {
	key := counterKeyPrefix + dayKey
	n, err := i.rdb.Incr(ctx, key).Result()
	if err != nil {
		return "", err
	}
	if n == 1 {
		// first allocation pins the counter's lifetime to the event day
		if err := i.rdb.ExpireAt(ctx, key, counterExpiry(dayKey, time.Now())).Err(); err != nil {
			return "", err
		}
	}
	return Format(n), nil
}

// counterExpiry returns the instant a day counter may lapse: the end of the
// event's calendar day plus the order return window. Advance sales can
// start the counter days before the event, and every number issued must
// stay reserved until the last of that day's orders stops being
// returnable. A sale landing after that point still keeps the counter one
// full return window ahead of now.
func counterExpiry(dayKey string, now time.Time) time.Time {
	floor := now.Add(store.OrdersTTL)
	day, err := time.ParseInLocation(dayFormat, dayKey, jst)
	if err != nil {
		return floor
	}
	expiry := day.AddDate(0, 0, 2)
	if expiry.Before(floor) {
		return floor
	}
	return expiry
}

// Format renders a counter value as a fixed-width payment number.
func Format(n int64) string {
	return fmt.Sprintf("%06d", n)
}
