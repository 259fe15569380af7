package drainer

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lock is the cooperative leader-election primitive. Acquire returns
// whether this process currently holds the lock for the key; holders must
// call it again before the TTL lapses to stay leader, and a lapsed TTL
// lets any other process take over.
type Lock interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// RedisLock implements Lock with a SET NX EX key per (project, category).
// Each process writes its own owner token so renewal can tell "we already
// hold it" apart from "someone else does".
type RedisLock struct {
	rdb     *redis.Client
	project string
	owner   string
}

// NewRedisLock builds a lock scoped to the given project. The owner token
// identifies this process instance.
func NewRedisLock(rdb *redis.Client, project string) *RedisLock {
	return &RedisLock{rdb: rdb, project: project, owner: ownerToken()}
}

func (l *RedisLock) key(category string) string {
	return fmt.Sprintf("lock:%s:%s", l.project, category)
}

// Acquire takes or renews the lock. Losing the race is a normal outcome,
// not an error; the next renewal attempt simply tries again.
func (l *RedisLock) Acquire(ctx context.Context, category string, ttl time.Duration) (bool, error) {
	key := l.key(category)
	ok, err := l.rdb.SetNX(ctx, key, l.owner, ttl).Result()
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}

	// key exists: renew only when we are the holder
	holder, err := l.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		// lapsed between SETNX and GET; the next attempt will race again
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if holder != l.owner {
		return false, nil
	}
	if err := l.rdb.Expire(ctx, key, ttl).Err(); err != nil {
		return false, err
	}
	return true, nil
}

func ownerToken() string {
	host, _ := os.Hostname()
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%s-%d-%s", host, os.Getpid(), hex.EncodeToString(b))
}
