package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSubmitInFlight means the same user already has a write with the same
// submit token running.
var ErrSubmitInFlight = errors.New("submit already in flight")

// SubmitGate stops a double-clicked form from writing twice. The browser
// sends one X-Submit-Token per form submission; the first request holds the
// key until it finishes or the TTL runs out.
type SubmitGate struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSubmitGate(rdb *redis.Client, ttl time.Duration) *SubmitGate {
	return &SubmitGate{rdb: rdb, ttl: ttl}
}

func gateKey(userID, token string) string {
	return fmt.Sprintf("app:submit:%s:%s", userID, token)
}

// Acquire takes the gate. An empty token is not gated. The returned release
// func is always non-nil.
func (g *SubmitGate) Acquire(ctx context.Context, userID, token string) (func(), error) {
	if token == "" {
		return func() {}, nil
	}
	k := gateKey(userID, token)
	ok, err := g.rdb.SetNX(ctx, k, "1", g.ttl).Result()
	if err != nil {
		return func() {}, err
	}
	if !ok {
		return func() {}, ErrSubmitInFlight
	}
	return func() {
		_ = g.rdb.Del(context.WithoutCancel(ctx), k).Err()
	}, nil
}
