package routes

import (
	"context"
	"time"

	"github.com/angelmondragon/iacol-backend/pkg/redis"
)

// rateStore is the Redis surface used by the login and client rate limits.
type rateStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// pingerOrNil keeps a nil client from becoming a non-nil interface.
func pingerOrNil(c *redis.Client) pinger {
	if c == nil {
		return nil
	}
	return c
}
