package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResendThrottle suppresses repeat confirmation e-mails inside a window.
// A nil receiver or nil client disables throttling (every signup sends).
type ResendThrottle struct {
	client *redis.Client
	window time.Duration
}

func NewResendThrottle(client *redis.Client, window time.Duration) *ResendThrottle {
	return &ResendThrottle{client: client, window: window}
}

// Allow reports whether a code may be sent for username right now. The first
// call in each window wins; later calls within the window return false.
func (t *ResendThrottle) Allow(ctx context.Context, username string) bool {
	if t == nil || t.client == nil {
		return true
	}
	ok, err := t.client.SetNX(ctx, "signup:resend:"+username, 1, t.window).Result()
	if err != nil {
		// Redis outage must not block signups.
		return true
	}
	return ok
}
