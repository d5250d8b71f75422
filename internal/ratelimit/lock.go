package ratelimit

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// Only the holder's token may delete the key.
const unlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// accountLock is a short Redis lease per login email. The lease expires on
// its own if the holder never releases it.
type accountLock struct {
	client redis.Cmdable
	unlock *redis.Script
	prefix string
	lease  time.Duration
}

func newAccountLock(client redis.Cmdable, prefix string, lease time.Duration) *accountLock {
	return &accountLock{
		client: client,
		unlock: redis.NewScript(unlockScript),
		prefix: prefix,
		lease:  lease,
	}
}

func (l *accountLock) key(email string) string {
	return l.prefix + strings.ToLower(strings.TrimSpace(email))
}

func (l *accountLock) acquire(ctx context.Context, email string) (string, bool, error) {
	holder := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key(email), holder, l.lease).Result()
	if err != nil {
		return "", false, err
	}
	return holder, ok, nil
}

func (l *accountLock) release(ctx context.Context, email, holder string) error {
	if holder == "" {
		return nil
	}
	return l.unlock.Run(ctx, l.client, []string{l.key(email)}, holder).Err()
}
