package ratelimit

import (
	"context"
	"errors"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/solarops/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	clientPrefix  = "solarops:token:client:"
	accountPrefix = "solarops:token:account:"

	accountLease = 10 * time.Second
)

// LoginLimiter throttles token requests per client address and serializes
// concurrent logins for the same account. It is disabled when no Redis
// address is configured.
type LoginLimiter struct {
	enabled bool

	clients  *clientBucket
	accounts *accountLock
}

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Log       *zap.Logger
}

func NewLoginLimiter(p Params) (*LoginLimiter, error) {
	addr := strings.TrimSpace(p.Config.RedisAddr)
	if addr == "" {
		p.Log.Named("ratelimit").Info("login rate limit disabled, no redis address")
		return &LoginLimiter{}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(p.Config.RedisPassword),
		DB:       p.Config.RedisDB,
	})
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error { return client.Close() },
	})
	return NewLoginLimiterWithClient(client, p.Config.TokenRatePerMinute, p.Config.TokenBurst)
}

// NewLoginLimiterWithClient builds an enabled limiter; ratePerMinute is
// converted to the per-second refill the bucket uses.
func NewLoginLimiterWithClient(client *redis.Client, ratePerMinute float64, burst int) (*LoginLimiter, error) {
	if client == nil {
		return nil, errors.New("rate limit redis client is required")
	}
	if ratePerMinute <= 0 || burst <= 0 {
		return nil, errors.New("login rate limit must be positive")
	}
	return &LoginLimiter{
		enabled:  true,
		clients:  newClientBucket(client, clientPrefix, ratePerMinute/60, burst),
		accounts: newAccountLock(client, accountPrefix, accountLease),
	}, nil
}

func (l *LoginLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *LoginLimiter) AllowClient(ctx context.Context, clientIP string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	return l.clients.take(ctx, strings.TrimSpace(clientIP))
}

// LockAccount returns ok=false while another login for email holds the lock.
func (l *LoginLimiter) LockAccount(ctx context.Context, email string) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	return l.accounts.acquire(ctx, email)
}

func (l *LoginLimiter) UnlockAccount(ctx context.Context, email, token string) error {
	if !l.Enabled() {
		return nil
	}
	return l.accounts.release(ctx, email, token)
}
