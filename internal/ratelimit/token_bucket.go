package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// The bucket state is a hash {tokens, ts}; ts is the Redis server clock in
// milliseconds so every API replica refills against the same time source.
// tokens is returned as a string because Redis truncates Lua numbers.
const takeScript = `
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local ttl = tonumber(ARGV[3])

local clock = redis.call("TIME")
local now = clock[1] * 1000 + math.floor(clock[2] / 1000)

local state = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(state[1]) or burst
local ts = tonumber(state[2]) or now
if now > ts then
  tokens = math.min(burst, tokens + (now - ts) / 1000 * rate)
end

local allowed = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
end

redis.call("HSET", KEYS[1], "tokens", tokens, "ts", now)
redis.call("PEXPIRE", KEYS[1], ttl)
return {allowed, tostring(tokens), now}
`

type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// clientBucket refills perSecond tokens every second up to burst, one bucket
// per key under prefix.
type clientBucket struct {
	client    redis.Scripter
	script    *redis.Script
	prefix    string
	perSecond float64
	burst     int
	ttl       time.Duration
}

func newClientBucket(client redis.Scripter, prefix string, perSecond float64, burst int) *clientBucket {
	// Idle buckets expire once they would have refilled twice over.
	ttl := time.Duration(math.Max(1, math.Ceil(float64(burst)/perSecond*2))) * time.Second
	return &clientBucket{
		client:    client,
		script:    redis.NewScript(takeScript),
		prefix:    prefix,
		perSecond: perSecond,
		burst:     burst,
		ttl:       ttl,
	}
}

func (b *clientBucket) take(ctx context.Context, id string) (*RateLimitResult, error) {
	if id == "" {
		return nil, errors.New("rate limit key is empty")
	}
	reply, err := b.script.Run(ctx, b.client, []string{b.prefix + id},
		b.perSecond, b.burst, b.ttl.Milliseconds(),
	).Slice()
	if err != nil {
		return nil, err
	}
	if len(reply) != 3 {
		return nil, fmt.Errorf("rate limit script returned %d values", len(reply))
	}

	allowed, _ := reply[0].(int64)
	nowMillis, _ := reply[2].(int64)
	tokensText, _ := reply[1].(string)
	tokens, err := strconv.ParseFloat(tokensText, 64)
	if err != nil {
		return nil, fmt.Errorf("rate limit script returned tokens %q", tokensText)
	}

	res := &RateLimitResult{
		Allowed:   allowed == 1,
		Limit:     b.burst,
		Remaining: int(tokens),
		ResetTime: time.UnixMilli(nowMillis),
	}
	if !res.Allowed {
		res.RetryAfter = time.Duration((1 - tokens) / b.perSecond * float64(time.Second))
		res.ResetTime = res.ResetTime.Add(res.RetryAfter)
	}
	return res, nil
}
