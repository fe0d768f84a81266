package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var allowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
if current > tonumber(ARGV[1]) then
  return 0
end
return 1
`)

// Redis shares the window across server replicas. When Redis errors or is
// absent the in-memory limiter decides instead.
type Redis struct {
	client   redis.Scripter
	prefix   string
	fallback *FixedWindow
	timeout  time.Duration
}

func NewRedis(client redis.Scripter, prefix string) *Redis {
	return &Redis{
		client:   client,
		prefix:   prefix,
		fallback: NewFixedWindow(),
		timeout:  800 * time.Millisecond,
	}
}

func (l *Redis) Allow(key string, limit int, window time.Duration) bool {
	if limit <= 0 {
		return true
	}
	if l.client == nil {
		return l.fallback.Allow(key, limit, window)
	}

	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	ms := window.Milliseconds()
	if ms <= 0 {
		ms = 1
	}

	res, err := allowScript.Run(ctx, l.client, []string{fmt.Sprintf("%s:rate:%s", l.prefix, key)}, limit, ms).Int()
	if err != nil {
		return l.fallback.Allow(key, limit, window)
	}
	return res == 1
}

// New picks the Redis limiter when addr is set and the in-memory one
// otherwise. The returned close function releases the Redis client.
func New(addr string) (Limiter, func() error) {
	if addr == "" {
		return NewFixedWindow(), func() error { return nil }
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	return NewRedis(client, "qatrack"), client.Close
}
