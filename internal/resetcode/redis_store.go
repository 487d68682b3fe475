package resetcode

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "RESET_CODE:"

// claimScript deletes the code only if it still holds ARGV[1] and returns the
// milliseconds it had left, or -2 when it is gone or was replaced. GET and DEL
// run as one step, so two concurrent confirms can never both claim it.
var claimScript = redis.NewScript(`
local stored = redis.call("GET", KEYS[1])
if stored ~= ARGV[1] then
  return -2
end
local ttl = redis.call("PTTL", KEYS[1])
redis.call("DEL", KEYS[1])
return ttl
`)

// RedisStore keeps codes in Redis with a native key TTL.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore wraps a go-redis client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func key(target string) string {
	return keyPrefix + target
}

func (s *RedisStore) Put(ctx context.Context, target, code string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key(target), code, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, target string) (string, bool, error) {
	code, err := s.client.Get(ctx, key(target)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: get: %v", ErrStoreUnavailable, err)
	}
	return code, true, nil
}

// ConsumeIfMatch compares in Go, in constant time, and only then claims the
// code with a conditional delete.
func (s *RedisStore) ConsumeIfMatch(ctx context.Context, target, code string) (CheckResult, time.Duration, error) {
	stored, found, err := s.Get(ctx, target)
	if err != nil {
		return 0, 0, err
	}
	if !found {
		return CodeExpired, 0, nil
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return CodeMismatch, 0, nil
	}

	ms, err := claimScript.Run(ctx, s.client, []string{key(target)}, stored).Int64()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: claim: %v", ErrStoreUnavailable, err)
	}
	if ms == -2 {
		return CodeExpired, 0, nil
	}
	remaining := time.Duration(0)
	if ms > 0 {
		remaining = time.Duration(ms) * time.Millisecond
	}
	return CodeValid, remaining, nil
}

// Restore is SET NX, so a code issued after the claim is never overwritten.
func (s *RedisStore) Restore(ctx context.Context, target, code string, remaining time.Duration) error {
	if err := s.client.SetNX(ctx, key(target), code, remaining).Err(); err != nil {
		return fmt.Errorf("%w: restore: %v", ErrStoreUnavailable, err)
	}
	return nil
}
