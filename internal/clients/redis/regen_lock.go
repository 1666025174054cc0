package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/mindpalace-backend/internal/logger"
)

// RegenLock serializes association regeneration per (floor, room) pair.
// Acquire returns false when another worker already holds the lease;
// the caller should requeue rather than block.
type RegenLock interface {
	Acquire(ctx context.Context, floorID, roomID uuid.UUID, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, floorID, roomID uuid.UUID, token string) error
	Close() error
}

type redisRegenLock struct {
	log *logger.Logger
	rdb *goredis.Client
}

// NewRegenLock connects to REDIS_ADDR. When the env is unset it falls
// back to an in-process lock, which is correct for a single instance.
func NewRegenLock(log *logger.Logger) (RegenLock, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		log.Warn("REDIS_ADDR not set, using in-process regeneration lock")
		return NewLocalRegenLock(log), nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisRegenLock{
		log: log.With("service", "RedisRegenLock"),
		rdb: rdb,
	}, nil
}

func lockKey(floorID, roomID uuid.UUID) string {
	return fmt.Sprintf("regen:%s:%s", floorID, roomID)
}

func (l *redisRegenLock) Acquire(ctx context.Context, floorID, roomID uuid.UUID, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, lockKey(floorID, roomID), token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// releaseScript deletes the key only if the caller still owns it.
var releaseScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

func (l *redisRegenLock) Release(ctx context.Context, floorID, roomID uuid.UUID, token string) error {
	if token == "" {
		return nil
	}
	return releaseScript.Run(ctx, l.rdb, []string{lockKey(floorID, roomID)}, token).Err()
}

func (l *redisRegenLock) Close() error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Close()
}

// localRegenLock is the single-process fallback used in tests and when
// redis is not configured.
type localRegenLock struct {
	log *logger.Logger
	mu  sync.Mutex
	// key -> token + expiry
	held map[string]localLease
}

type localLease struct {
	token   string
	expires time.Time
}

func NewLocalRegenLock(log *logger.Logger) RegenLock {
	return &localRegenLock{
		log:  log.With("service", "LocalRegenLock"),
		held: make(map[string]localLease),
	}
}

func (l *localRegenLock) Acquire(ctx context.Context, floorID, roomID uuid.UUID, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := lockKey(floorID, roomID)
	if lease, ok := l.held[key]; ok && time.Now().Before(lease.expires) {
		return "", false, nil
	}
	token := uuid.NewString()
	l.held[key] = localLease{token: token, expires: time.Now().Add(ttl)}
	return token, true, nil
}

func (l *localRegenLock) Release(ctx context.Context, floorID, roomID uuid.UUID, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := lockKey(floorID, roomID)
	if lease, ok := l.held[key]; ok && lease.token == token {
		delete(l.held, key)
	}
	return nil
}

func (l *localRegenLock) Close() error { return nil }
