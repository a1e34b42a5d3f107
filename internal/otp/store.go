package otp

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoCode is returned by Peek when no pending code exists for the
// subject key.
var ErrNoCode = errors.New("no access code found")

// Store holds at most one pending code per subject key.
//
// Peek is non-destructive. Consume is idempotent: consuming a key with no
// record is a no-op. IncrementAttempts records one failed validation and
// returns the new counter value.
type Store interface {
	Put(ctx context.Context, rec Record) error
	Peek(ctx context.Context, subjectKey string) (Record, error)
	IncrementAttempts(ctx context.Context, subjectKey string) (int, error)
	Consume(ctx context.Context, subjectKey string) error
}

// ---- Redis-backed store ----

// RedisStore keeps codes in Redis hashes under "otp:<subjectKey>". The key
// TTL is set to twice the code TTL rather than the code TTL itself: the
// authenticator wants to see a stale record so it can report "expired"
// instead of "no code found" shortly after expiry; Redis still garbage
// collects abandoned codes after the grace window.
type RedisStore struct{ rdb *redis.Client }

func NewRedisStore(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

func redisKey(subjectKey string) string { return "otp:" + subjectKey }

func (s *RedisStore) Put(ctx context.Context, rec Record) error {
	key := redisKey(rec.SubjectKey)
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key) // drop prior attempts along with the prior code
	pipe.HSet(ctx, key,
		"code", rec.Code,
		"created_ms", rec.CreatedAt.UnixMilli(),
		"expires_ms", rec.ExpiresAt.UnixMilli(),
		"attempts", 0)
	grace := 2 * rec.ExpiresAt.Sub(rec.CreatedAt)
	pipe.Expire(ctx, key, grace)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Peek(ctx context.Context, subjectKey string) (Record, error) {
	vals, err := s.rdb.HGetAll(ctx, redisKey(subjectKey)).Result()
	if err != nil {
		return Record{}, err
	}
	if len(vals) == 0 || vals["code"] == "" {
		return Record{}, ErrNoCode
	}
	createdMs, _ := strconv.ParseInt(vals["created_ms"], 10, 64)
	expiresMs, _ := strconv.ParseInt(vals["expires_ms"], 10, 64)
	attempts, _ := strconv.Atoi(vals["attempts"])
	return Record{
		SubjectKey: subjectKey,
		Code:       vals["code"],
		CreatedAt:  time.UnixMilli(createdMs).UTC(),
		ExpiresAt:  time.UnixMilli(expiresMs).UTC(),
		Attempts:   attempts,
	}, nil
}

func (s *RedisStore) IncrementAttempts(ctx context.Context, subjectKey string) (int, error) {
	n, err := s.rdb.HIncrBy(ctx, redisKey(subjectKey), "attempts", 1).Result()
	return int(n), err
}

func (s *RedisStore) Consume(ctx context.Context, subjectKey string) error {
	return s.rdb.Del(ctx, redisKey(subjectKey)).Err()
}

// ---- In-process fallback store ----

// MemoryStore is the fallback when no Redis client could be established at
// startup. It is process-local, so codes are lost on restart; the user
// simply requests a new one.
type MemoryStore struct {
	mu   sync.Mutex
	recs map[string]*Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: make(map[string]*Record)}
}

func (s *MemoryStore) Put(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := rec // copy, attempts reset to whatever the caller set
	s.recs[rec.SubjectKey] = &r
	return nil
}

func (s *MemoryStore) Peek(_ context.Context, subjectKey string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recs[subjectKey]
	if !ok {
		return Record{}, ErrNoCode
	}
	return *r, nil
}

func (s *MemoryStore) IncrementAttempts(_ context.Context, subjectKey string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recs[subjectKey]
	if !ok {
		return 0, ErrNoCode
	}
	r.Attempts++
	return r.Attempts, nil
}

func (s *MemoryStore) Consume(_ context.Context, subjectKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.recs, subjectKey)
	return nil
}
