package middleware

import (
	"context"
	"net/http"
	"time"

	"signalcraft-be/internal/auth"
	"signalcraft-be/internal/logger"
	"signalcraft-be/internal/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const IdempotencyHeader = "Idempotency-Key"

type IdempotencyStore interface {
	// Seen records key and reports whether it was already recorded.
	Seen(ctx context.Context, key string) (bool, error)
	// Release forgets key so the request can be retried.
	Release(ctx context.Context, key string) error
}

type RedisIdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisIdempotencyStore(rdb *redis.Client, ttl time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{rdb: rdb, ttl: ttl}
}

func (s *RedisIdempotencyStore) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, key, "1", s.ttl).Result()
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	if sr.status == 0 {
		sr.status = code
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	return sr.ResponseWriter.Write(b)
}

// Idempotency rejects a replayed Idempotency-Key on POST with 409. Requests
// without the header pass through. Store errors fail open. A key whose request
// did not succeed is released so the client can retry it.
func Idempotency(store IdempotencyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyHeader)
			if store == nil || r.Method != http.MethodPost || key == "" {
				next.ServeHTTP(w, r)
				return
			}

			scope := "anon"
			if c := auth.CallerFrom(r.Context()); c != nil && c.Sub != "" {
				scope = c.Sub
			}

			storeKey := "idem:" + scope + ":" + r.URL.Path + ":" + key
			seen, err := store.Seen(r.Context(), storeKey)
			if err != nil {
				logger.FromCtx(r.Context()).Warn("idempotency store unavailable", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if seen {
				utils.WriteJSONError(w, "duplicate request", http.StatusConflict)
				return
			}

			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			if rec.status == 0 || (rec.status >= 200 && rec.status < 300) {
				return
			}
			if err := store.Release(context.WithoutCancel(r.Context()), storeKey); err != nil {
				logger.FromCtx(r.Context()).Warn("idempotency key release failed",
					zap.String("key", storeKey), zap.Error(err))
			}
		})
	}
}
