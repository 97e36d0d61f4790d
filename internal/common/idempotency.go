package common

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const idemDefaultTTL = 24 * time.Hour

// Idem is an Idempotency-Key middleware backed by redis. Checkout and cart
// mutation endpoints sit behind it so a retried POST cannot create a second
// order.
type Idem struct {
	R   *redis.Client
	TTL time.Duration
}

// Middleware rejects requests replaying a previously seen Idempotency-Key.
// Requests without the header pass through untouched.
func (i Idem) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
		if header == "" || i.R == nil {
			next.ServeHTTP(w, r)
			return
		}
		key := idemRedisKey(header)
		ttl := i.TTL
		if ttl <= 0 {
			ttl = idemDefaultTTL
		}
		fresh, err := i.R.SetNX(r.Context(), key, "locked", ttl).Result()
		if err != nil {
			JSONError(w, http.StatusInternalServerError, "INTERNAL", "idempotency store error", map[string]any{"error": err.Error()})
			return
		}
		if !fresh {
			JSONError(w, http.StatusConflict, "IDEMPOTENT_REPLAY", "duplicate request", nil)
			return
		}
		defer func() {
			// keep the key bounded even if the handler panics mid-flight
			_ = i.R.Expire(context.Background(), key, ttl).Err()
		}()
		next.ServeHTTP(w, r)
	})
}

func idemRedisKey(header string) string {
	sum := sha256.Sum256([]byte(header))
	return "idem:" + hex.EncodeToString(sum[:])
}
