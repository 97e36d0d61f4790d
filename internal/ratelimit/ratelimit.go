package ratelimit

import (
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mhttp "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// Middleware builds a per-client-IP rate limiting middleware backed by redis,
// so limits hold across replicas.
func Middleware(client *redis.Client, max int64, window time.Duration) (func(http.Handler) http.Handler, error) {
	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix: "ratelimit",
	})
	if err != nil {
		return nil, fmt.Errorf("ratelimit store: %w", err)
	}
	instance := limiter.New(store, limiter.Rate{
		Period: window,
		Limit:  max,
	}, limiter.WithTrustForwardHeader(true))
	mw := mhttp.NewMiddleware(instance)
	return mw.Handler, nil
}
