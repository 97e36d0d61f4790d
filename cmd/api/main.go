package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"

	"github.com/rasel9t6/bd-ship-mart-sub000/internal/cart"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/catalog"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/checkout"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/common"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/config"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/coupon"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/events"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/health"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/lock"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/notify"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/obs"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/order"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/ratelimit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, nil)

	tracingEnabled := cfg.TracingEnabled
	if tracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "shipmart-api",
			Endpoint:      cfg.TracingEndpoint,
			Exporter:      cfg.TracingExporter,
			SamplingRatio: cfg.TracingSampling,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "shipmart-api"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if err := redisotel.InstrumentMetrics(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis metrics")
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	asynqOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url for task queue")
	}
	taskClient := asynq.NewClient(asynqOpt)
	defer func() {
		if err := taskClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close task client")
		}
	}()

	validate := validator.New()
	rates := cfg.Rates.Normalize()

	bus := &events.Bus{
		Store: &events.PGStore{Pool: pool},
		Notifiers: []events.Notifier{
			&notify.Enqueuer{Client: taskClient, Queue: cfg.NotifyQueue},
		},
	}

	catalogSvc := &catalog.Service{
		Store: &catalog.PGStore{Pool: pool},
		Cache: &catalog.Cache{Client: redisClient, TTL: cfg.CatalogCacheTTL},
		Rates: rates,
		Log:   logger,
	}
	catalogHandler := &catalog.Handler{Svc: catalogSvc}
	catalogAdmin := &catalog.AdminHandler{Svc: catalogSvc, Validate: validate}

	couponStore := &coupon.PGStore{Pool: pool}
	couponSvc := &coupon.Service{
		Store:    couponStore,
		Fallback: fallbackCoupon(cfg),
		Log:      logger,
	}
	couponAdmin := &coupon.AdminHandler{Store: couponStore, Validate: validate}

	cartSvc := &cart.Service{
		Store:   &cart.RedisStore{Client: redisClient, TTL: cfg.CartTTL},
		Catalog: catalogSvc,
	}
	cartHandler := &cart.Handler{Svc: cartSvc, Validate: validate}

	orderSvc := &order.Service{
		Store:          &order.PGStore{Pool: pool},
		Lock:           lock.Locker{R: redisClient, RetryBackoff: cfg.LockRetryBackoff},
		LockTTL:        cfg.OrderLockTTL,
		Events:         bus,
		Log:            logger.With().Str("component", "order").Logger(),
		Rates:          rates,
		ShippingAirBDT: cfg.ShippingAirBDT,
		ShippingSeaBDT: cfg.ShippingSeaBDT,
	}
	orderHandler := &order.Handler{Svc: orderSvc, PerPage: cfg.OrdersPerPage}
	orderAdmin := &order.AdminHandler{Svc: orderSvc}

	checkoutSvc := &checkout.Service{
		Carts:    cartSvc,
		Coupons:  couponSvc,
		Orders:   orderSvc,
		Products: catalogSvc,
		Log:      logger,
	}
	checkoutHandler := &checkout.Handler{Svc: checkoutSvc, Validate: validate}

	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}

	buckets := obs.ParseBucketsCSV(cfg.MetricsBucketsCSV)
	httpMetrics := obs.NewHTTPMetrics(cfg.MetricsNamespace, buckets, nil)

	limit, err := ratelimit.Middleware(redisClient, int64(cfg.RateLimitMax), cfg.RateLimitWindow)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise rate limiter")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Idempotency-Key", "X-Customer-Id", "X-Admin-Key"},
		ExposedHeaders:   []string{"X-Total-Count"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/debug/pprof", protectPprof(newPprofMux(), cfg.PprofUser, cfg.PprofPass))

	healthHandler := health.Handler{
		Checker:      readinessChecker{db: pool, redis: redisClient},
		DBTimeout:    500 * time.Millisecond,
		RedisTimeout: 300 * time.Millisecond,
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(limit)
		v.Use(customerFromHeader)

		v.Get("/products", catalogHandler.List)
		v.Get("/products/{slug}", catalogHandler.Get)

		v.Route("/carts", func(c chi.Router) {
			c.Get("/{cartId}", cartHandler.Get)
			c.Group(func(g chi.Router) {
				g.Use(idem.Middleware)
				g.Post("/", cartHandler.Create)
				g.Post("/{cartId}/items", cartHandler.AddItem)
				g.Delete("/{cartId}/items/{productId}", cartHandler.RemoveItem)
			})
		})

		v.With(idem.Middleware).Post("/orders", checkoutHandler.Create)
		v.Get("/orders", orderHandler.List)
		v.Get("/orders/{orderId}", orderHandler.Get)
		v.Get("/orders/{orderId}/tracking", orderHandler.Tracking)

		v.Route("/admin", func(admin chi.Router) {
			admin.Use(requireAdminKey(cfg.AdminAPIKey))
			admin.Post("/products", catalogAdmin.Upsert)
			admin.Post("/coupons", couponAdmin.Upsert)
			admin.Get("/coupons", couponAdmin.Get)
			admin.Get("/orders/{orderId}", orderAdmin.Get)
			admin.Patch("/orders/{orderId}/status", orderAdmin.PatchStatus)
		})
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	logger.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
}

func fallbackCoupon(cfg *config.Config) *coupon.Rule {
	if cfg.CouponFallbackCode == "" || cfg.CouponFallbackRateBps <= 0 {
		return nil
	}
	return &coupon.Rule{
		Code:    coupon.NormalizeCode(cfg.CouponFallbackCode),
		RateBps: cfg.CouponFallbackRateBps,
		Active:  true,
	}
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

// customerFromHeader identifies the shopper from the session header set by
// the storefront edge.
func customerFromHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := strings.TrimSpace(r.Header.Get("X-Customer-Id")); id != "" {
			r = r.WithContext(common.WithCustomerID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func requireAdminKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				common.JSONError(w, http.StatusForbidden, "FORBIDDEN", "admin API disabled", nil)
				return
			}
			presented := strings.TrimSpace(r.Header.Get("X-Admin-Key"))
			if subtle.ConstantTimeCompare([]byte(presented), []byte(key)) != 1 {
				common.JSONError(w, http.StatusForbidden, "FORBIDDEN", "forbidden", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type readinessChecker struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func (c readinessChecker) PingDB(ctx context.Context, timeout time.Duration) error {
	if c.db == nil {
		return errors.New("db not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.db.Ping(ctx)
}

func (c readinessChecker) PingRedis(ctx context.Context, timeout time.Duration) error {
	if c.redis == nil {
		return errors.New("redis not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.redis.Ping(ctx).Err()
}

func newPprofMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", pprof.Index)
	mux.HandleFunc("/cmdline", pprof.Cmdline)
	mux.HandleFunc("/profile", pprof.Profile)
	mux.HandleFunc("/symbol", pprof.Symbol)
	mux.HandleFunc("/trace", pprof.Trace)
	mux.Handle("/allocs", pprof.Handler("allocs"))
	mux.Handle("/block", pprof.Handler("block"))
	mux.Handle("/goroutine", pprof.Handler("goroutine"))
	mux.Handle("/heap", pprof.Handler("heap"))
	mux.Handle("/mutex", pprof.Handler("mutex"))
	mux.Handle("/threadcreate", pprof.Handler("threadcreate"))
	return mux
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	user = strings.TrimSpace(user)
	pass = strings.TrimSpace(pass)
	if user == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 ||
			subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", `Basic realm="pprof"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
