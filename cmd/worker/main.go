package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/rasel9t6/bd-ship-mart-sub000/internal/common"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/config"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/notify"
	"github.com/rasel9t6/bd-ship-mart-sub000/internal/obs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("component", "worker").Logger()
	obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	asynqOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url for task queue")
	}

	connCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	conn, err := pgx.Connect(connCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer func() {
		if err := conn.Close(context.Background()); err != nil {
			logger.Error().Err(err).Msg("close database")
		}
	}()

	worker := &notify.Worker{
		Email: common.NopEmailSender{},
		Recipient: func(ctx context.Context, customerID string) (string, error) {
			var email string
			err := conn.QueryRow(ctx, `SELECT email FROM customers WHERE id = $1`, customerID).Scan(&email)
			if errors.Is(err, pgx.ErrNoRows) {
				return "", nil
			}
			return email, err
		},
		Log: logger,
	}

	srv := asynq.NewServer(asynqOpt, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Queues: map[string]int{
			cfg.NotifyQueue: 5,
			"default":       1,
		},
		Logger: asynqZerolog{logger},
	})

	mux := asynq.NewServeMux()
	worker.Register(mux)

	logger.Info().Str("queue", cfg.NotifyQueue).Msg("worker starting")
	if err := srv.Start(mux); err != nil {
		logger.Fatal().Err(err).Msg("start worker")
	}

	<-ctx.Done()
	logger.Info().Msg("worker shutting down")
	srv.Shutdown()
}

// asynqZerolog adapts zerolog to asynq's logger interface.
type asynqZerolog struct {
	l zerolog.Logger
}

func (a asynqZerolog) Debug(args ...interface{}) { a.l.Debug().Msg(fmt.Sprint(args...)) }
func (a asynqZerolog) Info(args ...interface{})  { a.l.Info().Msg(fmt.Sprint(args...)) }
func (a asynqZerolog) Warn(args ...interface{})  { a.l.Warn().Msg(fmt.Sprint(args...)) }
func (a asynqZerolog) Error(args ...interface{}) { a.l.Error().Msg(fmt.Sprint(args...)) }
func (a asynqZerolog) Fatal(args ...interface{}) { a.l.Fatal().Msg(fmt.Sprint(args...)) }
