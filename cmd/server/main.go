package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"signalcraft-be/internal/api"
	"signalcraft-be/internal/auth"
	"signalcraft-be/internal/config"
	"signalcraft-be/internal/contact"
	"signalcraft-be/internal/db"
	"signalcraft-be/internal/design"
	"signalcraft-be/internal/logger"
	"signalcraft-be/internal/middleware"
	"signalcraft-be/internal/notify"
	"signalcraft-be/internal/order"
	"signalcraft-be/internal/product"
	"signalcraft-be/internal/upload"
	"signalcraft-be/internal/user"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var (
	initDBFunc      = db.InitDB
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

// externals are the optional clients built from configuration.
type externals struct {
	verifier    auth.TokenVerifier
	presigner   upload.Presigner
	publisher   notify.Publisher
	idempotency middleware.IdempotencyStore
	closers     []func() error
}

func (e *externals) close() {
	for _, c := range e.closers {
		if err := c(); err != nil {
			logger.L().Warn("close failed", zap.Error(err))
		}
	}
}

func buildExternals(ctx context.Context, cfg *config.Config) (*externals, error) {
	ext := &externals{
		verifier:  auth.DisabledVerifier(),
		publisher: notify.NopPublisher{},
	}

	v, err := auth.NewCognitoVerifier(ctx, cfg)
	switch {
	case err == nil:
		ext.verifier = v
	case errors.Is(err, auth.ErrNotConfigured):
		logger.L().Warn("cognito not configured; bearer tokens will be rejected")
	default:
		return nil, err
	}

	presigner, err := upload.NewS3Presigner(ctx, cfg)
	if err != nil {
		return nil, err
	}
	ext.presigner = presigner

	if len(cfg.KafkaBrokers) > 0 {
		w := notify.NewWriter(cfg.KafkaBrokers)
		pub := notify.NewKafkaPublisher(w, cfg.KafkaOrderTopic, notify.DefaultBuffer)
		ext.publisher = pub

		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			pub.Run(runCtx)
		}()
		ext.closers = append(ext.closers, func() error {
			cancel()
			<-done
			sent, failed := pub.Stats()
			logger.L().Info("order notifications flushed",
				zap.Uint64("sent", sent), zap.Uint64("failed", failed), zap.Uint64("dropped", pub.Dropped()))
			return w.Close()
		})
		logger.L().Info("order notifications enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaOrderTopic))
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		rdb := redis.NewClient(opts)
		ext.idempotency = middleware.NewRedisIdempotencyStore(rdb, cfg.IdempotencyTTL)
		ext.closers = append(ext.closers, rdb.Close)
		logger.L().Info("idempotency keys enabled", zap.Duration("ttl", cfg.IdempotencyTTL))
	}

	return ext, nil
}

// newServer wires repositories and services over database into the router.
func newServer(cfg *config.Config, database *sql.DB, ext *externals, limiter *middleware.RateLimiter) http.Handler {
	policy := auth.NewPolicy(cfg.AllowMockPayments)

	userSvc := user.NewService(user.NewRepository(database))
	orderSvc := order.NewService(order.NewRepository(database), userSvc, policy, ext.publisher)

	h := &api.Handler{
		Orders:   orderSvc,
		Designs:  design.NewService(design.NewRepository(database)),
		Products: product.NewService(product.NewRepository(database)),
		Contact:  contact.NewService(contact.NewRepository(database)),
		Uploads:  upload.NewService(ext.presigner, cfg),
		Identity: auth.NewCognitoClient(cfg, nil),

		Verifier:    ext.verifier,
		Policy:      policy,
		Limiter:     limiter,
		Idempotency: ext.idempotency,

		WebOrigin:     cfg.WebOrigin,
		SecureCookies: cfg.IsProduction(),
	}
	return h.Routes()
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database := initDBFunc(cfg)
	defer database.Close()

	ext, err := buildExternals(ctx, cfg)
	if err != nil {
		return err
	}
	defer ext.close()

	limiter := middleware.NewRateLimiter(cfg.InternalSecretKey)
	go limiter.Run(ctx.Done())

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           newServer(cfg, database, ext, limiter),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("http listening", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		errCh <- startServerFunc(srv)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.L().Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
