package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	nethttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	httpadp "agri-credit-engine/internal/adapter/http"
	"agri-credit-engine/internal/adapter/middleware"
	notifyadp "agri-credit-engine/internal/adapter/notify"
		"agri-credit-engine/internal/adapter/repository/redisstore"
	"agri-credit-engine/internal/adapter/repository/sqlstore"
	"agri-credit-engine/internal/adapter/repository/tenantrepo"
	"agri-credit-engine/internal/config"
	"agri-credit-engine/internal/domain/notify"
	"agri-credit-engine/internal/domain/tenant"
	"agri-credit-engine/internal/infrastructure/cache"
	"agri-credit-engine/internal/infrastructure/db"
	"agri-credit-engine/internal/infrastructure/queue"
	"agri-credit-engine/internal/logger"
	"agri-credit-engine/internal/usecase/loan"
	"agri-credit-engine/internal/usecase/portfolio"
)

const redisNamespace = "ace:"

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.NewZapLog(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, zl *zap.Logger) error {
	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}()

	var rdb *redis.Client
	if cfg.UsesRedis() {
		c, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		rdb = c
		closers = append(closers, c)
	}

	store, err := openStore(ctx, cfg, rdb)
	if err != nil {
		return err
	}

	sink, err := buildSink(cfg, rdb, zl, &closers)
	if err != nil {
		return err
	}

	repo := tenantrepo.NewBorrowerRepository(store)
	uc := loan.NewUsecase(repo, tenantrepo.NewCASUoW(repo, cfg.CASAttempts), cfg.Policy,
		loan.WithSink(sink),
		loan.WithLogger(zl.Named("loan")),
		loan.WithNotifyTimeout(cfg.NotifyTimeout),
	)
	pf := portfolio.NewService(repo, zl.Named("portfolio"))

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Recover(), echomw.RequestID(), middleware.RequestLogger(zl.Named("http")))

	var money []echo.MiddlewareFunc
	if rdb != nil {
		money = append(money, middleware.IdempotencyMiddleware(rdb, cfg.IdempotencyTTL(), zl.Named("idempotency")))
	}
	httpadp.Routes(e, httpadp.Handlers{
		Health:    httpadp.NewHandler(),
		Borrowers: httpadp.NewBorrowerHandler(uc, zl),
		Loans:     httpadp.NewLoanHandler(uc, zl),
		Portfolio: httpadp.NewPortfolioHandler(pf, zl),
	}, money...)

	errc := make(chan error, 1)
	go func() {
		addr := ":" + cfg.AppPort
		zl.Info("listening", zap.String("addr", addr), zap.String("store", cfg.StoreBackend), zap.Strings("sinks", cfg.NotifySinks))
		if err := e.Start(addr); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	zl.Info("shutting down")
	return e.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config, rdb *redis.Client) (tenant.Store, error) {
	var (
		gdb *gorm.DB
		err error
	)
	switch cfg.StoreBackend {
	case config.BackendRedis:
		return redisstore.NewTenantStore(rdb, redisNamespace), nil
	case config.BackendSQLite:
		gdb, err = db.OpenSQLite(cfg.SQLitePath)
	case config.BackendMySQL:
		gdb, err = db.OpenGorm(cfg.MySQLDSN())
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.StoreBackend, err)
	}
	s := sqlstore.NewTenantStore(gdb, cfg.ScanBatch)
	if err := s.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func buildSink(cfg *config.Config, rdb *redis.Client, zl *zap.Logger, closers *[]io.Closer) (notify.Sink, error) {
	var sinks notifyadp.Multi
	for _, name := range cfg.NotifySinks {
		switch name {
		case config.SinkLog:
			sinks = append(sinks, notifyadp.NewLogSink(zl.Named("events")))
		case config.SinkRedis:
			sinks = append(sinks, notifyadp.NewRedisSink(rdb, cfg.NotifyChannel))
		case config.SinkKafka:
			w, err := queue.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
			if err != nil {
				return nil, err
			}
			*closers = append(*closers, w)
			sinks = append(sinks, notifyadp.NewKafkaSink(w))
		}
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return sinks, nil
}
