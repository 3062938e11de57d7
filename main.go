package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	appcheckout "github.com/farmline/marketplace/internal/application/checkout"
	appescrow "github.com/farmline/marketplace/internal/application/escrow"
	"github.com/farmline/marketplace/internal/application/identity"
	appproduct "github.com/farmline/marketplace/internal/application/product"
	appreview "github.com/farmline/marketplace/internal/application/review"
	"github.com/farmline/marketplace/internal/config"
	"github.com/farmline/marketplace/internal/infrastructure/id"
	"github.com/farmline/marketplace/internal/infrastructure/kafka"
	"github.com/farmline/marketplace/internal/infrastructure/observability/prometrics"
	"github.com/farmline/marketplace/internal/infrastructure/observability/telemetry"
	"github.com/farmline/marketplace/internal/infrastructure/observability/zaplogger"
	"github.com/farmline/marketplace/internal/infrastructure/outbox"
	"github.com/farmline/marketplace/internal/infrastructure/persistence"
	"github.com/farmline/marketplace/internal/pkg/logging"
	httppresentation "github.com/farmline/marketplace/internal/presentation/http"
	"github.com/farmline/marketplace/internal/storage"
	"github.com/farmline/marketplace/internal/storage/memory"
	"github.com/farmline/marketplace/internal/storage/redisstore"
	"github.com/farmline/marketplace/internal/storage/sqlitestore"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	baseLogger := logging.MustNewLogger(cfg.ServiceName, cfg.Env)
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	logger := zaplogger.Wrap(baseLogger)
	tel := telemetry.Setup(cfg.ServiceName, logger, prometrics.New(cfg.ServiceName))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		baseLogger.Fatal("store_open_failed",
			zap.String("driver", cfg.StoreDriver),
			zap.Error(err),
		)
	}
	defer closeStore()

	userRepo := persistence.NewUserRepository(store)
	productRepo := persistence.NewProductRepository(store)
	orderRepo := persistence.NewOrderRepository(store)
	reviewRepo := persistence.NewReviewRepository(store)
	idGenerator := id.NewUUIDGenerator()

	bus := outbox.NewBus(logger)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer func() { _ = producer.Close() }()
		kafka.NewRelay(bus, producer, logger)
		baseLogger.Info("kafka_relay_started",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic),
		)
	}

	identityService := identity.NewService(userRepo, idGenerator, logger)
	productService := appproduct.NewService(productRepo, idGenerator, bus, logger)
	escrowService := appescrow.NewService(productRepo, bus, logger)
	checkoutUseCase := appcheckout.NewUseCase(productRepo, orderRepo, idGenerator, bus, tel)
	orderQueries := appcheckout.NewQueries(orderRepo)
	reviewService := appreview.NewService(productRepo, reviewRepo, idGenerator, bus, logger)

	handler := httppresentation.NewHandler(
		identityService,
		productService,
		escrowService,
		checkoutUseCase,
		orderQueries,
		reviewService,
		tel,
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	go func() {
		baseLogger.Info("http_server_start",
			zap.String("addr", server.Addr),
			zap.String("store_driver", cfg.StoreDriver),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Error("http_server_error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("http_server_shutdown_error", zap.Error(err))
	} else {
		baseLogger.Info("http_server_stopped")
	}
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverRedis:
		client, err := redisstore.NewClient(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		return redisstore.New(client, cfg.RedisPrefix), func() { _ = client.Close() }, nil
	case config.StoreDriverSQLite:
		store, err := sqlitestore.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return memory.New(), func() {}, nil
	}
}
