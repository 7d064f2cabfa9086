package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/rl1809/stock-ledger/internal/adapter/handler"
	"github.com/rl1809/stock-ledger/internal/adapter/storage"
	"github.com/rl1809/stock-ledger/internal/config"
	"github.com/rl1809/stock-ledger/internal/core/service"
	"github.com/rl1809/stock-ledger/internal/observability"
	"github.com/rl1809/stock-ledger/internal/pkg/logging"
	"github.com/rl1809/stock-ledger/internal/port"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(logging.Options{
		Service: cfg.Service.Name,
		Env:     cfg.Service.Env,
		Level:   cfg.Service.LogLevel,
		File:    cfg.Service.LogFile,
	})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server_exited", zap.Error(err))
	}
	logger.Info("server_stopped")
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp := observability.InitTracerProvider(cfg.Service.Name, cfg.Service.Env)
	defer tp.Shutdown(context.Background())
	metrics := observability.NewMetrics()

	store, closeStore, err := openStore(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	locker, closeLocker, err := openLocker(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLocker()

	stock := service.NewStockService(store, store, store)
	items := service.NewItemService(store, stock)
	inventories := service.NewInventoryService(store, store)
	orders := service.NewOrderService(store, store, stock, locker,
		service.WithLockWait(cfg.Stock.LockWait),
		service.WithMetrics(metrics),
	)

	httpHandler := handler.NewHTTPHandler(items, inventories, orders, store, metrics, logger)
	httpServer := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      httpHandler.Routes(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	var grpcServer *grpc.Server
	var healthServer *health.Server
	var lis net.Listener
	if cfg.GRPC.Addr != "" {
		lis, err = net.Listen("tcp", cfg.GRPC.Addr)
		if err != nil {
			return fmt.Errorf("listen grpc %s: %w", cfg.GRPC.Addr, err)
		}

		grpcServer = grpc.NewServer(grpc.UnaryInterceptor(handler.UnaryInterceptor(logger, metrics)))
		handler.RegisterStockServer(grpcServer, handler.NewGRPCHandler(stock))

		healthServer = health.NewServer()
		healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		healthServer.SetServingStatus(handler.StockServiceName, healthpb.HealthCheckResponse_SERVING)
		healthpb.RegisterHealthServer(grpcServer, healthServer)
		reflection.Register(grpcServer)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http_server_listening", zap.String("addr", cfg.HTTP.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if grpcServer != nil {
		g.Go(func() error {
			logger.Info("grpc_server_listening", zap.String("addr", cfg.GRPC.Addr))
			if err := grpcServer.Serve(lis); err != nil {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting_down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http_shutdown_failed", zap.Error(err))
		}
		logger.Info("http_server_stopped")

		if grpcServer != nil {
			healthServer.Shutdown()
			grpcServer.GracefulStop()
			logger.Info("grpc_server_stopped")
		}
		return nil
	})

	return g.Wait()
}

func openStore(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (port.DatabaseRepository, func(), error) {
	if cfg.Driver == config.DriverMemory {
		logger.Warn("using_memory_store", zap.String("reason", "storage.driver=memory; data is lost on exit"))
		return storage.NewMemoryAdapter(), func() {}, nil
	}

	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping mysql: %w", err)
	}
	logger.Info("connected_to_mysql")

	adapter := storage.NewMySQLAdapter(db)
	if cfg.EnsureSchema {
		if err := adapter.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
	}
	return adapter, func() { db.Close() }, nil
}

func openLocker(ctx context.Context, cfg config.Config, logger *zap.Logger) (port.Locker, func(), error) {
	if !cfg.Stock.LockOrders {
		logger.Warn("order_locking_disabled", zap.String("reason", "concurrent orders on one item can oversell"))
		return storage.NopLocker{}, func() {}, nil
	}
	if cfg.Redis.Addr == "" {
		logger.Info("using_local_item_lock")
		return storage.NewLocalLocker(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	logger.Info("using_redis_item_lock", zap.String("addr", cfg.Redis.Addr))
	return storage.NewRedisAdapter(rdb, cfg.Redis.LockTTL), func() { rdb.Close() }, nil
}
