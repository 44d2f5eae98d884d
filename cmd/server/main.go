package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/rl1809/car-inventory/internal/adapter/handler"
	"github.com/rl1809/car-inventory/internal/adapter/storage"
	"github.com/rl1809/car-inventory/internal/config"
	"github.com/rl1809/car-inventory/internal/core/domain"
	"github.com/rl1809/car-inventory/internal/core/service"
	"github.com/rl1809/car-inventory/internal/logging"
	"github.com/rl1809/car-inventory/internal/port"
)

// version is set at build time via -ldflags.
var version = "dev"

const shutdownTimeout = 5 * time.Second

var (
	configPath string
	overrides  config.Config
)

var rootCmd = &cobra.Command{
	Use:           "inventory-server",
	Short:         "In-memory car inventory over HTTP and gRPC",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		applyFlags(cmd, &cfg)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		return run(cmd.Context(), cfg)
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "Path to YAML config file")
	flags.StringVar(&overrides.HTTPAddr, "http-addr", "", "HTTP listen address")
	flags.StringVar(&overrides.GRPCAddr, "grpc-addr", "", "gRPC listen address (empty disables gRPC)")
	flags.StringVar(&overrides.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&overrides.LogFormat, "log-format", "", "Log format: text or json")
	flags.IntVar(&overrides.WorkerCount, "workers", 0, "Number of event workers")
	flags.StringVar(&overrides.Journal.Driver, "journal-driver", "", "Change journal driver: mysql or sqlite3")
	flags.StringVar(&overrides.Journal.DSN, "journal-dsn", "", "Change journal DSN")
	flags.StringVar(&overrides.Redis.Addr, "redis-addr", "", "Redis address for change events")
	rootCmd.Version = version
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// applyFlags lets explicitly set flags win over file and environment values.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("http-addr") {
		cfg.HTTPAddr = overrides.HTTPAddr
	}
	if flags.Changed("grpc-addr") {
		cfg.GRPCAddr = overrides.GRPCAddr
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = overrides.LogLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = overrides.LogFormat
	}
	if flags.Changed("workers") {
		cfg.WorkerCount = overrides.WorkerCount
	}
	if flags.Changed("journal-driver") {
		cfg.Journal.Driver = overrides.Journal.Driver
	}
	if flags.Changed("journal-dsn") {
		cfg.Journal.DSN = overrides.Journal.DSN
	}
	if flags.Changed("redis-addr") {
		cfg.Redis.Addr = overrides.Redis.Addr
	}
}

func run(ctx context.Context, cfg config.Config) error {
	logging.Init(logging.ParseLevel(cfg.LogLevel, slog.LevelInfo), cfg.LogFormat, os.Stderr)
	logger := logging.New("server")

	// Optional change journal
	var journal port.EventJournal
	if cfg.Journal.Driver != "" {
		db, err := openJournal(ctx, cfg.Journal)
		if err != nil {
			return err
		}
		defer db.Close()

		journalAdapter := storage.NewJournalAdapter(db, cfg.Journal.Driver)
		if err := journalAdapter.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("prepare journal: %w", err)
		}
		journal = journalAdapter
		logger.Info("change journal enabled", "driver", cfg.Journal.Driver)
	}

	// Optional change publisher
	var publisher port.EventPublisher
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()

		publisher = storage.NewRedisAdapter(rdb, cfg.Redis.Channel)
		logger.Info("change publisher enabled", "addr", cfg.Redis.Addr, "channel", cfg.Redis.Channel)
	}

	var grpcListener net.Listener
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("listen grpc: %w", err)
		}
		grpcListener = lis
	}

	store := storage.NewMemoryAdapter(domain.SeedItems())
	inventory := service.NewInventoryService(store, cfg.QueueSize, logging.New("inventory"))
	logger.Info("inventory seeded", "items", store.Len())

	// Start worker pool
	var workers sync.WaitGroup
	workerLogger := logging.New("event-worker")
	for i := 0; i < cfg.WorkerCount; i++ {
		workers.Add(1)
		go func(id int) {
			defer workers.Done()
			service.NewEventWorker(id, journal, publisher, workerLogger).Run(inventory.GetEventQueue())
		}(i)
	}
	logger.Info("started event workers", "count", cfg.WorkerCount)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.NewHTTPHandler(inventory, logging.New("http")).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcServer, healthServer := handler.NewGRPCServer(handler.NewGRPCHandler(inventory), logging.New("grpc"))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if grpcListener != nil {
		lis := grpcListener
		g.Go(func() error {
			logger.Info("gRPC server listening", "addr", cfg.GRPCAddr)
			return serveGRPC(grpcServer, lis)
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP shutdown failed", "error", err)
		}
		logger.Info("HTTP server stopped")

		healthServer.Shutdown()
		grpcServer.GracefulStop()
		logger.Info("gRPC server stopped")
		return nil
	})

	err := g.Wait()

	// Close event queue and wait for workers
	inventory.Close()
	workers.Wait()
	logger.Info("workers stopped", "dropped_events", inventory.DroppedEvents())

	return err
}

// serveGRPC treats a server stopped before or during Serve as a clean exit.
func serveGRPC(server *grpc.Server, lis net.Listener) error {
	if err := server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("grpc server: %w", err)
	}
	return nil
}

func openJournal(ctx context.Context, cfg config.JournalConfig) (*sql.DB, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	if cfg.Driver == storage.DriverSQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping journal: %w", err)
	}
	return db, nil
}
