// Package main provides the entry point for the SoftDesk API server
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	_ "github.com/lib/pq"

	"github.com/softdesk-api/go-core/internal/api/rest"
	"github.com/softdesk-api/go-core/internal/auth"
	"github.com/softdesk-api/go-core/internal/config"
	"github.com/softdesk-api/go-core/internal/db"
	"github.com/softdesk-api/go-core/internal/engine"
	"github.com/softdesk-api/go-core/internal/metrics"
	"github.com/softdesk-api/go-core/internal/policy"
	"github.com/softdesk-api/go-core/internal/store"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to YAML configuration file")
		migrateCmd  = flag.String("migrate", "", "Run a migration command and exit (up, down, version)")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("softdesk-server %s\n", Version)
		fmt.Printf("  Build Time: %s\n", BuildTime)
		fmt.Printf("  Git Commit: %s\n", GitCommit)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if secret := os.Getenv("SOFTDESK_JWT_SECRET"); secret != "" {
		cfg.Auth.Secret = secret
	}
	if dsn := os.Getenv("SOFTDESK_DATABASE_DSN"); dsn != "" {
		cfg.Database.DSN = dsn
	}

	logger, err := initLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *migrateCmd != "" {
		if err := migrate(*migrateCmd, cfg.Database.DSN); err != nil {
			logger.Fatal("Migration failed", zap.String("command", *migrateCmd), zap.Error(err))
		}
		return
	}

	logger.Info("Starting SoftDesk API server",
		zap.String("version", Version),
		zap.Int("port", cfg.Server.Port),
	)

	st, err := openStore(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer st.Close()

	policies, err := policy.New()
	if err != nil {
		logger.Fatal("Failed to build policy tables", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	eng := engine.New(policies, st,
		engine.WithMetrics(metrics.New(registry)),
		engine.WithLogger(logger),
	)

	validator, err := auth.NewJWTValidator(&cfg.Auth)
	if err != nil {
		logger.Fatal("Failed to create token validator", zap.Error(err))
	}

	srvConfig := rest.Config{
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		EnableCORS:      cfg.Server.EnableCORS,
		MetricsRegistry: registry,
	}

	srv, err := rest.New(srvConfig, eng, st, validator, logger)
	if err != nil {
		logger.Fatal("Failed to create server", zap.Error(err))
	}

	errChan := make(chan error, 1)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		if err != http.ErrServerClosed {
			logger.Fatal("Server error", zap.Error(err))
		}
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Shutdown error", zap.Error(err))
		}
	}

	logger.Info("Server stopped successfully")
}

// migrator is the subset of the migration runner the subcommands use
type migrator interface {
	Up() error
	Down() error
	Version() (uint, bool, error)
}

// migrate runs one migration subcommand against the configured database
func migrate(cmd, dsn string) error {
	if dsn == "" {
		return fmt.Errorf("migration commands require a database DSN")
	}

	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer conn.Close()
	if err := conn.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	runner, err := db.NewMigrationRunner(conn)
	if err != nil {
		return err
	}
	defer runner.Close()

	return runMigration(cmd, runner)
}

// runMigration dispatches one migration subcommand
func runMigration(cmd string, m migrator) error {
	switch cmd {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Printf("migration version %d (dirty=%v)\n", version, dirty)
		return nil
	default:
		return fmt.Errorf("unknown migration command %q", cmd)
	}
}

// openStore selects the persistence backend: postgres when a DSN is
// configured, the in-memory store otherwise.
func openStore(cfg config.DatabaseConfig, logger *zap.Logger) (store.Store, error) {
	if cfg.DSN == "" {
		logger.Info("No database configured, using in-memory store")
		return store.NewMemoryStore(), nil
	}

	conn, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if cfg.Migrate {
		runner, err := db.NewMigrationRunner(conn)
		if err != nil {
			conn.Close()
			return nil, err
		}
		if err := runner.Up(); err != nil {
			conn.Close()
			return nil, err
		}
	}

	logger.Info("Connected to postgres")
	return store.NewPostgresStore(conn), nil
}

// initLogger initializes the zap logger
func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch cfg.Level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	var encoder zapcore.Encoder
	if cfg.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	var sink zapcore.WriteSyncer
	if cfg.File != "" {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		})
	} else {
		sink = zapcore.AddSync(os.Stderr)
	}

	core := zapcore.NewCore(encoder, sink, zapLevel)
	return zap.New(core, zap.AddCaller()), nil
}
