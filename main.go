package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"trace_validation_gateway/internal/auth"
	"trace_validation_gateway/internal/chain"
	"trace_validation_gateway/internal/config"
	"trace_validation_gateway/internal/logger"
	"trace_validation_gateway/internal/messaging"
	"trace_validation_gateway/internal/notification"
	"trace_validation_gateway/internal/repository"
	"trace_validation_gateway/internal/server"
	"trace_validation_gateway/internal/service"
	"trace_validation_gateway/internal/whitelist"
)

func runMigrations(db *pgxpool.Pool, log *zap.Logger) error {
	log.Info("Running database migrations")

	migrationsDir := "migrations"
	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrationFiles []string
	for _, file := range files {
		if strings.HasSuffix(file.Name(), ".sql") {
			migrationFiles = append(migrationFiles, file.Name())
		}
	}

	sort.Strings(migrationFiles)

	for _, filename := range migrationFiles {
		log.Info("Running migration", zap.String("file", filename))

		content, err := os.ReadFile(filepath.Join(migrationsDir, filename))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", filename, err)
		}

		_, err = db.Exec(context.Background(), string(content))
		if err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", filename, err)
		}

		log.Info("Migration completed", zap.String("file", filename))
	}

	log.Info("All migrations completed successfully")
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting trace validation gateway")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	db, err := pgxpool.New(ctx, cfg.DatabaseDSN())
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	log.Info("Connected to database")

	if err := runMigrations(db, log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS.URL, log)
	if err != nil {
		log.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer natsClient.Close()

	log.Info("Connected to NATS")

	codeLookup, err := chain.Dial(ctx, cfg.Ethereum.RPCURL, cfg.Ethereum.LookupTimeout, log)
	if err != nil {
		log.Fatal("Failed to connect to Ethereum node", zap.Error(err))
	}
	defer codeLookup.Close()

	log.Info("Connected to Ethereum node", zap.String("rpc_url", cfg.Ethereum.RPCURL))

	notifier := notification.Multi(
		notification.NewLogNotifier(log),
		notification.NewPublishingNotifier(natsClient, log),
	)
	gate := auth.NewGate(auth.NewWalletVerifier(log), notifier, log)

	store := whitelist.NewStore(whitelist.Snapshot{})
	refresher := whitelist.NewRefresher(repository.NewWhitelistRepository(db, log), store, log)
	if err := refresher.Refresh(ctx); err != nil {
		log.Error("Failed to load whitelist", zap.Error(err))
	}
	go refresher.Run(ctx, cfg.Whitelist.RefreshInterval)

	lookup := chain.NewCachedCodeLookup(codeLookup, repository.NewCodeCacheRepository(db, log), log)
	formService := service.NewFormService(store, lookup, gate, natsClient, notifier, log)

	err = natsClient.SubscribeToNotifications(ctx, func(n notification.Notification) {
		log.Debug("Received notification",
			zap.String("id", n.ID),
			zap.String("kind", string(n.Kind)),
			zap.String("title", n.Title))
	})
	if err != nil {
		log.Error("Failed to subscribe to notifications", zap.Error(err))
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(formService, gate, store, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("Starting server", zap.String("address", addr))

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
