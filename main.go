package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"go.uber.org/zap"

	"github.com/danielhkuo/duudl/cliparse"
	"github.com/danielhkuo/duudl/db"
	"github.com/danielhkuo/duudl/logging"
	"github.com/danielhkuo/duudl/router"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

// run returns instead of exiting so the deferred Close and Sync always run.
func run(args []string) error {
	// Load .env before reading the environment
	if err := cliparse.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error parsing flags:", err)
		return err
	}

	logger, err := logging.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	defer logger.Sync()

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		logger.Error("database connection failed", zap.Error(err))
		return err
	}
	defer dbConn.Close()

	handler, err := prepare(context.Background(), dbConn, cfg)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		return err
	}

	// Create server
	server := http.Server{
		Handler: handler,
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	logger.Info("Listening", zap.Int("port", cfg.Port))
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logger.Error("Server closed", zap.Error(err))
		return err
	}
	logger.Info("Server closed")
	return nil
}

// prepare creates the schema and user roster, then builds the router.
func prepare(ctx context.Context, conn *sql.DB, cfg cliparse.Config) (http.Handler, error) {
	if err := db.CreateSchema(conn, cfg.DatabaseType); err != nil {
		return nil, fmt.Errorf("schema creation failed: %w", err)
	}
	if err := db.SeedUsers(ctx, conn); err != nil {
		return nil, fmt.Errorf("user seeding failed: %w", err)
	}
	zap.L().Info("Database schema ready", zap.String("type", cfg.DatabaseType))

	handler, err := router.NewRouter(conn, cfg)
	if err != nil {
		return nil, fmt.Errorf("router setup failed: %w", err)
	}
	return handler, nil
}
