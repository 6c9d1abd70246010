package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/vae-dossiers/auth"
	"github.com/diewo77/vae-dossiers/internal/config"
	"github.com/diewo77/vae-dossiers/internal/db"
	"github.com/diewo77/vae-dossiers/internal/iam"
	"github.com/diewo77/vae-dossiers/internal/logging"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logging.Must(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := db.Connect(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := db.Migrate(conn, cfg, log); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
	if *migrateOnlyFlag {
		log.Info("migrations completed successfully")
		return
	}
	if *seedOnlyFlag || cfg.App.Seed {
		if err := db.Seed(ctx, conn, log); err != nil {
			log.Fatal("seeding failed", zap.Error(err))
		}
		if *seedOnlyFlag {
			return
		}
	}

	auth.SetSecret(cfg.Auth.SessionSecret)
	dir := iam.NewGormDirectory(conn)
	auth.SetUserVerifier(func(ctx context.Context, uid uint) bool {
		_, err := dir.Get(ctx, uid)
		return err == nil
	})

	app := NewApp(conn, cfg, nil, log)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      logging.Middleware(log, app),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.Server.Port), zap.Bool("dev", cfg.App.Dev))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("error during shutdown", zap.Error(err))
	}
	log.Info("server stopped gracefully")
}
