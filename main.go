package main

import (
	"context"
	"database/sql"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bushiwarriror44/redirect/internal/auth"
	"github.com/bushiwarriror44/redirect/internal/config"
	"github.com/bushiwarriror44/redirect/internal/core"
	httpapi "github.com/bushiwarriror44/redirect/internal/http"
	"github.com/bushiwarriror44/redirect/internal/store"
)

func main() {
	// Fast JSON logs by default; pretty if running in a TTY/dev
	if isatty() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		zerolog.TimeFieldFormat = time.RFC3339
	}

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	var dsnFlag string
	flag.StringVar(&dsnFlag, "dsn", "", "SQLite DSN (overrides env DB_DSN)")
	flag.Parse()
	if dsnFlag != "" {
		cfg.DBDSN = dsnFlag
	}

	// The configured password may be plaintext or a precomputed bcrypt
	// hash; either way only the hash is kept around.
	passwordHash := cfg.AdminPassword
	if !auth.IsBcryptHash(passwordHash) {
		passwordHash, err = auth.HashPassword(cfg.AdminPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("hash admin password")
		}
	}

	db, err := sql.Open("sqlite3", cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("open sqlite")
	}
	defer db.Close()

	// Connection pool tuning
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	// WAL keeps concurrent reads cheap while clicks write
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		log.Fatal().Err(err).Msg("enable WAL")
	}

	// Migrate schema
	if err := store.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate schema")
	}

	sqlStore := store.NewSQLite(db)
	svc := core.NewService(sqlStore, cfg.SlugLength, cfg.SlugMaxRetries)
	sessions := auth.NewSessions(cfg.SessionSecret, cfg.SessionTTL)

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           httpapi.NewRouter(cfg, svc, sqlStore, sessions, passwordHash),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Str("addr", cfg.ServerAddress).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutdown signal")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	log.Info().Msg("bye")
}

func isatty() bool {
	fi, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
