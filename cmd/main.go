package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/mapleleafu/blastarena/blastarena-backend/config"
	"github.com/mapleleafu/blastarena/blastarena-backend/handlers"
	"github.com/mapleleafu/blastarena/blastarena-backend/repository"
	"github.com/mapleleafu/blastarena/blastarena-backend/store"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("no .env file found, relying on environment")
	}

	cfg := config.LoadConfig()
	repository.ConnectToPostgreSQL(cfg)
	repository.ConnectMongoDB(cfg)

	switch cfg.StoreBackend {
	case "mongo":
		handlers.Store = store.NewMongo(repository.MongoDBClient, cfg.MongoDB)
	default:
		handlers.Store = store.NewMemory()
	}
	log.Info().Str("backend", cfg.StoreBackend).Msg("room store initialized")

	srv := &http.Server{Addr: cfg.Addr, Handler: handlers.NewRouter()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.Addr).Msg("server running")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
