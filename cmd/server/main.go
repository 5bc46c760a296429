package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	fsadapter "github.com/brtech99/stripcalls/internal/adapters/firestore"
	router "github.com/brtech99/stripcalls/internal/adapters/http"
	"github.com/brtech99/stripcalls/internal/adapters/twilio"
	"github.com/brtech99/stripcalls/internal/app"
	"github.com/brtech99/stripcalls/internal/config"
	"github.com/brtech99/stripcalls/internal/core"
	"github.com/brtech99/stripcalls/internal/domain"
	"github.com/brtech99/stripcalls/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Mode == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var (
		dir      core.Directory
		buffers  core.BufferStore
		captures core.CaptureStore
	)
	if cfg.FirestoreProject != "" {
		fs, err := fsadapter.NewStore(ctx, cfg.FirestoreProject)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to firestore")
		}
		defer fs.Close()
		if err := fs.EnsureOwner(ctx, cfg.OwnerPhone, cfg.OwnerName); err != nil {
			log.Fatal().Err(err).Msg("failed to seed owner record")
		}
		dir, buffers, captures = fs, fs, fs.Captures()
	} else {
		log.Warn().Msg("no firestore project configured, using in-memory store")
		mem := store.NewMemory()
		seedOwner(ctx, mem, cfg)
		dir, buffers, captures = mem, mem, mem.Captures()
	}

	var sender core.Sender
	if cfg.TwilioAccountSID != "" {
		sender = twilio.NewSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken)
	} else {
		log.Warn().Msg("no twilio credentials configured, outbound messages are dropped")
	}
	sim := router.NewSimulatorSender(sender, cfg.SimulatorPrefix)

	d := app.New(cfg, dir, buffers, captures, sim, app.LogNotifier{})

	r := router.SetupRouter(cfg, d, sim)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("stripcalls server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

func seedOwner(ctx context.Context, mem *store.Memory, cfg *config.Config) {
	m, err := domain.NewMember(cfg.OwnerName, cfg.OwnerPhone)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid owner seed")
	}
	m.Admin = true
	m.Super = true
	m.Armorer = true
	if err := mem.Upsert(ctx, m); err != nil {
		log.Fatal().Err(err).Msg("failed to seed owner record")
	}
}
