package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vavastapak/account-service/internal/api"
	"github.com/vavastapak/account-service/internal/api/handler"
	"github.com/vavastapak/account-service/internal/infrastructure/notify"
	"github.com/vavastapak/account-service/internal/infrastructure/queue"
	"github.com/vavastapak/account-service/internal/pkg/config"
	"github.com/vavastapak/account-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context) error {
	migrate := cfg.StoreBackend == config.StoreMongo || cfg.Postgres.AutoMigrate
	repo, closeStore, err := openStore(ctx, migrate)
	if err != nil {
		log.Error().Err(err).Str("backend", cfg.StoreBackend).Msg("credential store unavailable")
		return err
	}
	defer closeStore()

	tokens, closeRegistry, err := openRegistry(ctx)
	if err != nil {
		log.Error().Err(err).Str("backend", cfg.Reset.Store).Msg("reset token store unavailable")
		return err
	}
	defer closeRegistry()

	sender, err := notify.NewSender(notify.Config{
		Provider: cfg.Notify.Provider,
		From:     cfg.Notify.From,
		SMTP: notify.SMTPConfig{
			Host:     cfg.Notify.SMTPHost,
			Port:     cfg.Notify.SMTPPort,
			Username: cfg.Notify.SMTPUsername,
			Password: cfg.Notify.SMTPPassword,
		},
	}, logger.Component("mailer"))
	if err != nil {
		return err
	}

	dispatcher := queue.NewDispatcher(cfg.Notify.Workers, cfg.Notify.SendTimeout, sender, logger.Component("dispatcher"))
	dispatcher.Start(ctx)

	e := api.NewRouter(api.Dependencies{
		Service: newAccountService(repo, tokens, dispatcher),
		Health: map[string]handler.Pinger{
			"credential_store": repo,
			"reset_store":      tokens,
		},
		JWTSecret:        cfg.JWTSecret,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
		Log:              logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("store", cfg.StoreBackend).
			Str("reset_store", cfg.Reset.Store).
			Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server stopped")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	return nil
}
