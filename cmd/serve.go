package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dockhand/internal/config"
	"dockhand/internal/logging"
	"dockhand/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the assistant HTTP server",
	Long:  `Start the HTTP server that answers container questions on /ask`,
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	if err := logging.Setup(cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logging")
	}

	log.Info().Msg("Starting dockhand server...")
	log.Info().Int("port", cfg.Server.Port).Msg("HTTP server")
	log.Info().Bool("llm_enabled", cfg.LLM.Enabled).Str("model", cfg.LLM.Model).Msg("Assistant")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng, err := buildEngine(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to the container engine")
	}

	router, err := buildRouter(ctx, cfg, eng)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build assistant router")
	}

	srv := server.New(eng, router)

	// Setup config file watching for live reload
	viper.WatchConfig()
	viper.OnConfigChange(func(e fsnotify.Event) {
		log.Info().
			Str("file", e.Name).
			Str("op", e.Op.String()).
			Msg("Configuration file changed, reloading...")

		newCfg, err := config.Load()
		if err != nil {
			log.Error().Err(err).Msg("Failed to reload configuration")
			return
		}

		if err := logging.Setup(newCfg); err != nil {
			log.Error().Err(err).Msg("Failed to reapply logging configuration")
		}

		newRouter, err := buildRouter(ctx, newCfg, eng)
		if err != nil {
			log.Error().Err(err).Msg("Failed to rebuild assistant router")
			return
		}
		srv.UpdateRouter(newRouter)

		log.Info().Msg("Configuration reloaded successfully")
	})

	// Start the server
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(cfg.Server.Port); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info().Msg("Received shutdown signal")
	case err := <-errCh:
		log.Error().Err(err).Msg("Server error")
	}

	log.Info().Msg("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}
