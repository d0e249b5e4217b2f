package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"dockhand/internal/config"
)

// Setup initializes the logging system based on the configuration
func Setup(cfg *config.Config) error {
	if !cfg.Logging.Enabled {
		// Keep console logging only
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		applyLevel(cfg.Logging.Level)
		return nil
	}

	// Create logs directory with secure permissions (0700 - owner only)
	if err := os.MkdirAll(cfg.Logging.Dir, 0700); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	applyLevel(cfg.Logging.Level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logFile := filepath.Join(cfg.Logging.Dir, cfg.Logging.File)
	fileWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
		Compress:   cfg.Logging.Compress,
	}

	// Set file permissions to be secure (readable only by owner)
	if err := os.Chmod(logFile, 0600); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("file", logFile).Msg("Failed to set secure permissions on log file")
	}

	// Console + file
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr}
	log.Logger = zerolog.New(io.MultiWriter(consoleWriter, fileWriter)).With().Timestamp().Logger()

	log.Info().
		Str("log_file", logFile).
		Str("level", zerolog.GlobalLevel().String()).
		Msg("File logging initialized")

	return nil
}

func applyLevel(raw string) {
	level, err := zerolog.ParseLevel(raw)
	if err != nil {
		level = zerolog.InfoLevel
		log.Warn().Str("invalid_level", raw).Msg("Invalid log level, using info")
	}
	zerolog.SetGlobalLevel(level)
}
