package cmd

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"dockhand/internal/assistant"
	"dockhand/internal/config"
	"dockhand/internal/diagnose"
	"dockhand/internal/docker"
	"dockhand/internal/llm"
	"dockhand/pkg/engine"
)

// buildEngine connects to the container engine and verifies it answers.
func buildEngine(ctx context.Context, cfg *config.Config) (engine.Engine, error) {
	eng, err := docker.NewEngine(cfg.Server.SocketPath)
	if err != nil {
		return nil, err
	}
	if err := eng.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("Container engine did not answer the initial ping")
	}
	return eng, nil
}

// buildRouter assembles the assistant router from configuration. The LLM
// collaborator is optional: a missing API key downgrades to static answers.
func buildRouter(ctx context.Context, cfg *config.Config, eng engine.Engine) (*assistant.Router, error) {
	var llmClient assistant.LLMClient
	if cfg.LLM.Enabled {
		if key := cfg.LLM.APIKey(); key != "" {
			client, err := llm.NewGeminiClient(ctx, key, cfg.LLM.Model)
			if err != nil {
				log.Warn().Err(err).Msg("LLM client unavailable, using static answers")
			} else {
				llmClient = client
				log.Info().Str("model", cfg.LLM.Model).Msg("LLM collaborator enabled")
			}
		} else {
			log.Info().Msg("No LLM API key set, using static answers")
		}
	}

	ports := diagnose.NewPortAdvisor(nil)
	dns := diagnose.NewDNSFixer(cfg.DNS.DaemonConfigPath, cfg.DNS.Resolvers, cfg.DNS.RestartCommand)

	return assistant.NewRouter(eng, ports, dns, llmClient, assistant.Options{
		LogTailChars:          cfg.Assistant.LogTailChars,
		LogTailLines:          cfg.Assistant.LogTailLines,
		TroubleshootTailLines: cfg.Assistant.TroubleshootTailLines,
		SettleDelay:           time.Duration(cfg.Assistant.RestartSettleSeconds) * time.Second,
		LLMTimeout:            time.Duration(cfg.Assistant.LLMTimeoutSeconds) * time.Second,
	})
}
