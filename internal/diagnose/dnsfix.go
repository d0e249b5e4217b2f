package diagnose

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	"github.com/rs/zerolog/log"
)

// DNSFixer applies the standard remedy for "Temporary failure resolving"
// errors: merge a DNS server list into the engine daemon configuration and
// restart the engine service. The operation is idempotent.
type DNSFixer struct {
	ConfigPath     string
	Resolvers      []string
	RestartCommand []string

	// runCommand is swapped in tests to avoid restarting a real service.
	runCommand func(ctx context.Context, name string, args ...string) error
}

// NewDNSFixer creates a fixer for the given daemon config path. Zero-value
// resolvers and restart command fall back to the conventional defaults.
func NewDNSFixer(configPath string, resolvers []string, restartCommand []string) *DNSFixer {
	if configPath == "" {
		configPath = "/etc/docker/daemon.json"
	}
	if len(resolvers) == 0 {
		resolvers = []string{"8.8.8.8", "8.8.4.4"}
	}
	if len(restartCommand) == 0 {
		restartCommand = []string{"systemctl", "restart", "docker"}
	}
	return &DNSFixer{
		ConfigPath:     configPath,
		Resolvers:      resolvers,
		RestartCommand: restartCommand,
		runCommand: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
	}
}

// Fix backs up the daemon configuration, merges in the DNS server list,
// persists it, and restarts the engine service.
func (f *DNSFixer) Fix(ctx context.Context) error {
	config := make(map[string]any)

	raw, err := os.ReadFile(f.ConfigPath)
	switch {
	case err == nil:
		if err := os.WriteFile(f.ConfigPath+".bak", raw, 0644); err != nil {
			return fmt.Errorf("failed to back up %s: %w", f.ConfigPath, err)
		}
		// A corrupt existing file is replaced rather than failing the fix.
		if err := json.Unmarshal(raw, &config); err != nil {
			log.Warn().Err(err).Str("path", f.ConfigPath).Msg("Existing daemon config is not valid JSON, rewriting")
			config = make(map[string]any)
		}
	case os.IsNotExist(err):
		// No existing config; start from an empty one.
	default:
		return fmt.Errorf("failed to read %s: %w", f.ConfigPath, err)
	}

	config["dns"] = f.Resolvers

	updated, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode daemon config: %w", err)
	}
	if err := os.WriteFile(f.ConfigPath, updated, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.ConfigPath, err)
	}

	if err := f.runCommand(ctx, f.RestartCommand[0], f.RestartCommand[1:]...); err != nil {
		return fmt.Errorf("DNS config written but engine restart failed: %w", err)
	}

	log.Info().Str("path", f.ConfigPath).Strs("dns", f.Resolvers).Msg("DNS configuration updated and engine restarted")
	return nil
}
