package docker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"github.com/rs/zerolog/log"

	"dockhand/pkg/engine"
)

// Engine implements the engine.Engine interface using the Docker API.
type Engine struct {
	client *client.Client
}

var _ engine.Engine = (*Engine)(nil)

// NewEngine creates a Docker engine client from the environment, optionally
// overriding the socket path.
func NewEngine(socketPath string) (*Engine, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if socketPath != "" {
		opts = append(opts, client.WithHost("unix://"+socketPath))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	return &Engine{client: cli}, nil
}

// List returns a snapshot of containers, enriched with health and exit code
// details from inspect.
func (d *Engine) List(ctx context.Context, all bool) ([]engine.ContainerInfo, error) {
	containers, err := d.client.ContainerList(ctx, container.ListOptions{All: all})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	infos := make([]engine.ContainerInfo, 0, len(containers))
	for _, c := range containers {
		info := engine.ContainerInfo{
			ID:      c.ID,
			Image:   []string{c.Image},
			Status:  engine.ParseStatus(c.State),
			Health:  engine.HealthNone,
			Created: time.Unix(c.Created, 0),
		}
		if len(c.Names) > 0 {
			info.Name = strings.TrimPrefix(c.Names[0], "/")
		}

		// Health, exit code and timestamps only come from inspect. A failed
		// inspect degrades to the list-level view rather than failing the
		// whole snapshot.
		inspect, err := d.client.ContainerInspect(ctx, c.ID)
		if err != nil {
			log.Warn().Err(err).Str("container", info.Name).Msg("Failed to inspect container")
			info.Health = engine.HealthUnknown
			infos = append(infos, info)
			continue
		}

		if inspect.State != nil {
			info.ExitCode = inspect.State.ExitCode
			if inspect.State.Health != nil {
				info.Health = engine.ParseHealth(inspect.State.Health.Status)
			}
			info.Started = parseEngineTime(inspect.State.StartedAt)
			info.Finished = parseEngineTime(inspect.State.FinishedAt)
		}

		infos = append(infos, info)
	}

	return infos, nil
}

// Get returns the snapshot entry for a single container by name or ID.
func (d *Engine) Get(ctx context.Context, name string) (*engine.ContainerInfo, error) {
	inspect, err := d.client.ContainerInspect(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect container %s: %w", name, err)
	}

	info := &engine.ContainerInfo{
		ID:     inspect.ID,
		Name:   strings.TrimPrefix(inspect.Name, "/"),
		Health: engine.HealthNone,
	}
	if inspect.Config != nil {
		info.Image = []string{inspect.Config.Image}
	}
	if created := parseEngineTime(inspect.Created); created != nil {
		info.Created = *created
	}
	if inspect.State != nil {
		info.Status = engine.ParseStatus(inspect.State.Status)
		info.ExitCode = inspect.State.ExitCode
		if inspect.State.Health != nil {
			info.Health = engine.ParseHealth(inspect.State.Health.Status)
		}
		info.Started = parseEngineTime(inspect.State.StartedAt)
		info.Finished = parseEngineTime(inspect.State.FinishedAt)
	}

	return info, nil
}

// Logs returns the last tailLines lines of a container's combined output.
func (d *Engine) Logs(ctx context.Context, name string, tailLines int) (string, error) {
	tail := "all"
	if tailLines > 0 {
		tail = strconv.Itoa(tailLines)
	}

	reader, err := d.client.ContainerLogs(ctx, name, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       tail,
	})
	if err != nil {
		return "", fmt.Errorf("failed to fetch logs for %s: %w", name, err)
	}
	defer reader.Close()

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("failed to read logs for %s: %w", name, err)
	}

	return buf.String(), nil
}

// Stats returns a one-line memory/CPU usage summary for a running container.
func (d *Engine) Stats(ctx context.Context, name string) (string, error) {
	resp, err := d.client.ContainerStats(ctx, name, false)
	if err != nil {
		return "", fmt.Errorf("failed to fetch stats for %s: %w", name, err)
	}
	defer resp.Body.Close()

	var stats container.StatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return "", fmt.Errorf("failed to decode stats for %s: %w", name, err)
	}

	memUsage := float64(stats.MemoryStats.Usage) / (1024 * 1024)
	memLimit := float64(stats.MemoryStats.Limit) / (1024 * 1024)

	cpuDelta := float64(stats.CPUStats.CPUUsage.TotalUsage - stats.PreCPUStats.CPUUsage.TotalUsage)
	sysDelta := float64(stats.CPUStats.SystemUsage - stats.PreCPUStats.SystemUsage)
	cpuPercent := 0.0
	if sysDelta > 0 && cpuDelta > 0 {
		cpuPercent = cpuDelta / sysDelta * float64(stats.CPUStats.OnlineCPUs) * 100
	}

	return fmt.Sprintf("memory %.1fMiB / %.1fMiB, cpu %.1f%%", memUsage, memLimit, cpuPercent), nil
}

// Start starts a container.
func (d *Engine) Start(ctx context.Context, name string) error {
	if err := d.client.ContainerStart(ctx, name, container.StartOptions{}); err != nil {
		return fmt.Errorf("failed to start container %s: %w", name, err)
	}

	log.Info().Str("container", name).Msg("Container started")
	return nil
}

// Stop stops a container with a grace period.
func (d *Engine) Stop(ctx context.Context, name string) error {
	timeout := 30 // seconds
	if err := d.client.ContainerStop(ctx, name, container.StopOptions{Timeout: &timeout}); err != nil {
		return fmt.Errorf("failed to stop container %s: %w", name, err)
	}

	log.Info().Str("container", name).Msg("Container stopped")
	return nil
}

// Restart restarts a container with a grace period.
func (d *Engine) Restart(ctx context.Context, name string) error {
	timeout := 30 // seconds
	if err := d.client.ContainerRestart(ctx, name, container.StopOptions{Timeout: &timeout}); err != nil {
		return fmt.Errorf("failed to restart container %s: %w", name, err)
	}

	log.Info().Str("container", name).Msg("Container restarted")
	return nil
}

// Pause pauses a running container.
func (d *Engine) Pause(ctx context.Context, name string) error {
	if err := d.client.ContainerPause(ctx, name); err != nil {
		return fmt.Errorf("failed to pause container %s: %w", name, err)
	}

	log.Info().Str("container", name).Msg("Container paused")
	return nil
}

// Unpause resumes a paused container.
func (d *Engine) Unpause(ctx context.Context, name string) error {
	if err := d.client.ContainerUnpause(ctx, name); err != nil {
		return fmt.Errorf("failed to unpause container %s: %w", name, err)
	}

	log.Info().Str("container", name).Msg("Container unpaused")
	return nil
}

// Remove removes a container.
func (d *Engine) Remove(ctx context.Context, name string, force bool) error {
	if err := d.client.ContainerRemove(ctx, name, container.RemoveOptions{Force: force}); err != nil {
		return fmt.Errorf("failed to remove container %s: %w", name, err)
	}

	log.Info().Str("container", name).Bool("force", force).Msg("Container removed")
	return nil
}

// Create creates and starts a container. Image is required; name and port
// are optional.
func (d *Engine) Create(ctx context.Context, opts engine.CreateOptions) (string, error) {
	if opts.Image == "" {
		return "", fmt.Errorf("image is required to create a container")
	}

	config := &container.Config{Image: opts.Image}
	hostConfig := &container.HostConfig{}

	if opts.Port > 0 {
		port := nat.Port(fmt.Sprintf("%d/tcp", opts.Port))
		config.ExposedPorts = nat.PortSet{port: struct{}{}}
		hostConfig.PortBindings = nat.PortMap{
			port: []nat.PortBinding{{HostIP: "0.0.0.0", HostPort: strconv.Itoa(opts.Port)}},
		}
	}

	resp, err := d.client.ContainerCreate(ctx, config, hostConfig, nil, nil, opts.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create container: %w", err)
	}

	if err := d.client.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return "", fmt.Errorf("container %s created but failed to start: %w", resp.ID, err)
	}

	log.Info().Str("id", resp.ID).Str("name", opts.Name).Str("image", opts.Image).Msg("Container created")
	return resp.ID, nil
}

// Ping checks engine connectivity.
func (d *Engine) Ping(ctx context.Context) error {
	if _, err := d.client.Ping(ctx); err != nil {
		return fmt.Errorf("cannot reach container engine: %w", err)
	}
	return nil
}

// Version returns the engine server version.
func (d *Engine) Version(ctx context.Context) (string, error) {
	version, err := d.client.ServerVersion(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get engine version: %w", err)
	}
	return version.Version, nil
}

// parseEngineTime parses a Docker API timestamp. The zero timestamp the API
// reports for never-started containers maps to nil.
func parseEngineTime(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil || t.IsZero() {
		return nil
	}
	return &t
}
