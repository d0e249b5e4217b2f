package engine

import (
	"context"
	"strings"
	"time"
)

// Status is the coarse lifecycle state of a container.
type Status string

const (
	StatusRunning    Status = "running"
	StatusExited     Status = "exited"
	StatusPaused     Status = "paused"
	StatusCreated    Status = "created"
	StatusRestarting Status = "restarting"
	StatusDead       Status = "dead"
	StatusUnknown    Status = "unknown"
)

// ParseStatus maps a raw engine state string to a Status.
func ParseStatus(raw string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusRunning:
		return StatusRunning
	case StatusExited:
		return StatusExited
	case StatusPaused:
		return StatusPaused
	case StatusCreated:
		return StatusCreated
	case StatusRestarting:
		return StatusRestarting
	case StatusDead:
		return StatusDead
	default:
		return StatusUnknown
	}
}

// Health is the health-check state of a container.
type Health string

const (
	HealthHealthy   Health = "healthy"
	HealthUnhealthy Health = "unhealthy"
	HealthStarting  Health = "starting"
	HealthNone      Health = "none"
	HealthUnknown   Health = "unknown"
)

// ParseHealth maps a raw health string to a Health. An empty string means the
// container has no health check defined.
func ParseHealth(raw string) Health {
	switch Health(strings.ToLower(strings.TrimSpace(raw))) {
	case HealthHealthy:
		return HealthHealthy
	case HealthUnhealthy:
		return HealthUnhealthy
	case HealthStarting:
		return HealthStarting
	case HealthNone, "":
		return HealthNone
	default:
		return HealthUnknown
	}
}

// ContainerInfo is a read-only snapshot of one container, produced fresh per
// request. Consumers never mutate or cache it.
type ContainerInfo struct {
	Name     string
	ID       string
	Image    []string
	Status   Status
	Health   Health
	ExitCode int
	Created  time.Time
	Started  *time.Time
	Finished *time.Time
}

// IsRunning reports whether the container is in the running state.
func (c ContainerInfo) IsRunning() bool {
	return c.Status == StatusRunning
}

// ImageRef returns the first image tag, or "unknown" when none is recorded.
func (c ContainerInfo) ImageRef() string {
	if len(c.Image) == 0 || c.Image[0] == "" {
		return "unknown"
	}
	return strings.Join(c.Image, ", ")
}

// CreateOptions holds the parameters for creating a container. Every field
// may be absent; Create reports what is missing.
type CreateOptions struct {
	Image string
	Name  string
	Port  int
}

// Engine defines the contract for container engine implementations.
type Engine interface {
	// Container inspection
	List(ctx context.Context, all bool) ([]ContainerInfo, error)
	Get(ctx context.Context, name string) (*ContainerInfo, error)
	Logs(ctx context.Context, name string, tailLines int) (string, error)
	Stats(ctx context.Context, name string) (string, error)

	// Container lifecycle
	Start(ctx context.Context, name string) error
	Stop(ctx context.Context, name string) error
	Restart(ctx context.Context, name string) error
	Pause(ctx context.Context, name string) error
	Unpause(ctx context.Context, name string) error
	Remove(ctx context.Context, name string, force bool) error
	Create(ctx context.Context, opts CreateOptions) (string, error)

	// Engine information
	Ping(ctx context.Context) error
	Version(ctx context.Context) (string, error)
}
