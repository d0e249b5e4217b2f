package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	assert.Equal(t, StatusRunning, ParseStatus("running"))
	assert.Equal(t, StatusExited, ParseStatus(" Exited "))
	assert.Equal(t, StatusPaused, ParseStatus("PAUSED"))
	assert.Equal(t, StatusUnknown, ParseStatus("levitating"))
	assert.Equal(t, StatusUnknown, ParseStatus(""))
}

func TestParseHealth(t *testing.T) {
	assert.Equal(t, HealthHealthy, ParseHealth("healthy"))
	assert.Equal(t, HealthUnhealthy, ParseHealth("Unhealthy"))
	assert.Equal(t, HealthStarting, ParseHealth("starting"))
	assert.Equal(t, HealthNone, ParseHealth(""))
	assert.Equal(t, HealthNone, ParseHealth("none"))
	assert.Equal(t, HealthUnknown, ParseHealth("glowing"))
}

func TestContainerInfo_IsRunning(t *testing.T) {
	assert.True(t, ContainerInfo{Status: StatusRunning}.IsRunning())
	assert.False(t, ContainerInfo{Status: StatusExited}.IsRunning())
}

func TestContainerInfo_ImageRef(t *testing.T) {
	assert.Equal(t, "nginx:latest", ContainerInfo{Image: []string{"nginx:latest"}}.ImageRef())
	assert.Equal(t, "a, b", ContainerInfo{Image: []string{"a", "b"}}.ImageRef())
	assert.Equal(t, "unknown", ContainerInfo{}.ImageRef())
	assert.Equal(t, "unknown", ContainerInfo{Image: []string{""}}.ImageRef())
}
