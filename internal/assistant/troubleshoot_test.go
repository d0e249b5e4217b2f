package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dockhand/pkg/engine"
)

func TestTroubleshoot_UnknownContainer(t *testing.T) {
	eng := newFakeEngine(testContainers()...)
	r := newTestRouter(t, eng, nil)

	resp := r.Interpret(context.Background(), "troubleshoot ghost", eng.snapshot(), NewSession())

	assert.Contains(t, resp.Answer, `No container found with a name similar to "ghost"`)
	assert.Empty(t, eng.restarted, "no engine mutation for an unknown name")
}

func TestTroubleshoot_RestartHeals(t *testing.T) {
	eng := newFakeEngine(testContainers()...)
	r := newTestRouter(t, eng, nil)

	resp := r.Interpret(context.Background(), "troubleshoot db", eng.snapshot(), NewSession())

	assert.Equal(t, []string{"db"}, eng.restarted)
	assert.Contains(t, resp.Answer, "Troubleshooting report for db")
	assert.Contains(t, resp.Answer, "restarted successfully and is now running")
	assert.NotContains(t, resp.Answer, "Detected issues:", "healed container skips log analysis")
}

func TestTroubleshoot_RestartFailsFallsThroughToLogs(t *testing.T) {
	eng := newFakeEngine(testContainers()...)
	eng.failRestart["db"] = errors.New("driver failed")
	eng.logs["db"] = "FATAL: could not bind, port 5432 already in use\npermission denied on /data"
	r := newTestRouter(t, eng, nil)

	resp := r.Interpret(context.Background(), "troubleshoot db", eng.snapshot(), NewSession())

	assert.Contains(t, resp.Answer, "Failed to restart container: driver failed")
	assert.Contains(t, resp.Answer, "Recent logs (last 30 lines):")
	assert.Contains(t, resp.Answer, "Port conflict detected")
	assert.Contains(t, resp.Answer, "Permission issue")
	assert.Contains(t, resp.Answer, "Exit code: 137 (Immediate Termination (SIGKILL))")
	assert.Contains(t, resp.Answer, "Recommendations:")
	assert.Contains(t, resp.Answer, "docker inspect db")
}

func TestTroubleshoot_RunningContainerSkipsRestart(t *testing.T) {
	eng := newFakeEngine(testContainers()...)
	eng.logs["web"] = "GET /healthz 200"
	eng.stats["web"] = "CPU: 0.1%, Memory: 12.0 MiB"
	r := newTestRouter(t, eng, nil)

	resp := r.Interpret(context.Background(), "troubleshoot web", eng.snapshot(), NewSession())

	assert.Empty(t, eng.restarted)
	assert.Contains(t, resp.Answer, "already running normally")
	assert.Contains(t, resp.Answer, "No critical errors found in logs.")
	assert.Contains(t, resp.Answer, "Resource usage: CPU: 0.1%, Memory: 12.0 MiB")
}

func TestTroubleshoot_IssueTagsAreIndependent(t *testing.T) {
	eng := newFakeEngine(testContainers()...)
	eng.failRestart["worker"] = errors.New("cannot restart")
	eng.logs["worker"] = "error: network unreachable, dns resolve failed"
	r := newTestRouter(t, eng, nil)

	resp := r.Interpret(context.Background(), "troubleshoot worker", eng.snapshot(), NewSession())

	assert.Contains(t, resp.Answer, "Application crash or configuration error")
	assert.Contains(t, resp.Answer, "Network or DNS resolution issue")
	assert.NotContains(t, resp.Answer, "Port conflict detected")
}

func TestTroubleshoot_FragmentMatching(t *testing.T) {
	eng := newFakeEngine(testContainers()...)
	eng.logs["worker"] = ""
	r := newTestRouter(t, eng, nil)

	resp := r.Interpret(context.Background(), "troubleshoot work", eng.snapshot(), NewSession())
	assert.Contains(t, resp.Answer, "Troubleshooting report for worker")
}

func TestTroubleshoot_BareTroubleshootingReturnsGuide(t *testing.T) {
	r := newTestRouter(t, newFakeEngine(), nil)

	resp := r.Interpret(context.Background(), "troubleshooting", nil, NewSession())
	assert.Contains(t, resp.Answer, "Container Troubleshooting Guide")
}

func TestTroubleshoot_BareTroubleshootPromptsForName(t *testing.T) {
	r := newTestRouter(t, newFakeEngine(), nil)

	resp := r.Interpret(context.Background(), "troubleshoot", nil, NewSession())
	assert.Contains(t, resp.Answer, "Which container should I troubleshoot?")
}

func TestTroubleshoot_NoLogsFound(t *testing.T) {
	eng := newFakeEngine(engine.ContainerInfo{Name: "idle", Status: engine.StatusRunning})
	r := newTestRouter(t, eng, nil)

	resp := r.Interpret(context.Background(), "troubleshoot idle", eng.snapshot(), NewSession())
	require.Contains(t, resp.Answer, "No logs found.")
	assert.Contains(t, resp.Answer, "No critical errors found in logs.")
}
