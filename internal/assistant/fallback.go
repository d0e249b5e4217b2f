package assistant

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"dockhand/internal/diagnose"
	"dockhand/pkg/engine"
)

// partitionByStatus splits a snapshot into running and stopped summaries.
// Containers in neither bucket (paused, created, ...) are left out of both.
func partitionByStatus(containers []engine.ContainerInfo) (running, stopped []string) {
	for _, c := range containers {
		entry := fmt.Sprintf("%s (%s)", c.Name, c.ImageRef())
		switch c.Status {
		case engine.StatusRunning:
			running = append(running, entry)
		case engine.StatusExited, engine.StatusDead:
			stopped = append(stopped, entry)
		}
	}
	return running, stopped
}

// renderStatusSummary builds the running/stopped summary blocks.
func renderStatusSummary(running, stopped []string) string {
	var blocks []string
	if len(running) > 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "Running containers (%d):\n", len(running))
		for _, r := range running {
			fmt.Fprintf(&b, "  - %s\n", r)
		}
		blocks = append(blocks, strings.TrimRight(b.String(), "\n"))
	}
	if len(stopped) > 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "Stopped containers (%d):\n", len(stopped))
		for _, s := range stopped {
			fmt.Fprintf(&b, "  - %s\n", s)
		}
		blocks = append(blocks, strings.TrimRight(b.String(), "\n"))
	}
	if len(blocks) == 0 {
		return "No containers found."
	}
	return strings.Join(blocks, "\n\n")
}

// staticFallback answers a question no intent rule matched, without any LLM.
// It is the terminal path: it always produces a response.
func (r *Router) staticFallback(ctx context.Context, q string, containers []engine.ContainerInfo) string {
	running, stopped := partitionByStatus(containers)

	switch {
	case strings.Contains(q, "how many") && strings.Contains(q, "container"):
		return fmt.Sprintf("There are %d running containers and %d stopped containers.", len(running), len(stopped))

	case containsAny(q, "status", "show"):
		return renderStatusSummary(running, stopped)

	case containsAny(q, "log", "error"):
		target := findContainerInQuestion(containers, q)
		if target == nil {
			return "Which container's logs should I look at? Name one, e.g. \"check logs for web\"."
		}
		logs, err := r.engine.Logs(ctx, target.Name, r.logTailLines)
		if err != nil {
			return fmt.Sprintf("Unable to fetch logs for %s: %v", target.Name, err)
		}
		if len(logs) > r.logTailChars {
			cut := len(logs) - r.logTailChars
			// Do not start the excerpt inside a multi-byte rune.
			for cut < len(logs) && !utf8.RuneStart(logs[cut]) {
				cut++
			}
			logs = logs[cut:]
		}
		return fmt.Sprintf("Recent logs for %s:\n%s\n\n%s", target.Name, strings.TrimSpace(logs), diagnose.AnalyzeLogs(logs))

	// The bare lifecycle keyword rule captures these phrases before
	// classification ever reaches the fallback, so this branch only fires
	// when the fallback is invoked directly.
	case containsAny(q, "start container", "stop container", "remove container"):
		return lifecycleUsageHint

	case strings.Contains(q, "pull image"):
		return pullImageHint

	case strings.Contains(q, "network issue"):
		return networkIssueHint

	default:
		return capabilityMenu
	}
}

// fallback first tries the configured LLM, then degrades to the static
// summary. An LLM failure is logged for operators and otherwise silent.
func (r *Router) fallback(ctx context.Context, q string, containers []engine.ContainerInfo) string {
	if r.llm == nil {
		return r.staticFallback(ctx, q, containers)
	}

	answer, err := r.llm.ChatComplete(ctx, llmSystemPrompt, renderLLMPrompt(q, containers))
	if err != nil || strings.TrimSpace(answer) == "" {
		log.Error().Err(err).Msg("LLM fallback failed, using static summary")
		return r.staticFallback(ctx, q, containers)
	}
	return answer
}

const llmSystemPrompt = "You are a DevOps assistant that monitors containers and explains issues clearly."

// renderLLMPrompt combines the question with a textual container snapshot.
func renderLLMPrompt(q string, containers []engine.ContainerInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User question: %s\n\nContainer info:\n", q)
	if len(containers) == 0 {
		b.WriteString("  (no containers)\n")
	}
	for _, c := range containers {
		fmt.Fprintf(&b, "  - name=%s image=%s status=%s health=%s\n", c.Name, c.ImageRef(), c.Status, c.Health)
	}
	return b.String()
}
