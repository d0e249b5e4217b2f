package assistant

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"dockhand/internal/diagnose"
	"dockhand/pkg/engine"
)

// Response is the outcome of interpreting one question. Answer is always
// set; Action records a side effect already performed; Troubleshooting
// carries per-container advice from bulk operations.
type Response struct {
	Answer          string
	Action          string
	Troubleshooting map[string]string
}

// LLMClient is the optional language-model collaborator consulted when no
// intent rule matches.
type LLMClient interface {
	ChatComplete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// intentRule pairs a predicate over normalized input with its handler.
// Rules are evaluated strictly in slice order; the first match wins. The
// ordering is a documented contract: add new rules with care, overlapping
// keyword triggers resolve to the earliest rule.
type intentRule struct {
	name   string
	match  func(q string, s *Session) bool
	handle func(ctx context.Context, q string, containers []engine.ContainerInfo, s *Session) Response
}

// Options tunes router behavior. Zero values get defaults.
type Options struct {
	LogTailChars          int           // fallback log excerpt size
	LogTailLines          int           // lines fetched before truncating to LogTailChars
	TroubleshootTailLines int           // lines collected by the diagnostic flow
	SettleDelay           time.Duration // wait after a restart before re-checking
	LLMTimeout            time.Duration
}

// Router classifies free-text questions about containers and dispatches to
// the matching handler. It never returns an error: every path terminates in
// a user-facing answer.
type Router struct {
	engine  engine.Engine
	llm     LLMClient
	ports   *diagnose.PortAdvisor
	dns     *diagnose.DNSFixer
	catalog []CatalogCategory
	rules   []intentRule

	logTailChars          int
	logTailLines          int
	troubleshootTailLines int
	settleDelay           time.Duration
	llmTimeout            time.Duration
	sleep                 func(time.Duration)
}

// NewRouter wires the router with its collaborators. llm may be nil, in
// which case the static fallback is used directly.
func NewRouter(eng engine.Engine, ports *diagnose.PortAdvisor, dns *diagnose.DNSFixer, llm LLMClient, opts Options) (*Router, error) {
	catalog, err := LoadImageCatalog()
	if err != nil {
		return nil, err
	}

	r := &Router{
		engine:                eng,
		llm:                   llm,
		ports:                 ports,
		dns:                   dns,
		catalog:               catalog,
		logTailChars:          opts.LogTailChars,
		logTailLines:          opts.LogTailLines,
		troubleshootTailLines: opts.TroubleshootTailLines,
		settleDelay:           opts.SettleDelay,
		llmTimeout:            opts.LLMTimeout,
		sleep:                 time.Sleep,
	}
	if r.logTailChars <= 0 {
		r.logTailChars = 400
	}
	if r.logTailLines <= 0 {
		r.logTailLines = 50
	}
	if r.troubleshootTailLines <= 0 {
		r.troubleshootTailLines = 30
	}
	if r.settleDelay <= 0 {
		r.settleDelay = 5 * time.Second
	}
	if r.llmTimeout <= 0 {
		r.llmTimeout = 15 * time.Second
	}

	r.rules = r.buildRules()
	return r, nil
}

// Interpret classifies the question and produces a response, possibly
// performing engine operations and mutating the session. The session lock is
// held for the whole call: concurrent calls against the same session do not
// interleave.
func (r *Router) Interpret(ctx context.Context, question string, containers []engine.ContainerInfo, sess *Session) Response {
	q := strings.ToLower(strings.TrimSpace(question))

	sess.mu.Lock()
	defer sess.mu.Unlock()

	for _, rule := range r.rules {
		if rule.match(q, sess) {
			log.Debug().Str("rule", rule.name).Str("session", sess.ID).Msg("Intent matched")
			return rule.handle(ctx, q, containers, sess)
		}
	}

	return Response{Answer: r.llmOrStatic(ctx, q, containers)}
}

func (r *Router) llmOrStatic(ctx context.Context, q string, containers []engine.ContainerInfo) string {
	ctx, cancel := context.WithTimeout(ctx, r.llmTimeout)
	defer cancel()
	return r.fallback(ctx, q, containers)
}

var reRestartStopped = regexp.MustCompile(`restart (all )?stopped containers?`)

// buildRules assembles the ordered rule set. Handlers may read and write
// session fields directly: Interpret holds the session lock.
func (r *Router) buildRules() []intentRule {
	return []intentRule{
		{
			name: "restart-stopped-confirmation",
			match: func(q string, s *Session) bool {
				return s.awaitingRestartAll || reRestartStopped.MatchString(q)
			},
			handle: r.handleRestartStopped,
		},
		{
			name: "list-stopped",
			match: func(q string, _ *Session) bool {
				return containsAny(q, "show stopped", "list stopped", "exited containers")
			},
			handle: func(_ context.Context, _ string, containers []engine.ContainerInfo, _ *Session) Response {
				return Response{Answer: renderStoppedTable(containers)}
			},
		},
		{
			name: "health-summary",
			match: func(q string, _ *Session) bool {
				return strings.Contains(q, "health")
			},
			handle: func(_ context.Context, _ string, containers []engine.ContainerInfo, _ *Session) Response {
				return Response{Answer: renderHealthSummary(containers)}
			},
		},
		{
			name: "exit-code",
			match: func(q string, _ *Session) bool {
				return containsAny(q, "exit code", "exited with code")
			},
			handle: func(_ context.Context, q string, _ []engine.ContainerInfo, _ *Session) Response {
				code, ok := firstInt(q)
				if !ok {
					return Response{Answer: "Please provide a valid exit code number, e.g. \"exit code 137\"."}
				}
				return Response{Answer: diagnose.ExplainExitCode(code)}
			},
		},
		{
			name: "dns-report",
			match: func(q string, _ *Session) bool {
				return containsAny(q, "dns resolution issues", "temporary failure resolving")
			},
			handle: func(_ context.Context, _ string, _ []engine.ContainerInfo, _ *Session) Response {
				return Response{Answer: dnsGuide}
			},
		},
		{
			name: "dns-fix",
			match: func(q string, _ *Session) bool {
				return q == "fix dns issue" || q == "fix dns"
			},
			handle: func(ctx context.Context, _ string, _ []engine.ContainerInfo, _ *Session) Response {
				if err := r.dns.Fix(ctx); err != nil {
					return Response{Answer: fmt.Sprintf("Failed to update DNS configuration: %v", err)}
				}
				return Response{
					Answer: "DNS configuration updated successfully and the container engine was restarted.",
					Action: "dns-fix",
				}
			},
		},
		{
			name: "port-conflict-report",
			match: func(q string, _ *Session) bool {
				return containsAny(q, "port conflict", "port in use")
			},
			handle: func(_ context.Context, _ string, _ []engine.ContainerInfo, _ *Session) Response {
				return Response{Answer: diagnose.PortConflictReport()}
			},
		},
		{
			name: "check-port",
			match: func(q string, _ *Session) bool {
				return strings.Contains(q, "check port")
			},
			handle: func(ctx context.Context, q string, _ []engine.ContainerInfo, _ *Session) Response {
				port, ok := intAfterWord(q, "port")
				if !ok {
					return Response{Answer: "Please provide a valid port number, e.g. \"check port 8080\"."}
				}
				return Response{Answer: r.ports.CheckPort(ctx, port)}
			},
		},
		{
			name: "troubleshoot",
			match: func(q string, _ *Session) bool {
				return strings.Contains(q, "troubleshoot")
			},
			handle: r.handleTroubleshoot,
		},
		{
			name: "lifecycle-keyword",
			match: func(q string, _ *Session) bool {
				_, ok := detectLifecycleKeyword(q)
				return ok
			},
			handle: func(_ context.Context, q string, _ []engine.ContainerInfo, s *Session) Response {
				action, _ := detectLifecycleKeyword(q)
				s.pendingAction = &PendingLifecycleAction{Action: action}
				return Response{Answer: fmt.Sprintf(
					"Which container should I %s? Give a container name, or say \"all\".", action)}
			},
		},
		{
			name: "create-container",
			match: func(q string, _ *Session) bool {
				if strings.Contains(q, "create") {
					return true
				}
				// "run" must be a standalone token so "running" does not
				// trigger container creation.
				for _, tok := range strings.Fields(q) {
					if cleanToken(tok) == "run" {
						return true
					}
				}
				return false
			},
			handle: r.handleCreate,
		},
		{
			name: "show-images",
			match: func(q string, _ *Session) bool {
				return containsAny(q, "show images", "public images")
			},
			handle: func(_ context.Context, _ string, _ []engine.ContainerInfo, _ *Session) Response {
				return Response{Answer: renderImageCatalog(r.catalog)}
			},
		},
		{
			// Consumes the target for a lifecycle action recorded on a
			// previous turn. Tried after every explicit intent so a new
			// unambiguous question overrides the stale pending state.
			name: "pending-lifecycle-target",
			match: func(_ string, s *Session) bool {
				return s.pendingAction != nil
			},
			handle: r.handlePendingTarget,
		},
	}
}

// handleRestartStopped implements the bulk restart confirmation machine.
func (r *Router) handleRestartStopped(ctx context.Context, q string, containers []engine.ContainerInfo, s *Session) Response {
	if s.awaitingRestartAll {
		switch q {
		case "yes", "y":
			s.awaitingRestartAll = false
			return r.restartStopped(ctx, containers)
		case "no", "n":
			s.awaitingRestartAll = false
			return Response{Answer: "Okay, I won't restart anything."}
		default:
			return Response{Answer: "Please confirm with \"yes\" or \"no\": restart all stopped containers?"}
		}
	}

	stopped := 0
	for _, c := range containers {
		if !c.IsRunning() {
			stopped++
		}
	}
	s.awaitingRestartAll = true
	return Response{Answer: fmt.Sprintf(
		"This will restart %d container(s) that are not running. Confirm with \"yes\" or \"no\".", stopped)}
}

// restartStopped restarts every container that is not running, sequentially.
// A failure on one container is recorded and does not abort the rest.
func (r *Router) restartStopped(ctx context.Context, containers []engine.ContainerInfo) Response {
	var restarted []string
	troubleshooting := make(map[string]string)

	for _, c := range containers {
		if c.IsRunning() {
			continue
		}
		if err := r.engine.Restart(ctx, c.Name); err != nil {
			logs, logErr := r.engine.Logs(ctx, c.Name, r.troubleshootTailLines)
			if logErr != nil {
				logs = ""
			}
			troubleshooting[c.Name] = fmt.Sprintf("Restart failed: %v\n%s", err, diagnose.AnalyzeLogs(logs))
			continue
		}
		restarted = append(restarted, c.Name)
	}

	if len(restarted) == 0 && len(troubleshooting) == 0 {
		return Response{Answer: "All containers are already running. Nothing to restart."}
	}

	var b strings.Builder
	if len(restarted) > 0 {
		fmt.Fprintf(&b, "Restarted containers: %s\n", strings.Join(restarted, ", "))
	}
	if len(troubleshooting) > 0 {
		names := make([]string, 0, len(troubleshooting))
		for name := range troubleshooting {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintf(&b, "Failed to restart: %s (see troubleshooting details)\n", strings.Join(names, ", "))
	}

	resp := Response{Answer: strings.TrimRight(b.String(), "\n")}
	if len(restarted) > 0 {
		resp.Action = "Restarted containers: " + strings.Join(restarted, ", ")
	}
	if len(troubleshooting) > 0 {
		resp.Troubleshooting = troubleshooting
	}
	return resp
}

// handleTroubleshoot routes "troubleshoot <name>" to the diagnostic flow,
// "troubleshooting" to the general guide, and a bare "troubleshoot" to a
// prompt for a name.
func (r *Router) handleTroubleshoot(ctx context.Context, q string, containers []engine.ContainerInfo, _ *Session) Response {
	fields := strings.Fields(q)
	for i, tok := range fields {
		if !strings.HasPrefix(cleanToken(tok), "troubleshoot") {
			continue
		}
		if i+1 < len(fields) {
			return Response{Answer: r.troubleshoot(ctx, cleanToken(fields[i+1]), containers)}
		}
		if cleanToken(tok) == "troubleshooting" {
			return Response{Answer: troubleshootingGuide}
		}
		break
	}
	return Response{Answer: "Which container should I troubleshoot? Name one, e.g. \"troubleshoot web\"."}
}

// handleCreate parses and performs a container creation request.
func (r *Router) handleCreate(ctx context.Context, q string, _ []engine.ContainerInfo, _ *Session) Response {
	opts := parseCreateOptions(q)

	id, err := r.engine.Create(ctx, opts)
	if err != nil {
		return Response{Answer: fmt.Sprintf(
			"Could not create a container: %v\nExample: \"create a container from nginx named web on port 8080\".", err)}
	}

	desc := fmt.Sprintf("Created container from image %s (ID: %s)", opts.Image, shortID(id))
	if opts.Name != "" {
		desc += fmt.Sprintf(", named %s", opts.Name)
	}
	if opts.Port > 0 {
		desc += fmt.Sprintf(", published on port %d", opts.Port)
	}
	return Response{Answer: desc, Action: "create " + opts.Image}
}

// handlePendingTarget consumes the target for a previously recorded
// lifecycle action.
func (r *Router) handlePendingTarget(ctx context.Context, q string, containers []engine.ContainerInfo, s *Session) Response {
	pending := s.pendingAction

	target := strings.TrimSpace(q)
	if target == "" {
		return Response{Answer: fmt.Sprintf(
			"I still need a target for %s. Give a container name, or say \"all\".", pending.Action)}
	}
	s.pendingAction = nil

	if target == "all" {
		return r.applyLifecycleAll(ctx, pending.Action, containers)
	}

	c := findContainerByFragment(containers, target)
	if c == nil {
		return Response{Answer: fmt.Sprintf("No container found with a name similar to %q.", target)}
	}

	if err := r.applyLifecycle(ctx, pending.Action, c.Name); err != nil {
		return Response{Answer: fmt.Sprintf("Failed to %s %s: %v", pending.Action, c.Name, err)}
	}
	return Response{
		Answer: fmt.Sprintf("Done: %s %s.", pending.Action, c.Name),
		Action: fmt.Sprintf("%s %s", pending.Action, c.Name),
	}
}

// lifecycleEligible reports whether a bulk lifecycle action makes sense for
// a container in its current state.
func lifecycleEligible(action LifecycleAction, c engine.ContainerInfo) bool {
	switch action {
	case ActionStart:
		return !c.IsRunning()
	case ActionStop, ActionPause:
		return c.IsRunning()
	case ActionUnpause:
		return c.Status == engine.StatusPaused
	default: // restart, delete
		return true
	}
}

// applyLifecycleAll applies the action to every eligible container,
// sequentially, with partial-failure semantics.
func (r *Router) applyLifecycleAll(ctx context.Context, action LifecycleAction, containers []engine.ContainerInfo) Response {
	var done []string
	failures := make(map[string]string)

	for _, c := range containers {
		if !lifecycleEligible(action, c) {
			continue
		}
		if err := r.applyLifecycle(ctx, action, c.Name); err != nil {
			failures[c.Name] = err.Error()
			continue
		}
		done = append(done, c.Name)
	}

	if len(done) == 0 && len(failures) == 0 {
		return Response{Answer: fmt.Sprintf("No containers were eligible for %s.", action)}
	}

	var b strings.Builder
	if len(done) > 0 {
		fmt.Fprintf(&b, "Applied %s to: %s\n", action, strings.Join(done, ", "))
	}
	if len(failures) > 0 {
		names := make([]string, 0, len(failures))
		for name := range failures {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintf(&b, "Failed for: %s\n", strings.Join(names, ", "))
	}

	resp := Response{Answer: strings.TrimRight(b.String(), "\n")}
	if len(done) > 0 {
		resp.Action = fmt.Sprintf("%s: %s", action, strings.Join(done, ", "))
	}
	if len(failures) > 0 {
		resp.Troubleshooting = failures
	}
	return resp
}

// applyLifecycle maps a lifecycle action onto the engine operation.
func (r *Router) applyLifecycle(ctx context.Context, action LifecycleAction, name string) error {
	switch action {
	case ActionStart:
		return r.engine.Start(ctx, name)
	case ActionStop:
		return r.engine.Stop(ctx, name)
	case ActionRestart:
		return r.engine.Restart(ctx, name)
	case ActionPause:
		return r.engine.Pause(ctx, name)
	case ActionUnpause:
		return r.engine.Unpause(ctx, name)
	case ActionDelete:
		return r.engine.Remove(ctx, name, true)
	default:
		return fmt.Errorf("unknown lifecycle action %q", action)
	}
}

// lifecycleKeywords in detection order: longer keywords first so "restart"
// is not misread as "start" and "unpause" not as "pause".
var lifecycleKeywords = []struct {
	keyword string
	action  LifecycleAction
}{
	{"restart", ActionRestart},
	{"unpause", ActionUnpause},
	{"start", ActionStart},
	{"stop", ActionStop},
	{"pause", ActionPause},
	{"delete", ActionDelete},
	{"remove", ActionDelete},
}

// detectLifecycleKeyword finds a bare lifecycle keyword in the question.
// delete and remove normalize to the same action.
func detectLifecycleKeyword(q string) (LifecycleAction, bool) {
	for _, kw := range lifecycleKeywords {
		if strings.Contains(q, kw.keyword) {
			return kw.action, true
		}
	}
	return "", false
}

// renderStoppedTable lists exited containers with image, exit code and
// finish time.
func renderStoppedTable(containers []engine.ContainerInfo) string {
	var rows []string
	for _, c := range containers {
		if c.Status != engine.StatusExited {
			continue
		}
		finished := "-"
		if c.Finished != nil {
			finished = c.Finished.Format("2006-01-02 15:04:05")
		}
		rows = append(rows, fmt.Sprintf("  %-20s %-25s exit=%d finished=%s", c.Name, c.ImageRef(), c.ExitCode, finished))
	}
	if len(rows) == 0 {
		return "No stopped containers found."
	}
	return fmt.Sprintf("Stopped containers (%d):\n%s", len(rows), strings.Join(rows, "\n"))
}

// renderHealthSummary renders one line per container with its resolved
// health state.
func renderHealthSummary(containers []engine.ContainerInfo) string {
	if len(containers) == 0 {
		return "No containers found."
	}

	var b strings.Builder
	b.WriteString("Container health:\n")
	for _, c := range containers {
		var icon, state string
		switch {
		case c.Status == engine.StatusPaused:
			icon, state = "||", "Paused"
		case c.Health == engine.HealthNone || c.Health == engine.HealthUnknown:
			icon, state = "--", "Health check not defined"
		case c.Health == engine.HealthHealthy:
			icon, state = "OK", "healthy"
		case c.Health == engine.HealthStarting:
			icon, state = "..", "starting"
		case c.Health == engine.HealthUnhealthy:
			icon, state = "!!", "unhealthy"
		default:
			icon, state = "??", string(c.Health)
		}
		fmt.Fprintf(&b, "  [%s] %s: %s\n", icon, c.Name, state)
	}
	return strings.TrimRight(b.String(), "\n")
}

// shortID trims an engine ID to the conventional 12 characters.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
