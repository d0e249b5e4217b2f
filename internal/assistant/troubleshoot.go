package assistant

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"dockhand/internal/diagnose"
	"dockhand/pkg/engine"
)

// Issue-tag patterns checked independently against collected logs.
var (
	rePortIssue       = regexp.MustCompile(`(?i)port.*already in use`)
	reCrashIssue      = regexp.MustCompile(`(?i)error|fail|crash|exception`)
	reNetworkIssue    = regexp.MustCompile(`(?i)network|dns|resolve`)
	rePermissionIssue = regexp.MustCompile(`(?i)permission|denied`)
)

// restartableStates are the states worth a restart attempt before digging
// into logs.
var restartableStates = map[engine.Status]bool{
	engine.StatusExited:     true,
	engine.StatusDead:       true,
	engine.StatusCreated:    true,
	engine.StatusRestarting: true,
}

// troubleshoot runs the diagnostic flow for one container: optional restart
// with settle re-check, log collection, issue tagging, exit code analysis
// and an advisory footer.
func (r *Router) troubleshoot(ctx context.Context, fragment string, containers []engine.ContainerInfo) string {
	target := findContainerByFragment(containers, fragment)
	if target == nil {
		return fmt.Sprintf("No container found with a name similar to %q.", fragment)
	}

	name := target.Name
	status := target.Status
	report := []string{
		fmt.Sprintf("Troubleshooting report for %s", name),
		"",
		fmt.Sprintf("Current status: %s", status),
	}

	if restartableStates[status] {
		report = append(report, "Attempting to restart container...")
		if err := r.engine.Restart(ctx, name); err != nil {
			report = append(report, fmt.Sprintf("Failed to restart container: %v", err))
		} else {
			r.sleep(r.settleDelay)
			refreshed, err := r.engine.Get(ctx, name)
			if err != nil {
				report = append(report, fmt.Sprintf("Unable to re-check container state: %v", err))
			} else {
				status = refreshed.Status
				target = refreshed
				report = append(report, fmt.Sprintf("New status after restart: %s", status))
				if status == engine.StatusRunning {
					report = append(report, "Container restarted successfully and is now running.")
					return strings.Join(report, "\n")
				}
				report = append(report, "Container failed to stay running after the restart attempt. Fetching logs...")
			}
		}
	} else {
		report = append(report, "Container is already running normally.")
	}

	logs, err := r.engine.Logs(ctx, name, r.troubleshootTailLines)
	if err != nil {
		logs = ""
		report = append(report, fmt.Sprintf("Unable to fetch logs: %v", err))
	} else {
		display := strings.TrimSpace(logs)
		if display == "" {
			display = "No logs found."
		}
		report = append(report, "", fmt.Sprintf("Recent logs (last %d lines):", r.troubleshootTailLines), display)
	}

	if status == engine.StatusExited || status == engine.StatusDead {
		report = append(report, "",
			fmt.Sprintf("Exit code: %d (%s)", target.ExitCode, diagnose.ExitCodeSummary(target.ExitCode)))
	}

	var issues []string
	if rePortIssue.MatchString(logs) {
		issues = append(issues, "Port conflict detected: another process might be using this port.")
	}
	if reCrashIssue.MatchString(logs) {
		issues = append(issues, "Application crash or configuration error detected.")
	}
	if reNetworkIssue.MatchString(logs) {
		issues = append(issues, "Network or DNS resolution issue.")
	}
	if rePermissionIssue.MatchString(logs) {
		issues = append(issues, "Permission issue: a file or directory may not be accessible.")
	}
	if len(issues) == 0 {
		issues = append(issues, "No critical errors found in logs.")
	}

	report = append(report, "", "Detected issues:")
	for _, issue := range issues {
		report = append(report, "- "+issue)
	}

	if status == engine.StatusRunning {
		if stats, err := r.engine.Stats(ctx, name); err == nil {
			report = append(report, "", "Resource usage: "+stats)
		}
	}

	report = append(report, "", "Recommendations:")
	for _, rec := range troubleshootRecommendations(name) {
		report = append(report, "- "+rec)
	}

	return strings.Join(report, "\n")
}
