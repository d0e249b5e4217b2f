package diagnose

import (
	"fmt"
	"strings"
)

// ExitCodeEntry describes a well-known container exit code.
type ExitCodeEntry struct {
	Title       string
	Description string
	Actions     []string
	Commands    []string
}

var exitCodeTable = map[int]ExitCodeEntry{
	0: {
		Title:       "Purposely Stopped",
		Description: "Exit code 0 indicates that the container was intentionally stopped after completing its task.",
		Actions: []string{
			"Check logs to confirm expected stop behavior.",
			"Validate that no dependent service failed due to the stop.",
		},
		Commands: []string{
			"docker ps -a --filter 'status=exited'",
			"docker logs <container_name> | tail -20",
		},
	},
	1: {
		Title:       "Application Error",
		Description: "Exit code 1 means the container stopped due to an application error, for example a missing dependency or an uncaught exception.",
		Actions: []string{
			"Inspect container logs for specific application errors.",
			"Ensure correct configuration files and environment variables are provided.",
			"Validate entrypoint script and app dependencies.",
		},
		Commands: []string{
			"docker logs <container_name>",
			"docker inspect <container_name> --format '{{.State.Error}}'",
			"docker exec -it <container_name> /bin/bash",
		},
	},
	2: {
		Title:       "Incorrect Usage",
		Description: "Exit code 2 means the command was used incorrectly or required arguments are missing. Check your command or entrypoint script.",
		Actions: []string{
			"Verify the command line and arguments passed to the container.",
			"Check the entrypoint script for shell syntax errors.",
		},
		Commands: []string{
			"docker logs <container_name>",
			"docker inspect <container_name> --format '{{.Path}} {{.Args}}'",
		},
	},
	125: {
		Title:       "Container Failed to Run",
		Description: "Exit code 125 means the engine itself failed to run the container (not the app inside).",
		Actions: []string{
			"Check engine daemon status and system resources.",
			"Validate command syntax and permissions.",
		},
		Commands: []string{
			"systemctl status docker",
			"journalctl -u docker --no-pager | tail -30",
			"docker run hello-world",
		},
	},
	126: {
		Title:       "Command Invoke Error",
		Description: "Exit code 126 means a command in the container could not be invoked (permission denied or not executable).",
		Actions: []string{
			"Check if the entrypoint script or binary has execute permissions.",
			"Ensure correct user context (root/non-root).",
		},
		Commands: []string{
			"docker logs <container_name>",
			"docker exec <container_name> ls -l /usr/local/bin/",
			"chmod +x <file_name> (inside Dockerfile or container)",
		},
	},
	127: {
		Title:       "File or Command Not Found",
		Description: "Exit code 127 means the container tried to run a file or command that does not exist.",
		Actions: []string{
			"Verify entrypoint or CMD in the Dockerfile.",
			"Ensure required binaries or paths exist.",
		},
		Commands: []string{
			"docker inspect <container_name> --format '{{.Path}} {{.Args}}'",
			"docker exec -it <container_name> which <command>",
			"docker exec -it <container_name> ls /usr/bin/",
		},
	},
	128: {
		Title:       "Invalid Exit Argument",
		Description: "Exit code 128 occurs when the container process called exit() with an invalid value or signal.",
		Actions: []string{
			"Check application code for invalid exit() usage.",
			"Ensure signals are handled properly inside the application.",
		},
		Commands: []string{
			"docker logs <container_name> | grep 'exit'",
			"docker inspect <container_name> --format '{{.State.ExitCode}}'",
		},
	},
	129: {
		Title:       "Hangup Signal (SIGHUP)",
		Description: "Exit code 129 means the process terminated on SIGHUP, often because its controlling terminal or parent went away.",
		Actions: []string{
			"Check whether the container was detached from a terminal session.",
			"Run the container detached (-d) so it does not depend on a terminal.",
		},
		Commands: []string{
			"docker logs <container_name> | tail -20",
			"docker ps -a | grep <container_name>",
		},
	},
	130: {
		Title:       "Interrupted (SIGINT)",
		Description: "Exit code 130 means the container was interrupted manually (Ctrl+C).",
		Actions: []string{
			"Confirm the interruption was intentional.",
			"Restart the container if the stop was accidental.",
		},
		Commands: []string{
			"docker start <container_name>",
			"docker logs <container_name> | tail -20",
		},
	},
	134: {
		Title:       "Abnormal Termination (SIGABRT)",
		Description: "Exit code 134 means the process aborted due to a detected inconsistency (assert failure or abort()).",
		Actions: []string{
			"Check logs for 'Aborted' or 'core dumped'.",
			"Inspect application crash reports or core dumps.",
		},
		Commands: []string{
			"docker logs <container_name> | tail -50",
			"docker exec -it <container_name> dmesg | grep -i abort",
			"ulimit -c unlimited  # enable core dump for debugging",
		},
	},
	137: {
		Title:       "Immediate Termination (SIGKILL)",
		Description: "Exit code 137 means the container was killed with SIGKILL, often due to an out-of-memory (OOM) kill or a manual docker kill.",
		Actions: []string{
			"Check for OOM events using engine or kernel logs.",
			"Review container memory limits and usage.",
			"Avoid forcing SIGKILL; handle SIGTERM gracefully.",
		},
		Commands: []string{
			"docker inspect <container_name> --format '{{.State.OOMKilled}}'",
			"docker logs <container_name> | tail -20",
			"dmesg | grep -i kill",
			"docker stats --no-stream",
		},
	},
	139: {
		Title:       "Segmentation Fault (SIGSEGV)",
		Description: "Exit code 139 means the container crashed due to invalid memory access.",
		Actions: []string{
			"Rebuild the image ensuring correct library versions.",
			"Check code for pointer/memory management bugs.",
			"Run the container in debug mode with strace/gdb.",
		},
		Commands: []string{
			"docker logs <container_name> | tail -40",
			"docker exec -it <container_name> strace -p <pid>",
			"docker exec -it <container_name> gdb <binary>",
		},
	},
	143: {
		Title:       "Graceful Termination (SIGTERM)",
		Description: "Exit code 143 means the container received SIGTERM, usually via docker stop or an orchestrator.",
		Actions: []string{
			"Confirm it is part of a planned shutdown or rolling update.",
			"If unplanned, check orchestrator or host-level stop signals.",
		},
		Commands: []string{
			"docker ps -a | grep <container_name>",
			"journalctl -u docker | grep -i stop",
			"docker inspect <container_name> --format '{{.State.FinishedAt}}'",
		},
	},
	255: {
		Title:       "Exit Status Out of Range",
		Description: "Exit code 255 means the process exited with an undefined or out-of-range exit value.",
		Actions: []string{
			"Rebuild the container image cleanly.",
			"Check entrypoint or script for unexpected exits.",
			"Restart the engine daemon if corruption is suspected.",
		},
		Commands: []string{
			"docker logs <container_name> | tail -30",
			"docker ps -a --no-trunc",
			"systemctl restart docker",
		},
	},
}

// ExplainExitCode renders a detailed explanation for a container exit code.
// Codes outside the static table fall back to a classification by numeric
// band. The function is pure and total.
func ExplainExitCode(code int) string {
	entry, ok := exitCodeTable[code]
	if !ok {
		band := "application-related errors (0-128)"
		if code >= 129 {
			band = "OS or signal-based termination (129-255), e.g. SIGKILL or SIGTERM"
		}
		return fmt.Sprintf(
			"Exit code %d is not in the reference table.\n\n"+
				"Typical patterns:\n"+
				"- 0-128: application-related errors\n"+
				"- 129-255: OS or signal-based termination (e.g. SIGKILL, SIGTERM)\n\n"+
				"This code falls in the band for %s.\n"+
				"Inspect with: docker ps -a --no-trunc | grep Exited",
			code, band)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Exit code %d: %s\n\n", code, entry.Title)
	fmt.Fprintf(&b, "%s\n\n", entry.Description)
	b.WriteString("Recommended actions:\n")
	for _, action := range entry.Actions {
		fmt.Fprintf(&b, "- %s\n", action)
	}
	b.WriteString("\nTroubleshooting commands:\n")
	for _, cmd := range entry.Commands {
		fmt.Fprintf(&b, "  %s\n", cmd)
	}
	return b.String()
}

// ExitCodeSummary returns the one-line title for a code, falling back to the
// band classification.
func ExitCodeSummary(code int) string {
	if entry, ok := exitCodeTable[code]; ok {
		return entry.Title
	}
	if code >= 129 {
		return "OS or signal-based termination"
	}
	return "Application-related error"
}
