package diagnose

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// PortProcess identifies a process bound to a port.
type PortProcess struct {
	Name string
	PID  string
}

// PortInspector reports which OS processes hold a given port.
type PortInspector interface {
	ProcessesUsingPort(ctx context.Context, port int) ([]PortProcess, error)
}

// LsofInspector inspects ports by shelling out to lsof.
type LsofInspector struct{}

// ProcessesUsingPort runs `lsof -i :<port>` and parses the owning processes.
func (LsofInspector) ProcessesUsingPort(ctx context.Context, port int) ([]PortProcess, error) {
	cmd := exec.CommandContext(ctx, "lsof", "-i", fmt.Sprintf(":%d", port))
	out, err := cmd.Output()
	if err != nil {
		// lsof exits 1 when nothing matches the filter. Any other failure,
		// such as the binary being absent, must not read as a free port.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(strings.TrimSpace(string(out))) == 0 {
			return nil, nil
		}
		return nil, fmt.Errorf("lsof failed for port %d: %w", port, err)
	}

	return parseLsofOutput(string(out)), nil
}

// parseLsofOutput extracts (command, pid) pairs from lsof's tabular output.
func parseLsofOutput(out string) []PortProcess {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 2 {
		return nil
	}

	var procs []PortProcess
	seen := make(map[string]bool)
	for _, line := range lines[1:] { // skip header
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		key := fields[0] + "/" + fields[1]
		if seen[key] {
			continue
		}
		seen[key] = true
		procs = append(procs, PortProcess{Name: fields[0], PID: fields[1]})
	}
	return procs
}

// wellKnownServers are services commonly squatting on web ports, where a
// systemctl stop is better advice than a raw kill.
var wellKnownServers = map[string]bool{
	"apache2": true,
	"nginx":   true,
	"httpd":   true,
}

// PortAdvisor reports port ownership and suggests a remedy.
type PortAdvisor struct {
	inspector PortInspector
}

// NewPortAdvisor creates an advisor backed by the given inspector. A nil
// inspector defaults to lsof.
func NewPortAdvisor(inspector PortInspector) *PortAdvisor {
	if inspector == nil {
		inspector = LsofInspector{}
	}
	return &PortAdvisor{inspector: inspector}
}

// CheckPort reports which process owns the port and how to free it. It never
// fails: inspection errors degrade to a manual-check suggestion.
func (a *PortAdvisor) CheckPort(ctx context.Context, port int) string {
	procs, err := a.inspector.ProcessesUsingPort(ctx, port)
	if err != nil {
		log.Warn().Err(err).Int("port", port).Msg("Port inspection failed")
		return fmt.Sprintf("Unable to check port %d automatically (%v). Please check manually with `sudo lsof -i :%d`.", port, err, port)
	}

	if len(procs) == 0 {
		return fmt.Sprintf(
			"Good news: no process is currently using port %d.\n"+
				"You can safely use this port in your container.", port)
	}

	proc := procs[0]
	var suggestion string
	if wellKnownServers[proc.Name] {
		suggestion = fmt.Sprintf(
			"The service %s is using port %d. You can free it by running:\n"+
				"  sudo systemctl stop %s", proc.Name, port, proc.Name)
	} else {
		suggestion = fmt.Sprintf(
			"The process %s (PID %s) is using port %d. You can stop it using:\n"+
				"  sudo kill -9 %s", proc.Name, proc.PID, port, proc.PID)
	}

	var listing strings.Builder
	for _, p := range procs {
		fmt.Fprintf(&listing, "  %s (PID %s)\n", p.Name, p.PID)
	}

	return fmt.Sprintf(
		"Port %d is currently in use. Please stop/kill the service or use another port.\n\n"+
			"Processes holding the port:\n%s\n%s\n\n"+
			"Alternatively, edit your container setup to map another host port, e.g. \"8081:%d\".",
		port, listing.String(), suggestion, port)
}

// PortConflictReport is the initial response when a user reports a port
// conflict without naming a port.
func PortConflictReport() string {
	return "Port conflict detected.\n\n" +
		"It seems a container failed to start because the required port is already in use.\n\n" +
		"Please provide the port number you'd like me to check (for example 8080 or 80).\n" +
		"Just type: check port 8080\n" +
		"and I'll tell you which process is using it and how to fix it."
}
