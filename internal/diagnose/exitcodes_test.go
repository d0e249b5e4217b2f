package diagnose

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExplainExitCode_KnownCodes(t *testing.T) {
	cases := map[int]string{
		0:   "Purposely Stopped",
		1:   "Application Error",
		2:   "Incorrect Usage",
		125: "Container Failed to Run",
		126: "Command Invoke Error",
		127: "File or Command Not Found",
		128: "Invalid Exit Argument",
		130: "Interrupted (SIGINT)",
		134: "Abnormal Termination (SIGABRT)",
		139: "Segmentation Fault (SIGSEGV)",
		143: "Graceful Termination (SIGTERM)",
		255: "Exit Status Out of Range",
	}

	for code, title := range cases {
		out := ExplainExitCode(code)
		assert.Contains(t, out, fmt.Sprintf("Exit code %d", code))
		assert.Contains(t, out, title)
		assert.Contains(t, out, "Recommended actions:")
		assert.Contains(t, out, "Troubleshooting commands:")
	}
}

func TestExplainExitCode_OOMKill(t *testing.T) {
	out := ExplainExitCode(137)
	assert.Contains(t, out, "SIGKILL")
	assert.Contains(t, out, "out-of-memory")
	assert.Contains(t, out, "OOMKilled")
}

func TestExplainExitCode_UnknownApplicationBand(t *testing.T) {
	out := ExplainExitCode(42)
	assert.Contains(t, out, "Exit code 42 is not in the reference table")
	assert.Contains(t, out, "application-related errors (0-128)")
}

func TestExplainExitCode_UnknownSignalBand(t *testing.T) {
	out := ExplainExitCode(152)
	assert.Contains(t, out, "Exit code 152 is not in the reference table")
	assert.Contains(t, out, "OS or signal-based termination (129-255)")
}

func TestExitCodeSummary(t *testing.T) {
	assert.Equal(t, "Immediate Termination (SIGKILL)", ExitCodeSummary(137))
	assert.Equal(t, "Application-related error", ExitCodeSummary(42))
	assert.Equal(t, "OS or signal-based termination", ExitCodeSummary(200))
}
