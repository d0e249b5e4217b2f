package diagnose

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeLogs_EmptyInput(t *testing.T) {
	assert.Equal(t, "No logs available for analysis.", AnalyzeLogs(""))
	assert.Equal(t, "No logs available for analysis.", AnalyzeLogs("   \n\t "))
}

func TestAnalyzeLogs_LambdaHandlerPattern(t *testing.T) {
	logs := "exec error: entrypoint requires the handler name to be the first argument"

	advice := AnalyzeLogs(logs)
	assert.Contains(t, advice, "Lambda container's entrypoint is misconfigured")
	assert.Contains(t, advice, "handler.lambda_handler")
}

func TestAnalyzeLogs_PortBindingPatterns(t *testing.T) {
	cases := []string{
		"Error starting userland proxy: listen tcp4 0.0.0.0:80: bind: address already in use",
		"failed to bind host port for 0.0.0.0:443",
		"Bind for 0.0.0.0:8080 failed: port is already allocated",
		"driver failed programming external connectivity on endpoint web",
	}

	for _, logs := range cases {
		advice := AnalyzeLogs(logs)
		assert.Contains(t, advice, "already in use", "logs: %s", logs)
		assert.Contains(t, advice, "sudo lsof -i :80", "logs: %s", logs)
	}
}

func TestAnalyzeLogs_CaseInsensitive(t *testing.T) {
	advice := AnalyzeLogs("BIND: ADDRESS ALREADY IN USE")
	assert.Contains(t, advice, "already in use")
}

func TestAnalyzeLogs_NoMatch(t *testing.T) {
	advice := AnalyzeLogs("2024-01-01 starting worker pool with 4 workers")
	assert.Equal(t, "No specific troubleshooting found. Review logs for details or rerun with `--verbose`.", advice)
}

func TestAnalyzeLogs_FirstMatchWins(t *testing.T) {
	// Both patterns present: the lambda rule is tried first.
	logs := "entrypoint requires the handler name\naddress already in use"
	advice := AnalyzeLogs(logs)
	assert.Contains(t, advice, "Lambda")
}

func TestAnalyzeLogs_Deterministic(t *testing.T) {
	logs := "something failed to bind today"
	assert.Equal(t, AnalyzeLogs(logs), AnalyzeLogs(logs))
}
