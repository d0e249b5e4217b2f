package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dockhand/internal/assistant"
	"dockhand/internal/diagnose"
	"dockhand/pkg/engine"
)

type stubEngine struct {
	containers []engine.ContainerInfo
	listErr    error
	pingErr    error
	restarted  []string
}

func (s *stubEngine) List(_ context.Context, _ bool) ([]engine.ContainerInfo, error) {
	return s.containers, s.listErr
}

func (s *stubEngine) Get(_ context.Context, name string) (*engine.ContainerInfo, error) {
	for i := range s.containers {
		if s.containers[i].Name == name {
			return &s.containers[i], nil
		}
	}
	return nil, errors.New("not found")
}

func (s *stubEngine) Logs(_ context.Context, _ string, _ int) (string, error) { return "", nil }
func (s *stubEngine) Stats(_ context.Context, _ string) (string, error)      { return "", nil }
func (s *stubEngine) Start(_ context.Context, _ string) error                { return nil }
func (s *stubEngine) Stop(_ context.Context, _ string) error                 { return nil }

func (s *stubEngine) Restart(_ context.Context, name string) error {
	s.restarted = append(s.restarted, name)
	return nil
}

func (s *stubEngine) Pause(_ context.Context, _ string) error   { return nil }
func (s *stubEngine) Unpause(_ context.Context, _ string) error { return nil }

func (s *stubEngine) Remove(_ context.Context, _ string, _ bool) error { return nil }

func (s *stubEngine) Create(_ context.Context, _ engine.CreateOptions) (string, error) {
	return "", errors.New("not supported")
}

func (s *stubEngine) Ping(_ context.Context) error { return s.pingErr }

func (s *stubEngine) Version(_ context.Context) (string, error) { return "28.0-test", nil }

var _ engine.Engine = (*stubEngine)(nil)

func newTestServer(t *testing.T, eng engine.Engine) *Server {
	t.Helper()
	router, err := assistant.NewRouter(
		eng,
		diagnose.NewPortAdvisor(nil),
		diagnose.NewDNSFixer(t.TempDir()+"/daemon.json", nil, []string{"true"}),
		nil,
		assistant.Options{SettleDelay: time.Millisecond},
	)
	require.NoError(t, err)
	return New(eng, router)
}

func askJSON(t *testing.T, srv *Server, body string, cookies []*http.Cookie) (*httptest.ResponseRecorder, AskResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var resp AskResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestAsk_StatusQuestion(t *testing.T) {
	eng := &stubEngine{containers: []engine.ContainerInfo{
		{Name: "web", Image: []string{"nginx:latest"}, Status: engine.StatusRunning, Health: engine.HealthHealthy},
		{Name: "db", Image: []string{"postgres:16"}, Status: engine.StatusExited, ExitCode: 1},
	}}
	srv := newTestServer(t, eng)

	rec, resp := askJSON(t, srv, `{"question": "show status"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, resp.Answer, "Running containers (1):")
	require.Len(t, resp.Containers, 2)
	assert.Equal(t, "web", resp.Containers[0].Name)
	assert.Equal(t, "nginx:latest", resp.Containers[0].Image)
	assert.Equal(t, "running", resp.Containers[0].Status)
}

func TestAsk_MissingQuestion(t *testing.T) {
	srv := newTestServer(t, &stubEngine{})

	rec, _ := askJSON(t, srv, `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAsk_InvalidBody(t *testing.T) {
	srv := newTestServer(t, &stubEngine{})

	rec, _ := askJSON(t, srv, `{not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAsk_EngineUnavailable(t *testing.T) {
	eng := &stubEngine{listErr: errors.New("connection refused")}
	srv := newTestServer(t, eng)

	rec, resp := askJSON(t, srv, `{"question": "show status"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code, "engine failures surface as an answer, not an HTTP error")
	assert.Contains(t, resp.Answer, "not reachable")
	assert.Contains(t, resp.Answer, "connection refused")
}

func TestAsk_SessionCookieCarriesConfirmation(t *testing.T) {
	eng := &stubEngine{containers: []engine.ContainerInfo{
		{Name: "db", Image: []string{"postgres:16"}, Status: engine.StatusExited},
	}}
	srv := newTestServer(t, eng)

	rec, resp := askJSON(t, srv, `{"question": "restart stopped containers"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, resp.Answer, `"yes" or "no"`)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies, "first contact sets the session cookie")

	_, resp = askJSON(t, srv, `{"question": "yes"}`, cookies)
	assert.Equal(t, []string{"db"}, eng.restarted)
	assert.Contains(t, resp.Action, "Restarted containers: db")
}

func TestAsk_NoCookieMeansFreshSession(t *testing.T) {
	eng := &stubEngine{containers: []engine.ContainerInfo{
		{Name: "db", Status: engine.StatusExited},
	}}
	srv := newTestServer(t, eng)

	_, _ = askJSON(t, srv, `{"question": "restart stopped containers"}`, nil)
	// Second request without the cookie lands in a new session: "yes" is not
	// an answer to anything there.
	_, resp := askJSON(t, srv, `{"question": "yes"}`, nil)

	assert.Empty(t, eng.restarted)
	assert.Contains(t, resp.Answer, "I can help with container status")
}

func TestContainersEndpoint(t *testing.T) {
	eng := &stubEngine{containers: []engine.ContainerInfo{
		{Name: "web", Image: []string{"nginx:latest"}, Status: engine.StatusRunning},
	}}
	srv := newTestServer(t, eng)

	req := httptest.NewRequest(http.MethodGet, "/containers", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var views []ContainerView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "web", views[0].Name)
}

func TestContainersEndpoint_EngineDown(t *testing.T) {
	srv := newTestServer(t, &stubEngine{listErr: errors.New("down")})

	req := httptest.NewRequest(http.MethodGet, "/containers", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &stubEngine{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "28.0-test", health.Version)
}

func TestHealthz_EngineDown(t *testing.T) {
	srv := newTestServer(t, &stubEngine{pingErr: errors.New("no socket")})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "degraded", health.Status)
}
