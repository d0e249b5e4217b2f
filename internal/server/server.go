// Package server exposes the assistant over HTTP.
package server

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"dockhand/internal/assistant"
	"dockhand/pkg/engine"
)

type AskRequest struct {
	Question string `json:"question"`
}

type AskResponse struct {
	Answer          string            `json:"answer"`
	Containers      []ContainerView   `json:"containers"`
	Action          string            `json:"action,omitempty"`
	Troubleshooting map[string]string `json:"troubleshooting,omitempty"`
}

type ContainerView struct {
	Name     string `json:"name"`
	Image    string `json:"image"`
	Status   string `json:"status"`
	Health   string `json:"health"`
	ExitCode int    `json:"exit_code"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Engine  string `json:"engine"`
	Version string `json:"version,omitempty"`
}

// Server ties the echo instance to the assistant router and the container
// engine.
type Server struct {
	echo     *echo.Echo
	engine   engine.Engine
	sessions *assistant.SessionManager

	mu     sync.RWMutex
	router *assistant.Router
}

// UpdateRouter swaps the assistant router, used on config reload.
func (s *Server) UpdateRouter(r *assistant.Router) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.router = r
}

func (s *Server) currentRouter() *assistant.Router {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.router
}

func New(eng engine.Engine, router *assistant.Router) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())

	store := sessions.NewCookieStore(sessionSecret())
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	e.Use(session.Middleware(store))

	s := &Server{
		echo:     e,
		engine:   eng,
		router:   router,
		sessions: assistant.NewSessionManager(),
	}

	e.POST("/ask", s.handleAsk)
	e.GET("/containers", s.handleContainers)
	e.GET("/healthz", s.handleHealthz)

	return s
}

// sessionSecret generates a per-process cookie signing key. Chat sessions do
// not need to survive a server restart.
func sessionSecret() []byte {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Warn().Err(err).Msg("Falling back to static session key")
		return []byte("dockhand-session-fallback-key-32")
	}
	return key
}

// chatSession resolves the caller's chat session from the cookie, creating
// one on first contact.
func (s *Server) chatSession(c echo.Context) *assistant.Session {
	sess, err := session.Get("session", c)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read session cookie, using a fresh session")
		return s.sessions.Get("")
	}

	id, _ := sess.Values["chatID"].(string)
	chat := s.sessions.Get(id)
	if chat.ID != id {
		sess.Values["chatID"] = chat.ID
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			log.Warn().Err(err).Msg("Failed to persist session cookie")
		}
	}
	return chat
}

func (s *Server) snapshot(ctx context.Context) ([]engine.ContainerInfo, error) {
	return s.engine.List(ctx, true)
}

func toViews(containers []engine.ContainerInfo) []ContainerView {
	views := make([]ContainerView, 0, len(containers))
	for _, c := range containers {
		views = append(views, ContainerView{
			Name:     c.Name,
			Image:    c.ImageRef(),
			Status:   string(c.Status),
			Health:   string(c.Health),
			ExitCode: c.ExitCode,
		})
	}
	return views
}

func (s *Server) handleAsk(c echo.Context) error {
	var req AskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Question == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "question is required"})
	}

	ctx := c.Request().Context()

	containers, err := s.snapshot(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list containers")
		return c.JSON(http.StatusOK, AskResponse{
			Answer:     fmt.Sprintf("The container engine is not reachable: %v", err),
			Containers: []ContainerView{},
		})
	}

	chat := s.chatSession(c)
	resp := s.currentRouter().Interpret(ctx, req.Question, containers, chat)

	return c.JSON(http.StatusOK, AskResponse{
		Answer:          resp.Answer,
		Containers:      toViews(containers),
		Action:          resp.Action,
		Troubleshooting: resp.Troubleshooting,
	})
}

func (s *Server) handleContainers(c echo.Context) error {
	containers, err := s.snapshot(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, toViews(containers))
}

func (s *Server) handleHealthz(c echo.Context) error {
	ctx := c.Request().Context()
	if err := s.engine.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Engine: err.Error()})
	}
	version, err := s.engine.Version(ctx)
	if err != nil {
		version = ""
	}
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Engine: "reachable", Version: version})
}

// Start blocks until the listener fails or Shutdown is called.
func (s *Server) Start(port int) error {
	return s.echo.Start(fmt.Sprintf(":%d", port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// ShutdownTimeout is the grace period given to in-flight requests.
const ShutdownTimeout = 10 * time.Second
