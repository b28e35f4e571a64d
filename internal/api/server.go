package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wrapforge/internal/chat"
	"github.com/wrapforge/internal/metrics"
	"github.com/wrapforge/internal/storage"
)

// Server represents the API server
type Server struct {
	echo       *echo.Echo
	port       int
	store      *storage.Store
	chat       *chat.Service
	demoUserID int64
}

// NewServer creates a new API server
func NewServer(port int, store *storage.Store, chatSvc *chat.Service, demoUserID int64) *Server {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(countRequests)

	server := &Server{
		echo:       e,
		port:       port,
		store:      store,
		chat:       chatSvc,
		demoUserID: demoUserID,
	}

	// Setup routes
	server.setupRoutes()

	return server
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.echo.Group("/api")

	// Wrappers
	api.GET("/wrappers", s.getWrappers)
	api.POST("/wrappers", s.createWrapper)
	api.GET("/wrappers/:id", s.getWrapper)
	api.PUT("/wrappers/:id", s.updateWrapper)
	api.DELETE("/wrappers/:id", s.deleteWrapper)

	// Wrapper-owned collections
	api.GET("/wrappers/:wrapperId/prompts", s.getWrapperPrompts)
	api.POST("/wrappers/:wrapperId/prompts", s.createWrapperPrompt)
	api.GET("/wrappers/:wrapperId/integrations", s.getWrapperIntegrations)
	api.POST("/wrappers/:wrapperId/integrations", s.createWrapperIntegration)
	api.GET("/wrappers/:wrapperId/conversations", s.getWrapperConversations)
	api.POST("/wrappers/:wrapperId/conversations", s.createWrapperConversation)

	// Direct entity access
	api.PUT("/prompts/:id", s.updatePrompt)
	api.DELETE("/prompts/:id", s.deletePrompt)
	api.PUT("/integrations/:id", s.updateIntegration)
	api.DELETE("/integrations/:id", s.deleteIntegration)
	api.GET("/conversations/:id", s.getConversation)

	// Users
	api.POST("/users", s.createUser)
	api.GET("/users/:id", s.getUser)

	// Chat
	api.POST("/chat", s.postChat)
}

// Start begins the API server
func (s *Server) Start() error {
	// Start server in a goroutine
	go func() {
		if err := s.echo.Start(fmt.Sprintf(":%d", s.port)); err != nil && err != http.ErrServerClosed {
			s.echo.Logger.Fatal("shutting down the server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.echo.Shutdown(ctx)
}

func countRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		status := c.Response().Status
		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
		}
		metrics.Global().RequestsTotal.
			WithLabelValues(c.Request().Method, strconv.Itoa(status)).
			Inc()
		return err
	}
}

// parseID parses a positive numeric path parameter.
func parseID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}
