package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/matjam/glpaper/internal/middleware"
)

const socketName = "glpaper.sock"

// SocketPath is where the daemon listens: $XDG_RUNTIME_DIR/glpaper.sock,
// or the temp directory when XDG_RUNTIME_DIR is unset.
func SocketPath() string {
	sockDir := os.Getenv("XDG_RUNTIME_DIR")
	if sockDir == "" {
		sockDir = os.TempDir()
	}
	return filepath.Join(sockDir, socketName)
}

type Server struct {
	echo       *echo.Echo
	manager    Manager
	path       string
	configFile string
	logger     *log.Logger
}

type ServerOption func(*Server)

func WithSocketPath(path string) ServerOption {
	return func(s *Server) { s.path = path }
}

// WithConfigFile sets the config path reported by /status.
func WithConfigFile(path string) ServerOption {
	return func(s *Server) { s.configFile = path }
}

func WithServerLogger(logger *log.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

func NewServer(manager Manager, opts ...ServerOption) *Server {
	s := &Server{
		manager: manager,
		path:    SocketPath(),
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.CharmLog(s.logger))
	s.registerRoutes(e)
	s.echo = e

	return s
}

func (s *Server) Path() string {
	return s.path
}

// ServeHTTP lets the routes be exercised without a socket.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Serve listens on the unix socket until ctx is cancelled, then shuts the
// server down and removes the socket file.
func (s *Server) Serve(ctx context.Context) error {
	if _, err := os.Stat(s.path); err == nil {
		_ = os.Remove(s.path)
	}

	listener, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("listen on %v: %w", s.path, err)
	}
	defer os.Remove(s.path)

	s.echo.Listener = listener
	s.logger.Infof("Listening on %v", s.path)

	errs := make(chan error, 1)
	go func() {
		errs <- s.echo.StartServer(s.echo.Server)
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("socket server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("socket server shutdown: %w", err)
	}
	return nil
}
