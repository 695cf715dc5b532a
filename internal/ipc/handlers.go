package ipc

import (
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/matjam/glpaper"
	"github.com/matjam/glpaper/internal/types"
)

func (s *Server) statusResponse() StatusResponse {
	st := s.manager.Status()
	return StatusResponse{
		Status:     "ok",
		Message:    "glpaper is running",
		Version:    strings.Trim(glpaper.Version, "\n\r "),
		PID:        os.Getpid(),
		Socket:     s.path,
		Config:     s.configFile,
		State:      st.State,
		Wallpaper:  st.Wallpaper,
		Next:       st.Next,
		Transition: st.Transition,
		Wallpapers: st.Wallpapers,
	}
}

// GET /status
func (s *Server) statusHandler(c echo.Context) error {
	return c.JSONPretty(http.StatusOK, s.statusResponse(), "  ")
}

// POST /stop
func (s *Server) stopHandler(c echo.Context) error {
	s.manager.Stop()
	return c.JSON(http.StatusOK, Response{Status: "ok"})
}

// POST /next
func (s *Server) nextHandler(c echo.Context) error {
	return s.enqueue(c, types.CommandNext)
}

// POST /reload
func (s *Server) reloadHandler(c echo.Context) error {
	return s.enqueue(c, types.CommandReload)
}

// POST /command
func (s *Server) commandHandler(c echo.Context) error {
	var cmd types.Command
	if err := c.Bind(&cmd); err != nil {
		return c.JSON(http.StatusBadRequest, Response{Status: "error", Message: "invalid command body"})
	}

	switch cmd.Type {
	case types.CommandNext, types.CommandReload:
		return s.enqueue(c, cmd.Type)
	case types.CommandStop:
		return s.stopHandler(c)
	case types.CommandStatus:
		return c.JSON(http.StatusOK, Response{Status: "ok", Data: s.statusResponse()})
	default:
		s.logger.Warnf("Ignoring unknown command %q", cmd.Type)
		return c.JSON(http.StatusBadRequest, Response{Status: "error", Message: "unknown command " + string(cmd.Type)})
	}
}

func (s *Server) enqueue(c echo.Context, t types.CommandType) error {
	if !s.manager.EnqueueCommand(types.Command{Type: t}) {
		return c.JSON(http.StatusServiceUnavailable, Response{Status: "error", Message: "command queue full"})
	}
	return c.JSON(http.StatusOK, Response{Status: "ok"})
}
