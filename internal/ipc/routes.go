package ipc

import (
	"github.com/labstack/echo/v4"
)

func (s *Server) registerRoutes(e *echo.Echo) {
	e.GET("/status", s.statusHandler)
	e.POST("/stop", s.stopHandler)
	e.POST("/next", s.nextHandler)
	e.POST("/reload", s.reloadHandler)
	e.POST("/command", s.commandHandler)
}
