package ipc

import (
	"github.com/matjam/glpaper/internal/engine"
	"github.com/matjam/glpaper/internal/types"
)

// Manager is the daemon side the HTTP handlers talk to.
type Manager interface {
	Status() engine.Status
	EnqueueCommand(types.Command) bool
	Stop()
}

type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type StatusResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	Version    string `json:"version"`
	PID        int    `json:"pid"`
	Socket     string `json:"socket"`
	Config     string `json:"config"`
	State      string `json:"state"`
	Wallpaper  string `json:"wallpaper"`
	Next       string `json:"next"`
	Transition string `json:"transition"`
	Wallpapers int    `json:"wallpapers"`
}
