package ipc

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/godbus/dbus/v5"
	"github.com/matjam/glpaper/internal/types"
)

const (
	BusName       = "com.github.matjam.glpaper"
	BusPath       = dbus.ObjectPath("/com/github/matjam/glpaper")
	BusInterface  = "com.github.matjam.glpaper"
	methodNext    = "new_wallpaper"
	methodReload  = "reload_config"
	methodStop    = "stop"
	methodCurrent = "current_wallpaper"
)

// busObject is exported on the session bus. Its methods forward to the
// same Manager the socket server uses.
type busObject struct {
	manager Manager
}

func (o *busObject) Next() *dbus.Error {
	return o.enqueue(types.CommandNext)
}

func (o *busObject) Reload() *dbus.Error {
	return o.enqueue(types.CommandReload)
}

func (o *busObject) Stop() *dbus.Error {
	o.manager.Stop()
	return nil
}

func (o *busObject) Current() (string, *dbus.Error) {
	return o.manager.Status().Wallpaper, nil
}

func (o *busObject) enqueue(t types.CommandType) *dbus.Error {
	if !o.manager.EnqueueCommand(types.Command{Type: t}) {
		return dbus.MakeFailedError(fmt.Errorf("command queue full"))
	}
	return nil
}

// BusService owns BusName on the session bus.
type BusService struct {
	conn *dbus.Conn
}

// StartBusService claims BusName and exports the control methods. It
// fails when the session bus is unavailable or another process owns the
// name.
func StartBusService(manager Manager) (*BusService, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect to session bus: %w", err)
	}

	reply, err := conn.RequestName(BusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, fmt.Errorf("bus name %v is already taken", BusName)
	}

	err = conn.ExportWithMap(&busObject{manager: manager}, map[string]string{
		"Next":    methodNext,
		"Reload":  methodReload,
		"Stop":    methodStop,
		"Current": methodCurrent,
	}, BusPath, BusInterface)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("export bus object: %w", err)
	}

	log.Infof("Registered %v on the session bus", BusName)
	return &BusService{conn: conn}, nil
}

func (s *BusService) Close() error {
	if _, err := s.conn.ReleaseName(BusName); err != nil {
		log.Warnf("Failed to release %v: %v", BusName, err)
	}
	return s.conn.Close()
}

// BusCall invokes one of the exported methods on the running instance.
func BusCall(t types.CommandType) error {
	var method string
	switch t {
	case types.CommandNext:
		method = methodNext
	case types.CommandReload:
		method = methodReload
	case types.CommandStop:
		method = methodStop
	default:
		return fmt.Errorf("no bus method for %q", t)
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("connect to session bus: %w", err)
	}
	defer conn.Close()

	call := conn.Object(BusName, BusPath).Call(BusInterface+"."+method, 0)
	return call.Err
}
