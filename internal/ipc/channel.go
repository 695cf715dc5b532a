package ipc

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/matjam/glpaper/internal/engine"
	"github.com/matjam/glpaper/internal/types"
)

// QueueSize is how many commands may wait for the engine before new ones
// are dropped.
const QueueSize = 8

// Channel hands commands from the socket server to the engine. The server
// is the only producer and the engine's poll loop the only consumer.
type Channel struct {
	sync.Mutex
	cmds   chan types.Command
	status engine.Status
	cancel context.CancelFunc
	logger *log.Logger
}

// NewChannel returns a channel whose Stop calls cancel.
func NewChannel(cancel context.CancelFunc, logger *log.Logger) *Channel {
	if logger == nil {
		logger = log.Default()
	}
	return &Channel{
		cmds:   make(chan types.Command, QueueSize),
		cancel: cancel,
		logger: logger,
	}
}

// TryReceive returns the oldest pending command without blocking.
func (c *Channel) TryReceive() types.Command {
	select {
	case cmd := <-c.cmds:
		return cmd
	default:
		return types.Command{Type: types.CommandNone}
	}
}

// EnqueueCommand queues cmd for the engine. It never blocks; when the
// queue is full the command is dropped and false is returned.
func (c *Channel) EnqueueCommand(cmd types.Command) bool {
	select {
	case c.cmds <- cmd:
		return true
	default:
		c.logger.Warnf("Command queue full, dropping %q", cmd.Type)
		return false
	}
}

// Stop asks the engine to shut down.
func (c *Channel) Stop() {
	c.Lock()
	defer c.Unlock()

	if c.cancel != nil {
		c.logger.Info("Stopping glpaper ...")
		c.cancel()
	}
}

// SetStatus records the engine's latest status. It is meant to be passed
// to engine.WithObserver.
func (c *Channel) SetStatus(s engine.Status) {
	c.Lock()
	defer c.Unlock()
	c.status = s
}

func (c *Channel) Status() engine.Status {
	c.Lock()
	defer c.Unlock()
	return c.status
}
