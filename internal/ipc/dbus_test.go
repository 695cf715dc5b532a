package ipc

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/matjam/glpaper/internal/engine"
	"github.com/matjam/glpaper/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusObjectForwardsToChannel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := NewChannel(cancel, log.New(&bytes.Buffer{}))
	ch.SetStatus(engine.Status{Wallpaper: "/walls/a.png"})
	obj := &busObject{manager: ch}

	require.Nil(t, obj.Next())
	require.Nil(t, obj.Reload())
	assert.Equal(t, types.CommandNext, ch.TryReceive().Type)
	assert.Equal(t, types.CommandReload, ch.TryReceive().Type)

	current, dbusErr := obj.Current()
	require.Nil(t, dbusErr)
	assert.Equal(t, "/walls/a.png", current)

	for range QueueSize {
		require.Nil(t, obj.Next())
	}
	assert.NotNil(t, obj.Next())

	require.Nil(t, obj.Stop())
	assert.Error(t, ctx.Err())
}

func TestBusCallRejectsStatus(t *testing.T) {
	assert.Error(t, BusCall(types.CommandStatus))
}
