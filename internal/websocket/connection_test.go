package websocket

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnection_SendMessageQueues(t *testing.T) {
	conn := NewConnection(nil, 4)

	require.NoError(t, conn.SendMessage([]byte("one")))
	require.NoError(t, conn.SendMessage([]byte("two")))

	require.Equal(t, []byte("one"), <-conn.SendChannel())
	require.Equal(t, []byte("two"), <-conn.SendChannel())
}

func TestConnection_SendNeverBlocks(t *testing.T) {
	// Given a connection whose peer stopped draining
	conn := NewConnection(nil, 1)
	require.NoError(t, conn.SendMessage([]byte("fills the buffer")))

	// When another payload arrives
	err := conn.SendMessage([]byte("overflow"))

	// Then the send fails fast instead of blocking
	require.ErrorIs(t, err, ErrSendBufferFull)
}

func TestConnection_SendAfterClose(t *testing.T) {
	conn := NewConnection(nil, 4)
	require.NoError(t, conn.Close())

	err := conn.SendMessage([]byte("late"))

	require.ErrorIs(t, err, ErrClosed)
}

func TestConnection_CloseIsIdempotent(t *testing.T) {
	conn := NewConnection(nil, 4)

	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())
}

func TestConnection_QueuedPayloadsSurviveClose(t *testing.T) {
	// Frames queued before a forced close must still reach the write pump,
	// so a closure notice lands before the terminating close frame.
	conn := NewConnection(nil, 4)
	require.NoError(t, conn.SendMessage([]byte("closure notice")))
	require.NoError(t, conn.Close())

	payload, ok := <-conn.SendChannel()
	require.True(t, ok)
	require.Equal(t, []byte("closure notice"), payload)

	_, ok = <-conn.SendChannel()
	require.False(t, ok)
}

func TestConnection_IDsAreUnique(t *testing.T) {
	a := NewConnection(nil, 1)
	b := NewConnection(nil, 1)

	require.NotEmpty(t, a.GetID())
	require.NotEqual(t, a.GetID(), b.GetID())
}
