package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	srv, db, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":9090", srv.Addr)
	require.Equal(t, 256, srv.SendBuffer)
	require.Equal(t, 60*time.Second, srv.ReadTimeout)
	require.Equal(t, 100, srv.HistoryPageSize)

	require.Equal(t, "mongodb://localhost:27017", db.URI)
	require.Equal(t, "chat_relay", db.Database)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CHAT_ADDR", ":8088")
	t.Setenv("CHAT_MAX_MESSAGE_LENGTH", "500")
	t.Setenv("MONGO_DATABASE", "chat_test")

	srv, db, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":8088", srv.Addr)
	require.Equal(t, 500, srv.MaxMessageLength)
	require.Equal(t, "chat_test", db.Database)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("CHAT_SEND_BUFFER", "0")

	_, _, err := Load()
	require.Error(t, err)
}

func TestLoad_PingMustBeatReadTimeout(t *testing.T) {
	t.Setenv("CHAT_PING_INTERVAL", "90s")
	t.Setenv("CHAT_READ_TIMEOUT", "60s")

	_, _, err := Load()
	require.Error(t, err)
}

func TestServerMetrics(t *testing.T) {
	m := NewServerMetrics()

	m.IncrementConnections()
	m.IncrementConnections()
	m.DecrementConnections()
	m.IncrementMessages()
	m.IncrementCommands()
	m.IncrementCommands()

	snap := m.Snapshot()
	require.Equal(t, int64(2), snap.TotalConnections)
	require.Equal(t, int64(1), snap.ActiveConnections)
	require.Equal(t, int64(1), snap.TotalMessages)
	require.Equal(t, int64(2), snap.TotalCommands)
	require.GreaterOrEqual(t, snap.UptimeSeconds, 0.0)
}
