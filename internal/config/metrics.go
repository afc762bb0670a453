package config

import (
	"sync"
	"time"
)

// ServerMetrics counts what the relay has done since startup.
type ServerMetrics struct {
	mu                sync.RWMutex
	totalConnections  int64
	activeConnections int64
	totalMessages     int64
	totalCommands     int64
	startTime         time.Time
}

// MetricsSnapshot is the read-only view served on /stats.
type MetricsSnapshot struct {
	TotalConnections  int64     `json:"total_connections"`
	ActiveConnections int64     `json:"active_connections"`
	TotalMessages     int64     `json:"total_messages"`
	TotalCommands     int64     `json:"total_commands"`
	StartTime         time.Time `json:"start_time"`
	UptimeSeconds     float64   `json:"uptime_seconds"`
}

// NewServerMetrics creates new server metrics.
func NewServerMetrics() *ServerMetrics {
	return &ServerMetrics{startTime: time.Now()}
}

// IncrementConnections records a newly accepted connection.
func (m *ServerMetrics) IncrementConnections() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalConnections++
	m.activeConnections++
}

// DecrementConnections records a closed connection.
func (m *ServerMetrics) DecrementConnections() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activeConnections--
}

// IncrementMessages records one relayed chat message.
func (m *ServerMetrics) IncrementMessages() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalMessages++
}

// IncrementCommands records one processed client command.
func (m *ServerMetrics) IncrementCommands() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalCommands++
}

// Snapshot returns the current counters with the uptime filled in.
func (m *ServerMetrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return MetricsSnapshot{
		TotalConnections:  m.totalConnections,
		ActiveConnections: m.activeConnections,
		TotalMessages:     m.totalMessages,
		TotalCommands:     m.totalCommands,
		StartTime:         m.startTime,
		UptimeSeconds:     time.Since(m.startTime).Seconds(),
	}
}
