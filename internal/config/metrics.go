package config

import (
	"sync"
	"time"
)

// ServerMetrics holds server performance metrics
type ServerMetrics struct {
	TotalConnections  int64     `json:"total_connections"`
	ActiveConnections int64     `json:"active_connections"`
	TotalMessages     int64     `json:"total_messages"`
	PrivateMessages   int64     `json:"private_messages"`
	TotalRooms        int64     `json:"total_rooms"`
	OnlineUsers       int64     `json:"online_users"`
	StartTime         time.Time `json:"start_time"`
	LastMessageTime   time.Time `json:"last_message_time"`
	mutex             sync.RWMutex
}

// NewServerMetrics creates new server metrics
func NewServerMetrics() *ServerMetrics {
	return &ServerMetrics{
		StartTime: time.Now(),
	}
}

// IncrementConnections increments connection counts
func (sm *ServerMetrics) IncrementConnections() {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	sm.TotalConnections++
	sm.ActiveConnections++
}

// DecrementConnections decrements active connection count
func (sm *ServerMetrics) DecrementConnections() {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	sm.ActiveConnections--
}

// IncrementMessages increments room message count
func (sm *ServerMetrics) IncrementMessages() {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	sm.TotalMessages++
	sm.LastMessageTime = time.Now()
}

// IncrementPrivateMessages increments private message count
func (sm *ServerMetrics) IncrementPrivateMessages() {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	sm.PrivateMessages++
	sm.LastMessageTime = time.Now()
}

// IncrementRooms increments room count
func (sm *ServerMetrics) IncrementRooms() {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	sm.TotalRooms++
}

// IncrementUsers increments online user count
func (sm *ServerMetrics) IncrementUsers() {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	sm.OnlineUsers++
}

// DecrementUsers decrements online user count
func (sm *ServerMetrics) DecrementUsers() {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	sm.OnlineUsers--
}

// Snapshot returns a copy of the current metrics
func (sm *ServerMetrics) Snapshot() ServerMetrics {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()

	return ServerMetrics{
		TotalConnections:  sm.TotalConnections,
		ActiveConnections: sm.ActiveConnections,
		TotalMessages:     sm.TotalMessages,
		PrivateMessages:   sm.PrivateMessages,
		TotalRooms:        sm.TotalRooms,
		OnlineUsers:       sm.OnlineUsers,
		StartTime:         sm.StartTime,
		LastMessageTime:   sm.LastMessageTime,
	}
}
