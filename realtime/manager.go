// Package realtime keeps one websocket room per user and pushes
// server events to every live connection in it.
package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/meinhoongagan/booking-platform/metrics"
)

const writeWait = 5 * time.Second

// Frame is the wire shape of every server event.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Connection wraps websocket.Conn with its owner and a write lock;
// gorilla allows one concurrent writer per connection.
type Connection struct {
	ID     string
	UserID uint

	conn     *websocket.Conn
	writeMu  sync.Mutex
	lastSeen time.Time
	seenMu   sync.Mutex
}

func (c *Connection) touch() {
	c.seenMu.Lock()
	c.lastSeen = time.Now()
	c.seenMu.Unlock()
}

func (c *Connection) idle() time.Duration {
	c.seenMu.Lock()
	defer c.seenMu.Unlock()
	return time.Since(c.lastSeen)
}

func (c *Connection) write(f Frame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(f)
}

func (c *Connection) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second))
}

type Manager struct {
	mu    sync.RWMutex
	rooms map[uint]map[*Connection]struct{}
	log   *zap.Logger
}

func NewManager(log *zap.Logger) *Manager {
	return &Manager{
		rooms: make(map[uint]map[*Connection]struct{}),
		log:   log.Named("realtime"),
	}
}

// Add joins conn to the user's room.
func (m *Manager) Add(userID uint, conn *websocket.Conn) *Connection {
	c := &Connection{ID: uuid.NewString(), UserID: userID, conn: conn, lastSeen: time.Now()}

	m.mu.Lock()
	room, ok := m.rooms[userID]
	if !ok {
		room = make(map[*Connection]struct{})
		m.rooms[userID] = room
	}
	room[c] = struct{}{}
	size := len(room)
	m.mu.Unlock()

	metrics.RealtimeConnections.Inc()
	m.log.Debug("ws connected", zap.Uint("user", userID), zap.String("conn", c.ID), zap.Int("room_size", size))
	return c
}

// Remove closes c and drops it from its room. Safe to call twice.
func (m *Manager) Remove(c *Connection) {
	m.mu.Lock()
	room, ok := m.rooms[c.UserID]
	_, present := room[c]
	if ok && present {
		delete(room, c)
		if len(room) == 0 {
			delete(m.rooms, c.UserID)
		}
	}
	m.mu.Unlock()

	if !present {
		return
	}
	_ = c.conn.Close()
	metrics.RealtimeConnections.Dec()
	m.log.Debug("ws disconnected", zap.Uint("user", c.UserID), zap.String("conn", c.ID))
}

// Online reports whether the user has at least one live connection.
func (m *Manager) Online(userID uint) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms[userID]) > 0
}

func (m *Manager) snapshot(userID uint) []*Connection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room := m.rooms[userID]
	out := make([]*Connection, 0, len(room))
	for c := range room {
		out = append(out, c)
	}
	return out
}

// Emit sends event to every connection of the user and reports whether any
// write succeeded. Broken connections are removed.
func (m *Manager) Emit(userID uint, event string, payload any) bool {
	delivered := false
	for _, c := range m.snapshot(userID) {
		if err := c.write(Frame{Event: event, Data: payload}); err != nil {
			m.log.Warn("ws send failed", zap.Uint("user", userID), zap.String("event", event), zap.Error(err))
			m.Remove(c)
			continue
		}
		delivered = true
	}
	return delivered
}

// Heartbeat pings every connection each interval and drops those silent
// for more than two intervals. It returns when ctx is done.
func (m *Manager) Heartbeat(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		m.mu.RLock()
		var all []*Connection
		for _, room := range m.rooms {
			for c := range room {
				all = append(all, c)
			}
		}
		m.mu.RUnlock()

		for _, c := range all {
			if c.idle() > 2*interval {
				m.Remove(c)
				continue
			}
			if err := c.ping(); err != nil {
				m.Remove(c)
			}
		}
	}
}

// CloseAll disconnects everyone, used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.RLock()
	var all []*Connection
	for _, room := range m.rooms {
		for c := range room {
			all = append(all, c)
		}
	}
	m.mu.RUnlock()
	for _, c := range all {
		m.Remove(c)
	}
}
