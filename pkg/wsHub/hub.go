package ws

import (
	"context"
	"errors"
	"sync"

	"github.com/Temutjin2k/fleet-ops-system/pkg/logger"
	wrap "github.com/Temutjin2k/fleet-ops-system/pkg/logger/wrapper"
)

var (
	ErrEmptyConn      = errors.New("connection is empty")
	ErrConnIsNotFound = errors.New("connection not found")
)

// ConnectionHub stores and manages active statistics-watch websocket
// connections. Each connection belongs to one company; a company may have
// any number of watchers.
type ConnectionHub struct {
	clients map[string]*Conn
	l       logger.Logger
	mu      sync.Mutex
	wg      sync.WaitGroup
}

func NewConnHub(l logger.Logger) *ConnectionHub {
	return &ConnectionHub{
		clients: make(map[string]*Conn),
		l:       l,
	}
}

// Add registers a new connection. An existing connection with the same
// watcher id is closed first.
func (h *ConnectionHub) Add(newConn *Conn) error {
	if newConn == nil {
		return ErrEmptyConn
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := wrap.WithAction(context.Background(), "add_ws_connection")

	if existing, ok := h.clients[newConn.watcherID]; ok {
		h.l.Warn(ctx,
			"replacing existing connection",
			"watcher_id", existing.watcherID,
		)
		if err := existing.Close(); err != nil {
			h.l.Warn(ctx,
				"failed to close existing conn",
				"watcher_id", existing.watcherID,
				"err", err.Error(),
			)
		}
	}

	h.clients[newConn.watcherID] = newConn
	h.wg.Add(1)

	return nil
}

// Delete removes and closes the connection with the given watcher id.
func (h *ConnectionHub) Delete(watcherID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := wrap.WithAction(context.Background(), "ws_connection_delete")

	conn, ok := h.clients[watcherID]
	if !ok {
		h.l.Warn(ctx,
			"delete called for unknown watcher",
			"watcher_id", watcherID,
		)
		return ErrConnIsNotFound
	}

	if err := conn.Close(); err != nil {
		h.l.Warn(ctx,
			"failed to close conn",
			"watcher_id", conn.watcherID,
			"err", err.Error(),
		)
	}

	delete(h.clients, watcherID)
	h.wg.Done()

	return nil
}

// BroadcastCompany sends a message to every watcher of the given company.
// Dead connections are collected and removed after the send pass.
func (h *ConnectionHub) BroadcastCompany(companyID string, msg any) {
	h.mu.Lock()
	conns := make([]*Conn, 0, len(h.clients))
	for _, conn := range h.clients {
		if conn.companyID == companyID {
			conns = append(conns, conn)
		}
	}
	h.mu.Unlock()

	ctx := wrap.WithAction(context.Background(), "ws_broadcast_company")

	for _, conn := range conns {
		if err := conn.Send(msg); err != nil {
			h.l.Warn(ctx,
				"failed to push statistics, dropping watcher",
				"watcher_id", conn.watcherID,
				"err", err.Error(),
			)
			_ = h.Delete(conn.watcherID)
		}
	}
}

// Close closes every websocket connection.
func (h *ConnectionHub) Close() {
	ctx := wrap.WithAction(context.Background(), "hub_close")

	// copy clients under the lock, close outside of it
	h.mu.Lock()
	clients := make([]*Conn, 0, len(h.clients))
	for _, conn := range h.clients {
		clients = append(clients, conn)
	}
	h.mu.Unlock()

	for _, conn := range clients {
		_ = h.Delete(conn.watcherID)
	}

	h.wg.Wait()

	h.l.Info(ctx, "all websocket connections closed gracefully")
}

// GetConn returns the connection with the given watcher id.
func (h *ConnectionHub) GetConn(watcherID string) (*Conn, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.clients[watcherID]
	if !ok {
		return nil, ErrConnIsNotFound
	}
	return conn, nil
}
