package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type Conn struct {
	conn      *websocket.Conn
	watcherID string
	companyID string
	doneCtx   context.Context
	cancel    context.CancelFunc
	mu        sync.Mutex
}

func NewConn(ctx context.Context, watcherID, companyID string, conn *websocket.Conn) *Conn {
	ctx, cancel := context.WithCancel(ctx)

	return &Conn{
		conn:      conn,
		watcherID: watcherID,
		companyID: companyID,
		doneCtx:   ctx,
		cancel:    cancel,
	}
}

func (c *Conn) WatcherID() string {
	return c.watcherID
}

func (c *Conn) CompanyID() string {
	return c.companyID
}

// Health pings the peer to check the connection is still alive.
func (c *Conn) Health() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return errors.New("connection is nil")
	}

	select {
	case <-c.doneCtx.Done():
		return errors.New("connection context cancelled")
	default:
	}

	if err := c.conn.WriteControl(
		websocket.PingMessage,
		[]byte("ping"),
		time.Now().Add(3*time.Second),
	); err != nil {
		return err
	}

	return nil
}

// Send writes a JSON message to the peer. Writes are serialized by the
// connection mutex.
func (c *Conn) Send(msg any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return errors.New("connection is nil")
	}

	select {
	case <-c.doneCtx.Done():
		return errors.New("connection context cancelled")
	default:
	}

	return c.conn.WriteJSON(msg)
}

// Close cancels the connection context and closes the socket.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancel()

	if c.conn == nil {
		return nil
	}

	err := c.conn.Close()
	c.conn = nil
	return err
}
