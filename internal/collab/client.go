package collab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 64 * 1024
	sendBuffer = 256
)

// Client is one websocket connection viewing one plot.
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	UserID      string
	DisplayName string
	PlotID      string
	ClientID    string

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, userID, displayName, plotID, clientID string) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		UserID:      userID,
		DisplayName: displayName,
		PlotID:      plotID,
		ClientID:    clientID,
	}
}

func (c *Client) log() *slog.Logger {
	return slog.With("plot", c.PlotID, "client", c.ClientID, "user", c.UserID)
}

// ReadPump decodes inbound frames and hands them to the hub until the
// connection closes. Identity fields are always overwritten from the
// connection, never trusted from the payload.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMsgSize)

	for {
		msg, err := c.readMessage(ctx)
		if errors.Is(err, errBadFrame) {
			c.log().Warn("invalid message", "error", err)
			continue
		}
		if err != nil {
			if !isNormalClose(err) {
				c.log().Debug("read error", "error", err)
			}
			return
		}
		c.hub.handleMessage(c, msg)
	}
}

var errBadFrame = errors.New("bad frame")

func (c *Client) readMessage(ctx context.Context) (*Message, error) {
	typ, data, err := c.conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	if typ != websocket.MessageText {
		return nil, fmt.Errorf("%w: binary frame", errBadFrame)
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadFrame, err)
	}
	msg.UserID = c.UserID
	msg.ClientID = c.ClientID
	msg.PlotID = c.PlotID
	return &msg, nil
}

func isNormalClose(err error) bool {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return errors.Is(err, context.Canceled)
}

// WritePump drains the send queue and keeps the connection alive with
// pings. It returns when the hub closes the queue or a write fails.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				c.conn.Close(websocket.StatusGoingAway, "plot closed")
				return
			}
			if err := c.write(ctx, data); err != nil {
				c.log().Debug("write error", "error", err)
				c.conn.Close(websocket.StatusInternalError, "")
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				c.conn.Close(websocket.StatusNormalClosure, "")
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) write(ctx context.Context, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return c.conn.Write(ctx, websocket.MessageText, data)
}

// Send queues msg for the write pump. Messages to a closed or saturated
// client are dropped.
func (c *Client) Send(msg *Message) {
	if msg == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		c.log().Error("marshal message", "type", msg.Type, "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.log().Warn("send buffer full, dropping message", "type", msg.Type)
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
