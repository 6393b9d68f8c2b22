package collab

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/plotline/plotline/internal/document"
	"github.com/plotline/plotline/internal/engine"
	"github.com/plotline/plotline/internal/plot"
)

type Room struct {
	plotID    string
	clients   map[string]*Client // clientID -> client
	presence  *PresenceManager
	serverSeq atomic.Int64
}

func NewRoom(plotID string) *Room {
	return &Room{
		plotID:   plotID,
		clients:  make(map[string]*Client),
		presence: NewPresenceManager(),
	}
}

// Hub fans plot changes out to every client viewing the same plot. Plot
// state itself lives in the plot service; rooms only track connections.
type Hub struct {
	service *plot.Service

	mu         sync.RWMutex
	rooms      map[string]*Room // plotID -> room
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
}

func NewHub(service *plot.Service) *Hub {
	return &Hub{
		service:    service,
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.done:
			h.closeAll()
			return
		}
	}
}

// Stop ends Run and closes every client's send queue.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.PlotID]
	if !ok {
		room = NewRoom(client.PlotID)
		h.rooms[client.PlotID] = room
	}
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	// Current plot first, then who else is here
	doc, err := h.service.Get(context.Background(), client.PlotID)
	if err != nil {
		slog.Error("load plot for client", "error", err, "plot", client.PlotID)
		h.sendError(client, "plot unavailable")
	} else if msg, err := newMessage(TypeWelcome, client.PlotID, WelcomePayload{
		ClientID: client.ClientID,
		UserID:   client.UserID,
		Plot:     doc,
	}); err == nil {
		client.Send(msg)
		h.sendRender(client.PlotID, client)
	}

	if stateMsg := room.presence.StateMessage(client.PlotID); stateMsg != nil {
		client.Send(stateMsg)
	}

	joinPayload, _ := json.Marshal(PresenceJoinPayload{
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
	})
	joinMsg := &Message{
		Type:    TypePresenceJoin,
		PlotID:  client.PlotID,
		UserID:  client.UserID,
		Payload: joinPayload,
	}
	h.broadcastToRoom(client.PlotID, joinMsg, client.ClientID)

	slog.Info("client joined", "user", client.UserID, "plot", client.PlotID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.PlotID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, ok := room.clients[client.ClientID]; !ok {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	client.closeSend()
	room.presence.Remove(client.ClientID)

	if len(room.clients) == 0 {
		delete(h.rooms, client.PlotID)
	}
	h.mu.Unlock()

	leavePayload, _ := json.Marshal(PresenceLeavePayload{
		UserID: client.UserID,
	})
	leaveMsg := &Message{
		Type:     TypePresenceLeave,
		PlotID:   client.PlotID,
		ClientID: client.ClientID,
		UserID:   client.UserID,
		Payload:  leavePayload,
	}
	h.broadcastToRoom(client.PlotID, leaveMsg, "")

	slog.Info("client left", "user", client.UserID, "plot", client.PlotID)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, room := range h.rooms {
		for _, c := range room.clients {
			c.closeSend()
		}
		delete(h.rooms, id)
	}
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	case TypeOpSubmit:
		h.handleOpSubmit(sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
	}
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	presence.DisplayName = sender.DisplayName
	if presence.Cursor != nil {
		err := h.service.View(context.Background(), sender.PlotID, func(sess *plot.Session) error {
			p := sess.Plot()
			presence.Cursor.DomainX, presence.Cursor.DomainY = p.DeviceToDomain(presence.Cursor.X, presence.Cursor.Y)
			presence.GraphID = p.HitTest(presence.Cursor.X, presence.Cursor.Y, engine.DefaultHitTolerance)
			return nil
		})
		if err != nil {
			slog.Warn("presence on missing plot", "error", err, "plot", sender.PlotID)
			return
		}
	}

	h.mu.RLock()
	room, ok := h.rooms[sender.PlotID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	room.presence.Update(sender.ClientID, &presence)

	outPayload, _ := json.Marshal(presence)
	outMsg := &Message{
		Type:     TypePresenceUpdate,
		PlotID:   sender.PlotID,
		ClientID: sender.ClientID,
		UserID:   sender.UserID,
		Payload:  outPayload,
	}
	h.broadcastToRoom(sender.PlotID, outMsg, sender.ClientID)
}

// handleOpSubmit applies an operation under the plot's session lock. The
// sender gets an ack or a nack; on success everyone else gets the operation
// and everyone gets the new draw commands. A rejected operation may still
// have changed the plot (a failed expression is recorded, a pan moves the
// pane even when one graph cannot follow), so a rejection syncs the whole
// room to the authoritative document.
func (h *Hub) handleOpSubmit(sender *Client, msg *Message) {
	var submit OperationSubmitPayload
	if err := json.Unmarshal(msg.Payload, &submit); err != nil {
		slog.Warn("invalid op payload", "error", err, "user", sender.UserID)
		return
	}
	op := submit.Operation

	err := h.service.Update(context.Background(), sender.PlotID, func(sess *plot.Session) error {
		return ApplyOperation(sess.Plot(), &op)
	})
	if err != nil {
		if errors.Is(err, plot.ErrNotFound) {
			h.sendError(sender, "plot not found")
			return
		}
		nack, _ := newMessage(TypeOpNack, sender.PlotID, OperationNackPayload{
			OperationID: op.ID,
			Reason:      err.Error(),
			Kind:        document.ErrorKind(err),
		})
		sender.Send(nack)
		if !errors.Is(err, ErrInvalidOperation) {
			h.PlotChanged(sender.PlotID)
		}
		return
	}

	h.mu.RLock()
	room, ok := h.rooms[sender.PlotID]
	h.mu.RUnlock()
	var seq int64
	if ok {
		seq = room.serverSeq.Add(1)
	}

	ack, _ := newMessage(TypeOpAck, sender.PlotID, OperationAckPayload{
		OperationID:     op.ID,
		GraphID:         op.GraphID,
		ServerSeq:       seq,
		ServerTimestamp: GetServerTimestamp(),
	})
	sender.Send(ack)

	bcast, _ := newMessage(TypeOpBroadcast, sender.PlotID, OperationBroadcastPayload{
		Operation: op,
		UserID:    sender.UserID,
		ServerSeq: seq,
	})
	bcast.Seq = seq
	h.broadcastToRoom(sender.PlotID, bcast, sender.ClientID)

	h.sendRender(sender.PlotID, nil)
}

// PlotChanged pushes the current document and draw commands to every
// viewer of plotID. It is called after changes made outside the websocket.
func (h *Hub) PlotChanged(plotID string) {
	h.mu.RLock()
	_, ok := h.rooms[plotID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	doc, err := h.service.Get(context.Background(), plotID)
	if err != nil {
		if errors.Is(err, plot.ErrNotFound) {
			msg, _ := newMessage(TypeError, plotID, ErrorPayload{Error: "plot deleted"})
			h.broadcastToRoom(plotID, msg, "")
			return
		}
		slog.Error("sync plot", "error", err, "plot", plotID)
		return
	}
	msg, err := newMessage(TypeDocSync, plotID, DocSyncPayload{Plot: doc})
	if err != nil {
		slog.Error("marshal doc.sync", "error", err)
		return
	}
	h.broadcastToRoom(plotID, msg, "")
	h.sendRender(plotID, nil)
}

// sendRender sends draw commands to one client, or the whole room when
// to is nil.
func (h *Hub) sendRender(plotID string, to *Client) {
	cmds, err := h.service.Render(context.Background(), plotID)
	if err != nil {
		slog.Error("render plot", "error", err, "plot", plotID)
		return
	}
	msg, err := newMessage(TypeRender, plotID, RenderPayload{Commands: cmds})
	if err != nil {
		slog.Error("marshal render", "error", err)
		return
	}
	if to != nil {
		to.Send(msg)
		return
	}
	h.broadcastToRoom(plotID, msg, "")
}

func (h *Hub) sendError(client *Client, text string) {
	msg, _ := newMessage(TypeError, client.PlotID, ErrorPayload{Error: text})
	client.Send(msg)
}

func (h *Hub) broadcastToRoom(plotID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[plotID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}
