package collab

import (
	"encoding/json"

	"github.com/plotline/plotline/internal/document"
	"github.com/plotline/plotline/internal/engine"
)

type Message struct {
	Type     string          `json:"type"`
	PlotID   string          `json:"plotId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	UserID   string          `json:"userId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}

type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"`
	GraphID     string     `json:"graphId,omitempty"` // graph under the cursor
	DisplayName string     `json:"displayName,omitempty"`
}

// CursorPos is a pane position. DomainX and DomainY are filled in by the
// server from the plot's current viewport.
type CursorPos struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	DomainX float64 `json:"domainX"`
	DomainY float64 `json:"domainY"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	UserID string `json:"userId"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeError          = "error"

	// Connection
	TypeWelcome = "welcome"

	// Document sync
	TypeDocSync = "doc.sync"
	TypeRender  = "render"

	// Operation message types
	TypeOpSubmit    = "op.submit"
	TypeOpAck       = "op.ack"
	TypeOpNack      = "op.nack"
	TypeOpBroadcast = "op.broadcast"
)

// Operation types.
const (
	OpGraphAdd        = "graph.add"
	OpGraphRemove     = "graph.remove"
	OpGraphExpression = "graph.expression"
	OpGraphVisibility = "graph.visibility"
	OpViewportSet     = "viewport.set"
	OpViewportPan     = "viewport.pan"
	OpViewportZoom    = "viewport.zoom"
)

// Operation is a plot mutation. Which fields are read depends on Type.
type Operation struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	ClientSeq int64  `json:"clientSeq"`

	// graph.*; set by the server for graph.add
	GraphID string `json:"graphId,omitempty"`

	// graph.add (optional) and graph.expression
	Expression string `json:"expression,omitempty"`

	// graph.visibility
	Visible *bool `json:"visible,omitempty"`

	// viewport.set
	Viewport *engine.Viewport `json:"viewport,omitempty"`

	// viewport.pan
	DX float64 `json:"dx,omitempty"`
	DY float64 `json:"dy,omitempty"`

	// viewport.zoom
	Factor  float64 `json:"factor,omitempty"`
	AnchorX float64 `json:"anchorX,omitempty"`
	AnchorY float64 `json:"anchorY,omitempty"`
}

// OperationSubmitPayload is the payload for op.submit messages
type OperationSubmitPayload struct {
	Operation Operation `json:"operation"`
}

// OperationAckPayload is the payload for op.ack messages
type OperationAckPayload struct {
	OperationID     string `json:"operationId"`
	GraphID         string `json:"graphId,omitempty"`
	ServerSeq       int64  `json:"serverSeq"`
	ServerTimestamp int64  `json:"serverTimestamp"`
}

// OperationNackPayload is the payload for op.nack messages. Kind is the
// error category when the engine refused the input.
type OperationNackPayload struct {
	OperationID string `json:"operationId"`
	Reason      string `json:"reason"`
	Kind        string `json:"kind,omitempty"`
}

// OperationBroadcastPayload is the payload for op.broadcast messages
type OperationBroadcastPayload struct {
	Operation Operation `json:"operation"`
	UserID    string    `json:"userId"`
	ServerSeq int64     `json:"serverSeq"`
}

type WelcomePayload struct {
	ClientID string                 `json:"clientId"`
	UserID   string                 `json:"userId"`
	Plot     *document.PlotDocument `json:"plot"`
}

type DocSyncPayload struct {
	Plot *document.PlotDocument `json:"plot"`
}

type RenderPayload struct {
	Commands []engine.DrawCommand `json:"commands"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

func newMessage(typ, plotID string, payload interface{}) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{Type: typ, PlotID: plotID, Payload: data}, nil
}
