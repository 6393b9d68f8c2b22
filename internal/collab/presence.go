package collab

import (
	"log/slog"
	"sync"
)

// PresenceManager tracks the last cursor of each connection in a room.
// It is keyed by client id, so one user with two tabs shows two cursors.
type PresenceManager struct {
	mu        sync.RWMutex
	presences map[string]*PresencePayload // clientID -> presence
}

func NewPresenceManager() *PresenceManager {
	return &PresenceManager{
		presences: make(map[string]*PresencePayload),
	}
}

func (pm *PresenceManager) Update(clientID string, p *PresencePayload) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.presences[clientID] = p
}

func (pm *PresenceManager) Remove(clientID string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	delete(pm.presences, clientID)
}

// Snapshot returns a copy of every presence.
func (pm *PresenceManager) Snapshot() map[string]*PresencePayload {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	result := make(map[string]*PresencePayload, len(pm.presences))
	for k, v := range pm.presences {
		cp := *v
		if v.Cursor != nil {
			cursor := *v.Cursor
			cp.Cursor = &cursor
		}
		result[k] = &cp
	}
	return result
}

func (pm *PresenceManager) StateMessage(plotID string) *Message {
	msg, err := newMessage(TypePresenceState, plotID, PresenceStatePayload{Presences: pm.Snapshot()})
	if err != nil {
		slog.Error("marshal presence state", "error", err)
		return nil
	}
	return msg
}
