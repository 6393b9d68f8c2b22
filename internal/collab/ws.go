package collab

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/plotline/plotline/internal/auth"
)

// ServeWS upgrades /ws/plot/{plotId}?token=... requests. The token is the
// same bearer token the REST API takes; browsers cannot set headers on a
// websocket handshake.
func ServeWS(hub *Hub, authSvc *auth.Service, allowedOrigins []string) http.HandlerFunc {
	patterns := originPatterns(allowedOrigins)

	return func(w http.ResponseWriter, r *http.Request) {
		plotID := mux.Vars(r)["plotId"]

		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		userID, err := authSvc.ValidateToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		user, err := authSvc.GetUser(r.Context(), userID)
		if err != nil {
			http.Error(w, "user not found", http.StatusUnauthorized)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: patterns,
		})
		if err != nil {
			slog.Error("websocket accept", "error", err)
			return
		}

		client := NewClient(hub, conn, user.ID, user.DisplayName, plotID, uuid.New().String())
		hub.Register(client)

		ctx := r.Context()
		go client.WritePump(ctx)
		client.ReadPump(ctx)
	}
}

// originPatterns strips the scheme from configured origins, which is the
// form websocket.AcceptOptions matches against.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
			continue
		}
		patterns = append(patterns, o)
	}
	return patterns
}
