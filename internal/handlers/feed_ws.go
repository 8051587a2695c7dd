package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Senjuv/healt-tracker/internal/feed"
	"github.com/Senjuv/healt-tracker/internal/models"
)

// sessionRecheckInterval bounds how long a feed subscription can outlive its
// session once the session expires or is invalidated.
const sessionRecheckInterval = time.Minute

var feedUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// CORS for WebSocket is handled at the HTTP layer already.
		return true
	},
}

// FeedWebSocket streams live snapshots of one record collection to the
// authenticated user. The subscription exists only while all preconditions
// hold: the stores are up, the session token resolves to a live session, and
// the collection is one of ours. Closing the socket tears it down.
func (h *Handler) FeedWebSocket(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		// Browser WebSocket clients can't set headers; allow query param
		token = r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing session token", http.StatusUnauthorized)
			return
		}
	}

	userID, ok, err := h.Sessions.Validate(r.Context(), token)
	if err != nil || !ok {
		http.Error(w, "invalid session token", http.StatusUnauthorized)
		return
	}

	collection := r.URL.Query().Get("collection")
	switch collection {
	case models.WeightsCollection, models.NutritionCollection, models.SkinCollection:
	default:
		http.Error(w, "unknown collection", http.StatusBadRequest)
		return
	}

	conn, err := feedUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	// Reader goroutine: we ignore client messages but need the read loop to
	// notice a closed socket and cancel the subscription.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// The subscription only exists while the session stays valid; re-check it
	// periodically and tear down if it expired or was invalidated.
	go watchSession(ctx, cancel, sessionRecheckInterval, func() bool {
		_, ok, err := h.Sessions.Validate(ctx, token)
		return err == nil && ok
	})

	h.Feed.Run(ctx, userID.String(), collection, func(event feed.Event) error {
		return conn.WriteJSON(event)
	})
}

// watchSession cancels the subscription once validate reports the session no
// longer holds. Returns when the context ends either way.
func watchSession(ctx context.Context, cancel context.CancelFunc, interval time.Duration, validate func() bool) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !validate() {
				cancel()
				return
			}
		}
	}
}
