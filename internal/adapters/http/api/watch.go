package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/okian/pmwiki/internal/domain/compare"
	"github.com/okian/pmwiki/pkg/logger"
	"github.com/okian/pmwiki/pkg/metrics"
)

// WatchHandler streams compare selection snapshots over a websocket.
type WatchHandler struct {
	sessions     *Sessions
	upgrader     websocket.Upgrader
	logger       logger.Logger
	writeTimeout time.Duration
	pingInterval time.Duration
}

// NewWatchHandler creates a new watch handler.
func NewWatchHandler(sessions *Sessions, l logger.Logger, writeTimeout, pingInterval time.Duration) *WatchHandler {
	return &WatchHandler{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:       l,
		writeTimeout: writeTimeout,
		pingInterval: pingInterval,
	}
}

// HandleWatch handles GET /api/compare/watch. The current selection is sent
// on connect and again after every change, until the client disconnects
// or the session ends.
func (h *WatchHandler) HandleWatch(w http.ResponseWriter, r *http.Request) {
	set, cookie := h.sessions.acquire(r)
	var header http.Header
	if cookie != nil {
		header = http.Header{"Set-Cookie": {cookie.String()}}
	}
	conn, err := h.upgrader.Upgrade(w, r, header)
	if err != nil {
		// Upgrade has already answered the request.
		h.logger.Debug(r.Context(), "compare watch upgrade failed", logger.Error(err))
		return
	}
	defer conn.Close()

	metrics.AddCompareWatchers(1)
	defer metrics.AddCompareWatchers(-1)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The client sends nothing; reading surfaces its close frame.
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.stream(ctx, conn, set.Subscribe(ctx))

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(h.writeTimeout))
	_ = conn.Close()
	<-readDone
}

func (h *WatchHandler) stream(ctx context.Context, conn *websocket.Conn, updates <-chan compare.Snapshot) {
	ping := time.NewTicker(h.pingInterval)
	defer ping.Stop()

	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := conn.WriteJSON(snap); err != nil {
				h.logger.Debug(ctx, "compare watch write failed", logger.Error(err))
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
