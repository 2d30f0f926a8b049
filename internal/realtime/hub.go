package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/xid"

	"github.com/sakif/devhub/internal/model"
)

// UnreadLister is the slice of the notification service the hub needs for
// replay-on-connect. Defined here so realtime does not import service.
type UnreadLister interface {
	ListUnread(ctx context.Context, userID string) ([]model.Notification, error)
}

// envelope is the wire frame for every server→client and client→server
// message on the socket.
//
// Client → server:  {"event":"authenticate","userId":"..."}
// Server → client:  {"event":"notification","data":{...Notification...}}
type envelope struct {
	Event  string          `json:"event"`
	UserID string          `json:"userId,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// session is one connected WebSocket client. Writes are serialized with a
// per-session mutex because gorilla/websocket allows only one concurrent
// writer per connection.
type session struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *session) send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(envelope{Event: event, Data: payload})
}

// Hub upgrades HTTP requests to WebSocket sessions, tracks them by session
// id, and delivers notifications to specific sessions on behalf of the
// dispatcher.
//
// LIFECYCLE OF A CONNECTION:
//  1. Client connects to /ws — the hub upgrades and assigns a session id.
//     The session is tracked but NOT present: nobody can be pushed to yet.
//  2. Client sends {"event":"authenticate","userId":...}. The hub registers
//     presence and replays the user's unread notifications (so a client that
//     reconnects after downtime catches up without a separate poll).
//  3. Any read error (including normal close) unregisters presence and
//     drops the session.
type Hub struct {
	upgrader websocket.Upgrader
	presence *Presence
	unread   UnreadLister
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

func NewHub(presence *Presence, unread UnreadLister, logger *slog.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The browser client runs on a different origin in development.
			// Auth happens at the message level (authenticate event), not at
			// upgrade time, mirroring how the polling API treats each request.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		presence: presence,
		unread:   unread,
		logger:   logger,
		sessions: make(map[string]*session),
	}
}

// ServeWS is the HTTP handler for the /ws endpoint. It blocks on the read
// loop for the lifetime of the connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error response.
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	sess := &session{id: xid.New().String(), conn: conn}
	h.mu.Lock()
	h.sessions[sess.id] = sess
	h.mu.Unlock()

	h.logger.Info("client connected", slog.String("sessionID", sess.id))
	h.readLoop(r.Context(), sess)
}

// readLoop consumes client events until the connection dies, then cleans up.
func (h *Hub) readLoop(ctx context.Context, sess *session) {
	defer func() {
		h.presence.Unregister(sess.id)
		h.mu.Lock()
		delete(h.sessions, sess.id)
		h.mu.Unlock()
		sess.conn.Close()
		h.logger.Info("client disconnected", slog.String("sessionID", sess.id))
	}()

	for {
		var ev envelope
		if err := sess.conn.ReadJSON(&ev); err != nil {
			return
		}

		switch ev.Event {
		case "authenticate":
			if ev.UserID == "" {
				continue
			}
			h.presence.Register(ev.UserID, sess.id)
			h.logger.Info("user authenticated on socket",
				slog.String("userID", ev.UserID),
				slog.String("sessionID", sess.id),
			)
			h.replayUnread(ctx, sess, ev.UserID)
		default:
			// Unknown events are ignored rather than fatal — an older or
			// newer client should not get disconnected for speaking a
			// slightly different dialect.
			h.logger.Debug("ignoring unknown socket event", slog.String("event", ev.Event))
		}
	}
}

// replayUnread pushes the user's stored unread notifications down the fresh
// session, newest first. Best-effort: a send failure here just means the
// client will fall back to polling.
func (h *Hub) replayUnread(ctx context.Context, sess *session, userID string) {
	unread, err := h.unread.ListUnread(ctx, userID)
	if err != nil {
		h.logger.Error("listing unread for replay",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return
	}

	for i := range unread {
		if err := sess.send("notification", &unread[i]); err != nil {
			h.logger.Warn("unread replay push failed",
				slog.String("userID", userID),
				slog.String("error", err.Error()),
			)
			return
		}
	}
}

// Push delivers a notification to one session. Returns an error when the
// session is gone or the write fails; the dispatcher treats any error as
// "recipient will poll instead".
func (h *Hub) Push(sessionID string, n *model.Notification) error {
	h.mu.Lock()
	sess, ok := h.sessions[sessionID]
	h.mu.Unlock()
	if !ok {
		return errSessionGone
	}
	return sess.send("notification", n)
}
