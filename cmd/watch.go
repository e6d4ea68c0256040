package main

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"skabillium/memo/cmd/db"
)

const (
	watchWriteWait  = 10 * time.Second
	watchPongWait   = 60 * time.Second
	watchPingPeriod = 30 * time.Second
	watchBuffer     = 64
)

// Event describes a change made to a diary.
type Event struct {
	Type  string    `json:"type"`
	Diary string    `json:"diary"`
	Entry *db.Entry `json:"entry,omitempty"`
	Count int       `json:"count,omitempty"`
	Time  time.Time `json:"time"`
}

type watcher struct {
	hub   *Hub
	conn  *websocket.Conn
	diary string
	send  chan Event
}

// Hub fans diary events out to the websocket clients watching each diary.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[*watcher]bool
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{rooms: make(map[string]map[*watcher]bool), logger: logger.With("component", "watch")}
}

func (h *Hub) register(w *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[w.diary]; !ok {
		h.rooms[w.diary] = make(map[*watcher]bool)
	}
	h.rooms[w.diary][w] = true
}

// unregister removes a watcher and closes its send channel, at most once.
func (h *Hub) unregister(w *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[w.diary][w]; !ok {
		return
	}
	delete(h.rooms[w.diary], w)
	if len(h.rooms[w.diary]) == 0 {
		delete(h.rooms, w.diary)
	}
	close(w.send)
}

// Publish sends an event to the watchers of its diary. Watchers that cannot
// keep up are dropped. It is a no-op on a nil Hub.
func (h *Hub) Publish(event Event) {
	if h == nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for w := range h.rooms[event.Diary] {
		select {
		case w.send <- event:
		default:
			h.logger.Warn("dropping slow watcher", "diary", event.Diary)
			go h.unregister(w)
		}
	}
}

// Watchers returns the number of clients watching a diary.
func (h *Hub) Watchers(diary string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[diary])
}

// Close disconnects every watcher.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for diary, room := range h.rooms {
		for w := range room {
			close(w.send)
		}
		delete(h.rooms, diary)
	}
}

// Handler upgrades the request and streams the events of a diary until the
// client goes away.
func (h *Hub) Handler(upgrader websocket.Upgrader, diary func(*http.Request) string) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		w := &watcher{hub: h, diary: diary(req), send: make(chan Event, watchBuffer)}

		// Registered before the handshake completes so no event is missed
		// by a client that starts writing right after dialing.
		h.register(w)
		conn, err := upgrader.Upgrade(rw, req, nil)
		if err != nil {
			h.unregister(w)
			h.logger.Debug("upgrade failed", "err", err)
			return
		}
		w.conn = conn

		go w.writePump()
		w.readPump()
	}
}

func (w *watcher) writePump() {
	ticker := time.NewTicker(watchPingPeriod)
	defer func() {
		ticker.Stop()
		w.conn.Close()
	}()

	for {
		select {
		case event, ok := <-w.send:
			w.conn.SetWriteDeadline(time.Now().Add(watchWriteWait))
			if !ok {
				w.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "server shutdown"))
				return
			}
			if err := w.conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			w.conn.SetWriteDeadline(time.Now().Add(watchWriteWait))
			if err := w.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client messages; it only keeps the read deadline alive
// and notices when the client disconnects.
func (w *watcher) readPump() {
	defer func() {
		w.hub.unregister(w)
		w.conn.Close()
	}()

	w.conn.SetReadLimit(512)
	w.conn.SetReadDeadline(time.Now().Add(watchPongWait))
	w.conn.SetPongHandler(func(string) error {
		w.conn.SetReadDeadline(time.Now().Add(watchPongWait))
		return nil
	})

	for {
		if _, _, err := w.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				w.hub.logger.Debug("watcher closed", "diary", w.diary, "err", err)
			}
			return
		}
	}
}

// diaryEvent builds the event for a successful diary mutation.
func diaryEvent(cmd *Command, reply any) (Event, bool) {
	event := Event{Type: cmd.Name, Diary: cmd.Key, Time: time.Now().UTC()}
	switch cmd.Kind {
	case CmdDiaryLPush, CmdDiaryRPush, CmdDiaryLPop, CmdDiaryRPop:
		if entry, ok := reply.(db.Entry); ok {
			event.Entry = &entry
		}
	case CmdDiarySeed:
		event.Count, _ = reply.(int)
	case CmdDiaryReset:
	default:
		return event, false
	}
	return event, true
}
