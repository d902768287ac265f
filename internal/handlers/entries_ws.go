package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/AnshRaj112/serenify-journal/internal/services"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 90 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsReadLimit  = 4 * 1024
)

// EntrySubscriber streams a user's entry-change events.
type EntrySubscriber interface {
	Subscribe(ctx context.Context, userID string) (<-chan services.EntryEvent, error)
}

// socketMessage is what clients may send; only pings are understood.
type socketMessage struct {
	Type string `json:"type"`
}

type EntriesSocket struct {
	events   EntrySubscriber
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewEntriesSocket serves /ws/entries. Browser connections must come from
// one of allowedOrigins.
func NewEntriesSocket(events EntrySubscriber, allowedOrigins []string, log *zap.Logger) *EntriesSocket {
	return &EntriesSocket{
		events: events,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, o := range allowedOrigins {
					if strings.EqualFold(strings.TrimSpace(o), origin) {
						return true
					}
				}
				return false
			},
		},
		log: log,
	}
}

// ServeHTTP pushes an entries.changed event to the client whenever one of
// the user's entries is written, so open dashboards refetch their lists.
func (s *EntriesSocket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	events, err := s.events.Subscribe(ctx, uid)
	if err != nil {
		respondError(w, s.log, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return
	}
	defer conn.Close()

	pongs := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.writeLoop(ctx, conn, events, pongs)
	}()

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		var msg socketMessage
		if json.Unmarshal(data, &msg) == nil && msg.Type == "ping" {
			select {
			case pongs <- struct{}{}:
			default:
			}
		}
	}

	cancel()
	<-done
}

// writeLoop owns all writes to conn.
func (s *EntriesSocket) writeLoop(ctx context.Context, conn *websocket.Conn, events <-chan services.EntryEvent, pongs <-chan struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	write := func(v any) error {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(v)
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(wsWriteWait))
			return
		case ev, ok := <-events:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "event stream ended"),
					time.Now().Add(wsWriteWait))
				conn.Close()
				return
			}
			if err := write(ev); err != nil {
				conn.Close()
				return
			}
		case <-pongs:
			if err := write(socketMessage{Type: "pong"}); err != nil {
				conn.Close()
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				conn.Close()
				return
			}
		}
	}
}
