// Package ws streams notifications and countdown frames to websocket
// subscribers of a platform channel.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/domain"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = (pongWait * 9) / 10
	sendBuffer  = 64
	readLimit   = 512
	channelPath = "channel"
)

type client struct {
	conn    *websocket.Conn
	channel string
	send    chan []byte
	once    sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// Hub keeps the subscribers of each channel.
type Hub struct {
	upgrader websocket.Upgrader
	log      zerolog.Logger

	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log:   log.With().Str("component", "ws").Logger(),
		rooms: make(map[string]map[*client]struct{}),
	}
}

// Serve handles GET /v1/ws/countdowns/:channel.
func (h *Hub) Serve(c echo.Context) error {
	channel := c.Param(channelPath)
	if channel == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "channel is required")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Warn().Err(err).Str("channel", channel).Msg("websocket upgrade failed")
		return nil
	}

	cl := &client{conn: conn, channel: channel, send: make(chan []byte, sendBuffer)}
	h.join(cl)

	go h.writePump(cl)
	go h.readPump(cl)
	return nil
}

// Subscribers reports how many connections listen on channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[channel])
}

func (h *Hub) Notify(_ context.Context, n domain.Notification) error {
	return h.broadcast(n.Channel, domain.Envelope{Type: domain.EnvelopeNotification, Notification: &n})
}

func (h *Hub) Display(_ context.Context, f domain.CountdownFrame) error {
	return h.broadcast(f.Channel, domain.Envelope{Type: domain.EnvelopeFrame, Frame: &f})
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for channel, room := range h.rooms {
		for cl := range room {
			cl.close()
		}
		delete(h.rooms, channel)
	}
}

func (h *Hub) broadcast(channel string, e domain.Envelope) error {
	h.mu.RLock()
	room := h.rooms[channel]
	if len(room) == 0 {
		h.mu.RUnlock()
		return nil
	}
	payload, err := json.Marshal(e)
	if err != nil {
		h.mu.RUnlock()
		return err
	}

	var slow []*client
	for cl := range room {
		select {
		case cl.send <- payload:
		default:
			slow = append(slow, cl)
		}
	}
	h.mu.RUnlock()

	for _, cl := range slow {
		h.log.Debug().Str("channel", channel).Msg("dropping slow websocket subscriber")
		h.leave(cl)
	}
	return nil
}

func (h *Hub) join(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[cl.channel]
	if room == nil {
		room = make(map[*client]struct{})
		h.rooms[cl.channel] = room
	}
	room[cl] = struct{}{}
}

func (h *Hub) leave(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room := h.rooms[cl.channel]; room != nil {
		if _, ok := room[cl]; ok {
			delete(room, cl)
			cl.close()
		}
		if len(room) == 0 {
			delete(h.rooms, cl.channel)
		}
	}
}

func (h *Hub) readPump(cl *client) {
	defer func() {
		h.leave(cl)
		_ = cl.conn.Close()
	}()

	cl.conn.SetReadLimit(readLimit)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = cl.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
