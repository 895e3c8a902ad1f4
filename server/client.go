package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096
)

// client is one websocket connection. The hub owns send; writePump is the
// only writer on conn.
type client struct {
	id      uuid.UUID
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter
	log     *slog.Logger
}

func (s *Server) newClient(conn *websocket.Conn) *client {
	id := uuid.New()
	return &client{
		id:      id,
		conn:    conn,
		send:    make(chan []byte, s.hub.sendBuf),
		limiter: rate.NewLimiter(s.opts.ActionRate, s.opts.ActionBurst),
		log:     s.log.With(slog.String("client", id.String())),
	}
}

// writePump drains send until the hub closes it.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Debug("write failed", slog.Any("error", err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump decodes actions until the peer goes away.
func (s *Server) readPump(ctx context.Context, c *client) {
	defer s.hub.remove(c)
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("read failed", slog.Any("error", err))
			}
			return
		}
		if !c.limiter.Allow() {
			s.hub.metrics.Actions.WithLabelValues("", "limited").Inc()
			s.hub.send(c, Event{Type: EventError, Message: "rate limited"})
			continue
		}
		var a Action
		if err := json.Unmarshal(data, &a); err != nil {
			s.hub.send(c, Event{Type: EventError, Message: "malformed action: " + err.Error()})
			continue
		}
		if _, err := s.apply(ctx, a); err != nil {
			s.hub.send(c, Event{Type: EventError, Message: err.Error()})
		}
	}
}
