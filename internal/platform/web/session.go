package web

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/namegame/internal/game"
	"github.com/vovakirdan/namegame/internal/profile"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxMessage = 4096

	loadTimeout = 10 * time.Second
)

// client is one browser connection driving its own engine.
type client struct {
	id     string
	conn   *websocket.Conn
	engine *game.Engine
	sub    *game.Subscription
	source profile.Source
	send   chan any
	logger *log.Logger
}

func newClient(id string, conn *websocket.Conn, engine *game.Engine, source profile.Source, logger *log.Logger) *client {
	return &client{
		id:     id,
		conn:   conn,
		engine: engine,
		sub:    engine.Subscribe(16),
		source: source,
		send:   make(chan any, 8),
		logger: logger,
	}
}

// readPump handles client requests until the connection drops, then
// closes the engine, which in turn ends writePump.
func (c *client) readPump(ctx context.Context) {
	defer func() {
		c.engine.Close()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessage)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("read failed", "error", err)
			}
			return
		}
		c.handle(ctx, msg)
	}
}

func (c *client) handle(ctx context.Context, msg ClientMessage) {
	switch msg.Type {
	case "start":
		mode, ok := game.ParseMode(msg.Mode)
		if !ok {
			c.sendError("unknown mode: " + msg.Mode)
			return
		}
		loadCtx, cancel := context.WithTimeout(ctx, loadTimeout)
		profiles, err := c.source.Profiles(loadCtx)
		cancel()
		if err != nil {
			c.logger.Warn("cannot load profiles", "error", err)
			c.sendError("could not load profiles")
			return
		}
		if err := c.engine.StartGame(mode, profiles); err != nil {
			c.sendError(err.Error())
		}

	case "select":
		p, ok := c.engine.State().Candidate(msg.ID)
		if !ok {
			c.sendError("not a candidate: " + msg.ID)
			return
		}
		c.engine.SelectProfile(p)

	case "reset":
		c.engine.ResetGame()

	default:
		// ignore unknown types
	}
}

func (c *client) sendError(message string) {
	select {
	case c.send <- newErrorMessage(message):
	default:
	}
}

// writePump is the only writer on the connection.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case st, ok := <-c.sub.States():
			if !ok {
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.write(newStateMessage(c.id, st)); err != nil {
				return
			}

		case msg := <-c.send:
			if err := c.write(msg); err != nil {
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

func (c *client) write(v any) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}
