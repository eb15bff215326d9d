package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"chessbot/search"
)

// wsMessage is the envelope of every websocket frame. Clients send
// "search" with a SearchRequest payload and "stop"; the server answers with
// "info", "bestmove" and "error".
type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) send(typ string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	msg, err := json.Marshal(wsMessage{Type: typ, Payload: data})
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

func (c *wsConn) sendError(err error) {
	_ = c.send("error", errorResponse{Error: err.Error()})
}

func (s *Server) serveSearchWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	c := &wsConn{conn: conn}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		// unblocks the reader on shutdown
		<-ctx.Done()
		conn.Close()
	}()

	msgs := make(chan wsMessage)
	go func() {
		defer close(msgs)
		defer cancel()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg wsMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				c.sendError(err)
				continue
			}
			select {
			case msgs <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	var running sync.WaitGroup
	stopSearch := func() {}
	defer func() {
		stopSearch()
		running.Wait()
	}()

	for msg := range msgs {
		switch msg.Type {
		case "search":
			stopSearch()
			running.Wait()

			var req SearchRequest
			if err := json.Unmarshal(msg.Payload, &req); err != nil {
				c.sendError(err)
				continue
			}
			pos, budget, err := req.parse()
			if err != nil {
				c.sendError(err)
				continue
			}

			searchCtx, searchCancel := context.WithCancel(ctx)
			stopSearch = searchCancel
			running.Add(1)
			go func() {
				defer running.Done()
				defer searchCancel()
				resp, err := s.search(searchCtx, pos, budget, func(p search.Progress) {
					_ = c.send("info", p)
				})
				if errors.Is(err, errBusy) {
					c.sendError(err)
					return
				}
				resp.Lines = nil
				_ = c.send("bestmove", resp)
			}()

		case "stop":
			stopSearch()

		default:
			s.logger.Debug().Str("type", msg.Type).Msg("unknown websocket message")
		}
	}
}
