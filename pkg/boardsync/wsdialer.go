package boardsync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	ws "github.com/taskdeck/taskdeck/pkg/websocket"
)

// WSDialer dials the server's /ws endpoint with gorilla/websocket.
type WSDialer struct {
	URL string
}

// Dial implements Dialer.
func (d *WSDialer) Dial(ctx context.Context) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, d.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", d.URL, err)
	}
	return &wsConn{conn: conn}, nil
}

type wsConn struct {
	conn    *websocket.Conn
	pending *json.Decoder
}

// ReadMessage returns the next message. The server may batch several
// newline-separated messages into one frame, so a frame is drained
// message by message before the next frame is read.
func (c *wsConn) ReadMessage() (*ws.Message, error) {
	for {
		if c.pending != nil && c.pending.More() {
			var msg ws.Message
			if err := c.pending.Decode(&msg); err != nil {
				return nil, fmt.Errorf("parse message: %w", err)
			}
			return &msg, nil
		}

		_, r, err := c.conn.NextReader()
		if err != nil {
			return nil, err
		}
		c.pending = json.NewDecoder(r)
	}
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}
