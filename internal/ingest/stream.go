package ingest

import (
	"context"
	"fmt"

	"github.com/coder/websocket"
)

// readLimit allows for the largest static-data frames with room to spare.
const readLimit = 1 << 20

type StreamConn interface {
	Send(ctx context.Context, data []byte) error
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

type StreamDialer interface {
	Dial(ctx context.Context) (StreamConn, error)
}

type WebsocketDialer struct {
	url string
}

func NewWebsocketDialer(url string) *WebsocketDialer {
	return &WebsocketDialer{url: url}
}

func (d *WebsocketDialer) Dial(ctx context.Context) (StreamConn, error) {
	conn, _, err := websocket.Dial(ctx, d.url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", d.url, err)
	}
	conn.SetReadLimit(readLimit)
	return &websocketConn{conn: conn}, nil
}

type websocketConn struct {
	conn *websocket.Conn
}

func (c *websocketConn) Send(ctx context.Context, data []byte) error {
	return c.conn.Write(ctx, websocket.MessageText, data)
}

func (c *websocketConn) Receive(ctx context.Context) ([]byte, error) {
	_, data, err := c.conn.Read(ctx)
	return data, err
}

func (c *websocketConn) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}
