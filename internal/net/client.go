package net

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"SketchBoard/internal/protocol"
)

var ErrClosed = errors.New("net: connection closed")

const (
	writeWait  = 10 * time.Second
	sendBuffer = 256
)

// Client is the board's connection to a relay. Send is safe for concurrent
// use and keeps call order.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}

	closeOnce sync.Once
	onClose   func(error)
}

// Dial connects to the relay at addr (host:port) as clientID. Every decoded
// message goes to handle on the read goroutine; onClose runs once when the
// connection ends.
func Dial(ctx context.Context, addr, clientID string, handle func(protocol.Payload), onClose func(error)) (*Client, error) {
	u := url.URL{Scheme: "ws", Host: addr, Path: RelayPath}
	if clientID != "" {
		u.RawQuery = url.Values{"client_id": {clientID}}.Encode()
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u.String(), err)
	}
	c := &Client{
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
		onClose: onClose,
	}
	go c.writePump()
	go c.readLoop(handle)
	log.Printf("[NET] Connected to relay at %s", addr)
	return c, nil
}

// Send encodes p and queues it for the write pump. Messages sent after the
// connection closed are dropped.
func (c *Client) Send(p protocol.Payload) {
	data, err := protocol.Encode(p)
	if err != nil {
		log.Printf("[NET] %v", err)
		return
	}
	select {
	case <-c.done:
		log.Printf("[NET] Dropping %s: %v", p.MessageType(), ErrClosed)
	case c.send <- data:
	}
}

func (c *Client) writePump() {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.shutdown(fmt.Errorf("write: %w", err))
				return
			}
		}
	}
}

func (c *Client) readLoop(handle func(protocol.Payload)) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				err = nil
			}
			c.shutdown(err)
			return
		}
		p, err := protocol.Decode(data)
		if err != nil {
			log.Printf("[NET] Skipping message: %v", err)
			continue
		}
		handle(p)
	}
}

func (c *Client) shutdown(err error) {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
		if err != nil {
			log.Printf("[NET] Connection closed: %v", err)
		}
		if c.onClose != nil {
			c.onClose(err)
		}
	})
}

// Close says goodbye to the relay and tears the connection down.
func (c *Client) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	c.shutdown(nil)
	return nil
}

// Done is closed once the connection has ended.
func (c *Client) Done() <-chan struct{} { return c.done }
