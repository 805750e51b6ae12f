// internal/feed/feed.go
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/dattu2507/matching-engine-project/internal/market"
	"github.com/gorilla/websocket"
)

// Handler receives decoded feed messages. Calls are made from the read
// goroutine, one at a time.
type Handler interface {
	HandleBBO(symbol string, bbo json.RawMessage)
	HandleTrade(trade market.Trade)
}

// HandlerFuncs adapts plain functions to a Handler. Nil funcs are skipped.
type HandlerFuncs struct {
	BBO   func(symbol string, bbo json.RawMessage)
	Trade func(trade market.Trade)
}

func (h HandlerFuncs) HandleBBO(symbol string, bbo json.RawMessage) {
	if h.BBO != nil {
		h.BBO(symbol, bbo)
	}
}

func (h HandlerFuncs) HandleTrade(trade market.Trade) {
	if h.Trade != nil {
		h.Trade(trade)
	}
}

type Client struct {
	handler          Handler
	url              string
	handshakeTimeout time.Duration
}

type Option func(*Client)

func WithHandshakeTimeout(d time.Duration) Option {
	return func(c *Client) { c.handshakeTimeout = d }
}

func New(url string, h Handler, opts ...Option) *Client {
	c := &Client{
		url:              url,
		handler:          h,
		handshakeTimeout: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run connects to the feed and dispatches messages until the connection
// drops or ctx is cancelled. There is no reconnect.
func (c *Client) Run(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: c.handshakeTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("websocket connection failed: %w", err)
	}
	log.Printf("connected to feed %s", c.url)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	defer conn.Close()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("feed closed by server: %v", err)
				return nil
			}
			return fmt.Errorf("feed read: %w", err)
		}
		if err := c.dispatch(message); err != nil {
			log.Printf("feed message dropped: %v", err)
		}
	}
}

func (c *Client) dispatch(message []byte) error {
	var env envelope
	if err := json.Unmarshal(message, &env); err != nil {
		return fmt.Errorf("unmarshal error: %w", err)
	}

	switch env.Type {
	case TypeBBO:
		c.handler.HandleBBO(env.Symbol, env.BBO)
	case TypeTrade:
		var trade market.Trade
		if err := json.Unmarshal(message, &trade); err != nil {
			return fmt.Errorf("trade unmarshal error: %w", err)
		}
		c.handler.HandleTrade(trade)
	default:
		log.Printf("Unhandled message type: %q", env.Type)
	}
	return nil
}
