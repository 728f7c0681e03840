// Package realtime maintains the push connection to the ordering backend.
// Events delivered here are triggers to refresh authoritative state, not the
// source of truth itself; the polling workers reconcile independently.
package realtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"quickbite/internal/model"
)

type EventType string

const (
	EventNewOrder      EventType = "new_order"
	EventOrderAssigned EventType = "order_assigned"
	EventOrderUpdate   EventType = "order_update"
)

// Event carries enough display fields to render a notification without a
// follow-up fetch.
type Event struct {
	Type           EventType       `json:"type"`
	OrderID        string          `json:"order_id"`
	OrderNumber    string          `json:"order_number"`
	RestaurantID   string          `json:"restaurant_id,omitempty"`
	RestaurantName string          `json:"restaurant_name,omitempty"`
	CustomerName   string          `json:"customer_name,omitempty"`
	Status         model.Status    `json:"status,omitempty"`
	TotalAmount    decimal.Decimal `json:"total_amount,omitempty"`
	Message        string          `json:"message,omitempty"`
}

type Handler func(Event)

// Channel is a process-wide singleton per authenticated session: one live
// connection, torn down and recreated on login/logout/token change.
type Channel struct {
	url    string
	dialer *websocket.Dialer

	reconnectDelay    time.Duration
	reconnectDelayMax time.Duration
	reconnectAttempts int

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	running   bool
	gen       int
	token     string
	cancel    context.CancelFunc
	handlers  map[EventType]map[int]Handler
	nextID    int
}

func NewChannel(url string) *Channel {
	return &Channel{
		url:               url,
		dialer:            websocket.DefaultDialer,
		reconnectDelay:    time.Second,
		reconnectDelayMax: 5 * time.Second,
		reconnectAttempts: 5,
		handlers:          make(map[EventType]map[int]Handler),
	}
}

// Connect establishes the push connection authenticated with token.
// Idempotent: calling while a connection or its reconnect loop is live is a
// no-op, so the channel never holds more than one connection. Transport
// errors do not propagate to the caller; the channel drops into its
// reconnect loop and the polling fallback masks the gap.
func (c *Channel) Connect(ctx context.Context, token string) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.gen++
	gen := c.gen
	c.token = token
	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	go c.run(loopCtx, gen)
}

func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// On registers a handler for an event type and returns its release func.
// Callers must release on teardown so handlers do not leak across logins.
func (c *Channel) On(t EventType, h Handler) (off func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handlers[t] == nil {
		c.handlers[t] = make(map[int]Handler)
	}
	id := c.nextID
	c.nextID++
	c.handlers[t][id] = h
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.handlers[t], id)
	}
}

// Disconnect tears the connection down and clears every registered handler.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.connected = false
	c.running = false
	c.handlers = make(map[EventType]map[int]Handler)
}

// run owns the connection for one Connect generation. A Disconnect releases
// the running flag itself so a fresh Connect need not wait for this loop to
// observe cancellation; the generation check keeps the old loop's exit from
// clobbering the new one's flag.
func (c *Channel) run(ctx context.Context, gen int) {
	defer func() {
		c.mu.Lock()
		if c.gen == gen {
			c.running = false
		}
		c.mu.Unlock()
	}()
	if !c.dial(ctx) {
		if !c.reconnect(ctx) {
			return
		}
	}
	c.readLoop(ctx)
}

func (c *Channel) dial(ctx context.Context) bool {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	conn, _, err := c.dialer.DialContext(ctx, c.url+"?token="+token, nil)
	if err != nil {
		slog.Warn("push channel dial failed", "error", err)
		return false
	}
	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()
	slog.Info("push channel connected")
	return true
}

// reconnect retries with a doubling delay capped at reconnectDelayMax, for
// at most reconnectAttempts tries. After exhausting them the channel gives
// up until an explicit Connect.
func (c *Channel) reconnect(ctx context.Context) bool {
	delay := c.reconnectDelay
	for attempt := 1; attempt <= c.reconnectAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(delay):
		}
		slog.Info("push channel reconnect attempt", "attempt", attempt)
		if c.dial(ctx) {
			return true
		}
		delay *= 2
		if delay > c.reconnectDelayMax {
			delay = c.reconnectDelayMax
		}
	}
	slog.Error("push channel reconnect failed, giving up")
	return false
}

func (c *Channel) readLoop(ctx context.Context) {
	for {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			return
		}

		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			c.mu.Lock()
			c.connected = false
			c.conn = nil
			c.mu.Unlock()
			if ctx.Err() != nil {
				return
			}
			slog.Warn("push channel read failed", "error", err)
			if !c.reconnect(ctx) {
				return
			}
			continue
		}
		c.dispatch(ev)
	}
}

func (c *Channel) dispatch(ev Event) {
	c.mu.Lock()
	hs := make([]Handler, 0, len(c.handlers[ev.Type]))
	for _, h := range c.handlers[ev.Type] {
		hs = append(hs, h)
	}
	c.mu.Unlock()

	for _, h := range hs {
		h(ev)
	}
}
