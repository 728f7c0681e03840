package realtime_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickbite/internal/fakeapi"
	"quickbite/internal/model"
	"quickbite/internal/realtime"
)

type pushEnv struct {
	srv    *fakeapi.Server
	user   model.User
	token  string
	wsURL  string
	cancel context.CancelFunc
	ctx    context.Context
}

func newPushEnv(t *testing.T) *pushEnv {
	t.Helper()
	srv := fakeapi.NewServer()
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	user := srv.SeedUser("Ravi", "customer@example.com", "pw", model.RoleCustomer)
	token, err := srv.TokenFor(user.ID)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return &pushEnv{
		srv:    srv,
		user:   user,
		token:  token,
		wsURL:  strings.Replace(ts.URL, "http", "ws", 1) + "/ws",
		ctx:    ctx,
		cancel: cancel,
	}
}

func (e *pushEnv) connect(t *testing.T, ch *realtime.Channel) {
	t.Helper()
	ch.Connect(e.ctx, e.token)
	require.Eventually(t, ch.Connected, 2*time.Second, 10*time.Millisecond)
}

func TestChannelDeliversEvents(t *testing.T) {
	e := newPushEnv(t)
	ch := realtime.NewChannel(e.wsURL)
	defer ch.Disconnect()
	e.connect(t, ch)

	got := make(chan realtime.Event, 1)
	off := ch.On(realtime.EventNewOrder, func(ev realtime.Event) { got <- ev })
	defer off()

	e.srv.Publish(e.user.ID, realtime.Event{
		Type:        realtime.EventNewOrder,
		OrderID:     "o1",
		OrderNumber: "ORD-0001",
		TotalAmount: decimal.NewFromInt(50),
	})

	select {
	case ev := <-got:
		assert.Equal(t, "o1", ev.OrderID)
		assert.Equal(t, "ORD-0001", ev.OrderNumber)
		assert.True(t, ev.TotalAmount.Equal(decimal.NewFromInt(50)))
	case <-time.After(2 * time.Second):
		t.Fatal("event never arrived")
	}
}

func TestChannelRoutesByEventType(t *testing.T) {
	e := newPushEnv(t)
	ch := realtime.NewChannel(e.wsURL)
	defer ch.Disconnect()
	e.connect(t, ch)

	updates := make(chan realtime.Event, 1)
	off := ch.On(realtime.EventOrderUpdate, func(ev realtime.Event) { updates <- ev })
	defer off()

	// a handler for one type never sees another
	e.srv.Publish(e.user.ID, realtime.Event{Type: realtime.EventNewOrder, OrderID: "skip"})
	e.srv.Publish(e.user.ID, realtime.Event{Type: realtime.EventOrderUpdate, OrderID: "o2", Status: model.StatusConfirmed})

	select {
	case ev := <-updates:
		assert.Equal(t, "o2", ev.OrderID)
		assert.Equal(t, model.StatusConfirmed, ev.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("event never arrived")
	}
}

func TestChannelConnectIsIdempotent(t *testing.T) {
	e := newPushEnv(t)
	ch := realtime.NewChannel(e.wsURL)
	defer ch.Disconnect()
	e.connect(t, ch)

	// second Connect while live must not open another connection
	ch.Connect(e.ctx, e.token)

	got := make(chan realtime.Event, 4)
	off := ch.On(realtime.EventNewOrder, func(ev realtime.Event) { got <- ev })
	defer off()

	e.srv.Publish(e.user.ID, realtime.Event{Type: realtime.EventNewOrder, OrderID: "once"})

	select {
	case <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("event never arrived")
	}
	select {
	case ev := <-got:
		t.Fatalf("duplicate delivery of %s", ev.OrderID)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestChannelOffStopsDelivery(t *testing.T) {
	e := newPushEnv(t)
	ch := realtime.NewChannel(e.wsURL)
	defer ch.Disconnect()
	e.connect(t, ch)

	got := make(chan realtime.Event, 2)
	off := ch.On(realtime.EventNewOrder, func(ev realtime.Event) { got <- ev })
	off()

	e.srv.Publish(e.user.ID, realtime.Event{Type: realtime.EventNewOrder, OrderID: "o1"})

	select {
	case <-got:
		t.Fatal("released handler still fired")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestChannelDisconnectClearsHandlers(t *testing.T) {
	e := newPushEnv(t)
	ch := realtime.NewChannel(e.wsURL)
	e.connect(t, ch)

	got := make(chan realtime.Event, 1)
	ch.On(realtime.EventNewOrder, func(ev realtime.Event) { got <- ev })

	ch.Disconnect()
	assert.False(t, ch.Connected())

	// a later session on the same channel starts with no stale handlers
	e.connect(t, ch)
	defer ch.Disconnect()
	e.srv.Publish(e.user.ID, realtime.Event{Type: realtime.EventNewOrder, OrderID: "o1"})

	select {
	case <-got:
		t.Fatal("handler survived disconnect")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestChannelReconnectsAfterDrop(t *testing.T) {
	e := newPushEnv(t)
	ch := realtime.NewChannel(e.wsURL)
	defer ch.Disconnect()
	e.connect(t, ch)

	got := make(chan realtime.Event, 8)
	off := ch.On(realtime.EventNewOrder, func(ev realtime.Event) { got <- ev })
	defer off()

	e.srv.Publish(e.user.ID, realtime.Event{Type: realtime.EventNewOrder, OrderID: "before"})
	select {
	case ev := <-got:
		require.Equal(t, "before", ev.OrderID)
	case <-time.After(2 * time.Second):
		t.Fatal("event never arrived")
	}

	e.srv.DropConnections(e.user.ID)

	// the backoff loop re-dials on its own; first retry lands after about a
	// second, and deliveries resume on the new connection
	require.Eventually(t, func() bool {
		e.srv.Publish(e.user.ID, realtime.Event{Type: realtime.EventNewOrder, OrderID: "after"})
		select {
		case ev := <-got:
			return ev.OrderID == "after"
		default:
			return false
		}
	}, 10*time.Second, 200*time.Millisecond)
}

func TestChannelConnectDuringBackoffSpawnsNoSecondLoop(t *testing.T) {
	var live atomic.Int32
	var accept atomic.Bool
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !accept.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		live.Add(1)
		defer live.Add(-1)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer ts.Close()

	ch := realtime.NewChannel(strings.Replace(ts.URL, "http", "ws", 1))
	defer ch.Disconnect()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// both calls land while the server still refuses; only one loop may
	// survive to dial once it accepts
	ch.Connect(ctx, "tok")
	time.Sleep(100 * time.Millisecond)
	ch.Connect(ctx, "tok")

	accept.Store(true)
	require.Eventually(t, ch.Connected, 10*time.Second, 100*time.Millisecond)
	time.Sleep(500 * time.Millisecond)
	assert.LessOrEqual(t, live.Load(), int32(1),
		"a single channel must never hold more than one live push connection")
}

func TestChannelRejectsBadToken(t *testing.T) {
	e := newPushEnv(t)
	ch := realtime.NewChannel(e.wsURL)
	defer ch.Disconnect()

	ch.Connect(e.ctx, "not-a-token")
	// the dial fails and the channel quietly falls into its retry loop
	assert.Never(t, ch.Connected, 300*time.Millisecond, 50*time.Millisecond)
}
