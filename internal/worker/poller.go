// Package worker runs the polling fallback: periodic full re-fetches of
// order and notification state, independent of push-channel health. Every
// poll is read-only and replaces state wholesale, so overlap with a manual
// refresh cannot apply stale writes.
package worker

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"quickbite/internal/api"
	"quickbite/internal/model"
	"quickbite/internal/service"
)

const (
	// active-order detail views poll fast, dashboards slower
	DefaultDetailInterval    = 5 * time.Second
	DefaultDashboardInterval = 10 * time.Second
)

// OrderWatcher polls a single order until it reaches a terminal status,
// then stops on its own. The optional status-change callback fires once per
// observed delta, for the one-time "status updated" notice.
type OrderWatcher struct {
	client   *api.Client
	sync     *service.OrderSync
	orderID  string
	interval time.Duration
	focus    *rate.Limiter

	onStatusChange func(prev, next model.Status)
}

func NewOrderWatcher(client *api.Client, sync *service.OrderSync, orderID string, interval time.Duration) *OrderWatcher {
	if interval <= 0 {
		interval = DefaultDetailInterval
	}
	return &OrderWatcher{
		client:   client,
		sync:     sync,
		orderID:  orderID,
		interval: interval,
		focus:    rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

func (w *OrderWatcher) OnStatusChange(fn func(prev, next model.Status)) {
	w.onStatusChange = fn
}

// Start runs the poll loop until ctx is cancelled or the order goes
// terminal. Poll failures are logged, never surfaced.
func (w *OrderWatcher) Start(ctx context.Context) {
	// prime immediately so the watcher is useful before the first tick
	if terminal := w.poll(ctx); terminal {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if terminal := w.poll(ctx); terminal {
				slog.Info("order reached terminal status, watcher stopping", "order_id", w.orderID)
				return
			}
		}
	}
}

// Focus is the window-focus-regain hook: an extra poll, coalesced by a
// limiter so rapid focus flapping does not burst requests.
func (w *OrderWatcher) Focus(ctx context.Context) {
	if !w.focus.Allow() {
		return
	}
	w.poll(ctx)
}

func (w *OrderWatcher) poll(ctx context.Context) (terminal bool) {
	order, err := w.client.GetOrder(ctx, w.orderID)
	if err != nil {
		slog.Warn("order poll failed", "order_id", w.orderID, "error", err)
		return false
	}

	prev, known := w.sync.Get(w.orderID)
	w.sync.Apply(*order)

	if known && prev.Status != order.Status && w.onStatusChange != nil {
		w.onStatusChange(prev.Status, order.Status)
	}
	return order.Status.Terminal()
}

// NotificationPoller re-fetches the notification list on the dashboard
// interval, backstopping the push channel.
type NotificationPoller struct {
	center   *service.Center
	interval time.Duration
	focus    *rate.Limiter
}

func NewNotificationPoller(center *service.Center, interval time.Duration) *NotificationPoller {
	if interval <= 0 {
		interval = DefaultDashboardInterval
	}
	return &NotificationPoller{
		center:   center,
		interval: interval,
		focus:    rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

func (p *NotificationPoller) Start(ctx context.Context) {
	if err := p.center.Refresh(ctx); err != nil {
		slog.Warn("initial notification fetch failed", "error", err)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.center.Refresh(ctx); err != nil {
				slog.Warn("notification poll failed", "error", err)
			}
		}
	}
}

func (p *NotificationPoller) Focus(ctx context.Context) {
	if !p.focus.Allow() {
		return
	}
	if err := p.center.Refresh(ctx); err != nil {
		slog.Warn("focus refresh failed", "error", err)
	}
}
