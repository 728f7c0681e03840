package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"quickbite/internal/api"
	"quickbite/internal/config"
	"quickbite/internal/model"
	"quickbite/internal/realtime"
	"quickbite/internal/service"
	"quickbite/internal/session"
	"quickbite/internal/worker"
)

func main() {
	cfg := config.New()

	store, err := session.OpenStore(cfg.StatePath)
	if err != nil {
		slog.Error("failed to open state store", "error", err)
		os.Exit(1)
	}

	sess, err := session.New(store)
	if err != nil {
		slog.Error("failed to restore session", "error", err)
		os.Exit(1)
	}
	defer sess.Close()

	client := api.New(cfg.APIBaseURL, cfg.RequestTimeout, sess)
	client.OnAuthExpired(sess.Expire)

	channel := realtime.NewChannel(cfg.PushURL)
	sess.AttachChannel(channel)

	center := service.NewCenter(client)
	center.OnPopup(func(n model.Notification) {
		slog.Info("notification", "type", n.Type, "title", n.Title, "message", n.Message)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sess.Authenticated() {
		claims := sess.Claims()
		slog.Info("session restored", "user", claims.Name, "role", claims.Role)

		// handlers first, so nothing delivered right after the dial is lost
		channel.On(realtime.EventNewOrder, center.HandleEvent)
		channel.On(realtime.EventOrderAssigned, center.HandleEvent)
		channel.On(realtime.EventOrderUpdate, center.HandleEvent)

		orders := service.NewOrderSync(client, claims.Role, claims.UserID)
		channel.On(realtime.EventOrderUpdate, orders.HandleEvent)
		channel.Connect(ctx, sess.Token())

		poller := worker.NewNotificationPoller(center, cfg.DashboardInterval)
		go poller.Start(ctx)

		if err := orders.RefreshMine(ctx, api.OrderFilters{}); err != nil {
			slog.Warn("initial order refresh failed", "error", err)
		}
	} else {
		slog.Info("no session; log in via the API and restart")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")
	cancel()
	channel.Disconnect()
}
