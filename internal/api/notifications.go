package api

import (
	"context"
	"net/http"

	"quickbite/internal/model"
)

type NotificationFilters struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}

type notificationList struct {
	Notifications []model.Notification `json:"notifications"`
}

type unreadCount struct {
	Count int `json:"count"`
}

func (c *Client) ListNotifications(ctx context.Context, f NotificationFilters) ([]model.Notification, error) {
	q := pageQuery(f.Limit, f.Offset)
	if f.UnreadOnly {
		q.Set("unread", "true")
	}
	var out notificationList
	if err := c.do(ctx, http.MethodGet, "/notifications", q, nil, &out); err != nil {
		return nil, err
	}
	// everything the server hands back is server-persisted
	for i := range out.Notifications {
		out.Notifications[i].Origin = model.OriginServer
	}
	return out.Notifications, nil
}

func (c *Client) UnreadNotificationCount(ctx context.Context) (int, error) {
	var out unreadCount
	if err := c.do(ctx, http.MethodGet, "/notifications/unread-count", nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, "/notifications/"+id+"/read", nil, nil, nil)
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPut, "/notifications/read-all", nil, nil, nil)
}
