package clinicapi

import (
	"context"
	"net/url"
)

// Notifications lists the authenticated user's notifications, newest first.
func (c *Client) Notifications(ctx context.Context, token string) ([]Notification, error) {
	var out []Notification
	if err := c.get(ctx, "/api/notifications", "notifications_list", token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkNotificationRead flags one notification as read. The server treats
// repeat calls for the same id as a no-op.
func (c *Client) MarkNotificationRead(ctx context.Context, token, id string) error {
	path := "/api/notifications/" + url.PathEscape(id) + "/read"
	return c.put(ctx, path, "notifications_mark_read", token, nil, nil)
}
