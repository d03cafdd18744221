package clinicapi

import (
	"context"
	"net/url"
)

// QuickRegister creates a walk-in family account at the front desk.
func (c *Client) QuickRegister(ctx context.Context, token string, req QuickRegisterRequest) error {
	return c.post(ctx, "/api/reception/quick-register", "reception_quick_register", token, req, nil)
}

// SearchUsers finds parents by name or phone for staff booking.
func (c *Client) SearchUsers(ctx context.Context, token, query string) ([]User, error) {
	var out []User
	path := "/api/reception/users/search?q=" + url.QueryEscape(query)
	if err := c.get(ctx, path, "reception_search_users", token, &out); err != nil {
		return nil, err
	}
	return out, nil
}
