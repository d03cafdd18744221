package clinicapi

import (
	"context"
	"net/url"
)

// Login exchanges credentials for a token and user snapshot.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var out AuthResponse
	if err := c.post(ctx, "/api/auth/login", "auth_login", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account. The OTP must have been sent to the phone
// via SendOTP first.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.post(ctx, "/api/auth/register", "auth_register", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendOTP asks the server to dispatch a one-time passcode to the phone.
func (c *Client) SendOTP(ctx context.Context, phone string) (string, error) {
	body := map[string]string{"phone": phone}
	var out struct {
		Msg string `json:"msg"`
	}
	if err := c.post(ctx, "/api/auth/send-otp", "auth_send_otp", "", body, &out); err != nil {
		return "", err
	}
	return out.Msg, nil
}

// Me revalidates the token and returns the canonical user.
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	var out User
	if err := c.get(ctx, "/api/auth/me", "auth_me", token, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile mutates the parent profile and returns the canonical user.
func (c *Client) UpdateProfile(ctx context.Context, token string, update ProfileUpdate) (*User, error) {
	var out User
	if err := c.put(ctx, "/api/auth/update-profile", "auth_update_profile", token, update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword rotates the account password.
func (c *Client) ChangePassword(ctx context.Context, token, current, next string) error {
	body := map[string]string{"currentPassword": current, "newPassword": next}
	return c.put(ctx, "/api/auth/change-password", "auth_change_password", token, body, nil)
}

// ForgotPassword triggers a reset email; returns the server's message.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	body := map[string]string{"email": email}
	var out struct {
		Msg string `json:"msg"`
	}
	if err := c.post(ctx, "/api/auth/forgot-password", "auth_forgot_password", "", body, &out); err != nil {
		return "", err
	}
	return out.Msg, nil
}

// ResetPassword completes a reset started by ForgotPassword.
func (c *Client) ResetPassword(ctx context.Context, resetToken, password string) error {
	body := map[string]string{"password": password}
	path := "/api/auth/reset-password/" + url.PathEscape(resetToken)
	return c.put(ctx, path, "auth_reset_password", "", body, nil)
}

// AddChild creates a child profile and returns the updated user.
func (c *Client) AddChild(ctx context.Context, token string, child ChildInput) (*User, error) {
	var out User
	if err := c.post(ctx, "/api/auth/add-child", "auth_add_child", token, child, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteChild removes a child profile and returns the updated user.
func (c *Client) DeleteChild(ctx context.Context, token, childID string) (*User, error) {
	var out User
	path := "/api/auth/delete-child/" + url.PathEscape(childID)
	if err := c.do(ctx, "DELETE", path, "auth_delete_child", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetVaccineStatus toggles one vaccine on a child and returns the
// updated child record.
func (c *Client) SetVaccineStatus(ctx context.Context, token, childID string, update VaccineUpdate) (*Child, error) {
	var out Child
	path := "/api/auth/child/" + url.PathEscape(childID) + "/vaccine"
	if err := c.put(ctx, path, "auth_child_vaccine", token, update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
