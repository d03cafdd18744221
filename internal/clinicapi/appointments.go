package clinicapi

import (
	"context"
	"net/url"
)

// AppointmentsByDate lists appointments on a calendar date ("2006-01-02").
// Public: the booking page derives the taken-slot set from it.
func (c *Client) AppointmentsByDate(ctx context.Context, date string) ([]Appointment, error) {
	var out []Appointment
	path := "/api/appointments?date=" + url.QueryEscape(date)
	if err := c.get(ctx, path, "appointments_by_date", "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MyAppointments lists the authenticated parent's appointments.
func (c *Client) MyAppointments(ctx context.Context, token string) ([]Appointment, error) {
	var out []Appointment
	if err := c.get(ctx, "/api/appointments/my-appointments", "appointments_mine", token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AllAppointments lists every appointment; staff only.
func (c *Client) AllAppointments(ctx context.Context, token string) ([]Appointment, error) {
	var out []Appointment
	if err := c.get(ctx, "/api/appointments/all", "appointments_all", token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TodayQueue returns today's public visit queue in server-determined
// order. The server owns token ordering; the portal only projects it.
func (c *Client) TodayQueue(ctx context.Context) ([]Appointment, error) {
	var out []Appointment
	if err := c.get(ctx, "/api/appointments/today", "appointments_today", "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAppointment books a slot for the authenticated parent. Slot
// collisions are rejected server-side and surface as an APIError.
func (c *Client) CreateAppointment(ctx context.Context, token string, req BookingRequest) (*Appointment, error) {
	var out Appointment
	if err := c.post(ctx, "/api/appointments", "appointments_create", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StaffBook books on behalf of another user; reception/admin only.
func (c *Client) StaffBook(ctx context.Context, token string, req StaffBookingRequest) (*Appointment, error) {
	var out Appointment
	if err := c.post(ctx, "/api/appointments/staff-book", "appointments_staff_book", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reschedule moves an appointment to a new date/time.
func (c *Client) Reschedule(ctx context.Context, token, id string, req RescheduleRequest) error {
	path := "/api/appointments/" + url.PathEscape(id)
	return c.put(ctx, path, "appointments_reschedule", token, req, nil)
}

// CheckIn transitions booked → checked-in.
func (c *Client) CheckIn(ctx context.Context, token, id string) error {
	path := "/api/appointments/" + url.PathEscape(id) + "/checkin"
	return c.put(ctx, path, "appointments_checkin", token, nil, nil)
}

// Complete transitions an appointment to completed.
func (c *Client) Complete(ctx context.Context, token, id string) error {
	path := "/api/appointments/" + url.PathEscape(id) + "/complete"
	return c.put(ctx, path, "appointments_complete", token, nil, nil)
}

// CancelAppointment deletes the appointment; the server notifies the
// patient. An optional free-text reason is forwarded for that notification.
func (c *Client) CancelAppointment(ctx context.Context, token, id, reason string) error {
	path := "/api/appointments/" + url.PathEscape(id)
	if reason != "" {
		path += "?reason=" + url.QueryEscape(reason)
	}
	return c.delete(ctx, path, "appointments_cancel", token)
}
