package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pediclinic/portal/internal/booking"
	"github.com/pediclinic/portal/internal/clinicapi"
)

type fakeBookingAPI struct {
	byDate    []clinicapi.Appointment
	createErr error
	created   []clinicapi.BookingRequest
}

func (f *fakeBookingAPI) AppointmentsByDate(ctx context.Context, date string) ([]clinicapi.Appointment, error) {
	return f.byDate, nil
}

func (f *fakeBookingAPI) CreateAppointment(ctx context.Context, token string, req clinicapi.BookingRequest) (*clinicapi.Appointment, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	return &clinicapi.Appointment{ID: "new", Date: req.Date, Time: req.Time}, nil
}

func (f *fakeBookingAPI) StaffBook(ctx context.Context, token string, req clinicapi.StaffBookingRequest) (*clinicapi.Appointment, error) {
	return &clinicapi.Appointment{ID: "staff", Date: req.Date, Time: req.Time}, nil
}

func bookingHandler(api *fakeBookingAPI, watcher refresher) *BookingHandler {
	return NewBookingHandler(booking.NewService(api, nil), watcher, nil)
}

func TestAvailabilityReturnsSlotGrid(t *testing.T) {
	api := &fakeBookingAPI{byDate: []clinicapi.Appointment{{Time: "10:30"}}}
	h := bookingHandler(api, nil)

	rec := httptest.NewRecorder()
	h.Availability(rec, httptest.NewRequest(http.MethodGet, "/api/booking/slots?date=2026-03-02", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeResponse[struct {
		Date  string         `json:"date"`
		Slots []booking.Slot `json:"slots"`
	}](t, rec)
	assert.Equal(t, "2026-03-02", body.Date)
	require.Len(t, body.Slots, len(booking.Slots()))
	for _, s := range body.Slots {
		if s.Time == "10:30" {
			assert.True(t, s.Booked)
		}
	}
}

func TestAvailabilityRequiresDate(t *testing.T) {
	h := bookingHandler(&fakeBookingAPI{}, nil)

	rec := httptest.NewRecorder()
	h.Availability(rec, httptest.NewRequest(http.MethodGet, "/api/booking/slots", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookRejectsMissingCategoryBeforeNetwork(t *testing.T) {
	api := &fakeBookingAPI{}
	h := bookingHandler(api, nil)

	req := sessionRequest(t, http.MethodPost, "/api/booking", booking.Request{
		Date: "2026-03-02", Time: "10:00",
	}, patientUser())
	rec := httptest.NewRecorder()
	h.Book(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeResponse[map[string]string](t, rec)
	assert.Equal(t, "Please select a reason for visit.", body["msg"])
	assert.Empty(t, api.created, "validation failures never reach the network")
}

func TestBookResolvesChildAndRefreshes(t *testing.T) {
	api := &fakeBookingAPI{}
	watcher := &fakeRefresher{}
	h := bookingHandler(api, watcher)

	req := sessionRequest(t, http.MethodPost, "/api/booking", booking.Request{
		Date: "2026-03-02", Time: "10:00", Category: "General Checkup", ChildID: "c1",
	}, patientUser())
	rec := httptest.NewRecorder()
	h.Book(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, api.created, 1)
	assert.Equal(t, "Aarav", api.created[0].PatientName)
	assert.Equal(t, "u1", api.created[0].UserID)
	assert.Equal(t, 1, watcher.polls)
}

func TestBookPassesThroughSlotConflict(t *testing.T) {
	api := &fakeBookingAPI{createErr: &clinicapi.APIError{StatusCode: http.StatusConflict, Msg: "Slot already booked"}}
	h := bookingHandler(api, nil)

	req := sessionRequest(t, http.MethodPost, "/api/booking", booking.Request{
		Date: "2026-03-02", Time: "10:00", Category: "Vaccination", ChildID: "c1",
	}, patientUser())
	rec := httptest.NewRecorder()
	h.Book(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeResponse[map[string]string](t, rec)
	assert.Equal(t, "Slot already booked", body["msg"])
}
