package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pediclinic/portal/internal/clinicapi"
	"github.com/pediclinic/portal/internal/session"
	"github.com/pediclinic/portal/pkg/logging"
)

type fakeAppointmentsAPI struct {
	byDate      []clinicapi.Appointment
	byDateErr   error
	created     *clinicapi.BookingRequest
	createErr   error
	staffBooked *clinicapi.StaffBookingRequest
	calls       int
}

func (f *fakeAppointmentsAPI) AppointmentsByDate(ctx context.Context, date string) ([]clinicapi.Appointment, error) {
	return f.byDate, f.byDateErr
}

func (f *fakeAppointmentsAPI) CreateAppointment(ctx context.Context, token string, req clinicapi.BookingRequest) (*clinicapi.Appointment, error) {
	f.calls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = &req
	return &clinicapi.Appointment{ID: "new", Date: req.Date, Time: req.Time, Status: clinicapi.StatusConfirmed}, nil
}

func (f *fakeAppointmentsAPI) StaffBook(ctx context.Context, token string, req clinicapi.StaffBookingRequest) (*clinicapi.Appointment, error) {
	f.calls++
	f.staffBooked = &req
	return &clinicapi.Appointment{ID: "staff", Date: req.Date, Time: req.Time}, nil
}

func patientSession() *session.Session {
	return &session.Session{
		ID:    "s1",
		Token: "tok",
		User: &clinicapi.User{
			ID:   "u1",
			Name: "Asha",
			Role: clinicapi.RolePatient,
			Children: []clinicapi.Child{
				{ID: "c1", Name: "Meera", Age: 4},
			},
		},
	}
}

func TestAvailabilityMarksExactlyServerBookedSlots(t *testing.T) {
	api := &fakeAppointmentsAPI{byDate: []clinicapi.Appointment{
		{ID: "a1", Time: "10:30"},
		{ID: "a2", Time: "18:00"},
	}}
	svc := NewService(api, logging.Default())

	grid, err := svc.Availability(context.Background(), "2026-09-01")
	require.NoError(t, err)
	require.Len(t, grid, len(Slots()))

	bookedTimes := map[string]bool{}
	for _, slot := range grid {
		if slot.Booked {
			bookedTimes[slot.Time] = true
		}
	}
	assert.Equal(t, map[string]bool{"10:30": true, "18:00": true}, bookedTimes)
}

func TestBookWithoutCategoryNeverCallsNetwork(t *testing.T) {
	api := &fakeAppointmentsAPI{}
	svc := NewService(api, logging.Default())

	_, err := svc.Book(context.Background(), patientSession(), Request{
		Date: "2026-09-01", Time: "10:00", ChildID: "c1",
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "Please select a reason for visit.", err.Error())
	assert.Zero(t, api.calls, "validation failure must not issue a network request")
}

func TestBookWithoutDateTimeRejected(t *testing.T) {
	api := &fakeAppointmentsAPI{}
	svc := NewService(api, logging.Default())

	_, err := svc.Book(context.Background(), patientSession(), Request{Category: "Vaccination"})
	assert.Equal(t, "Please select a date and time.", err.Error())
	assert.Zero(t, api.calls)
}

func TestBookResolvesChildDetails(t *testing.T) {
	api := &fakeAppointmentsAPI{}
	svc := NewService(api, logging.Default())

	_, err := svc.Book(context.Background(), patientSession(), Request{
		Date: "2026-09-01", Time: "10:00", Category: "General Checkup", ChildID: "c1",
	})
	require.NoError(t, err)
	require.NotNil(t, api.created)
	assert.Equal(t, "Meera", api.created.PatientName)
	assert.Equal(t, "4", api.created.PatientAge)
	assert.Equal(t, "u1", api.created.UserID)
}

func TestBookUnknownChildRejected(t *testing.T) {
	svc := NewService(&fakeAppointmentsAPI{}, logging.Default())
	_, err := svc.Book(context.Background(), patientSession(), Request{
		Date: "2026-09-01", Time: "10:00", Category: "Emergency", ChildID: "nope",
	})
	assert.True(t, IsValidation(err))
}

func TestSuccessfulBookingDisablesSlotWithoutServerRoundTrip(t *testing.T) {
	api := &fakeAppointmentsAPI{}
	svc := NewService(api, logging.Default())

	_, err := svc.Book(context.Background(), patientSession(), Request{
		Date: "2026-09-01", Time: "11:00", Category: "Vaccination", ChildID: "c1",
	})
	require.NoError(t, err)

	// Server list does not include the new booking yet.
	grid, err := svc.Availability(context.Background(), "2026-09-01")
	require.NoError(t, err)
	for _, slot := range grid {
		if slot.Time == "11:00" {
			assert.True(t, slot.Booked, "just-booked slot must render disabled")
			return
		}
	}
	t.Fatal("slot 11:00 missing from grid")
}

func TestOptimisticEntryDroppedOnceServerConfirms(t *testing.T) {
	api := &fakeAppointmentsAPI{}
	svc := NewService(api, logging.Default())

	_, err := svc.Book(context.Background(), patientSession(), Request{
		Date: "2026-09-01", Time: "11:00", Category: "Vaccination", ChildID: "c1",
	})
	require.NoError(t, err)

	api.byDate = []clinicapi.Appointment{{ID: "new", Time: "11:00"}}
	_, err = svc.Availability(context.Background(), "2026-09-01")
	require.NoError(t, err)

	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Empty(t, svc.optimistic, "confirmed bookings must not linger in the overlay")
}

func TestServerBookingErrorPassesThrough(t *testing.T) {
	api := &fakeAppointmentsAPI{createErr: &clinicapi.APIError{StatusCode: 409, Msg: "Slot already booked"}}
	svc := NewService(api, logging.Default())

	_, err := svc.Book(context.Background(), patientSession(), Request{
		Date: "2026-09-01", Time: "10:00", Category: "Vaccination", ChildID: "c1",
	})
	apiErr, ok := clinicapi.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "Slot already booked", apiErr.Msg)
}

func TestBookForRequiresDetails(t *testing.T) {
	svc := NewService(&fakeAppointmentsAPI{}, logging.Default())
	sess := patientSession()

	_, err := svc.BookFor(context.Background(), sess, "", Request{Date: "2026-09-01", Time: "10:00", Category: "Vaccination"})
	assert.True(t, IsValidation(err))

	_, err = svc.BookFor(context.Background(), sess, "u2", Request{Date: "2026-09-01", Time: "10:00", Category: "Vaccination"})
	assert.True(t, IsValidation(err), "missing patient name/age must be rejected")
}

func TestBookForSendsTargetUser(t *testing.T) {
	api := &fakeAppointmentsAPI{}
	svc := NewService(api, logging.Default())

	_, err := svc.BookFor(context.Background(), patientSession(), "u2", Request{
		Date: "2026-09-01", Time: "17:00", Category: "Newborn Care",
		PatientName: "Dev", PatientAge: "1",
	})
	require.NoError(t, err)
	require.NotNil(t, api.staffBooked)
	assert.Equal(t, "u2", api.staffBooked.UserID)
}
