package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pediclinic/portal/internal/clinicapi"
	"github.com/pediclinic/portal/internal/session"
	"github.com/pediclinic/portal/pkg/logging"
)

// ValidationError rejects a booking before any network call is made. The
// text is shown to the user as-is.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// IsValidation reports whether err is a client-side validation rejection.
func IsValidation(err error) bool {
	_, ok := err.(ValidationError)
	return ok
}

const (
	errNoDateTime = ValidationError("Please select a date and time.")
	errNoCategory = ValidationError("Please select a reason for visit.")
	errBadCategory = ValidationError("Please select a valid reason for visit.")
	errNoPatient  = ValidationError("Please provide patient details.")
	errNoChild    = ValidationError("Selected child was not found on your profile.")
)

// optimisticTTL bounds how long a locally appended booking masks the slot
// while the server list catches up. The next fetch is authoritative.
const optimisticTTL = 2 * time.Minute

// appointmentsAPI is the slice of the clinic API the flow needs.
type appointmentsAPI interface {
	AppointmentsByDate(ctx context.Context, date string) ([]clinicapi.Appointment, error)
	CreateAppointment(ctx context.Context, token string, req clinicapi.BookingRequest) (*clinicapi.Appointment, error)
	StaffBook(ctx context.Context, token string, req clinicapi.StaffBookingRequest) (*clinicapi.Appointment, error)
}

// Service drives the booking flow: date → availability → slot →
// details → submission.
type Service struct {
	api    appointmentsAPI
	logger *logging.Logger

	mu         sync.Mutex
	optimistic map[string]map[string]time.Time // date -> time -> appended at
}

// NewService creates the booking flow service.
func NewService(api appointmentsAPI, logger *logging.Logger) *Service {
	if api == nil {
		panic("booking: appointments API required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		api:        api,
		logger:     logger,
		optimistic: make(map[string]map[string]time.Time),
	}
}

// Availability returns the slot grid for a date. The booked set always
// comes fresh from the server; recent local bookings are overlaid so a
// just-booked slot shows disabled before the server list reflects it.
func (s *Service) Availability(ctx context.Context, date string) ([]Slot, error) {
	if date == "" {
		return nil, errNoDateTime
	}
	appts, err := s.api.AppointmentsByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("booking: fetch availability: %w", err)
	}

	booked := make(map[string]bool, len(appts))
	for _, a := range appts {
		booked[a.Time] = true
	}
	s.overlayOptimistic(date, booked)

	grid := make([]Slot, 0, len(clinicSlots))
	for _, t := range clinicSlots {
		grid = append(grid, Slot{Time: t, Booked: booked[t]})
	}
	return grid, nil
}

// Request carries one booking submission. Either ChildID or the manual
// PatientName/PatientAge pair identifies the patient.
type Request struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	Category    string `json:"category"`
	ChildID     string `json:"childId,omitempty"`
	PatientName string `json:"patientName,omitempty"`
	PatientAge  string `json:"patientAge,omitempty"`
}

// Book validates and submits an appointment for the session's user.
// Validation failures never reach the network.
func (s *Service) Book(ctx context.Context, sess *session.Session, req Request) (*clinicapi.Appointment, error) {
	body, err := s.buildRequest(sess, req)
	if err != nil {
		return nil, err
	}

	appt, err := s.api.CreateAppointment(ctx, sess.Token, *body)
	if err != nil {
		return nil, err
	}
	s.appendOptimistic(req.Date, req.Time)
	s.logger.Info("appointment booked",
		"user_id", sess.User.ID,
		"date", req.Date,
		"time", req.Time,
		"category", req.Category,
	)
	return appt, nil
}

// BookFor submits a staff booking on behalf of another parent account.
func (s *Service) BookFor(ctx context.Context, sess *session.Session, userID string, req Request) (*clinicapi.Appointment, error) {
	if userID == "" {
		return nil, errNoPatient
	}
	if err := validateCore(req); err != nil {
		return nil, err
	}
	if req.PatientName == "" || req.PatientAge == "" {
		return nil, errNoPatient
	}

	appt, err := s.api.StaffBook(ctx, sess.Token, clinicapi.StaffBookingRequest{
		BookingRequest: clinicapi.BookingRequest{
			PatientName: req.PatientName,
			PatientAge:  req.PatientAge,
			Date:        req.Date,
			Time:        req.Time,
			Category:    req.Category,
			UserID:      userID,
		},
	})
	if err != nil {
		return nil, err
	}
	s.appendOptimistic(req.Date, req.Time)
	s.logger.Info("staff booking created", "staff_id", sess.User.ID, "patient_user_id", userID)
	return appt, nil
}

func (s *Service) buildRequest(sess *session.Session, req Request) (*clinicapi.BookingRequest, error) {
	if err := validateCore(req); err != nil {
		return nil, err
	}

	name, age := req.PatientName, req.PatientAge
	if req.ChildID != "" {
		child, ok := findChild(sess.User, req.ChildID)
		if !ok {
			return nil, errNoChild
		}
		name = child.Name
		age = fmt.Sprintf("%d", child.Age)
	}
	if name == "" || age == "" {
		return nil, errNoPatient
	}

	return &clinicapi.BookingRequest{
		PatientName: name,
		PatientAge:  age,
		Date:        req.Date,
		Time:        req.Time,
		Category:    req.Category,
		UserID:      sess.User.ID,
	}, nil
}

func validateCore(req Request) error {
	if req.Date == "" || req.Time == "" {
		return errNoDateTime
	}
	if req.Category == "" {
		return errNoCategory
	}
	if !ValidCategory(req.Category) {
		return errBadCategory
	}
	return nil
}

func findChild(user *clinicapi.User, childID string) (clinicapi.Child, bool) {
	if user == nil {
		return clinicapi.Child{}, false
	}
	for _, c := range user.Children {
		if c.ID == childID {
			return c, true
		}
	}
	return clinicapi.Child{}, false
}

func (s *Service) appendOptimistic(date, slot string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.optimistic[date] == nil {
		s.optimistic[date] = make(map[string]time.Time)
	}
	s.optimistic[date][slot] = time.Now()
}

// overlayOptimistic marks recent local bookings booked and drops entries
// the server now reports itself, or that have aged out.
func (s *Service) overlayOptimistic(date string, booked map[string]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := s.optimistic[date]
	for slot, at := range pending {
		if booked[slot] || time.Since(at) > optimisticTTL {
			delete(pending, slot)
			continue
		}
		booked[slot] = true
	}
	if len(pending) == 0 {
		delete(s.optimistic, date)
	}
}
