package queue

import (
	"fmt"
	"sync"
	"time"

	"github.com/pediclinic/portal/internal/clinicapi"
)

// Reminder warns a user of an imminent appointment.
type Reminder struct {
	AppointmentID string `json:"appointmentId"`
	PatientName   string `json:"patientName"`
	Time          string `json:"time"`
	MinutesLeft   int    `json:"minutesLeft"`
	Message       string `json:"message"`
}

// ReminderScanner finds appointments starting within the lookahead window
// and guarantees each appointment id alerts at most once per session. The
// guard is in memory only: a new session re-arms every reminder.
type ReminderScanner struct {
	lookahead time.Duration
	loc       *time.Location
	now       func() time.Time

	mu      sync.Mutex
	alerted map[string]map[string]struct{} // session id -> appointment id
}

// NewReminderScanner creates a scanner with the given lookahead window.
func NewReminderScanner(lookahead time.Duration, loc *time.Location) *ReminderScanner {
	if lookahead <= 0 {
		lookahead = 20 * time.Minute
	}
	if loc == nil {
		loc = time.Local
	}
	return &ReminderScanner{
		lookahead: lookahead,
		loc:       loc,
		now:       time.Now,
		alerted:   make(map[string]map[string]struct{}),
	}
}

// Due returns the reminders to surface for one session right now. Only
// appointments scheduled today, in status booked, starting within
// [0, lookahead] qualify, and each id fires once per session.
func (s *ReminderScanner) Due(sessionID string, appts []clinicapi.Appointment) []Reminder {
	now := s.now().In(s.loc)
	today := now.Format("2006-01-02")

	var due []Reminder
	for _, a := range appts {
		if a.Status != clinicapi.StatusBooked || a.Date != today {
			continue
		}
		start, err := time.ParseInLocation("2006-01-02 15:04", a.Date+" "+a.Time, s.loc)
		if err != nil {
			continue
		}
		until := start.Sub(now)
		if until < 0 || until > s.lookahead {
			continue
		}
		if !s.arm(sessionID, a.ID) {
			continue
		}
		minutes := int(until.Minutes())
		due = append(due, Reminder{
			AppointmentID: a.ID,
			PatientName:   a.PatientName,
			Time:          a.Time,
			MinutesLeft:   minutes,
			Message:       fmt.Sprintf("Upcoming appointment for %s at %s (in %d min)", a.PatientName, a.Time, minutes),
		})
	}
	return due
}

// ForgetSession drops the session's fired set, typically on disconnect
// or logout.
func (s *ReminderScanner) ForgetSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.alerted, sessionID)
}

// arm records the (session, appointment) pair; returns false when it has
// already fired.
func (s *ReminderScanner) arm(sessionID, apptID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	fired := s.alerted[sessionID]
	if fired == nil {
		fired = make(map[string]struct{})
		s.alerted[sessionID] = fired
	}
	if _, ok := fired[apptID]; ok {
		return false
	}
	fired[apptID] = struct{}{}
	return true
}
