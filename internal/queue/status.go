package queue

import (
	"github.com/pediclinic/portal/internal/clinicapi"
)

// Status is the per-user projection of today's visit queue. Everything
// here is derived from the server-ordered list; the server owns ordering
// and status semantics, the portal only counts.
type Status struct {
	Total            int    `json:"total"`
	CurrentToken     int    `json:"currentToken"`     // 1-based; 0 when the queue is empty or done
	MyToken          int    `json:"myToken"`          // 1-based; 0 when the user has no entry today
	MyAppointmentID  string `json:"myAppointmentId,omitempty"`
	PeopleAhead      int    `json:"peopleAhead"`
	EstimatedWaitMin int    `json:"estimatedWaitMinutes"`
}

// waiting reports whether an entry still occupies the queue ahead of
// later patients. The server's default status is "confirmed", which
// counts the same as booked.
func waiting(status string) bool {
	switch status {
	case clinicapi.StatusBooked, clinicapi.StatusCheckedIn, clinicapi.StatusInProgress, clinicapi.StatusConfirmed:
		return true
	}
	return false
}

// Project derives the user's queue status from today's public queue.
// The current token is the first entry that is neither completed nor
// cancelled; people ahead counts waiting entries strictly before the
// user's own appointment.
func Project(today []clinicapi.Appointment, userID string, minutesPerPatient int) Status {
	st := Status{Total: len(today)}
	if minutesPerPatient <= 0 {
		minutesPerPatient = 15
	}

	myIndex := -1
	for i, a := range today {
		if userID != "" && a.UserID == userID {
			myIndex = i
			st.MyToken = i + 1
			st.MyAppointmentID = a.ID
			break
		}
	}

	for i, a := range today {
		if a.Active() {
			st.CurrentToken = i + 1
			break
		}
	}

	if myIndex < 0 {
		return st
	}
	for i := 0; i < myIndex; i++ {
		if waiting(today[i].Status) {
			st.PeopleAhead++
		}
	}
	st.EstimatedWaitMin = st.PeopleAhead * minutesPerPatient
	return st
}
