package clinicapi

import "time"

// Appointment lifecycle statuses as reported by the clinic API.
const (
	StatusConfirmed  = "confirmed"
	StatusBooked     = "booked"
	StatusCheckedIn  = "checked-in"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// User roles.
const (
	RolePatient      = "patient"
	RoleAdmin        = "admin"
	RoleReceptionist = "receptionist"
)

// User is the parent account as the clinic API serializes it.
// The API is Mongo-backed, so document ids arrive under "_id".
type User struct {
	ID       string  `json:"_id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone"`
	Role     string  `json:"role"`
	Children []Child `json:"children"`
}

// Child is a health profile owned by exactly one User.
type Child struct {
	ID           string              `json:"_id"`
	Name         string              `json:"name"`
	LastName     string              `json:"lastName,omitempty"`
	Age          int                 `json:"age"`
	Gender       string              `json:"gender,omitempty"`
	BloodGroup   string              `json:"bloodGroup,omitempty"`
	Weight       float64             `json:"weight,omitempty"`
	Height       float64             `json:"height,omitempty"`
	Photo        string              `json:"photo,omitempty"`
	Vaccinations []VaccinationRecord `json:"vaccinations"`
}

// VaccinationRecord tracks one vaccine against the static schedule.
type VaccinationRecord struct {
	Name      string    `json:"name"`
	Status    string    `json:"status"` // "pending" or "completed"
	DateGiven time.Time `json:"dateGiven,omitempty"`
}

// Appointment is a clinic visit slot. Date is "2006-01-02", Time "15:04";
// the (date, time) pair is the contended resource and the server enforces
// single booking, the portal only renders availability.
type Appointment struct {
	ID          string `json:"_id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	PatientName string `json:"patientName"`
	PatientAge  string `json:"patientAge"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	UserID      string `json:"userId"`
}

// Active reports whether the appointment still occupies a place in the
// day's queue.
func (a Appointment) Active() bool {
	switch a.Status {
	case StatusCompleted, StatusCancelled:
		return false
	}
	return true
}

// Notification is a per-user message created server-side on appointment
// lifecycle events.
type Notification struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"` // info, success, warning, error
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// Review is write-only from the portal's perspective.
type Review struct {
	Name    string    `json:"name"`
	Email   string    `json:"email,omitempty"`
	Message string    `json:"message"`
	Rating  int       `json:"rating"`
	Date    time.Time `json:"date,omitempty"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// RegisterRequest creates a new parent account; OTP must have been issued
// to the phone beforehand.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	OTP      string `json:"otp"`
}

// ProfileUpdate mutates the parent profile.
type ProfileUpdate struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// ChildInput creates a child profile.
type ChildInput struct {
	Name       string  `json:"name"`
	LastName   string  `json:"lastName,omitempty"`
	Age        int     `json:"age"`
	Gender     string  `json:"gender,omitempty"`
	BloodGroup string  `json:"bloodGroup,omitempty"`
	Weight     float64 `json:"weight,omitempty"`
	Height     float64 `json:"height,omitempty"`
}

// VaccineUpdate toggles one vaccine on a child.
type VaccineUpdate struct {
	VaccineName string    `json:"vaccineName"`
	Status      string    `json:"status"`
	DateGiven   time.Time `json:"dateGiven"`
}

// BookingRequest creates an appointment for the authenticated parent.
type BookingRequest struct {
	PatientName string `json:"patientName"`
	PatientAge  string `json:"patientAge"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Category    string `json:"category"`
	UserID      string `json:"userId"`
}

// StaffBookingRequest books on behalf of a searched patient.
type StaffBookingRequest struct {
	BookingRequest
}

// RescheduleRequest moves an appointment; Message is relayed to the patient.
type RescheduleRequest struct {
	Date    string `json:"date"`
	Time    string `json:"time"`
	Message string `json:"message,omitempty"`
}

// QuickRegisterRequest registers a walk-in family at the front desk.
type QuickRegisterRequest struct {
	ParentName  string       `json:"parentName"`
	ParentPhone string       `json:"parentPhone"`
	Children    []ChildInput `json:"children"`
}
