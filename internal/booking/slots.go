package booking

// Clinic consultation hours: morning and evening blocks, half-hour slots.
// At most one appointment per (date, time) pair; the server enforces it,
// this list only drives the grid.
var clinicSlots = []string{
	"10:00", "10:30", "11:00", "11:30", "12:00", "12:30", "13:00",
	"17:00", "17:30", "18:00", "18:30", "19:00", "19:30", "20:00",
}

// Categories a visit can be booked under.
var Categories = []string{
	"General Checkup",
	"Vaccination",
	"Newborn Care",
	"Emergency",
}

// Slots returns the fixed clinic slot grid.
func Slots() []string {
	out := make([]string, len(clinicSlots))
	copy(out, clinicSlots)
	return out
}

// ValidCategory reports whether c is one of the bookable visit reasons.
func ValidCategory(c string) bool {
	for _, cat := range Categories {
		if cat == c {
			return true
		}
	}
	return false
}

// Slot is one entry of the availability grid.
type Slot struct {
	Time   string `json:"time"`
	Booked bool   `json:"booked"`
}
