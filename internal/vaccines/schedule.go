// Package vaccines renders the clinic's immunization schedule against a
// child's recorded doses. The schedule itself is static; the completion
// state lives on the child's profile upstream.
package vaccines

import (
	"strings"

	"github.com/pediclinic/portal/internal/clinicapi"
)

// Dose is one scheduled vaccine dose.
type Dose struct {
	Name string `json:"name"`
}

// AgeGroup is one row of the schedule.
type AgeGroup struct {
	Age   string `json:"age"`
	Doses []Dose `json:"doses"`
}

// schedule follows the IAP immunization timetable the clinic administers.
var schedule = []AgeGroup{
	{Age: "Birth", Doses: doses("BCG", "OPV 0", "Hep-B 1")},
	{Age: "6 Weeks", Doses: doses("DTwP 1", "IPV 1", "Hep-B 2", "Hib 1", "Rotavirus 1", "PCV 1")},
	{Age: "10 Weeks", Doses: doses("DTwP 2", "IPV 2", "Hib 2", "Rotavirus 2", "PCV 2")},
	{Age: "14 Weeks", Doses: doses("DTwP 3", "IPV 3", "Hib 3", "Rotavirus 3", "PCV 3")},
	{Age: "6 Months", Doses: doses("OPV 1", "Hep-B 3")},
	{Age: "9 Months", Doses: doses("OPV 2", "MMR 1")},
	{Age: "9-12 Months", Doses: doses("Typhoid Conjugate Vaccine")},
	{Age: "15 Months", Doses: doses("MMR 2", "Varicella 1", "PCV Booster")},
	{Age: "16-18 Months", Doses: doses("DTwP B1", "IPV B1", "Hib B1")},
	{Age: "18 Months", Doses: doses("Hep-A 1")},
	{Age: "2 Years", Doses: doses("Hep-A 2")},
	{Age: "4-6 Years", Doses: doses("DTwP B2", "OPV 3", "Varicella 2", "MMR 3")},
}

func doses(names ...string) []Dose {
	out := make([]Dose, len(names))
	for i, n := range names {
		out[i] = Dose{Name: n}
	}
	return out
}

// Schedule returns the full timetable.
func Schedule() []AgeGroup {
	out := make([]AgeGroup, len(schedule))
	copy(out, schedule)
	return out
}

// Known reports whether name is a scheduled dose. Matching is
// case-insensitive because the records come back from a free-text store.
func Known(name string) bool {
	for _, g := range schedule {
		for _, d := range g.Doses {
			if strings.EqualFold(d.Name, name) {
				return true
			}
		}
	}
	return false
}

// totalDoses is the denominator for progress.
func totalDoses() int {
	n := 0
	for _, g := range schedule {
		n += len(g.Doses)
	}
	return n
}

// Card is the schedule annotated with one child's completion state.
type Card struct {
	ChildID   string      `json:"childId"`
	ChildName string      `json:"childName"`
	Groups    []CardGroup `json:"groups"`
	Completed int         `json:"completed"`
	Total     int         `json:"total"`
	Percent   int         `json:"percent"`
}

// CardGroup is one age row of the card.
type CardGroup struct {
	Age   string     `json:"age"`
	Doses []CardDose `json:"doses"`
}

// CardDose is one dose with its recorded state.
type CardDose struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
	DateGiven string `json:"dateGiven,omitempty"`
}

// BuildCard merges the static schedule with the child's vaccination
// records. Records for doses not on the schedule are ignored.
func BuildCard(child clinicapi.Child) Card {
	done := make(map[string]clinicapi.VaccinationRecord, len(child.Vaccinations))
	for _, r := range child.Vaccinations {
		if r.Status == "completed" {
			done[strings.ToLower(r.Name)] = r
		}
	}

	card := Card{
		ChildID:   child.ID,
		ChildName: child.Name,
		Total:     totalDoses(),
	}
	for _, g := range schedule {
		cg := CardGroup{Age: g.Age, Doses: make([]CardDose, 0, len(g.Doses))}
		for _, d := range g.Doses {
			cd := CardDose{Name: d.Name}
			if r, ok := done[strings.ToLower(d.Name)]; ok {
				cd.Completed = true
				if !r.DateGiven.IsZero() {
					cd.DateGiven = r.DateGiven.Format("2006-01-02")
				}
				card.Completed++
			}
			cg.Doses = append(cg.Doses, cd)
		}
		card.Groups = append(card.Groups, cg)
	}
	if card.Total > 0 {
		card.Percent = card.Completed * 100 / card.Total
	}
	return card
}
