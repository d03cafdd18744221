package vaccines

import (
	"context"
	"errors"
	"time"

	"github.com/pediclinic/portal/internal/clinicapi"
)

// ErrUnknownVaccine rejects toggles for doses not on the schedule.
var ErrUnknownVaccine = errors.New("vaccines: not on the schedule")

type vaccineAPI interface {
	SetVaccineStatus(ctx context.Context, token, childID string, update clinicapi.VaccineUpdate) (*clinicapi.Child, error)
}

// Service toggles dose completion against the clinic API and rebuilds
// the card from the server's answer, so the view never drifts from the
// record of truth.
type Service struct {
	api vaccineAPI
	now func() time.Time
}

// NewService creates a vaccines service.
func NewService(api vaccineAPI) *Service {
	if api == nil {
		panic("vaccines: api required")
	}
	return &Service{api: api, now: time.Now}
}

// SetStatus marks one dose completed or pending and returns the child's
// refreshed card.
func (s *Service) SetStatus(ctx context.Context, token, childID, vaccineName string, completed bool) (Card, error) {
	if !Known(vaccineName) {
		return Card{}, ErrUnknownVaccine
	}
	update := clinicapi.VaccineUpdate{VaccineName: vaccineName, Status: "pending"}
	if completed {
		update.Status = "completed"
		update.DateGiven = s.now()
	}
	child, err := s.api.SetVaccineStatus(ctx, token, childID, update)
	if err != nil {
		return Card{}, err
	}
	return BuildCard(*child), nil
}
