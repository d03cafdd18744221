// Package notifications keeps a per-user view of server notifications
// with an optimistic read state, so the bell badge updates immediately
// while the server write happens behind it.
package notifications

import (
	"context"
	"sync"

	"github.com/pediclinic/portal/internal/clinicapi"
	"github.com/pediclinic/portal/pkg/logging"
)

// Inbox is what handlers render: the list plus the unread badge count.
type Inbox struct {
	Items  []clinicapi.Notification `json:"items"`
	Unread int                      `json:"unread"`
}

type notificationsAPI interface {
	Notifications(ctx context.Context, token string) ([]clinicapi.Notification, error)
	MarkNotificationRead(ctx context.Context, token, id string) error
}

// Service fronts the clinic notifications API. Read state marked locally
// sticks until the server catches up, so a refresh right after marking
// does not resurrect the unread badge.
type Service struct {
	api    notificationsAPI
	logger *logging.Logger

	mu       sync.Mutex
	readByMe map[string]map[string]struct{} // user id -> notification ids marked read locally
}

// NewService creates a notifications service.
func NewService(api notificationsAPI, logger *logging.Logger) *Service {
	if api == nil {
		panic("notifications: api required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		api:      api,
		logger:   logger,
		readByMe: make(map[string]map[string]struct{}),
	}
}

// Inbox fetches the user's notifications and overlays local read marks.
func (s *Service) Inbox(ctx context.Context, userID, token string) (Inbox, error) {
	items, err := s.api.Notifications(ctx, token)
	if err != nil {
		return Inbox{}, err
	}

	s.mu.Lock()
	stored := s.readByMe[userID]
	// Drop local marks the server has confirmed; keeps the overlay small.
	for id := range stored {
		confirmed := false
		for _, n := range items {
			if n.ID == id {
				confirmed = n.Read
				break
			}
		}
		if confirmed {
			delete(stored, id)
		}
	}
	local := make(map[string]struct{}, len(stored))
	for id := range stored {
		local[id] = struct{}{}
	}
	s.mu.Unlock()

	inbox := Inbox{Items: make([]clinicapi.Notification, len(items))}
	copy(inbox.Items, items)
	for i := range inbox.Items {
		if _, ok := local[inbox.Items[i].ID]; ok {
			inbox.Items[i].Read = true
		}
		if !inbox.Items[i].Read {
			inbox.Unread++
		}
	}
	return inbox, nil
}

// MarkRead marks one notification read. Idempotent: repeat calls for an
// already-read id succeed without another server write.
func (s *Service) MarkRead(ctx context.Context, userID, token, id string) error {
	s.mu.Lock()
	local := s.readByMe[userID]
	if local == nil {
		local = make(map[string]struct{})
		s.readByMe[userID] = local
	}
	if _, ok := local[id]; ok {
		s.mu.Unlock()
		return nil
	}
	local[id] = struct{}{}
	s.mu.Unlock()

	if err := s.api.MarkNotificationRead(ctx, token, id); err != nil {
		// Roll the optimistic mark back so the next click retries the
		// server write.
		s.mu.Lock()
		delete(local, id)
		s.mu.Unlock()
		s.logger.Warn("mark notification read failed", "notification_id", id, "error", err)
		return err
	}
	return nil
}

// Forget drops the user's local overlay, typically on logout.
func (s *Service) Forget(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.readByMe, userID)
}
