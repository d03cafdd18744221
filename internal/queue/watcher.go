package queue

import (
	"context"
	"math/rand"
	"time"

	"github.com/pediclinic/portal/internal/clinicapi"
	"github.com/pediclinic/portal/internal/observability/metrics"
	"github.com/pediclinic/portal/pkg/logging"
)

// PushTarget identifies one connected browser session the watcher can
// address.
type PushTarget struct {
	SessionID string
	UserID    string
	Token     string
}

// Sink receives queue snapshots and reminders, typically the push hub.
type Sink interface {
	BroadcastQueue(today []clinicapi.Appointment)
	SendReminders(target PushTarget, reminders []Reminder)
	Targets() []PushTarget
}

// watcherAPI is the slice of the clinic API the watcher needs.
type watcherAPI interface {
	TodayQueue(ctx context.Context) ([]clinicapi.Appointment, error)
	MyAppointments(ctx context.Context, token string) ([]clinicapi.Appointment, error)
}

// Watcher polls today's public queue and scans for imminent appointments.
// Both cadences are configurable; the whole thing stops with its context,
// so no timer leaks past shutdown.
type Watcher struct {
	api     watcherAPI
	sink    Sink
	scanner *ReminderScanner
	metrics *metrics.PortalMetrics
	logger  *logging.Logger

	pollInterval     time.Duration
	pollJitter       time.Duration
	reminderInterval time.Duration
}

// WatcherConfig wires a Watcher.
type WatcherConfig struct {
	API              watcherAPI
	Sink             Sink
	Scanner          *ReminderScanner
	Metrics          *metrics.PortalMetrics
	Logger           *logging.Logger
	PollInterval     time.Duration
	PollJitter       time.Duration
	ReminderInterval time.Duration
}

// NewWatcher creates a queue watcher.
func NewWatcher(cfg WatcherConfig) *Watcher {
	if cfg.API == nil {
		panic("queue: watcher API required")
	}
	if cfg.Sink == nil {
		panic("queue: watcher sink required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	scanner := cfg.Scanner
	if scanner == nil {
		scanner = NewReminderScanner(0, nil)
	}
	w := &Watcher{
		api:              cfg.API,
		sink:             cfg.Sink,
		scanner:          scanner,
		metrics:          cfg.Metrics,
		logger:           logger,
		pollInterval:     cfg.PollInterval,
		pollJitter:       cfg.PollJitter,
		reminderInterval: cfg.ReminderInterval,
	}
	if w.pollInterval <= 0 {
		w.pollInterval = 30 * time.Second
	}
	if w.reminderInterval <= 0 {
		w.reminderInterval = time.Minute
	}
	return w
}

// Run polls until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	poll := time.NewTicker(w.pollInterval)
	defer poll.Stop()
	remind := time.NewTicker(w.reminderInterval)
	defer remind.Stop()

	w.pollOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-poll.C:
			w.sleepJitter(ctx)
			w.pollOnce(ctx)
		case <-remind.C:
			w.remindOnce(ctx)
		}
	}
}

// PollOnce fetches and broadcasts a single snapshot. Exposed so handlers
// can force a refresh after a mutation.
func (w *Watcher) PollOnce(ctx context.Context) {
	w.pollOnce(ctx)
}

func (w *Watcher) pollOnce(ctx context.Context) {
	today, err := w.api.TodayQueue(ctx)
	if err != nil {
		w.metrics.ObservePollCycle("error")
		w.logger.Warn("queue poll failed", "error", err)
		return
	}
	w.metrics.ObservePollCycle("ok")
	w.sink.BroadcastQueue(today)
}

func (w *Watcher) remindOnce(ctx context.Context) {
	for _, target := range w.sink.Targets() {
		appts, err := w.api.MyAppointments(ctx, target.Token)
		if err != nil {
			w.logger.Debug("reminder fetch failed", "session_id", target.SessionID, "error", err)
			continue
		}
		due := w.scanner.Due(target.SessionID, appts)
		if len(due) == 0 {
			continue
		}
		for range due {
			w.metrics.ObserveReminderFired()
		}
		w.sink.SendReminders(target, due)
	}
}

func (w *Watcher) sleepJitter(ctx context.Context) {
	if w.pollJitter <= 0 {
		return
	}
	d := time.Duration(rand.Int63n(int64(w.pollJitter)))
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
