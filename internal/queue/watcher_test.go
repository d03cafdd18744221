package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pediclinic/portal/internal/clinicapi"
)

type fakeWatcherAPI struct {
	mu    sync.Mutex
	today []clinicapi.Appointment
	mine  map[string][]clinicapi.Appointment
	err   error
	polls int
}

func (f *fakeWatcherAPI) TodayQueue(ctx context.Context) ([]clinicapi.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if f.err != nil {
		return nil, f.err
	}
	return f.today, nil
}

func (f *fakeWatcherAPI) MyAppointments(ctx context.Context, token string) ([]clinicapi.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mine[token], nil
}

type fakeSink struct {
	mu        sync.Mutex
	snapshots [][]clinicapi.Appointment
	reminders map[string][]Reminder
	targets   []PushTarget
}

func (f *fakeSink) BroadcastQueue(today []clinicapi.Appointment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots = append(f.snapshots, today)
}

func (f *fakeSink) SendReminders(target PushTarget, reminders []Reminder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reminders == nil {
		f.reminders = make(map[string][]Reminder)
	}
	f.reminders[target.SessionID] = append(f.reminders[target.SessionID], reminders...)
}

func (f *fakeSink) Targets() []PushTarget {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.targets
}

func TestWatcherBroadcastsInitialSnapshot(t *testing.T) {
	api := &fakeWatcherAPI{today: []clinicapi.Appointment{{ID: "a"}}}
	sink := &fakeSink{}
	w := NewWatcher(WatcherConfig{
		API:          api,
		Sink:         sink,
		PollInterval: time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.NotEmpty(t, sink.snapshots, "Run polls once before waiting on the ticker")
	assert.Equal(t, "a", sink.snapshots[0][0].ID)
}

func TestWatcherSkipsBroadcastOnError(t *testing.T) {
	api := &fakeWatcherAPI{err: errors.New("upstream down")}
	sink := &fakeSink{}
	w := NewWatcher(WatcherConfig{API: api, Sink: sink})

	w.PollOnce(context.Background())

	assert.Empty(t, sink.snapshots)
}

func TestWatcherDeliversRemindersPerTarget(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 50, 0, 0, time.UTC)
	scanner := NewReminderScanner(20*time.Minute, time.UTC)
	scanner.now = func() time.Time { return now }

	api := &fakeWatcherAPI{mine: map[string][]clinicapi.Appointment{
		"tok-1": {{ID: "appt-1", Date: "2026-03-02", Time: "10:00", Status: clinicapi.StatusBooked}},
		"tok-2": {},
	}}
	sink := &fakeSink{targets: []PushTarget{
		{SessionID: "sess-1", UserID: "u1", Token: "tok-1"},
		{SessionID: "sess-2", UserID: "u2", Token: "tok-2"},
	}}
	w := NewWatcher(WatcherConfig{API: api, Sink: sink, Scanner: scanner})

	w.remindOnce(context.Background())
	w.remindOnce(context.Background())

	require.Len(t, sink.reminders["sess-1"], 1, "second scan must not refire")
	assert.Equal(t, "appt-1", sink.reminders["sess-1"][0].AppointmentID)
	assert.Empty(t, sink.reminders["sess-2"])
}
