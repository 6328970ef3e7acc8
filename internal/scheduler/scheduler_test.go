package scheduler

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luisz08/notif-svc/internal/event"
	"github.com/luisz08/notif-svc/internal/model"
	"github.com/luisz08/notif-svc/internal/repository/memory"
	"github.com/luisz08/notif-svc/internal/template"
	"github.com/luisz08/notif-svc/pkg/metrics"
)

type fakeNotifier struct {
	mu    sync.Mutex
	sent  int
	calls int
}

func (f *fakeNotifier) Send(ctx context.Context, draft *model.Notification) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.sent++
	return true, nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testRegistry(t *testing.T) *event.Registry {
	t.Helper()
	dir := t.TempDir()
	content := "Report {{.date}}: {{.total_users}} users"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "daily_statistics_report.tmpl"), []byte(content), 0o644))
	return event.NewRegistry(template.NewManager(dir, time.Minute))
}

func dailyStatData(cron string) model.JSONMap {
	return model.JSONMap{
		"source":        "daily_stat",
		"cron":          cron,
		"query":         "SELECT count(*) FROM users",
		"recipient":     "ops@example.com",
		"slack_channel": "#reports",
	}
}

type fixture struct {
	sched    *Scheduler
	events   *memory.EventRepository
	notifier *fakeNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zerolog.New(io.Discard)
	events := memory.NewEventRepository()
	notifier := &fakeNotifier{}
	sched := New(
		Config{Workers: 2, MisfireGrace: 30 * time.Second},
		events,
		testRegistry(t),
		notifier,
		metrics.NewMetrics(prometheus.NewRegistry(), "test"),
		&logger,
	)
	return &fixture{sched: sched, events: events, notifier: notifier}
}

func (f *fixture) start(t *testing.T) {
	t.Helper()
	require.NoError(t, f.sched.Start(context.Background()))
	t.Cleanup(f.sched.Stop)
}

func TestStartRegistersPersistedScheduledEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	good, err := f.events.Create(ctx, model.EventTypeScheduled, dailyStatData("0 9 * * *"))
	require.NoError(t, err)
	_, err = f.events.Create(ctx, model.EventTypeScheduled, dailyStatData("not a cron"))
	require.NoError(t, err)

	f.start(t)

	status := f.sched.Status()
	assert.Equal(t, "running", status.State)
	require.Len(t, status.Jobs, 1, "the malformed event is skipped, not fatal")
	assert.Equal(t, good.ID.String(), status.Jobs[0].EventID)
	assert.Equal(t, "0 9 * * *", status.Jobs[0].Cron)
	require.NotNil(t, status.Jobs[0].NextRun)
}

func TestStartTwiceIsNoOp(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	require.NoError(t, f.sched.Start(context.Background()))
	assert.Equal(t, "running", f.sched.Status().State)
}

func TestAddScheduledEventWhenStopped(t *testing.T) {
	f := newFixture(t)

	evt := &model.Event{ID: uuid.New(), Type: model.EventTypeScheduled, Data: dailyStatData("0 9 * * *")}
	assert.False(t, f.sched.AddScheduledEvent(evt))
	assert.Equal(t, "stopped", f.sched.Status().State)
}

func TestAddScheduledEventRejectsBadCron(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	evt := &model.Event{ID: uuid.New(), Type: model.EventTypeScheduled, Data: dailyStatData("0 9 * *")}
	assert.False(t, f.sched.AddScheduledEvent(evt), "a five field expression is required")
	assert.Empty(t, f.sched.Status().Jobs)
}

func TestAddScheduledEventRejectsUnschedulableSource(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	evt := &model.Event{
		ID:   uuid.New(),
		Type: model.EventTypeScheduled,
		Data: model.JSONMap{"source": "user_signup"},
	}
	assert.False(t, f.sched.AddScheduledEvent(evt))
}

func TestRemoveScheduledEvent(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	evt := &model.Event{ID: uuid.New(), Type: model.EventTypeScheduled, Data: dailyStatData("0 9 * * *")}
	require.True(t, f.sched.AddScheduledEvent(evt))
	require.Len(t, f.sched.Status().Jobs, 1)

	assert.True(t, f.sched.RemoveScheduledEvent(evt.ID))
	assert.Empty(t, f.sched.Status().Jobs)

	assert.False(t, f.sched.RemoveScheduledEvent(evt.ID), "removing twice reports no job")
}

func TestUpdateScheduledEventReplacesCron(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	evt := &model.Event{ID: uuid.New(), Type: model.EventTypeScheduled, Data: dailyStatData("0 9 * * *")}
	require.True(t, f.sched.AddScheduledEvent(evt))

	evt.Data = dailyStatData("30 18 * * *")
	require.True(t, f.sched.UpdateScheduledEvent(evt))

	status := f.sched.Status()
	require.Len(t, status.Jobs, 1)
	assert.Equal(t, "30 18 * * *", status.Jobs[0].Cron)
}

func TestRunJobSendsNotifications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	evt, err := f.events.Create(ctx, model.EventTypeScheduled, dailyStatData("0 9 * * *"))
	require.NoError(t, err)

	f.sched.runJob(evt.ID)
	assert.Equal(t, 1, f.notifier.count(), "one slack draft per daily stat run")
}

func TestRunJobMissingEvent(t *testing.T) {
	f := newFixture(t)

	// The event was deleted between trigger and execution. The run
	// must end quietly without drafting anything.
	f.sched.runJob(uuid.New())
	assert.Zero(t, f.notifier.count())
}

func TestExecuteSkipsTriggerPastMisfireGrace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	evt, err := f.events.Create(ctx, model.EventTypeScheduled, dailyStatData("0 9 * * *"))
	require.NoError(t, err)
	f.start(t)

	f.sched.execute(trigger{eventID: evt.ID, firedAt: time.Now().Add(-time.Minute)})
	assert.Zero(t, f.notifier.count(), "stale triggers are dropped, not replayed")
}

func TestExecuteSingleFlight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	evt, err := f.events.Create(ctx, model.EventTypeScheduled, dailyStatData("0 9 * * *"))
	require.NoError(t, err)
	f.start(t)

	f.sched.mu.Lock()
	f.sched.states[evt.ID].running = true
	f.sched.mu.Unlock()

	f.sched.execute(trigger{eventID: evt.ID, firedAt: time.Now()})
	assert.Zero(t, f.notifier.count(), "a job already mid-run is not entered twice")
}

func TestExecuteRemovedJob(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	f.sched.execute(trigger{eventID: uuid.New(), firedAt: time.Now()})
	assert.Zero(t, f.notifier.count())
}

func TestStopClearsJobs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.events.Create(ctx, model.EventTypeScheduled, dailyStatData("0 9 * * *"))
	require.NoError(t, err)

	require.NoError(t, f.sched.Start(ctx))
	require.Len(t, f.sched.Status().Jobs, 1)

	f.sched.Stop()
	status := f.sched.Status()
	assert.Equal(t, "stopped", status.State)
	assert.Empty(t, status.Jobs)

	// Stopping again is a no-op.
	f.sched.Stop()
}
