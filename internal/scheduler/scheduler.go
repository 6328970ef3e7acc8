package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/luisz08/notif-svc/internal/event"
	"github.com/luisz08/notif-svc/internal/model"
	"github.com/luisz08/notif-svc/internal/repository"
	"github.com/luisz08/notif-svc/internal/service/notification"
	"github.com/luisz08/notif-svc/pkg/metrics"
)

const (
	DefaultWorkers      = 20
	DefaultMisfireGrace = 30 * time.Second
)

type Config struct {
	Workers      int
	MisfireGrace time.Duration
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.MisfireGrace <= 0 {
		c.MisfireGrace = DefaultMisfireGrace
	}
	return c
}

// trigger is one cron fire waiting for a worker.
type trigger struct {
	eventID uuid.UUID
	firedAt time.Time
}

// jobState tracks coalescing and single-flight per job id. A trigger
// that fires while another is still queued collapses into it; a
// trigger dequeued while the job is mid-run is skipped.
type jobState struct {
	queued  bool
	running bool
}

// Scheduler drives recurring notification jobs off persisted scheduled
// events. One cron entry per event, keyed by event id; job bodies run
// on a bounded worker pool and never let a failure escape.
type Scheduler struct {
	mu      sync.Mutex
	cfg     Config
	running bool

	events   repository.EventRepository
	registry *event.Registry
	notifier notification.Service

	parser  cron.Parser
	c       *cron.Cron
	entries map[uuid.UUID]cron.EntryID
	specs   map[uuid.UUID]string
	states  map[uuid.UUID]*jobState

	queue  chan trigger
	stopCh chan struct{}
	wg     sync.WaitGroup

	metrics *metrics.Metrics
	log     *zerolog.Logger
}

func New(
	cfg Config,
	events repository.EventRepository,
	registry *event.Registry,
	notifier notification.Service,
	m *metrics.Metrics,
	log *zerolog.Logger,
) *Scheduler {
	return &Scheduler{
		cfg:      cfg.withDefaults(),
		events:   events,
		registry: registry,
		notifier: notifier,
		// Exactly five fields: minute hour dom month dow.
		parser:  cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
		entries: make(map[uuid.UUID]cron.EntryID),
		specs:   make(map[uuid.UUID]string),
		states:  make(map[uuid.UUID]*jobState),
		metrics: m,
		log:     log,
	}
}

// Start bulk-loads persisted scheduled events and registers one cron
// job per event before the engine begins firing. Events whose
// registration fails are skipped and logged, never aborting startup.
// Calling Start on a running scheduler is a warned no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.log.Warn().Msg("scheduler is already running")
		return nil
	}

	s.c = cron.New(cron.WithParser(s.parser))
	s.queue = make(chan trigger, 256)
	s.stopCh = make(chan struct{})

	events, err := s.events.GetScheduled(ctx)
	if err != nil {
		// Registration is all-or-nothing at the load step: without the
		// event list there is nothing to run.
		s.c = nil
		return err
	}

	s.log.Info().Int("count", len(events)).Msg("loading scheduled events")
	for _, evt := range events {
		if err := s.registerLocked(evt); err != nil {
			s.log.Error().Err(err).Str("event_id", evt.ID.String()).Msg("failed to register scheduled event, skipping")
		}
	}

	s.wg.Add(s.cfg.Workers)
	for i := 0; i < s.cfg.Workers; i++ {
		go s.worker()
	}

	s.c.Start()
	s.running = true
	s.log.Info().
		Int("jobs", len(s.entries)).
		Int("workers", s.cfg.Workers).
		Msg("notification scheduler started")
	return nil
}

// Stop gracefully shuts down the cron engine and the worker pool.
// In-flight jobs run to completion. Stopping a stopped scheduler is a
// warned no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		s.log.Warn().Msg("scheduler is not running")
		return
	}
	s.running = false
	c := s.c
	s.c = nil
	close(s.stopCh)
	s.entries = make(map[uuid.UUID]cron.EntryID)
	s.specs = make(map[uuid.UUID]string)
	s.states = make(map[uuid.UUID]*jobState)
	s.metrics.SchedulerJobsActive.Set(0)
	s.mu.Unlock()

	<-c.Stop().Done()
	s.wg.Wait()
	s.log.Info().Msg("notification scheduler stopped")
}

// AddScheduledEvent registers a job for a newly created scheduled
// event. Returns false when the scheduler is not running or the
// registration fails (missing or malformed cron).
func (s *Scheduler) AddScheduledEvent(evt *model.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		s.log.Warn().Msg("scheduler is not running, cannot add event")
		return false
	}
	if err := s.registerLocked(evt); err != nil {
		s.log.Error().Err(err).Str("event_id", evt.ID.String()).Msg("failed to add scheduled event")
		return false
	}
	s.log.Info().Str("event_id", evt.ID.String()).Msg("added scheduled event")
	return true
}

// RemoveScheduledEvent unregisters the job for an event id. An
// in-flight execution runs to completion; only future triggers stop.
func (s *Scheduler) RemoveScheduledEvent(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, ok := s.entries[id]
	if !ok {
		s.log.Warn().Str("event_id", id.String()).Msg("no job registered for event")
		return false
	}
	s.c.Remove(entryID)
	delete(s.entries, id)
	delete(s.specs, id)
	delete(s.states, id)
	s.metrics.SchedulerJobsActive.Set(float64(len(s.entries)))
	s.log.Info().Str("event_id", id.String()).Msg("removed scheduled event")
	return true
}

// UpdateScheduledEvent re-registers a job as remove-then-add. Best
// effort: if the add fails after the remove succeeded the event is
// left unscheduled until corrected.
func (s *Scheduler) UpdateScheduledEvent(evt *model.Event) bool {
	s.RemoveScheduledEvent(evt.ID)
	return s.AddScheduledEvent(evt)
}

// registerLocked validates the event and adds its cron entry. Caller
// holds s.mu.
func (s *Scheduler) registerLocked(evt *model.Event) error {
	handler, err := s.registry.Classify(evt)
	if err != nil {
		return err
	}
	sched, ok := handler.(event.ScheduledHandler)
	if !ok {
		return errUnschedulable(evt.Source())
	}

	spec := sched.CronExpression()
	if _, err := s.parser.Parse(spec); err != nil {
		return errBadCron(spec, err)
	}

	// Replace any existing entry for this event id.
	if old, ok := s.entries[evt.ID]; ok {
		s.c.Remove(old)
	}

	eventID := evt.ID
	entryID, err := s.c.AddFunc(spec, func() { s.enqueue(eventID) })
	if err != nil {
		return errBadCron(spec, err)
	}

	s.entries[evt.ID] = entryID
	s.specs[evt.ID] = spec
	s.states[evt.ID] = &jobState{}
	s.metrics.SchedulerJobsActive.Set(float64(len(s.entries)))
	s.log.Info().Str("event_id", evt.ID.String()).Str("cron", spec).Msg("registered job")
	return nil
}

// enqueue hands a fire to the worker pool, coalescing with any trigger
// for the same job that is still waiting.
func (s *Scheduler) enqueue(eventID uuid.UUID) {
	s.mu.Lock()
	st, ok := s.states[eventID]
	if !ok || st.queued {
		s.mu.Unlock()
		return
	}
	st.queued = true
	s.mu.Unlock()

	select {
	case s.queue <- trigger{eventID: eventID, firedAt: time.Now()}:
	case <-s.stopCh:
	}
}

func (s *Scheduler) worker() {
	defer s.wg.Done()
	for {
		select {
		case <-s.stopCh:
			return
		case t := <-s.queue:
			s.execute(t)
		}
	}
}

// execute runs one trigger: enforce single-flight and the misfire
// grace period, then process the job. Panics and errors are logged and
// contained so one job can never take down the scheduler.
func (s *Scheduler) execute(t trigger) {
	s.mu.Lock()
	st, ok := s.states[t.eventID]
	if !ok {
		// Job was removed while its trigger waited in the queue.
		s.mu.Unlock()
		return
	}
	st.queued = false
	if st.running {
		s.mu.Unlock()
		s.metrics.SchedulerJobRuns.WithLabelValues("skipped").Inc()
		return
	}
	st.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if st, ok := s.states[t.eventID]; ok {
			st.running = false
		}
		s.mu.Unlock()
	}()

	if delay := time.Since(t.firedAt); delay > s.cfg.MisfireGrace {
		s.log.Warn().
			Str("event_id", t.eventID.String()).
			Dur("delay", delay).
			Msg("trigger exceeded misfire grace period, skipping run")
		s.metrics.SchedulerJobRuns.WithLabelValues("misfired").Inc()
		return
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error().
				Str("event_id", t.eventID.String()).
				Interface("panic", r).
				Msg("panic in scheduled job")
			s.metrics.SchedulerJobRuns.WithLabelValues("panicked").Inc()
		}
	}()

	timer := prometheus.NewTimer(s.metrics.SchedulerJobDuration)
	defer timer.ObserveDuration()
	s.runJob(t.eventID)
}

// runJob is the job body: reload the event, rebuild its handler,
// draft and send. Each run uses a fresh request-scoped context.
func (s *Scheduler) runJob(eventID uuid.UUID) {
	ctx := context.Background()
	log := s.log.With().Str("event_id", eventID.String()).Logger()
	log.Info().Msg("processing scheduled event")

	evt, err := s.events.GetScheduledByID(ctx, eventID)
	if err != nil {
		log.Error().Err(err).Msg("failed to load scheduled event")
		s.metrics.SchedulerJobRuns.WithLabelValues("failed").Inc()
		return
	}
	if evt == nil {
		log.Error().Msg("scheduled event not found in database")
		s.metrics.SchedulerJobRuns.WithLabelValues("failed").Inc()
		return
	}

	handler, err := s.registry.Classify(evt)
	if err != nil {
		log.Error().Err(err).Msg("failed to rebuild event handler")
		s.metrics.SchedulerJobRuns.WithLabelValues("failed").Inc()
		return
	}

	drafts, err := handler.CreateNotifications()
	if err != nil {
		log.Error().Err(err).Msg("failed to create notifications")
		s.metrics.SchedulerJobRuns.WithLabelValues("failed").Inc()
		return
	}

	sent := 0
	for _, draft := range drafts {
		ok, err := s.notifier.Send(ctx, draft)
		if err != nil {
			log.Error().Err(err).Msg("failed to send notification")
			continue
		}
		if ok {
			sent++
		}
	}

	log.Info().
		Int("sent", sent).
		Int("total", len(drafts)).
		Msg("scheduled event processed")
	s.metrics.SchedulerJobRuns.WithLabelValues("success").Inc()
}
