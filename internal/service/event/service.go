package event

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/luisz08/notif-svc/internal/event"
	"github.com/luisz08/notif-svc/internal/model"
	"github.com/luisz08/notif-svc/internal/repository"
	"github.com/luisz08/notif-svc/internal/service/notification"
	"github.com/luisz08/notif-svc/pkg/errors"
	"github.com/luisz08/notif-svc/pkg/metrics"
)

// Registrar is the scheduler surface this service needs: registering a
// newly created scheduled event for recurring execution.
type Registrar interface {
	AddScheduledEvent(event *model.Event) bool
}

// RealtimeResult summarizes the synchronous processing of one
// real-time event.
type RealtimeResult struct {
	Event      *model.Event
	Dispatched int
	Total      int
}

type Service struct {
	events   repository.EventRepository
	registry *event.Registry
	notifier notification.Service
	metrics  *metrics.Metrics
	log      *zerolog.Logger
}

func NewService(
	events repository.EventRepository,
	registry *event.Registry,
	notifier notification.Service,
	m *metrics.Metrics,
	log *zerolog.Logger,
) *Service {
	return &Service{
		events:   events,
		registry: registry,
		notifier: notifier,
		metrics:  m,
		log:      log,
	}
}

// ProcessRealtime handles a real-time event synchronously: persist it,
// classify, draft and send every notification, then mark the event
// processed. Classification failures surface to the caller; the event
// record remains as the trail of the rejected attempt.
func (s *Service) ProcessRealtime(ctx context.Context, data model.JSONMap) (*RealtimeResult, error) {
	evt, err := s.events.Create(ctx, model.EventTypeRealtime, data)
	if err != nil {
		return nil, err
	}

	handler, err := s.registry.Classify(evt)
	if err != nil {
		s.metrics.EventsClassified.WithLabelValues(evt.Source(), "rejected").Inc()
		return nil, err
	}
	s.metrics.EventsClassified.WithLabelValues(handler.Source(), "accepted").Inc()

	drafts, err := handler.CreateNotifications()
	if err != nil {
		return nil, err
	}

	result := &RealtimeResult{Event: evt, Total: len(drafts)}
	for _, draft := range drafts {
		ok, err := s.notifier.Send(ctx, draft)
		if err != nil {
			return result, err
		}
		if ok {
			result.Dispatched++
		}
	}

	if err := s.events.MarkProcessed(ctx, evt.ID); err != nil {
		s.log.Error().Err(err).Str("event_id", evt.ID.String()).Msg("failed to mark event processed")
	}

	s.log.Info().
		Str("event_id", evt.ID.String()).
		Int("dispatched", result.Dispatched).
		Int("total", result.Total).
		Msg("real-time event processed")
	return result, nil
}

// CreateScheduled persists a scheduled event and, when enabled,
// registers it with the scheduler. The event data must classify to a
// scheduled handler so malformed registrations are rejected up front.
func (s *Service) CreateScheduled(ctx context.Context, data model.JSONMap, enabled bool, registrar Registrar) (*model.Event, error) {
	evt, err := s.events.Create(ctx, model.EventTypeScheduled, data)
	if err != nil {
		return nil, err
	}

	handler, err := s.registry.Classify(evt)
	if err != nil {
		s.metrics.EventsClassified.WithLabelValues(evt.Source(), "rejected").Inc()
		return nil, err
	}
	if _, ok := handler.(event.ScheduledHandler); !ok {
		return nil, errors.NewBadRequest("event source does not support scheduling", nil)
	}
	s.metrics.EventsClassified.WithLabelValues(handler.Source(), "accepted").Inc()

	if enabled && registrar != nil {
		if !registrar.AddScheduledEvent(evt) {
			return nil, errors.SchedulerRegistration("failed to register event with scheduler", nil)
		}
	}

	s.log.Info().
		Str("event_id", evt.ID.String()).
		Str("cron", evt.CronExpression()).
		Bool("enabled", enabled).
		Msg("scheduled event created")
	return evt, nil
}

// ListScheduled returns all persisted scheduled events.
func (s *Service) ListScheduled(ctx context.Context) ([]*model.Event, error) {
	return s.events.GetScheduled(ctx)
}
