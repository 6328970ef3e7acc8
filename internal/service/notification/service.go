package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/luisz08/notif-svc/internal/channel"
	"github.com/luisz08/notif-svc/internal/dedup"
	"github.com/luisz08/notif-svc/internal/model"
	"github.com/luisz08/notif-svc/internal/repository"
	"github.com/luisz08/notif-svc/pkg/messaging"
	"github.com/luisz08/notif-svc/pkg/metrics"
)

// Service orchestrates the delivery of one notification: persist the
// draft as pending, run deduplication, dispatch through the channel
// manager and record the terminal status.
type Service interface {
	// Send reports whether the notification was dispatched. A nil error
	// with a false return means the notification ended duplicate or
	// failed; a non-nil error means the initial persist did not complete
	// and no status was recorded.
	Send(ctx context.Context, draft *model.Notification) (bool, error)
}

type service struct {
	repo     repository.NotificationRepository
	deduper  *dedup.Manager
	channels *channel.Manager
	broker   messaging.Broker
	metrics  *metrics.Metrics
	log      *zerolog.Logger
}

func NewService(
	repo repository.NotificationRepository,
	deduper *dedup.Manager,
	channels *channel.Manager,
	broker messaging.Broker,
	m *metrics.Metrics,
	log *zerolog.Logger,
) Service {
	if broker == nil {
		broker = messaging.NopBroker{}
	}
	return &service{
		repo:     repo,
		deduper:  deduper,
		channels: channels,
		broker:   broker,
		metrics:  m,
		log:      log,
	}
}

func (s *service) Send(ctx context.Context, draft *model.Notification) (bool, error) {
	if draft == nil {
		return false, fmt.Errorf("notification cannot be nil")
	}

	// The pending row is written unconditionally: even a suppressed
	// notification leaves a pending -> duplicate trail in storage.
	n, err := s.repo.CreateFromDraft(ctx, draft)
	if err != nil {
		return false, fmt.Errorf("failed to persist notification: %w", err)
	}

	log := s.log.With().
		Str("notification_id", n.ID.String()).
		Str("channel", n.Channel).
		Logger()
	log.Info().Msg("processing notification")

	shouldSend, err := s.deduper.Handle(ctx, n)
	if err != nil {
		log.Error().Err(err).Msg("deduplication check failed")
		s.finish(ctx, n, model.NotificationStatusFailed, nil)
		return false, nil
	}
	if !shouldSend {
		log.Info().Msg("duplicate notification detected, skipping send")
		s.metrics.DedupSuppressions.Inc()
		s.finish(ctx, n, model.NotificationStatusDuplicate, nil)
		return false, nil
	}

	timer := prometheus.NewTimer(s.metrics.DispatchLatency)
	err = s.dispatch(n)
	timer.ObserveDuration()

	if err != nil {
		log.Error().Err(err).Msg("failed to dispatch notification")
		s.finish(ctx, n, model.NotificationStatusFailed, nil)
		return false, nil
	}

	now := time.Now().UTC()
	s.finish(ctx, n, model.NotificationStatusSent, &now)
	log.Info().Msg("notification sent")
	return true, nil
}

// dispatch shields the pipeline from a panicking channel: any panic is
// mapped to an error so the notification ends failed instead of taking
// down its caller.
func (s *service) dispatch(n *model.Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("channel panicked: %v", r)
		}
	}()
	return s.channels.Send(n)
}

// finish records the terminal status and publishes a lifecycle event.
// Both are best-effort here: the boolean outcome was already decided.
func (s *service) finish(ctx context.Context, n *model.Notification, status model.NotificationStatus, sentAt *time.Time) {
	s.metrics.NotificationsTotal.WithLabelValues(n.Channel, string(status)).Inc()

	if _, err := s.repo.UpdateStatus(ctx, n.ID, status, sentAt); err != nil {
		s.log.Error().Err(err).
			Str("notification_id", n.ID.String()).
			Str("status", string(status)).
			Msg("failed to record terminal status")
	}

	if err := s.broker.Publish(ctx, "notification."+string(status), n); err != nil {
		s.log.Warn().Err(err).
			Str("notification_id", n.ID.String()).
			Msg("failed to publish lifecycle event")
	}
}
