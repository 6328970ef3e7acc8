// Package memory provides in-memory repository implementations backed
// by maps. They honor the same contracts as the postgres repositories
// and are used by tests and local experiments.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/luisz08/notif-svc/internal/model"
	"github.com/luisz08/notif-svc/internal/repository"
)

type EventRepository struct {
	mu     sync.Mutex
	events map[uuid.UUID]*model.Event
}

func NewEventRepository() *EventRepository {
	return &EventRepository{events: make(map[uuid.UUID]*model.Event)}
}

func (r *EventRepository) Create(ctx context.Context, eventType model.EventType, data model.JSONMap) (*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	event := &model.Event{
		ID:        uuid.New(),
		Type:      eventType,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}
	r.events[event.ID] = event
	return copyEvent(event), nil
}

func (r *EventRepository) Get(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyEvent(r.events[id]), nil
}

func (r *EventRepository) GetUnprocessed(ctx context.Context) ([]*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*model.Event
	for _, e := range r.events {
		if !e.Processed {
			out = append(out, copyEvent(e))
		}
	}
	sortEvents(out)
	return out, nil
}

func (r *EventRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.events[id]
	if !ok {
		return fmt.Errorf("event %s not found", id)
	}
	now := time.Now().UTC()
	e.Processed = true
	e.ProcessedAt = &now
	return nil
}

func (r *EventRepository) GetScheduled(ctx context.Context) ([]*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*model.Event
	for _, e := range r.events {
		if e.Type == model.EventTypeScheduled {
			out = append(out, copyEvent(e))
		}
	}
	sortEvents(out)
	return out, nil
}

func (r *EventRepository) GetScheduledByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.events[id]
	if !ok || e.Type != model.EventTypeScheduled {
		return nil, nil
	}
	return copyEvent(e), nil
}

// Delete removes an event outright. Not part of the repository
// contract; used by tests to simulate an event vanishing under a job.
func (r *EventRepository) Delete(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.events, id)
}

type NotificationRepository struct {
	mu            sync.Mutex
	notifications map[uuid.UUID]*model.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{notifications: make(map[uuid.UUID]*model.Notification)}
}

func (r *NotificationRepository) CreateFromDraft(ctx context.Context, draft *model.Notification) (*model.Notification, error) {
	if draft == nil {
		return nil, fmt.Errorf("draft cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	n := *draft
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if n.Subject == "" {
		n.Subject = "No Subject"
	}
	n.Status = model.NotificationStatusPending
	n.SentAt = nil

	r.notifications[n.ID] = &n
	out := n
	return &out, nil
}

func (r *NotificationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	if !ok {
		return nil, nil
	}
	out := *n
	return &out, nil
}

func (r *NotificationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.NotificationStatus, sentAt *time.Time) (*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	if !ok {
		return nil, nil
	}
	// Terminal statuses are single-shot: only a pending row may move.
	if n.Status != model.NotificationStatusPending {
		return nil, nil
	}
	n.Status = status
	if sentAt != nil {
		n.SentAt = sentAt
	} else if status == model.NotificationStatusSent {
		now := time.Now().UTC()
		n.SentAt = &now
	}
	out := *n
	return &out, nil
}

func (r *NotificationRepository) ExistsWithHashSince(ctx context.Context, excludeID uuid.UUID, contentHash string, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().UTC().Add(-window)
	for _, n := range r.notifications {
		if n.ID == excludeID {
			continue
		}
		if n.ContentHash == contentHash && n.CreatedAt.After(cutoff) {
			return true, nil
		}
	}
	return false, nil
}

func (r *NotificationRepository) GetStats(ctx context.Context) (*model.NotificationStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := &model.NotificationStats{}
	for _, n := range r.notifications {
		stats.Total++
		switch n.Status {
		case model.NotificationStatusSent:
			stats.Sent++
		case model.NotificationStatusFailed:
			stats.Failed++
		case model.NotificationStatusPending:
			stats.Pending++
		case model.NotificationStatusDuplicate:
			stats.Duplicates++
		}
	}
	return stats, nil
}

type DeduplicationRepository struct {
	mu      sync.Mutex
	entries []*model.DeduplicationLog
}

func NewDeduplicationRepository() *DeduplicationRepository {
	return &DeduplicationRepository{}
}

func (r *DeduplicationRepository) LogDeduplication(ctx context.Context, contentHash string) (*model.DeduplicationLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := &model.DeduplicationLog{
		ID:          uuid.New(),
		ContentHash: contentHash,
		CreatedAt:   time.Now().UTC(),
	}
	r.entries = append(r.entries, entry)
	out := *entry
	return &out, nil
}

func (r *DeduplicationRepository) CleanupOldLogs(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var kept []*model.DeduplicationLog
	var removed int64
	for _, e := range r.entries {
		if e.CreatedAt.Before(before) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	r.entries = kept
	return removed, nil
}

// Entries returns a snapshot of the logged suppressions.
func (r *DeduplicationRepository) Entries() []*model.DeduplicationLog {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*model.DeduplicationLog, len(r.entries))
	for i, e := range r.entries {
		c := *e
		out[i] = &c
	}
	return out
}

func copyEvent(e *model.Event) *model.Event {
	if e == nil {
		return nil
	}
	out := *e
	return &out
}

func sortEvents(events []*model.Event) {
	sort.Slice(events, func(i, j int) bool {
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})
}

var (
	_ repository.EventRepository         = (*EventRepository)(nil)
	_ repository.NotificationRepository  = (*NotificationRepository)(nil)
	_ repository.DeduplicationRepository = (*DeduplicationRepository)(nil)
)
