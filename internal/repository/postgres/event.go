package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/luisz08/notif-svc/internal/model"
	"github.com/luisz08/notif-svc/internal/repository"
)

type eventRepository struct {
	BaseRepository
}

func NewEventRepository(base BaseRepository) repository.EventRepository {
	return &eventRepository{base}
}

func (r *eventRepository) Create(ctx context.Context, eventType model.EventType, data model.JSONMap) (*model.Event, error) {
	event := &model.Event{
		ID:        uuid.New(),
		Type:      eventType,
		Data:      data,
		Processed: false,
		CreatedAt: time.Now().UTC(),
	}

	query := `
		INSERT INTO events (id, type, data, processed, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.Type,
		event.Data,
		event.Processed,
		event.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

func (r *eventRepository) Get(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	query := `
		SELECT id, type, data, processed, processed_at, created_at
		FROM events
		WHERE id = $1
	`
	var event model.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &event, nil
}

func (r *eventRepository) GetUnprocessed(ctx context.Context) ([]*model.Event, error) {
	query := `
		SELECT id, type, data, processed, processed_at, created_at
		FROM events
		WHERE processed = false
		ORDER BY created_at ASC
	`
	var events []*model.Event
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("failed to list unprocessed events: %w", err)
	}
	return events, nil
}

func (r *eventRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE events
		SET processed = true, processed_at = $1
		WHERE id = $2
	`
	res, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("event %s not found", id)
	}
	return nil
}

func (r *eventRepository) GetScheduled(ctx context.Context) ([]*model.Event, error) {
	query := `
		SELECT id, type, data, processed, processed_at, created_at
		FROM events
		WHERE type = $1
		ORDER BY created_at ASC
	`
	var events []*model.Event
	if err := r.db.SelectContext(ctx, &events, query, model.EventTypeScheduled); err != nil {
		return nil, fmt.Errorf("failed to list scheduled events: %w", err)
	}
	return events, nil
}

func (r *eventRepository) GetScheduledByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	query := `
		SELECT id, type, data, processed, processed_at, created_at
		FROM events
		WHERE id = $1 AND type = $2
	`
	var event model.Event
	if err := r.db.GetContext(ctx, &event, query, id, model.EventTypeScheduled); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get scheduled event: %w", err)
	}
	return &event, nil
}
