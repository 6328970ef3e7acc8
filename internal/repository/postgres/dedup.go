package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/luisz08/notif-svc/internal/model"
	"github.com/luisz08/notif-svc/internal/repository"
)

type deduplicationRepository struct {
	BaseRepository
}

func NewDeduplicationRepository(base BaseRepository) repository.DeduplicationRepository {
	return &deduplicationRepository{base}
}

func (r *deduplicationRepository) LogDeduplication(ctx context.Context, contentHash string) (*model.DeduplicationLog, error) {
	entry := &model.DeduplicationLog{
		ID:          uuid.New(),
		ContentHash: contentHash,
		CreatedAt:   time.Now().UTC(),
	}

	query := `
		INSERT INTO deduplication_logs (id, content_hash, created_at)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.ExecContext(ctx, query, entry.ID, entry.ContentHash, entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to log deduplication: %w", err)
	}
	return entry, nil
}

func (r *deduplicationRepository) CleanupOldLogs(ctx context.Context, before time.Time) (int64, error) {
	query := `
		DELETE FROM deduplication_logs
		WHERE created_at < $1
	`
	res, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup deduplication logs: %w", err)
	}
	return res.RowsAffected()
}
