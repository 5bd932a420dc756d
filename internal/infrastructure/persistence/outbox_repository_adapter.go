package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
)

type OutboxRepositoryAdapter struct {
	db *sqlx.DB
}

func NewOutboxRepositoryAdapter(db *sqlx.DB) *OutboxRepositoryAdapter {
	return &OutboxRepositoryAdapter{db: db}
}

// Enqueue пишет событие в ту же транзакцию, что и основное изменение, если она есть в ctx.
func (r *OutboxRepositoryAdapter) Enqueue(ctx context.Context, event *entity.OutboxEvent) error {
	query := `
		INSERT INTO outbox_events (id, kind, payload, status, attempts, next_attempt_at, last_error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := executor(ctx, r.db).ExecContext(ctx, query,
		event.ID, string(event.Kind), []byte(event.Payload), string(event.Status),
		event.Attempts, event.NextAttemptAt, event.LastError, event.CreatedAt,
	)
	if err != nil {
		return storeErr(err, "не удалось поставить событие в очередь")
	}
	return nil
}

func (r *OutboxRepositoryAdapter) ClaimBatch(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]*entity.OutboxEvent, error) {
	query := `
		UPDATE outbox_events SET next_attempt_at = $3
		WHERE id IN (
			SELECT id FROM outbox_events
			WHERE status = 'pending' AND next_attempt_at <= $1
			ORDER BY next_attempt_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, kind, payload, status, attempts, next_attempt_at, last_error, created_at, delivered_at
	`
	var rows []outboxRow
	if err := executor(ctx, r.db).SelectContext(ctx, &rows, query, now, limit, now.Add(lease)); err != nil {
		return nil, storeErr(err, "не удалось получить события из очереди")
	}
	result := make([]*entity.OutboxEvent, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

func (r *OutboxRepositoryAdapter) Save(ctx context.Context, event *entity.OutboxEvent) error {
	query := `
		UPDATE outbox_events
		SET status = $2, attempts = $3, next_attempt_at = $4, last_error = $5, delivered_at = $6
		WHERE id = $1
	`
	_, err := executor(ctx, r.db).ExecContext(ctx, query,
		event.ID, string(event.Status), event.Attempts, event.NextAttemptAt, event.LastError, event.DeliveredAt,
	)
	if err != nil {
		return storeErr(err, "не удалось обновить событие очереди")
	}
	return nil
}

type outboxRow struct {
	ID            uuid.UUID  `db:"id"`
	Kind          string     `db:"kind"`
	Payload       []byte     `db:"payload"`
	Status        string     `db:"status"`
	Attempts      int        `db:"attempts"`
	NextAttemptAt time.Time  `db:"next_attempt_at"`
	LastError     string     `db:"last_error"`
	CreatedAt     time.Time  `db:"created_at"`
	DeliveredAt   *time.Time `db:"delivered_at"`
}

func (o *outboxRow) toEntity() *entity.OutboxEvent {
	return &entity.OutboxEvent{
		ID:            o.ID,
		Kind:          entity.OutboxKind(o.Kind),
		Payload:       json.RawMessage(o.Payload),
		Status:        entity.OutboxStatus(o.Status),
		Attempts:      o.Attempts,
		NextAttemptAt: o.NextAttemptAt,
		LastError:     o.LastError,
		CreatedAt:     o.CreatedAt,
		DeliveredAt:   o.DeliveredAt,
	}
}
