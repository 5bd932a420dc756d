package repository

import (
	"context"
	"time"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
)

type OutboxRepository interface {
	Enqueue(ctx context.Context, event *entity.OutboxEvent) error
	// ClaimBatch забирает до limit готовых событий и сдвигает их next_attempt_at
	// на lease, чтобы другие диспетчеры их не взяли.
	ClaimBatch(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]*entity.OutboxEvent, error)
	Save(ctx context.Context, event *entity.OutboxEvent) error
}

// TxManager выполняет fn в одной транзакции; репозитории подхватывают её из ctx.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
