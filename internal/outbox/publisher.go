package outbox

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/domain/repository"
	"github.com/ignatzorin/freelance-jobs/internal/metrics"
)

// EnsureClientPayload: событие "пользователь выступил клиентом".
type EnsureClientPayload struct {
	UserID uuid.UUID `json:"userId"`
}

// Publisher кладёт побочные эффекты в outbox. Вызывать внутри транзакции
// основной записи: события фиксируются только вместе с ней.
type Publisher struct {
	repo    repository.OutboxRepository
	metrics *metrics.Collector
}

func NewPublisher(repo repository.OutboxRepository, m *metrics.Collector) *Publisher {
	return &Publisher{repo: repo, metrics: m}
}

func (p *Publisher) Notify(ctx context.Context, draft entity.NotificationDraft) error {
	return p.publish(ctx, entity.OutboxNotificationCreate, draft)
}

func (p *Publisher) EnsureClient(ctx context.Context, userID uuid.UUID) error {
	return p.publish(ctx, entity.OutboxUserEnsureClient, EnsureClientPayload{UserID: userID})
}

func (p *Publisher) PostJobCard(ctx context.Context, card entity.JobCard) error {
	return p.publish(ctx, entity.OutboxChatJobCard, card)
}

func (p *Publisher) publish(ctx context.Context, kind entity.OutboxKind, payload interface{}) error {
	event, err := entity.NewOutboxEvent(kind, payload)
	if err != nil {
		return err
	}
	if err := p.repo.Enqueue(ctx, event); err != nil {
		return err
	}
	p.metrics.RecordEnqueued(string(kind))
	return nil
}
