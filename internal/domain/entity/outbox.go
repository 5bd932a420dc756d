package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
)

type OutboxKind string

const (
	OutboxNotificationCreate OutboxKind = "notification.create"
	OutboxUserEnsureClient   OutboxKind = "user.ensure_client"
	OutboxChatJobCard        OutboxKind = "chat.job_card"
)

type OutboxStatus string

const (
	OutboxPending   OutboxStatus = "pending"
	OutboxDelivered OutboxStatus = "delivered"
	OutboxDead      OutboxStatus = "dead"
)

// MaxOutboxBackoff ограничивает паузу между попытками доставки.
const MaxOutboxBackoff = 10 * time.Minute

type OutboxEvent struct {
	ID            uuid.UUID
	Kind          OutboxKind
	Payload       json.RawMessage
	Status        OutboxStatus
	Attempts      int
	NextAttemptAt time.Time
	LastError     string
	CreatedAt     time.Time
	DeliveredAt   *time.Time
}

func NewOutboxEvent(kind OutboxKind, payload interface{}) (*OutboxEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сериализовать событие")
	}
	now := time.Now()
	return &OutboxEvent{
		ID:            uuid.New(),
		Kind:          kind,
		Payload:       raw,
		Status:        OutboxPending,
		NextAttemptAt: now,
		CreatedAt:     now,
	}, nil
}

func (e *OutboxEvent) MarkDelivered(now time.Time) {
	e.Status = OutboxDelivered
	e.DeliveredAt = &now
	e.LastError = ""
}

// MarkFailed учитывает неудачную попытку: либо переносит следующую попытку
// с экспоненциальной задержкой, либо после maxAttempts переводит событие в dead.
func (e *OutboxEvent) MarkFailed(cause error, now time.Time, base time.Duration, maxAttempts int) {
	e.Attempts++
	if cause != nil {
		e.LastError = cause.Error()
	}
	if e.Attempts >= maxAttempts {
		e.Status = OutboxDead
		return
	}
	e.NextAttemptAt = now.Add(Backoff(base, e.Attempts))
}

// Backoff возвращает base * 2^(attempt-1), но не больше MaxOutboxBackoff.
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= MaxOutboxBackoff {
			return MaxOutboxBackoff
		}
	}
	if delay > MaxOutboxBackoff {
		return MaxOutboxBackoff
	}
	return delay
}
