package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
)

type NotificationRepository interface {
	// Create возвращает false, если уведомление для этого события уже существует.
	Create(ctx context.Context, notification *entity.Notification) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]*entity.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}
