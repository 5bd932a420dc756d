package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/domain/repository"
	"github.com/ignatzorin/freelance-jobs/internal/logger"
)

// EventNotification: имя события в WebSocket сообщении о новом уведомлении.
const EventNotification = "notification"

// Pusher доставляет событие подключённым клиентам пользователя.
type Pusher interface {
	BroadcastToUser(userID uuid.UUID, event string, data any) error
}

// PushedNotification: то, что видит клиент в WebSocket.
type PushedNotification struct {
	ID         uuid.UUID               `json:"id"`
	Title      string                  `json:"title"`
	Message    string                  `json:"message"`
	Type       entity.NotificationType `json:"type"`
	Priority   string                  `json:"priority"`
	ActionURL  string                  `json:"actionUrl,omitempty"`
	ActionText string                  `json:"actionText,omitempty"`
	Metadata   json.RawMessage         `json:"metadata,omitempty"`
	CreatedAt  time.Time               `json:"createdAt"`
}

// NotificationService сохраняет уведомления и отдаёт их пользователям.
type NotificationService struct {
	repo   repository.NotificationRepository
	pusher Pusher
}

// NewNotificationService создаёт сервис уведомлений. pusher может быть nil.
func NewNotificationService(repo repository.NotificationRepository, pusher Pusher) *NotificationService {
	return &NotificationService{repo: repo, pusher: pusher}
}

// Deliver сохраняет уведомление события eventID. Повторная доставка того же
// события ничего не создаёт и не шлёт пуш второй раз.
func (s *NotificationService) Deliver(ctx context.Context, eventID uuid.UUID, draft entity.NotificationDraft) error {
	notification, err := entity.NewNotification(draft, &eventID)
	if err != nil {
		return err
	}

	created, err := s.repo.Create(ctx, notification)
	if err != nil {
		return err
	}
	if !created || s.pusher == nil {
		return nil
	}

	// Пуш не влияет на доставку: уведомление уже сохранено.
	if err := s.pusher.BroadcastToUser(notification.UserID, EventNotification, toPushed(notification)); err != nil {
		logger.Log.WithFields(map[string]interface{}{
			"user_id":  notification.UserID,
			"event_id": eventID,
			"error":    err.Error(),
		}).Warn("notification service: не удалось отправить пуш")
	}
	return nil
}

// ListNotifications возвращает уведомления пользователя.
func (s *NotificationService) ListNotifications(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]*entity.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByUser(ctx, userID, limit, offset, unreadOnly)
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkAsRead отмечает уведомление прочитанным. Чужое уведомление неотличимо от отсутствующего.
func (s *NotificationService) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func toPushed(n *entity.Notification) PushedNotification {
	return PushedNotification{
		ID:         n.ID,
		Title:      n.Title,
		Message:    n.Message,
		Type:       n.Type,
		Priority:   string(n.Priority),
		ActionURL:  n.ActionURL,
		ActionText: n.ActionText,
		Metadata:   n.Metadata,
		CreatedAt:  n.CreatedAt,
	}
}
