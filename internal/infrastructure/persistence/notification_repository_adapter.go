package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
)

const notificationColumns = `id, user_id, event_id, title, message, type, priority, action_url,
	action_text, metadata, is_read, created_at`

type NotificationRepositoryAdapter struct {
	db *sqlx.DB
}

func NewNotificationRepositoryAdapter(db *sqlx.DB) *NotificationRepositoryAdapter {
	return &NotificationRepositoryAdapter{db: db}
}

func (r *NotificationRepositoryAdapter) Create(ctx context.Context, n *entity.Notification) (bool, error) {
	query := `
		INSERT INTO notifications (` + notificationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (event_id) DO NOTHING
	`
	res, err := executor(ctx, r.db).ExecContext(ctx, query,
		n.ID, n.UserID, n.EventID, n.Title, n.Message, string(n.Type), string(n.Priority),
		n.ActionURL, n.ActionText, []byte(n.Metadata), n.IsRead, n.CreatedAt,
	)
	if err != nil {
		return false, storeErr(err, "не удалось создать уведомление")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, storeErr(err, "не удалось создать уведомление")
	}
	return affected > 0, nil
}

func (r *NotificationRepositoryAdapter) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]*entity.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	var rows []notificationRow
	if err := executor(ctx, r.db).SelectContext(ctx, &rows, query, userID, limit, offset); err != nil {
		return nil, storeErr(err, "не удалось получить уведомления")
	}
	result := make([]*entity.Notification, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

func (r *NotificationRepositoryAdapter) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`
	if err := executor(ctx, r.db).GetContext(ctx, &count, query, userID); err != nil {
		return 0, storeErr(err, "не удалось посчитать уведомления")
	}
	return count, nil
}

func (r *NotificationRepositoryAdapter) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`
	res, err := executor(ctx, r.db).ExecContext(ctx, query, id, userID)
	if err != nil {
		return storeErr(err, "не удалось обновить уведомление")
	}
	return requireAffected(res, apperror.ErrNotificationNotFound)
}

func (r *NotificationRepositoryAdapter) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`
	res, err := executor(ctx, r.db).ExecContext(ctx, query, userID)
	if err != nil {
		return 0, storeErr(err, "не удалось обновить уведомления")
	}
	return res.RowsAffected()
}

type notificationRow struct {
	ID         uuid.UUID  `db:"id"`
	UserID     uuid.UUID  `db:"user_id"`
	EventID    *uuid.UUID `db:"event_id"`
	Title      string     `db:"title"`
	Message    string     `db:"message"`
	Type       string     `db:"type"`
	Priority   string     `db:"priority"`
	ActionURL  string     `db:"action_url"`
	ActionText string     `db:"action_text"`
	Metadata   []byte     `db:"metadata"`
	IsRead     bool       `db:"is_read"`
	CreatedAt  time.Time  `db:"created_at"`
}

func (n *notificationRow) toEntity() *entity.Notification {
	return &entity.Notification{
		ID:         n.ID,
		UserID:     n.UserID,
		EventID:    n.EventID,
		Title:      n.Title,
		Message:    n.Message,
		Type:       entity.NotificationType(n.Type),
		Priority:   entity.NotificationPriority(n.Priority),
		ActionURL:  n.ActionURL,
		ActionText: n.ActionText,
		Metadata:   json.RawMessage(n.Metadata),
		IsRead:     n.IsRead,
		CreatedAt:  n.CreatedAt,
	}
}
