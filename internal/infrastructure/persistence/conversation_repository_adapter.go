package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
)

type ConversationRepositoryAdapter struct {
	db *sqlx.DB
}

func NewConversationRepositoryAdapter(db *sqlx.DB) *ConversationRepositoryAdapter {
	return &ConversationRepositoryAdapter{db: db}
}

// GetOrCreate опирается на уникальный индекс (job_id, client_id, freelancer_id):
// при гонке двух вставок обе стороны получат одну и ту же беседу.
func (r *ConversationRepositoryAdapter) GetOrCreate(ctx context.Context, conv *entity.Conversation) (*entity.Conversation, error) {
	query := `
		INSERT INTO conversations (id, job_id, client_id, freelancer_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (job_id, client_id, freelancer_id) DO UPDATE SET updated_at = EXCLUDED.updated_at
		RETURNING id, job_id, client_id, freelancer_id, created_at, updated_at
	`
	var row conversationRow
	err := executor(ctx, r.db).QueryRowxContext(ctx, query,
		conv.ID, conv.JobID, conv.ClientID, conv.FreelancerID, conv.CreatedAt, conv.UpdatedAt,
	).StructScan(&row)
	if err != nil {
		return nil, storeErr(err, "не удалось создать беседу")
	}
	return row.toEntity(), nil
}

func (r *ConversationRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Conversation, error) {
	var c conversationRow
	query := `SELECT id, job_id, client_id, freelancer_id, created_at, updated_at FROM conversations WHERE id = $1`
	if err := executor(ctx, r.db).GetContext(ctx, &c, query, id); err != nil {
		if noRows(err) {
			return nil, apperror.ErrConversationNotFound
		}
		return nil, storeErr(err, "не удалось получить беседу")
	}
	return c.toEntity(), nil
}

func (r *ConversationRepositoryAdapter) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Conversation, error) {
	var rows []conversationRow
	query := `SELECT id, job_id, client_id, freelancer_id, created_at, updated_at
		FROM conversations WHERE client_id = $1 OR freelancer_id = $1 ORDER BY updated_at DESC`
	if err := executor(ctx, r.db).SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, storeErr(err, "не удалось получить беседы")
	}
	result := make([]*entity.Conversation, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

type conversationRow struct {
	ID           uuid.UUID `db:"id"`
	JobID        uuid.UUID `db:"job_id"`
	ClientID     uuid.UUID `db:"client_id"`
	FreelancerID uuid.UUID `db:"freelancer_id"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (c *conversationRow) toEntity() *entity.Conversation {
	return &entity.Conversation{
		ID:           c.ID,
		JobID:        c.JobID,
		ClientID:     c.ClientID,
		FreelancerID: c.FreelancerID,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

type MessageRepositoryAdapter struct {
	db *sqlx.DB
}

func NewMessageRepositoryAdapter(db *sqlx.DB) *MessageRepositoryAdapter {
	return &MessageRepositoryAdapter{db: db}
}

func (r *MessageRepositoryAdapter) Create(ctx context.Context, msg *entity.Message) (bool, error) {
	query := `
		INSERT INTO messages (id, conversation_id, sender_id, content, message_type, event_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (event_id) DO NOTHING
	`
	res, err := executor(ctx, r.db).ExecContext(ctx, query,
		msg.ID, msg.ConversationID, msg.SenderID, msg.Content, string(msg.MessageType), msg.EventID, msg.CreatedAt,
	)
	if err != nil {
		return false, storeErr(err, "не удалось создать сообщение")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeErr(err, "не удалось создать сообщение")
	}
	return n > 0, nil
}

func (r *MessageRepositoryAdapter) FindByConversationID(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]*entity.Message, error) {
	var rows []messageRow
	query := `SELECT id, conversation_id, sender_id, content, message_type, event_id, created_at
		FROM messages WHERE conversation_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := executor(ctx, r.db).SelectContext(ctx, &rows, query, conversationID, limit, offset); err != nil {
		return nil, storeErr(err, "не удалось получить сообщения")
	}
	result := make([]*entity.Message, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

type messageRow struct {
	ID             uuid.UUID  `db:"id"`
	ConversationID uuid.UUID  `db:"conversation_id"`
	SenderID       uuid.UUID  `db:"sender_id"`
	Content        string     `db:"content"`
	MessageType    string     `db:"message_type"`
	EventID        *uuid.UUID `db:"event_id"`
	CreatedAt      time.Time  `db:"created_at"`
}

func (m *messageRow) toEntity() *entity.Message {
	return &entity.Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		MessageType:    entity.MessageType(m.MessageType),
		EventID:        m.EventID,
		CreatedAt:      m.CreatedAt,
	}
}
