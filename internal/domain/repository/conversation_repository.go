package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
)

type ConversationRepository interface {
	// GetOrCreate возвращает существующую беседу по (job, client, freelancer) или сохраняет conv.
	GetOrCreate(ctx context.Context, conv *entity.Conversation) (*entity.Conversation, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Conversation, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Conversation, error)
}

type MessageRepository interface {
	// Create возвращает false, если сообщение с таким EventID уже записано.
	Create(ctx context.Context, msg *entity.Message) (bool, error)
	FindByConversationID(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]*entity.Message, error)
}
