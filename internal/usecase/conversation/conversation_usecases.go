package conversation

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/domain/repository"
	"github.com/ignatzorin/freelance-jobs/internal/logger"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-jobs/internal/service"
	"github.com/ignatzorin/freelance-jobs/internal/validation"
)

const (
	DefaultMessagesLimit = 50
	MaxMessagesLimit     = 200
	MaxMessageLength     = 5000
)

type ListMyConversationsUseCase struct {
	convRepo repository.ConversationRepository
}

func NewListMyConversationsUseCase(convRepo repository.ConversationRepository) *ListMyConversationsUseCase {
	return &ListMyConversationsUseCase{convRepo: convRepo}
}

func (uc *ListMyConversationsUseCase) Execute(ctx context.Context, userID uuid.UUID) ([]*entity.Conversation, error) {
	return uc.convRepo.FindByUserID(ctx, userID)
}

type SendMessageUseCase struct {
	convRepo repository.ConversationRepository
	msgRepo  repository.MessageRepository
	pusher   service.Pusher
}

// pusher может быть nil: тогда сообщение только сохраняется.
func NewSendMessageUseCase(convRepo repository.ConversationRepository, msgRepo repository.MessageRepository, pusher service.Pusher) *SendMessageUseCase {
	return &SendMessageUseCase{convRepo: convRepo, msgRepo: msgRepo, pusher: pusher}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, conversationID, senderID uuid.UUID, content string) (*entity.Message, error) {
	if err := validation.ValidateLength("сообщение", content, 1, MaxMessageLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	conv, err := uc.convRepo.FindByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.IsParticipant(senderID) {
		return nil, apperror.ErrForbidden
	}

	msg, err := entity.NewMessage(conversationID, senderID, content, entity.MessageTypeText)
	if err != nil {
		return nil, err
	}
	if _, err := uc.msgRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	if uc.pusher != nil {
		recipient := conv.ClientID
		if senderID == conv.ClientID {
			recipient = conv.FreelancerID
		}
		payload := map[string]any{
			"conversationId": conv.ID,
			"messageId":      msg.ID,
			"messageType":    msg.MessageType,
			"senderId":       msg.SenderID,
			"content":        msg.Content,
		}
		if err := uc.pusher.BroadcastToUser(recipient, service.EventChatMessage, payload); err != nil {
			logger.Log.WithError(err).WithField("conversation_id", conv.ID).Warn("conversation: не удалось отправить сообщение в websocket")
		}
	}
	return msg, nil
}

type ListMessagesUseCase struct {
	convRepo repository.ConversationRepository
	msgRepo  repository.MessageRepository
}

func NewListMessagesUseCase(convRepo repository.ConversationRepository, msgRepo repository.MessageRepository) *ListMessagesUseCase {
	return &ListMessagesUseCase{convRepo: convRepo, msgRepo: msgRepo}
}

func (uc *ListMessagesUseCase) Execute(ctx context.Context, conversationID, userID uuid.UUID, limit, offset int) ([]*entity.Message, error) {
	conv, err := uc.convRepo.FindByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.IsParticipant(userID) {
		return nil, apperror.ErrForbidden
	}

	if limit <= 0 {
		limit = DefaultMessagesLimit
	}
	if limit > MaxMessagesLimit {
		limit = MaxMessagesLimit
	}
	if offset < 0 {
		offset = 0
	}
	return uc.msgRepo.FindByConversationID(ctx, conversationID, limit, offset)
}
