package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/domain/repository"
)

// EventChatMessage: имя события в WebSocket сообщении о новом сообщении в чате.
const EventChatMessage = "chat_message"

// ChatService публикует карточки заказов в переписку клиента и исполнителя.
type ChatService struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	pusher        Pusher
}

func NewChatService(conversations repository.ConversationRepository, messages repository.MessageRepository, pusher Pusher) *ChatService {
	return &ChatService{conversations: conversations, messages: messages, pusher: pusher}
}

// PostJobCard находит или создаёт беседу по заказу и пишет в неё карточку от имени клиента.
// Сообщение привязано к eventID, поэтому повторная доставка не дублирует его.
func (s *ChatService) PostJobCard(ctx context.Context, eventID uuid.UUID, card entity.JobCard) error {
	conv, err := entity.NewConversation(card.JobID, card.ClientID, card.FreelancerID)
	if err != nil {
		return err
	}
	conv, err = s.conversations.GetOrCreate(ctx, conv)
	if err != nil {
		return err
	}

	msg, err := entity.NewMessage(conv.ID, card.ClientID, card.Text(), entity.MessageTypeJobCard)
	if err != nil {
		return err
	}
	msg.EventID = &eventID

	created, err := s.messages.Create(ctx, msg)
	if err != nil {
		return err
	}
	if created && s.pusher != nil {
		_ = s.pusher.BroadcastToUser(card.FreelancerID, EventChatMessage, map[string]any{
			"conversationId": conv.ID,
			"messageId":      msg.ID,
			"messageType":    msg.MessageType,
			"card":           card,
		})
	}
	return nil
}
