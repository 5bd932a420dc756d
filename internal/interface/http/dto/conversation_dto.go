package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
)

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// ConversationResponse показывает беседу глазами viewer: его роль и собеседника.
type ConversationResponse struct {
	ID            uuid.UUID `json:"id"`
	JobID         uuid.UUID `json:"jobId"`
	ClientID      uuid.UUID `json:"clientId"`
	FreelancerID  uuid.UUID `json:"freelancerId"`
	Role          string    `json:"role"`
	CounterpartID uuid.UUID `json:"counterpartId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type MessageResponse struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversationId"`
	SenderID       uuid.UUID `json:"senderId"`
	Mine           bool      `json:"mine"`
	Content        string    `json:"content"`
	MessageType    string    `json:"messageType"`
	CreatedAt      time.Time `json:"createdAt"`
}

func ToConversationResponses(convs []*entity.Conversation, viewer uuid.UUID) []ConversationResponse {
	result := make([]ConversationResponse, 0, len(convs))
	for _, conv := range convs {
		role, counterpart := "client", conv.FreelancerID
		if conv.FreelancerID == viewer {
			role, counterpart = "freelancer", conv.ClientID
		}
		result = append(result, ConversationResponse{
			ID:            conv.ID,
			JobID:         conv.JobID,
			ClientID:      conv.ClientID,
			FreelancerID:  conv.FreelancerID,
			Role:          role,
			CounterpartID: counterpart,
			CreatedAt:     conv.CreatedAt,
			UpdatedAt:     conv.UpdatedAt,
		})
	}
	return result
}

func ToMessageResponse(msg *entity.Message, viewer uuid.UUID) MessageResponse {
	return MessageResponse{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		Mine:           msg.SenderID == viewer,
		Content:        msg.Content,
		MessageType:    string(msg.MessageType),
		CreatedAt:      msg.CreatedAt,
	}
}

func ToMessageResponses(msgs []*entity.Message, viewer uuid.UUID) []MessageResponse {
	result := make([]MessageResponse, 0, len(msgs))
	for _, msg := range msgs {
		result = append(result, ToMessageResponse(msg, viewer))
	}
	return result
}
