package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
)

type MessageType string

const (
	MessageTypeText    MessageType = "text"
	MessageTypeJobCard MessageType = "job_card"
)

// Conversation: переписка клиента и исполнителя по конкретному заказу.
type Conversation struct {
	ID           uuid.UUID
	JobID        uuid.UUID
	ClientID     uuid.UUID
	FreelancerID uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewConversation(jobID, clientID, freelancerID uuid.UUID) (*Conversation, error) {
	if clientID == freelancerID {
		return nil, apperror.New(apperror.ErrCodeValidation, "нельзя создать беседу с самим собой")
	}
	now := time.Now()
	return &Conversation{
		ID:           uuid.New(),
		JobID:        jobID,
		ClientID:     clientID,
		FreelancerID: freelancerID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (c *Conversation) IsParticipant(userID uuid.UUID) bool {
	return c.ClientID == userID || c.FreelancerID == userID
}

type Message struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	SenderID       uuid.UUID
	Content        string
	MessageType    MessageType
	// EventID связывает сообщение с событием outbox и делает доставку идемпотентной.
	EventID   *uuid.UUID
	CreatedAt time.Time
}

func NewMessage(conversationID, senderID uuid.UUID, content string, messageType MessageType) (*Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "сообщение не может быть пустым")
	}
	if messageType == "" {
		messageType = MessageTypeText
	}
	return &Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		MessageType:    messageType,
		CreatedAt:      time.Now(),
	}, nil
}

// JobCard: карточка заказа, которую клиент отправляет исполнителю в чат.
type JobCard struct {
	JobID        uuid.UUID `json:"jobId"`
	ClientID     uuid.UUID `json:"clientId"`
	FreelancerID uuid.UUID `json:"freelancerId"`
	JobTitle     string    `json:"jobTitle"`
	BudgetMin    float64   `json:"budgetMin"`
	BudgetMax    float64   `json:"budgetMax"`
	Currency     string    `json:"currency"`
	Note         string    `json:"note,omitempty"`
}

// Text: текст сообщения с карточкой.
func (c JobCard) Text() string {
	text := fmt.Sprintf("Заказ «%s», бюджет %.2f–%.2f %s", c.JobTitle, c.BudgetMin, c.BudgetMax, c.Currency)
	if strings.TrimSpace(c.Note) != "" {
		text += "\n\n" + strings.TrimSpace(c.Note)
	}
	return text
}
