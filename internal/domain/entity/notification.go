package entity

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
)

type NotificationType string

const (
	NotificationJobCreated         NotificationType = "job_created"
	NotificationJobCompleted       NotificationType = "job_completed"
	NotificationJobCancelled       NotificationType = "job_cancelled"
	NotificationProposalReceived   NotificationType = "proposal_received"
	NotificationProposalAccepted   NotificationType = "proposal_accepted"
	NotificationProposalRejected   NotificationType = "proposal_rejected"
	NotificationInvitation         NotificationType = "job_invitation"
	NotificationInvitationResponse NotificationType = "invitation_response"
)

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityMedium NotificationPriority = "medium"
	PriorityHigh   NotificationPriority = "high"
)

type Notification struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	EventID    *uuid.UUID
	Title      string
	Message    string
	Type       NotificationType
	Priority   NotificationPriority
	ActionURL  string
	ActionText string
	Metadata   json.RawMessage
	IsRead     bool
	CreatedAt  time.Time
}

// NotificationDraft: то, что use case кладёт в outbox для последующей доставки.
type NotificationDraft struct {
	UserID     uuid.UUID              `json:"userId"`
	Title      string                 `json:"title"`
	Message    string                 `json:"message"`
	Type       NotificationType       `json:"type"`
	Priority   NotificationPriority   `json:"priority"`
	ActionURL  string                 `json:"actionUrl,omitempty"`
	ActionText string                 `json:"actionText,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

func NewNotification(draft NotificationDraft, eventID *uuid.UUID) (*Notification, error) {
	if draft.UserID == uuid.Nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "не указан получатель уведомления")
	}
	if strings.TrimSpace(draft.Title) == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "заголовок уведомления обязателен")
	}
	if draft.Priority == "" {
		draft.Priority = PriorityMedium
	}
	metadata := json.RawMessage(`{}`)
	if len(draft.Metadata) > 0 {
		raw, err := json.Marshal(draft.Metadata)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, "некорректные метаданные уведомления")
		}
		metadata = raw
	}
	return &Notification{
		ID:         uuid.New(),
		UserID:     draft.UserID,
		EventID:    eventID,
		Title:      draft.Title,
		Message:    draft.Message,
		Type:       draft.Type,
		Priority:   draft.Priority,
		ActionURL:  draft.ActionURL,
		ActionText: draft.ActionText,
		Metadata:   metadata,
		CreatedAt:  time.Now(),
	}, nil
}
