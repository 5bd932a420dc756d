package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/service"
	"github.com/ignatzorin/freelance-jobs/internal/storage"
)

type RegisterRequest struct {
	Email       string     `json:"email" binding:"required,email"`
	Password    string     `json:"password" binding:"required,min=8"`
	DisplayName string     `json:"displayName" binding:"required"`
	UserType    string     `json:"userType"`
	Skills      StringList `json:"skills"`
}

func (r RegisterRequest) ToInput() service.RegisterInput {
	return service.RegisterInput{
		Email:       r.Email,
		Password:    r.Password,
		DisplayName: r.DisplayName,
		UserType:    r.UserType,
		Skills:      r.Skills.Slice(),
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	AvatarURL   string    `json:"avatarUrl"`
	UserType    string    `json:"userType"`
	Rating      float64   `json:"rating"`
	Skills      []string  `json:"skills"`
	CreatedAt   time.Time `json:"createdAt"`
}

func ToUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		UserType:    string(u.UserType),
		Rating:      u.Rating,
		Skills:      nonNil(u.Skills),
		CreatedAt:   u.CreatedAt,
	}
}

type AuthResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"accessToken"`
	ExpiresIn   int64        `json:"expiresIn"`
}

func ToAuthResponse(r *service.AuthResult) AuthResponse {
	return AuthResponse{
		User:        ToUserResponse(r.User),
		AccessToken: r.Token.Token,
		ExpiresIn:   int64(r.Token.ExpiresIn / time.Second),
	}
}

type NotificationResponse struct {
	ID         uuid.UUID       `json:"id"`
	Title      string          `json:"title"`
	Message    string          `json:"message"`
	Type       string          `json:"type"`
	Priority   string          `json:"priority"`
	ActionURL  string          `json:"actionUrl,omitempty"`
	ActionText string          `json:"actionText,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	IsRead     bool            `json:"isRead"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func ToNotificationResponses(items []*entity.Notification) []NotificationResponse {
	responses := make([]NotificationResponse, 0, len(items))
	for _, n := range items {
		responses = append(responses, NotificationResponse{
			ID:         n.ID,
			Title:      n.Title,
			Message:    n.Message,
			Type:       string(n.Type),
			Priority:   string(n.Priority),
			ActionURL:  n.ActionURL,
			ActionText: n.ActionText,
			Metadata:   n.Metadata,
			IsRead:     n.IsRead,
			CreatedAt:  n.CreatedAt,
		})
	}
	return responses
}

type AttachmentResponse struct {
	URL          string `json:"url"`
	OriginalName string `json:"originalName"`
	MIME         string `json:"mimeType"`
	Size         int64  `json:"size"`
}

func ToAttachmentResponse(f *storage.StoredFile) AttachmentResponse {
	return AttachmentResponse{URL: f.Ref, OriginalName: f.OriginalName, MIME: f.MIME, Size: f.Size}
}
