package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/usecase/invitation"
)

type SendInvitationsRequest struct {
	FreelancerIDs []uuid.UUID `json:"freelancerIds"`
	Message       string      `json:"message"`
}

type RespondInvitationRequest struct {
	Status          string `json:"status"`
	ResponseMessage string `json:"responseMessage"`
}

type InvitationResponse struct {
	ID               uuid.UUID  `json:"id"`
	JobID            uuid.UUID  `json:"jobId"`
	FreelancerID     uuid.UUID  `json:"freelancerId"`
	ClientID         uuid.UUID  `json:"clientId"`
	Message          string     `json:"message"`
	Status           string     `json:"status"`
	InvitedAt        time.Time  `json:"invitedAt"`
	RespondedAt      *time.Time `json:"respondedAt,omitempty"`
	ExpiresAt        time.Time  `json:"expiresAt"`
	RemainingSeconds int64      `json:"remainingSeconds"`
	ResponseMessage  *string    `json:"responseMessage,omitempty"`
	FreelancerName   string     `json:"freelancerName"`
	FreelancerAvatar string     `json:"freelancerAvatar"`
	FreelancerRating float64    `json:"freelancerRating"`
	FreelancerSkills []string   `json:"freelancerSkills"`
	JobTitle         string     `json:"jobTitle"`
	JobBudgetMin     float64    `json:"jobBudgetMin"`
	JobBudgetMax     float64    `json:"jobBudgetMax"`
	JobCurrency      string     `json:"jobCurrency"`
	MatchScore       *float64   `json:"matchScore,omitempty"`
	MatchReasons     []string   `json:"matchReasons"`
}

// ToInvitationResponse отдаёт статус на момент now: просроченное pending
// показывается как expired.
func ToInvitationResponse(i *entity.Invitation, now time.Time) InvitationResponse {
	return InvitationResponse{
		ID:               i.ID,
		JobID:            i.JobID,
		FreelancerID:     i.FreelancerID,
		ClientID:         i.ClientID,
		Message:          i.Message,
		Status:           string(i.EffectiveStatus(now)),
		InvitedAt:        i.InvitedAt,
		RespondedAt:      i.RespondedAt,
		ExpiresAt:        i.ExpiresAt,
		RemainingSeconds: int64(i.RemainingTime(now) / time.Second),
		ResponseMessage:  i.ResponseMessage,
		FreelancerName:   i.FreelancerName,
		FreelancerAvatar: i.FreelancerAvatar,
		FreelancerRating: i.FreelancerRating,
		FreelancerSkills: nonNil(i.FreelancerSkills),
		JobTitle:         i.JobTitle,
		JobBudgetMin:     i.JobBudgetMin,
		JobBudgetMax:     i.JobBudgetMax,
		JobCurrency:      i.JobCurrency,
		MatchScore:       i.MatchScore,
		MatchReasons:     nonNil(i.MatchReasons),
	}
}

func ToInvitationResponses(invitations []*entity.Invitation, now time.Time) []InvitationResponse {
	responses := make([]InvitationResponse, 0, len(invitations))
	for _, i := range invitations {
		responses = append(responses, ToInvitationResponse(i, now))
	}
	return responses
}

type InvitationItemResponse struct {
	FreelancerID       uuid.UUID  `json:"freelancerId"`
	Success            bool       `json:"success"`
	InvitationID       *uuid.UUID `json:"invitationId,omitempty"`
	Error              string     `json:"error,omitempty"`
	NotificationQueued bool       `json:"notificationQueued"`
	ChatQueued         bool       `json:"chatQueued"`
}

type SendInvitationsResponse struct {
	Total       int                      `json:"total"`
	Successful  int                      `json:"successful"`
	Failed      int                      `json:"failed"`
	Invitations []InvitationResponse     `json:"invitations"`
	Results     []InvitationItemResponse `json:"results"`
}

func ToSendInvitationsResponse(r *invitation.SendResult, now time.Time) SendInvitationsResponse {
	results := make([]InvitationItemResponse, 0, len(r.Results))
	for _, item := range r.Results {
		results = append(results, InvitationItemResponse{
			FreelancerID:       item.FreelancerID,
			Success:            item.Success,
			InvitationID:       item.InvitationID,
			Error:              item.Error,
			NotificationQueued: item.NotificationQueued,
			ChatQueued:         item.ChatQueued,
		})
	}
	return SendInvitationsResponse{
		Total:       r.Total,
		Successful:  r.Successful,
		Failed:      r.Failed,
		Invitations: ToInvitationResponses(r.Invitations, now),
		Results:     results,
	}
}

type SuggestionResponse struct {
	FreelancerID  uuid.UUID `json:"freelancerId"`
	DisplayName   string    `json:"displayName"`
	AvatarURL     string    `json:"avatarUrl"`
	Rating        float64   `json:"rating"`
	Skills        []string  `json:"skills"`
	Score         float64   `json:"score"`
	MatchedSkills []string  `json:"matchedSkills"`
	MissingSkills []string  `json:"missingSkills"`
	Reasons       []string  `json:"reasons"`
}

func ToSuggestionResponses(suggestions []invitation.Suggestion) []SuggestionResponse {
	responses := make([]SuggestionResponse, 0, len(suggestions))
	for _, s := range suggestions {
		responses = append(responses, SuggestionResponse{
			FreelancerID:  s.Freelancer.ID,
			DisplayName:   s.Freelancer.DisplayName,
			AvatarURL:     s.Freelancer.AvatarURL,
			Rating:        s.Freelancer.Rating,
			Skills:        nonNil(s.Freelancer.Skills),
			Score:         s.Match.Score,
			MatchedSkills: nonNil(s.Match.MatchedSkills),
			MissingSkills: nonNil(s.Match.MissingSkills),
			Reasons:       nonNil(s.Match.Reasons),
		})
	}
	return responses
}
