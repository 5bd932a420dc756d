package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/freelance-jobs/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
)

// Invitation: адресное приглашение исполнителя на заказ.
// Снимок исполнителя и заказа фиксируется при создании и дальше не меняется.
type Invitation struct {
	ID              uuid.UUID
	JobID           uuid.UUID
	FreelancerID    uuid.UUID
	ClientID        uuid.UUID
	Message         string
	Status          valueobject.InvitationStatus
	InvitedAt       time.Time
	RespondedAt     *time.Time
	ExpiresAt       time.Time
	ResponseMessage *string

	FreelancerName   string
	FreelancerAvatar string
	FreelancerRating float64
	FreelancerSkills []string
	JobTitle         string
	JobBudgetMin     float64
	JobBudgetMax     float64
	JobCurrency      string

	MatchScore   *float64
	MatchReasons []string
}

func NewInvitation(job *Job, freelancer *User, message string, ttl time.Duration) (*Invitation, error) {
	if job == nil || freelancer == nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "не указан заказ или исполнитель")
	}
	if freelancer.ID == job.ClientID {
		return nil, apperror.New(apperror.ErrCodeValidation, "нельзя пригласить самого себя")
	}
	if ttl <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "срок действия приглашения должен быть положительным")
	}

	now := time.Now()
	return &Invitation{
		ID:               uuid.New(),
		JobID:            job.ID,
		FreelancerID:     freelancer.ID,
		ClientID:         job.ClientID,
		Message:          strings.TrimSpace(message),
		Status:           valueobject.InvitationStatusPending,
		InvitedAt:        now,
		ExpiresAt:        now.Add(ttl),
		FreelancerName:   freelancer.DisplayName,
		FreelancerAvatar: freelancer.AvatarURL,
		FreelancerRating: freelancer.Rating,
		FreelancerSkills: append([]string{}, freelancer.Skills...),
		JobTitle:         job.Title,
		JobBudgetMin:     job.Budget.Min,
		JobBudgetMax:     job.Budget.Max,
		JobCurrency:      job.Budget.Currency,
		MatchReasons:     []string{},
	}, nil
}

func (i *Invitation) SetMatch(score float64, reasons []string) {
	i.MatchScore = &score
	i.MatchReasons = append([]string{}, reasons...)
}

// EffectiveStatus вычисляет статус на момент now: просроченное ожидающее
// приглашение считается expired, хотя в базе остаётся pending.
func (i *Invitation) EffectiveStatus(now time.Time) valueobject.InvitationStatus {
	if i.Status == valueobject.InvitationStatusPending && !now.Before(i.ExpiresAt) {
		return valueobject.InvitationStatusExpired
	}
	return i.Status
}

// RemainingTime: сколько осталось до истечения; ноль для отвеченных и просроченных.
func (i *Invitation) RemainingTime(now time.Time) time.Duration {
	if i.EffectiveStatus(now) != valueobject.InvitationStatusPending {
		return 0
	}
	return i.ExpiresAt.Sub(now)
}

// Respond фиксирует ответ исполнителя. Переход возможен только из pending.
func (i *Invitation) Respond(status valueobject.InvitationStatus, responseMessage string, now time.Time) error {
	if status != valueobject.InvitationStatusAccepted && status != valueobject.InvitationStatusDeclined {
		return apperror.New(apperror.ErrCodeValidation, "ответ может быть только accepted или declined")
	}
	current := i.EffectiveStatus(now)
	if !current.CanTransitionTo(status) {
		if current == valueobject.InvitationStatusExpired {
			return apperror.InvalidTransition("срок действия приглашения истёк")
		}
		return apperror.InvalidTransition("на приглашение уже дан ответ")
	}
	i.Status = status
	i.RespondedAt = &now
	if msg := strings.TrimSpace(responseMessage); msg != "" {
		i.ResponseMessage = &msg
	}
	return nil
}

func (i *Invitation) IsAddressedTo(userID uuid.UUID) bool {
	return i.FreelancerID == userID
}
