package invitation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/domain/repository"
	"github.com/ignatzorin/freelance-jobs/internal/logger"
	"github.com/ignatzorin/freelance-jobs/internal/matching"
	"github.com/ignatzorin/freelance-jobs/internal/metrics"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-jobs/internal/validation"
)

type SendInvitationsInput struct {
	JobID         uuid.UUID
	ClientID      uuid.UUID
	FreelancerIDs []uuid.UUID
	Message       string
}

// ItemResult: итог приглашения одного исполнителя.
type ItemResult struct {
	FreelancerID       uuid.UUID
	Success            bool
	InvitationID       *uuid.UUID
	Error              string
	NotificationQueued bool
	ChatQueued         bool
}

type SendResult struct {
	Total       int
	Successful  int
	Failed      int
	Invitations []*entity.Invitation
	Results     []ItemResult
}

type SendInvitationsUseCase struct {
	jobs        repository.JobRepository
	users       repository.UserRepository
	invitations repository.InvitationRepository
	tx          repository.TxManager
	publisher   Publisher
	ttl         time.Duration
	metrics     *metrics.Collector
}

func NewSendInvitationsUseCase(
	jobs repository.JobRepository,
	users repository.UserRepository,
	invitations repository.InvitationRepository,
	tx repository.TxManager,
	publisher Publisher,
	ttl time.Duration,
	m *metrics.Collector,
) *SendInvitationsUseCase {
	return &SendInvitationsUseCase{
		jobs:        jobs,
		users:       users,
		invitations: invitations,
		tx:          tx,
		publisher:   publisher,
		ttl:         ttl,
		metrics:     m,
	}
}

// Execute приглашает исполнителей по одному. Ошибка по одному исполнителю
// попадает в его результат и не прерывает рассылку.
func (uc *SendInvitationsUseCase) Execute(ctx context.Context, input SendInvitationsInput) (*SendResult, error) {
	if len(input.FreelancerIDs) == 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "не выбраны исполнители")
	}
	if len(input.FreelancerIDs) > MaxInvitationsPerCall {
		return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("за раз можно пригласить не больше %d исполнителей", MaxInvitationsPerCall))
	}
	if err := validation.ValidateInvitationMessage(input.Message); err != nil {
		return nil, invalid(err)
	}

	job, err := uc.jobs.FindByID(ctx, input.JobID)
	if err != nil {
		return nil, err
	}
	if !job.IsOwnedBy(input.ClientID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "приглашать на заказ может только его владелец")
	}
	if !job.AcceptsProposals() {
		return nil, apperror.InvalidTransition("приглашать можно только на открытый заказ")
	}

	result := &SendResult{
		Total:       len(input.FreelancerIDs),
		Invitations: make([]*entity.Invitation, 0, len(input.FreelancerIDs)),
		Results:     make([]ItemResult, 0, len(input.FreelancerIDs)),
	}
	for _, freelancerID := range input.FreelancerIDs {
		item, inv := uc.inviteOne(ctx, job, freelancerID, input.Message)
		result.Results = append(result.Results, item)
		uc.metrics.RecordInvitation(item.Success)
		if item.Success {
			result.Successful++
			result.Invitations = append(result.Invitations, inv)
		} else {
			result.Failed++
		}
	}

	logger.Log.WithFields(map[string]interface{}{
		"job_id":     job.ID,
		"total":      result.Total,
		"successful": result.Successful,
		"failed":     result.Failed,
	}).Info("invitation: рассылка завершена")
	return result, nil
}

func (uc *SendInvitationsUseCase) inviteOne(ctx context.Context, job *entity.Job, freelancerID uuid.UUID, message string) (ItemResult, *entity.Invitation) {
	item := ItemResult{FreelancerID: freelancerID}
	fail := func(err error) (ItemResult, *entity.Invitation) {
		item.Error = err.Error()
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"job_id":        job.ID,
			"freelancer_id": freelancerID,
		}).Warn("invitation: не удалось пригласить исполнителя")
		return item, nil
	}

	freelancer, err := uc.users.FindByID(ctx, freelancerID)
	if err != nil {
		return fail(err)
	}
	inv, err := entity.NewInvitation(job, freelancer, message, uc.ttl)
	if err != nil {
		return fail(err)
	}
	match := matching.Score(job.Skills, matching.Candidate{Skills: freelancer.Skills, Rating: freelancer.Rating})
	inv.SetMatch(match.Score, match.Reasons)

	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := uc.invitations.Create(ctx, inv); err != nil {
			return err
		}
		if err := uc.publisher.Notify(ctx, invitationDraft(job, inv)); err != nil {
			return err
		}
		return uc.publisher.PostJobCard(ctx, entity.JobCard{
			JobID:        job.ID,
			ClientID:     job.ClientID,
			FreelancerID: freelancer.ID,
			JobTitle:     job.Title,
			BudgetMin:    job.Budget.Min,
			BudgetMax:    job.Budget.Max,
			Currency:     job.Budget.Currency,
			Note:         inv.Message,
		})
	})
	if err != nil {
		return fail(err)
	}

	item.Success = true
	item.InvitationID = &inv.ID
	item.NotificationQueued = true
	item.ChatQueued = true
	return item, inv
}

func invitationDraft(job *entity.Job, inv *entity.Invitation) entity.NotificationDraft {
	metadata := map[string]interface{}{
		"jobId":        job.ID.String(),
		"invitationId": inv.ID.String(),
		"clientId":     job.ClientID.String(),
		"expiresAt":    inv.ExpiresAt.Format(time.RFC3339),
	}
	if inv.MatchScore != nil {
		metadata["matchScore"] = *inv.MatchScore
	}
	return entity.NotificationDraft{
		UserID:     inv.FreelancerID,
		Title:      "Приглашение на заказ",
		Message:    job.ClientName + " приглашает вас на заказ «" + job.Title + "»",
		Type:       entity.NotificationInvitation,
		Priority:   entity.PriorityHigh,
		ActionURL:  jobURL(job.ID),
		ActionText: "Посмотреть заказ",
		Metadata:   metadata,
	}
}
