package proposal

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/domain/repository"
	"github.com/ignatzorin/freelance-jobs/internal/logger"
	"github.com/ignatzorin/freelance-jobs/internal/metrics"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
)

type AcceptProposalInput struct {
	ProposalID   uuid.UUID
	JobID        uuid.UUID
	FreelancerID uuid.UUID
	ActorID      uuid.UUID
}

type AcceptResult struct {
	Proposal *entity.Proposal
	Job      *entity.Job
	// Rejected: исполнители, чьи отклики отклонены вместе с принятием.
	Rejected []uuid.UUID
}

type AcceptProposalUseCase struct {
	proposals repository.ProposalRepository
	jobs      repository.JobRepository
	tx        repository.TxManager
	publisher Publisher
	cache     JobCache
	metrics   *metrics.Collector
}

func NewAcceptProposalUseCase(
	proposals repository.ProposalRepository,
	jobs repository.JobRepository,
	tx repository.TxManager,
	publisher Publisher,
	cache JobCache,
	m *metrics.Collector,
) *AcceptProposalUseCase {
	return &AcceptProposalUseCase{proposals: proposals, jobs: jobs, tx: tx, publisher: publisher, cache: cache, metrics: m}
}

// Execute принимает отклик, назначает исполнителя и отклоняет остальные отклики.
// Всё происходит в одной транзакции: при любой ошибке ничего не меняется.
func (uc *AcceptProposalUseCase) Execute(ctx context.Context, input AcceptProposalInput) (*AcceptResult, error) {
	var result *AcceptResult
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		job, err := uc.jobs.FindByIDForUpdate(ctx, input.JobID)
		if err != nil {
			return err
		}
		if !job.IsOwnedBy(input.ActorID) {
			return apperror.New(apperror.ErrCodeForbidden, "принимать отклики может только владелец заказа")
		}

		proposal, err := uc.proposals.FindByID(ctx, input.ProposalID)
		if err != nil {
			return err
		}
		if proposal.JobID != job.ID || proposal.FreelancerID != input.FreelancerID {
			return apperror.New(apperror.ErrCodeValidation, "отклик не относится к этому заказу или исполнителю")
		}
		if !job.AcceptsProposals() {
			return apperror.InvalidTransition("заказ уже не принимает отклики")
		}
		if err := proposal.Accept(); err != nil {
			return err
		}
		if err := uc.proposals.UpdateStatus(ctx, proposal); err != nil {
			return err
		}
		if err := job.Assign(proposal.FreelancerID); err != nil {
			return err
		}
		if err := uc.jobs.Update(ctx, job); err != nil {
			return err
		}
		rejected, err := uc.proposals.RejectOthers(ctx, job.ID, proposal.ID)
		if err != nil {
			return err
		}

		if err := uc.publisher.Notify(ctx, entity.NotificationDraft{
			UserID:     proposal.FreelancerID,
			Title:      "Отклик принят",
			Message:    "Клиент принял ваш отклик на заказ «" + job.Title + "»",
			Type:       entity.NotificationProposalAccepted,
			Priority:   entity.PriorityHigh,
			ActionURL:  jobURL(job.ID),
			ActionText: "Открыть заказ",
			Metadata:   map[string]interface{}{"jobId": job.ID.String(), "proposalId": proposal.ID.String()},
		}); err != nil {
			return err
		}
		for _, freelancerID := range rejected {
			if err := uc.publisher.Notify(ctx, rejectedDraft(job, freelancerID)); err != nil {
				return err
			}
		}
		if err := uc.publisher.PostJobCard(ctx, entity.JobCard{
			JobID:        job.ID,
			ClientID:     job.ClientID,
			FreelancerID: proposal.FreelancerID,
			JobTitle:     job.Title,
			BudgetMin:    job.Budget.Min,
			BudgetMax:    job.Budget.Max,
			Currency:     job.Budget.Currency,
			Note:         "Ваш отклик принят, можно обсудить детали.",
		}); err != nil {
			return err
		}

		result = &AcceptResult{Proposal: proposal, Job: job, Rejected: rejected}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// заказ ушёл из active: статистика и витрина устарели
	invalidateJobs(uc.cache, result.Job.ClientID)
	uc.metrics.RecordJobTransition(string(result.Job.Status))
	logger.Log.WithFields(map[string]interface{}{
		"job_id":        result.Job.ID,
		"proposal_id":   result.Proposal.ID,
		"freelancer_id": result.Proposal.FreelancerID,
		"rejected":      len(result.Rejected),
	}).Info("proposal: отклик принят")
	return result, nil
}

type RejectProposalUseCase struct {
	proposals repository.ProposalRepository
	jobs      repository.JobRepository
	tx        repository.TxManager
	publisher Publisher
}

func NewRejectProposalUseCase(
	proposals repository.ProposalRepository,
	jobs repository.JobRepository,
	tx repository.TxManager,
	publisher Publisher,
) *RejectProposalUseCase {
	return &RejectProposalUseCase{proposals: proposals, jobs: jobs, tx: tx, publisher: publisher}
}

// Execute отклоняет ожидающий отклик. Заказ блокируется на время транзакции,
// отклики закрытых заказов не меняются.
func (uc *RejectProposalUseCase) Execute(ctx context.Context, proposalID, actorID uuid.UUID) (*entity.Proposal, error) {
	var (
		proposal *entity.Proposal
		job      *entity.Job
	)
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		proposal, err = uc.proposals.FindByID(ctx, proposalID)
		if err != nil {
			return err
		}
		job, err = uc.jobs.FindByIDForUpdate(ctx, proposal.JobID)
		if err != nil {
			return err
		}
		if !job.IsOwnedBy(actorID) {
			return apperror.New(apperror.ErrCodeForbidden, "отклонять отклики может только владелец заказа")
		}
		if !job.AcceptsProposals() {
			return apperror.InvalidTransition("заказ уже не принимает отклики")
		}
		if err := proposal.Reject(); err != nil {
			return err
		}
		if err := uc.proposals.UpdateStatus(ctx, proposal); err != nil {
			return err
		}
		return uc.publisher.Notify(ctx, rejectedDraft(job, proposal.FreelancerID))
	})
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"job_id":      job.ID,
		"proposal_id": proposal.ID,
	}).Info("proposal: отклик отклонён")
	return proposal, nil
}

func rejectedDraft(job *entity.Job, freelancerID uuid.UUID) entity.NotificationDraft {
	return entity.NotificationDraft{
		UserID:     freelancerID,
		Title:      "Отклик отклонён",
		Message:    "Клиент отклонил ваш отклик на заказ «" + job.Title + "»",
		Type:       entity.NotificationProposalRejected,
		Priority:   entity.PriorityLow,
		ActionURL:  jobURL(job.ID),
		ActionText: "Найти другие заказы",
		Metadata:   map[string]interface{}{"jobId": job.ID.String()},
	}
}
