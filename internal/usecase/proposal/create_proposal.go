package proposal

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/domain/repository"
	"github.com/ignatzorin/freelance-jobs/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-jobs/internal/logger"
	"github.com/ignatzorin/freelance-jobs/internal/metrics"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-jobs/internal/validation"
)

// Publisher ставит побочные эффекты в outbox внутри текущей транзакции.
type Publisher interface {
	Notify(ctx context.Context, draft entity.NotificationDraft) error
	PostJobCard(ctx context.Context, card entity.JobCard) error
}

// JobCache сбрасывает кэшированные чтения заказов клиента. Может быть nil.
type JobCache interface {
	InvalidateJobs(clientID uuid.UUID)
}

type SubmitProposalInput struct {
	JobID            uuid.UUID
	FreelancerID     uuid.UUID
	CoverLetter      string
	ProposedBudget   string
	ProposedDuration string
	Attachments      []string
}

type SubmitProposalUseCase struct {
	proposals repository.ProposalRepository
	jobs      repository.JobRepository
	tx        repository.TxManager
	publisher Publisher
	cache     JobCache
	metrics   *metrics.Collector
}

func NewSubmitProposalUseCase(
	proposals repository.ProposalRepository,
	jobs repository.JobRepository,
	tx repository.TxManager,
	publisher Publisher,
	cache JobCache,
	m *metrics.Collector,
) *SubmitProposalUseCase {
	return &SubmitProposalUseCase{proposals: proposals, jobs: jobs, tx: tx, publisher: publisher, cache: cache, metrics: m}
}

// Execute сохраняет отклик и атомарно увеличивает счётчик откликов заказа.
func (uc *SubmitProposalUseCase) Execute(ctx context.Context, input SubmitProposalInput) (*entity.Proposal, error) {
	if err := validation.ValidateCoverLetter(input.CoverLetter); err != nil {
		return nil, invalid(err)
	}
	if err := validation.ValidateAttachments(input.Attachments); err != nil {
		return nil, invalid(err)
	}
	budget, err := valueobject.ParseAmount("предложенный бюджет", input.ProposedBudget)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateBudget(budget); err != nil {
		return nil, invalid(err)
	}

	job, err := uc.jobs.FindByID(ctx, input.JobID)
	if err != nil {
		return nil, err
	}
	if job.IsOwnedBy(input.FreelancerID) {
		return nil, apperror.New(apperror.ErrCodeValidation, "нельзя откликнуться на собственный заказ")
	}
	if !job.AcceptsProposals() {
		return nil, apperror.InvalidTransition("заказ больше не принимает отклики")
	}

	existing, err := uc.proposals.FindByJobAndFreelancer(ctx, input.JobID, input.FreelancerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.New(apperror.ErrCodeConflict, "вы уже откликнулись на этот заказ")
	}

	proposal, err := entity.NewProposal(job.ID, input.FreelancerID, input.CoverLetter, budget, input.ProposedDuration, input.Attachments)
	if err != nil {
		return nil, err
	}

	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		// Уникальный индекс (job_id, freelancer_id) ловит гонку двух одновременных откликов.
		if err := uc.proposals.Create(ctx, proposal); err != nil {
			return err
		}
		if err := uc.jobs.IncrementProposalsCount(ctx, job.ID); err != nil {
			return err
		}
		return uc.publisher.Notify(ctx, entity.NotificationDraft{
			UserID:     job.ClientID,
			Title:      "Новый отклик",
			Message:    "На заказ «" + job.Title + "» пришёл новый отклик",
			Type:       entity.NotificationProposalReceived,
			Priority:   entity.PriorityMedium,
			ActionURL:  jobURL(job.ID),
			ActionText: "Посмотреть отклики",
			Metadata: map[string]interface{}{
				"jobId":        job.ID.String(),
				"proposalId":   proposal.ID.String(),
				"freelancerId": proposal.FreelancerID.String(),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	// proposalsCount виден в витрине
	invalidateJobs(uc.cache, job.ClientID)
	uc.metrics.RecordProposal()
	logger.Log.WithFields(map[string]interface{}{
		"job_id":        job.ID,
		"proposal_id":   proposal.ID,
		"freelancer_id": proposal.FreelancerID,
	}).Info("proposal: отклик отправлен")
	return proposal, nil
}

func invalid(err error) error {
	return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
}

func invalidateJobs(cache JobCache, clientID uuid.UUID) {
	if cache != nil {
		cache.InvalidateJobs(clientID)
	}
}

func jobURL(id uuid.UUID) string {
	return "/jobs/" + id.String()
}
