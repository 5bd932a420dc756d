package proposal

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/domain/repository"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
)

type GetProposalUseCase struct {
	proposals repository.ProposalRepository
}

func NewGetProposalUseCase(proposals repository.ProposalRepository) *GetProposalUseCase {
	return &GetProposalUseCase{proposals: proposals}
}

func (uc *GetProposalUseCase) Execute(ctx context.Context, id uuid.UUID) (*entity.Proposal, error) {
	return uc.proposals.FindByID(ctx, id)
}

type ListJobProposalsUseCase struct {
	proposals repository.ProposalRepository
	jobs      repository.JobRepository
}

func NewListJobProposalsUseCase(proposals repository.ProposalRepository, jobs repository.JobRepository) *ListJobProposalsUseCase {
	return &ListJobProposalsUseCase{proposals: proposals, jobs: jobs}
}

// Execute отдаёт отклики заказа, новые первыми. Смотреть их может только клиент.
func (uc *ListJobProposalsUseCase) Execute(ctx context.Context, jobID, actorID uuid.UUID) ([]*entity.Proposal, error) {
	job, err := uc.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.IsOwnedBy(actorID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "отклики видит только владелец заказа")
	}
	return uc.proposals.FindByJobID(ctx, jobID)
}

type ListFreelancerProposalsUseCase struct {
	proposals repository.ProposalRepository
}

func NewListFreelancerProposalsUseCase(proposals repository.ProposalRepository) *ListFreelancerProposalsUseCase {
	return &ListFreelancerProposalsUseCase{proposals: proposals}
}

func (uc *ListFreelancerProposalsUseCase) Execute(ctx context.Context, freelancerID uuid.UUID) ([]*entity.Proposal, error) {
	return uc.proposals.FindByFreelancerID(ctx, freelancerID)
}
