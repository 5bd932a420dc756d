package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
)

type ProposalRepository interface {
	// Create возвращает CONFLICT, если исполнитель уже откликался на заказ.
	Create(ctx context.Context, proposal *entity.Proposal) error
	// UpdateStatus меняет статус только у ожидающего предложения,
	// иначе возвращает INVALID_TRANSITION.
	UpdateStatus(ctx context.Context, proposal *entity.Proposal) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Proposal, error)
	FindByJobID(ctx context.Context, jobID uuid.UUID) ([]*entity.Proposal, error)
	FindByFreelancerID(ctx context.Context, freelancerID uuid.UUID) ([]*entity.Proposal, error)
	FindByJobAndFreelancer(ctx context.Context, jobID, freelancerID uuid.UUID) (*entity.Proposal, error)
	// RejectOthers одним запросом отклоняет все ожидающие предложения заказа,
	// кроме exceptID, и возвращает их авторов.
	RejectOthers(ctx context.Context, jobID, exceptID uuid.UUID) ([]uuid.UUID, error)
}
