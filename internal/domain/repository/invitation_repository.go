package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
)

type InvitationRepository interface {
	Create(ctx context.Context, invitation *entity.Invitation) error
	// UpdateResponse записывает ответ только поверх pending.
	UpdateResponse(ctx context.Context, invitation *entity.Invitation) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Invitation, error)
	FindByJobID(ctx context.Context, jobID uuid.UUID) ([]*entity.Invitation, error)
	FindByFreelancerID(ctx context.Context, freelancerID uuid.UUID) ([]*entity.Invitation, error)
}
