package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/domain/valueobject"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	UpdateUserType(ctx context.Context, id uuid.UUID, userType valueobject.UserType) error
	ListFreelancers(ctx context.Context, limit int) ([]*entity.User, error)
}
