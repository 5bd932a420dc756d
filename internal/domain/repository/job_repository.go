package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
)

type JobRepository interface {
	Create(ctx context.Context, job *entity.Job) error
	Update(ctx context.Context, job *entity.Job) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Job, error)
	// FindByIDForUpdate блокирует строку заказа до конца текущей транзакции.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Job, error)
	FindByClientID(ctx context.Context, clientID uuid.UUID) ([]*entity.Job, error)
	List(ctx context.Context, filter JobFilter) ([]*entity.Job, int, error)
	IncrementProposalsCount(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context, clientID *uuid.UUID) (JobStats, error)
}

type JobSort string

const (
	SortNewest     JobSort = "newest"
	SortBudgetHigh JobSort = "budget-high"
	SortBudgetLow  JobSort = "budget-low"
	SortProposals  JobSort = "proposals"
)

func (s JobSort) IsValid() bool {
	switch s {
	case SortNewest, SortBudgetHigh, SortBudgetLow, SortProposals:
		return true
	}
	return false
}

const (
	DefaultJobLimit = 20
	MaxJobLimit     = 100
)

type JobFilter struct {
	Category        string
	BudgetMin       *float64
	BudgetMax       *float64
	ExperienceLevel string
	Status          string
	ClientID        *uuid.UUID
	Search          string
	FeaturedOnly    bool
	SortBy          JobSort
	Limit           int
	Offset          int
}

// Normalize подставляет сортировку и границы пагинации по умолчанию.
func (f JobFilter) Normalize() JobFilter {
	if !f.SortBy.IsValid() {
		f.SortBy = SortNewest
	}
	if f.Limit <= 0 {
		f.Limit = DefaultJobLimit
	}
	if f.Limit > MaxJobLimit {
		f.Limit = MaxJobLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

type JobStats struct {
	Active     int `json:"active"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
	Total      int `json:"total"`
}
