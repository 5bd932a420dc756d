package job

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/domain/repository"
	"github.com/ignatzorin/freelance-jobs/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-jobs/internal/service"
)

type GetJobUseCase struct {
	jobs repository.JobRepository
}

func NewGetJobUseCase(jobs repository.JobRepository) *GetJobUseCase {
	return &GetJobUseCase{jobs: jobs}
}

// Execute только читает: счётчики просмотров не трогаются.
func (uc *GetJobUseCase) Execute(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	return uc.jobs.FindByID(ctx, id)
}

type JobPage struct {
	Jobs   []*entity.Job
	Total  int
	Limit  int
	Offset int
}

type ListJobsUseCase struct {
	jobs repository.JobRepository
}

func NewListJobsUseCase(jobs repository.JobRepository) *ListJobsUseCase {
	return &ListJobsUseCase{jobs: jobs}
}

func (uc *ListJobsUseCase) Execute(ctx context.Context, filter repository.JobFilter) (*JobPage, error) {
	filter = filter.Normalize()

	if filter.Status != "" {
		status, err := valueobject.NewJobStatus(filter.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = string(status)
	}
	if filter.ExperienceLevel != "" {
		level, err := valueobject.NewExperienceLevel(filter.ExperienceLevel)
		if err != nil {
			return nil, err
		}
		filter.ExperienceLevel = string(level)
	}

	jobs, total, err := uc.jobs.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &JobPage{Jobs: jobs, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// Search: то же, что Execute, с поиском по названию.
func (uc *ListJobsUseCase) Search(ctx context.Context, query string, filter repository.JobFilter) (*JobPage, error) {
	filter.Search = strings.TrimSpace(query)
	return uc.Execute(ctx, filter)
}

type GetClientJobsUseCase struct {
	jobs repository.JobRepository
}

func NewGetClientJobsUseCase(jobs repository.JobRepository) *GetClientJobsUseCase {
	return &GetClientJobsUseCase{jobs: jobs}
}

func (uc *GetClientJobsUseCase) Execute(ctx context.Context, clientID uuid.UUID) ([]*entity.Job, error) {
	return uc.jobs.FindByClientID(ctx, clientID)
}

const (
	DefaultFeaturedLimit = 6
	MaxFeaturedLimit     = 50
)

type GetFeaturedJobsUseCase struct {
	jobs  repository.JobRepository
	cache Cache
}

func NewGetFeaturedJobsUseCase(jobs repository.JobRepository, cache Cache) *GetFeaturedJobsUseCase {
	return &GetFeaturedJobsUseCase{jobs: jobs, cache: cache}
}

// Execute возвращает открытые заказы с пометкой featured, новые первыми.
func (uc *GetFeaturedJobsUseCase) Execute(ctx context.Context, limit int) ([]*entity.Job, error) {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	if limit > MaxFeaturedLimit {
		limit = MaxFeaturedLimit
	}

	load := func() (interface{}, error) {
		jobs, _, err := uc.jobs.List(ctx, repository.JobFilter{
			Status:       string(valueobject.JobStatusActive),
			FeaturedOnly: true,
			SortBy:       repository.SortNewest,
			Limit:        limit,
		})
		return jobs, err
	}
	if uc.cache == nil {
		value, err := load()
		if err != nil {
			return nil, err
		}
		return value.([]*entity.Job), nil
	}

	value, err := uc.cache.GetOrSet(ctx, service.FeaturedJobsCacheKey(limit), cacheTTL, load)
	if err != nil {
		return nil, err
	}
	return value.([]*entity.Job), nil
}

type GetJobStatsUseCase struct {
	jobs  repository.JobRepository
	cache Cache
}

func NewGetJobStatsUseCase(jobs repository.JobRepository, cache Cache) *GetJobStatsUseCase {
	return &GetJobStatsUseCase{jobs: jobs, cache: cache}
}

// Execute считает заказы по статусам одним запросом. clientID nil означает все заказы.
func (uc *GetJobStatsUseCase) Execute(ctx context.Context, clientID *uuid.UUID) (repository.JobStats, error) {
	load := func() (interface{}, error) {
		return uc.jobs.CountByStatus(ctx, clientID)
	}
	if uc.cache == nil {
		return uc.jobs.CountByStatus(ctx, clientID)
	}

	value, err := uc.cache.GetOrSet(ctx, service.StatsCacheKey(clientID), cacheTTL, load)
	if err != nil {
		return repository.JobStats{}, err
	}
	return value.(repository.JobStats), nil
}

// JobOverview: заказ вместе с откликами и приглашениями. Отклики и приглашения
// видит только владелец.
type JobOverview struct {
	Job         *entity.Job
	Proposals   []*entity.Proposal
	Invitations []*entity.Invitation
	IsOwner     bool
}

type GetJobOverviewUseCase struct {
	jobs        repository.JobRepository
	proposals   repository.ProposalRepository
	invitations repository.InvitationRepository
}

func NewGetJobOverviewUseCase(jobs repository.JobRepository, proposals repository.ProposalRepository, invitations repository.InvitationRepository) *GetJobOverviewUseCase {
	return &GetJobOverviewUseCase{jobs: jobs, proposals: proposals, invitations: invitations}
}

func (uc *GetJobOverviewUseCase) Execute(ctx context.Context, jobID, actorID uuid.UUID) (*JobOverview, error) {
	var (
		job         *entity.Job
		proposals   []*entity.Proposal
		invitations []*entity.Invitation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		job, err = uc.jobs.FindByID(gctx, jobID)
		return err
	})
	g.Go(func() error {
		var err error
		proposals, err = uc.proposals.FindByJobID(gctx, jobID)
		return err
	})
	g.Go(func() error {
		var err error
		invitations, err = uc.invitations.FindByJobID(gctx, jobID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	overview := &JobOverview{Job: job, IsOwner: job.IsOwnedBy(actorID)}
	if overview.IsOwner {
		overview.Proposals = proposals
		overview.Invitations = invitations
	}
	return overview, nil
}
