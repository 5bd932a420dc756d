package invitation

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/domain/repository"
	"github.com/ignatzorin/freelance-jobs/internal/matching"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-jobs/internal/service"
)

type GetJobInvitationsUseCase struct {
	jobs        repository.JobRepository
	invitations repository.InvitationRepository
}

func NewGetJobInvitationsUseCase(jobs repository.JobRepository, invitations repository.InvitationRepository) *GetJobInvitationsUseCase {
	return &GetJobInvitationsUseCase{jobs: jobs, invitations: invitations}
}

func (uc *GetJobInvitationsUseCase) Execute(ctx context.Context, jobID, actorID uuid.UUID) ([]*entity.Invitation, error) {
	job, err := uc.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.IsOwnedBy(actorID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "приглашения видит только владелец заказа")
	}
	return uc.invitations.FindByJobID(ctx, jobID)
}

type GetFreelancerInvitationsUseCase struct {
	invitations repository.InvitationRepository
}

func NewGetFreelancerInvitationsUseCase(invitations repository.InvitationRepository) *GetFreelancerInvitationsUseCase {
	return &GetFreelancerInvitationsUseCase{invitations: invitations}
}

func (uc *GetFreelancerInvitationsUseCase) Execute(ctx context.Context, freelancerID uuid.UUID) ([]*entity.Invitation, error) {
	return uc.invitations.FindByFreelancerID(ctx, freelancerID)
}

// Suggestion: исполнитель с оценкой соответствия заказу.
type Suggestion struct {
	Freelancer *entity.User
	Match      matching.Result
}

type SuggestFreelancersUseCase struct {
	jobs  repository.JobRepository
	users repository.UserRepository
	cache Cache
}

func NewSuggestFreelancersUseCase(jobs repository.JobRepository, users repository.UserRepository, cache Cache) *SuggestFreelancersUseCase {
	return &SuggestFreelancersUseCase{jobs: jobs, users: users, cache: cache}
}

// Execute ранжирует исполнителей по навыкам заказа тем же счётом,
// что записывается в приглашение.
func (uc *SuggestFreelancersUseCase) Execute(ctx context.Context, jobID, actorID uuid.UUID, limit int) ([]Suggestion, error) {
	if limit <= 0 {
		limit = DefaultSuggestionsLimit
	}
	if limit > MaxSuggestionsLimit {
		limit = MaxSuggestionsLimit
	}

	job, err := uc.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.IsOwnedBy(actorID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "подбор доступен только владельцу заказа")
	}

	load := func() (interface{}, error) {
		candidates, err := uc.users.ListFreelancers(ctx, candidatePool)
		if err != nil {
			return nil, err
		}
		ranked := matching.Rank(job.Skills, candidates, func(u *entity.User) matching.Candidate {
			return matching.Candidate{Skills: u.Skills, Rating: u.Rating}
		}, limit+1)

		suggestions := make([]Suggestion, 0, len(ranked))
		for _, r := range ranked {
			if r.Item.ID == job.ClientID {
				continue
			}
			suggestions = append(suggestions, Suggestion{Freelancer: r.Item, Match: r.Result})
		}
		if len(suggestions) > limit {
			suggestions = suggestions[:limit]
		}
		return suggestions, nil
	}

	if uc.cache == nil {
		value, err := load()
		if err != nil {
			return nil, err
		}
		return value.([]Suggestion), nil
	}
	value, err := uc.cache.GetOrSet(ctx, service.SuggestionsCacheKey(job.ID, limit), suggestionsTTL, load)
	if err != nil {
		return nil, err
	}
	return value.([]Suggestion), nil
}
