package proposal_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/domain/repository"
	"github.com/ignatzorin/freelance-jobs/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-jobs/internal/outbox"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-jobs/internal/service"
	jobuc "github.com/ignatzorin/freelance-jobs/internal/usecase/job"
	"github.com/ignatzorin/freelance-jobs/internal/usecase/proposal"
	"github.com/ignatzorin/freelance-jobs/internal/usecase/usecasetest"
)

type fixture struct {
	store     *usecasetest.Store
	publisher *outbox.Publisher
	job       *entity.Job
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := usecasetest.NewStore()
	j, err := entity.NewJob(uuid.New(), entity.ClientCard{Name: "Анна"}, entity.JobDraft{
		Title:       "Мобильное приложение",
		Description: "Приложение на Flutter",
		Budget:      valueobject.Budget{Type: valueobject.BudgetTypeFixed, Min: 1000, Max: 3000, Currency: "USD"},
	})
	require.NoError(t, err)
	store.AddJob(j)
	return &fixture{store: store, publisher: outbox.NewPublisher(store.Outbox(), nil), job: j}
}

func (f *fixture) submit() *proposal.SubmitProposalUseCase {
	return proposal.NewSubmitProposalUseCase(f.store.Proposals(), f.store.Jobs(), f.store.Tx(), f.publisher, nil, nil)
}

func (f *fixture) accept() *proposal.AcceptProposalUseCase {
	return proposal.NewAcceptProposalUseCase(f.store.Proposals(), f.store.Jobs(), f.store.Tx(), f.publisher, nil, nil)
}

func (f *fixture) propose(t *testing.T, freelancerID uuid.UUID) *entity.Proposal {
	t.Helper()
	p, err := f.submit().Execute(context.Background(), proposal.SubmitProposalInput{
		JobID:          f.job.ID,
		FreelancerID:   freelancerID,
		CoverLetter:    "Сделаю за две недели",
		ProposedBudget: "2000",
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) reload(t *testing.T) *entity.Job {
	t.Helper()
	j, err := f.store.Jobs().FindByID(context.Background(), f.job.ID)
	require.NoError(t, err)
	return j
}

func TestSubmitProposal_Success(t *testing.T) {
	f := newFixture(t)
	freelancer := uuid.New()

	p := f.propose(t, freelancer)

	assert.Equal(t, valueobject.ProposalStatusPending, p.Status)
	assert.Equal(t, 2000.0, p.ProposedBudget)
	assert.Equal(t, []string{}, p.Attachments)
	assert.Equal(t, 1, f.reload(t).ProposalsCount)

	notes := f.store.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, f.job.ClientID, notes[0].UserID)
	assert.Equal(t, entity.NotificationProposalReceived, notes[0].Type)
	assert.Equal(t, p.ID.String(), notes[0].Metadata["proposalId"])
}

func TestSubmitProposal_CountsEachProposalOnce(t *testing.T) {
	f := newFixture(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.submit().Execute(context.Background(), proposal.SubmitProposalInput{
				JobID:          f.job.ID,
				FreelancerID:   uuid.New(),
				CoverLetter:    "Готов начать",
				ProposedBudget: "1500",
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, f.reload(t).ProposalsCount)
}

func TestSubmitProposal_Duplicate(t *testing.T) {
	f := newFixture(t)
	freelancer := uuid.New()
	f.propose(t, freelancer)

	_, err := f.submit().Execute(context.Background(), proposal.SubmitProposalInput{
		JobID:          f.job.ID,
		FreelancerID:   freelancer,
		CoverLetter:    "Ещё раз",
		ProposedBudget: "900",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
	assert.Equal(t, 1, f.reload(t).ProposalsCount)
}

func TestSubmitProposal_Rejections(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		input proposal.SubmitProposalInput
		check func(error) bool
	}{
		{
			name:  "own job",
			input: proposal.SubmitProposalInput{JobID: f.job.ID, FreelancerID: f.job.ClientID, CoverLetter: "x", ProposedBudget: "10"},
			check: apperror.IsValidation,
		},
		{
			name:  "missing job",
			input: proposal.SubmitProposalInput{JobID: uuid.New(), FreelancerID: uuid.New(), CoverLetter: "x", ProposedBudget: "10"},
			check: apperror.IsNotFound,
		},
		{
			name:  "empty cover letter",
			input: proposal.SubmitProposalInput{JobID: f.job.ID, FreelancerID: uuid.New(), CoverLetter: "  ", ProposedBudget: "10"},
			check: apperror.IsValidation,
		},
		{
			name:  "zero budget",
			input: proposal.SubmitProposalInput{JobID: f.job.ID, FreelancerID: uuid.New(), CoverLetter: "x", ProposedBudget: "0"},
			check: apperror.IsValidation,
		},
		{
			name:  "unparsable budget",
			input: proposal.SubmitProposalInput{JobID: f.job.ID, FreelancerID: uuid.New(), CoverLetter: "x", ProposedBudget: "дёшево"},
			check: apperror.IsValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.submit().Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}
	assert.Equal(t, 0, f.reload(t).ProposalsCount)
}

func TestSubmitProposal_ClosedJob(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.job.Cancel())
	f.store.AddJob(f.job)

	_, err := f.submit().Execute(context.Background(), proposal.SubmitProposalInput{
		JobID: f.job.ID, FreelancerID: uuid.New(), CoverLetter: "x", ProposedBudget: "10",
	})
	assert.True(t, apperror.IsInvalidTransition(err))
}

func TestAcceptProposal_AssignsAndRejectsOthers(t *testing.T) {
	f := newFixture(t)
	winner := uuid.New()
	loserA, loserB := uuid.New(), uuid.New()
	accepted := f.propose(t, winner)
	f.propose(t, loserA)
	f.propose(t, loserB)
	before := len(f.store.Notifications())

	result, err := f.accept().Execute(context.Background(), proposal.AcceptProposalInput{
		ProposalID:   accepted.ID,
		JobID:        f.job.ID,
		FreelancerID: winner,
		ActorID:      f.job.ClientID,
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{loserA, loserB}, result.Rejected)

	job := f.reload(t)
	assert.Equal(t, valueobject.JobStatusInProgress, job.Status)
	require.NotNil(t, job.AssignedFreelancerID)
	assert.Equal(t, winner, *job.AssignedFreelancerID)

	all, err := f.store.Proposals().FindByJobID(context.Background(), f.job.ID)
	require.NoError(t, err)
	acceptedCount := 0
	for _, p := range all {
		if p.Status == valueobject.ProposalStatusAccepted {
			acceptedCount++
			assert.Equal(t, accepted.ID, p.ID)
		} else {
			assert.Equal(t, valueobject.ProposalStatusRejected, p.Status)
		}
	}
	assert.Equal(t, 1, acceptedCount)

	notes := f.store.Notifications()[before:]
	require.Len(t, notes, 3)
	assert.Equal(t, winner, notes[0].UserID)
	assert.Equal(t, entity.NotificationProposalAccepted, notes[0].Type)
	for _, n := range notes[1:] {
		assert.Equal(t, entity.NotificationProposalRejected, n.Type)
	}

	cards := f.store.JobCards()
	require.Len(t, cards, 1)
	assert.Equal(t, winner, cards[0].FreelancerID)
	assert.Equal(t, f.job.ClientID, cards[0].ClientID)
}

func TestAcceptProposal_FailureLeavesEverythingPending(t *testing.T) {
	failures := []string{"proposals.UpdateStatus", "jobs.Update", "proposals.RejectOthers", "outbox.Enqueue"}

	for _, method := range failures {
		t.Run(method, func(t *testing.T) {
			f := newFixture(t)
			winner := uuid.New()
			accepted := f.propose(t, winner)
			f.propose(t, uuid.New())
			events := len(f.store.Events(entity.OutboxNotificationCreate))

			f.store.FailOn(method, nil)
			_, err := f.accept().Execute(context.Background(), proposal.AcceptProposalInput{
				ProposalID:   accepted.ID,
				JobID:        f.job.ID,
				FreelancerID: winner,
				ActorID:      f.job.ClientID,
			})
			require.Error(t, err)

			job := f.reload(t)
			assert.Equal(t, valueobject.JobStatusActive, job.Status)
			assert.Nil(t, job.AssignedFreelancerID)

			all, err := f.store.Proposals().FindByJobID(context.Background(), f.job.ID)
			require.NoError(t, err)
			for _, p := range all {
				assert.Equal(t, valueobject.ProposalStatusPending, p.Status)
			}
			assert.Len(t, f.store.Events(entity.OutboxNotificationCreate), events)
			assert.Empty(t, f.store.JobCards())
		})
	}
}

func TestAcceptProposal_Guards(t *testing.T) {
	f := newFixture(t)
	freelancer := uuid.New()
	p := f.propose(t, freelancer)

	_, err := f.accept().Execute(context.Background(), proposal.AcceptProposalInput{
		ProposalID: p.ID, JobID: f.job.ID, FreelancerID: freelancer, ActorID: uuid.New(),
	})
	assert.True(t, apperror.IsForbidden(err))

	_, err = f.accept().Execute(context.Background(), proposal.AcceptProposalInput{
		ProposalID: p.ID, JobID: f.job.ID, FreelancerID: uuid.New(), ActorID: f.job.ClientID,
	})
	assert.True(t, apperror.IsValidation(err))

	_, err = f.accept().Execute(context.Background(), proposal.AcceptProposalInput{
		ProposalID: p.ID, JobID: f.job.ID, FreelancerID: freelancer, ActorID: f.job.ClientID,
	})
	require.NoError(t, err)

	// повторное принятие: заказ уже в работе
	_, err = f.accept().Execute(context.Background(), proposal.AcceptProposalInput{
		ProposalID: p.ID, JobID: f.job.ID, FreelancerID: freelancer, ActorID: f.job.ClientID,
	})
	assert.True(t, apperror.IsInvalidTransition(err))
}

func TestAcceptProposal_RefreshesCachedStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cache := service.NewCacheService()
	stats := jobuc.NewGetJobStatsUseCase(f.store.Jobs(), cache)
	accept := proposal.NewAcceptProposalUseCase(f.store.Proposals(), f.store.Jobs(), f.store.Tx(), f.publisher, cache, nil)

	freelancer := uuid.New()
	p := f.propose(t, freelancer)

	before, err := stats.Execute(ctx, &f.job.ClientID)
	require.NoError(t, err)
	assert.Equal(t, repository.JobStats{Active: 1, Total: 1}, before)

	_, err = accept.Execute(ctx, proposal.AcceptProposalInput{
		ProposalID: p.ID, JobID: f.job.ID, FreelancerID: freelancer, ActorID: f.job.ClientID,
	})
	require.NoError(t, err)

	after, err := stats.Execute(ctx, &f.job.ClientID)
	require.NoError(t, err)
	assert.Equal(t, repository.JobStats{InProgress: 1, Total: 1}, after)
}

func TestRejectProposal(t *testing.T) {
	f := newFixture(t)
	freelancer := uuid.New()
	p := f.propose(t, freelancer)
	uc := proposal.NewRejectProposalUseCase(f.store.Proposals(), f.store.Jobs(), f.store.Tx(), f.publisher)

	_, err := uc.Execute(context.Background(), p.ID, uuid.New())
	assert.True(t, apperror.IsForbidden(err))

	rejected, err := uc.Execute(context.Background(), p.ID, f.job.ClientID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.ProposalStatusRejected, rejected.Status)

	notes := f.store.Notifications()
	last := notes[len(notes)-1]
	assert.Equal(t, freelancer, last.UserID)
	assert.Equal(t, entity.NotificationProposalRejected, last.Type)

	_, err = uc.Execute(context.Background(), p.ID, f.job.ClientID)
	assert.True(t, apperror.IsInvalidTransition(err))

	// отклики отменённого заказа не трогаются
	pending := f.propose(t, uuid.New())
	cancelled := f.reload(t)
	require.NoError(t, cancelled.Cancel())
	f.store.AddJob(cancelled)

	_, err = uc.Execute(context.Background(), pending.ID, f.job.ClientID)
	assert.True(t, apperror.IsInvalidTransition(err))

	stored, err := f.store.Proposals().FindByID(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.ProposalStatusPending, stored.Status)
}

func TestRejectProposal_StoreFailure(t *testing.T) {
	f := newFixture(t)
	p := f.propose(t, uuid.New())
	f.store.FailOn("outbox.Enqueue", errors.New("connection reset"))
	uc := proposal.NewRejectProposalUseCase(f.store.Proposals(), f.store.Jobs(), f.store.Tx(), f.publisher)

	_, err := uc.Execute(context.Background(), p.ID, f.job.ClientID)
	require.Error(t, err)

	stored, err := f.store.Proposals().FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.ProposalStatusPending, stored.Status)
}

func TestListJobProposals_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	f.propose(t, uuid.New())
	f.propose(t, uuid.New())
	uc := proposal.NewListJobProposalsUseCase(f.store.Proposals(), f.store.Jobs())

	_, err := uc.Execute(context.Background(), f.job.ID, uuid.New())
	assert.True(t, apperror.IsForbidden(err))

	list, err := uc.Execute(context.Background(), f.job.ID, f.job.ClientID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
