package invitation_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-jobs/internal/outbox"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-jobs/internal/service"
	"github.com/ignatzorin/freelance-jobs/internal/usecase/invitation"
	"github.com/ignatzorin/freelance-jobs/internal/usecase/usecasetest"
)

const week = 7 * 24 * time.Hour

type fixture struct {
	store     *usecasetest.Store
	publisher *outbox.Publisher
	client    *entity.User
	job       *entity.Job
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := usecasetest.NewStore()
	client := &entity.User{ID: uuid.New(), Email: "client@example.com", DisplayName: "Анна", UserType: valueobject.UserTypeClient}
	store.AddUser(client)

	j, err := entity.NewJob(client.ID, client.Card(), entity.JobDraft{
		Title:       "Интернет-магазин",
		Description: "Магазин на React и Go",
		Skills:      []string{"React", "Go", "PostgreSQL"},
		Budget:      valueobject.Budget{Type: valueobject.BudgetTypeFixed, Min: 2000, Max: 5000, Currency: "USD"},
	})
	require.NoError(t, err)
	store.AddJob(j)

	return &fixture{store: store, publisher: outbox.NewPublisher(store.Outbox(), nil), client: client, job: j}
}

func (f *fixture) freelancer(name string, rating float64, skills ...string) *entity.User {
	u := &entity.User{
		ID:          uuid.New(),
		Email:       name + "@example.com",
		DisplayName: name,
		UserType:    valueobject.UserTypeFreelancer,
		Rating:      rating,
		Skills:      skills,
	}
	f.store.AddUser(u)
	return u
}

func (f *fixture) send() *invitation.SendInvitationsUseCase {
	return invitation.NewSendInvitationsUseCase(f.store.Jobs(), f.store.Users(), f.store.Invitations(), f.store.Tx(), f.publisher, week, nil)
}

func TestSendInvitations_PartialFailure(t *testing.T) {
	f := newFixture(t)
	good := f.freelancer("ivan", 4.8, "go", "PostgreSQL")
	other := f.freelancer("olga", 3.0, "Figma")
	missing := uuid.New()

	result, err := f.send().Execute(context.Background(), invitation.SendInvitationsInput{
		JobID:         f.job.ID,
		ClientID:      f.client.ID,
		FreelancerIDs: []uuid.UUID{good.ID, missing, other.ID},
		Message:       "Посмотрите, пожалуйста",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, result.Total, result.Successful+result.Failed)
	require.Len(t, result.Invitations, 2)
	require.Len(t, result.Results, 3)

	assert.True(t, result.Results[0].Success)
	assert.True(t, result.Results[0].NotificationQueued)
	assert.True(t, result.Results[0].ChatQueued)
	require.NotNil(t, result.Results[0].InvitationID)

	assert.Equal(t, missing, result.Results[1].FreelancerID)
	assert.False(t, result.Results[1].Success)
	assert.NotEmpty(t, result.Results[1].Error)
	assert.Nil(t, result.Results[1].InvitationID)
	assert.False(t, result.Results[1].NotificationQueued)

	assert.True(t, result.Results[2].Success)

	notes := f.store.Notifications()
	require.Len(t, notes, 2)
	assert.Equal(t, good.ID, notes[0].UserID)
	assert.Equal(t, entity.NotificationInvitation, notes[0].Type)
	assert.Len(t, f.store.JobCards(), 2)
}

func TestSendInvitations_Snapshot(t *testing.T) {
	f := newFixture(t)
	ivan := f.freelancer("ivan", 5, "Go", "React", "PostgreSQL")

	result, err := f.send().Execute(context.Background(), invitation.SendInvitationsInput{
		JobID:         f.job.ID,
		ClientID:      f.client.ID,
		FreelancerIDs: []uuid.UUID{ivan.ID},
	})
	require.NoError(t, err)
	require.Len(t, result.Invitations, 1)

	inv := result.Invitations[0]
	assert.Equal(t, valueobject.InvitationStatusPending, inv.Status)
	assert.Equal(t, "ivan", inv.FreelancerName)
	assert.Equal(t, 5.0, inv.FreelancerRating)
	assert.Equal(t, f.job.Title, inv.JobTitle)
	assert.Equal(t, 2000.0, inv.JobBudgetMin)
	assert.Equal(t, "USD", inv.JobCurrency)
	assert.WithinDuration(t, inv.InvitedAt.Add(week), inv.ExpiresAt, time.Second)
	require.NotNil(t, inv.MatchScore)
	assert.Equal(t, 100.0, *inv.MatchScore)
	assert.NotEmpty(t, inv.MatchReasons)

	stored, err := f.store.Invitations().FindByID(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.FreelancerName, stored.FreelancerName)
}

func TestSendInvitations_DuplicateIsItemFailure(t *testing.T) {
	f := newFixture(t)
	ivan := f.freelancer("ivan", 4, "Go")

	result, err := f.send().Execute(context.Background(), invitation.SendInvitationsInput{
		JobID:         f.job.ID,
		ClientID:      f.client.ID,
		FreelancerIDs: []uuid.UUID{ivan.ID, ivan.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Successful)
	assert.Equal(t, 1, result.Failed)
	// неудачная итерация откатывает и свои события
	assert.Len(t, f.store.Notifications(), 1)
}

func TestSendInvitations_StoreFailurePerItem(t *testing.T) {
	f := newFixture(t)
	ivan := f.freelancer("ivan", 4, "Go")
	f.store.FailOn("outbox.Enqueue", nil)

	result, err := f.send().Execute(context.Background(), invitation.SendInvitationsInput{
		JobID:         f.job.ID,
		ClientID:      f.client.ID,
		FreelancerIDs: []uuid.UUID{ivan.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Successful)
	assert.Equal(t, 1, result.Failed)

	invs, err := f.store.Invitations().FindByJobID(context.Background(), f.job.ID)
	require.NoError(t, err)
	assert.Empty(t, invs)
}

func TestSendInvitations_WholeCallErrors(t *testing.T) {
	f := newFixture(t)
	ivan := f.freelancer("ivan", 4, "Go")

	_, err := f.send().Execute(context.Background(), invitation.SendInvitationsInput{
		JobID: uuid.New(), ClientID: f.client.ID, FreelancerIDs: []uuid.UUID{ivan.ID},
	})
	assert.True(t, apperror.IsNotFound(err))

	_, err = f.send().Execute(context.Background(), invitation.SendInvitationsInput{
		JobID: f.job.ID, ClientID: ivan.ID, FreelancerIDs: []uuid.UUID{ivan.ID},
	})
	assert.True(t, apperror.IsForbidden(err))

	_, err = f.send().Execute(context.Background(), invitation.SendInvitationsInput{
		JobID: f.job.ID, ClientID: f.client.ID,
	})
	assert.True(t, apperror.IsValidation(err))

	require.NoError(t, f.job.Cancel())
	f.store.AddJob(f.job)
	_, err = f.send().Execute(context.Background(), invitation.SendInvitationsInput{
		JobID: f.job.ID, ClientID: f.client.ID, FreelancerIDs: []uuid.UUID{ivan.ID},
	})
	assert.True(t, apperror.IsInvalidTransition(err))
}

func (f *fixture) seedInvitation(t *testing.T, freelancer *entity.User, ttl time.Duration) *entity.Invitation {
	t.Helper()
	inv, err := entity.NewInvitation(f.job, freelancer, "Привет", ttl)
	require.NoError(t, err)
	f.store.AddInvitation(inv)
	return inv
}

func TestUpdateInvitationStatus_Accept(t *testing.T) {
	f := newFixture(t)
	ivan := f.freelancer("ivan", 4, "Go")
	inv := f.seedInvitation(t, ivan, week)
	uc := invitation.NewUpdateInvitationStatusUseCase(f.store.Invitations(), f.store.Tx(), f.publisher)

	updated, err := uc.Execute(context.Background(), invitation.RespondInput{
		InvitationID:    inv.ID,
		ActorID:         ivan.ID,
		Status:          "accepted",
		ResponseMessage: "С удовольствием",
	})
	require.NoError(t, err)
	assert.Equal(t, valueobject.InvitationStatusAccepted, updated.Status)
	require.NotNil(t, updated.RespondedAt)
	require.NotNil(t, updated.ResponseMessage)
	assert.Equal(t, "С удовольствием", *updated.ResponseMessage)

	notes := f.store.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, f.client.ID, notes[0].UserID)
	assert.Equal(t, entity.NotificationInvitationResponse, notes[0].Type)
	assert.Equal(t, "accepted", notes[0].Metadata["status"])

	_, err = uc.Execute(context.Background(), invitation.RespondInput{
		InvitationID: inv.ID, ActorID: ivan.ID, Status: "declined",
	})
	assert.True(t, apperror.IsInvalidTransition(err))
}

func TestUpdateInvitationStatus_Guards(t *testing.T) {
	f := newFixture(t)
	ivan := f.freelancer("ivan", 4, "Go")
	inv := f.seedInvitation(t, ivan, week)
	uc := invitation.NewUpdateInvitationStatusUseCase(f.store.Invitations(), f.store.Tx(), f.publisher)

	_, err := uc.Execute(context.Background(), invitation.RespondInput{InvitationID: inv.ID, ActorID: f.client.ID, Status: "accepted"})
	assert.True(t, apperror.IsForbidden(err))

	_, err = uc.Execute(context.Background(), invitation.RespondInput{InvitationID: inv.ID, ActorID: ivan.ID, Status: "maybe"})
	assert.True(t, apperror.IsValidation(err))

	_, err = uc.Execute(context.Background(), invitation.RespondInput{InvitationID: inv.ID, ActorID: ivan.ID, Status: "expired"})
	assert.True(t, apperror.IsValidation(err))

	_, err = uc.Execute(context.Background(), invitation.RespondInput{InvitationID: uuid.New(), ActorID: ivan.ID, Status: "accepted"})
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpdateInvitationStatus_LazyExpiry(t *testing.T) {
	f := newFixture(t)
	ivan := f.freelancer("ivan", 4, "Go")
	inv := f.seedInvitation(t, ivan, time.Hour)
	inv.ExpiresAt = time.Now().Add(-time.Minute)
	f.store.AddInvitation(inv)
	uc := invitation.NewUpdateInvitationStatusUseCase(f.store.Invitations(), f.store.Tx(), f.publisher)

	_, err := uc.Execute(context.Background(), invitation.RespondInput{InvitationID: inv.ID, ActorID: ivan.ID, Status: "accepted"})
	assert.True(t, apperror.IsInvalidTransition(err))

	stored, err := f.store.Invitations().FindByID(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.InvitationStatusPending, stored.Status)
	assert.Equal(t, valueobject.InvitationStatusExpired, stored.EffectiveStatus(time.Now()))
	assert.Empty(t, f.store.Notifications())
}

func TestGetJobInvitations_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	ivan := f.freelancer("ivan", 4, "Go")
	f.seedInvitation(t, ivan, week)
	uc := invitation.NewGetJobInvitationsUseCase(f.store.Jobs(), f.store.Invitations())

	_, err := uc.Execute(context.Background(), f.job.ID, ivan.ID)
	assert.True(t, apperror.IsForbidden(err))

	list, err := uc.Execute(context.Background(), f.job.ID, f.client.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	mine, err := invitation.NewGetFreelancerInvitationsUseCase(f.store.Invitations()).Execute(context.Background(), ivan.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestSuggestFreelancers_RanksBySkills(t *testing.T) {
	f := newFixture(t)
	best := f.freelancer("best", 4.0, "Go", "React", "PostgreSQL")
	partial := f.freelancer("partial", 5.0, "Go")
	f.freelancer("none", 5.0, "Figma")

	uc := invitation.NewSuggestFreelancersUseCase(f.store.Jobs(), f.store.Users(), service.NewCacheService())
	suggestions, err := uc.Execute(context.Background(), f.job.ID, f.client.ID, 2)
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, best.ID, suggestions[0].Freelancer.ID)
	assert.Equal(t, partial.ID, suggestions[1].Freelancer.ID)
	assert.Greater(t, suggestions[0].Match.Score, suggestions[1].Match.Score)

	_, err = uc.Execute(context.Background(), f.job.ID, best.ID, 2)
	assert.True(t, apperror.IsForbidden(err))
}
