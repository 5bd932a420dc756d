package job_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/domain/repository"
	"github.com/ignatzorin/freelance-jobs/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-jobs/internal/outbox"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-jobs/internal/service"
	"github.com/ignatzorin/freelance-jobs/internal/usecase/job"
	"github.com/ignatzorin/freelance-jobs/internal/usecase/usecasetest"
)

type fixture struct {
	store     *usecasetest.Store
	publisher *outbox.Publisher
	cache     *service.CacheService
	client    *entity.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := usecasetest.NewStore()
	client := &entity.User{ID: uuid.New(), Email: "client@example.com", DisplayName: "Анна", AvatarURL: "/a.png"}
	store.AddUser(client)
	return &fixture{
		store:     store,
		publisher: outbox.NewPublisher(store.Outbox(), nil),
		cache:     service.NewCacheService(),
		client:    client,
	}
}

func (f *fixture) create() *job.CreateJobUseCase {
	return job.NewCreateJobUseCase(f.store.Jobs(), f.store.Users(), f.store.Tx(), f.publisher, f.cache, nil)
}

func (f *fixture) newJob(t *testing.T) *entity.Job {
	t.Helper()
	j, err := f.create().Execute(context.Background(), job.CreateJobInput{
		ClientID: f.client.ID,
		JobFields: job.JobFields{
			Title:       "Backend на Go",
			Description: "Нужен REST API",
			Skills:      []string{"Go", "PostgreSQL"},
			BudgetMin:   "500",
			BudgetMax:   "1500",
		},
	})
	require.NoError(t, err)
	return j
}

func TestCreateJob_Defaults(t *testing.T) {
	f := newFixture(t)
	j := f.newJob(t)

	assert.Equal(t, valueobject.JobStatusActive, j.Status)
	assert.Equal(t, 0, j.ProposalsCount)
	assert.Equal(t, 0, j.ViewsCount)
	assert.Equal(t, "USD", j.Budget.Currency)
	assert.Equal(t, valueobject.BudgetTypeFixed, j.Budget.Type)
	assert.Equal(t, valueobject.ExperienceIntermediate, j.ExperienceLevel)
	assert.Equal(t, "Remote", j.Location)
	assert.Equal(t, "Анна", j.ClientName)
	assert.Equal(t, "/a.png", j.ClientAvatar)
	assert.Equal(t, 500.0, j.Budget.Min)
	assert.Equal(t, 1500.0, j.Budget.Max)
	assert.Equal(t, []string{}, j.Attachments)

	stored, err := f.store.Jobs().FindByID(context.Background(), j.ID)
	require.NoError(t, err)
	assert.Equal(t, j.Title, stored.Title)
}

func TestCreateJob_EnqueuesSideEffects(t *testing.T) {
	f := newFixture(t)
	j := f.newJob(t)

	notes := f.store.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, f.client.ID, notes[0].UserID)
	assert.Equal(t, entity.NotificationJobCreated, notes[0].Type)
	assert.Equal(t, j.ID.String(), notes[0].Metadata["jobId"])

	ensure := f.store.Events(entity.OutboxUserEnsureClient)
	require.Len(t, ensure, 1)
	assert.Contains(t, string(ensure[0].Payload), f.client.ID.String())
}

func TestCreateJob_SkipsEnsureClientForClients(t *testing.T) {
	f := newFixture(t)
	f.client.UserType = valueobject.UserTypeClient
	f.store.AddUser(f.client)

	f.newJob(t)
	assert.Empty(t, f.store.Events(entity.OutboxUserEnsureClient))
}

func TestCreateJob_ClientLookupFailureFallsBack(t *testing.T) {
	f := newFixture(t)
	f.store.FailOn("users.FindByID", nil)

	j, err := f.create().Execute(context.Background(), job.CreateJobInput{
		ClientID:  f.client.ID,
		JobFields: job.JobFields{Title: "Логотип", Description: "Простой логотип"},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultClientName, j.ClientName)
	assert.Empty(t, j.ClientAvatar)
	assert.Len(t, f.store.Events(entity.OutboxUserEnsureClient), 1)
}

func TestCreateJob_BudgetParsing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	j, err := f.create().Execute(ctx, job.CreateJobInput{
		ClientID:  f.client.ID,
		JobFields: job.JobFields{Title: "Без бюджета", Description: "d", BudgetMin: "", BudgetMax: " "},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, j.Budget.Min)
	assert.Equal(t, 0.0, j.Budget.Max)

	_, err = f.create().Execute(ctx, job.CreateJobInput{
		ClientID:  f.client.ID,
		JobFields: job.JobFields{Title: "Кривой бюджет", Description: "d", BudgetMin: "abc"},
	})
	assert.True(t, apperror.IsValidation(err))

	_, err = f.create().Execute(ctx, job.CreateJobInput{
		ClientID:  f.client.ID,
		JobFields: job.JobFields{Title: "Перепутан бюджет", Description: "d", BudgetMin: "900", BudgetMax: "100"},
	})
	assert.True(t, apperror.IsValidation(err))
}

func TestCreateJob_StoreFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.store.FailOn("outbox.Enqueue", nil)

	_, err := f.create().Execute(context.Background(), job.CreateJobInput{
		ClientID:  f.client.ID,
		JobFields: job.JobFields{Title: "Сайт", Description: "Сайт-визитка"},
	})
	assert.Equal(t, apperror.ErrCodeStoreUnavailable, apperror.CodeOf(err))

	jobs, err := f.store.Jobs().FindByClientID(context.Background(), f.client.ID)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestGetJob_IsPureRead(t *testing.T) {
	f := newFixture(t)
	j := f.newJob(t)
	uc := job.NewGetJobUseCase(f.store.Jobs())

	first, err := uc.Execute(context.Background(), j.ID)
	require.NoError(t, err)
	second, err := uc.Execute(context.Background(), j.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 0, second.ViewsCount)

	_, err = uc.Execute(context.Background(), uuid.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestListJobs_FiltersAndSort(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Now()
	add := func(title, category string, min, max float64, featured bool, offset time.Duration) {
		f.store.AddJob(&entity.Job{
			ID:              uuid.New(),
			ClientID:        f.client.ID,
			Title:           title,
			Category:        category,
			Budget:          valueobject.Budget{Min: min, Max: max, Currency: "USD"},
			ExperienceLevel: valueobject.ExperienceExpert,
			Status:          valueobject.JobStatusActive,
			Featured:        featured,
			CreatedAt:       base.Add(offset),
		})
	}
	add("Go backend", "dev", 100, 500, false, 0)
	add("React frontend", "dev", 200, 900, true, time.Second)
	add("Logo design", "design", 50, 100, true, 2*time.Second)

	uc := job.NewListJobsUseCase(f.store.Jobs())

	page, err := uc.Execute(ctx, repository.JobFilter{Category: "dev"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, "React frontend", page.Jobs[0].Title)
	assert.Equal(t, repository.DefaultJobLimit, page.Limit)

	page, err = uc.Execute(ctx, repository.JobFilter{SortBy: repository.SortBudgetHigh})
	require.NoError(t, err)
	assert.Equal(t, "React frontend", page.Jobs[0].Title)

	page, err = uc.Execute(ctx, repository.JobFilter{SortBy: repository.SortBudgetLow})
	require.NoError(t, err)
	assert.Equal(t, "Logo design", page.Jobs[0].Title)

	min := 150.0
	page, err = uc.Execute(ctx, repository.JobFilter{BudgetMin: &min})
	require.NoError(t, err)
	require.Len(t, page.Jobs, 1)
	assert.Equal(t, "React frontend", page.Jobs[0].Title)

	page, err = uc.Search(ctx, "  BACKEND ", repository.JobFilter{})
	require.NoError(t, err)
	require.Len(t, page.Jobs, 1)
	assert.Equal(t, "Go backend", page.Jobs[0].Title)

	page, err = uc.Execute(ctx, repository.JobFilter{Status: "open", Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, repository.MaxJobLimit, page.Limit)

	_, err = uc.Execute(ctx, repository.JobFilter{Status: "archived"})
	assert.True(t, apperror.IsValidation(err))
}

func TestGetFeaturedJobs(t *testing.T) {
	f := newFixture(t)
	active := &entity.Job{ID: uuid.New(), ClientID: f.client.ID, Title: "A", Status: valueobject.JobStatusActive, Featured: true, CreatedAt: time.Now()}
	closed := &entity.Job{ID: uuid.New(), ClientID: f.client.ID, Title: "B", Status: valueobject.JobStatusCancelled, Featured: true, CreatedAt: time.Now()}
	plain := &entity.Job{ID: uuid.New(), ClientID: f.client.ID, Title: "C", Status: valueobject.JobStatusActive, CreatedAt: time.Now()}
	f.store.AddJob(active)
	f.store.AddJob(closed)
	f.store.AddJob(plain)

	jobs, err := job.NewGetFeaturedJobsUseCase(f.store.Jobs(), f.cache).Execute(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, active.ID, jobs[0].ID)
}

func TestGetJobStats_CachedAndInvalidated(t *testing.T) {
	f := newFixture(t)
	stats := job.NewGetJobStatsUseCase(f.store.Jobs(), f.cache)
	ctx := context.Background()

	f.newJob(t)
	s, err := stats.Execute(ctx, &f.client.ID)
	require.NoError(t, err)
	assert.Equal(t, repository.JobStats{Active: 1, Total: 1}, s)

	// создание заказа сбрасывает кэш статистики клиента
	j := f.newJob(t)
	_, err = job.NewCancelJobUseCase(f.store.Jobs(), f.store.Tx(), f.publisher, f.cache, nil).Execute(ctx, j.ID, f.client.ID)
	require.NoError(t, err)

	s, err = stats.Execute(ctx, &f.client.ID)
	require.NoError(t, err)
	assert.Equal(t, repository.JobStats{Active: 1, Cancelled: 1, Total: 2}, s)
}

func TestUpdateJob(t *testing.T) {
	f := newFixture(t)
	j := f.newJob(t)
	uc := job.NewUpdateJobUseCase(f.store.Jobs(), f.store.Tx(), f.cache)
	ctx := context.Background()

	title := "Backend на Go и gRPC"
	max := "2000"
	updated, err := uc.Execute(ctx, j.ID, f.client.ID, job.JobPatch{Title: &title, BudgetMax: &max})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, 2000.0, updated.Budget.Max)
	assert.Equal(t, 500.0, updated.Budget.Min)
	assert.Equal(t, j.Description, updated.Description)

	_, err = uc.Execute(ctx, j.ID, uuid.New(), job.JobPatch{Title: &title})
	assert.True(t, apperror.IsForbidden(err))

	_, err = job.NewCancelJobUseCase(f.store.Jobs(), f.store.Tx(), f.publisher, f.cache, nil).Execute(ctx, j.ID, f.client.ID)
	require.NoError(t, err)
	_, err = uc.Execute(ctx, j.ID, f.client.ID, job.JobPatch{Title: &title})
	assert.True(t, apperror.IsInvalidTransition(err))
}

func TestDeleteJob(t *testing.T) {
	f := newFixture(t)
	j := f.newJob(t)
	uc := job.NewDeleteJobUseCase(f.store.Jobs(), f.store.Tx(), f.cache)
	ctx := context.Background()

	assert.True(t, apperror.IsForbidden(uc.Execute(ctx, j.ID, uuid.New())))
	require.NoError(t, uc.Execute(ctx, j.ID, f.client.ID))

	_, err := f.store.Jobs().FindByID(ctx, j.ID)
	assert.True(t, apperror.IsNotFound(err))
	assert.True(t, apperror.IsNotFound(uc.Execute(ctx, j.ID, f.client.ID)))
}

func assign(t *testing.T, f *fixture, j *entity.Job, freelancerID uuid.UUID) {
	t.Helper()
	require.NoError(t, j.Assign(freelancerID))
	require.NoError(t, f.store.Jobs().Update(context.Background(), j))
}

func TestCompleteJob(t *testing.T) {
	f := newFixture(t)
	j := f.newJob(t)
	uc := job.NewCompleteJobUseCase(f.store.Jobs(), f.store.Tx(), f.publisher, f.cache, nil)
	ctx := context.Background()

	_, err := uc.Execute(ctx, j.ID, f.client.ID)
	assert.True(t, apperror.IsInvalidTransition(err), "открытый заказ нельзя завершить")

	freelancer := uuid.New()
	assign(t, f, j, freelancer)

	_, err = uc.Execute(ctx, j.ID, freelancer)
	assert.True(t, apperror.IsForbidden(err))

	done, err := uc.Execute(ctx, j.ID, f.client.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.JobStatusCompleted, done.Status)
	require.NotNil(t, done.AssignedFreelancerID)

	notes := f.store.Notifications()
	last := notes[len(notes)-1]
	assert.Equal(t, freelancer, last.UserID)
	assert.Equal(t, entity.NotificationJobCompleted, last.Type)

	_, err = job.NewCancelJobUseCase(f.store.Jobs(), f.store.Tx(), f.publisher, f.cache, nil).Execute(ctx, j.ID, f.client.ID)
	assert.True(t, apperror.IsInvalidTransition(err), "из completed выхода нет")
}

func TestCancelJob_ClearsAssignee(t *testing.T) {
	f := newFixture(t)
	j := f.newJob(t)
	freelancer := uuid.New()
	assign(t, f, j, freelancer)

	cancelled, err := job.NewCancelJobUseCase(f.store.Jobs(), f.store.Tx(), f.publisher, f.cache, nil).
		Execute(context.Background(), j.ID, f.client.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.JobStatusCancelled, cancelled.Status)
	assert.Nil(t, cancelled.AssignedFreelancerID)

	notes := f.store.Notifications()
	last := notes[len(notes)-1]
	assert.Equal(t, freelancer, last.UserID)
	assert.Equal(t, entity.NotificationJobCancelled, last.Type)
}

func TestGetJobOverview(t *testing.T) {
	f := newFixture(t)
	j := f.newJob(t)
	freelancer := uuid.New()
	p, err := entity.NewProposal(j.ID, freelancer, "Сделаю быстро", 800, "2 недели", nil)
	require.NoError(t, err)
	f.store.AddProposal(p)

	uc := job.NewGetJobOverviewUseCase(f.store.Jobs(), f.store.Proposals(), f.store.Invitations())

	owner, err := uc.Execute(context.Background(), j.ID, f.client.ID)
	require.NoError(t, err)
	assert.True(t, owner.IsOwner)
	assert.Len(t, owner.Proposals, 1)

	stranger, err := uc.Execute(context.Background(), j.ID, freelancer)
	require.NoError(t, err)
	assert.False(t, stranger.IsOwner)
	assert.Nil(t, stranger.Proposals)
	assert.Equal(t, j.ID, stranger.Job.ID)

	_, err = uc.Execute(context.Background(), uuid.New(), f.client.ID)
	assert.True(t, apperror.IsNotFound(err))
}
