package entity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-jobs/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
)

func newDraft(t *testing.T) JobDraft {
	t.Helper()
	budget, err := valueobject.NewBudget("", 100, 500, "")
	require.NoError(t, err)
	return JobDraft{
		Title:           "Telegram bot",
		Description:     "Need a bot",
		Category:        "ai_development",
		Skills:          []string{"Go", " Telegram API"},
		Budget:          budget,
		ExperienceLevel: valueobject.ExperienceIntermediate,
	}
}

func TestNewJob_Defaults(t *testing.T) {
	job, err := NewJob(uuid.New(), ClientCard{}, newDraft(t))
	require.NoError(t, err)

	assert.Equal(t, valueobject.JobStatusActive, job.Status)
	assert.Equal(t, 0, job.ProposalsCount)
	assert.Equal(t, 0, job.ViewsCount)
	assert.Equal(t, DefaultClientName, job.ClientName)
	assert.Equal(t, DefaultLocation, job.Location)
	assert.Equal(t, "USD", job.Budget.Currency)
	assert.Equal(t, valueobject.BudgetTypeFixed, job.Budget.Type)
	assert.Equal(t, []string{"Go", " Telegram API"}, job.Skills)
	assert.Equal(t, []string{}, job.Attachments)
	assert.Nil(t, job.AssignedFreelancerID)
}

func TestNewJob_KeepsListsAsGiven(t *testing.T) {
	draft := newDraft(t)
	draft.Skills = []string{" Go", "go", "Docker "}
	draft.Attachments = []string{"/uploads/a/spec.pdf", "/uploads/a/spec.pdf"}

	job, err := NewJob(uuid.New(), ClientCard{}, draft)
	require.NoError(t, err)

	assert.Equal(t, []string{" Go", "go", "Docker "}, job.Skills)
	assert.Equal(t, []string{"/uploads/a/spec.pdf", "/uploads/a/spec.pdf"}, job.Attachments)

	draft.Skills[0] = "changed"
	assert.Equal(t, " Go", job.Skills[0])
}

func TestNewJob_Validation(t *testing.T) {
	draft := newDraft(t)
	draft.Title = "  "
	_, err := NewJob(uuid.New(), ClientCard{}, draft)
	assert.True(t, apperror.IsValidation(err))

	_, err = NewJob(uuid.Nil, ClientCard{}, newDraft(t))
	assert.True(t, apperror.IsValidation(err))
}

func TestJob_Lifecycle(t *testing.T) {
	job, err := NewJob(uuid.New(), ClientCard{Name: "Acme"}, newDraft(t))
	require.NoError(t, err)
	freelancer := uuid.New()

	require.NoError(t, job.Assign(freelancer))
	assert.Equal(t, valueobject.JobStatusInProgress, job.Status)
	require.NotNil(t, job.AssignedFreelancerID)
	assert.Equal(t, freelancer, *job.AssignedFreelancerID)

	require.NoError(t, job.Complete())
	assert.Equal(t, valueobject.JobStatusCompleted, job.Status)
	assert.NotNil(t, job.AssignedFreelancerID)

	assert.True(t, apperror.IsInvalidTransition(job.Cancel()))
	assert.True(t, apperror.IsInvalidTransition(job.Assign(uuid.New())))
}

func TestJob_CancelClearsAssignee(t *testing.T) {
	job, err := NewJob(uuid.New(), ClientCard{}, newDraft(t))
	require.NoError(t, err)
	require.NoError(t, job.Assign(uuid.New()))

	require.NoError(t, job.Cancel())
	assert.Equal(t, valueobject.JobStatusCancelled, job.Status)
	assert.Nil(t, job.AssignedFreelancerID)
	assert.True(t, apperror.IsInvalidTransition(job.Complete()))
}

func TestJob_CompleteRequiresInProgress(t *testing.T) {
	job, err := NewJob(uuid.New(), ClientCard{}, newDraft(t))
	require.NoError(t, err)

	assert.True(t, apperror.IsInvalidTransition(job.Complete()))
}

func TestJob_UpdateOnlyWhileActive(t *testing.T) {
	job, err := NewJob(uuid.New(), ClientCard{}, newDraft(t))
	require.NoError(t, err)

	draft := newDraft(t)
	draft.Title = "New title"
	require.NoError(t, job.Update(draft))
	assert.Equal(t, "New title", job.Title)

	require.NoError(t, job.Assign(uuid.New()))
	assert.True(t, apperror.IsInvalidTransition(job.Update(draft)))
}
