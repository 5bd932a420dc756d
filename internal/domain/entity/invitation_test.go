package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-jobs/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
)

func newInvitation(t *testing.T, ttl time.Duration) *Invitation {
	t.Helper()
	job, err := NewJob(uuid.New(), ClientCard{}, newDraft(t))
	require.NoError(t, err)
	freelancer := &User{ID: uuid.New(), DisplayName: "Ann", Rating: 4.9, Skills: []string{"Go"}}
	inv, err := NewInvitation(job, freelancer, "Join us", ttl)
	require.NoError(t, err)
	return inv
}

func TestNewInvitation_Snapshot(t *testing.T) {
	inv := newInvitation(t, time.Hour)

	assert.Equal(t, valueobject.InvitationStatusPending, inv.Status)
	assert.Equal(t, "Ann", inv.FreelancerName)
	assert.Equal(t, "Telegram bot", inv.JobTitle)
	assert.Equal(t, 100.0, inv.JobBudgetMin)
	assert.Equal(t, 500.0, inv.JobBudgetMax)
	assert.Equal(t, inv.InvitedAt.Add(time.Hour), inv.ExpiresAt)
}

func TestNewInvitation_RejectsSelfInvite(t *testing.T) {
	job, err := NewJob(uuid.New(), ClientCard{}, newDraft(t))
	require.NoError(t, err)

	_, err = NewInvitation(job, &User{ID: job.ClientID}, "", time.Hour)
	assert.True(t, apperror.IsValidation(err))
}

func TestInvitation_LazyExpiry(t *testing.T) {
	inv := newInvitation(t, time.Hour)

	before := inv.ExpiresAt.Add(-10 * time.Minute)
	assert.Equal(t, valueobject.InvitationStatusPending, inv.EffectiveStatus(before))
	assert.Equal(t, 10*time.Minute, inv.RemainingTime(before))

	after := inv.ExpiresAt.Add(time.Second)
	assert.Equal(t, valueobject.InvitationStatusExpired, inv.EffectiveStatus(after))
	assert.Equal(t, time.Duration(0), inv.RemainingTime(after))
	assert.Equal(t, valueobject.InvitationStatusPending, inv.Status)
}

func TestInvitation_Respond(t *testing.T) {
	inv := newInvitation(t, time.Hour)
	now := inv.InvitedAt.Add(time.Minute)

	require.NoError(t, inv.Respond(valueobject.InvitationStatusAccepted, " ok ", now))
	assert.Equal(t, valueobject.InvitationStatusAccepted, inv.Status)
	require.NotNil(t, inv.RespondedAt)
	require.NotNil(t, inv.ResponseMessage)
	assert.Equal(t, "ok", *inv.ResponseMessage)

	err := inv.Respond(valueobject.InvitationStatusDeclined, "", now)
	assert.True(t, apperror.IsInvalidTransition(err))
}

func TestInvitation_RespondAfterExpiry(t *testing.T) {
	inv := newInvitation(t, time.Hour)

	err := inv.Respond(valueobject.InvitationStatusAccepted, "", inv.ExpiresAt.Add(time.Minute))
	assert.True(t, apperror.IsInvalidTransition(err))
	assert.Equal(t, valueobject.InvitationStatusPending, inv.Status)
}

func TestInvitation_RespondRejectsNonTerminalTarget(t *testing.T) {
	inv := newInvitation(t, time.Hour)

	for _, status := range []valueobject.InvitationStatus{valueobject.InvitationStatusPending, valueobject.InvitationStatusExpired} {
		err := inv.Respond(status, "", inv.InvitedAt)
		assert.True(t, apperror.IsValidation(err), string(status))
	}
}
