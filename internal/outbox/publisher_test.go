package outbox

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
)

func TestPublisher_EnqueuesTypedEvents(t *testing.T) {
	repo := newMockOutboxRepository()
	p := NewPublisher(repo, nil)
	userID := uuid.New()

	require.NoError(t, p.Notify(context.Background(), entity.NotificationDraft{UserID: userID, Title: "Заказ создан"}))
	require.NoError(t, p.EnsureClient(context.Background(), userID))
	require.NoError(t, p.PostJobCard(context.Background(), entity.JobCard{JobTitle: "Go"}))

	kinds := map[entity.OutboxKind]*entity.OutboxEvent{}
	for _, e := range repo.events {
		kinds[e.Kind] = e
		assert.Equal(t, entity.OutboxPending, e.Status)
	}
	require.Len(t, kinds, 3)

	var payload EnsureClientPayload
	require.NoError(t, json.Unmarshal(kinds[entity.OutboxUserEnsureClient].Payload, &payload))
	assert.Equal(t, userID, payload.UserID)
}
