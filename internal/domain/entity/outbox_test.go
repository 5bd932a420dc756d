package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoff(t *testing.T) {
	base := 5 * time.Second

	assert.Equal(t, 5*time.Second, Backoff(base, 1))
	assert.Equal(t, 10*time.Second, Backoff(base, 2))
	assert.Equal(t, 40*time.Second, Backoff(base, 4))
	assert.Equal(t, MaxOutboxBackoff, Backoff(base, 20))
	assert.Equal(t, MaxOutboxBackoff, Backoff(time.Hour, 1))
}

func TestOutboxEvent_MarkFailedUntilDead(t *testing.T) {
	event, err := NewOutboxEvent(OutboxNotificationCreate, map[string]string{"a": "b"})
	require.NoError(t, err)
	now := time.Now()

	event.MarkFailed(errors.New("down"), now, time.Second, 2)
	assert.Equal(t, OutboxPending, event.Status)
	assert.Equal(t, now.Add(time.Second), event.NextAttemptAt)

	event.MarkFailed(errors.New("still down"), now, time.Second, 2)
	assert.Equal(t, OutboxDead, event.Status)
	assert.Equal(t, "still down", event.LastError)
}
