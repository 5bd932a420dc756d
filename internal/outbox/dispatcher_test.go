package outbox

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-jobs/internal/logger"
	"github.com/ignatzorin/freelance-jobs/internal/metrics"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
)

type mockOutboxRepository struct {
	mu     sync.Mutex
	events map[uuid.UUID]*entity.OutboxEvent
	saves  int
}

func newMockOutboxRepository() *mockOutboxRepository {
	return &mockOutboxRepository{events: make(map[uuid.UUID]*entity.OutboxEvent)}
}

func (m *mockOutboxRepository) Enqueue(ctx context.Context, event *entity.OutboxEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[event.ID] = event
	return nil
}

func (m *mockOutboxRepository) ClaimBatch(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]*entity.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ready []*entity.OutboxEvent
	for _, e := range m.events {
		if e.Status == entity.OutboxPending && !e.NextAttemptAt.After(now) {
			ready = append(ready, e)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i].NextAttemptAt.Before(ready[j].NextAttemptAt) })
	if len(ready) > limit {
		ready = ready[:limit]
	}
	for _, e := range ready {
		e.NextAttemptAt = now.Add(lease)
	}
	return ready, nil
}

func (m *mockOutboxRepository) Save(ctx context.Context, event *entity.OutboxEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[event.ID] = event
	m.saves++
	return nil
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestDispatcher(t *testing.T, repo *mockOutboxRepository, cfg Config) (*Dispatcher, *fakeClock) {
	t.Helper()
	logger.Discard()
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	d := NewDispatcher(repo, cfg, metrics.NewCollector(prometheus.NewRegistry()))
	d.now = clock.now
	return d, clock
}

func enqueue(t *testing.T, repo *mockOutboxRepository, kind entity.OutboxKind, payload interface{}, at time.Time) *entity.OutboxEvent {
	t.Helper()
	event, err := entity.NewOutboxEvent(kind, payload)
	require.NoError(t, err)
	event.NextAttemptAt = at
	require.NoError(t, repo.Enqueue(context.Background(), event))
	return event
}

func TestDispatcher_DeliversEvent(t *testing.T) {
	repo := newMockOutboxRepository()
	d, clock := newTestDispatcher(t, repo, Config{})

	var handled []uuid.UUID
	d.Register(entity.OutboxNotificationCreate, HandlerFunc(func(ctx context.Context, e *entity.OutboxEvent) error {
		handled = append(handled, e.ID)
		return nil
	}))
	event := enqueue(t, repo, entity.OutboxNotificationCreate, entity.NotificationDraft{UserID: uuid.New(), Title: "t"}, clock.t)

	n, err := d.DispatchOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	assert.Equal(t, []uuid.UUID{event.ID}, handled)
	assert.Equal(t, entity.OutboxDelivered, event.Status)
	require.NotNil(t, event.DeliveredAt)
	assert.Equal(t, 1, repo.saves)
}

func TestDispatcher_RetriesWithBackoffThenDead(t *testing.T) {
	repo := newMockOutboxRepository()
	base := 5 * time.Second
	d, clock := newTestDispatcher(t, repo, Config{MaxAttempts: 3, RetryBase: base})

	calls := 0
	d.Register(entity.OutboxChatJobCard, HandlerFunc(func(ctx context.Context, e *entity.OutboxEvent) error {
		calls++
		return errors.New("chat unavailable")
	}))
	event := enqueue(t, repo, entity.OutboxChatJobCard, entity.JobCard{JobTitle: "x"}, clock.t)

	_, err := d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, event.Attempts)
	assert.Equal(t, entity.OutboxPending, event.Status)
	assert.Equal(t, clock.t.Add(base), event.NextAttemptAt)
	assert.Equal(t, "chat unavailable", event.LastError)

	// до наступления next_attempt_at событие не берётся
	n, err := d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	clock.advance(base)
	_, err = d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, event.Attempts)
	assert.Equal(t, clock.t.Add(2*base), event.NextAttemptAt)

	clock.advance(2 * base)
	_, err = d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, event.Attempts)
	assert.Equal(t, entity.OutboxDead, event.Status)

	clock.advance(time.Hour)
	n, err = d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 3, calls)
}

func TestDispatcher_UnknownKindIsDead(t *testing.T) {
	repo := newMockOutboxRepository()
	d, clock := newTestDispatcher(t, repo, Config{})
	event := enqueue(t, repo, entity.OutboxKind("unknown.kind"), map[string]string{}, clock.t)

	_, err := d.DispatchOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entity.OutboxDead, event.Status)
	assert.Equal(t, 1, event.Attempts)
}

func TestDispatcher_PanicInHandlerIsRetried(t *testing.T) {
	repo := newMockOutboxRepository()
	d, clock := newTestDispatcher(t, repo, Config{})
	d.Register(entity.OutboxNotificationCreate, HandlerFunc(func(ctx context.Context, e *entity.OutboxEvent) error {
		panic("boom")
	}))
	event := enqueue(t, repo, entity.OutboxNotificationCreate, entity.NotificationDraft{}, clock.t)

	assert.NotPanics(t, func() {
		_, _ = d.DispatchOnce(context.Background())
	})
	assert.Equal(t, entity.OutboxPending, event.Status)
	assert.Contains(t, event.LastError, "boom")
}

func TestDispatcher_RespectsBatchSize(t *testing.T) {
	repo := newMockOutboxRepository()
	d, clock := newTestDispatcher(t, repo, Config{BatchSize: 2})
	d.Register(entity.OutboxUserEnsureClient, HandlerFunc(func(ctx context.Context, e *entity.OutboxEvent) error { return nil }))
	for i := 0; i < 3; i++ {
		enqueue(t, repo, entity.OutboxUserEnsureClient, EnsureClientPayload{UserID: uuid.New()}, clock.t.Add(time.Duration(i)*time.Millisecond))
	}
	clock.advance(time.Second)

	n, err := d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDispatcher_RunStopsOnCancel(t *testing.T) {
	repo := newMockOutboxRepository()
	d, _ := newTestDispatcher(t, repo, Config{PollInterval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop")
	}
}

type fakeUsers struct {
	users   map[uuid.UUID]*entity.User
	updates int
}

func (f *fakeUsers) Create(ctx context.Context, u *entity.User) error { f.users[u.ID] = u; return nil }

func (f *fakeUsers) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, apperror.ErrUserNotFound
}

func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return nil, apperror.ErrUserNotFound
}

func (f *fakeUsers) UpdateUserType(ctx context.Context, id uuid.UUID, userType valueobject.UserType) error {
	f.updates++
	f.users[id].UserType = userType
	return nil
}

func (f *fakeUsers) ListFreelancers(ctx context.Context, limit int) ([]*entity.User, error) {
	return nil, nil
}

func TestEnsureClientHandler(t *testing.T) {
	freelancer := &entity.User{ID: uuid.New(), UserType: valueobject.UserTypeFreelancer}
	client := &entity.User{ID: uuid.New(), UserType: valueobject.UserTypeClient}
	users := &fakeUsers{users: map[uuid.UUID]*entity.User{freelancer.ID: freelancer, client.ID: client}}
	h := EnsureClientHandler(users)

	ev, _ := entity.NewOutboxEvent(entity.OutboxUserEnsureClient, EnsureClientPayload{UserID: freelancer.ID})
	require.NoError(t, h.Handle(context.Background(), ev))
	assert.Equal(t, valueobject.UserTypeClient, freelancer.UserType)
	assert.Equal(t, 1, users.updates)

	ev, _ = entity.NewOutboxEvent(entity.OutboxUserEnsureClient, EnsureClientPayload{UserID: client.ID})
	require.NoError(t, h.Handle(context.Background(), ev))
	assert.Equal(t, 1, users.updates)

	ev, _ = entity.NewOutboxEvent(entity.OutboxUserEnsureClient, EnsureClientPayload{UserID: uuid.New()})
	err := h.Handle(context.Background(), ev)
	assert.True(t, isPermanent(err))
}

func TestNotificationHandler_BadPayloadIsPermanent(t *testing.T) {
	h := NotificationHandler(nil)
	err := h.Handle(context.Background(), &entity.OutboxEvent{Kind: entity.OutboxNotificationCreate, Payload: []byte(`{"userId": 42}`)})
	assert.True(t, isPermanent(err))
}
