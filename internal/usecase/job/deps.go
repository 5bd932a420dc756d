package job

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
)

// Publisher ставит побочные эффекты в outbox внутри текущей транзакции.
type Publisher interface {
	Notify(ctx context.Context, draft entity.NotificationDraft) error
	EnsureClient(ctx context.Context, userID uuid.UUID) error
}

// Cache кэширует дорогие чтения. Может быть nil.
type Cache interface {
	GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() (interface{}, error)) (interface{}, error)
	InvalidateJobs(clientID uuid.UUID)
}

const cacheTTL = 30 * time.Second

func invalid(err error) error {
	return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
}

func notOwner(action string) error {
	return apperror.New(apperror.ErrCodeForbidden, "только владелец заказа может "+action)
}

func jobURL(id uuid.UUID) string {
	return "/jobs/" + id.String()
}

func invalidate(cache Cache, clientID uuid.UUID) {
	if cache != nil {
		cache.InvalidateJobs(clientID)
	}
}
