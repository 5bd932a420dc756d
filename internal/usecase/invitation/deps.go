package invitation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
)

type Publisher interface {
	Notify(ctx context.Context, draft entity.NotificationDraft) error
	PostJobCard(ctx context.Context, card entity.JobCard) error
}

// Cache может быть nil.
type Cache interface {
	GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() (interface{}, error)) (interface{}, error)
}

const (
	suggestionsTTL = time.Minute
	// candidatePool: сколько исполнителей с лучшим рейтингом берётся для ранжирования.
	candidatePool = 200

	DefaultSuggestionsLimit = 10
	MaxSuggestionsLimit     = 50
	MaxInvitationsPerCall   = 50
)

func invalid(err error) error {
	return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
}

func jobURL(id uuid.UUID) string {
	return "/jobs/" + id.String()
}
