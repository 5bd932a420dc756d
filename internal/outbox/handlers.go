package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/domain/repository"
	"github.com/ignatzorin/freelance-jobs/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
)

type NotificationDeliverer interface {
	Deliver(ctx context.Context, eventID uuid.UUID, draft entity.NotificationDraft) error
}

type JobCardPoster interface {
	PostJobCard(ctx context.Context, eventID uuid.UUID, card entity.JobCard) error
}

// RegisterDefaults подключает обработчики всех известных видов событий.
func RegisterDefaults(d *Dispatcher, notifications NotificationDeliverer, chat JobCardPoster, users repository.UserRepository) {
	d.Register(entity.OutboxNotificationCreate, NotificationHandler(notifications))
	d.Register(entity.OutboxChatJobCard, JobCardHandler(chat))
	d.Register(entity.OutboxUserEnsureClient, EnsureClientHandler(users))
}

func NotificationHandler(n NotificationDeliverer) HandlerFunc {
	return func(ctx context.Context, event *entity.OutboxEvent) error {
		var draft entity.NotificationDraft
		if err := decode(event, &draft); err != nil {
			return err
		}
		return permanentIfInvalid(n.Deliver(ctx, event.ID, draft))
	}
}

func JobCardHandler(chat JobCardPoster) HandlerFunc {
	return func(ctx context.Context, event *entity.OutboxEvent) error {
		var card entity.JobCard
		if err := decode(event, &card); err != nil {
			return err
		}
		return permanentIfInvalid(chat.PostJobCard(ctx, event.ID, card))
	}
}

// EnsureClientHandler идемпотентен: повторная доставка видит уже обновлённый тип.
func EnsureClientHandler(users repository.UserRepository) HandlerFunc {
	return func(ctx context.Context, event *entity.OutboxEvent) error {
		var payload EnsureClientPayload
		if err := decode(event, &payload); err != nil {
			return err
		}
		user, err := users.FindByID(ctx, payload.UserID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return Permanent(err)
			}
			return err
		}
		if user.UserType == valueobject.UserTypeClient {
			return nil
		}
		return users.UpdateUserType(ctx, user.ID, valueobject.UserTypeClient)
	}
}

func decode(event *entity.OutboxEvent, dst interface{}) error {
	if err := json.Unmarshal(event.Payload, dst); err != nil {
		return Permanent(fmt.Errorf("некорректный payload события %s: %w", event.Kind, err))
	}
	return nil
}

// permanentIfInvalid: ошибки валидации и отсутствующие сущности повтором не исправить.
func permanentIfInvalid(err error) error {
	if apperror.IsValidation(err) || apperror.IsNotFound(err) {
		return Permanent(err)
	}
	return err
}
