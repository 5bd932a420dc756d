package invitation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/domain/repository"
	"github.com/ignatzorin/freelance-jobs/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-jobs/internal/logger"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-jobs/internal/validation"
)

type RespondInput struct {
	InvitationID    uuid.UUID
	ActorID         uuid.UUID
	Status          string
	ResponseMessage string
}

type UpdateInvitationStatusUseCase struct {
	invitations repository.InvitationRepository
	tx          repository.TxManager
	publisher   Publisher
	now         func() time.Time
}

func NewUpdateInvitationStatusUseCase(invitations repository.InvitationRepository, tx repository.TxManager, publisher Publisher) *UpdateInvitationStatusUseCase {
	return &UpdateInvitationStatusUseCase{invitations: invitations, tx: tx, publisher: publisher, now: time.Now}
}

// Execute записывает ответ приглашённого исполнителя и уведомляет клиента.
func (uc *UpdateInvitationStatusUseCase) Execute(ctx context.Context, input RespondInput) (*entity.Invitation, error) {
	status, err := valueobject.NewInvitationStatus(input.Status)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateInvitationMessage(input.ResponseMessage); err != nil {
		return nil, invalid(err)
	}

	inv, err := uc.invitations.FindByID(ctx, input.InvitationID)
	if err != nil {
		return nil, err
	}
	if !inv.IsAddressedTo(input.ActorID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "ответить может только приглашённый исполнитель")
	}
	if err := inv.Respond(status, input.ResponseMessage, uc.now()); err != nil {
		return nil, err
	}

	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := uc.invitations.UpdateResponse(ctx, inv); err != nil {
			return err
		}
		return uc.publisher.Notify(ctx, responseDraft(inv))
	})
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"invitation_id": inv.ID,
		"status":        inv.Status,
	}).Info("invitation: получен ответ")
	return inv, nil
}

func responseDraft(inv *entity.Invitation) entity.NotificationDraft {
	verb := "отклонил"
	if inv.Status == valueobject.InvitationStatusAccepted {
		verb = "принял"
	}
	metadata := map[string]interface{}{
		"jobId":        inv.JobID.String(),
		"invitationId": inv.ID.String(),
		"freelancerId": inv.FreelancerID.String(),
		"status":       string(inv.Status),
	}
	if inv.ResponseMessage != nil {
		metadata["responseMessage"] = *inv.ResponseMessage
	}
	return entity.NotificationDraft{
		UserID:     inv.ClientID,
		Title:      "Ответ на приглашение",
		Message:    inv.FreelancerName + " " + verb + " приглашение на заказ «" + inv.JobTitle + "»",
		Type:       entity.NotificationInvitationResponse,
		Priority:   entity.PriorityMedium,
		ActionURL:  jobURL(inv.JobID),
		ActionText: "Открыть заказ",
		Metadata:   metadata,
	}
}
