package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-jobs/internal/interface/http/dto"
	"github.com/ignatzorin/freelance-jobs/internal/interface/http/response"
	"github.com/ignatzorin/freelance-jobs/internal/usecase/invitation"
)

type InvitationHandler struct {
	sendUC           *invitation.SendInvitationsUseCase
	respondUC        *invitation.UpdateInvitationStatusUseCase
	listForJobUC     *invitation.GetJobInvitationsUseCase
	listFreelancerUC *invitation.GetFreelancerInvitationsUseCase
	suggestUC        *invitation.SuggestFreelancersUseCase
	now              func() time.Time
}

func NewInvitationHandler(
	sendUC *invitation.SendInvitationsUseCase,
	respondUC *invitation.UpdateInvitationStatusUseCase,
	listForJobUC *invitation.GetJobInvitationsUseCase,
	listFreelancerUC *invitation.GetFreelancerInvitationsUseCase,
	suggestUC *invitation.SuggestFreelancersUseCase,
) *InvitationHandler {
	return &InvitationHandler{
		sendUC:           sendUC,
		respondUC:        respondUC,
		listForJobUC:     listForJobUC,
		listFreelancerUC: listFreelancerUC,
		suggestUC:        suggestUC,
		now:              time.Now,
	}
}

// Send обрабатывает POST /api/jobs/:id/invitations. Ошибки по отдельным
// исполнителям возвращаются в results со статусом 200.
func (h *InvitationHandler) Send(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	jobID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.SendInvitationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректный список исполнителей")
		return
	}

	result, err := h.sendUC.Execute(c.Request.Context(), invitation.SendInvitationsInput{
		JobID:         jobID,
		ClientID:      userID,
		FreelancerIDs: req.FreelancerIDs,
		Message:       req.Message,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToSendInvitationsResponse(result, h.now()))
}

func (h *InvitationHandler) ListForJob(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	jobID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	invitations, err := h.listForJobUC.Execute(c.Request.Context(), jobID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToInvitationResponses(invitations, h.now()))
}

func (h *InvitationHandler) ListMine(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	invitations, err := h.listFreelancerUC.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToInvitationResponses(invitations, h.now()))
}

func (h *InvitationHandler) Suggestions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	jobID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	suggestions, err := h.suggestUC.Execute(c.Request.Context(), jobID, userID, parseIntQuery(c, "limit", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToSuggestionResponses(suggestions))
}

// Respond обрабатывает PATCH /api/invitations/:invitationId.
func (h *InvitationHandler) Respond(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	invitationID, ok := pathUUID(c, "invitationId")
	if !ok {
		return
	}

	var req dto.RespondInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректный ответ на приглашение")
		return
	}

	updated, err := h.respondUC.Execute(c.Request.Context(), invitation.RespondInput{
		InvitationID:    invitationID,
		ActorID:         userID,
		Status:          req.Status,
		ResponseMessage: req.ResponseMessage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToInvitationResponse(updated, h.now()))
}
