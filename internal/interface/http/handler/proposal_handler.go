package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-jobs/internal/interface/http/dto"
	"github.com/ignatzorin/freelance-jobs/internal/interface/http/response"
	"github.com/ignatzorin/freelance-jobs/internal/usecase/proposal"
)

type ProposalHandler struct {
	submitUC         *proposal.SubmitProposalUseCase
	acceptUC         *proposal.AcceptProposalUseCase
	rejectUC         *proposal.RejectProposalUseCase
	listForJobUC     *proposal.ListJobProposalsUseCase
	listFreelancerUC *proposal.ListFreelancerProposalsUseCase
}

func NewProposalHandler(
	submitUC *proposal.SubmitProposalUseCase,
	acceptUC *proposal.AcceptProposalUseCase,
	rejectUC *proposal.RejectProposalUseCase,
	listForJobUC *proposal.ListJobProposalsUseCase,
	listFreelancerUC *proposal.ListFreelancerProposalsUseCase,
) *ProposalHandler {
	return &ProposalHandler{
		submitUC:         submitUC,
		acceptUC:         acceptUC,
		rejectUC:         rejectUC,
		listForJobUC:     listForJobUC,
		listFreelancerUC: listFreelancerUC,
	}
}

// Submit обрабатывает POST /api/jobs/:id/proposals.
func (h *ProposalHandler) Submit(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	jobID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.SubmitProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные отклика")
		return
	}

	created, err := h.submitUC.Execute(c.Request.Context(), proposal.SubmitProposalInput{
		JobID:            jobID,
		FreelancerID:     userID,
		CoverLetter:      req.CoverLetter,
		ProposedBudget:   req.ProposedBudget.String(),
		ProposedDuration: req.ProposedDuration,
		Attachments:      req.Attachments.Slice(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToProposalResponse(created))
}

func (h *ProposalHandler) ListForJob(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	jobID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	proposals, err := h.listForJobUC.Execute(c.Request.Context(), jobID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToProposalResponses(proposals))
}

func (h *ProposalHandler) ListMine(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	proposals, err := h.listFreelancerUC.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToProposalResponses(proposals))
}

// Accept обрабатывает POST /api/jobs/:id/proposals/:proposalId/accept.
func (h *ProposalHandler) Accept(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	jobID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	proposalID, ok := pathUUID(c, "proposalId")
	if !ok {
		return
	}

	var req dto.AcceptProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "не указан исполнитель")
		return
	}

	result, err := h.acceptUC.Execute(c.Request.Context(), proposal.AcceptProposalInput{
		ProposalID:   proposalID,
		JobID:        jobID,
		FreelancerID: req.FreelancerID,
		ActorID:      userID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.AcceptProposalResponse{
		Proposal: dto.ToProposalResponse(result.Proposal),
		Job:      dto.ToJobResponse(result.Job),
		Rejected: len(result.Rejected),
	})
}

func (h *ProposalHandler) Reject(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	proposalID, ok := pathUUID(c, "proposalId")
	if !ok {
		return
	}

	rejected, err := h.rejectUC.Execute(c.Request.Context(), proposalID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToProposalResponse(rejected))
}
