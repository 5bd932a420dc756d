package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
)

type SubmitProposalRequest struct {
	CoverLetter      string     `json:"coverLetter" binding:"required"`
	ProposedBudget   Amount     `json:"proposedBudget"`
	ProposedDuration string     `json:"proposedDuration"`
	Attachments      StringList `json:"attachments"`
}

type AcceptProposalRequest struct {
	FreelancerID uuid.UUID `json:"freelancerId" binding:"required"`
}

type ProposalResponse struct {
	ID               uuid.UUID `json:"id"`
	JobID            uuid.UUID `json:"jobId"`
	FreelancerID     uuid.UUID `json:"freelancerId"`
	CoverLetter      string    `json:"coverLetter"`
	ProposedBudget   float64   `json:"proposedBudget"`
	ProposedDuration string    `json:"proposedDuration"`
	Attachments      []string  `json:"attachments"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func ToProposalResponse(p *entity.Proposal) ProposalResponse {
	return ProposalResponse{
		ID:               p.ID,
		JobID:            p.JobID,
		FreelancerID:     p.FreelancerID,
		CoverLetter:      p.CoverLetter,
		ProposedBudget:   p.ProposedBudget,
		ProposedDuration: p.ProposedDuration,
		Attachments:      nonNil(p.Attachments),
		Status:           string(p.Status),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func ToProposalResponses(proposals []*entity.Proposal) []ProposalResponse {
	responses := make([]ProposalResponse, 0, len(proposals))
	for _, p := range proposals {
		responses = append(responses, ToProposalResponse(p))
	}
	return responses
}

type AcceptProposalResponse struct {
	Proposal ProposalResponse `json:"proposal"`
	Job      JobResponse      `json:"job"`
	Rejected int              `json:"rejectedCount"`
}
