package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-jobs/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
)

type Proposal struct {
	ID               uuid.UUID
	JobID            uuid.UUID
	FreelancerID     uuid.UUID
	CoverLetter      string
	ProposedBudget   float64
	ProposedDuration string
	Attachments      []string
	Status           valueobject.ProposalStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func NewProposal(jobID, freelancerID uuid.UUID, coverLetter string, proposedBudget float64, proposedDuration string, attachments []string) (*Proposal, error) {
	if jobID == uuid.Nil || freelancerID == uuid.Nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "не указан заказ или исполнитель")
	}
	if strings.TrimSpace(coverLetter) == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "сопроводительное письмо обязательно")
	}
	if proposedBudget <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "предложенная сумма должна быть больше нуля")
	}

	now := time.Now()
	return &Proposal{
		ID:               uuid.New(),
		JobID:            jobID,
		FreelancerID:     freelancerID,
		CoverLetter:      strings.TrimSpace(coverLetter),
		ProposedBudget:   proposedBudget,
		ProposedDuration: proposedDuration,
		Attachments:      normalizeList(attachments),
		Status:           valueobject.ProposalStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// Accept и Reject допустимы только из pending; повторное решение даёт INVALID_TRANSITION.
func (p *Proposal) Accept() error {
	return p.decide(valueobject.ProposalStatusAccepted, "можно принять только ожидающий отклик")
}

func (p *Proposal) Reject() error {
	return p.decide(valueobject.ProposalStatusRejected, "можно отклонить только ожидающий отклик")
}

func (p *Proposal) decide(to valueobject.ProposalStatus, msg string) error {
	if !p.IsPending() {
		return apperror.InvalidTransition(msg)
	}
	p.Status = to
	p.UpdatedAt = time.Now()
	return nil
}

func (p *Proposal) IsOwnedBy(userID uuid.UUID) bool {
	return p.FreelancerID == userID
}

func (p *Proposal) IsPending() bool {
	return p.Status == valueobject.ProposalStatusPending
}

func (p *Proposal) IsAccepted() bool {
	return p.Status == valueobject.ProposalStatusAccepted
}
