package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
)

const proposalColumns = `id, job_id, freelancer_id, cover_letter, proposed_budget, proposed_duration,
	attachments, status, created_at, updated_at`

type ProposalRepositoryAdapter struct {
	db *sqlx.DB
}

func NewProposalRepositoryAdapter(db *sqlx.DB) *ProposalRepositoryAdapter {
	return &ProposalRepositoryAdapter{db: db}
}

func (r *ProposalRepositoryAdapter) Create(ctx context.Context, proposal *entity.Proposal) error {
	query := `
		INSERT INTO proposals (` + proposalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := executor(ctx, r.db).ExecContext(ctx, query,
		proposal.ID, proposal.JobID, proposal.FreelancerID, proposal.CoverLetter,
		proposal.ProposedBudget, proposal.ProposedDuration, pq.StringArray(proposal.Attachments),
		string(proposal.Status), proposal.CreatedAt, proposal.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.New(apperror.ErrCodeConflict, "вы уже отправили предложение на этот заказ")
		}
		return storeErr(err, "не удалось создать предложение")
	}
	return nil
}

func (r *ProposalRepositoryAdapter) UpdateStatus(ctx context.Context, proposal *entity.Proposal) error {
	query := `UPDATE proposals SET status = $2, updated_at = $3 WHERE id = $1 AND status = 'pending'`
	res, err := executor(ctx, r.db).ExecContext(ctx, query, proposal.ID, string(proposal.Status), proposal.UpdatedAt)
	if err != nil {
		return storeErr(err, "не удалось обновить предложение")
	}
	return requireAffected(res, apperror.InvalidTransition("предложение уже рассмотрено"))
}

func (r *ProposalRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Proposal, error) {
	var p proposalRow
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE id = $1`
	if err := executor(ctx, r.db).GetContext(ctx, &p, query, id); err != nil {
		if noRows(err) {
			return nil, apperror.ErrProposalNotFound
		}
		return nil, storeErr(err, "не удалось получить предложение")
	}
	return p.toEntity(), nil
}

func (r *ProposalRepositoryAdapter) FindByJobID(ctx context.Context, jobID uuid.UUID) ([]*entity.Proposal, error) {
	var rows []proposalRow
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE job_id = $1 ORDER BY created_at DESC`
	if err := executor(ctx, r.db).SelectContext(ctx, &rows, query, jobID); err != nil {
		return nil, storeErr(err, "не удалось получить предложения")
	}
	return toProposalEntities(rows), nil
}

func (r *ProposalRepositoryAdapter) FindByFreelancerID(ctx context.Context, freelancerID uuid.UUID) ([]*entity.Proposal, error) {
	var rows []proposalRow
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE freelancer_id = $1 ORDER BY created_at DESC`
	if err := executor(ctx, r.db).SelectContext(ctx, &rows, query, freelancerID); err != nil {
		return nil, storeErr(err, "не удалось получить предложения")
	}
	return toProposalEntities(rows), nil
}

func (r *ProposalRepositoryAdapter) FindByJobAndFreelancer(ctx context.Context, jobID, freelancerID uuid.UUID) (*entity.Proposal, error) {
	var p proposalRow
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE job_id = $1 AND freelancer_id = $2`
	if err := executor(ctx, r.db).GetContext(ctx, &p, query, jobID, freelancerID); err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, storeErr(err, "не удалось получить предложение")
	}
	return p.toEntity(), nil
}

func (r *ProposalRepositoryAdapter) RejectOthers(ctx context.Context, jobID, exceptID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		UPDATE proposals SET status = 'rejected', updated_at = NOW()
		WHERE job_id = $1 AND id <> $2 AND status = 'pending'
		RETURNING freelancer_id
	`
	var freelancers []uuid.UUID
	if err := executor(ctx, r.db).SelectContext(ctx, &freelancers, query, jobID, exceptID); err != nil {
		return nil, storeErr(err, "не удалось отклонить остальные предложения")
	}
	return freelancers, nil
}

type proposalRow struct {
	ID               uuid.UUID      `db:"id"`
	JobID            uuid.UUID      `db:"job_id"`
	FreelancerID     uuid.UUID      `db:"freelancer_id"`
	CoverLetter      string         `db:"cover_letter"`
	ProposedBudget   float64        `db:"proposed_budget"`
	ProposedDuration string         `db:"proposed_duration"`
	Attachments      pq.StringArray `db:"attachments"`
	Status           string         `db:"status"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

func (p *proposalRow) toEntity() *entity.Proposal {
	return &entity.Proposal{
		ID:               p.ID,
		JobID:            p.JobID,
		FreelancerID:     p.FreelancerID,
		CoverLetter:      p.CoverLetter,
		ProposedBudget:   p.ProposedBudget,
		ProposedDuration: p.ProposedDuration,
		Attachments:      nonNil(p.Attachments),
		Status:           valueobject.ProposalStatus(p.Status),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func toProposalEntities(rows []proposalRow) []*entity.Proposal {
	result := make([]*entity.Proposal, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result
}
