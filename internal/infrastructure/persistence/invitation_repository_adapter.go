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

const invitationColumns = `id, job_id, freelancer_id, client_id, message, status, invited_at,
	responded_at, expires_at, response_message, freelancer_name, freelancer_avatar,
	freelancer_rating, freelancer_skills, job_title, job_budget_min, job_budget_max, job_currency,
	match_score, match_reasons`

type InvitationRepositoryAdapter struct {
	db *sqlx.DB
}

func NewInvitationRepositoryAdapter(db *sqlx.DB) *InvitationRepositoryAdapter {
	return &InvitationRepositoryAdapter{db: db}
}

func (r *InvitationRepositoryAdapter) Create(ctx context.Context, inv *entity.Invitation) error {
	query := `
		INSERT INTO invitations (` + invitationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`
	_, err := executor(ctx, r.db).ExecContext(ctx, query,
		inv.ID, inv.JobID, inv.FreelancerID, inv.ClientID, inv.Message, string(inv.Status),
		inv.InvitedAt, inv.RespondedAt, inv.ExpiresAt, inv.ResponseMessage, inv.FreelancerName,
		inv.FreelancerAvatar, inv.FreelancerRating, pq.StringArray(inv.FreelancerSkills),
		inv.JobTitle, inv.JobBudgetMin, inv.JobBudgetMax, inv.JobCurrency, inv.MatchScore,
		pq.StringArray(inv.MatchReasons),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.New(apperror.ErrCodeConflict, "исполнитель уже приглашён на этот заказ")
		}
		return storeErr(err, "не удалось создать приглашение")
	}
	return nil
}

func (r *InvitationRepositoryAdapter) UpdateResponse(ctx context.Context, inv *entity.Invitation) error {
	query := `
		UPDATE invitations SET status = $2, responded_at = $3, response_message = $4
		WHERE id = $1 AND status = 'pending'
	`
	res, err := executor(ctx, r.db).ExecContext(ctx, query, inv.ID, string(inv.Status), inv.RespondedAt, inv.ResponseMessage)
	if err != nil {
		return storeErr(err, "не удалось обновить приглашение")
	}
	return requireAffected(res, apperror.InvalidTransition("на приглашение уже дан ответ"))
}

func (r *InvitationRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Invitation, error) {
	var row invitationRow
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE id = $1`
	if err := executor(ctx, r.db).GetContext(ctx, &row, query, id); err != nil {
		if noRows(err) {
			return nil, apperror.ErrInvitationNotFound
		}
		return nil, storeErr(err, "не удалось получить приглашение")
	}
	return row.toEntity(), nil
}

func (r *InvitationRepositoryAdapter) FindByJobID(ctx context.Context, jobID uuid.UUID) ([]*entity.Invitation, error) {
	var rows []invitationRow
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE job_id = $1 ORDER BY invited_at DESC`
	if err := executor(ctx, r.db).SelectContext(ctx, &rows, query, jobID); err != nil {
		return nil, storeErr(err, "не удалось получить приглашения")
	}
	return toInvitationEntities(rows), nil
}

func (r *InvitationRepositoryAdapter) FindByFreelancerID(ctx context.Context, freelancerID uuid.UUID) ([]*entity.Invitation, error) {
	var rows []invitationRow
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE freelancer_id = $1 ORDER BY invited_at DESC`
	if err := executor(ctx, r.db).SelectContext(ctx, &rows, query, freelancerID); err != nil {
		return nil, storeErr(err, "не удалось получить приглашения")
	}
	return toInvitationEntities(rows), nil
}

type invitationRow struct {
	ID               uuid.UUID      `db:"id"`
	JobID            uuid.UUID      `db:"job_id"`
	FreelancerID     uuid.UUID      `db:"freelancer_id"`
	ClientID         uuid.UUID      `db:"client_id"`
	Message          string         `db:"message"`
	Status           string         `db:"status"`
	InvitedAt        time.Time      `db:"invited_at"`
	RespondedAt      *time.Time     `db:"responded_at"`
	ExpiresAt        time.Time      `db:"expires_at"`
	ResponseMessage  *string        `db:"response_message"`
	FreelancerName   string         `db:"freelancer_name"`
	FreelancerAvatar string         `db:"freelancer_avatar"`
	FreelancerRating float64        `db:"freelancer_rating"`
	FreelancerSkills pq.StringArray `db:"freelancer_skills"`
	JobTitle         string         `db:"job_title"`
	JobBudgetMin     float64        `db:"job_budget_min"`
	JobBudgetMax     float64        `db:"job_budget_max"`
	JobCurrency      string         `db:"job_currency"`
	MatchScore       *float64       `db:"match_score"`
	MatchReasons     pq.StringArray `db:"match_reasons"`
}

func (i *invitationRow) toEntity() *entity.Invitation {
	return &entity.Invitation{
		ID:               i.ID,
		JobID:            i.JobID,
		FreelancerID:     i.FreelancerID,
		ClientID:         i.ClientID,
		Message:          i.Message,
		Status:           valueobject.InvitationStatus(i.Status),
		InvitedAt:        i.InvitedAt,
		RespondedAt:      i.RespondedAt,
		ExpiresAt:        i.ExpiresAt,
		ResponseMessage:  i.ResponseMessage,
		FreelancerName:   i.FreelancerName,
		FreelancerAvatar: i.FreelancerAvatar,
		FreelancerRating: i.FreelancerRating,
		FreelancerSkills: nonNil(i.FreelancerSkills),
		JobTitle:         i.JobTitle,
		JobBudgetMin:     i.JobBudgetMin,
		JobBudgetMax:     i.JobBudgetMax,
		JobCurrency:      i.JobCurrency,
		MatchScore:       i.MatchScore,
		MatchReasons:     nonNil(i.MatchReasons),
	}
}

func toInvitationEntities(rows []invitationRow) []*entity.Invitation {
	result := make([]*entity.Invitation, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result
}
