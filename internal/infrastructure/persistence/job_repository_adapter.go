package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/domain/repository"
	"github.com/ignatzorin/freelance-jobs/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
)

const jobColumns = `id, client_id, client_name, client_avatar, title, description, category, skills,
	budget_type, budget_min, budget_max, currency, duration, experience_level, location, status,
	proposals_count, views_count, featured, urgent, assigned_freelancer_id, attachments,
	created_at, updated_at`

var jobSortClauses = map[repository.JobSort]string{
	repository.SortNewest:     "created_at DESC",
	repository.SortBudgetHigh: "budget_max DESC, created_at DESC",
	repository.SortBudgetLow:  "budget_min ASC, created_at DESC",
	repository.SortProposals:  "proposals_count DESC, created_at DESC",
}

type JobRepositoryAdapter struct {
	db *sqlx.DB
}

func NewJobRepositoryAdapter(db *sqlx.DB) *JobRepositoryAdapter {
	return &JobRepositoryAdapter{db: db}
}

func (r *JobRepositoryAdapter) Create(ctx context.Context, job *entity.Job) error {
	query := `
		INSERT INTO jobs (` + jobColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24)
	`
	_, err := executor(ctx, r.db).ExecContext(ctx, query,
		job.ID, job.ClientID, job.ClientName, job.ClientAvatar, job.Title, job.Description,
		job.Category, pq.StringArray(job.Skills), string(job.Budget.Type), job.Budget.Min,
		job.Budget.Max, job.Budget.Currency, job.Duration, string(job.ExperienceLevel),
		job.Location, string(job.Status), job.ProposalsCount, job.ViewsCount, job.Featured,
		job.Urgent, job.AssignedFreelancerID, pq.StringArray(job.Attachments),
		job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return storeErr(err, "не удалось создать заказ")
	}
	return nil
}

// Update не трогает proposals_count и views_count: их меняют только атомарные инкременты.
func (r *JobRepositoryAdapter) Update(ctx context.Context, job *entity.Job) error {
	query := `
		UPDATE jobs
		SET title = $2, description = $3, category = $4, skills = $5, budget_type = $6,
			budget_min = $7, budget_max = $8, currency = $9, duration = $10,
			experience_level = $11, location = $12, status = $13, featured = $14, urgent = $15,
			assigned_freelancer_id = $16, attachments = $17, updated_at = $18
		WHERE id = $1
	`
	res, err := executor(ctx, r.db).ExecContext(ctx, query,
		job.ID, job.Title, job.Description, job.Category, pq.StringArray(job.Skills),
		string(job.Budget.Type), job.Budget.Min, job.Budget.Max, job.Budget.Currency,
		job.Duration, string(job.ExperienceLevel), job.Location, string(job.Status),
		job.Featured, job.Urgent, job.AssignedFreelancerID, pq.StringArray(job.Attachments),
		job.UpdatedAt,
	)
	if err != nil {
		return storeErr(err, "не удалось обновить заказ")
	}
	return requireAffected(res, apperror.ErrJobNotFound)
}

func (r *JobRepositoryAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := executor(ctx, r.db).ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return storeErr(err, "не удалось удалить заказ")
	}
	return requireAffected(res, apperror.ErrJobNotFound)
}

func (r *JobRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	return r.findOne(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
}

func (r *JobRepositoryAdapter) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	return r.findOne(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1 FOR UPDATE`, id)
}

func (r *JobRepositoryAdapter) findOne(ctx context.Context, query string, id uuid.UUID) (*entity.Job, error) {
	var row jobRow
	if err := executor(ctx, r.db).GetContext(ctx, &row, query, id); err != nil {
		if noRows(err) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, storeErr(err, "не удалось получить заказ")
	}
	return row.toEntity(), nil
}

func (r *JobRepositoryAdapter) FindByClientID(ctx context.Context, clientID uuid.UUID) ([]*entity.Job, error) {
	var rows []jobRow
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE client_id = $1 ORDER BY created_at DESC`
	if err := executor(ctx, r.db).SelectContext(ctx, &rows, query, clientID); err != nil {
		return nil, storeErr(err, "не удалось получить заказы клиента")
	}
	return toJobEntities(rows), nil
}

func (r *JobRepositoryAdapter) List(ctx context.Context, filter repository.JobFilter) ([]*entity.Job, int, error) {
	filter = filter.Normalize()
	where, args := buildJobWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM jobs` + where
	if err := executor(ctx, r.db).GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, storeErr(err, "не удалось посчитать заказы")
	}

	query := fmt.Sprintf(`SELECT %s FROM jobs%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		jobColumns, where, jobSortClauses[filter.SortBy], len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	var rows []jobRow
	if err := executor(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, storeErr(err, "не удалось получить заказы")
	}
	return toJobEntities(rows), total, nil
}

func buildJobWhere(filter repository.JobFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	add := func(cond string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.Category != "" {
		add("category = $%d", filter.Category)
	}
	if filter.BudgetMin != nil {
		add("budget_min >= $%d", *filter.BudgetMin)
	}
	if filter.BudgetMax != nil {
		add("budget_max <= $%d", *filter.BudgetMax)
	}
	if filter.ExperienceLevel != "" {
		add("experience_level = $%d", filter.ExperienceLevel)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.ClientID != nil {
		add("client_id = $%d", *filter.ClientID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		add(`title ILIKE '%%' || $%d || '%%' ESCAPE '\'`, escapeLike(search))
	}
	if filter.FeaturedOnly {
		conditions = append(conditions, "featured = TRUE")
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *JobRepositoryAdapter) IncrementProposalsCount(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE jobs SET proposals_count = proposals_count + 1, updated_at = NOW() WHERE id = $1`
	res, err := executor(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		return storeErr(err, "не удалось обновить счётчик предложений")
	}
	return requireAffected(res, apperror.ErrJobNotFound)
}

func (r *JobRepositoryAdapter) CountByStatus(ctx context.Context, clientID *uuid.UUID) (repository.JobStats, error) {
	query := `SELECT status, COUNT(*) AS count FROM jobs`
	var args []interface{}
	if clientID != nil {
		query += ` WHERE client_id = $1`
		args = append(args, *clientID)
	}
	query += ` GROUP BY status`

	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	if err := executor(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return repository.JobStats{}, storeErr(err, "не удалось получить статистику заказов")
	}

	var stats repository.JobStats
	for _, row := range rows {
		switch valueobject.JobStatus(row.Status) {
		case valueobject.JobStatusActive:
			stats.Active = row.Count
		case valueobject.JobStatusInProgress:
			stats.InProgress = row.Count
		case valueobject.JobStatusCompleted:
			stats.Completed = row.Count
		case valueobject.JobStatusCancelled:
			stats.Cancelled = row.Count
		}
		stats.Total += row.Count
	}
	return stats, nil
}

type jobRow struct {
	ID                   uuid.UUID      `db:"id"`
	ClientID             uuid.UUID      `db:"client_id"`
	ClientName           string         `db:"client_name"`
	ClientAvatar         string         `db:"client_avatar"`
	Title                string         `db:"title"`
	Description          string         `db:"description"`
	Category             string         `db:"category"`
	Skills               pq.StringArray `db:"skills"`
	BudgetType           string         `db:"budget_type"`
	BudgetMin            float64        `db:"budget_min"`
	BudgetMax            float64        `db:"budget_max"`
	Currency             string         `db:"currency"`
	Duration             string         `db:"duration"`
	ExperienceLevel      string         `db:"experience_level"`
	Location             string         `db:"location"`
	Status               string         `db:"status"`
	ProposalsCount       int            `db:"proposals_count"`
	ViewsCount           int            `db:"views_count"`
	Featured             bool           `db:"featured"`
	Urgent               bool           `db:"urgent"`
	AssignedFreelancerID *uuid.UUID     `db:"assigned_freelancer_id"`
	Attachments          pq.StringArray `db:"attachments"`
	CreatedAt            time.Time      `db:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at"`
}

func (j *jobRow) toEntity() *entity.Job {
	return &entity.Job{
		ID:           j.ID,
		ClientID:     j.ClientID,
		ClientName:   j.ClientName,
		ClientAvatar: j.ClientAvatar,
		Title:        j.Title,
		Description:  j.Description,
		Category:     j.Category,
		Skills:       nonNil(j.Skills),
		Budget: valueobject.Budget{
			Type:     valueobject.BudgetType(j.BudgetType),
			Min:      j.BudgetMin,
			Max:      j.BudgetMax,
			Currency: j.Currency,
		},
		Duration:             j.Duration,
		ExperienceLevel:      valueobject.ExperienceLevel(j.ExperienceLevel),
		Location:             j.Location,
		Status:               valueobject.JobStatus(j.Status),
		ProposalsCount:       j.ProposalsCount,
		ViewsCount:           j.ViewsCount,
		Featured:             j.Featured,
		Urgent:               j.Urgent,
		AssignedFreelancerID: j.AssignedFreelancerID,
		Attachments:          nonNil(j.Attachments),
		CreatedAt:            j.CreatedAt,
		UpdatedAt:            j.UpdatedAt,
	}
}

func toJobEntities(rows []jobRow) []*entity.Job {
	result := make([]*entity.Job, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
