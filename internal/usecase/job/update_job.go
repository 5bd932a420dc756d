package job

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/domain/repository"
	"github.com/ignatzorin/freelance-jobs/internal/logger"
)

// JobPatch: частичное обновление: nil означает "не менять".
type JobPatch struct {
	Title           *string
	Description     *string
	Category        *string
	Skills          []string
	BudgetType      *string
	BudgetMin       *string
	BudgetMax       *string
	Currency        *string
	Duration        *string
	ExperienceLevel *string
	Location        *string
	Featured        *bool
	Urgent          *bool
	Attachments     []string
}

type UpdateJobUseCase struct {
	jobs  repository.JobRepository
	tx    repository.TxManager
	cache Cache
}

func NewUpdateJobUseCase(jobs repository.JobRepository, tx repository.TxManager, cache Cache) *UpdateJobUseCase {
	return &UpdateJobUseCase{jobs: jobs, tx: tx, cache: cache}
}

// Execute применяет patch к открытому заказу. Менять может только владелец.
func (uc *UpdateJobUseCase) Execute(ctx context.Context, jobID, actorID uuid.UUID, patch JobPatch) (*entity.Job, error) {
	var updated *entity.Job
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		job, err := uc.jobs.FindByIDForUpdate(ctx, jobID)
		if err != nil {
			return err
		}
		if !job.IsOwnedBy(actorID) {
			return notOwner("редактировать заказ")
		}

		draft, err := buildDraft(patch.applyTo(fieldsOf(job)))
		if err != nil {
			return err
		}
		if err := job.Update(draft); err != nil {
			return err
		}
		if err := uc.jobs.Update(ctx, job); err != nil {
			return err
		}
		updated = job
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidate(uc.cache, updated.ClientID)
	return updated, nil
}

func fieldsOf(job *entity.Job) JobFields {
	return JobFields{
		Title:           job.Title,
		Description:     job.Description,
		Category:        job.Category,
		Skills:          job.Skills,
		BudgetType:      string(job.Budget.Type),
		BudgetMin:       strconv.FormatFloat(job.Budget.Min, 'f', -1, 64),
		BudgetMax:       strconv.FormatFloat(job.Budget.Max, 'f', -1, 64),
		Currency:        job.Budget.Currency,
		Duration:        job.Duration,
		ExperienceLevel: string(job.ExperienceLevel),
		Location:        job.Location,
		Featured:        job.Featured,
		Urgent:          job.Urgent,
		Attachments:     job.Attachments,
	}
}

func (p JobPatch) applyTo(f JobFields) JobFields {
	setString(&f.Title, p.Title)
	setString(&f.Description, p.Description)
	setString(&f.Category, p.Category)
	setString(&f.BudgetType, p.BudgetType)
	setString(&f.BudgetMin, p.BudgetMin)
	setString(&f.BudgetMax, p.BudgetMax)
	setString(&f.Currency, p.Currency)
	setString(&f.Duration, p.Duration)
	setString(&f.ExperienceLevel, p.ExperienceLevel)
	setString(&f.Location, p.Location)
	if p.Skills != nil {
		f.Skills = p.Skills
	}
	if p.Attachments != nil {
		f.Attachments = p.Attachments
	}
	if p.Featured != nil {
		f.Featured = *p.Featured
	}
	if p.Urgent != nil {
		f.Urgent = *p.Urgent
	}
	return f
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

type DeleteJobUseCase struct {
	jobs  repository.JobRepository
	tx    repository.TxManager
	cache Cache
}

func NewDeleteJobUseCase(jobs repository.JobRepository, tx repository.TxManager, cache Cache) *DeleteJobUseCase {
	return &DeleteJobUseCase{jobs: jobs, tx: tx, cache: cache}
}

// Execute удаляет заказ безвозвратно вместе с откликами и приглашениями.
func (uc *DeleteJobUseCase) Execute(ctx context.Context, jobID, actorID uuid.UUID) error {
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		job, err := uc.jobs.FindByIDForUpdate(ctx, jobID)
		if err != nil {
			return err
		}
		if !job.IsOwnedBy(actorID) {
			return notOwner("удалить заказ")
		}
		return uc.jobs.Delete(ctx, jobID)
	})
	if err != nil {
		return err
	}

	invalidate(uc.cache, actorID)
	logger.Log.WithField("job_id", jobID).Info("job: заказ удалён")
	return nil
}
