package job

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/domain/repository"
	"github.com/ignatzorin/freelance-jobs/internal/logger"
	"github.com/ignatzorin/freelance-jobs/internal/metrics"
)

type CompleteJobUseCase struct {
	jobs      repository.JobRepository
	tx        repository.TxManager
	publisher Publisher
	cache     Cache
	metrics   *metrics.Collector
}

func NewCompleteJobUseCase(jobs repository.JobRepository, tx repository.TxManager, publisher Publisher, cache Cache, m *metrics.Collector) *CompleteJobUseCase {
	return &CompleteJobUseCase{jobs: jobs, tx: tx, publisher: publisher, cache: cache, metrics: m}
}

// Execute переводит заказ из работы в завершённые и уведомляет исполнителя.
func (uc *CompleteJobUseCase) Execute(ctx context.Context, jobID, actorID uuid.UUID) (*entity.Job, error) {
	var completed *entity.Job
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		job, err := uc.jobs.FindByIDForUpdate(ctx, jobID)
		if err != nil {
			return err
		}
		if !job.IsOwnedBy(actorID) {
			return notOwner("завершить заказ")
		}
		if err := job.Complete(); err != nil {
			return err
		}
		if err := uc.jobs.Update(ctx, job); err != nil {
			return err
		}
		if job.AssignedFreelancerID != nil {
			if err := uc.publisher.Notify(ctx, entity.NotificationDraft{
				UserID:     *job.AssignedFreelancerID,
				Title:      "Заказ завершён",
				Message:    "Клиент отметил заказ «" + job.Title + "» как выполненный",
				Type:       entity.NotificationJobCompleted,
				Priority:   entity.PriorityHigh,
				ActionURL:  jobURL(job.ID),
				ActionText: "Открыть заказ",
				Metadata:   map[string]interface{}{"jobId": job.ID.String()},
			}); err != nil {
				return err
			}
		}
		completed = job
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidate(uc.cache, completed.ClientID)
	uc.metrics.RecordJobTransition(string(completed.Status))
	logger.Log.WithField("job_id", completed.ID).Info("job: заказ завершён")
	return completed, nil
}

type CancelJobUseCase struct {
	jobs      repository.JobRepository
	tx        repository.TxManager
	publisher Publisher
	cache     Cache
	metrics   *metrics.Collector
}

func NewCancelJobUseCase(jobs repository.JobRepository, tx repository.TxManager, publisher Publisher, cache Cache, m *metrics.Collector) *CancelJobUseCase {
	return &CancelJobUseCase{jobs: jobs, tx: tx, publisher: publisher, cache: cache, metrics: m}
}

// Execute отменяет открытый заказ или заказ в работе. Назначенный исполнитель
// снимается с заказа и получает уведомление.
func (uc *CancelJobUseCase) Execute(ctx context.Context, jobID, actorID uuid.UUID) (*entity.Job, error) {
	var cancelled *entity.Job
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		job, err := uc.jobs.FindByIDForUpdate(ctx, jobID)
		if err != nil {
			return err
		}
		if !job.IsOwnedBy(actorID) {
			return notOwner("отменить заказ")
		}
		previous := job.AssignedFreelancerID
		if err := job.Cancel(); err != nil {
			return err
		}
		if err := uc.jobs.Update(ctx, job); err != nil {
			return err
		}
		if previous != nil {
			if err := uc.publisher.Notify(ctx, entity.NotificationDraft{
				UserID:     *previous,
				Title:      "Заказ отменён",
				Message:    "Клиент отменил заказ «" + job.Title + "»",
				Type:       entity.NotificationJobCancelled,
				Priority:   entity.PriorityHigh,
				ActionURL:  jobURL(job.ID),
				ActionText: "Подробнее",
				Metadata:   map[string]interface{}{"jobId": job.ID.String()},
			}); err != nil {
				return err
			}
		}
		cancelled = job
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidate(uc.cache, cancelled.ClientID)
	uc.metrics.RecordJobTransition(string(cancelled.Status))
	logger.Log.WithField("job_id", cancelled.ID).Info("job: заказ отменён")
	return cancelled, nil
}
