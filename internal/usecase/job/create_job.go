package job

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/domain/repository"
	"github.com/ignatzorin/freelance-jobs/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-jobs/internal/logger"
	"github.com/ignatzorin/freelance-jobs/internal/metrics"
	"github.com/ignatzorin/freelance-jobs/internal/validation"
)

// JobFields: поля формы заказа. Суммы приходят строками, пустая строка означает 0.
type JobFields struct {
	Title           string
	Description     string
	Category        string
	Skills          []string
	BudgetType      string
	BudgetMin       string
	BudgetMax       string
	Currency        string
	Duration        string
	ExperienceLevel string
	Location        string
	Featured        bool
	Urgent          bool
	Attachments     []string
}

type CreateJobInput struct {
	ClientID uuid.UUID
	JobFields
}

type CreateJobUseCase struct {
	jobs      repository.JobRepository
	users     repository.UserRepository
	tx        repository.TxManager
	publisher Publisher
	cache     Cache
	metrics   *metrics.Collector
}

func NewCreateJobUseCase(
	jobs repository.JobRepository,
	users repository.UserRepository,
	tx repository.TxManager,
	publisher Publisher,
	cache Cache,
	m *metrics.Collector,
) *CreateJobUseCase {
	return &CreateJobUseCase{jobs: jobs, users: users, tx: tx, publisher: publisher, cache: cache, metrics: m}
}

func (uc *CreateJobUseCase) Execute(ctx context.Context, input CreateJobInput) (*entity.Job, error) {
	draft, err := buildDraft(input.JobFields)
	if err != nil {
		return nil, err
	}

	card, alreadyClient := uc.resolveClient(ctx, input.ClientID)

	job, err := entity.NewJob(input.ClientID, card, draft)
	if err != nil {
		return nil, err
	}

	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := uc.jobs.Create(ctx, job); err != nil {
			return err
		}
		if err := uc.publisher.Notify(ctx, entity.NotificationDraft{
			UserID:     job.ClientID,
			Title:      "Заказ опубликован",
			Message:    "Ваш заказ «" + job.Title + "» опубликован и доступен исполнителям",
			Type:       entity.NotificationJobCreated,
			Priority:   entity.PriorityMedium,
			ActionURL:  jobURL(job.ID),
			ActionText: "Открыть заказ",
			Metadata:   map[string]interface{}{"jobId": job.ID.String()},
		}); err != nil {
			return err
		}
		if alreadyClient {
			return nil
		}
		return uc.publisher.EnsureClient(ctx, job.ClientID)
	})
	if err != nil {
		return nil, err
	}

	invalidate(uc.cache, job.ClientID)
	uc.metrics.RecordJobTransition(string(job.Status))
	logger.Log.WithFields(map[string]interface{}{
		"job_id":    job.ID,
		"client_id": job.ClientID,
	}).Info("job: заказ создан")
	return job, nil
}

// resolveClient достаёт имя и аватар клиента. Ошибка поиска не мешает созданию заказа:
// подставляется анонимная карточка.
func (uc *CreateJobUseCase) resolveClient(ctx context.Context, clientID uuid.UUID) (entity.ClientCard, bool) {
	user, err := uc.users.FindByID(ctx, clientID)
	if err != nil {
		logger.Log.WithFields(map[string]interface{}{
			"client_id": clientID,
			"error":     err.Error(),
		}).Warn("job: не удалось получить профиль клиента, используем значения по умолчанию")
		return entity.ClientCard{Name: entity.DefaultClientName}, false
	}
	return user.Card(), user.IsClient()
}

func buildDraft(f JobFields) (entity.JobDraft, error) {
	if err := validation.ValidateJobTitle(f.Title); err != nil {
		return entity.JobDraft{}, invalid(err)
	}
	if err := validation.ValidateJobDescription(f.Description); err != nil {
		return entity.JobDraft{}, invalid(err)
	}
	if err := validation.ValidateSkills(f.Skills); err != nil {
		return entity.JobDraft{}, invalid(err)
	}
	if err := validation.ValidateAttachments(f.Attachments); err != nil {
		return entity.JobDraft{}, invalid(err)
	}

	budgetMin, err := valueobject.ParseAmount("минимальный бюджет", f.BudgetMin)
	if err != nil {
		return entity.JobDraft{}, err
	}
	budgetMax, err := valueobject.ParseAmount("максимальный бюджет", f.BudgetMax)
	if err != nil {
		return entity.JobDraft{}, err
	}
	if err := validation.ValidateBudget(budgetMin, budgetMax); err != nil {
		return entity.JobDraft{}, invalid(err)
	}
	budgetType, err := valueobject.NewBudgetType(f.BudgetType)
	if err != nil {
		return entity.JobDraft{}, err
	}
	budget, err := valueobject.NewBudget(budgetType, budgetMin, budgetMax, f.Currency)
	if err != nil {
		return entity.JobDraft{}, err
	}
	level, err := valueobject.NewExperienceLevel(f.ExperienceLevel)
	if err != nil {
		return entity.JobDraft{}, err
	}

	return entity.JobDraft{
		Title:           f.Title,
		Description:     f.Description,
		Category:        f.Category,
		Skills:          f.Skills,
		Budget:          budget,
		Duration:        f.Duration,
		ExperienceLevel: level,
		Location:        f.Location,
		Featured:        f.Featured,
		Urgent:          f.Urgent,
		Attachments:     f.Attachments,
	}, nil
}
