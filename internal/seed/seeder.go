package seed

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/domain/repository"
	"github.com/ignatzorin/freelance-jobs/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-jobs/internal/logger"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-jobs/internal/usecase/job"
	"github.com/ignatzorin/freelance-jobs/internal/usecase/proposal"
)

type jobCreator interface {
	Execute(ctx context.Context, input job.CreateJobInput) (*entity.Job, error)
}

type proposalSubmitter interface {
	Execute(ctx context.Context, input proposal.SubmitProposalInput) (*entity.Proposal, error)
}

// Report: итог загрузки фикстур.
type Report struct {
	UsersCreated     int
	UsersExisting    int
	JobsCreated      int
	ProposalsCreated int
	ProposalsSkipped int
}

// Seeder загружает фикстуры через обычные use case'ы, поэтому побочные
// эффекты (уведомления, счётчики откликов) появляются так же, как в работе.
type Seeder struct {
	users     repository.UserRepository
	jobs      jobCreator
	proposals proposalSubmitter
	hashCost  int
}

func NewSeeder(users repository.UserRepository, jobs jobCreator, proposals proposalSubmitter) *Seeder {
	return &Seeder{users: users, jobs: jobs, proposals: proposals, hashCost: bcrypt.DefaultCost}
}

// Apply создаёт пользователей, которых ещё нет, затем заказы и отклики.
func (s *Seeder) Apply(ctx context.Context, f *Fixtures) (*Report, error) {
	report := &Report{}
	userIDs := make(map[string]*entity.User, len(f.Users))
	hashes := make(map[string]string)

	for _, u := range f.Users {
		existing, err := s.users.FindByEmail(ctx, u.Email)
		if err == nil {
			userIDs[u.Email] = existing
			report.UsersExisting++
			continue
		}
		if !apperror.IsNotFound(err) {
			return report, err
		}

		userType, err := valueobject.NewUserType(u.UserType)
		if err != nil {
			return report, fmt.Errorf("seed: %s: %w", u.Email, err)
		}
		hash, ok := hashes[u.Password]
		if !ok {
			raw, err := bcrypt.GenerateFromPassword([]byte(u.Password), s.hashCost)
			if err != nil {
				return report, fmt.Errorf("seed: не удалось захешировать пароль: %w", err)
			}
			hash = string(raw)
			hashes[u.Password] = hash
		}

		user, err := entity.NewUser(u.Email, hash, u.DisplayName, userType, u.Skills)
		if err != nil {
			return report, fmt.Errorf("seed: %s: %w", u.Email, err)
		}
		user.Rating = u.Rating
		if err := s.users.Create(ctx, user); err != nil {
			return report, err
		}
		userIDs[u.Email] = user
		report.UsersCreated++
	}

	jobIDs := make(map[string]*entity.Job, len(f.Jobs))
	for _, j := range f.Jobs {
		client := userIDs[j.Client]
		if client == nil {
			return report, fmt.Errorf("seed: неизвестный клиент %q", j.Client)
		}
		created, err := s.jobs.Execute(ctx, job.CreateJobInput{
			ClientID: client.ID,
			JobFields: job.JobFields{
				Title:           j.Title,
				Description:     j.Description,
				Category:        j.Category,
				Skills:          j.Skills,
				BudgetType:      j.BudgetType,
				BudgetMin:       formatAmount(j.BudgetMin),
				BudgetMax:       formatAmount(j.BudgetMax),
				Currency:        j.Currency,
				Duration:        j.Duration,
				ExperienceLevel: j.ExperienceLevel,
				Location:        j.Location,
				Featured:        j.Featured,
				Urgent:          j.Urgent,
			},
		})
		if err != nil {
			return report, fmt.Errorf("seed: заказ %q: %w", j.Title, err)
		}
		if j.Key != "" {
			jobIDs[j.Key] = created
		}
		report.JobsCreated++
	}

	for _, p := range f.Proposals {
		target := jobIDs[p.Job]
		freelancer := userIDs[p.Freelancer]
		if target == nil || freelancer == nil {
			return report, fmt.Errorf("seed: отклик ссылается на неизвестные данные: %s/%s", p.Job, p.Freelancer)
		}
		_, err := s.proposals.Execute(ctx, proposal.SubmitProposalInput{
			JobID:            target.ID,
			FreelancerID:     freelancer.ID,
			CoverLetter:      p.CoverLetter,
			ProposedBudget:   formatAmount(p.Budget),
			ProposedDuration: p.Duration,
		})
		if err != nil {
			// конфликт или собственный заказ не мешают остальным фикстурам
			if apperror.IsConflict(err) || apperror.IsValidation(err) {
				logger.Log.WithError(err).WithField("job", p.Job).Warn("seed: отклик пропущен")
				report.ProposalsSkipped++
				continue
			}
			return report, err
		}
		report.ProposalsCreated++
	}

	logger.Log.WithFields(map[string]interface{}{
		"users_created":     report.UsersCreated,
		"users_existing":    report.UsersExisting,
		"jobs_created":      report.JobsCreated,
		"proposals_created": report.ProposalsCreated,
	}).Info("seed: фикстуры загружены")
	return report, nil
}

func formatAmount(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
