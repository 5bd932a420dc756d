package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/freelance-jobs/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
)

const (
	DefaultClientName = "Anonymous Client"
	DefaultLocation   = "Remote"
)

type Job struct {
	ID                   uuid.UUID
	ClientID             uuid.UUID
	ClientName           string
	ClientAvatar         string
	Title                string
	Description          string
	Category             string
	Skills               []string
	Budget               valueobject.Budget
	Duration             string
	ExperienceLevel      valueobject.ExperienceLevel
	Location             string
	Status               valueobject.JobStatus
	ProposalsCount       int
	ViewsCount           int
	Featured             bool
	Urgent               bool
	AssignedFreelancerID *uuid.UUID
	Attachments          []string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// JobDraft: поля заказа, которые задаёт клиент.
type JobDraft struct {
	Title           string
	Description     string
	Category        string
	Skills          []string
	Budget          valueobject.Budget
	Duration        string
	ExperienceLevel valueobject.ExperienceLevel
	Location        string
	Featured        bool
	Urgent          bool
	Attachments     []string
}

// ClientCard: отображаемые данные клиента на момент создания заказа.
type ClientCard struct {
	Name   string
	Avatar string
}

func NewJob(clientID uuid.UUID, client ClientCard, draft JobDraft) (*Job, error) {
	if clientID == uuid.Nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "не указан клиент")
	}
	if err := validateDraft(draft); err != nil {
		return nil, err
	}
	if client.Name == "" {
		client.Name = DefaultClientName
	}

	now := time.Now()
	return &Job{
		ID:              uuid.New(),
		ClientID:        clientID,
		ClientName:      client.Name,
		ClientAvatar:    client.Avatar,
		Title:           strings.TrimSpace(draft.Title),
		Description:     strings.TrimSpace(draft.Description),
		Category:        draft.Category,
		Skills:          normalizeList(draft.Skills),
		Budget:          draft.Budget,
		Duration:        draft.Duration,
		ExperienceLevel: draft.ExperienceLevel,
		Location:        orDefault(draft.Location, DefaultLocation),
		Status:          valueobject.JobStatusActive,
		Featured:        draft.Featured,
		Urgent:          draft.Urgent,
		Attachments:     normalizeList(draft.Attachments),
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func validateDraft(draft JobDraft) error {
	if strings.TrimSpace(draft.Title) == "" {
		return apperror.New(apperror.ErrCodeValidation, "название заказа обязательно")
	}
	if strings.TrimSpace(draft.Description) == "" {
		return apperror.New(apperror.ErrCodeValidation, "описание заказа обязательно")
	}
	if draft.Budget.Min > draft.Budget.Max {
		return apperror.New(apperror.ErrCodeValidation, "минимальный бюджет не может превышать максимальный")
	}
	return nil
}

// Update заменяет редактируемые поля. Править можно только открытый заказ.
func (j *Job) Update(draft JobDraft) error {
	if j.Status != valueobject.JobStatusActive {
		return apperror.InvalidTransition("редактировать можно только открытый заказ")
	}
	if err := validateDraft(draft); err != nil {
		return err
	}
	j.Title = strings.TrimSpace(draft.Title)
	j.Description = strings.TrimSpace(draft.Description)
	j.Category = draft.Category
	j.Skills = normalizeList(draft.Skills)
	j.Budget = draft.Budget
	j.Duration = draft.Duration
	j.ExperienceLevel = draft.ExperienceLevel
	j.Location = orDefault(draft.Location, DefaultLocation)
	j.Featured = draft.Featured
	j.Urgent = draft.Urgent
	j.Attachments = normalizeList(draft.Attachments)
	j.UpdatedAt = time.Now()
	return nil
}

// Assign переводит заказ в работу и закрепляет исполнителя.
func (j *Job) Assign(freelancerID uuid.UUID) error {
	if freelancerID == uuid.Nil {
		return apperror.New(apperror.ErrCodeValidation, "не указан исполнитель")
	}
	if !j.Status.CanTransitionTo(valueobject.JobStatusInProgress) {
		return apperror.InvalidTransition("невозможно начать работу в текущем статусе")
	}
	j.Status = valueobject.JobStatusInProgress
	j.AssignedFreelancerID = &freelancerID
	j.UpdatedAt = time.Now()
	return nil
}

func (j *Job) Complete() error {
	if !j.Status.CanTransitionTo(valueobject.JobStatusCompleted) {
		return apperror.InvalidTransition("невозможно завершить заказ в текущем статусе")
	}
	j.Status = valueobject.JobStatusCompleted
	j.UpdatedAt = time.Now()
	return nil
}

// Cancel отменяет заказ и снимает назначение исполнителя.
func (j *Job) Cancel() error {
	if !j.Status.CanTransitionTo(valueobject.JobStatusCancelled) {
		return apperror.InvalidTransition("невозможно отменить заказ в текущем статусе")
	}
	j.Status = valueobject.JobStatusCancelled
	j.AssignedFreelancerID = nil
	j.UpdatedAt = time.Now()
	return nil
}

func (j *Job) IsOwnedBy(userID uuid.UUID) bool {
	return j.ClientID == userID
}

func (j *Job) AcceptsProposals() bool {
	return j.Status == valueobject.JobStatusActive
}

// normalizeList копирует список как есть; nil становится пустым списком.
func normalizeList(values []string) []string {
	result := make([]string, len(values))
	copy(result, values)
	return result
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}
