package valueobject

import (
	"strings"

	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
)

type JobStatus string

const (
	// JobStatusActive: заказ открыт и принимает предложения.
	JobStatusActive     JobStatus = "active"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
)

func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusActive, JobStatusInProgress, JobStatusCompleted, JobStatusCancelled:
		return true
	}
	return false
}

func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusCancelled
}

// HasAssignee сообщает, должен ли в этом статусе быть назначен исполнитель.
func (s JobStatus) HasAssignee() bool {
	return s == JobStatusInProgress || s == JobStatusCompleted
}

var jobTransitions = map[JobStatus][]JobStatus{
	JobStatusActive:     {JobStatusInProgress, JobStatusCancelled},
	JobStatusInProgress: {JobStatusCompleted, JobStatusCancelled},
	JobStatusCompleted:  {},
	JobStatusCancelled:  {},
}

func (s JobStatus) CanTransitionTo(newStatus JobStatus) bool {
	for _, status := range jobTransitions[s] {
		if status == newStatus {
			return true
		}
	}
	return false
}

// NewJobStatus разбирает статус заказа; "open" принимается как синоним "active".
func NewJobStatus(status string) (JobStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(status))
	if normalized == "open" {
		normalized = string(JobStatusActive)
	}
	s := JobStatus(normalized)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус заказа")
	}
	return s, nil
}

type ProposalStatus string

const (
	ProposalStatusPending  ProposalStatus = "pending"
	ProposalStatusAccepted ProposalStatus = "accepted"
	ProposalStatusRejected ProposalStatus = "rejected"
)

func (s ProposalStatus) IsValid() bool {
	switch s {
	case ProposalStatusPending, ProposalStatusAccepted, ProposalStatusRejected:
		return true
	}
	return false
}

func NewProposalStatus(status string) (ProposalStatus, error) {
	s := ProposalStatus(strings.ToLower(strings.TrimSpace(status)))
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус предложения")
	}
	return s, nil
}

type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusDeclined InvitationStatus = "declined"
	InvitationStatusExpired  InvitationStatus = "expired"
)

func (s InvitationStatus) IsValid() bool {
	switch s {
	case InvitationStatusPending, InvitationStatusAccepted, InvitationStatusDeclined, InvitationStatusExpired:
		return true
	}
	return false
}

// IsTerminal: из терминального статуса переходов нет.
func (s InvitationStatus) IsTerminal() bool {
	return s != InvitationStatusPending
}

func (s InvitationStatus) CanTransitionTo(newStatus InvitationStatus) bool {
	return s == InvitationStatusPending && newStatus.IsValid() && newStatus != InvitationStatusPending
}

func NewInvitationStatus(status string) (InvitationStatus, error) {
	s := InvitationStatus(strings.ToLower(strings.TrimSpace(status)))
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус приглашения")
	}
	return s, nil
}

type UserType string

const (
	UserTypeNone       UserType = ""
	UserTypeClient     UserType = "client"
	UserTypeFreelancer UserType = "freelancer"
)

func NewUserType(value string) (UserType, error) {
	t := UserType(strings.ToLower(strings.TrimSpace(value)))
	switch t {
	case UserTypeNone, UserTypeClient, UserTypeFreelancer:
		return t, nil
	}
	return "", apperror.New(apperror.ErrCodeValidation, "некорректный тип пользователя")
}

type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceExpert       ExperienceLevel = "expert"
)

// NewExperienceLevel разбирает уровень опыта; пустое значение даёт intermediate.
func NewExperienceLevel(value string) (ExperienceLevel, error) {
	l := ExperienceLevel(strings.ToLower(strings.TrimSpace(value)))
	switch l {
	case "":
		return ExperienceIntermediate, nil
	case ExperienceBeginner, ExperienceIntermediate, ExperienceExpert:
		return l, nil
	}
	return "", apperror.New(apperror.ErrCodeValidation, "некорректный уровень опыта")
}
