package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/domain/repository"
	"github.com/ignatzorin/freelance-jobs/internal/usecase/job"
)

type CreateJobRequest struct {
	Title           string     `json:"title" binding:"required"`
	Description     string     `json:"description" binding:"required"`
	Category        string     `json:"category"`
	Skills          StringList `json:"skills"`
	BudgetType      string     `json:"budgetType"`
	BudgetMin       Amount     `json:"budgetMin"`
	BudgetMax       Amount     `json:"budgetMax"`
	Currency        string     `json:"currency"`
	Duration        string     `json:"duration"`
	ExperienceLevel string     `json:"experienceLevel"`
	Location        string     `json:"location"`
	Featured        bool       `json:"featured"`
	Urgent          bool       `json:"urgent"`
	Attachments     StringList `json:"attachments"`
}

func (r CreateJobRequest) ToFields() job.JobFields {
	return job.JobFields{
		Title:           r.Title,
		Description:     r.Description,
		Category:        r.Category,
		Skills:          r.Skills.Slice(),
		BudgetType:      r.BudgetType,
		BudgetMin:       r.BudgetMin.String(),
		BudgetMax:       r.BudgetMax.String(),
		Currency:        r.Currency,
		Duration:        r.Duration,
		ExperienceLevel: r.ExperienceLevel,
		Location:        r.Location,
		Featured:        r.Featured,
		Urgent:          r.Urgent,
		Attachments:     r.Attachments.Slice(),
	}
}

// UpdateJobRequest: отсутствующее поле не меняется.
type UpdateJobRequest struct {
	Title           *string     `json:"title"`
	Description     *string     `json:"description"`
	Category        *string     `json:"category"`
	Skills          *StringList `json:"skills"`
	BudgetType      *string     `json:"budgetType"`
	BudgetMin       *Amount     `json:"budgetMin"`
	BudgetMax       *Amount     `json:"budgetMax"`
	Currency        *string     `json:"currency"`
	Duration        *string     `json:"duration"`
	ExperienceLevel *string     `json:"experienceLevel"`
	Location        *string     `json:"location"`
	Featured        *bool       `json:"featured"`
	Urgent          *bool       `json:"urgent"`
	Attachments     *StringList `json:"attachments"`
}

func (r UpdateJobRequest) ToPatch() job.JobPatch {
	return job.JobPatch{
		Title:           r.Title,
		Description:     r.Description,
		Category:        r.Category,
		Skills:          optionalList(r.Skills),
		BudgetType:      r.BudgetType,
		BudgetMin:       optionalAmount(r.BudgetMin),
		BudgetMax:       optionalAmount(r.BudgetMax),
		Currency:        r.Currency,
		Duration:        r.Duration,
		ExperienceLevel: r.ExperienceLevel,
		Location:        r.Location,
		Featured:        r.Featured,
		Urgent:          r.Urgent,
		Attachments:     optionalList(r.Attachments),
	}
}

// JobQuery: параметры GET /api/jobs.
type JobQuery struct {
	Query           string   `form:"q"`
	Category        string   `form:"category"`
	BudgetMin       *float64 `form:"budgetMin"`
	BudgetMax       *float64 `form:"budgetMax"`
	ExperienceLevel string   `form:"experienceLevel"`
	Status          string   `form:"status"`
	ClientID        string   `form:"clientId"`
	Featured        bool     `form:"featured"`
	SortBy          string   `form:"sortBy"`
	Limit           int      `form:"limit"`
	Offset          int      `form:"offset"`
}

func (q JobQuery) ToFilter() (repository.JobFilter, error) {
	filter := repository.JobFilter{
		Category:        q.Category,
		BudgetMin:       q.BudgetMin,
		BudgetMax:       q.BudgetMax,
		ExperienceLevel: q.ExperienceLevel,
		Status:          q.Status,
		FeaturedOnly:    q.Featured,
		SortBy:          repository.JobSort(q.SortBy),
		Limit:           q.Limit,
		Offset:          q.Offset,
	}
	if q.ClientID != "" {
		id, err := uuid.Parse(q.ClientID)
		if err != nil {
			return filter, err
		}
		filter.ClientID = &id
	}
	return filter, nil
}

type BudgetResponse struct {
	Type     string  `json:"type"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
}

type JobResponse struct {
	ID                   uuid.UUID      `json:"id"`
	ClientID             uuid.UUID      `json:"clientId"`
	ClientName           string         `json:"clientName"`
	ClientAvatar         string         `json:"clientAvatar"`
	Title                string         `json:"title"`
	Description          string         `json:"description"`
	Category             string         `json:"category"`
	Skills               []string       `json:"skills"`
	Budget               BudgetResponse `json:"budget"`
	Duration             string         `json:"duration"`
	ExperienceLevel      string         `json:"experienceLevel"`
	Location             string         `json:"location"`
	Status               string         `json:"status"`
	ProposalsCount       int            `json:"proposalsCount"`
	ViewsCount           int            `json:"viewsCount"`
	Featured             bool           `json:"featured"`
	Urgent               bool           `json:"urgent"`
	AssignedFreelancerID *uuid.UUID     `json:"assignedFreelancerId,omitempty"`
	Attachments          []string       `json:"attachments"`
	CreatedAt            time.Time      `json:"createdAt"`
	UpdatedAt            time.Time      `json:"updatedAt"`
}

func ToJobResponse(j *entity.Job) JobResponse {
	return JobResponse{
		ID:           j.ID,
		ClientID:     j.ClientID,
		ClientName:   j.ClientName,
		ClientAvatar: j.ClientAvatar,
		Title:        j.Title,
		Description:  j.Description,
		Category:     j.Category,
		Skills:       nonNil(j.Skills),
		Budget: BudgetResponse{
			Type:     string(j.Budget.Type),
			Min:      j.Budget.Min,
			Max:      j.Budget.Max,
			Currency: j.Budget.Currency,
		},
		Duration:             j.Duration,
		ExperienceLevel:      string(j.ExperienceLevel),
		Location:             j.Location,
		Status:               string(j.Status),
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

func ToJobResponses(jobs []*entity.Job) []JobResponse {
	responses := make([]JobResponse, 0, len(jobs))
	for _, j := range jobs {
		responses = append(responses, ToJobResponse(j))
	}
	return responses
}

type JobOverviewResponse struct {
	Job         JobResponse          `json:"job"`
	IsOwner     bool                 `json:"isOwner"`
	Proposals   []ProposalResponse   `json:"proposals,omitempty"`
	Invitations []InvitationResponse `json:"invitations,omitempty"`
}

func ToJobOverviewResponse(o *job.JobOverview, now time.Time) JobOverviewResponse {
	resp := JobOverviewResponse{Job: ToJobResponse(o.Job), IsOwner: o.IsOwner}
	if o.IsOwner {
		resp.Proposals = ToProposalResponses(o.Proposals)
		resp.Invitations = ToInvitationResponses(o.Invitations, now)
	}
	return resp
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
