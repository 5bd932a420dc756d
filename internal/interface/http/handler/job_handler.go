package handler

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/interface/http/dto"
	"github.com/ignatzorin/freelance-jobs/internal/interface/http/response"
	"github.com/ignatzorin/freelance-jobs/internal/usecase/job"
)

// JobUseCases: набор сценариев, которые обслуживает JobHandler.
type JobUseCases struct {
	Create   *job.CreateJobUseCase
	Update   *job.UpdateJobUseCase
	Delete   *job.DeleteJobUseCase
	Get      *job.GetJobUseCase
	List     *job.ListJobsUseCase
	ByClient *job.GetClientJobsUseCase
	Featured *job.GetFeaturedJobsUseCase
	Stats    *job.GetJobStatsUseCase
	Overview *job.GetJobOverviewUseCase
	Complete *job.CompleteJobUseCase
	Cancel   *job.CancelJobUseCase
}

type JobHandler struct {
	uc JobUseCases
}

func NewJobHandler(uc JobUseCases) *JobHandler {
	return &JobHandler{uc: uc}
}

// List обрабатывает GET /api/jobs. Параметр q включает поиск по названию.
func (h *JobHandler) List(c *gin.Context) {
	var query dto.JobQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "некорректные параметры фильтра")
		return
	}
	filter, err := query.ToFilter()
	if err != nil {
		response.BadRequest(c, "clientId должен быть валидным UUID")
		return
	}

	var page *job.JobPage
	if strings.TrimSpace(query.Query) != "" {
		page, err = h.uc.List.Search(c.Request.Context(), query.Query, filter)
	} else {
		page, err = h.uc.List.Execute(c.Request.Context(), filter)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, dto.ToJobResponses(page.Jobs), page.Total, page.Limit, page.Offset)
}

func (h *JobHandler) Featured(c *gin.Context) {
	jobs, err := h.uc.Featured.Execute(c.Request.Context(), parseIntQuery(c, "limit", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToJobResponses(jobs))
}

func (h *JobHandler) Get(c *gin.Context) {
	jobID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	j, err := h.uc.Get.Execute(c.Request.Context(), jobID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToJobResponse(j))
}

func (h *JobHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные заказа")
		return
	}

	created, err := h.uc.Create.Execute(c.Request.Context(), job.CreateJobInput{
		ClientID:  userID,
		JobFields: req.ToFields(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ToJobResponse(created))
}

func (h *JobHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	jobID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные заказа")
		return
	}

	updated, err := h.uc.Update.Execute(c.Request.Context(), jobID, userID, req.ToPatch())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToJobResponse(updated))
}

func (h *JobHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	jobID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.uc.Delete.Execute(c.Request.Context(), jobID, userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"id": jobID})
}

func (h *JobHandler) Complete(c *gin.Context) {
	h.transition(c, h.uc.Complete.Execute)
}

func (h *JobHandler) Cancel(c *gin.Context) {
	h.transition(c, h.uc.Cancel.Execute)
}

func (h *JobHandler) transition(c *gin.Context, run func(ctx context.Context, jobID, actorID uuid.UUID) (*entity.Job, error)) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	jobID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	j, err := run(c.Request.Context(), jobID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToJobResponse(j))
}

func (h *JobHandler) Overview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	jobID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	overview, err := h.uc.Overview.Execute(c.Request.Context(), jobID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToJobOverviewResponse(overview, time.Now()))
}

// Stats обрабатывает GET /api/jobs/stats: счётчики по заказам текущего клиента.
func (h *JobHandler) Stats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	stats, err := h.uc.Stats.Execute(c.Request.Context(), &userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

func (h *JobHandler) MyJobs(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	jobs, err := h.uc.ByClient.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToJobResponses(jobs))
}
