package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/VijeshVS/LocalHire-sub000/internal/api/domain"
	"github.com/VijeshVS/LocalHire-sub000/internal/api/dto"
	"github.com/VijeshVS/LocalHire-sub000/internal/api/model"
	"github.com/VijeshVS/LocalHire-sub000/internal/api/service"
)

// ApplicationHandler handles application lifecycle HTTP requests
type ApplicationHandler struct {
	logger       *slog.Logger
	applications *service.ApplicationService
}

// NewApplicationHandler creates a new ApplicationHandler instance
func NewApplicationHandler(deps *Dependencies) *ApplicationHandler {
	return &ApplicationHandler{
		logger:       deps.Logger,
		applications: deps.Applications,
	}
}

// Apply handles POST /api/v1/applications
func (h *ApplicationHandler) Apply(c *gin.Context) {
	var req dto.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if _, err := uuid.Parse(req.JobPostingID); err != nil {
		respondError(c, http.StatusBadRequest, "job_posting_id must be a valid UUID")
		return
	}

	workerID := c.GetString(CtxUserID)
	app, err := h.applications.Apply(c.Request.Context(), workerID, req.JobPostingID)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusCreated, applicationDTO(app, nil, false))
}

// ListMine handles GET /api/v1/applications
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	workerID := c.GetString(CtxUserID)
	apps, err := h.applications.ListMine(c.Request.Context(), workerID)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	out := make([]dto.ApplicationDTO, len(apps))
	for i := range apps {
		out[i] = applicationDTO(&apps[i].Application, apps[i].Job, apps[i].JobDeleted)
	}
	respondOK(c, http.StatusOK, out)
}

// Get handles GET /api/v1/applications/:application_id
func (h *ApplicationHandler) Get(c *gin.Context) {
	applicationID := c.Param("application_id")
	if _, err := uuid.Parse(applicationID); err != nil {
		respondError(c, http.StatusBadRequest, "application_id must be a valid UUID")
		return
	}

	workerID := c.GetString(CtxUserID)
	withJob, err := h.applications.Get(c.Request.Context(), applicationID, workerID)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, applicationDTO(&withJob.Application, withJob.Job, withJob.JobDeleted))
}

// Withdraw handles DELETE /api/v1/applications/:application_id
func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	applicationID := c.Param("application_id")
	if _, err := uuid.Parse(applicationID); err != nil {
		respondError(c, http.StatusBadRequest, "application_id must be a valid UUID")
		return
	}

	workerID := c.GetString(CtxUserID)
	if err := h.applications.Withdraw(c.Request.Context(), applicationID, workerID); err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"withdrawn": true})
}

// Decide handles PATCH /api/v1/applications/:application_id/status
func (h *ApplicationHandler) Decide(c *gin.Context) {
	applicationID := c.Param("application_id")
	if _, err := uuid.Parse(applicationID); err != nil {
		respondError(c, http.StatusBadRequest, "application_id must be a valid UUID")
		return
	}

	var req dto.DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	decision, err := domain.ParseApplicationStatus(req.Status)
	if err != nil || decision == domain.ApplicationApplied {
		respondError(c, http.StatusBadRequest, "status must be shortlisted, accepted or rejected")
		return
	}

	employerID := c.GetString(CtxUserID)
	app, offer, err := h.applications.Decide(c.Request.Context(), applicationID, employerID, decision)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	resp := gin.H{"application": applicationDTO(app, nil, false)}
	if offer != nil {
		resp["offer"] = offerDTO(offer, nil)
	}
	respondOK(c, http.StatusOK, resp)
}

// Complete handles PATCH /api/v1/applications/:application_id/complete
func (h *ApplicationHandler) Complete(c *gin.Context) {
	applicationID := c.Param("application_id")
	if _, err := uuid.Parse(applicationID); err != nil {
		respondError(c, http.StatusBadRequest, "application_id must be a valid UUID")
		return
	}

	var req dto.CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	workerID := c.GetString(CtxUserID)
	app, err := h.applications.MarkCompleted(c.Request.Context(), applicationID, workerID, service.CompletionRequest{
		Notes:  req.CompletionNotes,
		Rating: req.Rating,
		Review: req.Review,
	})
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, applicationDTO(app, nil, false))
}

// Confirm handles PATCH /api/v1/applications/:application_id/confirm-completion
func (h *ApplicationHandler) Confirm(c *gin.Context) {
	applicationID := c.Param("application_id")
	if _, err := uuid.Parse(applicationID); err != nil {
		respondError(c, http.StatusBadRequest, "application_id must be a valid UUID")
		return
	}

	var req dto.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	employerID := c.GetString(CtxUserID)
	app, err := h.applications.ConfirmCompletion(c.Request.Context(), applicationID, employerID, req.Rating, req.Review)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, applicationDTO(app, nil, false))
}

// PendingConfirmations handles GET /api/v1/applications/pending-confirmations
func (h *ApplicationHandler) PendingConfirmations(c *gin.Context) {
	employerID := c.GetString(CtxUserID)
	rows, err := h.applications.PendingConfirmations(c.Request.Context(), employerID)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	out := make([]dto.PendingConfirmationDTO, len(rows))
	for i, row := range rows {
		out[i] = dto.PendingConfirmationDTO{
			ApplicationID:   row.ApplicationID,
			JobPostingID:    row.JobPostingID,
			JobTitle:        row.JobTitle,
			WorkerID:        row.WorkerID,
			WorkerName:      row.WorkerName,
			WorkerRating:    row.WorkerRating,
			CompletedAt:     row.CompletedAt.Format(time.RFC3339),
			CompletionNotes: row.CompletionNotes.String,
			DaysPending:     row.DaysPending,
		}
	}
	respondOK(c, http.StatusOK, out)
}

// ListApplicants handles GET /api/v1/jobs/:job_id/applicants
func (h *ApplicationHandler) ListApplicants(c *gin.Context) {
	jobID := c.Param("job_id")
	if _, err := uuid.Parse(jobID); err != nil {
		respondError(c, http.StatusBadRequest, "job_id must be a valid UUID")
		return
	}

	employerID := c.GetString(CtxUserID)
	apps, err := h.applications.ListApplicants(c.Request.Context(), jobID, employerID)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	out := make([]dto.ApplicationDTO, len(apps))
	for i := range apps {
		out[i] = applicationDTO(&apps[i], nil, false)
	}
	respondOK(c, http.StatusOK, out)
}

func applicationDTO(app *model.Application, job *model.JobPosting, jobDeleted bool) dto.ApplicationDTO {
	out := dto.ApplicationDTO{
		ID:                          app.ID,
		JobPostingID:                app.JobPostingID,
		WorkerID:                    app.WorkerID,
		Status:                      app.Status,
		WorkStatus:                  app.WorkStatus,
		EmployerConfirmationPending: app.EmployerConfirmationPending,
		AppliedAt:                   app.AppliedAt.Format(time.RFC3339),
		CompletionNotes:             app.CompletionNotes.String,
		EmployerReview:              app.EmployerReview.String,
		WorkerReview:                app.WorkerReview.String,
		UpdatedAt:                   app.UpdatedAt.Format(time.RFC3339),
		JobDeleted:                  jobDeleted,
	}
	if app.CompletedAt.Valid {
		out.CompletedAt = app.CompletedAt.Time.Format(time.RFC3339)
	}
	if app.EmployerRating.Valid {
		v := int(app.EmployerRating.Int64)
		out.EmployerRating = &v
	}
	if app.WorkerRating.Valid {
		v := int(app.WorkerRating.Int64)
		out.WorkerRating = &v
	}
	if job != nil {
		out.Job = &dto.JobDTO{
			ID:                 job.ID,
			EmployerID:         job.EmployerID,
			Title:              job.Title,
			Wage:               job.Wage,
			Address:            job.Address,
			ScheduledDate:      job.ScheduledDate.String,
			ScheduledStartTime: job.ScheduledStartTime.String,
			ScheduledEndTime:   job.ScheduledEndTime.String,
			IsActive:           job.IsActive,
		}
	}
	return out
}
