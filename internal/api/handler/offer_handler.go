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

// OfferHandler handles job offer HTTP requests
type OfferHandler struct {
	logger *slog.Logger
	offers *service.OfferService
}

// NewOfferHandler creates a new OfferHandler instance
func NewOfferHandler(deps *Dependencies) *OfferHandler {
	return &OfferHandler{
		logger: deps.Logger,
		offers: deps.Offers,
	}
}

// List handles GET /api/v1/offers
// Returns the worker's pending offers, each annotated with a fresh
// conflict report.
func (h *OfferHandler) List(c *gin.Context) {
	workerID := c.GetString(CtxUserID)
	views, err := h.offers.List(c.Request.Context(), workerID)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	out := make([]dto.OfferDTO, len(views))
	for i, v := range views {
		out[i] = offerDTO(&v.Offer, &v.Conflict)
	}
	respondOK(c, http.StatusOK, out)
}

// Get handles GET /api/v1/offers/:offer_id
func (h *OfferHandler) Get(c *gin.Context) {
	offerID := c.Param("offer_id")
	if _, err := uuid.Parse(offerID); err != nil {
		respondError(c, http.StatusBadRequest, "offer_id must be a valid UUID")
		return
	}

	workerID := c.GetString(CtxUserID)
	offer, err := h.offers.Get(c.Request.Context(), offerID, workerID)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, offerDTO(offer, nil))
}

// Accept handles POST /api/v1/offers/:offer_id/accept
func (h *OfferHandler) Accept(c *gin.Context) {
	offerID := c.Param("offer_id")
	if _, err := uuid.Parse(offerID); err != nil {
		respondError(c, http.StatusBadRequest, "offer_id must be a valid UUID")
		return
	}

	workerID := c.GetString(CtxUserID)
	result, err := h.offers.Accept(c.Request.Context(), offerID, workerID)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	displaced := make([]dto.OfferDTO, len(result.Displaced))
	for i := range result.Displaced {
		displaced[i] = offerDTO(&result.Displaced[i], nil)
	}
	respondOK(c, http.StatusOK, dto.AcceptOfferResponse{
		Offer:           offerDTO(result.Offer, nil),
		DisplacedOffers: displaced,
	})
}

// Reject handles POST /api/v1/offers/:offer_id/reject
func (h *OfferHandler) Reject(c *gin.Context) {
	offerID := c.Param("offer_id")
	if _, err := uuid.Parse(offerID); err != nil {
		respondError(c, http.StatusBadRequest, "offer_id must be a valid UUID")
		return
	}

	var req dto.RejectOfferRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	workerID := c.GetString(CtxUserID)
	offer, err := h.offers.Reject(c.Request.Context(), offerID, workerID, req.Reason)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, offerDTO(offer, nil))
}

// Stats handles GET /api/v1/offers/stats
func (h *OfferHandler) Stats(c *gin.Context) {
	workerID := c.GetString(CtxUserID)
	stats, err := h.offers.Stats(c.Request.Context(), workerID)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, dto.OfferStatsDTO{
		Total:    stats.Total,
		Pending:  stats.Pending,
		Accepted: stats.Accepted,
		Rejected: stats.Rejected,
		Expired:  stats.Expired,
	})
}

// Schedule handles GET /api/v1/schedule
func (h *OfferHandler) Schedule(c *gin.Context) {
	workerID := c.GetString(CtxUserID)
	days, err := h.offers.Schedule(c.Request.Context(), workerID)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	out := make([]dto.ScheduleDayDTO, len(days))
	for i, day := range days {
		entries := make([]dto.ScheduleEntryDTO, len(day.Entries))
		for j, e := range day.Entries {
			entries[j] = dto.ScheduleEntryDTO{
				JobPostingID: e.JobPostingID,
				JobTitle:     e.JobTitle,
				StartTime:    e.StartTime,
				EndTime:      e.EndTime,
				Committed:    e.Committed,
				Conflicting:  e.Conflicting,
			}
		}
		out[i] = dto.ScheduleDayDTO{Date: day.Date, Entries: entries}
	}
	respondOK(c, http.StatusOK, out)
}

// CheckAvailability handles GET /api/v1/schedule/availability
func (h *OfferHandler) CheckAvailability(c *gin.Context) {
	var req dto.AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "date, start_time and end_time are required")
		return
	}

	workerID := c.GetString(CtxUserID)
	available, err := h.offers.CheckAvailability(c.Request.Context(), workerID, req.Date, req.StartTime, req.EndTime)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"available": available})
}

func offerDTO(o *model.JobOffer, conflict *domain.ConflictReport) dto.OfferDTO {
	out := dto.OfferDTO{
		ID:                 o.ID,
		JobPostingID:       o.JobPostingID,
		ApplicationID:      o.ApplicationID,
		WorkerID:           o.WorkerID,
		OfferStatus:        o.OfferStatus,
		JobTitle:           o.JobTitle,
		ScheduledDate:      o.ScheduledDate.String,
		ScheduledStartTime: o.ScheduledStartTime.String,
		ScheduledEndTime:   o.ScheduledEndTime.String,
		RejectReason:       o.RejectReason.String,
		OfferedAt:          o.OfferedAt.Format(time.RFC3339),
		ExpiresAt:          o.ExpiresAt.Format(time.RFC3339),
	}
	if conflict != nil {
		out.Conflict = &dto.ConflictDTO{
			HasConflict:            conflict.HasConflict,
			HasExistingJobConflict: conflict.HasExistingJobConflict,
			ConflictingTitles:      conflict.ConflictingTitles,
			ConflictingOfferIDs:    conflict.ConflictingOfferIDs,
		}
	}
	return out
}
