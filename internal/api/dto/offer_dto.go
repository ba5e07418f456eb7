package dto

type RejectOfferRequest struct {
	Reason string `json:"reason"`
}

type AvailabilityRequest struct {
	Date      string `form:"date" binding:"required"`
	StartTime string `form:"start_time" binding:"required"`
	EndTime   string `form:"end_time" binding:"required"`
}

type OfferDTO struct {
	ID                 string       `json:"id"`
	JobPostingID       string       `json:"job_posting_id"`
	ApplicationID      string       `json:"application_id"`
	WorkerID           string       `json:"worker_id"`
	OfferStatus        string       `json:"offer_status"`
	JobTitle           string       `json:"job_title"`
	ScheduledDate      string       `json:"scheduled_date,omitempty"`
	ScheduledStartTime string       `json:"scheduled_start_time,omitempty"`
	ScheduledEndTime   string       `json:"scheduled_end_time,omitempty"`
	RejectReason       string       `json:"reject_reason,omitempty"`
	OfferedAt          string       `json:"offered_at"`
	ExpiresAt          string       `json:"expires_at"`
	Conflict           *ConflictDTO `json:"conflict,omitempty"`
}

type ConflictDTO struct {
	HasConflict            bool     `json:"has_conflict"`
	HasExistingJobConflict bool     `json:"has_existing_job_conflict"`
	ConflictingTitles      []string `json:"conflicting_titles"`
	ConflictingOfferIDs    []string `json:"conflicting_offer_ids"`
}

type AcceptOfferResponse struct {
	Offer           OfferDTO   `json:"offer"`
	DisplacedOffers []OfferDTO `json:"displaced_offers"`
}

type OfferStatsDTO struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
	Expired  int `json:"expired"`
}

type ScheduleEntryDTO struct {
	JobPostingID string `json:"job_posting_id"`
	JobTitle     string `json:"job_title"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Committed    bool   `json:"committed"`
	Conflicting  bool   `json:"conflicting"`
}

type ScheduleDayDTO struct {
	Date    string             `json:"date"`
	Entries []ScheduleEntryDTO `json:"entries"`
}

type NotificationDTO struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}
