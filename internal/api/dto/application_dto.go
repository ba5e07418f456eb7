package dto

type ApplyRequest struct {
	JobPostingID string `json:"job_posting_id" binding:"required"`
}

type DecideRequest struct {
	Status string `json:"status" binding:"required"`
}

type CompleteRequest struct {
	CompletionNotes string `json:"completion_notes"`
	Rating          *int   `json:"rating" binding:"omitempty,min=1,max=5"`
	Review          string `json:"review"`
}

type ConfirmRequest struct {
	Rating *int   `json:"rating" binding:"omitempty,min=1,max=5"`
	Review string `json:"review"`
}

type ApplicationDTO struct {
	ID                          string  `json:"id"`
	JobPostingID                string  `json:"job_posting_id"`
	WorkerID                    string  `json:"worker_id"`
	Status                      string  `json:"status"`
	WorkStatus                  string  `json:"work_status"`
	EmployerConfirmationPending bool    `json:"employer_confirmation_pending"`
	AppliedAt                   string  `json:"applied_at"`
	CompletedAt                 string  `json:"completed_at,omitempty"`
	CompletionNotes             string  `json:"completion_notes,omitempty"`
	EmployerRating              *int    `json:"employer_rating,omitempty"`
	EmployerReview              string  `json:"employer_review,omitempty"`
	WorkerRating                *int    `json:"worker_rating,omitempty"`
	WorkerReview                string  `json:"worker_review,omitempty"`
	UpdatedAt                   string  `json:"updated_at"`
	Job                         *JobDTO `json:"job,omitempty"`
	JobDeleted                  bool    `json:"job_deleted,omitempty"`
}

type JobDTO struct {
	ID                 string  `json:"id"`
	EmployerID         string  `json:"employer_id"`
	Title              string  `json:"title"`
	Wage               float64 `json:"wage"`
	Address            string  `json:"address"`
	ScheduledDate      string  `json:"scheduled_date,omitempty"`
	ScheduledStartTime string  `json:"scheduled_start_time,omitempty"`
	ScheduledEndTime   string  `json:"scheduled_end_time,omitempty"`
	IsActive           bool    `json:"is_active"`
}

type PendingConfirmationDTO struct {
	ApplicationID   string  `json:"application_id"`
	JobPostingID    string  `json:"job_posting_id"`
	JobTitle        string  `json:"job_title"`
	WorkerID        string  `json:"worker_id"`
	WorkerName      string  `json:"worker_name"`
	WorkerRating    float64 `json:"worker_rating"`
	CompletedAt     string  `json:"completed_at"`
	CompletionNotes string  `json:"completion_notes,omitempty"`
	DaysPending     int     `json:"days_pending"`
}
