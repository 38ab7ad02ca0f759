package checkin

type SubmitCheckinRequest struct {
	Mood           int     `json:"mood" binding:"required,min=1,max=5"`
	Stress         int     `json:"stress" binding:"required,min=1,max=5"`
	Sleep          int     `json:"sleep" binding:"required,min=1,max=5"`
	PhysicalHealth int     `json:"physical_health" binding:"required,min=1,max=5"`
	Notes          *string `json:"notes"`
}

type CheckinResponse struct {
	ID          string `json:"id"`
	CompanyID   string `json:"company_id"`
	WorkerID    string `json:"worker_id"`
	TeamID      *string `json:"team_id,omitempty"`
	CheckinDate string `json:"checkin_date"`
	SubmittedAt string `json:"submitted_at"`

	Mood           int `json:"mood"`
	Stress         int `json:"stress"`
	Sleep          int `json:"sleep"`
	PhysicalHealth int `json:"physical_health"`

	ReadinessScore  int    `json:"readiness_score"`
	ReadinessStatus string `json:"readiness_status"`

	Notes *string `json:"notes,omitempty"`

	// CheckinCount is the worker's lifetime submission count after this one.
	CheckinCount int64 `json:"checkin_count,omitempty"`
}
