package summary

type TeamDaySummaryResponse struct {
	TeamID      string `json:"team_id"`
	CompanyID   string `json:"company_id"`
	SummaryDate string `json:"summary_date"`

	TeamSize  int `json:"team_size"`
	CheckedIn int `json:"checked_in"`

	Green                int `json:"green"`
	Absent               int `json:"absent"`
	Excused              int `json:"excused"`
	PendingJustification int `json:"pending_justification"`
	OnLeave              int `json:"on_leave"`

	AvgReadiness float64 `json:"avg_readiness"`
	AtRisk       int     `json:"at_risk"`

	ComputedAt string `json:"computed_at"`
}

type BulkRecomputeRequest struct {
	Date    string   `json:"date" binding:"required"`
	TeamIDs []string `json:"team_ids"`
}

type BulkRecomputeResponse struct {
	Date      string   `json:"date"`
	Rebuilt   int      `json:"rebuilt"`
	FailedIDs []string `json:"failed_ids,omitempty"`
}
