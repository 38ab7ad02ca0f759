package worker

type WorkerResponse struct {
	ID           string  `json:"id"`
	CompanyID    string  `json:"company_id"`
	TeamID       *string `json:"team_id,omitempty"`
	FullName     string  `json:"full_name"`
	JoinedTeamAt *string `json:"joined_team_at,omitempty"`
	Active       bool    `json:"active"`
	CheckinCount int64   `json:"checkin_count"`
}
