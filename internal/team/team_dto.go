package team

type TeamResponse struct {
	ID             string  `json:"id"`
	CompanyID      string  `json:"company_id"`
	Name           string  `json:"name"`
	LeaderID       *string `json:"leader_id,omitempty"`
	WorkDays       string  `json:"work_days"`
	ShiftStartHour int     `json:"shift_start_hour"`
	ShiftEndHour   int     `json:"shift_end_hour"`
	Active         bool    `json:"active"`
}
