package absence

type JustifyRequest struct {
	ReasonCategory string `json:"reason_category" binding:"required"`
	Explanation    string `json:"explanation" binding:"required"`
}

type ReviewRequest struct {
	Decision string  `json:"decision" binding:"required"`
	Note     *string `json:"note"`
}

type AbsenceResponse struct {
	ID          string `json:"id"`
	CompanyID   string `json:"company_id"`
	WorkerID    string `json:"worker_id"`
	TeamID      *string `json:"team_id,omitempty"`
	AbsenceDate string `json:"absence_date"`
	Status      string `json:"status"`

	ReasonCategory *string `json:"reason_category,omitempty"`
	Explanation    *string `json:"explanation,omitempty"`
	JustifiedAt    *string `json:"justified_at,omitempty"`

	ReviewedBy *string `json:"reviewed_by,omitempty"`
	ReviewNote *string `json:"review_note,omitempty"`
	ReviewedAt *string `json:"reviewed_at,omitempty"`
}
