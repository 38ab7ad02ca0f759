package grading

import "aegira/internal/scoring"

type MemberGrade struct {
	WorkerID    string  `json:"worker_id"`
	FullName    string  `json:"full_name"`
	Score       float64 `json:"score"`
	CountedDays int     `json:"counted_days"`

	ExpectedWorkDays int  `json:"expected_work_days"`
	Onboarding       bool `json:"onboarding"`

	Breakdown scoring.Breakdown `json:"breakdown"`
}

type TeamGradeResponse struct {
	TeamID    string `json:"team_id"`
	TeamName  string `json:"team_name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`

	MemberCount int `json:"member_count"`
	GradedCount int `json:"graded_count"`

	Score float64 `json:"score"`
	Grade string  `json:"grade"`
	Trend string  `json:"trend"`

	Members []MemberGrade `json:"members"`
}

type CompanyGradesResponse struct {
	StartDate string              `json:"start_date"`
	EndDate   string              `json:"end_date"`
	Teams     []TeamGradeResponse `json:"teams"`
}
