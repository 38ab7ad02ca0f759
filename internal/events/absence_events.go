package events

import "time"

const AbsenceLifecycleTopic = "wellness.absence.lifecycle.v1"

// AbsenceRecordedEvent notifies a worker that a missed check-in was finalized
// into an absence awaiting justification.
type AbsenceRecordedEvent struct {
	EventType   string    `json:"event_type"`
	AbsenceID   string    `json:"absence_id"`
	WorkerID    string    `json:"worker_id"`
	CompanyID   string    `json:"company_id"`
	AbsenceDate string    `json:"absence_date"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// AbsenceReviewedEvent notifies a worker of the leader's review decision.
type AbsenceReviewedEvent struct {
	EventType   string    `json:"event_type"`
	AbsenceID   string    `json:"absence_id"`
	WorkerID    string    `json:"worker_id"`
	CompanyID   string    `json:"company_id"`
	AbsenceDate string    `json:"absence_date"`
	Decision    string    `json:"decision"`
	ReviewedBy  string    `json:"reviewed_by"`
	OccurredAt  time.Time `json:"occurred_at"`
}

const (
	EventTypeAbsenceRecorded = "absence.recorded"
	EventTypeAbsenceReviewed = "absence.reviewed"
)
