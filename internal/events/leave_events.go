package events

import "time"

const LeaveLifecycleTopic = "wellness.leave.lifecycle.v1"

const EventTypeLeaveApproved = "leave.approved"

type LeaveApprovedEvent struct {
	EventType  string    `json:"event_type"`
	LeaveID    string    `json:"leave_id"`
	WorkerID   string    `json:"worker_id"`
	CompanyID  string    `json:"company_id"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	OccurredAt time.Time `json:"occurred_at"`
}
