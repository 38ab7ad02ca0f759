package leave

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LeaveRequest struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index:idx_leaves_company_status"`
	WorkerID  uuid.UUID `gorm:"type:uuid;not null;index:idx_leaves_worker_dates"`

	LeaveType string `gorm:"type:varchar(30);not null;default:'ANNUAL'"`

	// StartDate and EndDate are both inclusive: the end date is still an
	// excused day, not the return-to-work day.
	StartDate time.Time `gorm:"type:date;not null;index:idx_leaves_worker_dates"`
	EndDate   time.Time `gorm:"type:date;not null;index:idx_leaves_worker_dates"`
	TotalDays int       `gorm:"type:int;not null;default:1"`
	Reason    string    `gorm:"type:text"`

	Status          string     `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_leaves_company_status"`
	CreatedBy       uuid.UUID  `gorm:"type:uuid;not null"`
	ApprovedBy      *uuid.UUID `gorm:"type:uuid"`
	RejectionReason *string    `gorm:"type:text"`

	CreatedAt  time.Time
	UpdatedAt  time.Time
	ApprovedAt *time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index:idx_leaves_deleted_at"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

// Covers reports whether the window excuses the given date. A window whose
// end precedes its start can only come from a misbehaving upstream writer and
// is defensively treated as covering nothing.
func (l LeaveRequest) Covers(date time.Time) bool {
	if l.EndDate.Before(l.StartDate) {
		return false
	}
	return !date.Before(l.StartDate) && !date.After(l.EndDate)
}
