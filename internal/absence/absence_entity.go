package absence

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPendingJustification = "PENDING_JUSTIFICATION"
	StatusExcused              = "EXCUSED"
	StatusUnexcused            = "UNEXCUSED"
)

const (
	DecisionExcused   = StatusExcused
	DecisionUnexcused = StatusUnexcused
)

// Justification reason categories offered to the worker.
const (
	ReasonForgotCheckin = "FORGOT_CHECKIN"
	ReasonSick          = "SICK"
	ReasonEmergency     = "EMERGENCY"
	ReasonTechIssue     = "TECH_ISSUE"
	ReasonOther         = "OTHER"
)

type AbsenceRecord struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID  `gorm:"column:company_id;type:uuid;not null;index"`
	WorkerID  uuid.UUID  `gorm:"column:worker_id;type:uuid;not null;uniqueIndex:uq_absence_worker_date"`
	TeamID    *uuid.UUID `gorm:"column:team_id;type:uuid;index"`

	AbsenceDate time.Time `gorm:"column:absence_date;type:date;not null;uniqueIndex:uq_absence_worker_date"`
	Status      string    `gorm:"column:status;type:varchar(30);not null;default:'PENDING_JUSTIFICATION'"`

	ReasonCategory *string    `gorm:"column:reason_category;type:varchar(30)"`
	Explanation    *string    `gorm:"column:explanation;type:text"`
	JustifiedAt    *time.Time `gorm:"column:justified_at;type:timestamptz"`

	ReviewedBy *uuid.UUID `gorm:"column:reviewed_by;type:uuid"`
	ReviewNote *string    `gorm:"column:review_note;type:text"`
	ReviewedAt *time.Time `gorm:"column:reviewed_at;type:timestamptz"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (AbsenceRecord) TableName() string {
	return "absence_records"
}

func (a AbsenceRecord) Justified() bool {
	return a.JustifiedAt != nil
}

func (a AbsenceRecord) Reviewed() bool {
	return a.Status != StatusPendingJustification
}
