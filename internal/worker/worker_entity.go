package worker

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Worker struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID  `gorm:"column:company_id;type:uuid;not null;index"`
	TeamID    *uuid.UUID `gorm:"column:team_id;type:uuid;index"`
	FullName  string     `gorm:"column:full_name;type:varchar(150);not null"`

	JoinedTeamAt *time.Time `gorm:"column:joined_team_at;type:date"`
	Active       bool       `gorm:"column:active;not null;default:true"`

	// CheckinCount is the lifetime number of wellness check-ins, maintained
	// through the worker_counters UPSERT so concurrent submissions stay exact.
	CheckinCount int64 `gorm:"column:checkin_count;not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Worker) TableName() string {
	return "workers"
}
