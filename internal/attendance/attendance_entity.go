package attendance

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusGreen   = "GREEN"
	StatusAbsent  = "ABSENT"
	StatusExcused = "EXCUSED"

	// StatusYellow survives in historical rows from the retired late-penalty
	// scoring model. It is never written anymore and scores as GREEN.
	StatusYellow = "YELLOW"
)

const (
	SourceCheckin   = "CHECKIN"
	SourceFinalizer = "FINALIZER"
)

type DailyAttendanceRecord struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID  `gorm:"column:company_id;type:uuid;not null;index"`
	WorkerID  uuid.UUID  `gorm:"column:worker_id;type:uuid;not null;uniqueIndex:uq_attendance_worker_date"`
	TeamID    *uuid.UUID `gorm:"column:team_id;type:uuid;index"`

	AttendanceDate time.Time `gorm:"column:attendance_date;type:date;not null;uniqueIndex:uq_attendance_worker_date"`
	Status         string    `gorm:"column:status;type:varchar(20);not null"`
	Points         int64     `gorm:"column:points;not null;default:0"`
	Counted        bool      `gorm:"column:counted;not null;default:true"`
	Source         string    `gorm:"column:source;type:varchar(30);not null;default:'CHECKIN'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (DailyAttendanceRecord) TableName() string {
	return "daily_attendance_records"
}
