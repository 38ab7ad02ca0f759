package team

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Team struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID  `gorm:"column:company_id;type:uuid;not null;index"`
	Name      string     `gorm:"column:name;type:varchar(150);not null"`
	LeaderID  *uuid.UUID `gorm:"column:leader_id;type:uuid"`

	// WorkDays is a CSV of time.Weekday numbers, e.g. "1,2,3,4,5" for Mon-Fri.
	WorkDays       string `gorm:"column:work_days;type:varchar(20);not null;default:'1,2,3,4,5'"`
	ShiftStartHour int    `gorm:"column:shift_start_hour;not null;default:9"`
	ShiftEndHour   int    `gorm:"column:shift_end_hour;not null;default:17"`
	Active         bool   `gorm:"column:active;not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Team) TableName() string {
	return "teams"
}

// WorkDaySet parses the stored CSV into a weekday lookup. Unparseable
// fragments are skipped rather than failing the whole team.
func (t Team) WorkDaySet() map[time.Weekday]bool {
	set := make(map[time.Weekday]bool)
	for _, part := range strings.Split(t.WorkDays, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 6 {
			continue
		}
		set[time.Weekday(n)] = true
	}
	return set
}

// IsWorkDay reports whether the given date falls on a configured work day.
func (t Team) IsWorkDay(date time.Time) bool {
	return t.WorkDaySet()[date.Weekday()]
}
