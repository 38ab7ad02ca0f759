package summary

import (
	"time"

	"github.com/google/uuid"
)

// TeamDaySummary is a derived row: every field can be recomputed from the
// check-in, attendance, absence and leave tables. Rebuilds overwrite it
// wholesale, which is what makes the sweep and review paths idempotent.
type TeamDaySummary struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"column:company_id;type:uuid;not null;index"`
	TeamID    uuid.UUID `gorm:"column:team_id;type:uuid;not null;uniqueIndex:uq_summary_team_date"`

	SummaryDate time.Time `gorm:"column:summary_date;type:date;not null;uniqueIndex:uq_summary_team_date"`

	TeamSize  int `gorm:"column:team_size;not null;default:0"`
	CheckedIn int `gorm:"column:checked_in;not null;default:0"`

	Green                int `gorm:"column:green;not null;default:0"`
	Absent               int `gorm:"column:absent;not null;default:0"`
	Excused              int `gorm:"column:excused;not null;default:0"`
	PendingJustification int `gorm:"column:pending_justification;not null;default:0"`
	OnLeave              int `gorm:"column:on_leave;not null;default:0"`

	AvgReadiness float64 `gorm:"column:avg_readiness;not null;default:0"`
	AtRisk       int     `gorm:"column:at_risk;not null;default:0"`

	ComputedAt time.Time `gorm:"column:computed_at;not null"`
}

func (TeamDaySummary) TableName() string {
	return "team_day_summaries"
}
