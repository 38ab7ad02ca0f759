package checkin

import (
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	ReadinessReady   = "READY"
	ReadinessMonitor = "MONITOR"
	ReadinessAtRisk  = "AT_RISK"
)

// CheckinRecord is immutable: one row per submission, never updated.
type CheckinRecord struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID  `gorm:"column:company_id;type:uuid;not null;index"`
	WorkerID  uuid.UUID  `gorm:"column:worker_id;type:uuid;not null;index:idx_checkins_worker_date"`
	TeamID    *uuid.UUID `gorm:"column:team_id;type:uuid;index"`

	CheckinDate time.Time `gorm:"column:checkin_date;type:date;not null;index:idx_checkins_worker_date"`
	SubmittedAt time.Time `gorm:"column:submitted_at;type:timestamptz;not null"`

	// Self-reported wellness metrics, each on a 1-5 scale.
	Mood           int `gorm:"column:mood;not null"`
	Stress         int `gorm:"column:stress;not null"`
	Sleep          int `gorm:"column:sleep;not null"`
	PhysicalHealth int `gorm:"column:physical_health;not null"`

	ReadinessScore  int    `gorm:"column:readiness_score;not null"`
	ReadinessStatus string `gorm:"column:readiness_status;type:varchar(20);not null"`

	Notes *string `gorm:"column:notes;type:text"`

	CreatedAt time.Time
}

func (CheckinRecord) TableName() string {
	return "checkin_records"
}

// ComputeReadiness derives the 0-100 readiness score from the four metrics.
// Stress is inverted: a high stress report lowers readiness.
func ComputeReadiness(mood, stress, sleep, physical int) (int, string) {
	normalized := float64(mood-1)/4 +
		float64(5-stress)/4 +
		float64(sleep-1)/4 +
		float64(physical-1)/4

	score := int(math.Round(normalized / 4 * 100))

	switch {
	case score >= 70:
		return score, ReadinessReady
	case score >= 40:
		return score, ReadinessMonitor
	default:
		return score, ReadinessAtRisk
	}
}
