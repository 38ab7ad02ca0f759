package summary

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"aegira/internal/tenant"
)

//go:generate mockgen -source=summary_repo.go -destination=mock/summary_repo_mock.go -package=mock
type Repository interface {
	Upsert(ctx context.Context, s *TeamDaySummary) error
	FindByTeamAndDate(ctx context.Context, companyID, teamID string, date time.Time) (*TeamDaySummary, error)
	FindByCompanyAndDate(ctx context.Context, companyID string, date time.Time) ([]TeamDaySummary, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Upsert overwrites every derived column so a rebuild fully replaces the
// previous snapshot for the team day.
func (r *repository) Upsert(ctx context.Context, s *TeamDaySummary) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "team_id"}, {Name: "summary_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"team_size", "checked_in",
				"green", "absent", "excused", "pending_justification", "on_leave",
				"avg_readiness", "at_risk",
				"computed_at",
			}),
		}).
		Create(s).Error
}

func (r *repository) FindByTeamAndDate(ctx context.Context, companyID, teamID string, date time.Time) (*TeamDaySummary, error) {
	var s TeamDaySummary
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("team_id = ?", teamID).
		Where("summary_date = ?", date.Format("2006-01-02")).
		First(&s).Error
	return &s, err
}

func (r *repository) FindByCompanyAndDate(ctx context.Context, companyID string, date time.Time) ([]TeamDaySummary, error) {
	var rows []TeamDaySummary
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("summary_date = ?", date.Format("2006-01-02")).
		Order("team_id ASC").
		Find(&rows).Error
	return rows, err
}
