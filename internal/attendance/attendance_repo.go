package attendance

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"

	"aegira/internal/tenant"
)

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, rec *DailyAttendanceRecord) error
	FindByWorkerAndDate(ctx context.Context, companyID, workerID string, date time.Time) (*DailyAttendanceRecord, error)
	FindByWorkerBetween(ctx context.Context, companyID, workerID string, start, end time.Time) ([]DailyAttendanceRecord, error)
	FindByTeamAndDate(ctx context.Context, companyID, teamID string, date time.Time) ([]DailyAttendanceRecord, error)
	MarkExcused(ctx context.Context, companyID, workerID string, date time.Time) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Create(ctx context.Context, rec *DailyAttendanceRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *repository) FindByWorkerAndDate(ctx context.Context, companyID, workerID string, date time.Time) (*DailyAttendanceRecord, error) {
	var rec DailyAttendanceRecord
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("worker_id = ?", workerID).
		Where("attendance_date = ?", date.Format("2006-01-02")).
		First(&rec).Error
	return &rec, err
}

func (r *repository) FindByWorkerBetween(ctx context.Context, companyID, workerID string, start, end time.Time) ([]DailyAttendanceRecord, error) {
	var rows []DailyAttendanceRecord
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("worker_id = ?", workerID).
		Where("attendance_date BETWEEN ? AND ?", start.Format("2006-01-02"), end.Format("2006-01-02")).
		Order("attendance_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByTeamAndDate(ctx context.Context, companyID, teamID string, date time.Time) ([]DailyAttendanceRecord, error) {
	var rows []DailyAttendanceRecord
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("team_id = ?", teamID).
		Where("attendance_date = ?", date.Format("2006-01-02")).
		Find(&rows).Error
	return rows, err
}

// MarkExcused flips the record out of scoring. The paired absence review (or
// retroactive leave approval) is the only caller.
func (r *repository) MarkExcused(ctx context.Context, companyID, workerID string, date time.Time) error {
	return r.db.WithContext(ctx).
		Model(&DailyAttendanceRecord{}).
		Scopes(tenant.Scope(companyID)).
		Where("worker_id = ?", workerID).
		Where("attendance_date = ?", date.Format("2006-01-02")).
		Updates(map[string]interface{}{
			"status":  StatusExcused,
			"points":  0,
			"counted": false,
		}).Error
}
