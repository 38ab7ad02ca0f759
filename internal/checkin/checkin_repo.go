package checkin

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"

	"aegira/internal/shared/dateutil"
	"aegira/internal/tenant"
)

//go:generate mockgen -source=checkin_repo.go -destination=mock/checkin_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, rec *CheckinRecord) error
	FindByWorkerAndDate(ctx context.Context, companyID, workerID string, date time.Time) ([]CheckinRecord, error)
	FindByTeamAndDate(ctx context.Context, companyID, teamID string, date time.Time) ([]CheckinRecord, error)
	FirstCheckinDate(ctx context.Context, companyID, workerID string) (*time.Time, error)
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

func (r *repository) Create(ctx context.Context, rec *CheckinRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *repository) FindByWorkerAndDate(ctx context.Context, companyID, workerID string, date time.Time) ([]CheckinRecord, error) {
	var rows []CheckinRecord
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("worker_id = ?", workerID).
		Where("checkin_date = ?", date.Format("2006-01-02")).
		Order("submitted_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByTeamAndDate(ctx context.Context, companyID, teamID string, date time.Time) ([]CheckinRecord, error) {
	var rows []CheckinRecord
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("team_id = ?", teamID).
		Where("checkin_date = ?", date.Format("2006-01-02")).
		Order("submitted_at ASC").
		Find(&rows).Error
	return rows, err
}

// FirstCheckinDate returns the worker's earliest check-in date, or nil when
// the worker has never checked in.
func (r *repository) FirstCheckinDate(ctx context.Context, companyID, workerID string) (*time.Time, error) {
	var rec CheckinRecord
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("worker_id = ?", workerID).
		Order("checkin_date ASC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	d := dateutil.DateOf(rec.CheckinDate)
	return &d, nil
}
