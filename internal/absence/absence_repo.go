package absence

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"

	"aegira/internal/tenant"
)

//go:generate mockgen -source=absence_repo.go -destination=mock/absence_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, rec *AbsenceRecord) error
	Update(ctx context.Context, rec *AbsenceRecord) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*AbsenceRecord, error)
	FindByWorkerAndDate(ctx context.Context, companyID, workerID string, date time.Time) (*AbsenceRecord, error)
	FindByWorkerBetween(ctx context.Context, companyID, workerID string, start, end time.Time) ([]AbsenceRecord, error)
	FindPendingByWorkerBetween(ctx context.Context, companyID, workerID string, start, end time.Time) ([]AbsenceRecord, error)
	FindAllByCompany(ctx context.Context, companyID string) ([]AbsenceRecord, error)
	FindAllByWorker(ctx context.Context, companyID, workerID string) ([]AbsenceRecord, error)
	CountByTeamDateAndStatus(ctx context.Context, companyID, teamID string, date time.Time, status string) (int64, error)
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

func (r *repository) Create(ctx context.Context, rec *AbsenceRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *repository) Update(ctx context.Context, rec *AbsenceRecord) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*AbsenceRecord, error) {
	var rec AbsenceRecord
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		First(&rec).Error
	return &rec, err
}

func (r *repository) FindByWorkerAndDate(ctx context.Context, companyID, workerID string, date time.Time) (*AbsenceRecord, error) {
	var rec AbsenceRecord
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("worker_id = ?", workerID).
		Where("absence_date = ?", date.Format("2006-01-02")).
		First(&rec).Error
	return &rec, err
}

func (r *repository) FindByWorkerBetween(ctx context.Context, companyID, workerID string, start, end time.Time) ([]AbsenceRecord, error) {
	var rows []AbsenceRecord
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("worker_id = ?", workerID).
		Where("absence_date BETWEEN ? AND ?", start.Format("2006-01-02"), end.Format("2006-01-02")).
		Order("absence_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindPendingByWorkerBetween(ctx context.Context, companyID, workerID string, start, end time.Time) ([]AbsenceRecord, error) {
	var rows []AbsenceRecord
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("worker_id = ?", workerID).
		Where("status = ?", StatusPendingJustification).
		Where("absence_date BETWEEN ? AND ?", start.Format("2006-01-02"), end.Format("2006-01-02")).
		Order("absence_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]AbsenceRecord, error) {
	var rows []AbsenceRecord
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("absence_date DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindAllByWorker(ctx context.Context, companyID, workerID string) ([]AbsenceRecord, error) {
	var rows []AbsenceRecord
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("worker_id = ?", workerID).
		Order("absence_date DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) CountByTeamDateAndStatus(ctx context.Context, companyID, teamID string, date time.Time, status string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&AbsenceRecord{}).
		Scopes(tenant.Scope(companyID)).
		Where("team_id = ?", teamID).
		Where("absence_date = ?", date.Format("2006-01-02")).
		Where("status = ?", status).
		Count(&n).Error
	return n, err
}
