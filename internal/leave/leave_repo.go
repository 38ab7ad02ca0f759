package leave

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"

	"aegira/internal/tenant"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	Update(ctx context.Context, l *LeaveRequest) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*LeaveRequest, error)
	FindAllByCompany(ctx context.Context, companyID string) ([]LeaveRequest, error)
	FindAllByWorker(ctx context.Context, companyID, workerID string) ([]LeaveRequest, error)
	FindApprovedByWorkerOverlapping(ctx context.Context, companyID, workerID string, start, end time.Time) ([]LeaveRequest, error)
	CountApprovedByTeamCovering(ctx context.Context, companyID, teamID string, date time.Time) (int64, error)
	HasOverlappingRequest(ctx context.Context, companyID, workerID string, start, end time.Time, excludeID *string) (bool, error)
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

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) Update(ctx context.Context, l *LeaveRequest) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		First(&l).Error
	return &l, err
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]LeaveRequest, error) {
	var rows []LeaveRequest
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("start_date DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindAllByWorker(ctx context.Context, companyID, workerID string) ([]LeaveRequest, error) {
	var rows []LeaveRequest
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("worker_id = ?", workerID).
		Order("start_date DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindApprovedByWorkerOverlapping(ctx context.Context, companyID, workerID string, start, end time.Time) ([]LeaveRequest, error) {
	var rows []LeaveRequest
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("worker_id = ?", workerID).
		Where("status = ?", StatusApproved).
		Where("start_date <= ? AND end_date >= ?", end.Format("2006-01-02"), start.Format("2006-01-02")).
		Order("start_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) CountApprovedByTeamCovering(ctx context.Context, companyID, teamID string, date time.Time) (int64, error) {
	var n int64
	day := date.Format("2006-01-02")
	err := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Scopes(tenant.Scope(companyID)).
		Where("status = ?", StatusApproved).
		Where("start_date <= ? AND end_date >= ?", day, day).
		Where("worker_id IN (SELECT id FROM workers WHERE team_id = ? AND active = true)", teamID).
		Count(&n).Error
	return n, err
}

func (r *repository) HasOverlappingRequest(ctx context.Context, companyID, workerID string, start, end time.Time, excludeID *string) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Scopes(tenant.Scope(companyID)).
		Where("worker_id = ?", workerID).
		Where("status IN ?", []string{StatusPending, StatusApproved}).
		Where("start_date <= ? AND end_date >= ?", end.Format("2006-01-02"), start.Format("2006-01-02"))
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
