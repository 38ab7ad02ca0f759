package worker

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"aegira/internal/tenant"
)

//go:generate mockgen -source=worker_repo.go -destination=mock/worker_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Worker, error)
	FindActiveByCompany(ctx context.Context, companyID string) ([]Worker, error)
	FindActiveByTeam(ctx context.Context, companyID, teamID string) ([]Worker, error)
	SetCheckinCount(ctx context.Context, companyID, id string, count int64) error
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

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Worker, error) {
	var w Worker
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		First(&w).Error
	return &w, err
}

func (r *repository) FindActiveByCompany(ctx context.Context, companyID string) ([]Worker, error) {
	var rows []Worker
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("active = ?", true).
		Order("full_name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindActiveByTeam(ctx context.Context, companyID, teamID string) ([]Worker, error) {
	var rows []Worker
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("team_id = ?", teamID).
		Where("active = ?", true).
		Order("full_name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) SetCheckinCount(ctx context.Context, companyID, id string, count int64) error {
	return r.db.WithContext(ctx).
		Model(&Worker{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		UpdateColumn("checkin_count", count).Error
}
