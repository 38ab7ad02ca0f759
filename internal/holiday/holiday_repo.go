package holiday

import (
	"context"
	"time"

	"gorm.io/gorm"

	"aegira/internal/tenant"
)

//go:generate mockgen -source=holiday_repo.go -destination=mock/holiday_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, h *Holiday) error
	Delete(ctx context.Context, companyID, id string) error
	FindAllByCompany(ctx context.Context, companyID string) ([]Holiday, error)
	FindByCompanyBetween(ctx context.Context, companyID string, start, end time.Time) ([]Holiday, error)
	IsHoliday(ctx context.Context, companyID string, date time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, h *Holiday) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *repository) Delete(ctx context.Context, companyID, id string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		Delete(&Holiday{}).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]Holiday, error) {
	var rows []Holiday
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("holiday_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByCompanyBetween(ctx context.Context, companyID string, start, end time.Time) ([]Holiday, error) {
	var rows []Holiday
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("holiday_date BETWEEN ? AND ?", start.Format("2006-01-02"), end.Format("2006-01-02")).
		Order("holiday_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) IsHoliday(ctx context.Context, companyID string, date time.Time) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&Holiday{}).
		Scopes(tenant.Scope(companyID)).
		Where("holiday_date = ?", date.Format("2006-01-02")).
		Count(&n).Error
	return n > 0, err
}
