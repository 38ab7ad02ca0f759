package team

import (
	"context"

	"gorm.io/gorm"

	"aegira/internal/tenant"
)

//go:generate mockgen -source=team_repo.go -destination=mock/team_repo_mock.go -package=mock
type Repository interface {
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Team, error)
	FindAllActiveByCompany(ctx context.Context, companyID string) ([]Team, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Team, error) {
	var t Team
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		First(&t).Error
	return &t, err
}

func (r *repository) FindAllActiveByCompany(ctx context.Context, companyID string) ([]Team, error) {
	var rows []Team
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("active = ?", true).
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}
