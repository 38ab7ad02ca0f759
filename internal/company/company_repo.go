package company

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=company_repo.go -destination=mock/company_repo_mock.go -package=mock
type Repository interface {
	FindByID(ctx context.Context, id string) (*Company, error)
	FindAllActive(ctx context.Context) ([]Company, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, id string) (*Company, error) {
	var c Company
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&c).Error
	return &c, err
}

func (r *repository) FindAllActive(ctx context.Context) ([]Company, error) {
	var rows []Company
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}
