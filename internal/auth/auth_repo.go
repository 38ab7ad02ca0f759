package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=auth_repo.go -destination=mock/auth_repo_mock.go -package=mock

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return &user, err
	}
	if err := r.resolveEffectiveRole(ctx, &user); err != nil {
		return &user, err
	}
	return &user, err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return &user, err
	}
	if err := r.resolveEffectiveRole(ctx, &user); err != nil {
		return &user, err
	}
	return &user, err
}

// resolveEffectiveRole mengambil role tertinggi worker dari tabel RBAC.
// Role di token hanya untuk tampilan; enforcement tetap lewat Casbin.
func (r *repository) resolveEffectiveRole(ctx context.Context, user *User) error {
	if user.WorkerID == nil || *user.WorkerID == uuid.Nil {
		if user.Role == "" {
			user.Role = "WORKER"
		}
		user.Role = strings.ToUpper(strings.TrimSpace(user.Role))
		return nil
	}

	var roleName string
	err := r.db.WithContext(ctx).
		Table("worker_roles wr").
		Select("roles.name").
		Joins("JOIN roles ON roles.id = wr.role_id").
		Where("wr.worker_id = ?", *user.WorkerID).
		Where("roles.company_id = ?", user.CompanyID).
		Order(`
			CASE UPPER(roles.name)
				WHEN 'SUPERADMIN' THEN 1
				WHEN 'OWNER' THEN 2
				WHEN 'ADMIN' THEN 3
				WHEN 'SUPERVISOR' THEN 4
				WHEN 'LEAD' THEN 5
				WHEN 'WORKER' THEN 6
				ELSE 99
			END ASC`).
		Limit(1).
		Scan(&roleName).Error
	if err != nil {
		return err
	}

	if strings.TrimSpace(roleName) == "" {
		roleName = user.Role
	}
	if strings.TrimSpace(roleName) == "" {
		roleName = "WORKER"
	}
	user.Role = strings.ToUpper(strings.TrimSpace(roleName))
	return nil
}
