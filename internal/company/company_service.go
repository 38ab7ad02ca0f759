package company

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	companyerrors "aegira/internal/company/errors"
)

//go:generate mockgen -destination=mock/company_service_mock.go -package=mock . Service
type Service interface {
	GetByID(ctx context.Context, id string) (*CompanyResponse, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetByID(ctx context.Context, id string) (*CompanyResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, companyerrors.ErrInvalidCompanyID
	}

	comp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, companyerrors.ErrCompanyNotFound
		}
		return nil, err
	}

	return &CompanyResponse{
		ID:       comp.ID.String(),
		Name:     comp.Name,
		Timezone: comp.Timezone,
		Active:   comp.Active,
	}, nil
}
