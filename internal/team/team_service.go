package team

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	teamerrors "aegira/internal/team/errors"
)

//go:generate mockgen -destination=mock/team_service_mock.go -package=mock . Service
type Service interface {
	GetByID(ctx context.Context, companyID, id string) (*TeamResponse, error)
	GetAllActive(ctx context.Context, companyID string) ([]TeamResponse, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (*TeamResponse, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return nil, teamerrors.ErrInvalidCompanyID
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, teamerrors.ErrInvalidTeamID
	}

	t, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, teamerrors.ErrTeamNotFound
		}
		return nil, err
	}

	resp := mapToResponse(t)
	return &resp, nil
}

func (s *service) GetAllActive(ctx context.Context, companyID string) ([]TeamResponse, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return nil, teamerrors.ErrInvalidCompanyID
	}

	rows, err := s.repo.FindAllActiveByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	result := make([]TeamResponse, 0, len(rows))
	for i := range rows {
		result = append(result, mapToResponse(&rows[i]))
	}
	return result, nil
}

func mapToResponse(t *Team) TeamResponse {
	resp := TeamResponse{
		ID:             t.ID.String(),
		CompanyID:      t.CompanyID.String(),
		Name:           t.Name,
		WorkDays:       t.WorkDays,
		ShiftStartHour: t.ShiftStartHour,
		ShiftEndHour:   t.ShiftEndHour,
		Active:         t.Active,
	}
	if t.LeaderID != nil {
		leaderID := t.LeaderID.String()
		resp.LeaderID = &leaderID
	}
	return resp
}
