package worker

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"aegira/internal/shared/dateutil"
	workererrors "aegira/internal/worker/errors"
)

//go:generate mockgen -destination=mock/worker_service_mock.go -package=mock . Service
type Service interface {
	GetByID(ctx context.Context, companyID, id string) (*WorkerResponse, error)
	GetAllActive(ctx context.Context, companyID string) ([]WorkerResponse, error)
	GetTeamRoster(ctx context.Context, companyID, teamID string) ([]WorkerResponse, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (*WorkerResponse, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return nil, workererrors.ErrInvalidCompanyID
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, workererrors.ErrInvalidWorkerID
	}

	w, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, workererrors.ErrWorkerNotFound
		}
		return nil, err
	}

	resp := mapToResponse(w)
	return &resp, nil
}

func (s *service) GetAllActive(ctx context.Context, companyID string) ([]WorkerResponse, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return nil, workererrors.ErrInvalidCompanyID
	}

	rows, err := s.repo.FindActiveByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return mapAll(rows), nil
}

func (s *service) GetTeamRoster(ctx context.Context, companyID, teamID string) ([]WorkerResponse, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return nil, workererrors.ErrInvalidCompanyID
	}

	rows, err := s.repo.FindActiveByTeam(ctx, companyID, teamID)
	if err != nil {
		return nil, err
	}
	return mapAll(rows), nil
}

func mapAll(rows []Worker) []WorkerResponse {
	result := make([]WorkerResponse, 0, len(rows))
	for i := range rows {
		result = append(result, mapToResponse(&rows[i]))
	}
	return result
}

func mapToResponse(w *Worker) WorkerResponse {
	resp := WorkerResponse{
		ID:           w.ID.String(),
		CompanyID:    w.CompanyID.String(),
		FullName:     w.FullName,
		Active:       w.Active,
		CheckinCount: w.CheckinCount,
	}
	if w.TeamID != nil {
		teamID := w.TeamID.String()
		resp.TeamID = &teamID
	}
	if w.JoinedTeamAt != nil {
		joined := dateutil.Key(*w.JoinedTeamAt)
		resp.JoinedTeamAt = &joined
	}
	return resp
}
