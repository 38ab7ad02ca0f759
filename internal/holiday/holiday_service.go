package holiday

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"aegira/internal/authz"
	holidayerrors "aegira/internal/holiday/errors"
	"aegira/internal/shared/dateutil"
)

//go:generate mockgen -source=holiday_service.go -destination=mock/holiday_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID string, actor authz.Context, req CreateHolidayRequest) (*HolidayResponse, error)
	Delete(ctx context.Context, companyID string, actor authz.Context, id string) error
	GetAll(ctx context.Context, companyID string) ([]HolidayResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("holiday.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("holiday.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, companyID string, actor authz.Context, req CreateHolidayRequest) (*HolidayResponse, error) {
	if !actor.CanManageHolidays {
		return nil, holidayerrors.ErrManageNotAllowed
	}

	cID, err := uuid.Parse(companyID)
	if err != nil {
		return nil, holidayerrors.ErrInvalidCompanyID
	}

	date, err := dateutil.Parse(req.HolidayDate)
	if err != nil {
		return nil, holidayerrors.ErrInvalidDateFormat
	}

	h := &Holiday{
		ID:          uuid.New(),
		CompanyID:   cID,
		HolidayDate: date,
		Name:        strings.TrimSpace(req.Name),
	}

	if err := s.repo.Create(ctx, h); err != nil {
		if isUniqueViolation(err) {
			return nil, holidayerrors.ErrHolidayExists
		}
		return nil, err
	}

	s.logger.Info("holiday created",
		zap.String("company_id", companyID),
		zap.String("holiday_date", req.HolidayDate),
		zap.String("actor_id", actor.ActorID),
	)

	return mapToResponse(h), nil
}

func (s *service) Delete(ctx context.Context, companyID string, actor authz.Context, id string) error {
	if !actor.CanManageHolidays {
		return holidayerrors.ErrManageNotAllowed
	}

	if _, err := uuid.Parse(companyID); err != nil {
		return holidayerrors.ErrInvalidCompanyID
	}
	if _, err := uuid.Parse(id); err != nil {
		return holidayerrors.ErrInvalidHolidayID
	}

	return s.repo.Delete(ctx, companyID, id)
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]HolidayResponse, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return nil, holidayerrors.ErrInvalidCompanyID
	}

	rows, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	result := make([]HolidayResponse, 0, len(rows))
	for i := range rows {
		result = append(result, *mapToResponse(&rows[i]))
	}
	return result, nil
}

func mapToResponse(h *Holiday) *HolidayResponse {
	return &HolidayResponse{
		ID:          h.ID.String(),
		CompanyID:   h.CompanyID.String(),
		HolidayDate: dateutil.Key(h.HolidayDate),
		Name:        h.Name,
	}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
