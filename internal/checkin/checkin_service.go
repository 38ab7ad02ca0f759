package checkin

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"aegira/internal/attendance"
	checkinerrors "aegira/internal/checkin/errors"
	"aegira/internal/company"
	"aegira/internal/shared/counter"
	"aegira/internal/shared/dateutil"
	"aegira/internal/worker"
)

// SummaryRebuilder refreshes a team day summary after a submission changes
// its inputs. Satisfied by summary.Service.
type SummaryRebuilder interface {
	Rebuild(ctx context.Context, companyID, teamID string, date time.Time) error
}

//go:generate mockgen -source=checkin_service.go -destination=mock/checkin_service_mock.go -package=mock
type Service interface {
	Submit(ctx context.Context, companyID, actorID string, req SubmitCheckinRequest) (CheckinResponse, error)
	GetMineByDate(ctx context.Context, companyID, actorID, date string) ([]CheckinResponse, error)
	GetTeamByDate(ctx context.Context, companyID, teamID, date string) ([]CheckinResponse, error)
}

type service struct {
	db             *sql.DB
	repo           Repository
	workerRepo     worker.Repository
	attendanceRepo attendance.Repository
	companyRepo    company.Repository
	counterRepo    counter.Repository
	summaries      SummaryRebuilder
	logger         *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	workerRepo worker.Repository,
	attendanceRepo attendance.Repository,
	companyRepo company.Repository,
	counterRepo counter.Repository,
	summaries SummaryRebuilder,
) Service {
	return &service{
		db:             db,
		repo:           repo,
		workerRepo:     workerRepo,
		attendanceRepo: attendanceRepo,
		companyRepo:    companyRepo,
		counterRepo:    counterRepo,
		summaries:      summaries,
		logger:         zap.L().Named("checkin.service"),
	}
}

func (s *service) Submit(ctx context.Context, companyID, actorID string, req SubmitCheckinRequest) (CheckinResponse, error) {
	s.logger.Debug("submit checkin requested",
		zap.String("company_id", companyID),
		zap.String("worker_id", actorID),
	)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return CheckinResponse{}, checkinerrors.ErrInvalidCompanyID
	}
	workerUUID, err := uuid.Parse(actorID)
	if err != nil {
		return CheckinResponse{}, checkinerrors.ErrInvalidWorkerID
	}
	if !metricInRange(req.Mood) || !metricInRange(req.Stress) ||
		!metricInRange(req.Sleep) || !metricInRange(req.PhysicalHealth) {
		return CheckinResponse{}, checkinerrors.ErrInvalidMetric
	}

	w, err := s.workerRepo.FindByIDAndCompany(ctx, companyID, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CheckinResponse{}, checkinerrors.ErrWorkerNotFound
		}
		return CheckinResponse{}, err
	}
	if !w.Active {
		return CheckinResponse{}, checkinerrors.ErrWorkerInactive
	}

	// The check-in day follows the company clock, not the server clock.
	loc := time.UTC
	if c, err := s.companyRepo.FindByID(ctx, companyID); err == nil {
		loc = c.Location()
	}
	now := time.Now().UTC()
	today := dateutil.LocalDate(now, loc)

	score, status := ComputeReadiness(req.Mood, req.Stress, req.Sleep, req.PhysicalHealth)

	rec := &CheckinRecord{
		ID:              uuid.New(),
		CompanyID:       companyUUID,
		WorkerID:        workerUUID,
		TeamID:          w.TeamID,
		CheckinDate:     today,
		SubmittedAt:     now,
		Mood:            req.Mood,
		Stress:          req.Stress,
		Sleep:           req.Sleep,
		PhysicalHealth:  req.PhysicalHealth,
		ReadinessScore:  score,
		ReadinessStatus: status,
		Notes:           req.Notes,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("submit checkin begin tx failed", zap.Error(err))
		return CheckinResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Create(ctx, rec); err != nil {
		s.logger.Error("submit checkin persist failed", zap.Error(err))
		return CheckinResponse{}, err
	}

	if err := s.ensureGreenAttendance(ctx, tx, rec); err != nil {
		s.logger.Error("submit checkin attendance upsert failed", zap.Error(err))
		return CheckinResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("submit checkin commit failed", zap.Error(err))
		return CheckinResponse{}, err
	}

	count, err := s.counterRepo.GetNextValue(ctx, actorID, counter.TypeCheckin)
	if err != nil {
		s.logger.Error("submit checkin counter failed", zap.String("worker_id", actorID), zap.Error(err))
	} else if err := s.workerRepo.SetCheckinCount(ctx, companyID, actorID, count); err != nil {
		s.logger.Error("submit checkin count sync failed", zap.String("worker_id", actorID), zap.Error(err))
	}

	s.rebuildSummaryAsync(*rec)

	s.logger.Info("submit checkin success",
		zap.String("checkin_id", rec.ID.String()),
		zap.String("worker_id", actorID),
		zap.String("checkin_date", dateutil.Key(today)),
		zap.Int("readiness_score", score),
		zap.String("readiness_status", status),
	)

	resp := mapToResponse(*rec)
	resp.CheckinCount = count
	return resp, nil
}

// ensureGreenAttendance creates today's GREEN row on the first submission of
// the day. Later submissions find the row and leave it alone; a concurrent
// first submission loses the unique-index race and is treated the same way.
func (s *service) ensureGreenAttendance(ctx context.Context, tx *sql.Tx, rec *CheckinRecord) error {
	aqtx := s.attendanceRepo.WithTx(tx)

	existing, err := aqtx.FindByWorkerAndDate(ctx, rec.CompanyID.String(), rec.WorkerID.String(), rec.CheckinDate)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil && existing.ID != uuid.Nil {
		return nil
	}

	err = aqtx.Create(ctx, &attendance.DailyAttendanceRecord{
		ID:             uuid.New(),
		CompanyID:      rec.CompanyID,
		WorkerID:       rec.WorkerID,
		TeamID:         rec.TeamID,
		AttendanceDate: rec.CheckinDate,
		Status:         attendance.StatusGreen,
		Points:         100,
		Counted:        true,
		Source:         attendance.SourceCheckin,
	})
	if isUniqueViolation(err) {
		return nil
	}
	return err
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *service) GetMineByDate(ctx context.Context, companyID, actorID, date string) ([]CheckinResponse, error) {
	day, err := dateutil.Parse(date)
	if err != nil {
		return nil, checkinerrors.ErrInvalidDateFormat
	}
	rows, err := s.repo.FindByWorkerAndDate(ctx, companyID, actorID, day)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) GetTeamByDate(ctx context.Context, companyID, teamID, date string) ([]CheckinResponse, error) {
	day, err := dateutil.Parse(date)
	if err != nil {
		return nil, checkinerrors.ErrInvalidDateFormat
	}
	rows, err := s.repo.FindByTeamAndDate(ctx, companyID, teamID, day)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) rebuildSummaryAsync(rec CheckinRecord) {
	if s.summaries == nil || rec.TeamID == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.summaries.Rebuild(ctx, rec.CompanyID.String(), rec.TeamID.String(), rec.CheckinDate); err != nil {
			s.logger.Warn("summary rebuild after checkin failed",
				zap.String("team_id", rec.TeamID.String()),
				zap.String("checkin_date", dateutil.Key(rec.CheckinDate)),
				zap.Error(err),
			)
		}
	}()
}

func metricInRange(v int) bool {
	return v >= 1 && v <= 5
}

func mapToResponse(rec CheckinRecord) CheckinResponse {
	resp := CheckinResponse{
		ID:              rec.ID.String(),
		CompanyID:       rec.CompanyID.String(),
		WorkerID:        rec.WorkerID.String(),
		CheckinDate:     dateutil.Key(rec.CheckinDate),
		SubmittedAt:     rec.SubmittedAt.UTC().Format(time.RFC3339),
		Mood:            rec.Mood,
		Stress:          rec.Stress,
		Sleep:           rec.Sleep,
		PhysicalHealth:  rec.PhysicalHealth,
		ReadinessScore:  rec.ReadinessScore,
		ReadinessStatus: rec.ReadinessStatus,
		Notes:           rec.Notes,
	}
	if rec.TeamID != nil {
		v := rec.TeamID.String()
		resp.TeamID = &v
	}
	return resp
}

func mapToListResponse(rows []CheckinRecord) []CheckinResponse {
	out := make([]CheckinResponse, 0, len(rows))
	for _, rec := range rows {
		out = append(out, mapToResponse(rec))
	}
	return out
}
