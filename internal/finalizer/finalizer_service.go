package finalizer

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"aegira/internal/absence"
	"aegira/internal/attendance"
	"aegira/internal/company"
	"aegira/internal/events"
	"aegira/internal/leave"
	"aegira/internal/messaging/kafka"
	"aegira/internal/scoring"
	"aegira/internal/shared/dateutil"
	"aegira/internal/team"
	"aegira/internal/worker"

	holidaypkg "aegira/internal/holiday"
)

// dailySweepHour is the local hour at which the previous-day sweep fires.
const dailySweepHour = 5

// SummaryRebuilder refreshes the team day snapshots a sweep dirties.
// Satisfied by summary.Service.
type SummaryRebuilder interface {
	Rebuild(ctx context.Context, companyID, teamID string, date time.Time) error
}

type SweepResult struct {
	SweepKind string `json:"sweep_kind"`

	CompaniesSwept   int `json:"companies_swept"`
	WorkersChecked   int `json:"workers_checked"`
	AbsencesCreated  int `json:"absences_created"`
	SkippedExisting  int `json:"skipped_existing"`
	SkippedSafeguard int `json:"skipped_safeguard"`
	Errors           int `json:"errors"`
}

//go:generate mockgen -source=finalizer_service.go -destination=mock/finalizer_service_mock.go -package=mock
type Service interface {
	// RunYesterdaySweep finalizes the previous local day for every company
	// whose local clock is in the sweep hour. force bypasses the clock gate,
	// never the per-worker safeguards.
	RunYesterdaySweep(ctx context.Context, now time.Time, force bool) (SweepResult, error)

	// RunShiftEndSweep finalizes the current local day for teams whose shift
	// just ended, catching missed check-ins hours before the daily sweep.
	RunShiftEndSweep(ctx context.Context, now time.Time, force bool) (SweepResult, error)
}

type service struct {
	db             *sql.DB
	companyRepo    company.Repository
	teamRepo       team.Repository
	workerRepo     worker.Repository
	attendanceRepo attendance.Repository
	absenceRepo    absence.Repository
	leaveRepo      leave.Repository
	holidayRepo    holidaypkg.Repository
	outboxRepo     kafka.OutboxRepository
	engine         *scoring.Engine
	summaries      SummaryRebuilder
	logger         *zap.Logger
}

func NewService(
	db *sql.DB,
	companyRepo company.Repository,
	teamRepo team.Repository,
	workerRepo worker.Repository,
	attendanceRepo attendance.Repository,
	absenceRepo absence.Repository,
	leaveRepo leave.Repository,
	holidayRepo holidaypkg.Repository,
	outboxRepo kafka.OutboxRepository,
	engine *scoring.Engine,
	summaries SummaryRebuilder,
) Service {
	return &service{
		db:             db,
		companyRepo:    companyRepo,
		teamRepo:       teamRepo,
		workerRepo:     workerRepo,
		attendanceRepo: attendanceRepo,
		absenceRepo:    absenceRepo,
		leaveRepo:      leaveRepo,
		holidayRepo:    holidayRepo,
		outboxRepo:     outboxRepo,
		engine:         engine,
		summaries:      summaries,
		logger:         zap.L().Named("finalizer.service"),
	}
}

func (s *service) RunYesterdaySweep(ctx context.Context, now time.Time, force bool) (SweepResult, error) {
	res := SweepResult{SweepKind: "yesterday"}

	companies, err := s.companyRepo.FindAllActive(ctx)
	if err != nil {
		return res, err
	}

	for _, c := range companies {
		loc := c.Location()
		localNow := now.In(loc)
		if !force && localNow.Hour() != dailySweepHour {
			continue
		}

		sweepDate := dateutil.LocalDate(now, loc).AddDate(0, 0, -1)
		s.sweepCompany(ctx, c, sweepDate, nil, &res)
		res.CompaniesSwept++
	}

	s.logResult(res)
	return res, nil
}

func (s *service) RunShiftEndSweep(ctx context.Context, now time.Time, force bool) (SweepResult, error) {
	res := SweepResult{SweepKind: "shift_end"}

	companies, err := s.companyRepo.FindAllActive(ctx)
	if err != nil {
		return res, err
	}

	for _, c := range companies {
		loc := c.Location()
		localNow := now.In(loc)
		sweepDate := dateutil.LocalDate(now, loc)

		gate := func(t team.Team) bool {
			return force || localNow.Hour() == t.ShiftEndHour
		}
		s.sweepCompany(ctx, c, sweepDate, gate, &res)
		res.CompaniesSwept++
	}

	s.logResult(res)
	return res, nil
}

// sweepCompany finalizes one local day for every eligible team of a company.
// teamGate, when non-nil, decides per team whether its day is over.
func (s *service) sweepCompany(
	ctx context.Context,
	c company.Company,
	sweepDate time.Time,
	teamGate func(team.Team) bool,
	res *SweepResult,
) {
	companyID := c.ID.String()

	isHoliday, err := s.holidayRepo.IsHoliday(ctx, companyID, sweepDate)
	if err != nil {
		s.logger.Error("sweep holiday check failed", zap.String("company_id", companyID), zap.Error(err))
		res.Errors++
		return
	}
	if isHoliday {
		return
	}

	teams, err := s.teamRepo.FindAllActiveByCompany(ctx, companyID)
	if err != nil {
		s.logger.Error("sweep list teams failed", zap.String("company_id", companyID), zap.Error(err))
		res.Errors++
		return
	}

	var dirtyTeams []string
	for _, t := range teams {
		if teamGate != nil && !teamGate(t) {
			continue
		}
		if !t.IsWorkDay(sweepDate) {
			continue
		}

		created := s.sweepTeam(ctx, c, t, sweepDate, res)
		if created > 0 {
			dirtyTeams = append(dirtyTeams, t.ID.String())
		}
	}

	s.rebuildSummaries(ctx, companyID, dirtyTeams, sweepDate)
}

func (s *service) sweepTeam(ctx context.Context, c company.Company, t team.Team, sweepDate time.Time, res *SweepResult) int {
	companyID := c.ID.String()
	teamID := t.ID.String()

	workers, err := s.workerRepo.FindActiveByTeam(ctx, companyID, teamID)
	if err != nil {
		s.logger.Error("sweep list workers failed",
			zap.String("company_id", companyID),
			zap.String("team_id", teamID),
			zap.Error(err),
		)
		res.Errors++
		return 0
	}

	created := 0
	for i := range workers {
		w := &workers[i]
		res.WorkersChecked++

		switch outcome, err := s.finalizeWorkerDay(ctx, w, sweepDate); {
		case err != nil:
			s.logger.Error("finalize worker day failed",
				zap.String("worker_id", w.ID.String()),
				zap.String("sweep_date", dateutil.Key(sweepDate)),
				zap.Error(err),
			)
			res.Errors++
		case outcome == outcomeCreated:
			res.AbsencesCreated++
			created++
		case outcome == outcomeExisting:
			res.SkippedExisting++
		default:
			res.SkippedSafeguard++
		}
	}
	return created
}

type sweepOutcome int

const (
	outcomeSafeguard sweepOutcome = iota
	outcomeExisting
	outcomeCreated
)

// finalizeWorkerDay decides whether the worker's day becomes an absence and,
// if so, writes the ABSENT attendance row, the PENDING_JUSTIFICATION absence
// and the notification outbox row in one transaction. Safe to re-run: every
// prior record, and the unique-index race against a concurrent sweep, lands
// in outcomeExisting.
func (s *service) finalizeWorkerDay(ctx context.Context, w *worker.Worker, sweepDate time.Time) (sweepOutcome, error) {
	companyID := w.CompanyID.String()
	workerID := w.ID.String()

	baseline, err := s.engine.ResolveBaseline(ctx, w)
	if err != nil {
		return outcomeSafeguard, err
	}
	if sweepDate.Before(baseline) {
		return outcomeSafeguard, nil
	}

	existing, err := s.attendanceRepo.FindByWorkerAndDate(ctx, companyID, workerID, sweepDate)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return outcomeSafeguard, err
	}
	if err == nil && existing.ID != uuid.Nil {
		return outcomeExisting, nil
	}

	if _, err := s.absenceRepo.FindByWorkerAndDate(ctx, companyID, workerID, sweepDate); err == nil {
		return outcomeExisting, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return outcomeSafeguard, err
	}

	leaves, err := s.leaveRepo.FindApprovedByWorkerOverlapping(ctx, companyID, workerID, sweepDate, sweepDate)
	if err != nil {
		return outcomeSafeguard, err
	}
	for _, l := range leaves {
		if l.Covers(sweepDate) {
			return outcomeSafeguard, nil
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return outcomeSafeguard, err
	}
	defer tx.Rollback()

	if err := s.attendanceRepo.WithTx(tx).Create(ctx, &attendance.DailyAttendanceRecord{
		ID:             uuid.New(),
		CompanyID:      w.CompanyID,
		WorkerID:       w.ID,
		TeamID:         w.TeamID,
		AttendanceDate: sweepDate,
		Status:         attendance.StatusAbsent,
		Points:         0,
		Counted:        true,
		Source:         attendance.SourceFinalizer,
	}); err != nil {
		if isUniqueViolation(err) {
			return outcomeExisting, nil
		}
		return outcomeSafeguard, err
	}

	rec := &absence.AbsenceRecord{
		ID:          uuid.New(),
		CompanyID:   w.CompanyID,
		WorkerID:    w.ID,
		TeamID:      w.TeamID,
		AbsenceDate: sweepDate,
		Status:      absence.StatusPendingJustification,
	}
	if err := s.absenceRepo.WithTx(tx).Create(ctx, rec); err != nil {
		if isUniqueViolation(err) {
			return outcomeExisting, nil
		}
		return outcomeSafeguard, err
	}

	if err := s.enqueueRecordedEvent(ctx, tx, rec); err != nil {
		// Notifikasi bukan bagian dari kontrak sweep.
		s.logger.Error("enqueue absence recorded event failed",
			zap.String("absence_id", rec.ID.String()),
			zap.Error(err),
		)
	}

	if err := tx.Commit(); err != nil {
		return outcomeSafeguard, err
	}

	s.logger.Info("absence finalized",
		zap.String("worker_id", workerID),
		zap.String("absence_date", dateutil.Key(sweepDate)),
	)
	return outcomeCreated, nil
}

func (s *service) enqueueRecordedEvent(ctx context.Context, tx *sql.Tx, rec *absence.AbsenceRecord) error {
	payload, err := json.Marshal(events.AbsenceRecordedEvent{
		EventType:   events.EventTypeAbsenceRecorded,
		AbsenceID:   rec.ID.String(),
		WorkerID:    rec.WorkerID.String(),
		CompanyID:   rec.CompanyID.String(),
		AbsenceDate: dateutil.Key(rec.AbsenceDate),
		OccurredAt:  time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return s.outboxRepo.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		AggregateType: "absence",
		AggregateID:   rec.WorkerID.String(),
		EventType:     events.EventTypeAbsenceRecorded,
		Topic:         events.AbsenceLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) rebuildSummaries(ctx context.Context, companyID string, teamIDs []string, sweepDate time.Time) {
	if s.summaries == nil || len(teamIDs) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, teamID := range teamIDs {
		wg.Add(1)
		go func(teamID string) {
			defer wg.Done()
			if err := s.summaries.Rebuild(ctx, companyID, teamID, sweepDate); err != nil {
				s.logger.Warn("summary rebuild after sweep failed",
					zap.String("team_id", teamID),
					zap.String("sweep_date", dateutil.Key(sweepDate)),
					zap.Error(err),
				)
			}
		}(teamID)
	}
	wg.Wait()
}

func (s *service) logResult(res SweepResult) {
	s.logger.Info("sweep finished",
		zap.String("sweep_kind", res.SweepKind),
		zap.Int("companies_swept", res.CompaniesSwept),
		zap.Int("workers_checked", res.WorkersChecked),
		zap.Int("absences_created", res.AbsencesCreated),
		zap.Int("skipped_existing", res.SkippedExisting),
		zap.Int("skipped_safeguard", res.SkippedSafeguard),
		zap.Int("errors", res.Errors),
	)
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
