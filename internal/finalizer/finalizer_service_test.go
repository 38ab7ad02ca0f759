package finalizer_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"aegira/internal/absence"
	"aegira/internal/attendance"
	"aegira/internal/company"
	"aegira/internal/finalizer"
	"aegira/internal/holiday"
	"aegira/internal/leave"
	"aegira/internal/messaging/kafka"
	"aegira/internal/scoring"
	"aegira/internal/shared/dateutil"
	"aegira/internal/team"
	"aegira/internal/worker"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fakeCompanyRepository struct {
	companies []company.Company
}

func (f *fakeCompanyRepository) FindByID(ctx context.Context, id string) (*company.Company, error) {
	for i := range f.companies {
		if f.companies[i].ID.String() == id {
			return &f.companies[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCompanyRepository) FindAllActive(ctx context.Context) ([]company.Company, error) {
	return f.companies, nil
}

type fakeTeamRepository struct {
	teams []team.Team
}

func (f *fakeTeamRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*team.Team, error) {
	for i := range f.teams {
		if f.teams[i].ID.String() == id {
			return &f.teams[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTeamRepository) FindAllActiveByCompany(ctx context.Context, companyID string) ([]team.Team, error) {
	return f.teams, nil
}

type fakeWorkerRepository struct {
	workers []worker.Worker
}

func (f *fakeWorkerRepository) WithTx(tx *sql.Tx) worker.Repository { return f }

func (f *fakeWorkerRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*worker.Worker, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeWorkerRepository) FindActiveByCompany(ctx context.Context, companyID string) ([]worker.Worker, error) {
	return f.workers, nil
}

func (f *fakeWorkerRepository) FindActiveByTeam(ctx context.Context, companyID, teamID string) ([]worker.Worker, error) {
	return f.workers, nil
}

func (f *fakeWorkerRepository) SetCheckinCount(ctx context.Context, companyID, id string, count int64) error {
	return nil
}

type fakeAttendanceRepository struct {
	rows     map[string]attendance.DailyAttendanceRecord
	createFn func(ctx context.Context, rec *attendance.DailyAttendanceRecord) error
}

func attendanceKey(workerID string, date time.Time) string {
	return workerID + ":" + dateutil.Key(date)
}

func (f *fakeAttendanceRepository) WithTx(tx *sql.Tx) attendance.Repository { return f }

func (f *fakeAttendanceRepository) Create(ctx context.Context, rec *attendance.DailyAttendanceRecord) error {
	if f.createFn != nil {
		return f.createFn(ctx, rec)
	}
	f.rows[attendanceKey(rec.WorkerID.String(), rec.AttendanceDate)] = *rec
	return nil
}

func (f *fakeAttendanceRepository) FindByWorkerAndDate(ctx context.Context, companyID, workerID string, date time.Time) (*attendance.DailyAttendanceRecord, error) {
	if rec, ok := f.rows[attendanceKey(workerID, date)]; ok {
		return &rec, nil
	}
	return &attendance.DailyAttendanceRecord{}, gorm.ErrRecordNotFound
}

func (f *fakeAttendanceRepository) FindByWorkerBetween(ctx context.Context, companyID, workerID string, start, end time.Time) ([]attendance.DailyAttendanceRecord, error) {
	return nil, nil
}

func (f *fakeAttendanceRepository) FindByTeamAndDate(ctx context.Context, companyID, teamID string, date time.Time) ([]attendance.DailyAttendanceRecord, error) {
	return nil, nil
}

func (f *fakeAttendanceRepository) MarkExcused(ctx context.Context, companyID, workerID string, date time.Time) error {
	return nil
}

type fakeAbsenceRepository struct {
	rows map[string]absence.AbsenceRecord
}

func (f *fakeAbsenceRepository) WithTx(tx *sql.Tx) absence.Repository { return f }

func (f *fakeAbsenceRepository) Create(ctx context.Context, rec *absence.AbsenceRecord) error {
	f.rows[attendanceKey(rec.WorkerID.String(), rec.AbsenceDate)] = *rec
	return nil
}

func (f *fakeAbsenceRepository) Update(ctx context.Context, rec *absence.AbsenceRecord) error {
	return nil
}

func (f *fakeAbsenceRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*absence.AbsenceRecord, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAbsenceRepository) FindByWorkerAndDate(ctx context.Context, companyID, workerID string, date time.Time) (*absence.AbsenceRecord, error) {
	if rec, ok := f.rows[attendanceKey(workerID, date)]; ok {
		return &rec, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAbsenceRepository) FindByWorkerBetween(ctx context.Context, companyID, workerID string, start, end time.Time) ([]absence.AbsenceRecord, error) {
	return nil, nil
}

func (f *fakeAbsenceRepository) FindPendingByWorkerBetween(ctx context.Context, companyID, workerID string, start, end time.Time) ([]absence.AbsenceRecord, error) {
	return nil, nil
}

func (f *fakeAbsenceRepository) FindAllByCompany(ctx context.Context, companyID string) ([]absence.AbsenceRecord, error) {
	return nil, nil
}

func (f *fakeAbsenceRepository) FindAllByWorker(ctx context.Context, companyID, workerID string) ([]absence.AbsenceRecord, error) {
	return nil, nil
}

func (f *fakeAbsenceRepository) CountByTeamDateAndStatus(ctx context.Context, companyID, teamID string, date time.Time, status string) (int64, error) {
	return 0, nil
}

type fakeLeaveRepository struct {
	approved []leave.LeaveRequest
}

func (f *fakeLeaveRepository) WithTx(tx *sql.Tx) leave.Repository { return f }

func (f *fakeLeaveRepository) Create(ctx context.Context, l *leave.LeaveRequest) error { return nil }

func (f *fakeLeaveRepository) Update(ctx context.Context, l *leave.LeaveRequest) error { return nil }

func (f *fakeLeaveRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*leave.LeaveRequest, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLeaveRepository) FindAllByCompany(ctx context.Context, companyID string) ([]leave.LeaveRequest, error) {
	return nil, nil
}

func (f *fakeLeaveRepository) FindAllByWorker(ctx context.Context, companyID, workerID string) ([]leave.LeaveRequest, error) {
	return nil, nil
}

func (f *fakeLeaveRepository) FindApprovedByWorkerOverlapping(ctx context.Context, companyID, workerID string, start, end time.Time) ([]leave.LeaveRequest, error) {
	var out []leave.LeaveRequest
	for _, l := range f.approved {
		if l.WorkerID.String() == workerID && l.Covers(start) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLeaveRepository) CountApprovedByTeamCovering(ctx context.Context, companyID, teamID string, date time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeLeaveRepository) HasOverlappingRequest(ctx context.Context, companyID, workerID string, start, end time.Time, excludeID *string) (bool, error) {
	return false, nil
}

type fakeHolidayRepository struct {
	holidays map[string]bool
}

func (f *fakeHolidayRepository) Create(ctx context.Context, h *holiday.Holiday) error { return nil }

func (f *fakeHolidayRepository) Delete(ctx context.Context, companyID, id string) error { return nil }

func (f *fakeHolidayRepository) FindAllByCompany(ctx context.Context, companyID string) ([]holiday.Holiday, error) {
	return nil, nil
}

func (f *fakeHolidayRepository) FindByCompanyBetween(ctx context.Context, companyID string, start, end time.Time) ([]holiday.Holiday, error) {
	return nil, nil
}

func (f *fakeHolidayRepository) IsHoliday(ctx context.Context, companyID string, date time.Time) (bool, error) {
	return f.holidays[dateutil.Key(date)], nil
}

type fakeOutboxRepository struct {
	created []kafka.OutboxEvent
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type fakeCheckinSource struct {
	first map[string]time.Time
}

func (f *fakeCheckinSource) FirstCheckinDate(ctx context.Context, companyID, workerID string) (*time.Time, error) {
	if d, ok := f.first[workerID]; ok {
		return &d, nil
	}
	return nil, nil
}

type fakeSummaryRebuilder struct {
	rebuilt []string
}

func (f *fakeSummaryRebuilder) Rebuild(ctx context.Context, companyID, teamID string, date time.Time) error {
	f.rebuilt = append(f.rebuilt, teamID+":"+dateutil.Key(date))
	return nil
}

type sweepFixture struct {
	db       *sql.DB
	sqlMock  sqlmock.Sqlmock
	service  finalizer.Service
	company  company.Company
	team     team.Team
	worker   worker.Worker
	attRepo  *fakeAttendanceRepository
	absRepo  *fakeAbsenceRepository
	leaves   *fakeLeaveRepository
	holidays *fakeHolidayRepository
	outbox   *fakeOutboxRepository
	checkins *fakeCheckinSource
	rebuilds *fakeSummaryRebuilder
}

func setupSweepFixture(t *testing.T) *sweepFixture {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	companyID := uuid.New()
	teamID := uuid.New()
	workerID := uuid.New()

	c := company.Company{ID: companyID, Name: "Acme", Timezone: "UTC", Active: true}
	tm := team.Team{
		ID:           teamID,
		CompanyID:    companyID,
		Name:         "Night Shift",
		WorkDays:     "1,2,3,4,5",
		ShiftEndHour: 17,
		Active:       true,
	}
	w := worker.Worker{ID: workerID, CompanyID: companyID, TeamID: &teamID, FullName: "Dana Cruz", Active: true}

	attRepo := &fakeAttendanceRepository{rows: map[string]attendance.DailyAttendanceRecord{}}
	absRepo := &fakeAbsenceRepository{rows: map[string]absence.AbsenceRecord{}}
	leaves := &fakeLeaveRepository{}
	holidays := &fakeHolidayRepository{holidays: map[string]bool{}}
	outbox := &fakeOutboxRepository{}
	checkins := &fakeCheckinSource{first: map[string]time.Time{
		workerID.String(): day(2025, time.December, 1),
	}}
	rebuilds := &fakeSummaryRebuilder{}

	engine := scoring.NewEngine(checkins, attRepo, absRepo, leaves, holidays)

	svc := finalizer.NewService(
		db,
		&fakeCompanyRepository{companies: []company.Company{c}},
		&fakeTeamRepository{teams: []team.Team{tm}},
		&fakeWorkerRepository{workers: []worker.Worker{w}},
		attRepo,
		absRepo,
		leaves,
		holidays,
		outbox,
		engine,
		rebuilds,
	)

	return &sweepFixture{
		db:       db,
		sqlMock:  sqlMock,
		service:  svc,
		company:  c,
		team:     tm,
		worker:   w,
		attRepo:  attRepo,
		absRepo:  absRepo,
		leaves:   leaves,
		holidays: holidays,
		outbox:   outbox,
		checkins: checkins,
		rebuilds: rebuilds,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

// 2026-01-20 is a Tuesday, so the previous day is a regular workday.
var sweepClock = time.Date(2026, time.January, 20, 5, 0, 0, 0, time.UTC)

func TestFinalizerService_RunYesterdaySweep(t *testing.T) {
	ctx := context.Background()

	t.Run("finalizes silent worker", func(t *testing.T) {
		f := setupSweepFixture(t)
		defer f.db.Close()

		expectTx(t, f.sqlMock, true)
		res, err := f.service.RunYesterdaySweep(ctx, sweepClock, false)

		assert.NoError(t, err)
		assert.Equal(t, 1, res.CompaniesSwept)
		assert.Equal(t, 1, res.WorkersChecked)
		assert.Equal(t, 1, res.AbsencesCreated)

		key := f.worker.ID.String() + ":2026-01-19"
		att, ok := f.attRepo.rows[key]
		assert.True(t, ok)
		assert.Equal(t, attendance.StatusAbsent, att.Status)
		assert.Equal(t, int64(0), att.Points)
		assert.True(t, att.Counted)
		assert.Equal(t, attendance.SourceFinalizer, att.Source)

		abs, ok := f.absRepo.rows[key]
		assert.True(t, ok)
		assert.Equal(t, absence.StatusPendingJustification, abs.Status)

		assert.Len(t, f.outbox.created, 1)
		assert.Equal(t, f.worker.ID.String(), f.outbox.created[0].AggregateID)

		assert.Equal(t, []string{f.team.ID.String() + ":2026-01-19"}, f.rebuilds.rebuilt)
	})

	t.Run("clock gate skips companies outside the sweep hour", func(t *testing.T) {
		f := setupSweepFixture(t)
		defer f.db.Close()

		noon := time.Date(2026, time.January, 20, 12, 0, 0, 0, time.UTC)
		res, err := f.service.RunYesterdaySweep(ctx, noon, false)

		assert.NoError(t, err)
		assert.Equal(t, 0, res.CompaniesSwept)
		assert.Equal(t, 0, res.AbsencesCreated)
	})

	t.Run("force bypasses the clock gate only", func(t *testing.T) {
		f := setupSweepFixture(t)
		defer f.db.Close()

		noon := time.Date(2026, time.January, 20, 12, 0, 0, 0, time.UTC)
		expectTx(t, f.sqlMock, true)
		res, err := f.service.RunYesterdaySweep(ctx, noon, true)

		assert.NoError(t, err)
		assert.Equal(t, 1, res.AbsencesCreated)
	})

	t.Run("second run is a no-op", func(t *testing.T) {
		f := setupSweepFixture(t)
		defer f.db.Close()

		expectTx(t, f.sqlMock, true)
		first, err := f.service.RunYesterdaySweep(ctx, sweepClock, false)
		assert.NoError(t, err)
		assert.Equal(t, 1, first.AbsencesCreated)

		second, err := f.service.RunYesterdaySweep(ctx, sweepClock, false)
		assert.NoError(t, err)
		assert.Equal(t, 0, second.AbsencesCreated)
		assert.Equal(t, 1, second.SkippedExisting)
		assert.Len(t, f.outbox.created, 1)
	})

	t.Run("existing attendance is left alone", func(t *testing.T) {
		f := setupSweepFixture(t)
		defer f.db.Close()

		f.attRepo.rows[f.worker.ID.String()+":2026-01-19"] = attendance.DailyAttendanceRecord{
			ID:     uuid.New(),
			Status: attendance.StatusGreen,
		}

		res, err := f.service.RunYesterdaySweep(ctx, sweepClock, false)

		assert.NoError(t, err)
		assert.Equal(t, 0, res.AbsencesCreated)
		assert.Equal(t, 1, res.SkippedExisting)
	})

	t.Run("approved leave is a safeguard", func(t *testing.T) {
		f := setupSweepFixture(t)
		defer f.db.Close()

		f.leaves.approved = []leave.LeaveRequest{{
			ID:        uuid.New(),
			WorkerID:  f.worker.ID,
			StartDate: day(2026, time.January, 19),
			EndDate:   day(2026, time.January, 23),
			Status:    leave.StatusApproved,
		}}

		res, err := f.service.RunYesterdaySweep(ctx, sweepClock, false)

		assert.NoError(t, err)
		assert.Equal(t, 0, res.AbsencesCreated)
		assert.Equal(t, 1, res.SkippedSafeguard)
	})

	t.Run("pre baseline day is a safeguard", func(t *testing.T) {
		f := setupSweepFixture(t)
		defer f.db.Close()

		delete(f.checkins.first, f.worker.ID.String())
		joined := day(2026, time.January, 19)
		w := f.worker
		w.CreatedAt = day(2026, time.January, 19)
		w.JoinedTeamAt = &joined

		res, err := finalizerWithWorker(t, f, w).RunYesterdaySweep(ctx, sweepClock, false)

		assert.NoError(t, err)
		assert.Equal(t, 0, res.AbsencesCreated)
		assert.Equal(t, 1, res.SkippedSafeguard)
	})

	t.Run("holiday skips the whole company", func(t *testing.T) {
		f := setupSweepFixture(t)
		defer f.db.Close()

		f.holidays.holidays["2026-01-19"] = true

		res, err := f.service.RunYesterdaySweep(ctx, sweepClock, false)

		assert.NoError(t, err)
		assert.Equal(t, 0, res.WorkersChecked)
		assert.Equal(t, 0, res.AbsencesCreated)
	})

	t.Run("weekend is not swept", func(t *testing.T) {
		f := setupSweepFixture(t)
		defer f.db.Close()

		// 2026-01-18 05:00 Sunday sweeps Saturday the 17th.
		sunday := time.Date(2026, time.January, 18, 5, 0, 0, 0, time.UTC)
		res, err := f.service.RunYesterdaySweep(ctx, sunday, false)

		assert.NoError(t, err)
		assert.Equal(t, 0, res.WorkersChecked)
	})

	t.Run("unique violation race counts as existing", func(t *testing.T) {
		f := setupSweepFixture(t)
		defer f.db.Close()

		f.attRepo.createFn = func(ctx context.Context, rec *attendance.DailyAttendanceRecord) error {
			return &pgconn.PgError{Code: "23505", ConstraintName: "uq_attendance_worker_date"}
		}

		expectTx(t, f.sqlMock, false)
		res, err := f.service.RunYesterdaySweep(ctx, sweepClock, false)

		assert.NoError(t, err)
		assert.Equal(t, 0, res.AbsencesCreated)
		assert.Equal(t, 1, res.SkippedExisting)
	})
}

// finalizerWithWorker rebuilds the service around a modified worker row while
// keeping the fixture's stores.
func finalizerWithWorker(t *testing.T, f *sweepFixture, w worker.Worker) finalizer.Service {
	t.Helper()

	engine := scoring.NewEngine(f.checkins, f.attRepo, f.absRepo, f.leaves, f.holidays)
	return finalizer.NewService(
		f.db,
		&fakeCompanyRepository{companies: []company.Company{f.company}},
		&fakeTeamRepository{teams: []team.Team{f.team}},
		&fakeWorkerRepository{workers: []worker.Worker{w}},
		f.attRepo,
		f.absRepo,
		f.leaves,
		f.holidays,
		f.outbox,
		engine,
		f.rebuilds,
	)
}

func TestFinalizerService_RunShiftEndSweep(t *testing.T) {
	ctx := context.Background()

	t.Run("sweeps today when the shift just ended", func(t *testing.T) {
		f := setupSweepFixture(t)
		defer f.db.Close()

		// Tuesday 17:00, matching the team's shift end.
		shiftEnd := time.Date(2026, time.January, 20, 17, 0, 0, 0, time.UTC)
		expectTx(t, f.sqlMock, true)
		res, err := f.service.RunShiftEndSweep(ctx, shiftEnd, false)

		assert.NoError(t, err)
		assert.Equal(t, 1, res.AbsencesCreated)

		abs, ok := f.absRepo.rows[f.worker.ID.String()+":2026-01-20"]
		assert.True(t, ok)
		assert.Equal(t, absence.StatusPendingJustification, abs.Status)
	})

	t.Run("mid shift hour is gated", func(t *testing.T) {
		f := setupSweepFixture(t)
		defer f.db.Close()

		noon := time.Date(2026, time.January, 20, 12, 0, 0, 0, time.UTC)
		res, err := f.service.RunShiftEndSweep(ctx, noon, false)

		assert.NoError(t, err)
		assert.Equal(t, 0, res.AbsencesCreated)
		assert.Equal(t, 0, res.WorkersChecked)
	})

	t.Run("worker who checked in is not finalized", func(t *testing.T) {
		f := setupSweepFixture(t)
		defer f.db.Close()

		f.attRepo.rows[f.worker.ID.String()+":2026-01-20"] = attendance.DailyAttendanceRecord{
			ID:     uuid.New(),
			Status: attendance.StatusGreen,
		}

		shiftEnd := time.Date(2026, time.January, 20, 17, 0, 0, 0, time.UTC)
		res, err := f.service.RunShiftEndSweep(ctx, shiftEnd, false)

		assert.NoError(t, err)
		assert.Equal(t, 0, res.AbsencesCreated)
		assert.Equal(t, 1, res.SkippedExisting)
	})
}
