package checkin_test

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

	"aegira/internal/attendance"
	"aegira/internal/checkin"
	checkinerrors "aegira/internal/checkin/errors"
	"aegira/internal/company"
	"aegira/internal/worker"
)

type fakeCheckinRepository struct {
	createFn func(ctx context.Context, rec *checkin.CheckinRecord) error
}

func (f *fakeCheckinRepository) WithTx(tx *sql.Tx) checkin.Repository { return f }

func (f *fakeCheckinRepository) Create(ctx context.Context, rec *checkin.CheckinRecord) error {
	if f.createFn != nil {
		return f.createFn(ctx, rec)
	}
	return nil
}

func (f *fakeCheckinRepository) FindByWorkerAndDate(ctx context.Context, companyID, workerID string, date time.Time) ([]checkin.CheckinRecord, error) {
	return nil, nil
}

func (f *fakeCheckinRepository) FindByTeamAndDate(ctx context.Context, companyID, teamID string, date time.Time) ([]checkin.CheckinRecord, error) {
	return nil, nil
}

func (f *fakeCheckinRepository) FirstCheckinDate(ctx context.Context, companyID, workerID string) (*time.Time, error) {
	return nil, nil
}

type fakeWorkerRepository struct {
	findByIDAndCompanyFn func(ctx context.Context, companyID, id string) (*worker.Worker, error)
	setCheckinCountFn    func(ctx context.Context, companyID, id string, count int64) error
}

func (f *fakeWorkerRepository) WithTx(tx *sql.Tx) worker.Repository { return f }

func (f *fakeWorkerRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*worker.Worker, error) {
	if f.findByIDAndCompanyFn != nil {
		return f.findByIDAndCompanyFn(ctx, companyID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeWorkerRepository) FindActiveByCompany(ctx context.Context, companyID string) ([]worker.Worker, error) {
	return nil, nil
}

func (f *fakeWorkerRepository) FindActiveByTeam(ctx context.Context, companyID, teamID string) ([]worker.Worker, error) {
	return nil, nil
}

func (f *fakeWorkerRepository) SetCheckinCount(ctx context.Context, companyID, id string, count int64) error {
	if f.setCheckinCountFn != nil {
		return f.setCheckinCountFn(ctx, companyID, id, count)
	}
	return nil
}

type fakeAttendanceRepository struct {
	findByWorkerAndDateFn func(ctx context.Context, companyID, workerID string, date time.Time) (*attendance.DailyAttendanceRecord, error)
	createFn              func(ctx context.Context, rec *attendance.DailyAttendanceRecord) error
}

func (f *fakeAttendanceRepository) WithTx(tx *sql.Tx) attendance.Repository { return f }

func (f *fakeAttendanceRepository) Create(ctx context.Context, rec *attendance.DailyAttendanceRecord) error {
	if f.createFn != nil {
		return f.createFn(ctx, rec)
	}
	return nil
}

func (f *fakeAttendanceRepository) FindByWorkerAndDate(ctx context.Context, companyID, workerID string, date time.Time) (*attendance.DailyAttendanceRecord, error) {
	if f.findByWorkerAndDateFn != nil {
		return f.findByWorkerAndDateFn(ctx, companyID, workerID, date)
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

type fakeCompanyRepository struct {
	timezone string
}

func (f *fakeCompanyRepository) FindByID(ctx context.Context, id string) (*company.Company, error) {
	tz := f.timezone
	if tz == "" {
		tz = "UTC"
	}
	return &company.Company{ID: uuid.New(), Name: "Acme", Timezone: tz, Active: true}, nil
}

func (f *fakeCompanyRepository) FindAllActive(ctx context.Context) ([]company.Company, error) {
	return nil, nil
}

type fakeCounterRepository struct {
	next int64
}

func (f *fakeCounterRepository) GetNextValue(ctx context.Context, workerID string, counterType string) (int64, error) {
	f.next++
	return f.next, nil
}

type checkinServiceDeps struct {
	db       *sql.DB
	sqlMock  sqlmock.Sqlmock
	service  checkin.Service
	repo     *fakeCheckinRepository
	workers  *fakeWorkerRepository
	attRepo  *fakeAttendanceRepository
	counters *fakeCounterRepository
}

func setupCheckinServiceTest(t *testing.T) *checkinServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeCheckinRepository{}
	workers := &fakeWorkerRepository{}
	attRepo := &fakeAttendanceRepository{}
	counters := &fakeCounterRepository{}

	svc := checkin.NewService(db, repo, workers, attRepo, &fakeCompanyRepository{}, counters, nil)

	return &checkinServiceDeps{
		db:       db,
		sqlMock:  sqlMock,
		service:  svc,
		repo:     repo,
		workers:  workers,
		attRepo:  attRepo,
		counters: counters,
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

func activeWorker(companyID uuid.UUID) *worker.Worker {
	teamID := uuid.New()
	return &worker.Worker{
		ID:        uuid.New(),
		CompanyID: companyID,
		TeamID:    &teamID,
		FullName:  "Dana Cruz",
		Active:    true,
	}
}

func TestComputeReadiness(t *testing.T) {
	tests := []struct {
		name           string
		mood           int
		stress         int
		sleep          int
		physical       int
		expectedScore  int
		expectedStatus string
	}{
		{"all best", 5, 1, 5, 5, 100, checkin.ReadinessReady},
		{"all worst", 1, 5, 1, 1, 0, checkin.ReadinessAtRisk},
		{"middle of the road", 3, 3, 3, 3, 50, checkin.ReadinessMonitor},
		{"ready boundary", 4, 2, 4, 4, 75, checkin.ReadinessReady},
		{"high stress drags down", 5, 5, 5, 5, 75, checkin.ReadinessReady},
		{"monitor boundary", 3, 4, 3, 2, 38, checkin.ReadinessAtRisk},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, status := checkin.ComputeReadiness(tt.mood, tt.stress, tt.sleep, tt.physical)
			assert.Equal(t, tt.expectedScore, score)
			assert.Equal(t, tt.expectedStatus, status)
		})
	}
}

func TestCheckinService_Submit(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()

	req := checkin.SubmitCheckinRequest{
		Mood:           4,
		Stress:         2,
		Sleep:          4,
		PhysicalHealth: 4,
	}

	t.Run("creates record and green attendance", func(t *testing.T) {
		deps := setupCheckinServiceTest(t)
		defer deps.db.Close()

		w := activeWorker(companyID)
		deps.workers.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*worker.Worker, error) {
			return w, nil
		}

		var createdCheckin *checkin.CheckinRecord
		deps.repo.createFn = func(ctx context.Context, rec *checkin.CheckinRecord) error {
			createdCheckin = rec
			return nil
		}

		var createdAttendance *attendance.DailyAttendanceRecord
		deps.attRepo.createFn = func(ctx context.Context, rec *attendance.DailyAttendanceRecord) error {
			createdAttendance = rec
			return nil
		}

		var synced int64
		deps.workers.setCheckinCountFn = func(ctx context.Context, cid, id string, count int64) error {
			synced = count
			return nil
		}

		expectTx(t, deps.sqlMock, true)
		resp, err := deps.service.Submit(ctx, companyID.String(), w.ID.String(), req)

		assert.NoError(t, err)
		assert.NotNil(t, createdCheckin)
		assert.Equal(t, 75, createdCheckin.ReadinessScore)
		assert.Equal(t, checkin.ReadinessReady, createdCheckin.ReadinessStatus)

		assert.NotNil(t, createdAttendance)
		assert.Equal(t, attendance.StatusGreen, createdAttendance.Status)
		assert.Equal(t, int64(100), createdAttendance.Points)
		assert.True(t, createdAttendance.Counted)
		assert.Equal(t, attendance.SourceCheckin, createdAttendance.Source)
		assert.Equal(t, createdCheckin.CheckinDate, createdAttendance.AttendanceDate)

		assert.Equal(t, int64(1), synced)
		assert.Equal(t, int64(1), resp.CheckinCount)
	})

	t.Run("second submission leaves attendance alone", func(t *testing.T) {
		deps := setupCheckinServiceTest(t)
		defer deps.db.Close()

		w := activeWorker(companyID)
		deps.workers.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*worker.Worker, error) {
			return w, nil
		}
		deps.attRepo.findByWorkerAndDateFn = func(ctx context.Context, cid, wid string, date time.Time) (*attendance.DailyAttendanceRecord, error) {
			return &attendance.DailyAttendanceRecord{ID: uuid.New(), Status: attendance.StatusGreen}, nil
		}
		deps.attRepo.createFn = func(ctx context.Context, rec *attendance.DailyAttendanceRecord) error {
			t.Fatal("attendance must not be created twice")
			return nil
		}

		expectTx(t, deps.sqlMock, true)
		_, err := deps.service.Submit(ctx, companyID.String(), w.ID.String(), req)

		assert.NoError(t, err)
	})

	t.Run("tolerates unique violation race", func(t *testing.T) {
		deps := setupCheckinServiceTest(t)
		defer deps.db.Close()

		w := activeWorker(companyID)
		deps.workers.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*worker.Worker, error) {
			return w, nil
		}
		deps.attRepo.createFn = func(ctx context.Context, rec *attendance.DailyAttendanceRecord) error {
			return &pgconn.PgError{Code: "23505", ConstraintName: "uq_attendance_worker_date"}
		}

		expectTx(t, deps.sqlMock, true)
		_, err := deps.service.Submit(ctx, companyID.String(), w.ID.String(), req)

		assert.NoError(t, err)
	})

	t.Run("rejects inactive worker", func(t *testing.T) {
		deps := setupCheckinServiceTest(t)
		defer deps.db.Close()

		w := activeWorker(companyID)
		w.Active = false
		deps.workers.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*worker.Worker, error) {
			return w, nil
		}

		_, err := deps.service.Submit(ctx, companyID.String(), w.ID.String(), req)

		assert.ErrorIs(t, err, checkinerrors.ErrWorkerInactive)
	})

	t.Run("rejects unknown worker", func(t *testing.T) {
		deps := setupCheckinServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Submit(ctx, companyID.String(), uuid.New().String(), req)

		assert.ErrorIs(t, err, checkinerrors.ErrWorkerNotFound)
	})

	t.Run("rejects out of range metric", func(t *testing.T) {
		deps := setupCheckinServiceTest(t)
		defer deps.db.Close()

		bad := req
		bad.Stress = 6

		_, err := deps.service.Submit(ctx, companyID.String(), uuid.New().String(), bad)

		assert.ErrorIs(t, err, checkinerrors.ErrInvalidMetric)
	})
}
