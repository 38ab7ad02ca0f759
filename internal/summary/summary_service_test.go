package summary_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"aegira/internal/absence"
	"aegira/internal/attendance"
	"aegira/internal/checkin"
	"aegira/internal/leave"
	"aegira/internal/summary"
	"aegira/internal/team"
	"aegira/internal/worker"
)

type fakeSummaryRepository struct {
	upserted          []summary.TeamDaySummary
	findByTeamAndDate func(ctx context.Context, companyID, teamID string, date time.Time) (*summary.TeamDaySummary, error)
}

func (f *fakeSummaryRepository) Upsert(ctx context.Context, s *summary.TeamDaySummary) error {
	f.upserted = append(f.upserted, *s)
	return nil
}

func (f *fakeSummaryRepository) FindByTeamAndDate(ctx context.Context, companyID, teamID string, date time.Time) (*summary.TeamDaySummary, error) {
	if f.findByTeamAndDate != nil {
		return f.findByTeamAndDate(ctx, companyID, teamID, date)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSummaryRepository) FindByCompanyAndDate(ctx context.Context, companyID string, date time.Time) ([]summary.TeamDaySummary, error) {
	return nil, nil
}

type fakeTeamRepository struct {
	team *team.Team
}

func (f *fakeTeamRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*team.Team, error) {
	if f.team == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.team, nil
}

func (f *fakeTeamRepository) FindAllActiveByCompany(ctx context.Context, companyID string) ([]team.Team, error) {
	if f.team == nil {
		return nil, nil
	}
	return []team.Team{*f.team}, nil
}

type fakeWorkerRepository struct {
	members []worker.Worker
}

func (f *fakeWorkerRepository) WithTx(tx *sql.Tx) worker.Repository { return f }

func (f *fakeWorkerRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*worker.Worker, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeWorkerRepository) FindActiveByCompany(ctx context.Context, companyID string) ([]worker.Worker, error) {
	return f.members, nil
}

func (f *fakeWorkerRepository) FindActiveByTeam(ctx context.Context, companyID, teamID string) ([]worker.Worker, error) {
	return f.members, nil
}

func (f *fakeWorkerRepository) SetCheckinCount(ctx context.Context, companyID, id string, count int64) error {
	return nil
}

type fakeCheckinRepository struct {
	rows []checkin.CheckinRecord
}

func (f *fakeCheckinRepository) WithTx(tx *sql.Tx) checkin.Repository { return f }

func (f *fakeCheckinRepository) Create(ctx context.Context, rec *checkin.CheckinRecord) error {
	return nil
}

func (f *fakeCheckinRepository) FindByWorkerAndDate(ctx context.Context, companyID, workerID string, date time.Time) ([]checkin.CheckinRecord, error) {
	return nil, nil
}

func (f *fakeCheckinRepository) FindByTeamAndDate(ctx context.Context, companyID, teamID string, date time.Time) ([]checkin.CheckinRecord, error) {
	return f.rows, nil
}

func (f *fakeCheckinRepository) FirstCheckinDate(ctx context.Context, companyID, workerID string) (*time.Time, error) {
	return nil, nil
}

type fakeAttendanceRepository struct {
	rows []attendance.DailyAttendanceRecord
}

func (f *fakeAttendanceRepository) WithTx(tx *sql.Tx) attendance.Repository { return f }

func (f *fakeAttendanceRepository) Create(ctx context.Context, rec *attendance.DailyAttendanceRecord) error {
	return nil
}

func (f *fakeAttendanceRepository) FindByWorkerAndDate(ctx context.Context, companyID, workerID string, date time.Time) (*attendance.DailyAttendanceRecord, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAttendanceRepository) FindByWorkerBetween(ctx context.Context, companyID, workerID string, start, end time.Time) ([]attendance.DailyAttendanceRecord, error) {
	return nil, nil
}

func (f *fakeAttendanceRepository) FindByTeamAndDate(ctx context.Context, companyID, teamID string, date time.Time) ([]attendance.DailyAttendanceRecord, error) {
	return f.rows, nil
}

func (f *fakeAttendanceRepository) MarkExcused(ctx context.Context, companyID, workerID string, date time.Time) error {
	return nil
}

type fakeAbsenceRepository struct {
	pending int64
}

func (f *fakeAbsenceRepository) WithTx(tx *sql.Tx) absence.Repository { return f }

func (f *fakeAbsenceRepository) Create(ctx context.Context, rec *absence.AbsenceRecord) error {
	return nil
}

func (f *fakeAbsenceRepository) Update(ctx context.Context, rec *absence.AbsenceRecord) error {
	return nil
}

func (f *fakeAbsenceRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*absence.AbsenceRecord, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAbsenceRepository) FindByWorkerAndDate(ctx context.Context, companyID, workerID string, date time.Time) (*absence.AbsenceRecord, error) {
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
	return f.pending, nil
}

type fakeLeaveRepository struct {
	onLeave int64
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
	return nil, nil
}

func (f *fakeLeaveRepository) CountApprovedByTeamCovering(ctx context.Context, companyID, teamID string, date time.Time) (int64, error) {
	return f.onLeave, nil
}

func (f *fakeLeaveRepository) HasOverlappingRequest(ctx context.Context, companyID, workerID string, start, end time.Time, excludeID *string) (bool, error) {
	return false, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func checkinRow(workerID uuid.UUID, score int, status string) checkin.CheckinRecord {
	return checkin.CheckinRecord{
		ID:              uuid.New(),
		WorkerID:        workerID,
		CheckinDate:     day(2026, time.January, 12),
		ReadinessScore:  score,
		ReadinessStatus: status,
	}
}

func attendanceRow(status string) attendance.DailyAttendanceRecord {
	return attendance.DailyAttendanceRecord{
		ID:             uuid.New(),
		WorkerID:       uuid.New(),
		AttendanceDate: day(2026, time.January, 12),
		Status:         status,
	}
}

func TestSummaryService_Rebuild(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	teamID := uuid.New()

	repo := &fakeSummaryRepository{}
	teams := &fakeTeamRepository{team: &team.Team{ID: teamID, CompanyID: companyID, Name: "Night Shift", WorkDays: "1,2,3,4,5", Active: true}}
	workers := &fakeWorkerRepository{members: []worker.Worker{{ID: uuid.New()}, {ID: uuid.New()}, {ID: uuid.New()}, {ID: uuid.New()}}}

	w1, w2 := uuid.New(), uuid.New()
	checkins := &fakeCheckinRepository{rows: []checkin.CheckinRecord{
		checkinRow(w1, 80, checkin.ReadinessReady),
		checkinRow(w1, 60, checkin.ReadinessMonitor),
		checkinRow(w2, 30, checkin.ReadinessAtRisk),
	}}
	attendanceRows := &fakeAttendanceRepository{rows: []attendance.DailyAttendanceRecord{
		attendanceRow(attendance.StatusGreen),
		attendanceRow(attendance.StatusYellow),
		attendanceRow(attendance.StatusAbsent),
		attendanceRow(attendance.StatusExcused),
	}}
	absences := &fakeAbsenceRepository{pending: 1}
	leaves := &fakeLeaveRepository{onLeave: 1}

	svc := summary.NewService(repo, teams, workers, checkins, attendanceRows, absences, leaves, nil)

	err := svc.Rebuild(ctx, companyID.String(), teamID.String(), day(2026, time.January, 12))

	assert.NoError(t, err)
	assert.Len(t, repo.upserted, 1)

	row := repo.upserted[0]
	assert.Equal(t, 4, row.TeamSize)
	assert.Equal(t, 2, row.CheckedIn)
	assert.Equal(t, 2, row.Green)
	assert.Equal(t, 1, row.Absent)
	assert.Equal(t, 1, row.Excused)
	assert.Equal(t, 1, row.PendingJustification)
	assert.Equal(t, 1, row.OnLeave)
	assert.Equal(t, 1, row.AtRisk)
	// Only the first submission of each worker counts: (80 + 30) / 2.
	assert.Equal(t, 55.0, row.AvgReadiness)
}

func TestSummaryService_GetByTeamAndDate(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	teamID := uuid.New()
	summaryDate := day(2026, time.January, 12)

	stored := summary.TeamDaySummary{
		ID:          uuid.New(),
		CompanyID:   companyID,
		TeamID:      teamID,
		SummaryDate: summaryDate,
		TeamSize:    4,
		CheckedIn:   3,
		Green:       3,
		ComputedAt:  time.Date(2026, time.January, 12, 6, 0, 0, 0, time.UTC),
	}

	t.Run("cache hit skips the database", func(t *testing.T) {
		rdb, redisMock := redismock.NewClientMock()

		repo := &fakeSummaryRepository{
			findByTeamAndDate: func(ctx context.Context, cid, tid string, date time.Time) (*summary.TeamDaySummary, error) {
				t.Fatal("database must not be hit on a cache hit")
				return nil, nil
			},
		}
		svc := summary.NewService(repo, &fakeTeamRepository{}, &fakeWorkerRepository{}, &fakeCheckinRepository{}, &fakeAttendanceRepository{}, &fakeAbsenceRepository{}, &fakeLeaveRepository{}, rdb)

		cached := summary.TeamDaySummaryResponse{
			TeamID:      teamID.String(),
			CompanyID:   companyID.String(),
			SummaryDate: "2026-01-12",
			TeamSize:    4,
			CheckedIn:   3,
			Green:       3,
		}
		jsonResp, err := json.Marshal(cached)
		assert.NoError(t, err)
		redisMock.ExpectGet("summary:team:" + teamID.String() + ":2026-01-12").SetVal(string(jsonResp))

		resp, err := svc.GetByTeamAndDate(ctx, companyID.String(), teamID.String(), "2026-01-12")

		assert.NoError(t, err)
		assert.Equal(t, cached, resp)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("cache miss reads stored row", func(t *testing.T) {
		repo := &fakeSummaryRepository{
			findByTeamAndDate: func(ctx context.Context, cid, tid string, date time.Time) (*summary.TeamDaySummary, error) {
				return &stored, nil
			},
		}
		svc := summary.NewService(repo, &fakeTeamRepository{}, &fakeWorkerRepository{}, &fakeCheckinRepository{}, &fakeAttendanceRepository{}, &fakeAbsenceRepository{}, &fakeLeaveRepository{}, nil)

		resp, err := svc.GetByTeamAndDate(ctx, companyID.String(), teamID.String(), "2026-01-12")

		assert.NoError(t, err)
		assert.Equal(t, 4, resp.TeamSize)
		assert.Equal(t, 3, resp.CheckedIn)
		assert.Equal(t, "2026-01-12", resp.SummaryDate)
	})

	t.Run("missing row is rebuilt on demand", func(t *testing.T) {
		calls := 0
		repo := &fakeSummaryRepository{}
		repo.findByTeamAndDate = func(ctx context.Context, cid, tid string, date time.Time) (*summary.TeamDaySummary, error) {
			calls++
			if calls == 1 {
				return nil, gorm.ErrRecordNotFound
			}
			return &stored, nil
		}

		teams := &fakeTeamRepository{team: &team.Team{ID: teamID, CompanyID: companyID, Name: "Night Shift", Active: true}}
		svc := summary.NewService(repo, teams, &fakeWorkerRepository{}, &fakeCheckinRepository{}, &fakeAttendanceRepository{}, &fakeAbsenceRepository{}, &fakeLeaveRepository{}, nil)

		resp, err := svc.GetByTeamAndDate(ctx, companyID.String(), teamID.String(), "2026-01-12")

		assert.NoError(t, err)
		assert.Len(t, repo.upserted, 1)
		assert.Equal(t, 4, resp.TeamSize)
	})
}

func TestSummaryService_BulkRecompute(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	teamID := uuid.New()

	repo := &fakeSummaryRepository{}
	teams := &fakeTeamRepository{team: &team.Team{ID: teamID, CompanyID: companyID, Name: "Night Shift", Active: true}}
	svc := summary.NewService(repo, teams, &fakeWorkerRepository{}, &fakeCheckinRepository{}, &fakeAttendanceRepository{}, &fakeAbsenceRepository{}, &fakeLeaveRepository{}, nil)

	resp, err := svc.BulkRecompute(ctx, companyID.String(), summary.BulkRecomputeRequest{Date: "2026-01-12"})

	assert.NoError(t, err)
	assert.Equal(t, 1, resp.Rebuilt)
	assert.Empty(t, resp.FailedIDs)
	assert.Len(t, repo.upserted, 1)
}
