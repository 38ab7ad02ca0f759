package scoring_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"aegira/internal/absence"
	"aegira/internal/attendance"
	"aegira/internal/holiday"
	"aegira/internal/leave"
	"aegira/internal/scoring"
	"aegira/internal/team"
	"aegira/internal/worker"
)

type fakeCheckinSource struct {
	firstFn func(ctx context.Context, companyID, workerID string) (*time.Time, error)
}

func (f *fakeCheckinSource) FirstCheckinDate(ctx context.Context, companyID, workerID string) (*time.Time, error) {
	if f.firstFn != nil {
		return f.firstFn(ctx, companyID, workerID)
	}
	return nil, nil
}

type fakeAttendanceSource struct {
	rows []attendance.DailyAttendanceRecord
}

func (f *fakeAttendanceSource) FindByWorkerBetween(ctx context.Context, companyID, workerID string, start, end time.Time) ([]attendance.DailyAttendanceRecord, error) {
	return f.rows, nil
}

type fakeAbsenceSource struct {
	rows []absence.AbsenceRecord
}

func (f *fakeAbsenceSource) FindByWorkerBetween(ctx context.Context, companyID, workerID string, start, end time.Time) ([]absence.AbsenceRecord, error) {
	return f.rows, nil
}

type fakeLeaveSource struct {
	rows []leave.LeaveRequest
}

func (f *fakeLeaveSource) FindApprovedByWorkerOverlapping(ctx context.Context, companyID, workerID string, start, end time.Time) ([]leave.LeaveRequest, error) {
	return f.rows, nil
}

type fakeHolidaySource struct {
	rows []holiday.Holiday
}

func (f *fakeHolidaySource) FindByCompanyBetween(ctx context.Context, companyID string, start, end time.Time) ([]holiday.Holiday, error) {
	return f.rows, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type engineFixture struct {
	first      *time.Time
	attendance []attendance.DailyAttendanceRecord
	absences   []absence.AbsenceRecord
	leaves     []leave.LeaveRequest
	holidays   []holiday.Holiday
}

func (fx engineFixture) build() *scoring.Engine {
	return scoring.NewEngine(
		&fakeCheckinSource{firstFn: func(ctx context.Context, companyID, workerID string) (*time.Time, error) {
			return fx.first, nil
		}},
		&fakeAttendanceSource{rows: fx.attendance},
		&fakeAbsenceSource{rows: fx.absences},
		&fakeLeaveSource{rows: fx.leaves},
		&fakeHolidaySource{rows: fx.holidays},
	)
}

func testWorker(joined *time.Time) *worker.Worker {
	w := &worker.Worker{
		ID:        uuid.New(),
		CompanyID: uuid.New(),
		FullName:  "Test Worker",
		Active:    true,
	}
	w.CreatedAt = day(2025, time.December, 1)
	w.JoinedTeamAt = joined
	return w
}

func testTeam() *team.Team {
	return &team.Team{
		ID:             uuid.New(),
		Name:           "Night Crew",
		WorkDays:       "1,2,3,4,5",
		ShiftStartHour: 9,
		ShiftEndHour:   17,
		Active:         true,
	}
}

func attRow(w *worker.Worker, date time.Time, status string) attendance.DailyAttendanceRecord {
	points := int64(0)
	counted := true
	if status == attendance.StatusGreen || status == attendance.StatusYellow {
		points = 100
	}
	if status == attendance.StatusExcused {
		counted = false
	}
	return attendance.DailyAttendanceRecord{
		ID:             uuid.New(),
		CompanyID:      w.CompanyID,
		WorkerID:       w.ID,
		AttendanceDate: date,
		Status:         status,
		Points:         points,
		Counted:        counted,
	}
}

func absRow(w *worker.Worker, date time.Time, status string) absence.AbsenceRecord {
	return absence.AbsenceRecord{
		ID:          uuid.New(),
		CompanyID:   w.CompanyID,
		WorkerID:    w.ID,
		AbsenceDate: date,
		Status:      status,
	}
}

func approvedLeave(w *worker.Worker, start, end time.Time) leave.LeaveRequest {
	return leave.LeaveRequest{
		ID:        uuid.New(),
		CompanyID: w.CompanyID,
		WorkerID:  w.ID,
		StartDate: start,
		EndDate:   end,
		Status:    leave.StatusApproved,
	}
}

func TestResolveBaseline(t *testing.T) {
	ctx := context.Background()

	t.Run("first checkin wins", func(t *testing.T) {
		first := day(2026, time.January, 8)
		joined := day(2026, time.January, 1)
		w := testWorker(&joined)

		eng := engineFixture{first: &first}.build()
		baseline, err := eng.ResolveBaseline(ctx, w)

		assert.NoError(t, err)
		assert.Equal(t, first, baseline)
	})

	t.Run("day after team join when never checked in", func(t *testing.T) {
		joined := day(2026, time.January, 1)
		w := testWorker(&joined)

		eng := engineFixture{}.build()
		baseline, err := eng.ResolveBaseline(ctx, w)

		assert.NoError(t, err)
		assert.Equal(t, day(2026, time.January, 2), baseline)
	})

	t.Run("account creation as last resort", func(t *testing.T) {
		w := testWorker(nil)

		eng := engineFixture{}.build()
		baseline, err := eng.ResolveBaseline(ctx, w)

		assert.NoError(t, err)
		assert.Equal(t, day(2025, time.December, 1), baseline)
	})
}

func TestClassifyDay(t *testing.T) {
	ctx := context.Background()
	joined := day(2026, time.January, 1)
	now := time.Date(2026, time.January, 20, 12, 0, 0, 0, time.UTC)

	t.Run("attendance record has top priority", func(t *testing.T) {
		w := testWorker(&joined)
		date := day(2026, time.January, 5) // Monday
		fx := engineFixture{
			attendance: []attendance.DailyAttendanceRecord{attRow(w, date, attendance.StatusGreen)},
			leaves:     []leave.LeaveRequest{approvedLeave(w, date, date)},
			absences:   []absence.AbsenceRecord{absRow(w, date, absence.StatusUnexcused)},
		}

		got, err := fx.build().ClassifyDay(ctx, w, testTeam(), time.UTC, date, now)

		assert.NoError(t, err)
		assert.Equal(t, scoring.CategoryGreen, got)
	})

	t.Run("legacy YELLOW maps to GREEN", func(t *testing.T) {
		w := testWorker(&joined)
		date := day(2026, time.January, 5)
		fx := engineFixture{
			attendance: []attendance.DailyAttendanceRecord{attRow(w, date, attendance.StatusYellow)},
		}

		got, err := fx.build().ClassifyDay(ctx, w, testTeam(), time.UTC, date, now)

		assert.NoError(t, err)
		assert.Equal(t, scoring.CategoryGreen, got)
	})

	t.Run("approved leave beats absence record", func(t *testing.T) {
		w := testWorker(&joined)
		date := day(2026, time.January, 6)
		fx := engineFixture{
			leaves:   []leave.LeaveRequest{approvedLeave(w, date, date)},
			absences: []absence.AbsenceRecord{absRow(w, date, absence.StatusPendingJustification)},
		}

		got, err := fx.build().ClassifyDay(ctx, w, testTeam(), time.UTC, date, now)

		assert.NoError(t, err)
		assert.Equal(t, scoring.CategoryExcused, got)
	})

	t.Run("leave window is inclusive on both ends", func(t *testing.T) {
		w := testWorker(&joined)
		fx := engineFixture{
			leaves: []leave.LeaveRequest{approvedLeave(w, day(2026, time.January, 12), day(2026, time.January, 14))},
		}
		eng := fx.build()

		for _, d := range []time.Time{day(2026, time.January, 12), day(2026, time.January, 13), day(2026, time.January, 14)} {
			got, err := eng.ClassifyDay(ctx, w, testTeam(), time.UTC, d, now)
			assert.NoError(t, err)
			assert.Equal(t, scoring.CategoryExcused, got, d.Format("2006-01-02"))
		}

		// Jan 15 is the first required check-in day again: implicit absent.
		got, err := eng.ClassifyDay(ctx, w, testTeam(), time.UTC, day(2026, time.January, 15), now)
		assert.NoError(t, err)
		assert.Equal(t, scoring.CategoryAbsent, got)
	})

	t.Run("inverted leave window covers nothing", func(t *testing.T) {
		w := testWorker(&joined)
		date := day(2026, time.January, 13)
		fx := engineFixture{
			leaves: []leave.LeaveRequest{approvedLeave(w, day(2026, time.January, 14), day(2026, time.January, 12))},
		}

		got, err := fx.build().ClassifyDay(ctx, w, testTeam(), time.UTC, date, now)

		assert.NoError(t, err)
		assert.Equal(t, scoring.CategoryAbsent, got)
	})

	t.Run("absence statuses map through", func(t *testing.T) {
		w := testWorker(&joined)
		date := day(2026, time.January, 7)

		cases := map[string]scoring.Category{
			absence.StatusExcused:              scoring.CategoryExcused,
			absence.StatusUnexcused:            scoring.CategoryUnexcused,
			absence.StatusPendingJustification: scoring.CategoryPending,
		}
		for status, want := range cases {
			fx := engineFixture{absences: []absence.AbsenceRecord{absRow(w, date, status)}}
			got, err := fx.build().ClassifyDay(ctx, w, testTeam(), time.UTC, date, now)
			assert.NoError(t, err)
			assert.Equal(t, want, got, status)
		}
	})

	t.Run("past day without any record is implicitly absent", func(t *testing.T) {
		w := testWorker(&joined)
		got, err := engineFixture{}.build().ClassifyDay(ctx, w, testTeam(), time.UTC, day(2026, time.January, 19), now)

		assert.NoError(t, err)
		assert.Equal(t, scoring.CategoryAbsent, got)
	})

	t.Run("today stays unclassified", func(t *testing.T) {
		w := testWorker(&joined)
		got, err := engineFixture{}.build().ClassifyDay(ctx, w, testTeam(), time.UTC, day(2026, time.January, 20), now)

		assert.NoError(t, err)
		assert.Equal(t, scoring.CategoryUnclassified, got)
	})

	t.Run("weekend holiday and pre-baseline days are not classified", func(t *testing.T) {
		w := testWorker(&joined)
		fx := engineFixture{
			holidays: []holiday.Holiday{{
				CompanyID:   w.CompanyID,
				HolidayDate: day(2026, time.January, 6),
				Name:        "Founders Day",
			}},
		}
		eng := fx.build()

		for name, d := range map[string]time.Time{
			"saturday":     day(2026, time.January, 17),
			"holiday":      day(2026, time.January, 6),
			"pre baseline": day(2025, time.December, 31),
		} {
			got, err := eng.ClassifyDay(ctx, w, testTeam(), time.UTC, d, now)
			assert.NoError(t, err)
			assert.Equal(t, scoring.CategoryUnclassified, got, name)
		}
	})
}
