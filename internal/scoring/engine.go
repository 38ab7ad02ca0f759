// Package scoring is the attendance reconciliation core: it decides, for any
// worker and any day, what their attendance status was, and aggregates those
// per-day decisions into performance scores.
//
// Four independently maintained record streams feed a classification with a
// fixed priority order, so records arriving out of order (a leave approved
// after an absence was already recorded) still produce one consistent answer.
package scoring

import (
	"context"
	"time"

	"go.uber.org/zap"

	"aegira/internal/absence"
	"aegira/internal/attendance"
	"aegira/internal/holiday"
	"aegira/internal/leave"
	"aegira/internal/shared/dateutil"
	"aegira/internal/team"
	"aegira/internal/worker"
)

// Narrow read-only views over the record streams. The gorm repositories
// satisfy these directly; tests substitute fakes.
type CheckinSource interface {
	FirstCheckinDate(ctx context.Context, companyID, workerID string) (*time.Time, error)
}

type AttendanceSource interface {
	FindByWorkerBetween(ctx context.Context, companyID, workerID string, start, end time.Time) ([]attendance.DailyAttendanceRecord, error)
}

type AbsenceSource interface {
	FindByWorkerBetween(ctx context.Context, companyID, workerID string, start, end time.Time) ([]absence.AbsenceRecord, error)
}

type LeaveSource interface {
	FindApprovedByWorkerOverlapping(ctx context.Context, companyID, workerID string, start, end time.Time) ([]leave.LeaveRequest, error)
}

type HolidaySource interface {
	FindByCompanyBetween(ctx context.Context, companyID string, start, end time.Time) ([]holiday.Holiday, error)
}

type Engine struct {
	checkins   CheckinSource
	attendance AttendanceSource
	absences   AbsenceSource
	leaves     LeaveSource
	holidays   HolidaySource
	logger     *zap.Logger
}

func NewEngine(
	checkins CheckinSource,
	att AttendanceSource,
	abs AbsenceSource,
	leaves LeaveSource,
	holidays HolidaySource,
) *Engine {
	return &Engine{
		checkins:   checkins,
		attendance: att,
		absences:   abs,
		leaves:     leaves,
		holidays:   holidays,
		logger:     zap.L().Named("scoring.engine"),
	}
}

// ResolveBaseline returns the earliest date the worker must check in.
//
// A first-ever check-in wins: the worker is retroactively active from real
// participation. Otherwise the day after the team join applies (the join day
// itself is never a required check-in day), with the account-creation date as
// the last resort.
func (e *Engine) ResolveBaseline(ctx context.Context, w *worker.Worker) (time.Time, error) {
	first, err := e.checkins.FirstCheckinDate(ctx, w.CompanyID.String(), w.ID.String())
	if err != nil {
		return time.Time{}, err
	}
	if first != nil {
		return dateutil.DateOf(*first), nil
	}
	if w.JoinedTeamAt != nil {
		return dateutil.DateOf(*w.JoinedTeamAt).AddDate(0, 0, 1), nil
	}
	return dateutil.DateOf(w.CreatedAt), nil
}

// Window preloads every record stream for one worker over a date range so day
// classification is a pure in-memory lookup.
type Window struct {
	Baseline time.Time
	Today    time.Time

	workDays   map[time.Weekday]bool
	holidays   map[string]bool
	attendance map[string]attendance.DailyAttendanceRecord
	absences   map[string]absence.AbsenceRecord
	leaves     []leave.LeaveRequest
}

func (e *Engine) LoadWindow(
	ctx context.Context,
	w *worker.Worker,
	t *team.Team,
	loc *time.Location,
	start, end time.Time,
	now time.Time,
) (*Window, error) {
	baseline, err := e.ResolveBaseline(ctx, w)
	if err != nil {
		return nil, err
	}

	companyID := w.CompanyID.String()
	workerID := w.ID.String()

	attRows, err := e.attendance.FindByWorkerBetween(ctx, companyID, workerID, start, end)
	if err != nil {
		return nil, err
	}
	absRows, err := e.absences.FindByWorkerBetween(ctx, companyID, workerID, start, end)
	if err != nil {
		return nil, err
	}
	leaveRows, err := e.leaves.FindApprovedByWorkerOverlapping(ctx, companyID, workerID, start, end)
	if err != nil {
		return nil, err
	}
	holidayRows, err := e.holidays.FindByCompanyBetween(ctx, companyID, start, end)
	if err != nil {
		return nil, err
	}

	win := &Window{
		Baseline:   baseline,
		Today:      dateutil.LocalDate(now, loc),
		workDays:   t.WorkDaySet(),
		holidays:   make(map[string]bool, len(holidayRows)),
		attendance: make(map[string]attendance.DailyAttendanceRecord, len(attRows)),
		absences:   make(map[string]absence.AbsenceRecord, len(absRows)),
		leaves:     leaveRows,
	}
	for _, h := range holidayRows {
		win.holidays[dateutil.Key(h.HolidayDate)] = true
	}
	for _, rec := range attRows {
		win.attendance[dateutil.Key(rec.AttendanceDate)] = rec
	}
	for _, rec := range absRows {
		win.absences[dateutil.Key(rec.AbsenceDate)] = rec
	}
	return win, nil
}

// Eligible reports whether the date is classifiable at all: at or after the
// baseline, on a configured work day and not a company holiday.
func (w *Window) Eligible(date time.Time) bool {
	if date.Before(w.Baseline) {
		return false
	}
	if !w.workDays[date.Weekday()] {
		return false
	}
	return !w.holidays[dateutil.Key(date)]
}

// valueFor applies the classification priority order. Exactly one source of
// truth decides each day.
func (w *Window) valueFor(date time.Time) (dayValue, bool) {
	key := dateutil.Key(date)

	if rec, ok := w.attendance[key]; ok {
		if v, ok := attendanceValues[rec.Status]; ok {
			return v, true
		}
		return dayValue{}, false
	}

	for _, l := range w.leaves {
		if l.Covers(date) {
			return leaveValue, true
		}
	}

	if rec, ok := w.absences[key]; ok {
		if v, ok := absenceValues[rec.Status]; ok {
			return v, true
		}
		return dayValue{}, false
	}

	if date.Before(w.Today) {
		return implicitAbsentValue, true
	}

	// Today and future days stay unclassified until finalized.
	return dayValue{}, false
}

// Classify returns the single category for the date.
func (w *Window) Classify(date time.Time) Category {
	if !w.Eligible(date) {
		return CategoryUnclassified
	}
	v, ok := w.valueFor(date)
	if !ok {
		return CategoryUnclassified
	}
	return v.Category
}

// ClassifyDay classifies one (worker, date) pair against live data.
func (e *Engine) ClassifyDay(
	ctx context.Context,
	w *worker.Worker,
	t *team.Team,
	loc *time.Location,
	date time.Time,
	now time.Time,
) (Category, error) {
	date = dateutil.DateOf(date)
	win, err := e.LoadWindow(ctx, w, t, loc, date, date, now)
	if err != nil {
		return CategoryUnclassified, err
	}
	return win.Classify(date), nil
}
