package scoring

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"aegira/internal/shared/dateutil"
	"aegira/internal/team"
	"aegira/internal/worker"
)

type Breakdown struct {
	Green                int `json:"green"`
	Absent               int `json:"absent"`
	Excused              int `json:"excused"`
	Unexcused            int `json:"unexcused"`
	PendingJustification int `json:"pending_justification"`
}

type ScoreReport struct {
	WorkerID    string    `json:"worker_id"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	Baseline    string    `json:"baseline"`
	CountedDays int       `json:"counted_days"`
	Score       float64   `json:"score"`
	Breakdown   Breakdown `json:"breakdown"`
}

// WorkerScore walks [start, end] through the day classifier and accumulates
// the performance score. The range is clipped to the worker's baseline;
// non-work days and holidays are skipped; EXCUSED days never enter the
// denominator. Rounding happens once, at the final division.
func (e *Engine) WorkerScore(
	ctx context.Context,
	w *worker.Worker,
	t *team.Team,
	loc *time.Location,
	start, end time.Time,
	now time.Time,
) (ScoreReport, error) {
	start = dateutil.DateOf(start)
	end = dateutil.DateOf(end)

	baseline, err := e.ResolveBaseline(ctx, w)
	if err != nil {
		return ScoreReport{}, err
	}
	if baseline.After(start) {
		start = baseline
	}

	report := ScoreReport{
		WorkerID:  w.ID.String(),
		StartDate: dateutil.Key(start),
		EndDate:   dateutil.Key(end),
		Baseline:  dateutil.Key(baseline),
	}
	if end.Before(start) {
		return report, nil
	}

	win, err := e.LoadWindow(ctx, w, t, loc, start, end, now)
	if err != nil {
		return ScoreReport{}, err
	}

	var totalPoints int64
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if !win.Eligible(d) {
			continue
		}
		v, ok := win.valueFor(d)
		if !ok {
			continue
		}

		switch v.Category {
		case CategoryGreen:
			report.Breakdown.Green++
		case CategoryAbsent:
			report.Breakdown.Absent++
		case CategoryExcused:
			report.Breakdown.Excused++
		case CategoryUnexcused:
			report.Breakdown.Unexcused++
		case CategoryPending:
			report.Breakdown.PendingJustification++
		}

		if v.Counted {
			report.CountedDays++
			totalPoints += v.Points
		}
	}

	if report.CountedDays > 0 {
		report.Score = decimal.NewFromInt(totalPoints).
			Div(decimal.NewFromInt(int64(report.CountedDays))).
			Round(1).
			InexactFloat64()
	}

	e.logger.Debug("worker score computed",
		zap.String("worker_id", report.WorkerID),
		zap.String("start", report.StartDate),
		zap.String("end", report.EndDate),
		zap.Int("counted_days", report.CountedDays),
		zap.Float64("score", report.Score),
	)
	return report, nil
}

// ExpectedWorkDays counts the days in [start, end] the worker was genuinely
// expected to check in: configured work days minus holidays, approved leave
// and excused absences. Used by team grading to detect onboarding members.
func (w *Window) ExpectedWorkDays(start, end time.Time) int {
	expected := 0
	for d := dateutil.DateOf(start); !d.After(dateutil.DateOf(end)); d = d.AddDate(0, 0, 1) {
		if !w.workDays[d.Weekday()] || w.holidays[dateutil.Key(d)] {
			continue
		}
		if v, ok := w.valueFor(d); ok && v.Category == CategoryExcused {
			continue
		}
		expected++
	}
	return expected
}
