package grading

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"aegira/internal/company"
	gradingerrors "aegira/internal/grading/errors"
	"aegira/internal/scoring"
	"aegira/internal/shared/dateutil"
	"aegira/internal/team"
	"aegira/internal/worker"
)

const (
	// Members below either threshold are still onboarding: they appear in the
	// roster but their score cannot drag the team grade yet.
	DefaultMinExpectedWorkDays = 5
	DefaultMinLifetimeCheckins = 3

	// trendBand is the score delta from which a window comparison stops
	// counting as noise.
	trendBand = 3.0
)

const (
	GradeA = "A"
	GradeB = "B"
	GradeC = "C"
	GradeD = "D"
)

const (
	TrendUp     = "UP"
	TrendDown   = "DOWN"
	TrendStable = "STABLE"
)

//go:generate mockgen -source=grading_service.go -destination=mock/grading_service_mock.go -package=mock
type Service interface {
	TeamGrade(ctx context.Context, companyID, teamID, startDate, endDate string) (TeamGradeResponse, error)
	CompanyGrades(ctx context.Context, companyID, startDate, endDate string) (CompanyGradesResponse, error)
	WorkerReport(ctx context.Context, companyID, workerID, startDate, endDate string) (MemberGrade, error)
}

type service struct {
	engine      *scoring.Engine
	companyRepo company.Repository
	teamRepo    team.Repository
	workerRepo  worker.Repository

	minExpectedWorkDays int
	minLifetimeCheckins int

	logger *zap.Logger
}

func NewService(
	engine *scoring.Engine,
	companyRepo company.Repository,
	teamRepo team.Repository,
	workerRepo worker.Repository,
	minExpectedWorkDays int,
	minLifetimeCheckins int,
) Service {
	return &service{
		engine:              engine,
		companyRepo:         companyRepo,
		teamRepo:            teamRepo,
		workerRepo:          workerRepo,
		minExpectedWorkDays: minExpectedWorkDays,
		minLifetimeCheckins: minLifetimeCheckins,
		logger:              zap.L().Named("grading.service"),
	}
}

func (s *service) TeamGrade(ctx context.Context, companyID, teamID, startDate, endDate string) (TeamGradeResponse, error) {
	start, end, err := parseRange(startDate, endDate)
	if err != nil {
		return TeamGradeResponse{}, err
	}

	t, err := s.teamRepo.FindByIDAndCompany(ctx, companyID, teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TeamGradeResponse{}, gradingerrors.ErrTeamNotFound
		}
		return TeamGradeResponse{}, err
	}

	loc := time.UTC
	if c, err := s.companyRepo.FindByID(ctx, companyID); err == nil {
		loc = c.Location()
	}

	return s.gradeTeam(ctx, companyID, t, loc, start, end, time.Now().UTC())
}

func (s *service) gradeTeam(
	ctx context.Context,
	companyID string,
	t *team.Team,
	loc *time.Location,
	start, end, now time.Time,
) (TeamGradeResponse, error) {
	members, err := s.workerRepo.FindActiveByTeam(ctx, companyID, t.ID.String())
	if err != nil {
		return TeamGradeResponse{}, err
	}

	resp := TeamGradeResponse{
		TeamID:      t.ID.String(),
		TeamName:    t.Name,
		StartDate:   dateutil.Key(start),
		EndDate:     dateutil.Key(end),
		MemberCount: len(members),
		Members:     make([]MemberGrade, 0, len(members)),
	}

	var gradedScores []float64
	var gradedWorkers []*worker.Worker

	for i := range members {
		w := &members[i]

		report, err := s.engine.WorkerScore(ctx, w, t, loc, start, end, now)
		if err != nil {
			return TeamGradeResponse{}, err
		}

		expected, err := s.expectedWorkDays(ctx, w, t, loc, report, end, now)
		if err != nil {
			return TeamGradeResponse{}, err
		}

		member := MemberGrade{
			WorkerID:         w.ID.String(),
			FullName:         w.FullName,
			Score:            report.Score,
			CountedDays:      report.CountedDays,
			ExpectedWorkDays: expected,
			Breakdown:        report.Breakdown,
		}
		if expected < s.minExpectedWorkDays || w.CheckinCount < int64(s.minLifetimeCheckins) {
			member.Onboarding = true
		} else {
			gradedScores = append(gradedScores, report.Score)
			gradedWorkers = append(gradedWorkers, w)
		}
		resp.Members = append(resp.Members, member)
	}

	resp.GradedCount = len(gradedScores)
	resp.Score = meanScore(gradedScores)
	resp.Grade = gradeFor(resp.Score, resp.GradedCount)
	resp.Trend = s.trend(ctx, gradedWorkers, t, loc, start, end, now, resp.Score)

	s.logger.Debug("team graded",
		zap.String("team_id", resp.TeamID),
		zap.Int("member_count", resp.MemberCount),
		zap.Int("graded_count", resp.GradedCount),
		zap.Float64("score", resp.Score),
		zap.String("grade", resp.Grade),
		zap.String("trend", resp.Trend),
	)
	return resp, nil
}

// expectedWorkDays counts required check-in days over the member's clipped
// window, so a mid-window joiner is not penalized for days before their
// baseline.
func (s *service) expectedWorkDays(
	ctx context.Context,
	w *worker.Worker,
	t *team.Team,
	loc *time.Location,
	report scoring.ScoreReport,
	end, now time.Time,
) (int, error) {
	clippedStart, err := dateutil.Parse(report.StartDate)
	if err != nil {
		return 0, err
	}
	if end.Before(clippedStart) {
		return 0, nil
	}

	win, err := s.engine.LoadWindow(ctx, w, t, loc, clippedStart, end, now)
	if err != nil {
		return 0, err
	}
	return win.ExpectedWorkDays(clippedStart, end), nil
}

// trend compares the team score against the same members over the preceding
// window of equal length.
func (s *service) trend(
	ctx context.Context,
	gradedWorkers []*worker.Worker,
	t *team.Team,
	loc *time.Location,
	start, end, now time.Time,
	currentScore float64,
) string {
	if len(gradedWorkers) == 0 {
		return TrendStable
	}

	days := int(end.Sub(start).Hours()/24) + 1
	prevEnd := start.AddDate(0, 0, -1)
	prevStart := prevEnd.AddDate(0, 0, -(days - 1))

	var prevScores []float64
	for _, w := range gradedWorkers {
		report, err := s.engine.WorkerScore(ctx, w, t, loc, prevStart, prevEnd, now)
		if err != nil {
			s.logger.Warn("trend window score failed",
				zap.String("worker_id", w.ID.String()),
				zap.Error(err),
			)
			return TrendStable
		}
		if report.CountedDays == 0 {
			continue
		}
		prevScores = append(prevScores, report.Score)
	}
	if len(prevScores) == 0 {
		return TrendStable
	}

	diff := currentScore - meanScore(prevScores)
	switch {
	case diff >= trendBand:
		return TrendUp
	case diff <= -trendBand:
		return TrendDown
	default:
		return TrendStable
	}
}

// WorkerReport scores a single member over the range, with the same clipping
// and onboarding rules the team grade applies.
func (s *service) WorkerReport(ctx context.Context, companyID, workerID, startDate, endDate string) (MemberGrade, error) {
	start, end, err := parseRange(startDate, endDate)
	if err != nil {
		return MemberGrade{}, err
	}

	w, err := s.workerRepo.FindByIDAndCompany(ctx, companyID, workerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return MemberGrade{}, gradingerrors.ErrWorkerNotFound
		}
		return MemberGrade{}, err
	}
	if w.TeamID == nil {
		return MemberGrade{}, gradingerrors.ErrWorkerNotInTeam
	}

	t, err := s.teamRepo.FindByIDAndCompany(ctx, companyID, w.TeamID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return MemberGrade{}, gradingerrors.ErrTeamNotFound
		}
		return MemberGrade{}, err
	}

	loc := time.UTC
	if c, err := s.companyRepo.FindByID(ctx, companyID); err == nil {
		loc = c.Location()
	}

	now := time.Now().UTC()
	report, err := s.engine.WorkerScore(ctx, w, t, loc, start, end, now)
	if err != nil {
		return MemberGrade{}, err
	}

	expected, err := s.expectedWorkDays(ctx, w, t, loc, report, end, now)
	if err != nil {
		return MemberGrade{}, err
	}

	member := MemberGrade{
		WorkerID:         w.ID.String(),
		FullName:         w.FullName,
		Score:            report.Score,
		CountedDays:      report.CountedDays,
		ExpectedWorkDays: expected,
		Breakdown:        report.Breakdown,
	}
	if expected < s.minExpectedWorkDays || w.CheckinCount < int64(s.minLifetimeCheckins) {
		member.Onboarding = true
	}
	return member, nil
}

func (s *service) CompanyGrades(ctx context.Context, companyID, startDate, endDate string) (CompanyGradesResponse, error) {
	start, end, err := parseRange(startDate, endDate)
	if err != nil {
		return CompanyGradesResponse{}, err
	}

	loc := time.UTC
	if c, err := s.companyRepo.FindByID(ctx, companyID); err == nil {
		loc = c.Location()
	}

	teams, err := s.teamRepo.FindAllActiveByCompany(ctx, companyID)
	if err != nil {
		return CompanyGradesResponse{}, err
	}

	resp := CompanyGradesResponse{
		StartDate: dateutil.Key(start),
		EndDate:   dateutil.Key(end),
		Teams:     make([]TeamGradeResponse, 0, len(teams)),
	}

	now := time.Now().UTC()
	for i := range teams {
		grade, err := s.gradeTeam(ctx, companyID, &teams[i], loc, start, end, now)
		if err != nil {
			s.logger.Error("company grade team failed",
				zap.String("team_id", teams[i].ID.String()),
				zap.Error(err),
			)
			continue
		}
		resp.Teams = append(resp.Teams, grade)
	}

	// Struggling teams surface first.
	sort.SliceStable(resp.Teams, func(i, j int) bool {
		gi, gj := gradeRank(resp.Teams[i].Grade), gradeRank(resp.Teams[j].Grade)
		if gi != gj {
			return gi < gj
		}
		return resp.Teams[i].Score < resp.Teams[j].Score
	})

	return resp, nil
}

func meanScore(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, v := range scores {
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	return sum.Div(decimal.NewFromInt(int64(len(scores)))).Round(1).InexactFloat64()
}

func gradeFor(score float64, gradedCount int) string {
	if gradedCount == 0 {
		return GradeD
	}
	switch {
	case score >= 90:
		return GradeA
	case score >= 80:
		return GradeB
	case score >= 70:
		return GradeC
	default:
		return GradeD
	}
}

func gradeRank(grade string) int {
	switch grade {
	case GradeD:
		return 0
	case GradeC:
		return 1
	case GradeB:
		return 2
	default:
		return 3
	}
}

func parseRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := dateutil.Parse(startDate)
	if err != nil {
		return time.Time{}, time.Time{}, gradingerrors.ErrInvalidDateFormat
	}
	end, err := dateutil.Parse(endDate)
	if err != nil {
		return time.Time{}, time.Time{}, gradingerrors.ErrInvalidDateFormat
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, gradingerrors.ErrInvalidDateRange
	}
	return start, end, nil
}
