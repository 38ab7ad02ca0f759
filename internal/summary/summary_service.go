package summary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"aegira/internal/absence"
	"aegira/internal/checkin"
	"aegira/internal/leave"
	"aegira/internal/shared/dateutil"
	summaryerrors "aegira/internal/summary/errors"
	"aegira/internal/team"
	"aegira/internal/worker"

	attendancepkg "aegira/internal/attendance"
)

const summaryCacheTTL = 60 * time.Second

func summaryCacheKey(teamID string, date time.Time) string {
	return fmt.Sprintf("summary:team:%s:%s", teamID, dateutil.Key(date))
}

//go:generate mockgen -source=summary_service.go -destination=mock/summary_service_mock.go -package=mock
type Service interface {
	Rebuild(ctx context.Context, companyID, teamID string, date time.Time) error
	GetByTeamAndDate(ctx context.Context, companyID, teamID, date string) (TeamDaySummaryResponse, error)
	GetByCompanyAndDate(ctx context.Context, companyID, date string) ([]TeamDaySummaryResponse, error)
	BulkRecompute(ctx context.Context, companyID string, req BulkRecomputeRequest) (BulkRecomputeResponse, error)
}

type service struct {
	repo           Repository
	teamRepo       team.Repository
	workerRepo     worker.Repository
	checkinRepo    checkin.Repository
	attendanceRepo attendancepkg.Repository
	absenceRepo    absence.Repository
	leaveRepo      leave.Repository
	rdb            *redis.Client
	sf             *singleflight.Group
	logger         *zap.Logger
}

func NewService(
	repo Repository,
	teamRepo team.Repository,
	workerRepo worker.Repository,
	checkinRepo checkin.Repository,
	attendanceRepo attendancepkg.Repository,
	absenceRepo absence.Repository,
	leaveRepo leave.Repository,
	rdb *redis.Client,
) Service {
	return &service{
		repo:           repo,
		teamRepo:       teamRepo,
		workerRepo:     workerRepo,
		checkinRepo:    checkinRepo,
		attendanceRepo: attendanceRepo,
		absenceRepo:    absenceRepo,
		leaveRepo:      leaveRepo,
		rdb:            rdb,
		sf:             &singleflight.Group{},
		logger:         zap.L().Named("summary.service"),
	}
}

// Rebuild recomputes the team day snapshot from the authoritative tables and
// overwrites the stored row. Concurrent rebuilds of the same team day are
// collapsed into one computation.
func (s *service) Rebuild(ctx context.Context, companyID, teamID string, date time.Time) error {
	day := dateutil.DateOf(date)
	key := summaryCacheKey(teamID, day)

	_, err, _ := s.sf.Do(key, func() (interface{}, error) {
		row, err := s.compute(ctx, companyID, teamID, day)
		if err != nil {
			return nil, err
		}
		if err := s.repo.Upsert(ctx, row); err != nil {
			return nil, err
		}

		if s.rdb != nil {
			if err := s.rdb.Del(ctx, key).Err(); err != nil {
				s.logger.Warn("summary cache invalidation failed", zap.String("key", key), zap.Error(err))
			}
		}

		s.logger.Debug("team day summary rebuilt",
			zap.String("team_id", teamID),
			zap.String("summary_date", dateutil.Key(day)),
		)
		return row, nil
	})
	return err
}

func (s *service) compute(ctx context.Context, companyID, teamID string, day time.Time) (*TeamDaySummary, error) {
	t, err := s.teamRepo.FindByIDAndCompany(ctx, companyID, teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, summaryerrors.ErrTeamNotFound
		}
		return nil, err
	}

	members, err := s.workerRepo.FindActiveByTeam(ctx, companyID, teamID)
	if err != nil {
		return nil, err
	}

	checkins, err := s.checkinRepo.FindByTeamAndDate(ctx, companyID, teamID, day)
	if err != nil {
		return nil, err
	}

	attendance, err := s.attendanceRepo.FindByTeamAndDate(ctx, companyID, teamID, day)
	if err != nil {
		return nil, err
	}

	pending, err := s.absenceRepo.CountByTeamDateAndStatus(ctx, companyID, teamID, day, absence.StatusPendingJustification)
	if err != nil {
		return nil, err
	}

	onLeave, err := s.leaveRepo.CountApprovedByTeamCovering(ctx, companyID, teamID, day)
	if err != nil {
		return nil, err
	}

	row := &TeamDaySummary{
		ID:          uuid.New(),
		CompanyID:   t.CompanyID,
		TeamID:      t.ID,
		SummaryDate: day,
		TeamSize:    len(members),

		PendingJustification: int(pending),
		OnLeave:              int(onLeave),
		ComputedAt:           time.Now().UTC(),
	}

	// One worker can submit several times a day; count workers, not rows.
	seen := make(map[uuid.UUID]bool, len(checkins))
	totalReadiness := 0
	for _, c := range checkins {
		if !seen[c.WorkerID] {
			seen[c.WorkerID] = true
			totalReadiness += c.ReadinessScore
			if c.ReadinessStatus == checkin.ReadinessAtRisk {
				row.AtRisk++
			}
		}
	}
	row.CheckedIn = len(seen)
	if row.CheckedIn > 0 {
		row.AvgReadiness = float64(totalReadiness) / float64(row.CheckedIn)
	}

	for _, a := range attendance {
		switch a.Status {
		case attendancepkg.StatusGreen, attendancepkg.StatusYellow:
			row.Green++
		case attendancepkg.StatusAbsent:
			row.Absent++
		case attendancepkg.StatusExcused:
			row.Excused++
		}
	}

	return row, nil
}

func (s *service) GetByTeamAndDate(ctx context.Context, companyID, teamID, date string) (TeamDaySummaryResponse, error) {
	day, err := dateutil.Parse(date)
	if err != nil {
		return TeamDaySummaryResponse{}, summaryerrors.ErrInvalidDateFormat
	}
	key := summaryCacheKey(teamID, day)

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, key).Result()
		if err == nil {
			var resp TeamDaySummaryResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return resp, nil
			}
		}
	}

	row, err := s.repo.FindByTeamAndDate(ctx, companyID, teamID, day)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// First read of a quiet day: build the snapshot on demand.
		if err := s.Rebuild(ctx, companyID, teamID, day); err != nil {
			return TeamDaySummaryResponse{}, err
		}
		row, err = s.repo.FindByTeamAndDate(ctx, companyID, teamID, day)
	}
	if err != nil {
		return TeamDaySummaryResponse{}, err
	}

	resp := mapToResponse(*row)
	if s.rdb != nil {
		if jsonData, err := json.Marshal(resp); err == nil {
			s.rdb.Set(ctx, key, jsonData, summaryCacheTTL)
		}
	}
	return resp, nil
}

func (s *service) GetByCompanyAndDate(ctx context.Context, companyID, date string) ([]TeamDaySummaryResponse, error) {
	day, err := dateutil.Parse(date)
	if err != nil {
		return nil, summaryerrors.ErrInvalidDateFormat
	}
	rows, err := s.repo.FindByCompanyAndDate(ctx, companyID, day)
	if err != nil {
		return nil, err
	}
	out := make([]TeamDaySummaryResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapToResponse(row))
	}
	return out, nil
}

func (s *service) BulkRecompute(ctx context.Context, companyID string, req BulkRecomputeRequest) (BulkRecomputeResponse, error) {
	day, err := dateutil.Parse(req.Date)
	if err != nil {
		return BulkRecomputeResponse{}, summaryerrors.ErrInvalidDateFormat
	}

	teamIDs := req.TeamIDs
	if len(teamIDs) == 0 {
		teams, err := s.teamRepo.FindAllActiveByCompany(ctx, companyID)
		if err != nil {
			return BulkRecomputeResponse{}, err
		}
		for _, t := range teams {
			teamIDs = append(teamIDs, t.ID.String())
		}
	}

	resp := BulkRecomputeResponse{Date: dateutil.Key(day)}
	for _, teamID := range teamIDs {
		if err := s.Rebuild(ctx, companyID, teamID, day); err != nil {
			s.logger.Error("bulk recompute team failed",
				zap.String("team_id", teamID),
				zap.String("summary_date", req.Date),
				zap.Error(err),
			)
			resp.FailedIDs = append(resp.FailedIDs, teamID)
			continue
		}
		resp.Rebuilt++
	}

	s.logger.Info("bulk recompute finished",
		zap.String("company_id", companyID),
		zap.String("summary_date", req.Date),
		zap.Int("rebuilt", resp.Rebuilt),
		zap.Int("failed", len(resp.FailedIDs)),
	)
	return resp, nil
}

func mapToResponse(row TeamDaySummary) TeamDaySummaryResponse {
	return TeamDaySummaryResponse{
		TeamID:               row.TeamID.String(),
		CompanyID:            row.CompanyID.String(),
		SummaryDate:          dateutil.Key(row.SummaryDate),
		TeamSize:             row.TeamSize,
		CheckedIn:            row.CheckedIn,
		Green:                row.Green,
		Absent:               row.Absent,
		Excused:              row.Excused,
		PendingJustification: row.PendingJustification,
		OnLeave:              row.OnLeave,
		AvgReadiness:         row.AvgReadiness,
		AtRisk:               row.AtRisk,
		ComputedAt:           row.ComputedAt.UTC().Format(time.RFC3339),
	}
}
