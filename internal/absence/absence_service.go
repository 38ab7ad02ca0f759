package absence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	absenceerrors "aegira/internal/absence/errors"
	"aegira/internal/attendance"
	"aegira/internal/authz"
	"aegira/internal/events"
	"aegira/internal/messaging/kafka"
	"aegira/internal/shared/dateutil"
)

var validReasonCategories = map[string]bool{
	ReasonForgotCheckin: true,
	ReasonSick:          true,
	ReasonEmergency:     true,
	ReasonTechIssue:     true,
	ReasonOther:         true,
}

// SummaryRebuilder is the slice of the summary service the lifecycle needs.
// Rebuilds after a review are best-effort: failures are logged, never returned.
type SummaryRebuilder interface {
	Rebuild(ctx context.Context, companyID, teamID string, date time.Time) error
}

//go:generate mockgen -source=absence_service.go -destination=mock/absence_service_mock.go -package=mock
type Service interface {
	GetAllByCompany(ctx context.Context, companyID string) ([]AbsenceResponse, error)
	GetAllByWorker(ctx context.Context, companyID, workerID string) ([]AbsenceResponse, error)
	GetByID(ctx context.Context, companyID, id string) (AbsenceResponse, error)
	Justify(ctx context.Context, companyID, actorWorkerID, id string, req JustifyRequest) (AbsenceResponse, error)
	Review(ctx context.Context, companyID string, actor authz.Context, id string, req ReviewRequest) (AbsenceResponse, error)
	ExcuseForApprovedLeave(ctx context.Context, tx *sql.Tx, companyID, workerID string, start, end time.Time, note string) (int, error)
}

type service struct {
	db             *sql.DB
	repo           Repository
	attendanceRepo attendance.Repository
	outboxRepo     kafka.OutboxRepository
	summaries      SummaryRebuilder
	logger         *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	attendanceRepo attendance.Repository,
	outboxRepo kafka.OutboxRepository,
	summaries SummaryRebuilder,
) Service {
	return &service{
		db:             db,
		repo:           repo,
		attendanceRepo: attendanceRepo,
		outboxRepo:     outboxRepo,
		summaries:      summaries,
		logger:         zap.L().Named("absence.service"),
	}
}

func (s *service) GetAllByCompany(ctx context.Context, companyID string) ([]AbsenceResponse, error) {
	rows, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) GetAllByWorker(ctx context.Context, companyID, workerID string) ([]AbsenceResponse, error) {
	rows, err := s.repo.FindAllByWorker(ctx, companyID, workerID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (AbsenceResponse, error) {
	rec, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AbsenceResponse{}, absenceerrors.ErrAbsenceNotFound
		}
		return AbsenceResponse{}, err
	}
	return mapToResponse(*rec), nil
}

// Justify records the worker's own explanation for a missed check-in. It can
// happen once, only by the owner, and only before the leader's review.
func (s *service) Justify(ctx context.Context, companyID, actorWorkerID, id string, req JustifyRequest) (AbsenceResponse, error) {
	s.logger.Debug("justify absence requested",
		zap.String("absence_id", id),
		zap.String("company_id", companyID),
		zap.String("actor_id", actorWorkerID),
		zap.String("reason_category", req.ReasonCategory),
	)

	if _, err := uuid.Parse(companyID); err != nil {
		return AbsenceResponse{}, absenceerrors.ErrInvalidCompanyID
	}
	if _, err := uuid.Parse(actorWorkerID); err != nil {
		return AbsenceResponse{}, absenceerrors.ErrInvalidActorID
	}
	if !validReasonCategories[req.ReasonCategory] {
		return AbsenceResponse{}, absenceerrors.ErrInvalidReasonCategory
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("justify absence begin tx failed", zap.Error(err))
		return AbsenceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	rec, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AbsenceResponse{}, absenceerrors.ErrAbsenceNotFound
		}
		return AbsenceResponse{}, err
	}
	if rec.WorkerID.String() != actorWorkerID {
		s.logger.Warn("justify absence by non-owner",
			zap.String("absence_id", id),
			zap.String("actor_id", actorWorkerID),
		)
		return AbsenceResponse{}, absenceerrors.ErrNotOwner
	}
	if rec.Reviewed() {
		return AbsenceResponse{}, absenceerrors.ErrAlreadyReviewed
	}
	if rec.Justified() {
		return AbsenceResponse{}, absenceerrors.ErrAlreadyJustified
	}

	now := time.Now().UTC()
	rec.ReasonCategory = &req.ReasonCategory
	rec.Explanation = &req.Explanation
	rec.JustifiedAt = &now

	if err := qtx.Update(ctx, rec); err != nil {
		s.logger.Error("justify absence persist failed", zap.String("absence_id", id), zap.Error(err))
		return AbsenceResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("justify absence commit failed", zap.String("absence_id", id), zap.Error(err))
		return AbsenceResponse{}, err
	}

	s.logger.Info("justify absence success",
		zap.String("absence_id", id),
		zap.String("reason_category", req.ReasonCategory),
	)
	return mapToResponse(*rec), nil
}

// Review settles a justified absence. EXCUSED atomically flips the paired
// attendance record out of scoring; UNEXCUSED leaves it ABSENT, which already
// scores zero. The team-day summary and worker notification are asynchronous
// side effects.
func (s *service) Review(ctx context.Context, companyID string, actor authz.Context, id string, req ReviewRequest) (AbsenceResponse, error) {
	s.logger.Debug("review absence requested",
		zap.String("absence_id", id),
		zap.String("company_id", companyID),
		zap.String("actor_id", actor.ActorID),
		zap.String("decision", req.Decision),
	)

	if _, err := uuid.Parse(companyID); err != nil {
		return AbsenceResponse{}, absenceerrors.ErrInvalidCompanyID
	}
	if !actor.CanReviewAbsence {
		s.logger.Warn("review absence without capability",
			zap.String("absence_id", id),
			zap.String("actor_id", actor.ActorID),
		)
		return AbsenceResponse{}, absenceerrors.ErrReviewNotAllowed
	}
	if req.Decision != DecisionExcused && req.Decision != DecisionUnexcused {
		return AbsenceResponse{}, absenceerrors.ErrInvalidDecision
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("review absence begin tx failed", zap.Error(err))
		return AbsenceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	rec, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AbsenceResponse{}, absenceerrors.ErrAbsenceNotFound
		}
		return AbsenceResponse{}, err
	}
	if rec.Reviewed() {
		return AbsenceResponse{}, absenceerrors.ErrAlreadyReviewed
	}
	if !rec.Justified() {
		return AbsenceResponse{}, absenceerrors.ErrJustificationRequired
	}

	now := time.Now().UTC()
	rec.Status = req.Decision
	rec.ReviewNote = req.Note
	rec.ReviewedAt = &now
	if reviewerID, err := uuid.Parse(actor.ActorID); err == nil {
		rec.ReviewedBy = &reviewerID
	}

	if err := qtx.Update(ctx, rec); err != nil {
		s.logger.Error("review absence persist failed", zap.String("absence_id", id), zap.Error(err))
		return AbsenceResponse{}, err
	}

	if req.Decision == DecisionExcused {
		attQtx := s.attendanceRepo.WithTx(tx)
		if err := attQtx.MarkExcused(ctx, companyID, rec.WorkerID.String(), rec.AbsenceDate); err != nil {
			s.logger.Error("review absence attendance flip failed", zap.String("absence_id", id), zap.Error(err))
			return AbsenceResponse{}, err
		}
	}

	if err := s.enqueueReviewedEvent(ctx, tx, rec, actor.ActorID); err != nil {
		// Notification is fire-and-forget: a broken outbox must not block the review.
		s.logger.Error("enqueue absence reviewed event failed", zap.String("absence_id", id), zap.Error(err))
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("review absence commit failed", zap.String("absence_id", id), zap.Error(err))
		return AbsenceResponse{}, err
	}

	s.logger.Info("review absence success",
		zap.String("absence_id", id),
		zap.String("decision", req.Decision),
	)

	s.rebuildSummaryAsync(*rec)

	return mapToResponse(*rec), nil
}

// ExcuseForApprovedLeave retroactively excuses pending absences whose dates
// fall inside a newly approved leave window, flipping their paired attendance
// records the same way an explicit EXCUSED review would. Runs inside the
// leave-approval transaction.
func (s *service) ExcuseForApprovedLeave(ctx context.Context, tx *sql.Tx, companyID, workerID string, start, end time.Time, note string) (int, error) {
	qtx := s.repo.WithTx(tx)
	attQtx := s.attendanceRepo.WithTx(tx)

	rows, err := qtx.FindPendingByWorkerBetween(ctx, companyID, workerID, start, end)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	for i := range rows {
		rec := &rows[i]
		rec.Status = StatusExcused
		rec.ReviewNote = &note
		rec.ReviewedAt = &now

		if err := qtx.Update(ctx, rec); err != nil {
			return 0, err
		}
		if err := attQtx.MarkExcused(ctx, companyID, workerID, rec.AbsenceDate); err != nil {
			return 0, err
		}
	}

	if len(rows) > 0 {
		s.logger.Info("absences superseded by approved leave",
			zap.String("company_id", companyID),
			zap.String("worker_id", workerID),
			zap.Int("count", len(rows)),
		)
	}
	return len(rows), nil
}

func (s *service) enqueueReviewedEvent(ctx context.Context, tx *sql.Tx, rec *AbsenceRecord, reviewerID string) error {
	payload, err := json.Marshal(events.AbsenceReviewedEvent{
		EventType:   events.EventTypeAbsenceReviewed,
		AbsenceID:   rec.ID.String(),
		WorkerID:    rec.WorkerID.String(),
		CompanyID:   rec.CompanyID.String(),
		AbsenceDate: dateutil.Key(rec.AbsenceDate),
		Decision:    rec.Status,
		ReviewedBy:  reviewerID,
		OccurredAt:  time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return s.outboxRepo.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		AggregateType: "absence",
		AggregateID:   rec.WorkerID.String(),
		EventType:     events.EventTypeAbsenceReviewed,
		Topic:         events.AbsenceLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) rebuildSummaryAsync(rec AbsenceRecord) {
	if s.summaries == nil || rec.TeamID == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.summaries.Rebuild(ctx, rec.CompanyID.String(), rec.TeamID.String(), rec.AbsenceDate); err != nil {
			// Stale cache beats a blocked review.
			s.logger.Warn("team summary rebuild after review failed",
				zap.String("team_id", rec.TeamID.String()),
				zap.String("date", dateutil.Key(rec.AbsenceDate)),
				zap.Error(err),
			)
		}
	}()
}

func mapToResponse(a AbsenceRecord) AbsenceResponse {
	resp := AbsenceResponse{
		ID:             a.ID.String(),
		CompanyID:      a.CompanyID.String(),
		WorkerID:       a.WorkerID.String(),
		AbsenceDate:    a.AbsenceDate.Format("2006-01-02"),
		Status:         a.Status,
		ReasonCategory: a.ReasonCategory,
		Explanation:    a.Explanation,
		ReviewNote:     a.ReviewNote,
	}
	if a.TeamID != nil {
		v := a.TeamID.String()
		resp.TeamID = &v
	}
	if a.JustifiedAt != nil {
		v := a.JustifiedAt.Format(time.RFC3339)
		resp.JustifiedAt = &v
	}
	if a.ReviewedBy != nil {
		v := a.ReviewedBy.String()
		resp.ReviewedBy = &v
	}
	if a.ReviewedAt != nil {
		v := a.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &v
	}
	return resp
}

func mapToListResponse(rows []AbsenceRecord) []AbsenceResponse {
	resp := make([]AbsenceResponse, len(rows))
	for i, a := range rows {
		resp[i] = mapToResponse(a)
	}
	return resp
}
