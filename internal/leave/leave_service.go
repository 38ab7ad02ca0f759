package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"aegira/internal/authz"
	"aegira/internal/events"
	leaveerrors "aegira/internal/leave/errors"
	"aegira/internal/messaging/kafka"
	"aegira/internal/shared/dateutil"
)

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// AbsenceReconciler excuses pending absences that an approved leave window
// covers. Satisfied by absence.Service; the reconciliation runs inside the
// approval transaction so an approved leave and its excused days are never
// observed separately.
type AbsenceReconciler interface {
	ExcuseForApprovedLeave(ctx context.Context, tx *sql.Tx, companyID, workerID string, start, end time.Time, note string) (int, error)
}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID, actorID string, req CreateLeaveRequest) (LeaveResponse, error)
	GetAll(ctx context.Context, companyID string) ([]LeaveResponse, error)
	GetAllByWorker(ctx context.Context, companyID, workerID string) ([]LeaveResponse, error)
	GetByID(ctx context.Context, companyID, id string) (LeaveResponse, error)
	Approve(ctx context.Context, companyID string, actor authz.Context, id string) (LeaveResponse, error)
	Reject(ctx context.Context, companyID string, actor authz.Context, id string, req RejectLeaveRequest) (LeaveResponse, error)
}

type service struct {
	db         *sql.DB
	repo       Repository
	reconciler AbsenceReconciler
	outboxRepo kafka.OutboxRepository
	logger     *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	reconciler AbsenceReconciler,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:         db,
		repo:       repo,
		reconciler: reconciler,
		outboxRepo: outboxRepo,
		logger:     l,
	}
}

func (s *service) Create(ctx context.Context, companyID, actorID string, req CreateLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("create leave requested",
		zap.String("company_id", companyID),
		zap.String("actor_id", actorID),
		zap.String("worker_id", req.WorkerID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	companyUUID, workerUUID, createdByUUID, startDate, endDate, err := validateCreateRequest(companyID, actorID, req)
	if err != nil {
		s.logger.Warn("create leave validation failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	overlap, err := qtx.HasOverlappingRequest(ctx, companyID, req.WorkerID, startDate, endDate, nil)
	if err != nil {
		s.logger.Error("create leave overlap check failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if overlap {
		s.logger.Warn("create leave overlap detected",
			zap.String("company_id", companyID),
			zap.String("worker_id", req.WorkerID),
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return LeaveResponse{}, leaveerrors.ErrLeaveOverlap
	}

	totalDays := int(endDate.Sub(startDate).Hours()/24) + 1
	l := &LeaveRequest{
		ID:        uuid.New(),
		CompanyID: companyUUID,
		WorkerID:  workerUUID,
		LeaveType: req.LeaveType,
		StartDate: startDate,
		EndDate:   endDate,
		TotalDays: totalDays,
		Reason:    req.Reason,
		Status:    StatusPending,
		CreatedBy: createdByUUID,
	}

	if err := qtx.Create(ctx, l); err != nil {
		s.logger.Error("create leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	s.logger.Info("create leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("company_id", companyID),
		zap.String("worker_id", req.WorkerID),
	)

	return mapToResponse(*l, 0), nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]LeaveResponse, error) {
	rows, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) GetAllByWorker(ctx context.Context, companyID, workerID string) ([]LeaveResponse, error) {
	rows, err := s.repo.FindAllByWorker(ctx, companyID, workerID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (LeaveResponse, error) {
	l, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	return mapToResponse(*l, 0), nil
}

func (s *service) Approve(ctx context.Context, companyID string, actor authz.Context, id string) (LeaveResponse, error) {
	s.logger.Debug("approve leave requested",
		zap.String("leave_id", id),
		zap.String("company_id", companyID),
		zap.String("actor_id", actor.ActorID),
	)

	if !actor.CanReviewAbsence {
		return LeaveResponse{}, leaveerrors.ErrApprovalNotAllowed
	}
	if _, err := uuid.Parse(companyID); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidCompanyID
	}
	approverUUID, err := uuid.Parse(actor.ActorID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("approve leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	if l.Status != StatusPending {
		s.logger.Warn("approve leave invalid transition",
			zap.String("leave_id", id),
			zap.String("from_status", l.Status),
		)
		return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	now := time.Now().UTC()
	l.Status = StatusApproved
	l.ApprovedBy = &approverUUID
	l.ApprovedAt = &now
	l.RejectionReason = nil

	if err := qtx.Update(ctx, l); err != nil {
		s.logger.Error("approve leave persist failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	excused := 0
	if s.reconciler != nil {
		excused, err = s.reconciler.ExcuseForApprovedLeave(
			ctx, tx,
			companyID, l.WorkerID.String(),
			l.StartDate, l.EndDate,
			"auto-excused by approved leave "+l.ID.String(),
		)
		if err != nil {
			s.logger.Error("approve leave absence reconciliation failed",
				zap.String("leave_id", id),
				zap.Error(err),
			)
			return LeaveResponse{}, err
		}
	}

	if err := s.enqueueApprovedEvent(ctx, tx, l); err != nil {
		// Notifikasi bukan bagian dari kontrak approval.
		s.logger.Error("enqueue leave approved event failed", zap.String("leave_id", id), zap.Error(err))
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("approve leave commit failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}
	s.logger.Info("approve leave success",
		zap.String("leave_id", id),
		zap.String("worker_id", l.WorkerID.String()),
		zap.Int("excused_absences", excused),
	)

	return mapToResponse(*l, excused), nil
}

func (s *service) Reject(ctx context.Context, companyID string, actor authz.Context, id string, req RejectLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("reject leave requested",
		zap.String("leave_id", id),
		zap.String("company_id", companyID),
		zap.String("actor_id", actor.ActorID),
	)

	if !actor.CanReviewAbsence {
		return LeaveResponse{}, leaveerrors.ErrApprovalNotAllowed
	}
	if _, err := uuid.Parse(companyID); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidCompanyID
	}
	if _, err := uuid.Parse(actor.ActorID); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}
	if req.RejectionReason == "" {
		return LeaveResponse{}, leaveerrors.ErrRejectionReasonRequired
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("reject leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	if l.Status != StatusPending {
		return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	l.Status = StatusRejected
	l.ApprovedBy = nil
	l.ApprovedAt = nil
	l.RejectionReason = &req.RejectionReason

	if err := qtx.Update(ctx, l); err != nil {
		s.logger.Error("reject leave persist failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("reject leave commit failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}
	s.logger.Info("reject leave success", zap.String("leave_id", id))

	return mapToResponse(*l, 0), nil
}

func (s *service) enqueueApprovedEvent(ctx context.Context, tx *sql.Tx, l *LeaveRequest) error {
	if s.outboxRepo == nil {
		return nil
	}

	payload, err := json.Marshal(events.LeaveApprovedEvent{
		EventType:  events.EventTypeLeaveApproved,
		LeaveID:    l.ID.String(),
		WorkerID:   l.WorkerID.String(),
		CompanyID:  l.CompanyID.String(),
		StartDate:  dateutil.Key(l.StartDate),
		EndDate:    dateutil.Key(l.EndDate),
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return s.outboxRepo.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		AggregateType: "leave",
		AggregateID:   l.WorkerID.String(),
		EventType:     events.EventTypeLeaveApproved,
		Topic:         events.LeaveLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func validateCreateRequest(companyID, actorID string, req CreateLeaveRequest) (uuid.UUID, uuid.UUID, uuid.UUID, time.Time, time.Time, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, time.Time{}, time.Time{}, leaveerrors.ErrInvalidCompanyID
	}
	workerUUID, err := uuid.Parse(req.WorkerID)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, time.Time{}, time.Time{}, leaveerrors.ErrInvalidWorkerID
	}
	createdByUUID, err := uuid.Parse(actorID)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, time.Time{}, time.Time{}, leaveerrors.ErrInvalidActorID
	}
	startDate, err := dateutil.Parse(req.StartDate)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	endDate, err := dateutil.Parse(req.EndDate)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	if endDate.Before(startDate) {
		return uuid.Nil, uuid.Nil, uuid.Nil, time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateRange
	}
	return companyUUID, workerUUID, createdByUUID, startDate, endDate, nil
}

func mapToResponse(l LeaveRequest, excused int) LeaveResponse {
	resp := LeaveResponse{
		ID:              l.ID.String(),
		CompanyID:       l.CompanyID.String(),
		WorkerID:        l.WorkerID.String(),
		LeaveType:       l.LeaveType,
		StartDate:       dateutil.Key(l.StartDate),
		EndDate:         dateutil.Key(l.EndDate),
		TotalDays:       l.TotalDays,
		Reason:          l.Reason,
		Status:          l.Status,
		CreatedBy:       l.CreatedBy.String(),
		RejectionReason: l.RejectionReason,
		ExcusedAbsences: excused,
	}
	if l.ApprovedBy != nil {
		v := l.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if l.ApprovedAt != nil {
		v := l.ApprovedAt.UTC().Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	return resp
}

func mapToListResponse(rows []LeaveRequest) []LeaveResponse {
	out := make([]LeaveResponse, 0, len(rows))
	for _, l := range rows {
		out = append(out, mapToResponse(l, 0))
	}
	return out
}
