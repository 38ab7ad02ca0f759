package absence

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"aegira/internal/authz"
	"aegira/internal/shared/apperror"
	"aegira/internal/shared/response"
)

// CapabilityResolver maps an authenticated worker to the capability set the
// service layer checks. Satisfied by rbac.Service.
type CapabilityResolver interface {
	Resolve(ctx context.Context, companyID, workerID string) (authz.Context, error)
}

type Handler struct {
	service      Service
	capabilities CapabilityResolver
	logger       *zap.Logger
}

func NewHandler(service Service, capabilities CapabilityResolver, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("absence.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("absence.handler")
	}
	return &Handler{service: service, capabilities: capabilities, logger: l}
}

func getActorID(c *gin.Context) string {
	actorID := c.GetString("worker_id")
	if actorID == "" {
		actorID = c.GetString("user_id_validated")
	}
	return actorID
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("absence request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) GetAll(c *gin.Context) {
	ctx := c.Request.Context()
	companyID := c.GetString("company_id")

	resp, err := h.service.GetAllByCompany(ctx, companyID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if pageSize < 1 {
		pageSize = 10
	}

	total := int64(len(resp))
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(resp) {
		start = len(resp)
	}
	if end > len(resp) {
		end = len(resp)
	}

	meta := response.NewPaginationMeta(total, page, pageSize)
	response.Success(c, http.StatusOK, resp[start:end], &meta)
}

func (h *Handler) GetMine(c *gin.Context) {
	ctx := c.Request.Context()
	companyID := c.GetString("company_id")
	actorID := getActorID(c)

	resp, err := h.service.GetAllByWorker(ctx, companyID, actorID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetById(c *gin.Context) {
	ctx := c.Request.Context()
	companyID := c.GetString("company_id")
	targetID := c.Param("id")

	resp, err := h.service.GetByID(ctx, companyID, targetID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Justify(c *gin.Context) {
	companyID := c.GetString("company_id")
	actorID := getActorID(c)
	id := c.Param("id")
	h.logger.Debug("http justify absence",
		zap.String("company_id", companyID),
		zap.String("actor_id", actorID),
		zap.String("absence_id", id),
	)

	var req JustifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http justify absence validation failed", zap.Error(err))
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Input tidak valid", err.Error())
		return
	}

	resp, err := h.service.Justify(c.Request.Context(), companyID, actorID, id, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Review(c *gin.Context) {
	ctx := c.Request.Context()
	companyID := c.GetString("company_id")
	actorID := getActorID(c)
	id := c.Param("id")

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http review absence validation failed", zap.Error(err))
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Input tidak valid", err.Error())
		return
	}

	actor, err := h.capabilities.Resolve(ctx, companyID, actorID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.Review(ctx, companyID, actor, id, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
